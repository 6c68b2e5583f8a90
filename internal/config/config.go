// Package config handles loading, parsing, and validating application configuration.
// It defines the structure for configuration settings, provides default values,
// loads settings from files (YAML), and applies overrides from environment variables.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/aldante1/mcp-todoist/internal/logging"
)

// ServerConfig contains settings specific to the MCP server component.
type ServerConfig struct {
	// Name is the human-readable name for the server, displayed in logs and client UIs.
	Name string `yaml:"name"`
	// Port is the network port the server listens on when using HTTP transport. Ignored for stdio.
	Port int `yaml:"port"`
}

// TodoistConfig contains settings required for integrating with the Todoist REST API.
type TodoistConfig struct {
	// APIToken is the personal API token used as a bearer credential on every
	// Todoist request. Required unless a token is available in secure storage.
	APIToken string `yaml:"api_token"`
	// BaseURL overrides the Todoist REST endpoint. Empty means the production API.
	BaseURL string `yaml:"base_url,omitempty"`
}

// AuthConfig contains settings for authenticating inbound tool-invocation requests.
type AuthConfig struct {
	// Secret is the shared bearer credential callers must present on the HTTP
	// transport. When empty, authentication is bypassed entirely (insecure mode,
	// intended for local development only).
	Secret string `yaml:"secret"`
	// TokenPath is the fallback file used to persist the Todoist API token when
	// the OS keyring is unavailable. Supports '~' expansion.
	TokenPath string `yaml:"token_path"`
}

// ToolsConfig holds settings that shape tool behavior.
type ToolsConfig struct {
	// DryRun, when true, makes mutating Todoist calls return simulated results
	// instead of performing real side effects. Read-only calls still hit the API.
	DryRun bool `yaml:"dry_run"`
	// OverviewLimit is the default per-bucket item limit for the daily overview.
	OverviewLimit int `yaml:"overview_limit"`
}

// Config is the root configuration structure for the mcp-todoist application.
type Config struct {
	// Server holds general server settings (name, port).
	Server ServerConfig `yaml:"server"`
	// Todoist holds credentials and endpoint settings for the Todoist API.
	Todoist TodoistConfig `yaml:"todoist"`
	// Auth holds inbound authentication settings.
	Auth AuthConfig `yaml:"auth"`
	// Tools holds tool-behavior settings.
	Tools ToolsConfig `yaml:"tools"`
}

// DefaultConfig returns a configuration populated with default values.
// It loads a .env file if one is present, reads initial credentials from the
// standard environment variables (TODOIST_API_TOKEN, MCP_AUTH_SECRET), and sets
// a default token path within the user's config directory.
func DefaultConfig() *Config {
	// .env is optional; absence is not an error.
	_ = godotenv.Load()

	homeDir, err := os.UserHomeDir()
	tokenPath := ""
	if err == nil {
		tokenPath = filepath.Join(homeDir, ".config", "mcp-todoist", "todoist_token.json")
	} else {
		tokenPath = "todoist_token.json" //nolint:gosec // G101: fallback path, not a secret itself.
	}

	cfg := &Config{
		Server: ServerConfig{
			Name: "Todoist MCP",
			Port: 8080,
		},
		Todoist: TodoistConfig{
			APIToken: os.Getenv("TODOIST_API_TOKEN"),
		},
		Auth: AuthConfig{
			Secret:    os.Getenv("MCP_AUTH_SECRET"),
			TokenPath: tokenPath,
		},
		Tools: ToolsConfig{
			DryRun:        false,
			OverviewLimit: 10,
		},
	}
	applyEnvironmentOverrides(cfg, logging.GetLogger("config_default"))
	return cfg
}

// LoadFromFile loads configuration from the specified YAML file path.
// It starts with default values, merges the values from the YAML file,
// and finally applies any environment variable overrides.
// Supports '~' expansion in the file path.
func LoadFromFile(path string) (*Config, error) {
	expanded, err := ExpandHome(path)
	if err != nil {
		return nil, err
	}

	// #nosec G304 -- Path comes from a command-line flag or default, considered trusted input.
	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file: %s", expanded)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config file YAML: %s", expanded)
	}

	applyEnvironmentOverrides(config, logging.GetLogger("config_load"))
	return config, nil
}

// ExpandHome expands a leading '~' in path to the user's home directory.
func ExpandHome(path string) (string, error) {
	if len(path) == 0 || path[0] != '~' {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory to expand path")
	}
	return filepath.Join(homeDir, path[1:]), nil
}

// applyEnvironmentOverrides applies configuration overrides from environment variables.
// Environment variables take precedence over values set in configuration files or defaults.
func applyEnvironmentOverrides(config *Config, logger logging.Logger) {
	tokenSource := "default"
	if config.Todoist.APIToken != "" {
		tokenSource = "config file"
	}
	if tokenEnv := os.Getenv("TODOIST_API_TOKEN"); tokenEnv != "" {
		config.Todoist.APIToken = tokenEnv
		tokenSource = "environment variable"
	}
	logger.Debug("Todoist API token source determined.", "source", tokenSource)
	if config.Todoist.APIToken == "" {
		logger.Warn("TODOIST_API_TOKEN is missing (checked environment and config file); secure storage will be consulted at startup.")
	}

	if baseURL := os.Getenv("TODOIST_BASE_URL"); baseURL != "" {
		logger.Debug("Overriding Todoist base URL from environment.", "envVar", "TODOIST_BASE_URL", "value", baseURL)
		config.Todoist.BaseURL = baseURL
	}

	if secret := os.Getenv("MCP_AUTH_SECRET"); secret != "" {
		config.Auth.Secret = secret
	}
	if config.Auth.Secret == "" {
		logger.Warn("No MCP_AUTH_SECRET configured: inbound authentication is DISABLED (insecure mode, local development only).")
	}

	if portStr := os.Getenv("SERVER_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 && port < 65536 {
			logger.Debug("Overriding server port from environment.", "envVar", "SERVER_PORT", "value", port)
			config.Server.Port = port
		} else {
			logger.Warn("Invalid SERVER_PORT environment variable ignored.", "value", portStr, "error", err)
		}
	}
	if serverName := os.Getenv("SERVER_NAME"); serverName != "" {
		logger.Debug("Overriding server name from environment.", "envVar", "SERVER_NAME", "value", serverName)
		config.Server.Name = serverName
	}

	if tokenPath := os.Getenv("MCP_TODOIST_TOKEN_PATH"); tokenPath != "" {
		expanded, err := ExpandHome(tokenPath)
		if err != nil {
			logger.Warn("Could not expand '~' in MCP_TODOIST_TOKEN_PATH env var.", "error", err)
			expanded = tokenPath
		}
		logger.Debug("Overriding token path from environment.", "envVar", "MCP_TODOIST_TOKEN_PATH", "value", expanded)
		config.Auth.TokenPath = expanded
	}

	if dryRun := os.Getenv("MCP_TODOIST_DRY_RUN"); dryRun != "" {
		if parsed, err := strconv.ParseBool(dryRun); err == nil {
			logger.Debug("Overriding dry-run mode from environment.", "envVar", "MCP_TODOIST_DRY_RUN", "value", parsed)
			config.Tools.DryRun = parsed
		} else {
			logger.Warn("Invalid MCP_TODOIST_DRY_RUN environment variable ignored.", "value", dryRun, "error", err)
		}
	}

	if limitStr := os.Getenv("MCP_TODOIST_OVERVIEW_LIMIT"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			config.Tools.OverviewLimit = limit
		} else {
			logger.Warn("Invalid MCP_TODOIST_OVERVIEW_LIMIT environment variable ignored.", "value", limitStr, "error", err)
		}
	}
}
