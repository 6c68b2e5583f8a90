// Package server wires configuration, the Todoist client, the tool service,
// and the MCP dispatcher into a running process, and manages its lifecycle
// including signal handling and graceful shutdown.
package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"

	"github.com/aldante1/mcp-todoist/internal/config"
	"github.com/aldante1/mcp-todoist/internal/logging"
	"github.com/aldante1/mcp-todoist/internal/mcp"
	"github.com/aldante1/mcp-todoist/internal/todoist"
	"github.com/aldante1/mcp-todoist/internal/tools"
)

// RunServer starts the MCP server on the given transport and blocks until it
// exits or a termination signal arrives.
func RunServer(transportType, configPath string, dryRun bool, version string) error {
	logger := logging.GetLogger("server")

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if dryRun {
		cfg.Tools.DryRun = true
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("Received termination signal, shutting down.", "signal", sig.String())
		cancel()
	}()

	logger.Info("Starting Todoist MCP server.",
		"version", version,
		"transport", transportType,
		"dryRun", cfg.Tools.DryRun)

	token, err := resolveToken(cfg, logger)
	if err != nil {
		return err
	}

	var clientOpts []todoist.Option
	if cfg.Todoist.BaseURL != "" {
		clientOpts = append(clientOpts, todoist.WithBaseURL(cfg.Todoist.BaseURL))
	}
	var api tools.TaskAPI = todoist.NewClient(token, logger, clientOpts...)
	if cfg.Tools.DryRun {
		logger.Info("Dry-run mode enabled, mutating Todoist calls will be simulated.")
		api = tools.NewDryRunAdapter(api, logger)
	}

	service := tools.NewService(api, cfg.Tools.OverviewLimit, logger)
	dispatcher, err := mcp.NewDispatcher(service, mcp.ServerInfo{Name: cfg.Server.Name, Version: version}, logger)
	if err != nil {
		return errors.Wrap(err, "failed to create dispatcher")
	}
	srv := mcp.NewServer(cfg, dispatcher, logger)

	switch transportType {
	case "stdio":
		return srv.ServeStdio(ctx)
	case "http":
		return srv.ServeHTTP(ctx)
	default:
		return errors.Newf("unsupported transport type %q (expected stdio or http)", transportType)
	}
}

// RunAuth stores or clears the Todoist API token in secure storage.
func RunAuth(configPath, token string, clear bool) error {
	logger := logging.GetLogger("auth")
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	storage := todoist.NewTokenStorage(cfg.Auth.TokenPath, logger)

	if clear {
		if err := storage.DeleteToken(); err != nil {
			return errors.Wrap(err, "failed to clear stored token")
		}
		logger.Info("Stored Todoist API token removed.")
		return nil
	}
	if token == "" {
		return errors.New("provide -token to store a token or -clear to remove it")
	}
	if err := storage.SaveToken(token); err != nil {
		return errors.Wrap(err, "failed to store token")
	}
	logger.Info("Todoist API token stored.")
	return nil
}

// loadConfig reads the configuration file when a path is given, otherwise
// builds the default configuration from environment variables.
func loadConfig(configPath string) (*config.Config, error) {
	if configPath == "" {
		return config.DefaultConfig(), nil
	}
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load config from %s", configPath)
	}
	return cfg, nil
}

// resolveToken returns the Todoist API token from config, falling back to
// secure storage. A missing token is fatal at startup, not at first use.
func resolveToken(cfg *config.Config, logger logging.Logger) (string, error) {
	if cfg.Todoist.APIToken != "" {
		return cfg.Todoist.APIToken, nil
	}
	storage := todoist.NewTokenStorage(cfg.Auth.TokenPath, logger)
	token, err := storage.LoadToken()
	if err != nil {
		return "", errors.Wrap(err, "failed to load Todoist API token from storage")
	}
	if token == "" {
		return "", errors.New("no Todoist API token configured: set TODOIST_API_TOKEN or run 'mcp-todoist auth -token <token>'")
	}
	return token, nil
}
