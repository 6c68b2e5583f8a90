package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/aldante1/mcp-todoist/cmd/server"
	"github.com/aldante1/mcp-todoist/internal/logging"
)

// Version information, set during build via ldflags.
var (
	Version = "0.1.0-dev"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		serveCmd := flag.NewFlagSet("serve", flag.ExitOnError)
		transportType := serveCmd.String("transport", "stdio", "Transport type (stdio or http).")
		configPath := serveCmd.String("config", "", "Path to configuration file.")
		dryRun := serveCmd.Bool("dry-run", false, "Simulate mutating Todoist calls instead of performing them.")
		debug := serveCmd.Bool("debug", false, "Enable debug logging.")

		if err := serveCmd.Parse(os.Args[2:]); err != nil {
			log.Fatalf("Failed to parse serve command flags: %+v", err)
		}

		if *debug {
			logging.SetupDefaultLogger("debug")
		} else {
			logging.SetupDefaultLogger("info")
		}

		if err := server.RunServer(*transportType, *configPath, *dryRun, Version); err != nil {
			logger := logging.GetLogger("main")
			logger.Error("Server failed.", "error", fmt.Sprintf("%+v", err))
			os.Exit(1)
		}

	case "auth":
		authCmd := flag.NewFlagSet("auth", flag.ExitOnError)
		token := authCmd.String("token", "", "Todoist API token to store securely.")
		clear := authCmd.Bool("clear", false, "Remove the stored token.")
		configPath := authCmd.String("config", "", "Path to configuration file.")

		if err := authCmd.Parse(os.Args[2:]); err != nil {
			log.Fatalf("Failed to parse auth command flags: %+v", err)
		}
		logging.SetupDefaultLogger("info")

		if err := server.RunAuth(*configPath, *token, *clear); err != nil {
			log.Fatalf("Auth command failed: %+v", err)
		}

	case "version":
		fmt.Println(Version)

	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	log.Println("Usage:")
	log.Println("  mcp-todoist serve [options]   - Start the Todoist MCP server")
	log.Println("  mcp-todoist auth [options]    - Store or clear the Todoist API token")
	log.Println("  mcp-todoist version           - Print the version")
	log.Println("\nRun 'mcp-todoist <command> -h' for help on a specific command.")
}
