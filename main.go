// Package main provides the brick server and CLI.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joe-ervin05/brick/config"
	"github.com/joe-ervin05/brick/tools"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	// Set by persistent flags; they override the environment.
	portFlag    string
	configFlag  string
	envFileFlag string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "brick",
	Short: "Brick is a browser for SQLite databases",
	Long: `Brick serves a REST API for browsing and editing a single SQLite or
libSQL database: tables, rows, calendar and document tables, and
per-database preferences.

Running brick without a subcommand starts the server.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
	RunE:              runServe,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&portFlag, "port", "", "listen address or port (default from PORT, \":3000\")")
	flags.StringVar(&configFlag, "config", "", "config file holding the active database path (default from BRICK_CONFIG_PATH)")
	flags.StringVar(&envFileFlag, "env-file", "", "load environment variables from this file")

	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadSettings applies --env-file and then the remaining flags on top of
// config.Cfg.
func loadSettings(cmd *cobra.Command, args []string) error {
	if envFileFlag != "" {
		if err := config.LoadEnvFile(envFileFlag); err != nil {
			return fmt.Errorf("load env file: %w", err)
		}
		tools.SetLogLevel(config.Cfg.LogLevel)
	}

	if portFlag != "" {
		config.Cfg.Port = normalizePort(portFlag)
	}
	if configFlag != "" {
		config.Cfg.ConfigPath = configFlag
	}
	return nil
}

// normalizePort turns a bare port number into a listen address.
func normalizePort(port string) string {
	if strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("brick %s\n", version)
	},
}
