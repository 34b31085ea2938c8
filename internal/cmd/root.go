// Package cmd contains the player-explorer commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/XavierBriggs/fortuna/services/player-explorer/internal/config"
	"github.com/spf13/cobra"
)

// Version is the current version of player-explorer
var Version = "0.1.0"

// Global flags
var configPath string

var rootCmd = &cobra.Command{
	Use:   "player-explorer",
	Short: "Football player statistics explorer",
	Long: `player-explorer loads a season of player statistics, filters it and keeps
a durable set of locked players for side-by-side comparison.

Examples:
  player-explorer serve                          # Start the HTTP/WebSocket service
  player-explorer convert stats.csv stats.json   # Convert the raw CSV export
  player-explorer inspect --league "Premier League" --min-minutes 900`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (overrides DASHBOARD_CONFIG)")
}

// loadConfig reads the environment and overlays --config, falling back to
// DASHBOARD_CONFIG
func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return config.Load()
	}
	cfg := config.LoadConfig()
	if err := cfg.LoadFile(configPath); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
