// Package cmd provides the CLI commands for Airth's timers.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version info (set at build time via ldflags)
	Version = "dev"

	// Global flags
	dbPath     string
	configPath string
	userFlag   string
	jsonOutput bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "airth",
	Short: "Airth - countdown and pomodoro timers for the TEC office",
	Long: `Airth keeps one countdown timer and one pomodoro timer per user.

Timers can be driven from this CLI, from plain-English requests
("airth ask 'set a timer for 10 minutes called Tea'"), from an MCP
client ("airth mcp") or over HTTP ("airth serve").`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeServices()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return cleanupServices()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !isResultError(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		_ = cleanupServices()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the database file (default: ~/.airth/airth.db)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the config file (default: ~/.airth/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&userFlag, "user", "u", "", "User whose timers to act on (default: user_id from config)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output results in JSON format")

	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("Airth\nVersion: {{.Version}}\n")

	rootCmd.AddCommand(pomodoroCmd)
	rootCmd.AddCommand(timerCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
}
