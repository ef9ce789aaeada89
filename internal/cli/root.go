package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "pongctl",
		Short: "CLI tool for the screen pong server",
		Long: `pongctl inspects and administers a running screen pong server.

It reports screen and queue status, match history and the leaderboard,
streams a screen's spectator events, and resets stuck screens.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			client = NewClient(cfg.ServerURL, cfg.AdminPassword)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: PONGCTL_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.AdminPassword, "admin-password", cfg.AdminPassword, "Admin password (env: PONGCTL_ADMIN_PASSWORD)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newHealthCmd())
	rootCmd.AddCommand(newScreensCmd())
	rootCmd.AddCommand(newScoresCmd())
	rootCmd.AddCommand(newLeaderboardCmd())
	rootCmd.AddCommand(newWinsCmd())
	rootCmd.AddCommand(newEventsCmd())
	rootCmd.AddCommand(newResetCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func output(cmd *cobra.Command) *Output {
	return NewOutput(cfg.Output, cmd.OutOrStdout())
}
