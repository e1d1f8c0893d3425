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
		Use:   "lhctl",
		Short: "CLI tool for the Lighthouse server",
		Long: `lhctl talks to a Lighthouse server the way the game and the website do.

It can sign in as a game client, send raw match messages, check which
resources still need uploading, and approve pending game logins.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load credentials from file if not provided via flag/env
			if err := cfg.LoadCredentials(); err != nil {
				return err
			}

			// Create HTTP client
			client = NewClient(cfg.ServerURL, cfg.Token, cfg.Ticket)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: LHCTL_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.Token, "token", cfg.Token, "Web session token (env: LHCTL_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&cfg.Ticket, "ticket", cfg.Ticket, "Game MM_AUTH ticket (env: LHCTL_TICKET)")
	rootCmd.PersistentFlags().StringVar(&cfg.Dir, "config-dir", cfg.Dir, "Directory holding saved credentials (env: LHCTL_DIR)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newMatchCmd())
	rootCmd.AddCommand(newResourcesCmd())
	rootCmd.AddCommand(newWebCmd())
	rootCmd.AddCommand(newTokensCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
