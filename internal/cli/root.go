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
		Use:   "chests",
		Short: "CLI tool for the Game of Chests API",
		Long: `chests is a CLI tool for playing the Game of Chests over its JSON API.

One identity is kept per token file. Create an identity, then create or join
a room and play as the presenter (offer baskets) or the placer (place coins).
Use "chests watch" to follow a room in real time.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cfg.LoadToken(); err != nil {
				return err
			}
			client = NewClient(cfg.ServerURL, cfg.Token)
			if cfg.Verbose {
				client.SetTrace(cmd.ErrOrStderr())
			}
			return nil
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: CHESTS_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.Token, "token", cfg.Token, "Bearer token (env: CHESTS_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "Token file path (env: CHESTS_TOKEN_FILE)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Log requests to stderr")

	rootCmd.AddCommand(newIdentityCmd())
	rootCmd.AddCommand(newRoomCmd())
	rootCmd.AddCommand(newGameCmd())
	rootCmd.AddCommand(newBotCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// output returns a formatter writing to cmd's output
func output(cmd *cobra.Command) *Output {
	return NewOutput(cfg.Output, cmd.OutOrStdout())
}
