package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/gameofchests/internal/api/request"
	"github.com/mcoot/gameofchests/internal/api/response"
)

func newBotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Seat or remove a bot opponent",
	}

	cmd.AddCommand(newBotAddCmd())
	cmd.AddCommand(newBotRemoveCmd())

	return cmd
}

func newBotAddCmd() *cobra.Command {
	var strategy string

	cmd := &cobra.Command{
		Use:   "add <room>",
		Short: "Seat a bot in the free role of a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.BotResponse
			if err := client.Post(cmd.Context(), roomPath(args[0], "bot"), request.AddBotRequest{Strategy: strategy}, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&strategy, "strategy", "random", "Bot strategy: random or greedy")

	return cmd
}

func newBotRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <room>",
		Short: "Remove the bot from a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Room
			if err := client.Delete(cmd.Context(), roomPath(args[0], "bot"), &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}
