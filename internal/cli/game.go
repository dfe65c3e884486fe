package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mcoot/gameofchests/internal/api/request"
	"github.com/mcoot/gameofchests/internal/api/response"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Game commands",
	}

	cmd.AddCommand(newGameOfferCmd())
	cmd.AddCommand(newGamePlaceCmd())
	cmd.AddCommand(newGameResultCmd())

	return cmd
}

func newGameOfferCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "offer <room> <basket>",
		Short: "Offer a basket (presenter)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			basket, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid basket %q: %w", args[1], err)
			}

			var result response.Room
			if err := client.Post(cmd.Context(), roomPath(args[0], "offer"), request.OfferRequest{Basket: &basket}, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newGamePlaceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "place <room> <coin>",
		Short: "Place a coin into the offered basket (placer)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			coin, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid coin %q: %w", args[1], err)
			}

			var result response.Room
			if err := client.Post(cmd.Context(), roomPath(args[0], "place"), request.PlaceRequest{Coin: &coin}, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newGameResultCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "result <room>",
		Short: "Show the result of a finished game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Outcome
			if err := client.Get(cmd.Context(), roomPath(args[0], "outcome"), &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}
