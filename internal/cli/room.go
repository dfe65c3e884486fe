package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/mcoot/gameofchests/internal/api/request"
	"github.com/mcoot/gameofchests/internal/api/response"
)

func newRoomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Room commands",
	}

	cmd.AddCommand(newRoomCreateCmd())
	cmd.AddCommand(newRoomShowCmd())
	cmd.AddCommand(newRoomJoinCmd())
	cmd.AddCommand(newRoomLeaveCmd())
	cmd.AddCommand(newRoomAssumeCmd())
	cmd.AddCommand(newRoomResetCmd())

	return cmd
}

// settingsFlags holds --coins and --compensation; values reports only flags
// the user actually set
type settingsFlags struct {
	coins        int
	compensation int
}

func (s *settingsFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&s.coins, "coins", 5, "Number of coins (1-10)")
	cmd.Flags().IntVar(&s.compensation, "compensation", 2, "Compensation paid to the presenter on a placer win")
}

func (s *settingsFlags) values(cmd *cobra.Command) (coins, compensation *int) {
	if cmd.Flags().Changed("coins") {
		coins = &s.coins
	}
	if cmd.Flags().Changed("compensation") {
		compensation = &s.compensation
	}
	return coins, compensation
}

func newRoomCreateCmd() *cobra.Command {
	var (
		role     string
		name     string
		settings settingsFlags
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new room and take a seat in it",
		RunE: func(cmd *cobra.Command, args []string) error {
			coins, compensation := settings.values(cmd)
			req := request.CreateRoomRequest{
				Role:         role,
				CoinCount:    coins,
				Compensation: compensation,
				DisplayName:  name,
			}

			var result response.Room
			if err := client.Post(cmd.Context(), "/api/v1/rooms", req, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", "presenter", "Role to take: presenter or placer")
	cmd.Flags().StringVar(&name, "name", "", "Display name of the guest")
	settings.register(cmd)

	return cmd
}

func newRoomShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <room>",
		Short: "Show a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Room
			if err := client.Get(cmd.Context(), roomPath(args[0], ""), &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newRoomJoinCmd() *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "join <room>",
		Short: "Join a room, taking a free seat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.JoinResponse
			req := request.JoinRoomRequest{Role: role}
			if err := client.Post(cmd.Context(), roomPath(args[0], "join"), req, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "Preferred role when both seats are free")

	return cmd
}

func newRoomLeaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leave <room>",
		Short: "Give up your seat in a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Room
			if err := client.Post(cmd.Context(), roomPath(args[0], "leave"), nil, &result); err != nil {
				return err
			}

			output(cmd).PrintMessage(fmt.Sprintf("Left room %s", args[0]))
			return nil
		},
	}
}

func newRoomAssumeCmd() *cobra.Command {
	var (
		role     string
		name     string
		settings settingsFlags
	)

	cmd := &cobra.Command{
		Use:   "assume <room>",
		Short: "Take a role and start a new game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coins, compensation := settings.values(cmd)
			req := request.AssumeRoleRequest{
				Role:         role,
				CoinCount:    coins,
				Compensation: compensation,
				DisplayName:  name,
			}

			var result response.Room
			if err := client.Post(cmd.Context(), roomPath(args[0], "assume"), req, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "Role to take: presenter or placer")
	cmd.Flags().StringVar(&name, "name", "", "Display name of the guest")
	settings.register(cmd)
	_ = cmd.MarkFlagRequired("role")

	return cmd
}

func newRoomResetCmd() *cobra.Command {
	var settings settingsFlags

	cmd := &cobra.Command{
		Use:   "reset <room>",
		Short: "Start a new game in a finished room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coins, compensation := settings.values(cmd)
			req := request.ResetGameRequest{CoinCount: coins, Compensation: compensation}

			var result response.Room
			if err := client.Post(cmd.Context(), roomPath(args[0], "reset"), req, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	settings.register(cmd)

	return cmd
}

// roomPath builds the API path of a room, or of an action on it
func roomPath(id, action string) string {
	p := "/api/v1/rooms/" + url.PathEscape(id)
	if action != "" {
		p += "/" + action
	}
	return p
}
