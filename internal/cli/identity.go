package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/gameofchests/internal/api/response"
)

func newIdentityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "identity",
		Short: "Anonymous identity commands",
	}

	cmd.AddCommand(newIdentityNewCmd())
	cmd.AddCommand(newIdentityShowCmd())
	cmd.AddCommand(newIdentityForgetCmd())

	return cmd
}

func newIdentityNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Create a new anonymous identity and save its token",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.CredentialsResponse

			if err := client.Post(cmd.Context(), "/api/v1/identity", nil, &result); err != nil {
				return err
			}

			if err := cfg.SaveToken(result.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newIdentityShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Identity

			if err := client.Get(cmd.Context(), "/api/v1/identity", &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newIdentityForgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forget",
		Short: "Delete the saved token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.ClearToken(); err != nil {
				return fmt.Errorf("failed to remove token: %w", err)
			}

			output(cmd).PrintMessage("Identity forgotten")
			return nil
		},
	}
}
