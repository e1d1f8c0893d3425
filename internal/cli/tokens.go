package cli

import (
	"github.com/spf13/cobra"
)

func newTokensCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokens",
		Short: "Review game logins waiting for approval",
	}

	cmd.AddCommand(newTokensListCmd())
	cmd.AddCommand(newTokensApproveCmd())
	cmd.AddCommand(newTokensDenyCmd())

	return cmd
}

func newTokensListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List pending game logins",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result TokenList

			if err := client.Get("/api/v1/tokens", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newTokensApproveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approve <id>",
		Short: "Approve a pending game login",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Post("/api/v1/tokens/"+args[0]+"/approve", nil, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Login approved")
			return nil
		},
	}
}

func newTokensDenyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deny <id>",
		Short: "Deny a pending game login",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete("/api/v1/tokens/" + args[0]); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Login denied")
			return nil
		},
	}
}
