package cli

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

// defaultTitleID is a LittleBigPlanet 2 disc release
const defaultTitleID = "BCES00850"

func newLoginCmd() *cobra.Command {
	var user, pass, titleID string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in as the game and save the MM_AUTH ticket",
		RunE: func(cmd *cobra.Command, args []string) error {
			if user == "" || pass == "" {
				return fmt.Errorf("--user and --pass are required")
			}

			form := url.Values{"username": {user}, "password": {pass}}
			body, err := client.Game(http.MethodPost, "/login?titleID="+url.QueryEscape(titleID),
				"application/x-www-form-urlencoded", []byte(form.Encode()))
			if err != nil {
				return err
			}

			var result struct {
				AuthTicket string `xml:"authTicket"`
				LbpEnvVer  string `xml:"lbpEnvVer"`
			}
			if err := xml.Unmarshal(body, &result); err != nil {
				return fmt.Errorf("failed to parse login result: %w", err)
			}
			ticket := strings.TrimPrefix(result.AuthTicket, "MM_AUTH=")

			if err := cfg.SaveTicket(ticket); err != nil {
				return fmt.Errorf("failed to save ticket: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.Print(GameLogin{Ticket: ticket, ServerName: result.LbpEnvVer})
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Username (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (required)")
	cmd.Flags().StringVar(&titleID, "title", defaultTitleID, "Title id the client reports")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

func newMatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "match <message>",
		Short: "Send a raw match message, e.g. '[UpdateMyPlayerData,{}]'",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := client.Game(http.MethodPost, "/match", "text/plain", []byte(args[0]))
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(MatchResult{Body: string(body)})
			return nil
		},
	}
}

func newResourcesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resources",
		Short: "Resource commands",
	}

	cmd.AddCommand(newResourcesMissingCmd())

	return cmd
}

type resourceList struct {
	XMLName   xml.Name `xml:"resources"`
	Resources []string `xml:"resource"`
}

func newResourcesMissingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "missing <hash>...",
		Short: "Show which of the given resources the server does not have",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := xml.Marshal(resourceList{Resources: args})
			if err != nil {
				return err
			}

			body, err := client.Game(http.MethodPost, "/filterResources", "text/xml", req)
			if err != nil {
				return err
			}

			var list resourceList
			if err := xml.Unmarshal(body, &list); err != nil {
				return fmt.Errorf("failed to parse resource list: %w", err)
			}

			missing := list.Resources
			if missing == nil {
				missing = []string{}
			}

			out := NewOutput(cfg.Output)
			out.Print(MissingResult{Missing: missing})
			return nil
		},
	}
}
