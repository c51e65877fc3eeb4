package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"brainlift-mcp/internal/supabase"
)

// authLoginCmd represents the auth login command.
var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Run the interactive authorization flow",
	Long: `Run the browser-based Google authorization flow and store the
resulting credential on disk.

If a stored credential already exists and is valid (or refreshable), no
browser interaction happens. Requires the client-secrets file configured
via OAUTH_CLIENT_SECRET_PATH and a redirect URI of
http://localhost:<port>/callback registered with the provider.`,
	RunE: runAuthLogin,
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	manager, _, err := newOAuthManager()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cred, err := manager.GetCredentials(ctx)
	if err != nil {
		return &supabase.AuthUnavailableError{Err: err}
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Authentication successful")
	if cred.IDToken == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "Note: the provider issued no ID token; the token exchange will fall back to the access token")
	}
	return nil
}

func init() {
	authCmd.AddCommand(authLoginCmd)
}
