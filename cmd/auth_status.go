package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// authStatusCmd represents the auth status command.
var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stored credential's state",
	Long: `Show whether a credential is stored on disk, whether it is still
valid, and whether it can be refreshed without user interaction. Token
values are never printed.`,
	RunE: runAuthStatus,
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	_, store, err := newOAuthManager()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	cred, err := store.Load()
	if err != nil {
		fmt.Fprintf(out, "Stored credential at %s is unreadable: %v\n", store.Path(), err)
		fmt.Fprintln(out, "Run 'brainlift-mcp auth login' to re-authenticate")
		return nil
	}
	if cred == nil {
		fmt.Fprintln(out, "No credential stored")
		fmt.Fprintln(out, "Run 'brainlift-mcp auth login' to authenticate")
		return nil
	}

	switch {
	case !cred.Expired():
		if cred.Expiry.IsZero() {
			fmt.Fprintln(out, "Credential valid (no known expiry)")
		} else {
			fmt.Fprintf(out, "Credential valid until %s\n", cred.Expiry.Local().Format(time.RFC1123))
		}
	case cred.RefreshToken != "":
		fmt.Fprintln(out, "Credential expired but refreshable without user interaction")
	default:
		fmt.Fprintln(out, "Credential expired and not refreshable")
		fmt.Fprintln(out, "Run 'brainlift-mcp auth login' to re-authenticate")
	}

	if cred.IDToken == "" {
		fmt.Fprintln(out, "Warning: no ID token stored; the token exchange will fall back to the access token")
	}

	return nil
}

func init() {
	authCmd.AddCommand(authStatusCmd)
}
