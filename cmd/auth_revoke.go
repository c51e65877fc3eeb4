package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// authRevokeCmd represents the auth revoke command.
var authRevokeCmd = &cobra.Command{
	Use:   "revoke",
	Short: "Revoke and delete the stored credential",
	Long: `Revoke the credential with the identity provider (best effort) and
delete the on-disk record. The next authenticated operation will run the
interactive authorization flow again.`,
	RunE: runAuthRevoke,
}

func runAuthRevoke(cmd *cobra.Command, args []string) error {
	manager, _, err := newOAuthManager()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := manager.Revoke(ctx); err != nil {
		return fmt.Errorf("failed to delete stored credential: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Credentials revoked successfully")
	return nil
}

func init() {
	authCmd.AddCommand(authRevokeCmd)
}
