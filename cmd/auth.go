package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"brainlift-mcp/internal/config"
	"brainlift-mcp/internal/oauth"
)

// authCmd represents the auth command group.
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the Google OAuth credential",
	Long: `Manage the Google OAuth credential used to access the BrainLift API.

Examples:
  brainlift-mcp auth login    # Run the interactive authorization flow
  brainlift-mcp auth status   # Show the stored credential's state
  brainlift-mcp auth revoke   # Revoke and delete the stored credential`,
}

// newOAuthManager builds the credential manager from configuration. The
// auth commands operate on the OAuth layer only, so Supabase settings are
// not required.
func newOAuthManager() (*oauth.Manager, *oauth.CredentialStore, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	store := oauth.NewCredentialStore(cfg.TokenPath)
	manager := oauth.NewManager(oauth.ManagerConfig{
		ClientSecretsPath: cfg.ClientSecretsPath,
		Store:             store,
		CallbackPort:      cfg.CallbackPort,
	})

	return manager, store, nil
}

func init() {
	rootCmd.AddCommand(authCmd)
}
