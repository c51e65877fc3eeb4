package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"brainlift-mcp/internal/brainlift"
	"brainlift-mcp/internal/config"
	"brainlift-mcp/internal/oauth"
	"brainlift-mcp/internal/server"
	"brainlift-mcp/internal/supabase"
	"brainlift-mcp/pkg/logging"
)

// serveCmd defines the serve command structure. This is the main command:
// it starts the MCP stdio server that exposes the BrainLift tools.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the BrainLift MCP server on stdio",
	Long: `Starts the MCP server on the stdio transport.

The server exposes three read-only tools (get_brainlifts,
get_brainlift_info, get_brainlift_doks). The first tool call that needs
authentication may block on an interactive browser-based OAuth flow; after
that, the credential is cached on disk and refreshed automatically.

Run 'brainlift-mcp auth login' beforehand to complete the interactive flow
outside of any tool call.

Set BRAINLIFT_DEMO_MODE=true to serve canned payloads without any
credentials or network access.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

// runServe wires the credential manager, token exchange cache, and API
// client together and serves MCP over stdio.
func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	client, err := buildClient(cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return server.New(client, rootCmd.Version).Start(ctx)
}

// buildClient constructs the API access layer. In demo mode no credential
// machinery is created at all.
func buildClient(cfg *config.Config) (*brainlift.Client, error) {
	if cfg.DemoMode {
		logging.Info("Serve", "Demo mode enabled, serving canned payloads")
		return brainlift.NewClient(brainlift.ClientConfig{DemoMode: true})
	}

	manager := oauth.NewManager(oauth.ManagerConfig{
		ClientSecretsPath: cfg.ClientSecretsPath,
		Store:             oauth.NewCredentialStore(cfg.TokenPath),
		CallbackPort:      cfg.CallbackPort,
	})

	tokens, err := supabase.NewTokenManager(supabase.TokenManagerConfig{
		Credentials: manager,
		SupabaseURL: cfg.SupabaseURL,
		AnonKey:     cfg.SupabaseAnonKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create token manager: %w", err)
	}

	return brainlift.NewClient(brainlift.ClientConfig{
		BaseURL:     cfg.APIBaseURL,
		AnonKey:     cfg.SupabaseAnonKey,
		Tokens:      tokens,
		OwnerFilter: cfg.OwnerFilter,
	})
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
