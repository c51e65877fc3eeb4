package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"brainlift-mcp/internal/supabase"
	"brainlift-mcp/pkg/logging"
)

// Exit codes for CLI commands. These follow common conventions so the
// bridge can be scripted around.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error.
	ExitCodeError = 1
	// ExitCodeAuthRequired indicates no usable credential could be obtained.
	ExitCodeAuthRequired = 2
)

// rootDebug enables verbose logging across the application.
var rootDebug bool

// rootCmd represents the base command for the brainlift-mcp application.
var rootCmd = &cobra.Command{
	Use:   "brainlift-mcp",
	Short: "Bridge the BrainLift API into MCP tools",
	Long: `brainlift-mcp exposes the remote BrainLift content API as callable
tools over the MCP stdio transport, authenticating on the user's behalf via
Google OAuth and a Supabase token exchange.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := logging.LevelInfo
		if rootDebug {
			level = logging.LevelDebug
		}
		// Stdout carries the MCP protocol stream, so logs go to stderr.
		logging.Init(level, os.Stderr)
	},
}

// SetVersion sets the version for the root command. Called from the main
// package to inject the build version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "brainlift-mcp version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode maps error types to semantic exit codes.
func getExitCode(err error) int {
	var authUnavailable *supabase.AuthUnavailableError
	if errors.As(err, &authUnavailable) {
		return ExitCodeAuthRequired
	}
	return ExitCodeError
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&rootDebug, "debug", false, "Enable debug logging")
	rootCmd.AddCommand(newVersionCmd())
}
