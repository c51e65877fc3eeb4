package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brainlift-mcp/internal/supabase"
)

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "generic error",
			err:  errors.New("something broke"),
			want: ExitCodeError,
		},
		{
			name: "auth unavailable",
			err:  &supabase.AuthUnavailableError{Err: errors.New("no credential")},
			want: ExitCodeAuthRequired,
		},
		{
			name: "wrapped auth unavailable",
			err:  fmt.Errorf("login failed: %w", &supabase.AuthUnavailableError{Err: errors.New("no credential")}),
			want: ExitCodeAuthRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, getExitCode(tt.err))
		})
	}
}

func TestVersionCommand(t *testing.T) {
	SetVersion("1.2.3")

	var out bytes.Buffer
	cmd := newVersionCmd()
	cmd.SetOut(&out)

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "brainlift-mcp version 1.2.3\n", out.String())
}
