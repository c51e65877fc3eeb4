package server

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestServe_StopsOnContextCancel(t *testing.T) {
	s := New(&fakeAPI{}, "test")

	in, _ := io.Pipe()
	var out bytes.Buffer

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- s.serve(ctx, in, &out)
	}()

	cancel()

	select {
	case err := <-done:
		if err != nil {
			assert.ErrorIs(t, err, context.Canceled)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Server did not stop after context cancellation")
	}
}
