package commands

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"todo/internal/exitcode"
	"todo/internal/service"
	"todo/internal/tasks"
)

func TestReport_Interrupted(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "discarded load", err: tasks.ErrStale},
		{name: "cancelled request", err: fmt.Errorf("%w: %w", service.ErrNetwork, context.Canceled)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var errOut bytes.Buffer
			code := report(context.Background(), &errOut, tt.err)

			if code != exitcode.Interrupted {
				t.Errorf("expected exit code %d, got %d", exitcode.Interrupted, code)
			}
			if got := errOut.String(); got != "error: interrupted\n" {
				t.Errorf("expected %q, got %q", "error: interrupted\n", got)
			}
		})
	}
}

func TestReport_NetworkFailureIsBackendError(t *testing.T) {
	var errOut bytes.Buffer
	code := report(context.Background(), &errOut, fmt.Errorf("%w: connection refused", service.ErrNetwork))

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if got := errOut.String(); got != "error: "+service.NetworkMessage+"\n" {
		t.Errorf("unexpected output %q", got)
	}
}
