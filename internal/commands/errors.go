package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hay-kot/criterio"

	"todo/internal/exitcode"
	"todo/internal/logging"
	"todo/internal/service"
	"todo/internal/session"
	"todo/internal/tasks"
)

// usageError is a problem with the command line itself.
type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return usageError{msg: fmt.Sprintf(format, args...)}
}

// report prints err as "error: <message>" and returns the matching exit code.
// Validation failures print one line per field.
func report(ctx context.Context, errOut io.Writer, err error) int {
	log := logging.From(ctx, "commands")
	log.Debug().Err(err).Msg("command failed")

	var fieldErrs criterio.FieldErrors
	var usage usageError
	var apiErr *service.APIError

	switch {
	case errors.Is(err, tasks.ErrStale), errors.Is(err, context.Canceled):
		fmt.Fprintln(errOut, "error: interrupted")
		return exitcode.Interrupted
	case errors.As(err, &fieldErrs):
		for _, fe := range fieldErrs {
			fmt.Fprintf(errOut, "error: %s: %v\n", fe.Field, fe.Err)
		}
		return exitcode.UserError
	case errors.As(err, &usage),
		errors.Is(err, tasks.ErrNotFound),
		errors.Is(err, tasks.ErrAmbiguous),
		errors.Is(err, session.ErrMissingVerificationToken):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	case errors.Is(err, session.ErrSessionExpired):
		fmt.Fprintf(errOut, "error: %v\n", session.ErrSessionExpired)
		return exitcode.AuthError
	case errors.Is(err, service.ErrUnauthorized):
		if errors.As(err, &apiErr) && apiErr.Desc != "" {
			fmt.Fprintf(errOut, "error: %s\n", apiErr.Message())
		} else {
			fmt.Fprintln(errOut, "error: not logged in (run: todo login)")
		}
		return exitcode.AuthError
	case errors.As(err, &apiErr), errors.Is(err, service.ErrNetwork):
		fmt.Fprintf(errOut, "error: %s\n", service.Message(err))
		return exitcode.BackendError
	case errors.Is(err, tasks.ErrReferenceNotReady):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}

	fmt.Fprintf(errOut, "error: %v\n", err)
	return exitcode.UserError
}
