package cli

import (
	"errors"
	"fmt"

	"github.com/personal-ledger/internal/domain/shared"
)

// Process exit codes
const (
	ExitSuccess  = 0
	ExitRejected = 1 // Invalid input, unknown account or a business rule refused the operation
	ExitFailure  = 2 // Storage or internal failure, the operation may be retried
)

// usageError reports a malformed command line
type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...any) error {
	return usageError{err: fmt.Errorf(format, args...)}
}

func isUsageError(err error) bool {
	var ue usageError
	return errors.As(err, &ue)
}

// ExitCode maps the error returned by a command onto the process exit code
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case isUsageError(err), shared.IsClientError(err):
		return ExitRejected
	default:
		return ExitFailure
	}
}
