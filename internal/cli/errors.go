package cli

import (
	"errors"

	"github.com/asynkron/gopatch/pkg/patch"
)

// Exit codes returned by Run.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
	ExitParse   = 3
	ExitIO      = 4
	ExitHunk    = 5
)

// ExitError carries the exit code for a failed invocation. Reported is set
// once the error has already been written to stderr.
type ExitError struct {
	Code     int
	Err      error
	Reported bool
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return "exit status"
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func usageError(err error) error {
	return &ExitError{Code: ExitUsage, Err: err}
}

// codeForKind maps patch error kinds to exit codes.
func codeForKind(kind patch.Kind) int {
	switch kind {
	case patch.KindParse:
		return ExitParse
	case patch.KindIO:
		return ExitIO
	case patch.KindHunk:
		return ExitHunk
	default:
		return ExitFailure
	}
}

// ExitCode resolves the exit code for err.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	var patchErr *patch.Error
	if errors.As(err, &patchErr) {
		return codeForKind(patchErr.Kind)
	}
	return ExitFailure
}
