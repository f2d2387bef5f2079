package patch

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a patch failure.
type Kind string

const (
	// KindParse means the patch text is not a valid unified diff.
	KindParse Kind = "parse"
	// KindIO means a source file could not be read or located.
	KindIO Kind = "io"
	// KindUnknown means a destination could not be written or removed.
	KindUnknown Kind = "unknown"
	// KindHunk means a hunk does not fit the file it targets.
	KindHunk Kind = "hunk"
)

// Error is returned by every Apply* function. Err holds the underlying cause
// when there is one.
type Error struct {
	Kind    Kind
	Path    string
	Hunk    int
	Header  string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Message != "" && e.Err != nil:
		return e.Message + ": " + e.Err.Error()
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	}
	return "patch error"
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsKind reports whether err is, or wraps, a patch Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var pe *Error
	if !errors.As(err, &pe) {
		return false
	}
	return pe.Kind == kind
}

func parseError(err error) *Error {
	return &Error{Kind: KindParse, Message: "failed to parse patch", Err: err}
}

func ioError(path string, err error) *Error {
	return &Error{Kind: KindIO, Path: path, Message: fmt.Sprintf("failed to read %s", path), Err: err}
}

func writeError(path string, err error) *Error {
	return &Error{Kind: KindUnknown, Path: path, Message: fmt.Sprintf("failed to write %s", path), Err: err}
}

func hunkError(index int, h Hunk, format string, args ...any) *Error {
	return &Error{
		Kind:    KindHunk,
		Hunk:    index + 1,
		Header:  h.header(),
		Message: fmt.Sprintf(format, args...),
	}
}

// FormatError renders err into a message suitable for end users.
func FormatError(err *Error) string {
	if err == nil {
		return "Unknown error occurred."
	}
	message := err.Error()
	if err.Kind != KindHunk {
		return message
	}

	displayPath := err.Path
	if displayPath == "" {
		displayPath = "unknown file"
	}
	parts := []string{fmt.Sprintf("Hunk %d does not apply to %s.", err.Hunk, displayPath), message}
	if err.Header != "" {
		parts = append(parts, "", "Offending hunk:", err.Header)
	}
	return strings.Join(parts, "\n")
}
