package patch

import (
	"runtime"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Line ending tokens.
const (
	LF   = "\n"
	CRLF = "\r\n"
)

// NativeLineEnding returns the line ending of the host platform.
func NativeLineEnding() string {
	if runtime.GOOS == "windows" {
		return CRLF
	}
	return LF
}

// DetectLineEnding returns CRLF when content contains it and LF otherwise.
func DetectLineEnding(content string) string {
	if strings.Contains(content, CRLF) {
		return CRLF
	}
	return LF
}

// Options configure how patches are resolved, applied and written.
type Options struct {
	// LineEnding splits source files into lines and joins the result.
	// Empty means NativeLineEnding.
	LineEnding string
	// AutoLineEnding picks the line ending per file with DetectLineEnding.
	// LineEnding is still used for new files and for the patch text.
	AutoLineEnding bool
	// WorkDir is the base all patch paths are resolved against.
	WorkDir string
	// Strip drops that many leading components from patch paths.
	Strip int
	// Strict rejects hunks that start before the end of the previous one.
	Strict bool
	// DryRun computes every result without touching the filesystem.
	DryRun bool

	Fs     afero.Fs
	Parser Parser
	Logger *zerolog.Logger
}

// DefaultOptions returns options for the OS filesystem with the host line
// ending resolved.
func DefaultOptions() Options {
	return Options{LineEnding: NativeLineEnding()}
}

func (o *Options) setDefaults() {
	if o.LineEnding == "" {
		o.LineEnding = NativeLineEnding()
	}
	if o.Strip < 0 {
		o.Strip = 0
	}
	if o.Fs == nil {
		o.Fs = afero.NewOsFs()
	}
	if o.Parser == nil {
		o.Parser = GitDiffParser{}
	}
	if o.Logger == nil {
		nop := zerolog.Nop()
		o.Logger = &nop
	}
}
