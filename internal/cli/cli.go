package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/asynkron/gopatch/internal/config"
	"github.com/asynkron/gopatch/internal/logging"
	"github.com/asynkron/gopatch/pkg/patch"
)

const configFlag = "config"

// Run executes gopatch with the provided CLI arguments.
// It returns a POSIX-style exit code indicating whether execution succeeded.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if stdin == nil {
		stdin = strings.NewReader("")
	}
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	cmd := newRootCmd(stdin, stdout, stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}

	var exitErr *ExitError
	if !errors.As(err, &exitErr) || !exitErr.Reported {
		fmt.Fprintf(stderr, "error: %v\n", err)
		if ExitCode(err) == ExitUsage {
			fmt.Fprintf(stderr, "Run '%s --help' for usage.\n", cmd.Name())
		}
	}
	return ExitCode(err)
}

type runner struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	r := &runner{stdin: stdin, stdout: stdout, stderr: stderr}

	cmd := &cobra.Command{
		Use:   "gopatch [flags] [PATCHFILE]",
		Short: "Apply unified diffs to files",
		Long: `gopatch applies a unified diff to the files it names.

The patch is read from PATCHFILE, or from standard input when PATCHFILE is
omitted or "-". Files are patched in the order they appear; the first failure
stops the run and leaves earlier files patched.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.MaximumNArgs(1)(cmd, args); err != nil {
				return usageError(err)
			}
			return nil
		},
		RunE:          r.run,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	flags := cmd.Flags()
	flags.StringP(config.KeyDirectory, "d", "", "directory patch paths are resolved against")
	flags.IntP(config.KeyStrip, "p", 0, "strip N leading path components from patch paths")
	flags.String(config.KeyLineEnding, config.LineEndingNative, "line ending for written files (native, lf, crlf, auto)")
	flags.Bool(config.KeyStrict, false, "reject hunks that are out of order or overlap")
	flags.Bool(config.KeyDryRun, false, "show what would change without writing files")
	flags.CountP(config.KeyVerbose, "v", "increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	flags.Bool(config.KeyNoColor, false, "disable colored output")
	flags.String(configFlag, "", "config file (default is ./"+config.DefaultFileName+" when present)")

	return cmd
}

func (r *runner) run(cmd *cobra.Command, args []string) error {
	configFile, err := cmd.Flags().GetString(configFlag)
	if err != nil {
		return usageError(err)
	}
	cfg, err := config.Load(config.Sources{ConfigFile: configFile, Flags: cmd.Flags()})
	if err != nil {
		return usageError(err)
	}

	base := logging.Setup(cfg.Verbose, r.stderr, cfg.NoColor)
	logger := logging.GetLogger("cli")

	text, source, err := r.readPatch(args)
	if err != nil {
		return &ExitError{Code: ExitIO, Err: err}
	}
	logger.Debug().Str("source", source).Int("bytes", len(text)).Msg("patch loaded")

	if err := cmd.Context().Err(); err != nil {
		return err
	}

	opts := cfg.PatchOptions()
	opts.Logger = &base

	results, applyErr := patch.Apply(text, opts)
	newRenderer(r.stdout, cfg.Directory, cfg.NoColor).results(results, cfg.DryRun)
	if applyErr != nil {
		logger.Debug().Err(applyErr).Int("applied", len(results)).Msg("patch failed")
		newRenderer(r.stderr, cfg.Directory, cfg.NoColor).failed(applyErr)
		return &ExitError{Code: ExitCode(applyErr), Err: applyErr, Reported: true}
	}

	logger.Info().Int("files", len(results)).Bool("dry_run", cfg.DryRun).Msg("patch applied")
	return nil
}

func (r *runner) readPatch(args []string) (string, string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(r.stdin)
		if err != nil {
			return "", "", fmt.Errorf("failed to read patch from stdin: %w", err)
		}
		return string(data), "stdin", nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", "", fmt.Errorf("failed to read patch %s: %w", args[0], err)
	}
	return string(data), args[0], nil
}
