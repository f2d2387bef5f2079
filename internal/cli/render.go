package cli

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/asynkron/gopatch/pkg/patch"
)

type renderer struct {
	out     io.Writer
	workDir string

	status  map[string]lipgloss.Style
	path    lipgloss.Style
	muted   lipgloss.Style
	added   lipgloss.Style
	removed lipgloss.Style
	failure lipgloss.Style
}

func newRenderer(out io.Writer, workDir string, noColor bool) *renderer {
	lr := lipgloss.NewRenderer(out)
	if noColor {
		lr.SetColorProfile(termenv.Ascii)
	} else {
		lr.SetColorProfile(termenv.NewOutput(out).EnvColorProfile())
	}

	green := lr.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	red := lr.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	return &renderer{
		out:     out,
		workDir: workDir,
		status: map[string]lipgloss.Style{
			patch.StatusModified: lr.NewStyle().Foreground(lipgloss.Color("33")).Bold(true),
			patch.StatusAdded:    green,
			patch.StatusDeleted:  red,
			patch.StatusRenamed:  lr.NewStyle().Foreground(lipgloss.Color("129")).Bold(true),
		},
		path:    lr.NewStyle().Foreground(lipgloss.Color("252")),
		muted:   lr.NewStyle().Foreground(lipgloss.Color("244")),
		added:   lr.NewStyle().Foreground(lipgloss.Color("2")),
		removed: lr.NewStyle().Foreground(lipgloss.Color("9")),
		failure: red,
	}
}

// display shortens paths below the working directory.
func (r *renderer) display(path string) string {
	if r.workDir == "" || path == "" {
		return path
	}
	rel, err := filepath.Rel(r.workDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}

func (r *renderer) results(results []patch.Result, dryRun bool) {
	for _, res := range results {
		style, ok := r.status[res.Status]
		if !ok {
			style = r.muted
		}
		line := style.Render(res.Status) + " " + r.path.Render(r.display(res.Path))
		if res.Status == patch.StatusRenamed {
			line = style.Render(res.Status) + " " + r.path.Render(r.display(res.Source)) + r.muted.Render(" -> ") + r.path.Render(r.display(res.Path))
		}
		fmt.Fprintln(r.out, line)
		if dryRun {
			r.preview(res.Before, res.After)
		}
	}
	if dryRun && len(results) > 0 {
		fmt.Fprintln(r.out, r.muted.Render(fmt.Sprintf("dry run: %d file(s) left untouched", len(results))))
	}
}

// preview prints the changed lines between before and after.
func (r *renderer) preview(before, after string) {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	for _, d := range diffs {
		var prefix string
		var style lipgloss.Style
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix, style = "+", r.added
		case diffmatchpatch.DiffDelete:
			prefix, style = "-", r.removed
		default:
			continue
		}
		for _, line := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			fmt.Fprintln(r.out, "  "+style.Render(prefix+strings.TrimSuffix(line, "\r")))
		}
	}
}

func (r *renderer) failed(err error) {
	message := err.Error()
	var patchErr *patch.Error
	if errors.As(err, &patchErr) {
		message = patch.FormatError(patchErr)
	}
	fmt.Fprintln(r.out, r.failure.Render("error:")+" "+message)
}
