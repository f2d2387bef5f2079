package patch

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/rs/zerolog"
)

// Result statuses.
const (
	StatusModified = "M"
	StatusAdded    = "A"
	StatusDeleted  = "D"
	StatusRenamed  = "R"
)

// Result describes the outcome for a single file patch.
type Result struct {
	Status string
	// Path is the destination, or the removed source for deletions.
	Path   string
	Source string
	Hunks  int
	// Before and After are only filled in dry-run mode.
	Before string
	After  string
}

// Applier applies patches with a fixed set of options.
type Applier struct {
	opts Options
	ws   *workspace
	log  zerolog.Logger
}

// NewApplier resolves the defaults of opts once and returns an Applier.
func NewApplier(opts Options) *Applier {
	opts.setDefaults()
	return &Applier{
		opts: opts,
		ws:   newWorkspace(opts),
		log:  opts.Logger.With().Str("component", "patch").Logger(),
	}
}

// Apply parses patchText and applies every file patch it contains.
func Apply(patchText string, opts Options) ([]Result, error) {
	return NewApplier(opts).Apply(patchText)
}

// ApplyPatchSet applies an already parsed patch set.
func ApplyPatchSet(set PatchSet, opts Options) ([]Result, error) {
	return NewApplier(opts).ApplyPatchSet(set)
}

// Apply parses patchText and applies it. Nothing is touched when parsing
// fails.
func (a *Applier) Apply(patchText string) ([]Result, error) {
	set, err := a.opts.Parser.ParseMulti(normalizePatchText(patchText, a.opts.LineEnding))
	if err != nil {
		return nil, parseError(err)
	}
	return a.ApplyPatchSet(set)
}

// ApplyPatchSet applies file patches in order and stops at the first
// failure. Files written before the failure are kept and reported in the
// returned results.
func (a *Applier) ApplyPatchSet(set PatchSet) ([]Result, error) {
	results := make([]Result, 0, len(set))
	for _, fp := range set {
		res, err := a.applyFile(fp)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (a *Applier) applyFile(fp FilePatch) (Result, error) {
	var (
		src     string
		content string
		perm    fs.FileMode
		err     error
	)
	if !fp.IsNew {
		src, err = a.ws.locate(fp.Old, oldPathToken)
		if err != nil {
			return Result{}, ioError(fp.Old.Raw, err)
		}
		content, perm, err = a.ws.read(src)
		if err != nil {
			return Result{}, ioError(src, err)
		}
	}

	dst := src
	if !fp.IsDelete {
		dst, err = a.ws.locate(fp.New, newPathToken)
		if err != nil {
			return Result{}, ioError(fp.New.Raw, err)
		}
	}

	log := a.log.With().Str("source", src).Str("destination", dst).Logger()
	log.Debug().Int("hunks", len(fp.Hunks)).Msg("applying file patch")

	lineEnding := a.opts.LineEnding
	if a.opts.AutoLineEnding && content != "" {
		lineEnding = DetectLineEnding(content)
	}
	updated, err := ApplyToContent(content, fp, lineEnding, a.opts.Strict)
	if err != nil {
		var pe *Error
		if errors.As(err, &pe) && pe.Path == "" {
			pe.Path = src
			if pe.Path == "" {
				pe.Path = dst
			}
		}
		return Result{}, err
	}
	for i, h := range fp.Hunks {
		log.Trace().Int("hunk", i+1).Str("header", h.header()).Msg("hunk applied")
	}

	res := Result{Status: status(fp, src, dst), Path: dst, Source: src, Hunks: len(fp.Hunks)}
	if a.opts.DryRun {
		res.Before = content
		res.After = updated
		log.Info().Str("status", res.Status).Msg("dry run, not writing")
		return res, nil
	}

	if fp.IsDelete {
		if err := a.ws.remove(src); err != nil {
			return Result{}, writeError(src, err)
		}
		log.Info().Msg("removed file")
		return res, nil
	}
	if err := a.ws.write(dst, updated, perm); err != nil {
		return Result{}, writeError(dst, err)
	}
	if fp.IsRename && !fp.IsNew && src != dst {
		if err := a.ws.remove(src); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Result{}, writeError(src, err)
		}
	}
	log.Info().Str("status", res.Status).Msg("wrote file")
	return res, nil
}

func status(fp FilePatch, src, dst string) string {
	switch {
	case fp.IsNew:
		return StatusAdded
	case fp.IsDelete:
		return StatusDeleted
	case src != dst:
		return StatusRenamed
	default:
		return StatusModified
	}
}

// normalizePatchText makes sure the text ends with a line ending so the
// parser sees the final hunk, and converts CRLF breaks to LF.
func normalizePatchText(text, lineEnding string) string {
	if !strings.HasSuffix(text, lineEnding) {
		text += lineEnding
	}
	return strings.ReplaceAll(text, CRLF, LF)
}
