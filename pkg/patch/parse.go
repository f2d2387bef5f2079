package patch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
)

// LineKind identifies how a hunk line is replayed against the original file.
type LineKind int

const (
	// LineContext copies the original line at the cursor.
	LineContext LineKind = iota
	// LineRemove skips the original line at the cursor.
	LineRemove
	// LineAdd inserts new content without consuming an original line.
	LineAdd
)

func (k LineKind) String() string {
	switch k {
	case LineContext:
		return "context"
	case LineRemove:
		return "remove"
	case LineAdd:
		return "add"
	default:
		return fmt.Sprintf("LineKind(%d)", int(k))
	}
}

// Line is a single entry of a hunk. Content holds the text without its line
// terminator. For LineRemove it is informational only.
type Line struct {
	Kind    LineKind
	Content string
}

// Range is a 1-based line span as written in a hunk header.
type Range struct {
	Start int
	Count int
}

// Hunk captures one "@@" block of a file patch.
type Hunk struct {
	OldRange Range
	NewRange Range
	Header   string
	Lines    []Line
}

// anchor returns the 1-based original line the hunk starts consuming at.
// A pure insertion (Count == 0) names the line it follows.
func (h Hunk) anchor() int {
	if h.OldRange.Count == 0 {
		return h.OldRange.Start + 1
	}
	return h.OldRange.Start
}

func (h Hunk) header() string {
	if h.Header != "" {
		return h.Header
	}
	return fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.OldRange.Start, h.OldRange.Count, h.NewRange.Start, h.NewRange.Count)
}

const devNull = "/dev/null"

// FileRef is the raw file reference of one side of a file patch. It embeds a
// path and possibly extra whitespace separated tokens such as labels or
// timestamps.
type FileRef struct {
	Raw string
}

// IsDevNull reports whether the reference denotes a missing side.
func (r FileRef) IsDevNull() bool {
	return strings.TrimSpace(r.Raw) == devNull
}

// FilePatch holds the hunks that transform one source file into one
// destination file.
type FilePatch struct {
	Old      FileRef
	New      FileRef
	Hunks    []Hunk
	IsNew    bool
	IsDelete bool
	IsRename bool
}

// PatchSet is the ordered list of file patches found in a patch text.
type PatchSet []FilePatch

// Parser turns raw patch text into a PatchSet.
type Parser interface {
	ParseMulti(text string) (PatchSet, error)
}

// ParserFunc adapts a function to the Parser interface.
type ParserFunc func(text string) (PatchSet, error)

// ParseMulti calls f(text).
func (f ParserFunc) ParseMulti(text string) (PatchSet, error) {
	return f(text)
}

// GitDiffParser parses traditional and git style unified diffs with
// go-gitdiff.
//
// git headers keep the names go-gitdiff reports, with their a/ and b/
// prefixes removed. go-gitdiff folds the two names of a traditional header
// into one, so for those sections the "---" and "+++" references are taken
// from the patch text as written, prefixes and labels included.
type GitDiffParser struct{}

// ParseMulti implements Parser.
func (GitDiffParser) ParseMulti(text string) (PatchSet, error) {
	files, _, err := gitdiff.Parse(strings.NewReader(text))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.New("no file patches found")
	}
	sections := scanSections(text)
	if len(sections) != len(files) {
		sections = nil
	}
	set := make(PatchSet, 0, len(files))
	for i, file := range files {
		fp, err := convertFile(file)
		if err != nil {
			return nil, err
		}
		if sections != nil && !sections[i].git {
			useRawRefs(&fp, sections[i])
		}
		set = append(set, fp)
	}
	return set, nil
}

// Parse parses text with the default parser.
func Parse(text string) (PatchSet, error) {
	return GitDiffParser{}.ParseMulti(text)
}

func convertFile(file *gitdiff.File) (FilePatch, error) {
	name := file.NewName
	if name == "" {
		name = file.OldName
	}
	if file.IsBinary {
		return FilePatch{}, fmt.Errorf("binary patch for %s is not supported", name)
	}

	fp := FilePatch{
		Old:      FileRef{Raw: file.OldName},
		New:      FileRef{Raw: file.NewName},
		IsNew:    file.IsNew,
		IsDelete: file.IsDelete,
		IsRename: file.IsRename,
	}
	if file.IsNew || fp.Old.Raw == "" {
		fp.Old.Raw = devNull
		fp.IsNew = true
	}
	if file.IsDelete || fp.New.Raw == "" {
		fp.New.Raw = devNull
		fp.IsDelete = true
	}
	if fp.IsNew && fp.IsDelete {
		return FilePatch{}, fmt.Errorf("file patch for %q has neither a source nor a destination", name)
	}

	for _, frag := range file.TextFragments {
		fp.Hunks = append(fp.Hunks, convertFragment(frag))
	}
	return fp, nil
}

// useRawRefs replaces the folded go-gitdiff names of a traditional section
// with its written references. Missing sides stay /dev/null.
func useRawRefs(fp *FilePatch, refs sectionRefs) {
	if !fp.IsNew && refs.oldRef != "" {
		fp.Old.Raw = refs.oldRef
	}
	if !fp.IsDelete && refs.newRef != "" {
		fp.New.Raw = refs.newRef
	}
}

func convertFragment(frag *gitdiff.TextFragment) Hunk {
	h := Hunk{
		OldRange: Range{Start: int(frag.OldPosition), Count: int(frag.OldLines)},
		NewRange: Range{Start: int(frag.NewPosition), Count: int(frag.NewLines)},
		Lines:    make([]Line, 0, len(frag.Lines)),
	}
	h.Header = h.header()
	if frag.Comment != "" {
		h.Header += " " + frag.Comment
	}
	for _, l := range frag.Lines {
		content := strings.TrimSuffix(l.Line, "\n")
		switch l.Op {
		case gitdiff.OpAdd:
			h.Lines = append(h.Lines, Line{Kind: LineAdd, Content: content})
		case gitdiff.OpDelete:
			h.Lines = append(h.Lines, Line{Kind: LineRemove, Content: content})
		default:
			h.Lines = append(h.Lines, Line{Kind: LineContext, Content: content})
		}
	}
	return h
}
