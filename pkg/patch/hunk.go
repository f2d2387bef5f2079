package patch

import "strings"

// Reconstruct replays hunks, in order, against the original lines and
// returns the new lines.
//
// A cursor walks the original lines from line 1. Before each hunk the
// untouched lines between the cursor and the hunk start are copied. Remove
// lines advance the cursor, Add lines emit their content and Context lines
// emit the original line under the cursor and advance. The lines left after
// the last hunk are copied as they are.
//
// Hunks are expected in ascending order. A hunk that starts behind the
// cursor rewinds it to the hunk start without a gap copy, so the lines it
// covers are emitted again; in strict mode it is rejected instead.
func Reconstruct(original []string, hunks []Hunk, strict bool) ([]string, error) {
	out := make([]string, 0, len(original))
	cursor := 1
	for i, h := range hunks {
		anchor := h.anchor()
		if anchor < 1 {
			return nil, hunkError(i, h, "hunk starts at line %d", h.OldRange.Start)
		}
		switch {
		case anchor < cursor:
			if strict {
				return nil, hunkError(i, h, "hunk starts at line %d but line %d was already consumed", anchor, cursor-1)
			}
			cursor = anchor
		case anchor > cursor:
			if anchor-1 > len(original) {
				return nil, hunkError(i, h, "hunk starts at line %d past the end of the file (%d lines)", anchor, len(original))
			}
			out = append(out, original[cursor-1:anchor-1]...)
			cursor = anchor
		}

		for _, line := range h.Lines {
			switch line.Kind {
			case LineAdd:
				out = append(out, line.Content)
			case LineRemove, LineContext:
				if cursor > len(original) {
					return nil, hunkError(i, h, "hunk reaches line %d past the end of the file (%d lines)", cursor, len(original))
				}
				if line.Kind == LineContext {
					out = append(out, original[cursor-1])
				}
				cursor++
			}
		}
	}
	if cursor-1 < len(original) {
		out = append(out, original[cursor-1:]...)
	}
	return out, nil
}

// ApplyToContent applies the hunks of fp to content, splitting and joining
// lines with lineEnding.
func ApplyToContent(content string, fp FilePatch, lineEnding string, strict bool) (string, error) {
	if lineEnding == "" {
		lineEnding = NativeLineEnding()
	}
	lines, err := Reconstruct(strings.Split(content, lineEnding), fp.Hunks, strict)
	if err != nil {
		return "", err
	}
	return strings.Join(lines, lineEnding), nil
}
