package patch

import (
	"strconv"
	"strings"
)

// sectionRefs holds the raw file references of one file section as written
// in the patch text. git sections keep the names go-gitdiff reports.
type sectionRefs struct {
	git    bool
	oldRef string
	newRef string
}

// scanSections lists the file sections of text in the order go-gitdiff
// returns them. Traditional "---"/"+++" headers count only when a fragment
// header follows, and hunk bodies are skipped by their line counts so that
// removed lines starting with "-- " are not mistaken for headers.
func scanSections(text string) []sectionRefs {
	lines := strings.Split(text, "\n")
	var sections []sectionRefs
	gitPending := false
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		switch {
		case strings.HasPrefix(line, "diff --git "):
			sections = append(sections, sectionRefs{git: true})
			gitPending = true
		case strings.HasPrefix(line, "@@ -"):
			gitPending = false
			oldLines, newLines, ok := fragmentCounts(line)
			if ok {
				i += fragmentLength(lines[i+1:], oldLines, newLines)
			}
		case strings.HasPrefix(line, "--- ") && i+2 < len(lines) &&
			strings.HasPrefix(lines[i+1], "+++ ") && strings.HasPrefix(lines[i+2], "@@ -"):
			if gitPending {
				gitPending = false
			} else {
				sections = append(sections, sectionRefs{
					oldRef: refText(strings.TrimPrefix(line, "--- ")),
					newRef: refText(strings.TrimPrefix(lines[i+1], "+++ ")),
				})
			}
			i++
		}
	}
	return sections
}

// refText drops the tab separated timestamp diff(1) appends to a name.
func refText(s string) string {
	if i := strings.IndexByte(s, '\t'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// fragmentCounts reads the old and new line counts of "@@ -a,b +c,d @@".
func fragmentCounts(header string) (int, int, bool) {
	fields := strings.Fields(header)
	if len(fields) < 3 || !strings.HasPrefix(fields[1], "-") || !strings.HasPrefix(fields[2], "+") {
		return 0, 0, false
	}
	oldLines, ok := rangeCount(fields[1][1:])
	if !ok {
		return 0, 0, false
	}
	newLines, ok := rangeCount(fields[2][1:])
	if !ok {
		return 0, 0, false
	}
	return oldLines, newLines, true
}

func rangeCount(r string) (int, bool) {
	_, count, found := strings.Cut(r, ",")
	if !found {
		return 1, true
	}
	n, err := strconv.Atoi(count)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// fragmentLength counts the body lines of a fragment with the given counts.
func fragmentLength(lines []string, oldLines, newLines int) int {
	n := 0
	for _, line := range lines {
		if oldLines <= 0 && newLines <= 0 {
			break
		}
		switch {
		case line == "" || line[0] == ' ':
			oldLines--
			newLines--
		case line[0] == '-':
			oldLines--
		case line[0] == '+':
			newLines--
		case line[0] == '\\':
		default:
			return n
		}
		n++
	}
	return n
}
