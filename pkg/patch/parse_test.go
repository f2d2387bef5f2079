package patch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTraditionalDiff(t *testing.T) {
	t.Parallel()

	set, err := Parse(strings.Join([]string{
		"--- a/file.txt\t2024-01-01 10:00:00.000000000 +0000",
		"+++ b/file.txt\t2024-01-02 10:00:00.000000000 +0000",
		"@@ -1,3 +1,3 @@ func header",
		" keep",
		"-old",
		"+new",
		" tail",
		"",
	}, "\n"))
	require.NoError(t, err)
	require.Len(t, set, 1)

	fp := set[0]
	require.False(t, fp.IsNew)
	require.False(t, fp.IsDelete)
	require.Len(t, fp.Hunks, 1)

	h := fp.Hunks[0]
	require.Equal(t, Range{Start: 1, Count: 3}, h.OldRange)
	require.Equal(t, Range{Start: 1, Count: 3}, h.NewRange)
	require.Equal(t, "@@ -1,3 +1,3 @@ func header", h.Header)
	require.Equal(t, []Line{
		{Kind: LineContext, Content: "keep"},
		{Kind: LineRemove, Content: "old"},
		{Kind: LineAdd, Content: "new"},
		{Kind: LineContext, Content: "tail"},
	}, h.Lines)

	require.Equal(t, "a/file.txt", fp.Old.Raw)
	require.Equal(t, "b/file.txt", fp.New.Raw)
	oldPath, err := fp.Old.OldPath()
	require.NoError(t, err)
	require.Equal(t, "a/file.txt", oldPath)
	newPath, err := fp.New.NewPath()
	require.NoError(t, err)
	require.Equal(t, "b/file.txt", newPath)
}

const mixedSections = "--- a/one.txt\n" +
	"+++ b/one.txt\n" +
	"@@ -1 +1 @@\n" +
	"--- removed dashes\n" +
	"+++ added pluses\n" +
	"@@ -5 +5 @@\n" +
	"-x\n" +
	"+y\n" +
	"diff --git a/g.txt b/g.txt\n" +
	"index 1111111..2222222 100644\n" +
	"--- a/g.txt\n" +
	"+++ b/g.txt\n" +
	"@@ -1 +1 @@\n" +
	"-a\n" +
	"+b\n" +
	"--- old.txt\t2024-01-01 10:00:00 +0000\n" +
	"+++ new.txt\t2024-01-02 10:00:00 +0000\n" +
	"@@ -1 +1 @@\n" +
	"-c\n" +
	"+d\n"

func TestScanSectionsSkipsHunkBodies(t *testing.T) {
	t.Parallel()

	require.Equal(t, []sectionRefs{
		{oldRef: "a/one.txt", newRef: "b/one.txt"},
		{git: true},
		{oldRef: "old.txt", newRef: "new.txt"},
	}, scanSections(mixedSections))
}

func TestParseKeepsWrittenTraditionalReferences(t *testing.T) {
	t.Parallel()

	set, err := Parse(mixedSections)
	require.NoError(t, err)
	require.Len(t, set, 3)

	require.Len(t, set[0].Hunks, 2)
	require.Equal(t, "a/one.txt", set[0].Old.Raw)
	require.Equal(t, "b/one.txt", set[0].New.Raw)

	require.Equal(t, "g.txt", set[1].Old.Raw)
	require.Equal(t, "g.txt", set[1].New.Raw)

	require.Equal(t, "old.txt", set[2].Old.Raw)
	require.Equal(t, "new.txt", set[2].New.Raw)
	require.False(t, set[2].IsRename)
}

func TestFragmentCounts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		header             string
		oldLines, newLines int
		ok                 bool
	}{
		{"@@ -1,3 +1,4 @@ func main", 3, 4, true},
		{"@@ -7 +7 @@", 1, 1, true},
		{"@@ -0,0 +1 @@", 0, 1, true},
		{"@@ -1,x +1 @@", 0, 0, false},
		{"@@ garbage", 0, 0, false},
	}
	for _, tt := range tests {
		oldLines, newLines, ok := fragmentCounts(tt.header)
		require.Equal(t, tt.ok, ok, tt.header)
		require.Equal(t, tt.oldLines, oldLines, tt.header)
		require.Equal(t, tt.newLines, newLines, tt.header)
	}
}

func TestParseGitDiffNewAndDeletedFiles(t *testing.T) {
	t.Parallel()

	set, err := Parse(strings.Join([]string{
		"diff --git a/added.txt b/added.txt",
		"new file mode 100644",
		"index 0000000..ce01362",
		"--- /dev/null",
		"+++ b/added.txt",
		"@@ -0,0 +1 @@",
		"+hello",
		"diff --git a/removed.txt b/removed.txt",
		"deleted file mode 100644",
		"index ce01362..0000000",
		"--- a/removed.txt",
		"+++ /dev/null",
		"@@ -1 +0,0 @@",
		"-hello",
		"",
	}, "\n"))
	require.NoError(t, err)
	require.Len(t, set, 2)

	require.True(t, set[0].IsNew)
	require.True(t, set[0].Old.IsDevNull())
	require.Equal(t, "added.txt", set[0].New.Raw)

	require.True(t, set[1].IsDelete)
	require.True(t, set[1].New.IsDevNull())
	require.Equal(t, "removed.txt", set[1].Old.Raw)
}

func TestParseRejectsBinaryPatches(t *testing.T) {
	t.Parallel()

	_, err := Parse(strings.Join([]string{
		"diff --git a/img.png b/img.png",
		"index 1111111..2222222 100644",
		"Binary files a/img.png and b/img.png differ",
		"",
	}, "\n"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "binary")
}

func TestParserFuncIsUsedByApplier(t *testing.T) {
	t.Parallel()

	called := false
	parser := ParserFunc(func(text string) (PatchSet, error) {
		called = true
		require.True(t, strings.HasSuffix(text, "\n"), "patch text should be newline terminated")
		return PatchSet{}, nil
	})

	results, err := Apply("anything", Options{LineEnding: LF, Parser: parser})
	require.NoError(t, err)
	require.Empty(t, results)
	require.True(t, called)
}

func TestLineKindString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "context", LineContext.String())
	require.Equal(t, "remove", LineRemove.String())
	require.Equal(t, "add", LineAdd.String())
	require.Equal(t, "LineKind(7)", LineKind(7).String())
}
