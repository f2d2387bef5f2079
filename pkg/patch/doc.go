// Package patch applies unified-diff patches to files.
//
// Patch text is parsed into a PatchSet (one FilePatch per target file) by a
// Parser, by default backed by go-gitdiff. Each FilePatch is then replayed
// against the lines of its source file: untouched regions between hunks are
// copied verbatim, removed lines are skipped, added lines are inserted and
// context lines are taken from the original file. The result is written to
// the destination named by the patch, which may differ from the source.
//
// Files are accessed through an afero.Fs so the same code path serves the OS
// filesystem, in-memory documents and tests. Hunks are applied at the line
// offsets stated in their headers; context lines are not compared against
// the file.
package patch
