package patch

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Position of the path among the whitespace separated tokens of a reference.
// The old side may carry a leading label, the new side a trailing one.
const (
	oldPathToken = 1
	newPathToken = 0
)

const defaultPerm fs.FileMode = 0o644

// OldPath returns the path embedded in an old file reference: its second
// token, or the only token when there is just one.
func (r FileRef) OldPath() (string, error) {
	return pathToken(r.Raw, oldPathToken)
}

// NewPath returns the path embedded in a new file reference: its first token.
func (r FileRef) NewPath() (string, error) {
	return pathToken(r.Raw, newPathToken)
}

// pathToken splits on whitespace, so paths containing spaces are not
// supported.
func pathToken(raw string, index int) (string, error) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return "", fmt.Errorf("invalid patch path %q", raw)
	}
	if index < len(fields) {
		return fields[index], nil
	}
	return fields[0], nil
}

// stripComponents drops the first n components of a slash separated patch
// path. A leading "/" counts as a component.
func stripComponents(path string, n int) (string, error) {
	if n <= 0 {
		return path, nil
	}
	slashed := filepath.ToSlash(path)
	var parts []string
	if strings.HasPrefix(slashed, "/") {
		parts = append(parts, "/")
	}
	for _, part := range strings.Split(slashed, "/") {
		if part == "" || part == "." {
			continue
		}
		parts = append(parts, part)
	}
	if n >= len(parts) {
		return "", fmt.Errorf("cannot strip %d components from %s: %w", n, path, fs.ErrNotExist)
	}
	return filepath.Join(parts[n:]...), nil
}

type workspace struct {
	fs      afero.Fs
	workDir string
	strip   int
}

func newWorkspace(opts Options) *workspace {
	return &workspace{
		fs:      opts.Fs,
		workDir: strings.TrimSpace(opts.WorkDir),
		strip:   opts.Strip,
	}
}

// locate resolves a reference to a filesystem path.
func (ws *workspace) locate(ref FileRef, token int) (string, error) {
	rel, err := pathToken(ref.Raw, token)
	if err != nil {
		return "", err
	}
	rel, err = stripComponents(rel, ws.strip)
	if err != nil {
		return "", err
	}
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(cleaned) || ws.workDir == "" {
		return cleaned, nil
	}
	return filepath.Join(ws.workDir, cleaned), nil
}

func (ws *workspace) read(path string) (string, fs.FileMode, error) {
	info, err := ws.fs.Stat(path)
	if err != nil {
		return "", 0, err
	}
	if info.IsDir() {
		return "", 0, &fs.PathError{Op: "read", Path: path, Err: fmt.Errorf("is a directory")}
	}
	data, err := afero.ReadFile(ws.fs, path)
	if err != nil {
		return "", 0, err
	}
	return string(data), info.Mode().Perm(), nil
}

// write replaces the content of path. Missing parent directories are an
// error, whatever the backing filesystem does on its own.
func (ws *workspace) write(path, content string, perm fs.FileMode) error {
	if dir := filepath.Dir(path); dir != "." {
		ok, err := afero.DirExists(ws.fs, dir)
		if err != nil {
			return err
		}
		if !ok {
			return &fs.PathError{Op: "write", Path: path, Err: fs.ErrNotExist}
		}
	}
	if perm == 0 {
		perm = defaultPerm
	}
	return afero.WriteFile(ws.fs, path, []byte(content), perm)
}

func (ws *workspace) remove(path string) error {
	return ws.fs.Remove(path)
}
