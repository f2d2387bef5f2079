package patch

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

var memRoot = string(filepath.Separator)

// ApplyToMemory applies patchText to an in-memory set of documents keyed by
// slash separated relative path. The input map is not modified; the updated
// snapshot is returned. opts.Fs and opts.WorkDir are ignored.
func ApplyToMemory(patchText string, files map[string]string, opts Options) (map[string]string, []Result, error) {
	mem := afero.NewMemMapFs()
	for name, content := range files {
		path := filepath.Join(memRoot, filepath.FromSlash(name))
		if err := mem.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("seed %s: %w", name, err)
		}
		if err := afero.WriteFile(mem, path, []byte(content), defaultPerm); err != nil {
			return nil, nil, fmt.Errorf("seed %s: %w", name, err)
		}
	}

	opts.Fs = mem
	opts.WorkDir = memRoot
	results, err := Apply(patchText, opts)
	for i := range results {
		results[i].Path = memKey(results[i].Path)
		results[i].Source = memKey(results[i].Source)
	}
	if err != nil {
		return nil, results, err
	}

	snapshot := make(map[string]string, len(files))
	walkErr := afero.Walk(mem, memRoot, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		data, err := afero.ReadFile(mem, path)
		if err != nil {
			return err
		}
		snapshot[memKey(path)] = string(data)
		return nil
	})
	if walkErr != nil {
		return nil, results, fmt.Errorf("collect documents: %w", walkErr)
	}
	return snapshot, results, nil
}

func memKey(path string) string {
	if path == "" {
		return ""
	}
	rel, err := filepath.Rel(memRoot, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return strings.TrimPrefix(filepath.ToSlash(rel), "./")
}
