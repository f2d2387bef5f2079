package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/asynkron/gopatch/pkg/patch"
)

// Load reads process environment variables, so none of these tests run in
// parallel.

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("gopatch", pflag.ContinueOnError)
	fs.StringP(KeyDirectory, "d", "", "")
	fs.IntP(KeyStrip, "p", 0, "")
	fs.String(KeyLineEnding, LineEndingNative, "")
	fs.Bool(KeyStrict, false, "")
	fs.Bool(KeyDryRun, false, "")
	fs.CountP(KeyVerbose, "v", "")
	fs.Bool(KeyNoColor, false, "")
	fs.String("config", "", "")
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(Sources{BaseDir: t.TempDir()})
	require.NoError(t, err)
	require.Equal(t, Config{LineEnding: LineEndingNative}, cfg)
}

func TestLoadConfigFileFromBaseDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, DefaultFileName), "strip = 1\nline-ending = \"crlf\"\nstrict = true\n")

	cfg, err := Load(Sources{BaseDir: dir})
	require.NoError(t, err)
	require.Equal(t, 1, cfg.Strip)
	require.Equal(t, LineEndingCRLF, cfg.LineEnding)
	require.True(t, cfg.Strict)
	require.False(t, cfg.DryRun)
}

func TestLoadLayerPrecedence(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "custom.toml")
	writeFile(t, cfgFile, "strip = 1\ndirectory = \"from-file\"\n")
	t.Setenv("GOPATCH_STRIP", "3")
	t.Setenv("GOPATCH_LINE_ENDING", "LF")

	cfg, err := Load(Sources{BaseDir: dir, ConfigFile: cfgFile})
	require.NoError(t, err)
	require.Equal(t, 3, cfg.Strip, "environment overrides the config file")
	require.Equal(t, "from-file", cfg.Directory)
	require.Equal(t, LineEndingLF, cfg.LineEnding, "line ending is case insensitive")

	flags := newFlags(t, "--strip=2", "-vv", "--dry-run")
	cfg, err = Load(Sources{BaseDir: dir, ConfigFile: cfgFile, Flags: flags})
	require.NoError(t, err)
	require.Equal(t, 2, cfg.Strip, "flags override the environment")
	require.Equal(t, 2, cfg.Verbose)
	require.True(t, cfg.DryRun)
	require.Equal(t, "from-file", cfg.Directory, "unset flags keep lower layers")
}

func TestLoadDotEnv(t *testing.T) {
	const key = "GOPATCH_DRY_RUN"
	require.NoError(t, os.Unsetenv(key))
	t.Cleanup(func() { _ = os.Unsetenv(key) })

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".env"), key+"=true\n")

	cfg, err := Load(Sources{BaseDir: dir})
	require.NoError(t, err)
	require.True(t, cfg.DryRun)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, DefaultFileName), "line-ending = \"cr\"\n")

	_, err := Load(Sources{BaseDir: dir})
	require.ErrorIs(t, err, ErrInvalid)

	_, err = Load(Sources{BaseDir: t.TempDir(), Flags: newFlags(t, "--strip=-1")})
	require.ErrorIs(t, err, ErrInvalid)
}

func TestLoadMissingExplicitConfigFile(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(Sources{BaseDir: dir, ConfigFile: filepath.Join(dir, "absent.toml")})
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestPatchOptions(t *testing.T) {
	t.Parallel()

	opts := Config{Directory: "src", Strip: 1, LineEnding: LineEndingCRLF, Strict: true, DryRun: true}.PatchOptions()
	require.Equal(t, patch.CRLF, opts.LineEnding)
	require.False(t, opts.AutoLineEnding)
	require.Equal(t, "src", opts.WorkDir)
	require.Equal(t, 1, opts.Strip)
	require.True(t, opts.Strict)
	require.True(t, opts.DryRun)

	opts = Config{LineEnding: LineEndingLF}.PatchOptions()
	require.Equal(t, patch.LF, opts.LineEnding)

	opts = Config{LineEnding: LineEndingAuto}.PatchOptions()
	require.True(t, opts.AutoLineEnding)

	opts = Config{LineEnding: LineEndingNative}.PatchOptions()
	require.Equal(t, patch.NativeLineEnding(), opts.LineEnding)
}
