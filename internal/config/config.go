// Package config loads gopatch settings from defaults, a .env file, an
// optional TOML file, GOPATCH_ environment variables and command-line flags,
// each layer overriding the previous one.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/asynkron/gopatch/pkg/patch"
)

// Keys shared by the config file, the environment and the flags.
const (
	KeyDirectory  = "directory"
	KeyStrip      = "strip"
	KeyLineEnding = "line-ending"
	KeyStrict     = "strict"
	KeyDryRun     = "dry-run"
	KeyVerbose    = "verbose"
	KeyNoColor    = "no-color"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "GOPATCH_"

// DefaultFileName is looked up in the base directory when no config file is
// given explicitly.
const DefaultFileName = ".gopatch.toml"

// Line ending names accepted by the line-ending key.
const (
	LineEndingNative = "native"
	LineEndingLF     = "lf"
	LineEndingCRLF   = "crlf"
	LineEndingAuto   = "auto"
)

// ErrInvalid marks configuration values that fail validation.
var ErrInvalid = errors.New("invalid configuration")

// Config is the resolved gopatch configuration.
type Config struct {
	Directory  string
	Strip      int
	LineEnding string
	Strict     bool
	DryRun     bool
	Verbose    int
	NoColor    bool
}

// Sources tells Load where to look.
type Sources struct {
	// BaseDir holds .env and the default config file. Empty means the
	// current directory.
	BaseDir string
	// ConfigFile is an explicit TOML file; it must exist when set.
	ConfigFile string
	// Flags contributes every flag the user set explicitly.
	Flags *pflag.FlagSet
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		KeyDirectory:  "",
		KeyStrip:      0,
		KeyLineEnding: LineEndingNative,
		KeyStrict:     false,
		KeyDryRun:     false,
		KeyVerbose:    0,
		KeyNoColor:    false,
	}
}

// Load resolves the configuration layers.
func Load(src Sources) (Config, error) {
	k := koanf.New(".")

	// 1. Built-in defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. .env values become environment variables; a missing file is fine
	if err := godotenv.Load(filepath.Join(src.BaseDir, ".env")); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return Config{}, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	// 3. Config file
	path, err := configPath(src)
	if err != nil {
		return Config{}, err
	}
	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return Config{}, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	}

	// 4. Environment
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load environment: %w", err)
	}

	// 5. Flags the user set explicitly
	if src.Flags != nil {
		var flagErr error
		keys := defaults()
		src.Flags.Visit(func(f *pflag.Flag) {
			if _, known := keys[f.Name]; !known || flagErr != nil {
				return
			}
			flagErr = k.Set(f.Name, f.Value.String())
		})
		if flagErr != nil {
			return Config{}, fmt.Errorf("failed to apply flags: %w", flagErr)
		}
	}

	cfg := Config{
		Directory:  k.String(KeyDirectory),
		Strip:      k.Int(KeyStrip),
		LineEnding: strings.ToLower(strings.TrimSpace(k.String(KeyLineEnding))),
		Strict:     k.Bool(KeyStrict),
		DryRun:     k.Bool(KeyDryRun),
		Verbose:    k.Int(KeyVerbose),
		NoColor:    k.Bool(KeyNoColor),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func configPath(src Sources) (string, error) {
	if src.ConfigFile != "" {
		if _, err := os.Stat(src.ConfigFile); err != nil {
			return "", fmt.Errorf("config file %s: %w", src.ConfigFile, err)
		}
		return src.ConfigFile, nil
	}
	path := filepath.Join(src.BaseDir, DefaultFileName)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	return "", nil
}

// envKey maps GOPATCH_LINE_ENDING to line-ending.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", "-")
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Strip < 0 {
		return fmt.Errorf("%w: strip must not be negative, got %d", ErrInvalid, c.Strip)
	}
	switch c.LineEnding {
	case LineEndingNative, LineEndingLF, LineEndingCRLF, LineEndingAuto:
	default:
		return fmt.Errorf("%w: unknown line ending %q (want native, lf, crlf or auto)", ErrInvalid, c.LineEnding)
	}
	return nil
}

// PatchOptions converts the configuration into library options.
func (c Config) PatchOptions() patch.Options {
	opts := patch.DefaultOptions()
	switch c.LineEnding {
	case LineEndingLF:
		opts.LineEnding = patch.LF
	case LineEndingCRLF:
		opts.LineEnding = patch.CRLF
	case LineEndingAuto:
		opts.AutoLineEnding = true
	}
	opts.WorkDir = c.Directory
	opts.Strip = c.Strip
	opts.Strict = c.Strict
	opts.DryRun = c.DryRun
	return opts
}
