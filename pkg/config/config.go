// Package config loads depscope settings from a TOML file.
//
// A minimal depscope.toml:
//
//	local_repository = "~/.m2/repository"
//	classes_dir      = "target/classes"
//	graph            = "target/dependency-tree.txt"
//	workers          = 4
//	cache_dir        = "~/.cache/depscope"
//
//	[allow_list]
//	extra = ["slf4j-api"]
//
//	[output]
//	dir     = "target/depscope"
//	formats = ["svg"]
//
// Relative paths are kept as written; callers resolve them against the
// project directory. Keys the loader does not know are rejected.
package config

import (
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/depscope/pkg/errors"
	"github.com/matzehuels/depscope/pkg/usage"
)

// FileName is the configuration file looked up in the project directory.
const FileName = "depscope.toml"

// Config holds every setting a run accepts.
type Config struct {
	LocalRepository  string    `toml:"local_repository"`
	ClassesDir       string    `toml:"classes_dir"`
	Graph            string    `toml:"graph"`
	Workers          int       `toml:"workers"`
	ArchiveExtension string    `toml:"archive_extension"`
	CacheDir         string    `toml:"cache_dir"` // empty uses the user cache directory
	AllowList        AllowList `toml:"allow_list"`
	Output           Output    `toml:"output"`
}

// AllowList extends or replaces the built-in compile-only fragments.
type AllowList struct {
	Extra   []string `toml:"extra"`
	Replace bool     `toml:"replace"`
}

// Output configures written artifacts.
type Output struct {
	Dir     string   `toml:"dir"`
	Formats []string `toml:"formats"`
}

// Formats accepted in Output.Formats.
var Formats = []string{"dot", "svg", "png"}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Workers:          1,
		ArchiveExtension: usage.DefaultExtension,
	}
}

// Load reads path on top of Default. A missing file is FILE_NOT_FOUND;
// syntax errors and unknown keys are INVALID_CONFIG.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadOptional loads path when it exists and returns Default otherwise.
func LoadOptional(path string) (Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Workers < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "workers must not be negative, got %d", c.Workers)
	}
	if c.ArchiveExtension != "" && !strings.HasPrefix(c.ArchiveExtension, ".") {
		return errors.New(errors.ErrCodeInvalidConfig, "archive_extension must start with '.', got %q", c.ArchiveExtension)
	}
	for _, f := range c.Output.Formats {
		if !slices.Contains(Formats, f) {
			return errors.New(errors.ErrCodeInvalidConfig, "unknown output format %q (want one of %s)", f, strings.Join(Formats, ", "))
		}
	}
	return nil
}

// AllowFragments returns the effective allow-list.
func (c Config) AllowFragments() []string {
	if c.AllowList.Replace {
		return slices.Clone(c.AllowList.Extra)
	}
	return append(slices.Clone(usage.DefaultAllowList), c.AllowList.Extra...)
}
