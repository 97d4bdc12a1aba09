// Package config loads and validates toolchain configuration: arena/interner
// sizing, file manager limits, lexer options, and diagnostic output settings.
package config

import (
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// Config is the resolved toolchain configuration, assembled from defaults,
// an optional project .mylang.kdl file, and an optional global
// ~/.mylang.kdl base file.
type Config struct {
	Version int
	Project Project
	Arena   Arena
	Intern  Intern
	Files   FileManager
	Lexer   Lexer
	Diag    Diagnostics

	Include []string
	Exclude []string
}

// Project identifies the source tree being compiled.
type Project struct {
	Root string
	Name string
}

// Arena controls the bump allocator backing interned strings and other
// lexer-owned data.
type Arena struct {
	BlockSize int64 // bytes per growth block
}

// Intern controls the string interner's initial sizing.
type Intern struct {
	InitialCapacity int // expected distinct spellings; parsed and validated, but the interner is not pre-sized from it
}

// FileManager holds source file loading limits and live-reload settings.
// Only MaxTotalSizeMB (the FileManager's cache cap) and WatchDebounceMs
// (the Watcher's debounce) are consumed; MaxFileSize, MaxOpenFiles,
// FollowSymlinks and ParallelWorkers are parsed (and the numeric ones
// validated) but not enforced anywhere, and WatchMode is only recorded by
// `mylex watch`.
type FileManager struct {
	MaxFileSize     int64 // file size limit in bytes; not enforced
	MaxTotalSizeMB  int64 // evict cached content once this total is exceeded
	MaxOpenFiles    int   // cached-entry limit; not enforced
	FollowSymlinks  bool
	WatchMode       bool // set by `mylex watch`; nothing else reads it
	WatchDebounceMs int
	ParallelWorkers int // 0 = auto-detect (NumCPU-1) at validation; files are lexed sequentially
}

// Lexer mirrors lexer.Options so it can be set from a config file instead
// of construction-time literals.
type Lexer struct {
	RetainComments          bool
	RetainWhitespace        bool
	AllowUnicodeIdentifiers bool
	StrictMode              bool
}

// Diagnostics controls the diagnostic manager's filtering and output.
type Diagnostics struct {
	SuppressWarnings bool
	SuppressNotes    bool
	WarningsAsErrors bool
	MaxErrors        int
	Format           string // "text" or "json"
	Color            bool
}

// Load resolves configuration starting from path, the project directory
// containing (or to contain) a .mylang.kdl file.
func Load(path string) (*Config, error) {
	return LoadWithRoot(path, "")
}

// LoadWithRoot resolves configuration the way the CLI does: a global
// ~/.mylang.kdl base, overridden by a project-local .mylang.kdl, falling
// back to compiled-in defaults when neither exists.
func LoadWithRoot(path string, rootDir string) (*Config, error) {
	searchDir := "."
	if rootDir != "" {
		searchDir = rootDir
	} else if path != "" {
		searchDir = path
	}

	var baseConfig *Config
	if homeDir, err := os.UserHomeDir(); err == nil {
		if globalCfg, err := LoadKDL(homeDir); err == nil && globalCfg != nil {
			baseConfig = globalCfg
		}
	}

	projectConfig, err := LoadKDL(searchDir)
	if err != nil {
		return nil, err
	}

	var cfg *Config
	switch {
	case baseConfig != nil && projectConfig != nil:
		cfg = mergeConfigs(baseConfig, projectConfig)
	case projectConfig != nil:
		cfg = projectConfig
	case baseConfig != nil:
		baseConfig.Project.Root = searchDir
		cfg = baseConfig
	default:
		cfg = DefaultConfig(searchDir)
	}

	return cfg, nil
}

// DefaultConfig returns compiled-in defaults rooted at root.
func DefaultConfig(root string) *Config {
	if root == "" {
		if cwd, err := os.Getwd(); err == nil {
			root = cwd
		} else {
			root = "."
		}
	}

	return &Config{
		Version: 1,
		Project: Project{Root: root},
		Arena: Arena{
			BlockSize: 64 * 1024,
		},
		Intern: Intern{
			InitialCapacity: 1024,
		},
		Files: FileManager{
			MaxFileSize:     10 * 1024 * 1024,
			MaxTotalSizeMB:  500,
			MaxOpenFiles:    10000,
			FollowSymlinks:  false,
			WatchMode:       false,
			WatchDebounceMs: 300,
			ParallelWorkers: 0,
		},
		Lexer: Lexer{
			RetainComments:          false,
			RetainWhitespace:        false,
			AllowUnicodeIdentifiers: false,
			StrictMode:              false,
		},
		Diag: Diagnostics{
			SuppressWarnings: false,
			SuppressNotes:    false,
			WarningsAsErrors: false,
			MaxErrors:        100,
			Format:           "text",
			Color:            true,
		},
		Include: []string{"**/*.ml"},
		Exclude: defaultExclusions(),
	}
}

func defaultExclusions() []string {
	return []string{
		"**/.git/**",
		"**/.*/**",
		"**/node_modules/**",
		"**/vendor/**",
		"**/dist/**",
		"**/build/**",
		"**/out/**",
		"**/target/**",
	}
}

// mergeConfigs merges a base config with a project config: the project
// wins on every scalar field, but exclusions from both are unioned so a
// global base's exclusions are never silently dropped by a project file.
func mergeConfigs(base, project *Config) *Config {
	merged := *project

	if len(base.Exclude) > 0 {
		seen := make(map[string]bool, len(base.Exclude)+len(project.Exclude))
		merged.Exclude = make([]string, 0, len(base.Exclude)+len(project.Exclude))
		for _, pattern := range base.Exclude {
			if !seen[pattern] {
				seen[pattern] = true
				merged.Exclude = append(merged.Exclude, pattern)
			}
		}
		for _, pattern := range project.Exclude {
			if !seen[pattern] {
				seen[pattern] = true
				merged.Exclude = append(merged.Exclude, pattern)
			}
		}
	}

	if len(project.Include) == 0 && len(base.Include) > 0 {
		merged.Include = base.Include
	}

	return &merged
}

// DiscoverSourceFiles walks root and returns every file matching Include
// while not matching Exclude or the project's .gitignore.
func (c *Config) DiscoverSourceFiles(root string) ([]string, error) {
	gi := NewGitignoreParser()
	_ = gi.LoadGitignore(root) // best-effort; absence of .gitignore is fine

	var out []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		if info.IsDir() {
			if gi.ShouldIgnore(rel, true) || matchesAny(c.Exclude, rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if gi.ShouldIgnore(rel, false) || matchesAny(c.Exclude, rel) {
			return nil
		}
		if len(c.Include) > 0 && !matchesAny(c.Include, rel) {
			return nil
		}
		out = append(out, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func matchesAny(patterns []string, path string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, filepath.ToSlash(path)); ok {
			return true
		}
	}
	return false
}
