package config

import (
	"fmt"
	"runtime"
)

// Validator checks a Config for sane values and fills in anything left at
// its zero value with a runtime-derived default.
type Validator struct{}

// NewValidator creates a configuration validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates cfg and applies smart defaults in place.
// Returns an error naming the first offending section.
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	if cfg.Project.Root == "" {
		return fmt.Errorf("config: project root cannot be empty")
	}
	if err := v.validateFiles(&cfg.Files); err != nil {
		return fmt.Errorf("config: files: %w", err)
	}
	if err := v.validateDiag(&cfg.Diag); err != nil {
		return fmt.Errorf("config: diagnostics: %w", err)
	}
	if cfg.Arena.BlockSize < 0 {
		return fmt.Errorf("config: arena: BlockSize cannot be negative, got %d", cfg.Arena.BlockSize)
	}
	if cfg.Intern.InitialCapacity < 0 {
		return fmt.Errorf("config: intern: InitialCapacity cannot be negative, got %d", cfg.Intern.InitialCapacity)
	}

	v.setSmartDefaults(cfg)
	return nil
}

func (v *Validator) validateFiles(f *FileManager) error {
	if f.MaxFileSize < 0 {
		return fmt.Errorf("MaxFileSize cannot be negative, got %d", f.MaxFileSize)
	}
	if f.MaxTotalSizeMB < 0 {
		return fmt.Errorf("MaxTotalSizeMB cannot be negative, got %d", f.MaxTotalSizeMB)
	}
	if f.MaxOpenFiles < 0 {
		return fmt.Errorf("MaxOpenFiles cannot be negative, got %d", f.MaxOpenFiles)
	}
	if f.ParallelWorkers < 0 {
		return fmt.Errorf("ParallelWorkers cannot be negative, got %d", f.ParallelWorkers)
	}
	if f.WatchDebounceMs < 0 {
		return fmt.Errorf("WatchDebounceMs cannot be negative, got %d", f.WatchDebounceMs)
	}
	return nil
}

func (v *Validator) validateDiag(d *Diagnostics) error {
	if d.MaxErrors < 0 {
		return fmt.Errorf("MaxErrors cannot be negative, got %d", d.MaxErrors)
	}
	if d.Format != "" && d.Format != "text" && d.Format != "json" {
		return fmt.Errorf("Format must be \"text\" or \"json\", got %q", d.Format)
	}
	return nil
}

// setSmartDefaults fills in zero-valued fields that should default to a
// runtime-derived value rather than a fixed literal.
func (v *Validator) setSmartDefaults(cfg *Config) {
	if cfg.Files.ParallelWorkers == 0 {
		cfg.Files.ParallelWorkers = max(1, runtime.NumCPU()-1)
	}
	if cfg.Files.MaxOpenFiles == 0 {
		cfg.Files.MaxOpenFiles = 10000
	}
	if cfg.Arena.BlockSize == 0 {
		cfg.Arena.BlockSize = 64 * 1024
	}
	if cfg.Intern.InitialCapacity == 0 {
		cfg.Intern.InitialCapacity = 1024
	}
	if cfg.Diag.Format == "" {
		cfg.Diag.Format = "text"
	}
}

// ValidateConfig is a convenience wrapper over Validator for callers that
// don't need to hold onto a Validator value.
func ValidateConfig(cfg *Config) error {
	return NewValidator().ValidateAndSetDefaults(cfg)
}
