package models

import (
	"fmt"
	"time"
)

// PanicSignature is a user-supplied panic signature.
// Exactly one of Substring and Pattern must be set.
type PanicSignature struct {
	Name      string `yaml:"name"`
	Substring string `yaml:"substring,omitempty"`
	Pattern   string `yaml:"pattern,omitempty"` // RE2 syntax
}

// Settings represents the watchdog configuration.
// This corresponds to ~/.labwatch/settings.yaml.
type Settings struct {
	Version         int              `yaml:"version"`
	ConsoleLogsDir  string           `yaml:"console_logs_dir"`
	CacheDir        string           `yaml:"cache_dir"`
	PollInterval    time.Duration    `yaml:"poll_interval"`
	RefreshInterval time.Duration    `yaml:"refresh_interval"`
	BlockSize       int              `yaml:"block_size"`
	FlushFactor     int              `yaml:"flush_factor"` // pending fragment limit, in blocks
	CatalogAddr     string           `yaml:"catalog_addr"`
	PanicSignatures []PanicSignature `yaml:"panic_signatures,omitempty"` // empty = built-in list
}

// NewSettings creates settings with default values.
func NewSettings() *Settings {
	return &Settings{
		Version:         1,
		ConsoleLogsDir:  "/var/consoles",
		CacheDir:        "/var/www/beaker/logs",
		PollInterval:    5 * time.Second,
		RefreshInterval: 20 * time.Second,
		BlockSize:       65536,
		FlushFactor:     2,
		CatalogAddr:     "localhost:50051",
	}
}

// FlushLimit returns the size at which an unterminated fragment is
// forcibly treated as a complete line.
func (s *Settings) FlushLimit() int {
	return s.BlockSize * s.FlushFactor
}

// Validate checks that the settings can drive a watchdog.
func (s *Settings) Validate() error {
	if s.ConsoleLogsDir == "" {
		return fmt.Errorf("console_logs_dir must be set")
	}
	if s.CacheDir == "" {
		return fmt.Errorf("cache_dir must be set")
	}
	if s.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %s", s.PollInterval)
	}
	if s.RefreshInterval <= 0 {
		return fmt.Errorf("refresh_interval must be positive, got %s", s.RefreshInterval)
	}
	if s.BlockSize <= 0 {
		return fmt.Errorf("block_size must be positive, got %d", s.BlockSize)
	}
	if s.FlushFactor < 1 {
		return fmt.Errorf("flush_factor must be at least 1, got %d", s.FlushFactor)
	}
	for i, sig := range s.PanicSignatures {
		if sig.Name == "" {
			return fmt.Errorf("panic_signatures[%d]: name must be set", i)
		}
		if (sig.Substring == "") == (sig.Pattern == "") {
			return fmt.Errorf("panic_signatures[%d] (%s): exactly one of substring or pattern must be set", i, sig.Name)
		}
	}
	return nil
}
