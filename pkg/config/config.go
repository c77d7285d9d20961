// Package config holds the settings of a functional test run.
//
// Settings are resolved in three layers, later layers winning:
//
//  1. Built-in defaults (headless Chrome and Firefox, 30s timeout)
//  2. An optional functest.yaml in the working directory
//  3. FUNCTEST_* environment variables
//
// WEBEXT_DIR is not part of the settings; the extension package reads it
// directly since it only affects the packed archive location.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// FileName is the optional settings file looked up in the working directory.
	FileName = "functest.yaml"

	defaultTimeout        = 30 * time.Second
	defaultViewportWidth  = 1280
	defaultViewportHeight = 720
	defaultLocalPort      = 5000
)

var defaultBrowsers = []string{"firefox", "chrome"}

// Settings configures the drivers of a test run.
type Settings struct {
	// Headless controls whether browsers run without a visible window
	Headless bool `yaml:"headless" json:"headless"`

	// Browsers lists the browsers exercised by the suite
	Browsers []string `yaml:"browsers" json:"browsers"`

	// Timeout is the default timeout of page operations
	Timeout time.Duration `yaml:"timeout" json:"timeout"`

	// Viewport sets the page size of new drivers
	Viewport Viewport `yaml:"viewport" json:"viewport"`

	// LocalPort is the port of the local reader test server
	LocalPort int `yaml:"local_port" json:"local_port"`

	// LogDir is where run logs are written; empty means the logging default
	LogDir string `yaml:"log_dir" json:"log_dir"`
}

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

// Default returns the built-in settings.
func Default() *Settings {
	return &Settings{
		Headless:  true,
		Browsers:  append([]string(nil), defaultBrowsers...),
		Timeout:   defaultTimeout,
		Viewport:  Viewport{Width: defaultViewportWidth, Height: defaultViewportHeight},
		LocalPort: defaultLocalPort,
	}
}

// Load resolves the settings for workDir. lookup reads environment
// variables; pass os.LookupEnv for the process environment.
func Load(workDir string, lookup func(string) (string, bool)) (*Settings, error) {
	s := Default()

	if err := s.loadFile(filepath.Join(workDir, FileName)); err != nil {
		return nil, err
	}

	if lookup != nil {
		if err := s.applyEnv(lookup); err != nil {
			return nil, err
		}
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadFromEnv resolves the settings for workDir using the process environment.
func LoadFromEnv(workDir string) (*Settings, error) {
	return Load(workDir, os.LookupEnv)
}

func (s *Settings) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, s); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// Validate checks that the settings are usable.
func (s *Settings) Validate() error {
	if len(s.Browsers) == 0 {
		return fmt.Errorf("at least one browser must be configured")
	}
	for _, b := range s.Browsers {
		if b == "" {
			return fmt.Errorf("empty browser name in %v", s.Browsers)
		}
	}
	if s.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", s.Timeout)
	}
	if s.Viewport.Width <= 0 || s.Viewport.Height <= 0 {
		return fmt.Errorf("invalid viewport %dx%d", s.Viewport.Width, s.Viewport.Height)
	}
	if s.LocalPort <= 0 || s.LocalPort > 65535 {
		return fmt.Errorf("local port out of range: %d", s.LocalPort)
	}
	return nil
}

// TimeoutMillis returns Timeout in the unit used by playwright.
func (s *Settings) TimeoutMillis() float64 {
	return float64(s.Timeout / time.Millisecond)
}
