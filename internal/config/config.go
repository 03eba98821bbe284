// Package config loads project settings from liva.toml and applies
// environment overrides on top. Every field has a working default, so a
// missing file is not an error.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/xyproto/env/v2"
)

// DefaultFile is the project configuration filename looked up next to the
// sources.
const DefaultFile = "liva.toml"

// Config carries the settings of one project.
type Config struct {
	Package Package `toml:"package"`
	Build   Build   `toml:"build"`
	Watch   Watch   `toml:"watch"`
}

// Package names the generated manifest package.
type Package struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// Build controls output placement and diagnostics rendering.
type Build struct {
	Out   string `toml:"out"`
	Color bool   `toml:"color"`
	JSON  bool   `toml:"json"`
}

// Watch controls the rebuild-on-change loop.
type Watch struct {
	Patterns   []string `toml:"patterns"`
	DebounceMS int      `toml:"debounce_ms"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Package: Package{Name: "", Version: "0.1.0"},
		Build:   Build{Out: "out", Color: true},
		Watch:   Watch{Patterns: []string{"*.liva"}, DebounceMS: 200},
	}
}

// Load reads the configuration file at path, falling back to defaults when
// the file does not exist, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// defaults only
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

// applyEnv layers process environment settings over the file. LIVAC_OUT and
// LIVAC_PACKAGE override their file counterparts; NO_COLOR, following the
// usual convention, disables colored diagnostics when set at all.
func (c *Config) applyEnv() {
	c.Build.Out = env.Str("LIVAC_OUT", c.Build.Out)
	c.Package.Name = env.Str("LIVAC_PACKAGE", c.Package.Name)
	if env.Has("NO_COLOR") {
		c.Build.Color = false
	}
}
