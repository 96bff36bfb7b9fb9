package config

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/spanlens/spanlens/internal/config/data"
)

// Config is the root configuration for the application.
type Config struct {
	SpanLens *SpanLens `yaml:"spanlens"`
	mx       sync.RWMutex
}

// NewConfig creates a new Config with default settings.
func NewConfig() *Config {
	return &Config{
		SpanLens: NewSpanLens(),
	}
}

// Load loads the configuration from the given path.
// If the file doesn't exist, the current config is kept unless force is set.
func (c *Config) Load(path string, force bool) error {
	c.mx.Lock()
	defer c.mx.Unlock()

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if !force {
			return nil
		}
		return fmt.Errorf("config file does not exist: %s", path)
	}
	if err := data.LoadYAML(path, c); err != nil {
		return fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	if c.SpanLens == nil {
		c.SpanLens = NewSpanLens()
	}

	return nil
}

// Save saves the configuration to the given path.
// If force is false, only saves if the file already exists.
func (c *Config) Save(path string, force bool) error {
	c.mx.RLock()
	defer c.mx.RUnlock()

	if path == "" {
		return fmt.Errorf("no config file path configured")
	}
	if _, err := os.Stat(path); err != nil && !force {
		return nil
	}
	if err := data.SaveYAML(path, c); err != nil {
		return fmt.Errorf("failed to save config to %s: %w", path, err)
	}

	return nil
}

// Refine applies CLI flags on top of the loaded file and activates the
// selected project. Precedence: CLI flag > config file > default.
func (c *Config) Refine(flags *data.Flags) error {
	c.mx.Lock()
	defer c.mx.Unlock()

	if c.SpanLens == nil {
		return fmt.Errorf("config.SpanLens is nil")
	}
	c.SpanLens.Override(flags)
	if err := c.SpanLens.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := c.SpanLens.GetAPITimeout(); err != nil {
		return err
	}
	if _, err := c.SpanLens.Source.CacheDuration(); err != nil {
		return err
	}

	project := c.SpanLens.Project
	ctx, err := c.SpanLens.ActivateProject(project)
	if err != nil {
		return err
	}
	if c.SpanLens.Dataset == "" {
		c.SpanLens.Dataset = ctx.Dataset
	}

	return nil
}
