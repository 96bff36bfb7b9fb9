package data

import "sync"

// Config represents a project-specific configuration loaded from disk.
// This is the data structure for ~/.local/share/spanlens/projects/{project}/config.yaml
type Config struct {
	Context *ProjectContext `yaml:"spanlens"`
	mx      sync.RWMutex    `yaml:"-"`
}

// NewConfig creates a new Config with the given project context.
func NewConfig(ctx *ProjectContext) *Config {
	return &Config{
		Context: ctx,
	}
}

// GetContext returns the project context, thread-safe.
func (c *Config) GetContext() *ProjectContext {
	c.mx.RLock()
	defer c.mx.RUnlock()

	return c.Context
}

// Validate ensures the Config has valid settings.
func (c *Config) Validate() {
	c.mx.Lock()
	defer c.mx.Unlock()

	if c.Context != nil {
		c.Context.Validate()
	}
}
