package data

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// defaultProjectsDir is set by the config package during initialization.
// This avoids a circular import between data and config packages.
var defaultProjectsDir string

// SetDefaultProjectsDir sets the default projects directory.
func SetDefaultProjectsDir(dir string) {
	defaultProjectsDir = dir
}

// Dir manages the per-project configuration directory structure.
type Dir struct {
	root string
	mx   sync.RWMutex
}

// NewDir creates a new Dir using the default projects directory.
// Note: SetDefaultProjectsDir must be called before using NewDir.
func NewDir() *Dir {
	return &Dir{
		root: defaultProjectsDir,
	}
}

// NewDirAt creates a new Dir at the specified root path.
func NewDirAt(root string) *Dir {
	return &Dir{
		root: root,
	}
}

// ProjectPath returns {root}/{project}/.
func (d *Dir) ProjectPath(project string) string {
	d.mx.RLock()
	defer d.mx.RUnlock()

	return filepath.Join(d.root, ContextName(project))
}

// ConfigPath returns {root}/{project}/config.yaml.
func (d *Dir) ConfigPath(project string) string {
	return filepath.Join(d.ProjectPath(project), "config.yaml")
}

// Load loads the configuration of a project.
// Returns a default config if the file doesn't exist.
func (d *Dir) Load(project string) (*Config, error) {
	ctx := NewProjectContext(project)
	if err := LoadYAML(d.ConfigPath(project), ctx); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load project config: %w", err)
	}
	ctx.Project = project
	ctx.Validate()

	return NewConfig(ctx), nil
}

// Save saves the configuration of a project.
func (d *Dir) Save(cfg *Config) error {
	if cfg == nil || cfg.Context == nil {
		return fmt.Errorf("cannot save nil config or context")
	}
	ctx := cfg.GetContext()
	ctx.mx.RLock()
	defer ctx.mx.RUnlock()

	if err := SaveYAML(d.ConfigPath(ctx.Project), ctx); err != nil {
		return fmt.Errorf("failed to save project config: %w", err)
	}

	return nil
}

// ListProjects returns the context names that have a saved config, sorted.
func (d *Dir) ListProjects() ([]string, error) {
	d.mx.RLock()
	root := d.root
	d.mx.RUnlock()

	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read projects directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(root, e.Name(), "config.yaml")); err == nil {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	return names, nil
}
