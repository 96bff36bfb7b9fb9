package data

import "sync"

// DefaultContext names the context used when no project is selected.
const DefaultContext = "default"

// ProjectContext holds per-project settings that outlive a session.
type ProjectContext struct {
	Project string       `yaml:"project"`
	Dataset string       `yaml:"dataset,omitempty"`
	View    *View        `yaml:"view,omitempty"`
	mx      sync.RWMutex `yaml:"-"`
}

// NewProjectContext creates a new ProjectContext with default settings.
func NewProjectContext(project string) *ProjectContext {
	return &ProjectContext{Project: project}
}

// Validate ensures the ProjectContext has valid settings.
func (c *ProjectContext) Validate() {
	c.mx.Lock()
	defer c.mx.Unlock()

	if c.View != nil {
		c.View.Validate()
	}
}

// GetView returns the current view, creating a default if nil.
func (c *ProjectContext) GetView() *View {
	c.mx.RLock()
	defer c.mx.RUnlock()

	if c.View == nil {
		return NewView()
	}
	v := *c.View
	return &v
}

// SetView sets the current view.
func (c *ProjectContext) SetView(v *View) {
	c.mx.Lock()
	defer c.mx.Unlock()

	c.View = v
}

// ContextName returns the directory name of the context.
func (c *ProjectContext) ContextName() string {
	c.mx.RLock()
	defer c.mx.RUnlock()

	return ContextName(c.Project)
}

// ContextName returns the sanitized directory name of a project.
func ContextName(project string) string {
	if project == "" {
		return DefaultContext
	}
	return SanitizeFileName(project)
}
