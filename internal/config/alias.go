package config

import (
	"os"
	"strings"
	"sync"

	"github.com/spanlens/spanlens/internal/config/data"
)

// Aliases represents the alias configuration.
type Aliases struct {
	Alias map[string]string `yaml:"aliases"`
	mx    sync.RWMutex      `yaml:"-"`
}

// DefaultAliases are the built-in command aliases.
var DefaultAliases = map[string]string{
	"sp":       "spans",
	"span":     "spans",
	"spans":    "spans",
	"ex":       "examples",
	"example":  "examples",
	"examples": "examples",
	"ds":       "examples",
}

// NewAliases creates an Aliases with default aliases loaded.
func NewAliases() *Aliases {
	a := &Aliases{
		Alias: make(map[string]string),
	}
	for k, v := range DefaultAliases {
		a.Alias[k] = v
	}
	return a
}

// Load loads aliases from the default config file.
// Merges with default aliases, with file aliases taking precedence.
func (a *Aliases) Load() error {
	return a.LoadFrom(AppAliasesFile)
}

// LoadFrom loads aliases from a specific file path.
func (a *Aliases) LoadFrom(path string) error {
	a.mx.Lock()
	defer a.mx.Unlock()

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	loaded := &Aliases{
		Alias: make(map[string]string),
	}
	if err := data.LoadYAML(path, loaded); err != nil {
		return err
	}

	for k, v := range loaded.Alias {
		a.Alias[k] = v
	}

	return nil
}

// Save saves aliases to the default config file.
func (a *Aliases) Save() error {
	return a.SaveTo(AppAliasesFile)
}

// SaveTo saves aliases to a specific file path.
func (a *Aliases) SaveTo(path string) error {
	a.mx.RLock()
	defer a.mx.RUnlock()

	return data.SaveYAML(path, a)
}

// Get returns the resource for an alias, or the original if not found.
// A scope suffix, as in "ex@dataset-1", is kept.
func (a *Aliases) Get(alias string) string {
	a.mx.RLock()
	defer a.mx.RUnlock()

	name, scope, scoped := strings.Cut(alias, "@")
	resource, ok := a.Alias[name]
	if !ok {
		return alias
	}
	if scoped {
		return resource + "@" + scope
	}
	return resource
}

// Set sets an alias.
func (a *Aliases) Set(alias, resource string) {
	a.mx.Lock()
	defer a.mx.Unlock()

	a.Alias[alias] = resource
}

// All returns a copy of all aliases.
func (a *Aliases) All() map[string]string {
	a.mx.RLock()
	defer a.mx.RUnlock()

	result := make(map[string]string)
	for k, v := range a.Alias {
		result[k] = v
	}
	return result
}
