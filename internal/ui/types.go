package ui

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/derailed/tview"
	"github.com/spanlens/spanlens/internal/dao"
	"github.com/spanlens/spanlens/internal/model"
	"github.com/spanlens/spanlens/internal/model1"
)

// Tabular represents a paged table model.
type Tabular interface {
	// ResourceID returns the connection id.
	ResourceID() dao.ResourceID

	// Header returns the table header.
	Header() model1.Header

	// Empty returns true if model has no data.
	Empty() bool

	// RowCount returns the model data count.
	RowCount() int

	// Peek returns current model data.
	Peek() *model1.TableData

	// Node returns the raw node behind a row id.
	Node(id string) (json.RawMessage, bool)

	// Watch loads the first page.
	Watch(context.Context) error

	// Refresh reloads the connection from the first page.
	Refresh(context.Context) error

	// Stop releases the connection.
	Stop()

	// HasNext returns true if more pages follow.
	HasNext() bool

	// IsLoadingNext returns true while a page is in flight.
	IsLoadingNext() bool

	// AddListener registers a model listener.
	AddListener(model.TableListener)

	// RemoveListener unregister a model listener.
	RemoveListener(model.TableListener)
}

// MenuHint represents a keyboard mnemonic.
type MenuHint struct {
	Mnemonic    string
	Description string
	Visible     bool
}

// IsBlank checks if menu hint is a placeholder.
func (m MenuHint) IsBlank() bool {
	return m.Mnemonic == "" && m.Description == "" && !m.Visible
}

// MenuHints represents a collection of hints.
type MenuHints []MenuHint

// Len returns the hints length.
func (h MenuHints) Len() int {
	return len(h)
}

// Swap swaps two elements.
func (h MenuHints) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

// Less returns true if first hint is less than second.
func (h MenuHints) Less(i, j int) bool {
	n, err1 := strconv.Atoi(h[i].Mnemonic)
	m, err2 := strconv.Atoi(h[j].Mnemonic)
	if err1 == nil && err2 == nil {
		return n < m
	}
	if err1 == nil && err2 != nil {
		return true
	}
	if err1 != nil && err2 == nil {
		return false
	}
	return h[i].Description < h[j].Description
}

// Hinter represent a menu mnemonic provider.
type Hinter interface {
	// Hints returns a collection of menu hints.
	Hints() MenuHints
}

// Primitive represents a UI primitive.
type Primitive interface {
	tview.Primitive

	// Name returns the view name.
	Name() string
}

// Igniter represents a runnable view.
type Igniter interface {
	// Init initializes a component.
	Init(ctx context.Context) error

	// Start starts a component.
	Start()

	// Stop terminates a component.
	Stop()
}

// Component represents a ui component.
type Component interface {
	Primitive
	Igniter
	Hinter
}

// TrimCell removes superfluous padding from a table cell.
func TrimCell(tv *tview.Table, row, col int) string {
	c := tv.GetCell(row, col)
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c.Text)
}
