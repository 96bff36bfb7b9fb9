package model1

import "sync"

// TableData tracks the rendered grid of a connection for tabular display.
type TableData struct {
	grid    *Grid
	project string
	errMsg  string
	mx      sync.RWMutex
}

// NewTableData returns a new table.
func NewTableData(project string) *TableData {
	return &TableData{project: project}
}

// Grid returns the current grid.
func (t *TableData) Grid() *Grid {
	t.mx.RLock()
	defer t.mx.RUnlock()
	return t.grid
}

// SetGrid swaps in a freshly rendered grid.
func (t *TableData) SetGrid(g *Grid) {
	t.mx.Lock()
	defer t.mx.Unlock()
	t.grid = g
}

// Header returns the table header.
func (t *TableData) Header() Header {
	t.mx.RLock()
	defer t.mx.RUnlock()
	if t.grid == nil {
		return nil
	}
	return t.grid.Header
}

// Project returns the project scope of the table.
func (t *TableData) Project() string {
	t.mx.RLock()
	defer t.mx.RUnlock()
	return t.project
}

// Empty returns true if no data is available.
func (t *TableData) Empty() bool {
	t.mx.RLock()
	defer t.mx.RUnlock()
	return t.grid.Len() == 0
}

// RowCount returns the number of data rows.
func (t *TableData) RowCount() int {
	t.mx.RLock()
	defer t.mx.RUnlock()
	return t.grid.Len()
}

// Clone returns a shallow copy of the table data.
func (t *TableData) Clone() *TableData {
	t.mx.RLock()
	defer t.mx.RUnlock()

	return &TableData{
		grid:    t.grid,
		project: t.project,
		errMsg:  t.errMsg,
	}
}

// SetError records the last fetch error. Rows stay in place.
func (t *TableData) SetError(msg string) {
	t.mx.Lock()
	defer t.mx.Unlock()
	t.errMsg = msg
}

// Error returns the error message, if any.
func (t *TableData) Error() string {
	t.mx.RLock()
	defer t.mx.RUnlock()
	return t.errMsg
}

// HasError returns true if there's an error message.
func (t *TableData) HasError() bool {
	t.mx.RLock()
	defer t.mx.RUnlock()
	return t.errMsg != ""
}
