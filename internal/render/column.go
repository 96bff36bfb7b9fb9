package render

import "github.com/spanlens/spanlens/internal/model1"

// Column describes how one table column reads and renders a row.
type Column[R any] struct {
	ID     string
	Header string
	Attrs  model1.Attrs

	// Accessor extracts the raw value. A nil accessor renders the placeholder.
	Accessor func(R) any

	// Cell renders a non-nil value. Defaults to Stringify.
	Cell func(v any, r R) model1.Cell

	// ErrorAware columns show the row error instead of their own value.
	ErrorAware bool
}

// ColumnModel is the ordered column set of one table type.
type ColumnModel[R any] struct {
	Columns []Column[R]
	ErrorOf func(R) *string
}

// Header returns the table header in column order.
func (m ColumnModel[R]) Header() model1.Header {
	h := make(model1.Header, 0, len(m.Columns))
	for _, c := range m.Columns {
		h = append(h, model1.HeaderColumn{ID: c.ID, Name: c.Header, Attrs: c.Attrs})
	}
	return h
}

// Row renders one row, one cell per column.
func (m ColumnModel[R]) Row(id string, r R) model1.Row {
	var errMsg *string
	if m.ErrorOf != nil {
		errMsg = m.ErrorOf(r)
	}
	row := model1.NewRow(id, len(m.Columns))
	for _, c := range m.Columns {
		row.Cells = append(row.Cells, c.Render(r, errMsg))
	}
	return row
}

// Render produces the cell of row r. A non-nil errMsg wins over the
// column's own renderer when the column is error aware.
func (c Column[R]) Render(r R, errMsg *string) model1.Cell {
	if c.ErrorAware && errMsg != nil {
		return model1.AlertCell(*errMsg)
	}
	if c.Accessor == nil {
		return model1.PlaceholderCell()
	}
	v := c.Accessor(r)
	if isNil(v) {
		return model1.PlaceholderCell()
	}

	var cell model1.Cell
	if c.Cell != nil {
		cell = c.Cell(v, r)
	} else {
		cell = model1.NewCell(Stringify(v))
	}
	if cell.Text == "" || cell.Text == model1.Placeholder {
		return model1.PlaceholderCell()
	}
	if c.Attrs.Decorator != nil && !cell.IsPlaceholder() {
		cell.Text = c.Attrs.Decorator(cell.Text)
	}

	return cell
}
