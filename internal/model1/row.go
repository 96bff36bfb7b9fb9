package model1

import "strings"

// Row represents a collection of cells
type Row struct {
	ID    string
	Cells []Cell
}

func NewRow(id string, size int) Row {
	return Row{ID: id, Cells: make([]Cell, 0, size)}
}

func (r Row) Clone() Row {
	cc := make([]Cell, len(r.Cells))
	copy(cc, r.Cells)
	return Row{ID: r.ID, Cells: cc}
}

func (r Row) Len() int {
	return len(r.Cells)
}

// Text returns the text of the cell at col, or empty if out of range.
func (r Row) Text(col int) string {
	if col < 0 || col >= len(r.Cells) {
		return ""
	}
	return r.Cells[col].Text
}

// Texts returns the text of every cell.
func (r Row) Texts() []string {
	ss := make([]string, 0, len(r.Cells))
	for _, c := range r.Cells {
		ss = append(ss, c.Text)
	}
	return ss
}

// Matches returns true if any cell contains q, case insensitive.
func (r Row) Matches(q string) bool {
	q = strings.ToLower(q)
	for _, c := range r.Cells {
		if strings.Contains(strings.ToLower(c.Text), q) {
			return true
		}
	}
	return false
}

// Rows represents a collection of rows
type Rows []Row

func (r Rows) Clone() Rows {
	out := make(Rows, len(r))
	for i, row := range r {
		out[i] = row.Clone()
	}
	return out
}
