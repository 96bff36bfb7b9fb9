package model1

// Grid represents a rendered table: a header plus body rows.
type Grid struct {
	Header Header
	Rows   Rows
	// Empty is set when the body holds only the no-data placeholder row.
	Empty bool
}

// NewEmptyGrid returns a grid whose body is a single placeholder row
// spanning every column.
func NewEmptyGrid(h Header) *Grid {
	return &Grid{
		Header: h,
		Rows: Rows{{
			Cells: []Cell{{Text: NoData, Style: StylePlaceholder, Span: len(h)}},
		}},
		Empty: true,
	}
}

// Len returns the number of data rows, ignoring the placeholder row.
func (g *Grid) Len() int {
	if g == nil || g.Empty {
		return 0
	}
	return len(g.Rows)
}

func (g *Grid) Clone() *Grid {
	if g == nil {
		return nil
	}
	return &Grid{
		Header: g.Header.Clone(),
		Rows:   g.Rows.Clone(),
		Empty:  g.Empty,
	}
}

// Filter returns a grid holding the rows matching q. The returned grid
// shares no row storage with g.
func (g *Grid) Filter(q string) *Grid {
	if g == nil {
		return nil
	}
	if q == "" || g.Empty {
		return g.Clone()
	}
	rr := make(Rows, 0, len(g.Rows))
	for _, r := range g.Rows {
		if r.Matches(q) {
			rr = append(rr, r.Clone())
		}
	}
	if len(rr) == 0 {
		return NewEmptyGrid(g.Header.Clone())
	}
	return &Grid{Header: g.Header.Clone(), Rows: rr}
}

// Sorted returns a copy of g with its rows ordered on the given column.
func (g *Grid) Sorted(col int, asc bool) *Grid {
	out := g.Clone()
	if out == nil || out.Empty {
		return out
	}
	SortRows(out.Rows, out.Header, col, asc)
	return out
}
