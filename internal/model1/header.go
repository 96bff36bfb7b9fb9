package model1

import "fmt"

// Attrs represents column attributes
type Attrs struct {
	Align    int  `json:"align,omitempty"` // tview alignment
	Wide     bool `json:"wide,omitempty"`  // Hidden in narrow view
	Duration bool `json:"duration,omitempty"`
	Numeric  bool `json:"numeric,omitempty"`
	Hide     bool `json:"hide,omitempty"`
	// Decorator rewrites non placeholder cell text.
	Decorator func(string) string `json:"-"`
}

// HeaderColumn represents a table header column
type HeaderColumn struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Attrs
}

func (h HeaderColumn) String() string {
	return fmt.Sprintf("%s [%d::%t::%t]", h.Name, h.Align, h.Wide, h.Duration)
}

// Header represents a table header (slice of columns)
type Header []HeaderColumn

func (h Header) Clone() Header {
	he := make(Header, len(h))
	copy(he, h)
	return he
}

func (h Header) IndexOf(colName string, includeWide bool) (int, bool) {
	for i, c := range h {
		if c.Wide && !includeWide {
			continue
		}
		if c.Name == colName {
			return i, true
		}
	}
	return -1, false
}

func (h Header) IsDurationCol(col int) bool {
	if col < 0 || col >= len(h) {
		return false
	}
	return h[col].Duration
}

func (h Header) IsNumericCol(col int) bool {
	if col < 0 || col >= len(h) {
		return false
	}
	return h[col].Numeric
}

func (h Header) ColumnNames(wide bool) []string {
	if len(h) == 0 {
		return nil
	}
	cc := make([]string, 0, len(h))
	for _, c := range h {
		if c.Hide || (!wide && c.Wide) {
			continue
		}
		cc = append(cc, c.Name)
	}
	return cc
}

// Visible returns the indexes of the columns shown in the given mode.
func (h Header) Visible(wide bool) []int {
	idx := make([]int, 0, len(h))
	for i, c := range h {
		if c.Hide || (!wide && c.Wide) {
			continue
		}
		idx = append(idx, i)
	}
	return idx
}
