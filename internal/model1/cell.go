package model1

import "strings"

// CellStyle represents the display style of a cell.
type CellStyle int

const (
	// StyleNormal plain value.
	StyleNormal CellStyle = iota

	// StylePlaceholder absent value.
	StylePlaceholder

	// StyleAlert row error.
	StyleAlert

	// StyleDim secondary value.
	StyleDim
)

// Cell represents a single rendered table cell.
type Cell struct {
	Text  string
	Style CellStyle
	// Span is the number of columns the cell covers. Zero means one.
	Span int
}

// NewCell returns a normal cell, or the placeholder when s is blank.
func NewCell(s string) Cell {
	if strings.TrimSpace(s) == "" {
		return PlaceholderCell()
	}
	return Cell{Text: s}
}

// PlaceholderCell returns a cell standing in for an absent value.
func PlaceholderCell() Cell {
	return Cell{Text: Placeholder, Style: StylePlaceholder}
}

// AlertCell returns a cell showing an error message.
func AlertCell(msg string) Cell {
	return Cell{Text: msg, Style: StyleAlert}
}

// IsPlaceholder returns true if the cell stands in for an absent value.
func (c Cell) IsPlaceholder() bool {
	return c.Style == StylePlaceholder
}

// IsAlert returns true if the cell shows an error.
func (c Cell) IsAlert() bool {
	return c.Style == StyleAlert
}

// Columns returns the number of columns covered by the cell.
func (c Cell) Columns() int {
	if c.Span < 1 {
		return 1
	}
	return c.Span
}
