package model1

import "github.com/derailed/tcell/v2"

var (
	// StdColor cell default color
	StdColor tcell.Color = tcell.ColorWhite

	// ErrColor cell error color
	ErrColor tcell.Color = tcell.ColorRed

	// PlaceholderColor absent value color
	PlaceholderColor tcell.Color = tcell.ColorGray

	// DimColor secondary value color
	DimColor tcell.Color = tcell.ColorDarkCyan

	// HighlightColor marked row color
	HighlightColor tcell.Color = tcell.ColorAqua
)

// StyleColor returns the foreground color of a cell style.
func StyleColor(s CellStyle) tcell.Color {
	switch s {
	case StyleAlert:
		return ErrColor
	case StylePlaceholder:
		return PlaceholderColor
	case StyleDim:
		return DimColor
	default:
		return StdColor
	}
}
