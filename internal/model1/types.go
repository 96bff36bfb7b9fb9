package model1

import "encoding/json"

// Placeholder is shown in place of absent values.
const Placeholder = "--"

// NoData is the text of the placeholder row of an empty grid.
const NoData = "No data"

// Renderer represents a connection node renderer
type Renderer interface {
	// Header returns the table header in column order.
	Header() Header

	// Render projects raw connection nodes into a grid.
	Render(nodes []json.RawMessage) *Grid
}
