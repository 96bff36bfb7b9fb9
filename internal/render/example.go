package render

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/spanlens/spanlens/internal/model1"
)

// ExampleNode is a dataset example as served by the examples connection.
type ExampleNode struct {
	ID        string          `json:"id"`
	CreatedAt *string         `json:"createdAt"`
	Input     json.RawMessage `json:"input"`
	Output    json.RawMessage `json:"output"`
	Metadata  json.RawMessage `json:"metadata"`
	Error     *string         `json:"error"`
}

// ExampleRow is the display view-model of a dataset example.
type ExampleRow struct {
	ID        string
	Input     *string
	Output    *string
	Metadata  *string
	CreatedAt *time.Time
	Error     *string
}

// ProjectExample flattens a raw dataset example node into a row.
func ProjectExample(raw json.RawMessage) ExampleRow {
	var n ExampleNode
	err := json.Unmarshal(raw, &n)

	r := ExampleRow{
		ID:        n.ID,
		Input:     compactJSON(n.Input),
		Output:    compactJSON(n.Output),
		Metadata:  compactJSON(n.Metadata),
		CreatedAt: parseTime(n.CreatedAt),
	}
	switch {
	case err != nil:
		msg := "decode failed: " + err.Error()
		r.Error = &msg
	case n.Error != nil:
		r.Error = nonEmpty(*n.Error)
	}

	return r
}

// compactJSON renders a JSON payload on one line. Bare strings are unquoted.
func compactJSON(raw json.RawMessage) *string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return nonEmpty(s)
	}
	var buff bytes.Buffer
	if err := json.Compact(&buff, raw); err != nil {
		return nil
	}
	out := buff.String()
	return &out
}

var exampleColumns = ColumnModel[ExampleRow]{
	ErrorOf: func(r ExampleRow) *string { return r.Error },
	Columns: []Column[ExampleRow]{
		{
			ID:       "id",
			Header:   "ID",
			Accessor: func(r ExampleRow) any { return r.ID },
		},
		{
			ID:       "input",
			Header:   "INPUT",
			Accessor: func(r ExampleRow) any { return r.Input },
			Cell:     textCell[ExampleRow],
		},
		{
			ID:         "output",
			Header:     "OUTPUT",
			Accessor:   func(r ExampleRow) any { return r.Output },
			Cell:       textCell[ExampleRow],
			ErrorAware: true,
		},
		{
			ID:       "metadata",
			Header:   "METADATA",
			Attrs:    model1.Attrs{Wide: true},
			Accessor: func(r ExampleRow) any { return r.Metadata },
			Cell:     textCell[ExampleRow],
		},
		{
			ID:       "createdAt",
			Header:   "CREATED",
			Accessor: func(r ExampleRow) any { return r.CreatedAt },
		},
	},
}

// ExampleColumns returns the dataset example table columns.
func ExampleColumns() ColumnModel[ExampleRow] {
	return exampleColumns
}

// Example renders dataset example connection nodes.
type Example struct{}

// Header returns the example header
func (Example) Header() model1.Header {
	return exampleColumns.Header()
}

// Render projects and renders example nodes in connection order.
func (Example) Render(nodes []json.RawMessage) *model1.Grid {
	rows := make([]ExampleRow, 0, len(nodes))
	for _, n := range nodes {
		rows = append(rows, ProjectExample(n))
	}
	return RenderGrid(exampleColumns, rows, func(r ExampleRow) string { return r.ID })
}
