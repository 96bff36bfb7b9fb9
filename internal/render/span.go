package render

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/spanlens/spanlens/internal/model1"
)

// IOValue is a span input or output payload.
type IOValue struct {
	Value    string `json:"value"`
	MimeType string `json:"mimeType"`
}

// SpanNode is a span as served by the spans connection.
type SpanNode struct {
	ID                   string   `json:"id"`
	SpanID               string   `json:"spanId"`
	TraceID              string   `json:"traceId"`
	ParentID             *string  `json:"parentId"`
	Name                 string   `json:"name"`
	SpanKind             string   `json:"spanKind"`
	StatusCode           string   `json:"statusCode"`
	StatusMessage        string   `json:"statusMessage"`
	StartTime            *string  `json:"startTime"`
	EndTime              *string  `json:"endTime"`
	TokenCountPrompt     *int64   `json:"tokenCountPrompt"`
	TokenCountCompletion *int64   `json:"tokenCountCompletion"`
	TokenCountTotal      *int64   `json:"tokenCountTotal"`
	Input                *IOValue `json:"input"`
	Output               *IOValue `json:"output"`
	ExceptionMessage     *string  `json:"exceptionMessage"`
}

// SpanRow is the display view-model of a span.
type SpanRow struct {
	ID               string
	SpanID           string
	TraceID          string
	ParentID         *string
	Name             string
	Kind             string
	StatusCode       string
	Input            *string
	Output           *string
	StartTime        *time.Time
	EndTime          *time.Time
	LatencyMs        *float64
	PromptTokens     *int64
	CompletionTokens *int64
	TotalTokens      *int64
	Error            *string
}

// ProjectSpan flattens a raw span node into a row. A node that fails to
// decode still yields a row carrying the decode error.
func ProjectSpan(raw json.RawMessage) SpanRow {
	var n SpanNode
	err := json.Unmarshal(raw, &n)

	r := SpanRow{
		ID:               n.ID,
		SpanID:           n.SpanID,
		TraceID:          n.TraceID,
		ParentID:         n.ParentID,
		Name:             n.Name,
		Kind:             n.SpanKind,
		StatusCode:       n.StatusCode,
		StartTime:        parseTime(n.StartTime),
		EndTime:          parseTime(n.EndTime),
		PromptTokens:     n.TokenCountPrompt,
		CompletionTokens: n.TokenCountCompletion,
		TotalTokens:      n.TokenCountTotal,
	}
	if n.Input != nil {
		r.Input = nonEmpty(n.Input.Value)
	}
	if n.Output != nil {
		r.Output = nonEmpty(n.Output.Value)
	}
	r.LatencyMs = latencyMs(r.StartTime, r.EndTime)
	if r.TotalTokens == nil && r.PromptTokens != nil && r.CompletionTokens != nil {
		total := *r.PromptTokens + *r.CompletionTokens
		r.TotalTokens = &total
	}

	switch {
	case err != nil:
		msg := "decode failed: " + err.Error()
		r.Error = &msg
	case n.ExceptionMessage != nil && *n.ExceptionMessage != "":
		r.Error = n.ExceptionMessage
	case n.StatusCode == StatusError:
		r.Error = nonEmpty(n.StatusMessage)
	}

	return r
}

func latencyMs(start, end *time.Time) *float64 {
	if start == nil || end == nil {
		return nil
	}
	d := end.Sub(*start)
	if d < 0 {
		return nil
	}
	ms := float64(d) / float64(time.Millisecond)
	return &ms
}

var spanColumns = ColumnModel[SpanRow]{
	ErrorOf: func(r SpanRow) *string { return r.Error },
	Columns: []Column[SpanRow]{
		{
			ID:       "kind",
			Header:   "KIND",
			Attrs:    model1.Attrs{Decorator: strings.ToUpper},
			Accessor: func(r SpanRow) any { return r.Kind },
		},
		{
			ID:       "name",
			Header:   "NAME",
			Accessor: func(r SpanRow) any { return r.Name },
		},
		{
			ID:       "input",
			Header:   "INPUT",
			Accessor: func(r SpanRow) any { return r.Input },
			Cell:     textCell[SpanRow],
		},
		{
			ID:         "output",
			Header:     "OUTPUT",
			Accessor:   func(r SpanRow) any { return r.Output },
			Cell:       textCell[SpanRow],
			ErrorAware: true,
		},
		{
			ID:       "status",
			Header:   "STATUS",
			Accessor: func(r SpanRow) any { return r.StatusCode },
			Cell:     statusCell,
		},
		{
			ID:       "startTime",
			Header:   "START",
			Accessor: func(r SpanRow) any { return r.StartTime },
		},
		{
			ID:       "latencyMs",
			Header:   "LATENCY",
			Attrs:    model1.Attrs{Duration: true},
			Accessor: func(r SpanRow) any { return r.LatencyMs },
			Cell: func(v any, _ SpanRow) model1.Cell {
				return model1.NewCell(FormatLatency(*v.(*float64)))
			},
		},
		{
			ID:       "tokenCountTotal",
			Header:   "TOKENS",
			Attrs:    model1.Attrs{Numeric: true},
			Accessor: func(r SpanRow) any { return r.TotalTokens },
		},
		{
			ID:       "traceId",
			Header:   "TRACE-ID",
			Attrs:    model1.Attrs{Wide: true},
			Accessor: func(r SpanRow) any { return r.TraceID },
		},
		{
			ID:       "spanId",
			Header:   "SPAN-ID",
			Attrs:    model1.Attrs{Wide: true},
			Accessor: func(r SpanRow) any { return r.SpanID },
		},
	},
}

// SpanColumns returns the span table columns.
func SpanColumns() ColumnModel[SpanRow] {
	return spanColumns
}

func textCell[R any](v any, _ R) model1.Cell {
	return model1.NewCell(Truncate(OneLine(Stringify(v)), MaxCellWidth))
}

func statusCell(v any, _ SpanRow) model1.Cell {
	s := Stringify(v)
	switch s {
	case StatusError:
		return model1.AlertCell(s)
	case StatusUnset:
		return model1.Cell{Text: s, Style: model1.StyleDim}
	default:
		return model1.NewCell(s)
	}
}

// Span renders spans connection nodes.
type Span struct{}

// Header returns the span header
func (Span) Header() model1.Header {
	return spanColumns.Header()
}

// Render projects and renders span nodes in connection order.
func (Span) Render(nodes []json.RawMessage) *model1.Grid {
	rows := make([]SpanRow, 0, len(nodes))
	for _, n := range nodes {
		rows = append(rows, ProjectSpan(n))
	}
	return RenderGrid(spanColumns, rows, func(r SpanRow) string { return r.ID })
}
