package render_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sebdah/goldie/v2"
	"github.com/spanlens/spanlens/internal/model1"
	"github.com/spanlens/spanlens/internal/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	chatSpan = `{"id":"U3Bhbjox","spanId":"a1","traceId":"t1","name":"ChatCompletion","spanKind":"LLM",
"statusCode":"OK","startTime":"2024-05-01T10:00:00Z","endTime":"2024-05-01T10:00:01.250Z",
"tokenCountPrompt":12,"tokenCountCompletion":30,
"input":{"value":"What is 2+2?","mimeType":"text/plain"},"output":{"value":"4","mimeType":"text/plain"}}`

	failedSpan = `{"id":"U3Bhbjoy","spanId":"a2","traceId":"t1","parentId":"a1","name":"retrieve",
"spanKind":"RETRIEVER","statusCode":"ERROR","statusMessage":"timeout","exceptionMessage":"boom",
"startTime":"2024-05-01T10:00:00.100Z","endTime":null}`

	embedSpan = `{"id":"U3Bhbjoz","spanId":"a3","traceId":"t2","name":"embed","spanKind":"EMBEDDING",
"statusCode":"UNSET","startTime":"2024-05-01T10:00:02Z","endTime":"2024-05-01T10:00:02.350Z","tokenCountTotal":7}`
)

func TestProjectSpanLatency(t *testing.T) {
	uu := map[string]struct {
		node string
		e    *float64
	}{
		"derived": {
			node: `{"id":"1","startTime":"2024-01-01T00:00:00Z","endTime":"2024-01-01T00:00:01.250Z"}`,
			e:    ptr(1250.0),
		},
		"no-end": {
			node: `{"id":"1","startTime":"2024-01-01T00:00:00Z","endTime":null}`,
		},
		"no-start": {
			node: `{"id":"1","endTime":"2024-01-01T00:00:01Z"}`,
		},
		"garbage": {
			node: `{"id":"1","startTime":"yesterday","endTime":"2024-01-01T00:00:01Z"}`,
		},
		"negative": {
			node: `{"id":"1","startTime":"2024-01-01T00:00:02Z","endTime":"2024-01-01T00:00:01Z"}`,
		},
	}

	for k := range uu {
		u := uu[k]
		t.Run(k, func(t *testing.T) {
			r := render.ProjectSpan(json.RawMessage(u.node))
			assert.Equal(t, u.e, r.LatencyMs)
			assert.Nil(t, r.Error)
		})
	}
}

func TestProjectSpanTokens(t *testing.T) {
	uu := map[string]struct {
		node string
		e    *int64
	}{
		"summed":  {node: `{"tokenCountPrompt":12,"tokenCountCompletion":30}`, e: ptr[int64](42)},
		"total":   {node: `{"tokenCountPrompt":1,"tokenCountCompletion":1,"tokenCountTotal":5}`, e: ptr[int64](5)},
		"partial": {node: `{"tokenCountPrompt":12}`},
		"none":    {node: `{}`},
	}

	for k := range uu {
		u := uu[k]
		t.Run(k, func(t *testing.T) {
			assert.Equal(t, u.e, render.ProjectSpan(json.RawMessage(u.node)).TotalTokens)
		})
	}
}

func TestProjectSpanError(t *testing.T) {
	r := render.ProjectSpan(json.RawMessage(failedSpan))
	require.NotNil(t, r.Error)
	assert.Equal(t, "boom", *r.Error)

	r = render.ProjectSpan(json.RawMessage(`{"id":"x","statusCode":"ERROR","statusMessage":"rate limited"}`))
	require.NotNil(t, r.Error)
	assert.Equal(t, "rate limited", *r.Error)

	r = render.ProjectSpan(json.RawMessage(`{"id":"x","statusCode":"OK","statusMessage":"fine"}`))
	assert.Nil(t, r.Error)
}

func TestProjectSpanDecodeFailure(t *testing.T) {
	r := render.ProjectSpan(json.RawMessage(`{"id":"x","name":"n","tokenCountPrompt":"many"}`))

	assert.Equal(t, "x", r.ID)
	assert.Equal(t, "n", r.Name)
	require.NotNil(t, r.Error)
	assert.Contains(t, *r.Error, "decode failed")

	r = render.ProjectSpan(json.RawMessage(`{not json`))
	require.NotNil(t, r.Error)
	assert.Empty(t, r.ID)
}

func TestProjectSpanIdempotent(t *testing.T) {
	for _, n := range []string{chatSpan, failedSpan, embedSpan, `{broken`} {
		r1, r2 := render.ProjectSpan(json.RawMessage(n)), render.ProjectSpan(json.RawMessage(n))
		assert.Empty(t, cmp.Diff(r1, r2))
	}
}

func TestSpanRenderShape(t *testing.T) {
	g := render.Span{}.Render(nodes(chatSpan, failedSpan, embedSpan))

	cols := render.SpanColumns().Columns
	require.Len(t, g.Header, len(cols))
	for i, c := range cols {
		assert.Equal(t, c.Header, g.Header[i].Name)
	}
	require.Len(t, g.Rows, 3)
	for _, r := range g.Rows {
		assert.Len(t, r.Cells, len(cols))
	}
	assert.False(t, g.Empty)
}

func TestSpanRenderErrorCell(t *testing.T) {
	g := render.Span{}.Render(nodes(failedSpan))

	idx, ok := g.Header.IndexOf("OUTPUT", true)
	require.True(t, ok)
	c := g.Rows[0].Cells[idx]
	assert.Equal(t, "boom", c.Text)
	assert.True(t, c.IsAlert())

	idx, _ = g.Header.IndexOf("NAME", true)
	assert.False(t, g.Rows[0].Cells[idx].IsAlert())
}

func TestSpanRenderEmpty(t *testing.T) {
	g := render.Span{}.Render(nil)

	assert.True(t, g.Empty)
	require.Len(t, g.Rows, 1)
	require.Len(t, g.Rows[0].Cells, 1)
	assert.Equal(t, model1.NoData, g.Rows[0].Cells[0].Text)
	assert.Equal(t, len(render.SpanColumns().Columns), g.Rows[0].Cells[0].Columns())
}

type rowSnapshot struct {
	ID     string   `json:"id"`
	Cells  []string `json:"cells"`
	Alerts []int    `json:"alerts,omitempty"`
}

type gridSnapshot struct {
	Header []string      `json:"header"`
	Rows   []rowSnapshot `json:"rows"`
}

func TestSpanGridGolden(t *testing.T) {
	g := render.Span{}.Render(nodes(chatSpan, failedSpan, embedSpan))

	snap := gridSnapshot{Header: g.Header.ColumnNames(true)}
	for _, r := range g.Rows {
		rs := rowSnapshot{ID: r.ID, Cells: r.Texts()}
		for i, c := range r.Cells {
			if c.IsAlert() {
				rs.Alerts = append(rs.Alerts, i)
			}
		}
		snap.Rows = append(snap.Rows, rs)
	}

	goldie.New(t).AssertJson(t, "span_grid", snap)
}

func nodes(ss ...string) []json.RawMessage {
	out := make([]json.RawMessage, 0, len(ss))
	for _, s := range ss {
		out = append(out, json.RawMessage(s))
	}
	return out
}

func ptr[T any](v T) *T {
	return &v
}

func TestSpanRenderKindDecorated(t *testing.T) {
	g := render.Span{}.Render(nodes(`{"id":"s1","name":"chat","spanKind":"llm"}`, `{"id":"s2","name":"bare"}`))

	idx, ok := g.Header.IndexOf("KIND", false)
	require.True(t, ok)
	assert.Equal(t, "LLM", g.Rows[0].Cells[idx].Text)
	assert.Equal(t, model1.Placeholder, g.Rows[1].Cells[idx].Text)
	assert.True(t, g.Rows[1].Cells[idx].IsPlaceholder())
}
