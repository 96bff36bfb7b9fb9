package render_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spanlens/spanlens/internal/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectExample(t *testing.T) {
	uu := map[string]struct {
		node string
		e    render.ExampleRow
	}{
		"full": {
			node: `{"id":"ex1","createdAt":"2024-05-01T10:00:00Z","input":{"q":"hi"},"output":"hello","metadata":{"split":"train"}}`,
			e: render.ExampleRow{
				ID:        "ex1",
				Input:     ptr(`{"q":"hi"}`),
				Output:    ptr("hello"),
				Metadata:  ptr(`{"split":"train"}`),
				CreatedAt: ptr(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)),
			},
		},
		"nulls": {
			node: `{"id":"ex2","input":null,"output":null}`,
			e:    render.ExampleRow{ID: "ex2"},
		},
		"error": {
			node: `{"id":"ex3","error":"boom"}`,
			e:    render.ExampleRow{ID: "ex3", Error: ptr("boom")},
		},
	}

	for k := range uu {
		u := uu[k]
		t.Run(k, func(t *testing.T) {
			assert.Empty(t, cmp.Diff(u.e, render.ProjectExample(json.RawMessage(u.node))))
		})
	}
}

func TestExampleRenderErrorCell(t *testing.T) {
	g := render.Example{}.Render(nodes(`{"id":"ex3","input":"q","error":"boom"}`))

	require.Len(t, g.Rows, 1)
	assert.Equal(t, []string{"ex3", "q", "boom", "--", "--"}, g.Rows[0].Texts())
	assert.True(t, g.Rows[0].Cells[2].IsAlert())
}
