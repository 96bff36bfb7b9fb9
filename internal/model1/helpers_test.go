package model1_test

import (
	"testing"

	"github.com/spanlens/spanlens/internal/model1"
	"github.com/stretchr/testify/assert"
)

func TestLess(t *testing.T) {
	uu := map[string]struct {
		number, duration bool
		v1, v2           string
		e                bool
	}{
		"natural":        {v1: "span-2", v2: "span-10", e: true},
		"number":         {number: true, v1: "900", v2: "1,250", e: true},
		"number-rev":     {number: true, v1: "1,250", v2: "900", e: false},
		"duration":       {duration: true, v1: "950ms", v2: "1.25s", e: true},
		"placeholder-v1": {number: true, v1: model1.Placeholder, v2: "1", e: true},
		"placeholder-v2": {number: true, v1: "1", v2: model1.Placeholder, e: false},
	}

	for k := range uu {
		u := uu[k]
		t.Run(k, func(t *testing.T) {
			assert.Equal(t, u.e, model1.Less(u.number, u.duration, "a", "b", u.v1, u.v2))
		})
	}
}

func TestGridSorted(t *testing.T) {
	g := &model1.Grid{
		Header: model1.Header{{Name: "NAME"}, {Name: "LATENCY", Attrs: model1.Attrs{Duration: true}}},
		Rows: model1.Rows{
			{ID: "a", Cells: []model1.Cell{{Text: "a"}, {Text: "2s"}}},
			{ID: "b", Cells: []model1.Cell{{Text: "b"}, model1.PlaceholderCell()}},
			{ID: "c", Cells: []model1.Cell{{Text: "c"}, {Text: "150ms"}}},
		},
	}

	s := g.Sorted(1, true)
	assert.Equal(t, []string{"b", "c", "a"}, ids(s))
	assert.Equal(t, []string{"a", "b", "c"}, ids(g), "source grid must not be reordered")

	s = g.Sorted(1, false)
	assert.Equal(t, []string{"a", "c", "b"}, ids(s))
}

func TestGridFilter(t *testing.T) {
	g := &model1.Grid{
		Header: model1.Header{{Name: "NAME"}},
		Rows: model1.Rows{
			{ID: "1", Cells: []model1.Cell{{Text: "ChatCompletion"}}},
			{ID: "2", Cells: []model1.Cell{{Text: "retriever"}}},
		},
	}

	f := g.Filter("chat")
	assert.Equal(t, []string{"1"}, ids(f))
	assert.Equal(t, 1, f.Len())

	f = g.Filter("nope")
	assert.True(t, f.Empty)
	assert.Equal(t, 0, f.Len())
	assert.Len(t, f.Rows, 1)
	assert.Equal(t, 1, f.Rows[0].Cells[0].Columns())
}

func TestNewEmptyGrid(t *testing.T) {
	g := model1.NewEmptyGrid(model1.Header{{Name: "A"}, {Name: "B"}, {Name: "C"}})

	assert.True(t, g.Empty)
	assert.Len(t, g.Rows, 1)
	assert.Len(t, g.Rows[0].Cells, 1)
	assert.Equal(t, 3, g.Rows[0].Cells[0].Columns())
	assert.Equal(t, model1.NoData, g.Rows[0].Cells[0].Text)
}

func TestNewCell(t *testing.T) {
	assert.True(t, model1.NewCell("  ").IsPlaceholder())
	assert.Equal(t, model1.Placeholder, model1.NewCell("").Text)
	assert.Equal(t, "x", model1.NewCell("x").Text)
	assert.True(t, model1.AlertCell("boom").IsAlert())
}

func ids(g *model1.Grid) []string {
	ss := make([]string, 0, len(g.Rows))
	for _, r := range g.Rows {
		ss = append(ss, r.ID)
	}
	return ss
}
