package render

import (
	"fmt"

	"github.com/spanlens/spanlens/internal/model1"
)

// RenderGrid renders rows through a column model. Rows keep their input
// order. An empty input yields the single no-data placeholder row.
func RenderGrid[R any](m ColumnModel[R], rows []R, idOf func(R) string) *model1.Grid {
	h := m.Header()
	if len(rows) == 0 {
		return model1.NewEmptyGrid(h)
	}

	g := model1.Grid{
		Header: h,
		Rows:   make(model1.Rows, 0, len(rows)),
	}
	for i, r := range rows {
		var id string
		if idOf != nil {
			id = idOf(r)
		}
		if id == "" {
			id = fmt.Sprintf("#%d", i)
		}
		g.Rows = append(g.Rows, m.Row(id, r))
	}

	return &g
}
