package model

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/spanlens/spanlens/internal/dao"
	"github.com/spanlens/spanlens/internal/model1"
	"github.com/spanlens/spanlens/internal/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tableRecorder struct {
	mx      sync.Mutex
	changed []int
	noData  int
	errs    []error
}

func (r *tableRecorder) TableNoData(*model1.TableData) {
	r.mx.Lock()
	defer r.mx.Unlock()
	r.noData++
}

func (r *tableRecorder) TableDataChanged(d *model1.TableData) {
	r.mx.Lock()
	defer r.mx.Unlock()
	r.changed = append(r.changed, d.RowCount())
}

func (r *tableRecorder) TableLoadFailed(err error) {
	r.mx.Lock()
	defer r.mx.Unlock()
	r.errs = append(r.errs, err)
}

func TestTableDataPaging(t *testing.T) {
	src := pagedSource{total: 200}
	td, err := NewTableData(spansP1, &src, WithTablePaging(100, 10))
	require.NoError(t, err)
	defer td.Stop()
	rec := tableRecorder{}
	td.AddListener(&rec)

	require.NoError(t, td.Watch(context.Background()))
	assert.Equal(t, 100, td.RowCount())
	assert.Equal(t, render.SpanColumns().Header().ColumnNames(true), td.Header().ColumnNames(true))

	p := td.Pager()
	p.Attach()
	assert.True(t, p.OnScroll(Geometry{ScrollHeight: 100, ScrollTop: 85, ClientHeight: 10}))
	td.Connection().Wait()

	assert.Equal(t, 200, td.RowCount())
	assert.False(t, p.OnScroll(Geometry{ScrollHeight: 200, ScrollTop: 190, ClientHeight: 10}))
	assert.Equal(t, []int{100, 200}, rec.changed)

	n, ok := td.Node("p1-150")
	require.True(t, ok)
	assert.JSONEq(t, `{"id":"p1-150","name":"span-150","spanKind":"LLM"}`, string(n))
	assert.Len(t, src.requests(), 2)
}

func TestTableDataNoData(t *testing.T) {
	td, err := NewTableData(dao.ResourceID{Resource: dao.ExamplesResource, Scope: "d1"}, &pagedSource{})
	require.NoError(t, err)
	defer td.Stop()
	rec := tableRecorder{}
	td.AddListener(&rec)

	require.NoError(t, td.Watch(context.Background()))
	assert.True(t, td.Empty())
	assert.Equal(t, 1, rec.noData)

	g := td.Peek().Grid()
	require.Len(t, g.Rows, 1)
	assert.Equal(t, model1.NoData, g.Rows[0].Cells[0].Text)
}

func TestTableDataLoadFailed(t *testing.T) {
	src := pagedSource{total: 300}
	td, err := NewTableData(spansP1, &src)
	require.NoError(t, err)
	defer td.Stop()
	rec := tableRecorder{}
	td.AddListener(&rec)
	require.NoError(t, td.Watch(context.Background()))

	src.setErr(errors.New("boom"))
	td.LoadNext(100)
	td.Connection().Wait()

	require.Len(t, rec.errs, 1)
	data := td.Peek()
	assert.Equal(t, 100, data.RowCount(), "rows stay visible")
	assert.Equal(t, "boom", data.Error())
}

func TestTableDataRefresh(t *testing.T) {
	src := pagedSource{total: 300}
	td, err := NewTableData(spansP1, &src)
	require.NoError(t, err)
	defer td.Stop()
	require.NoError(t, td.Watch(context.Background()))

	old := td.Connection()
	td.LoadNext(100)
	old.Wait()
	assert.Equal(t, 200, td.RowCount())

	require.NoError(t, td.Refresh(context.Background()))
	assert.NotSame(t, old, td.Connection())
	assert.Equal(t, 100, td.RowCount())
	assert.ErrorIs(t, old.Load(context.Background()), ErrDisposed)
}

func TestTableDataStopDetaches(t *testing.T) {
	td, err := NewTableData(spansP1, &pagedSource{total: 300})
	require.NoError(t, err)
	require.NoError(t, td.Watch(context.Background()))
	td.Pager().Attach()

	td.Stop()
	assert.False(t, td.Pager().IsAttached())
	assert.Nil(t, td.Connection())
	assert.False(t, td.HasNext())
	td.LoadNext(100)
}

func TestRendererFor(t *testing.T) {
	r, err := RendererFor(dao.ResourceID{Resource: dao.ExamplesResource})
	require.NoError(t, err)
	assert.Equal(t, render.ExampleColumns().Header(), r.Header())

	_, err = RendererFor(dao.ResourceID{Resource: "traces"})
	assert.ErrorIs(t, err, dao.ErrUnknownResource)
}
