package model

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/spanlens/spanlens/internal/dao"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionLoadAndNext(t *testing.T) {
	src := pagedSource{total: 250}
	c := NewConnection(&src, spansP1, WithPageSize(100))
	defer c.Dispose()
	ctx := context.Background()

	require.NoError(t, c.Load(ctx))
	assert.Equal(t, 100, c.Len())
	assert.True(t, c.HasNext())
	assert.Equal(t, "99", c.Cursor())

	require.NoError(t, c.Load(ctx), "second load is a no-op")
	assert.Len(t, src.requests(), 1)

	require.NoError(t, c.Next(ctx, 100))
	require.NoError(t, c.Next(ctx, 100))
	assert.Equal(t, 250, c.Len())
	assert.False(t, c.HasNext())

	require.NoError(t, c.Next(ctx, 100))
	assert.Equal(t, []dao.PageRequest{
		{First: 100},
		{First: 100, After: "99"},
		{First: 100, After: "199"},
	}, src.requests())

	edges := c.Edges()
	for i, e := range edges {
		require.Equal(t, i, mustAtoi(t, e.Cursor), "edges keep request order")
	}
}

func TestConnectionLoadNextBeforeLoad(t *testing.T) {
	src := pagedSource{total: 10}
	c := NewConnection(&src, spansP1)
	defer c.Dispose()

	c.LoadNext(10)
	c.Wait()
	assert.False(t, c.IsLoadingNext())
	assert.Empty(t, src.requests())
}

func TestConnectionLoadingFlag(t *testing.T) {
	src := pagedSource{total: 300}
	c := NewConnection(&src, spansP1)
	require.NoError(t, c.Load(context.Background()))

	src.gate = make(chan struct{})
	c.LoadNext(100)
	assert.True(t, c.IsLoadingNext(), "set before LoadNext returns")

	c.LoadNext(100)
	c.LoadNext(100)
	src.gate <- struct{}{}
	c.Wait()

	assert.False(t, c.IsLoadingNext())
	assert.Equal(t, 200, c.Len())
	assert.Len(t, src.requests(), 2)
	c.Dispose()
}

func TestConnectionErrorKeepsEdges(t *testing.T) {
	src := pagedSource{total: 300}
	rec := connRecorder{}
	c := NewConnection(&src, spansP1)
	defer c.Dispose()
	c.AddListener(&rec)
	require.NoError(t, c.Load(context.Background()))

	boom := errors.New("boom")
	src.setErr(boom)
	c.LoadNext(100)
	c.Wait()

	changes, errs := rec.counts()
	assert.Equal(t, []int{100}, changes)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], boom)
	assert.Equal(t, 100, c.Len())
	assert.False(t, c.IsLoadingNext())
	assert.True(t, c.HasNext())
	assert.Len(t, src.requests(), 2, "no automatic retry")

	src.setErr(nil)
	c.LoadNext(100)
	c.Wait()
	assert.Equal(t, 200, c.Len())
	assert.Equal(t, "99", src.requests()[2].After)
}

func TestConnectionPanicClearsLoading(t *testing.T) {
	c := NewConnection(panicSource{}, spansP1)
	defer c.Dispose()

	err := c.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic")
	assert.False(t, c.IsLoadingNext())
}

func TestConnectionDisposeDropsLateResults(t *testing.T) {
	src := pagedSource{total: 300}
	rec := connRecorder{}
	c := NewConnection(&src, spansP1)
	c.AddListener(&rec)
	require.NoError(t, c.Load(context.Background()))

	src.gate = make(chan struct{})
	c.LoadNext(100)
	c.Dispose()
	c.Wait()

	changes, errs := rec.counts()
	assert.Equal(t, []int{100}, changes)
	assert.Empty(t, errs)
	assert.Equal(t, 100, c.Len())
	assert.False(t, c.IsLoadingNext())
	assert.ErrorIs(t, c.Load(context.Background()), ErrDisposed)
}

func TestConnectionStuckCursor(t *testing.T) {
	c := NewConnection(stuckSource{}, spansP1)
	defer c.Dispose()

	require.NoError(t, c.Load(context.Background()))
	assert.False(t, c.HasNext())
}

func TestConnectionCursorNotAdvancing(t *testing.T) {
	uu := map[string]struct {
		firstCursor string
		edges, reqs int
	}{
		"no-cursors":   {edges: 1, reqs: 1},
		"stalls-later": {firstCursor: "c0", edges: 2, reqs: 2},
	}

	for k := range uu {
		u := uu[k]
		t.Run(k, func(t *testing.T) {
			src := cursorlessSource{firstCursor: u.firstCursor}
			c := NewConnection(&src, spansP1)
			defer c.Dispose()
			ctx := context.Background()

			require.NoError(t, c.Load(ctx))
			for range 5 {
				require.NoError(t, c.Next(ctx, 10))
			}
			assert.False(t, c.HasNext())
			assert.Equal(t, u.edges, c.Len())
			assert.Equal(t, u.reqs, src.count())
		})
	}
}

type panicSource struct{}

func (panicSource) Fetch(context.Context, dao.ResourceID, dao.PageRequest) (*dao.Page, error) {
	panic("kaboom")
}

type stuckSource struct{}

func (stuckSource) Fetch(context.Context, dao.ResourceID, dao.PageRequest) (*dao.Page, error) {
	return &dao.Page{PageInfo: &dao.PageInfo{HasNextPage: true}}, nil
}

// cursorlessSource claims more pages but hands out a cursor on the first
// page at most.
type cursorlessSource struct {
	firstCursor string
	mx          sync.Mutex
	calls       int
}

func (s *cursorlessSource) Fetch(_ context.Context, _ dao.ResourceID, req dao.PageRequest) (*dao.Page, error) {
	s.mx.Lock()
	defer s.mx.Unlock()
	s.calls++

	e := dao.Edge{Node: []byte(fmt.Sprintf(`{"id":"s%d"}`, s.calls))}
	if req.After == "" {
		e.Cursor = s.firstCursor
	}
	return &dao.Page{Edges: []dao.Edge{e}, PageInfo: &dao.PageInfo{HasNextPage: true}}, nil
}

func (s *cursorlessSource) count() int {
	s.mx.Lock()
	defer s.mx.Unlock()
	return s.calls
}

func mustAtoi(t *testing.T, s string) int {
	t.Helper()
	n := 0
	for _, r := range s {
		require.True(t, r >= '0' && r <= '9')
		n = n*10 + int(r-'0')
	}
	return n
}
