package dao

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	calls int
	err   error
}

func (s *countingSource) Fetch(_ context.Context, rid ResourceID, req PageRequest) (*Page, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	end := req.After + "+"
	return &Page{
		Edges:    []Edge{{Cursor: end, Node: []byte(`{"id":"` + rid.Scope + `"}`)}},
		PageInfo: &PageInfo{HasNextPage: true, EndCursor: &end},
	}, nil
}

func TestCachedSourceSameCursor(t *testing.T) {
	src := countingSource{}
	c := NewCachedSource(&src, time.Minute)
	rid := ResourceID{Resource: SpansResource, Scope: "p1"}
	ctx := context.Background()

	p1, err := c.Fetch(ctx, rid, PageRequest{First: 10, After: "a"})
	require.NoError(t, err)
	p1.Edges[0].Cursor = "mutated"

	p2, err := c.Fetch(ctx, rid, PageRequest{First: 10, After: "a"})
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls)
	assert.Equal(t, "a+", p2.Edges[0].Cursor)

	_, err = c.Fetch(ctx, rid, PageRequest{First: 20, After: "a"})
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls, "page size is part of the key")

	c.Invalidate(rid)
	_, err = c.Fetch(ctx, rid, PageRequest{First: 10, After: "a"})
	require.NoError(t, err)
	assert.Equal(t, 3, src.calls)
}

func TestCachedSourceErrorsNotCached(t *testing.T) {
	src := countingSource{err: errors.New("boom")}
	c := NewCachedSource(&src, time.Minute)
	rid := ResourceID{Resource: SpansResource}

	for range 2 {
		_, err := c.Fetch(context.Background(), rid, PageRequest{First: 1})
		assert.EqualError(t, err, "boom")
	}
	assert.Equal(t, 2, src.calls)
}

func TestPageCacheTTL(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	c := NewPageCache(30 * time.Second)
	c.now = func() time.Time { return now }

	c.Set("spans@p1|10|", &Page{})
	_, ok := c.Get("spans@p1|10|")
	assert.True(t, ok)

	now = now.Add(31 * time.Second)
	_, ok = c.Get("spans@p1|10|")
	assert.False(t, ok)

	c.Set("spans@p1|10|", &Page{})
	c.Set("examples@d1|10|", &Page{})
	c.InvalidatePrefix("spans@p1|")
	_, ok = c.Get("spans@p1|10|")
	assert.False(t, ok)
	_, ok = c.Get("examples@d1|10|")
	assert.True(t, ok)

	c.Clear()
	_, ok = c.Get("examples@d1|10|")
	assert.False(t, ok)
}
