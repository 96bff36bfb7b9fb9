package dao

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "nested", "spans.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func ndjson(n int) string {
	var b strings.Builder
	for i := range n {
		fmt.Fprintf(&b, `{"id":"s%d","name":"span-%d"}`+"\n", i, i)
	}
	return b.String()
}

func TestSQLiteImportAndPage(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	rid := ResourceID{Resource: SpansResource, Scope: "p1"}

	n, err := s.Import(ctx, rid, strings.NewReader(ndjson(5)))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	p1, err := s.Fetch(ctx, rid, PageRequest{First: 2})
	require.NoError(t, err)
	require.Len(t, p1.Edges, 2)
	assert.True(t, p1.HasNext())
	assert.JSONEq(t, `{"id":"s0","name":"span-0"}`, string(p1.Edges[0].Node))

	p2, err := s.Fetch(ctx, rid, PageRequest{First: 2, After: p1.NextCursor("")})
	require.NoError(t, err)
	require.Len(t, p2.Edges, 2)
	assert.JSONEq(t, `{"id":"s2","name":"span-2"}`, string(p2.Edges[0].Node))

	p3, err := s.Fetch(ctx, rid, PageRequest{First: 2, After: p2.NextCursor("")})
	require.NoError(t, err)
	require.Len(t, p3.Edges, 1)
	assert.False(t, p3.HasNext())
}

func TestSQLiteImportDedupe(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	rid := ResourceID{Resource: SpansResource, Scope: "p1"}

	_, err := s.Import(ctx, rid, strings.NewReader(ndjson(3)))
	require.NoError(t, err)
	n, err := s.Import(ctx, rid, strings.NewReader(ndjson(4)+"\n"+`{"name":"anonymous"}`))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	total, err := s.Count(ctx, rid)
	require.NoError(t, err)
	assert.Equal(t, 5, total)

	other, err := s.Count(ctx, ResourceID{Resource: SpansResource, Scope: "p2"})
	require.NoError(t, err)
	assert.Zero(t, other)
}

func TestSQLiteImportInvalid(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	rid := ResourceID{Resource: ExamplesResource, Scope: "d1"}

	_, err := s.Import(ctx, rid, strings.NewReader(`{"id":"e1"}`+"\n"+`{nope`))
	assert.ErrorContains(t, err, "line 2: invalid JSON")

	total, err := s.Count(ctx, rid)
	require.NoError(t, err)
	assert.Zero(t, total, "a failed import leaves nothing behind")
}

func TestSQLiteBadCursor(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Fetch(context.Background(), ResourceID{Resource: SpansResource}, PageRequest{After: "!!not-base64"})
	assert.ErrorIs(t, err, ErrBadCursor)

	_, err = decodeCursor("Zm9vOjEy")
	assert.ErrorIs(t, err, ErrBadCursor)

	seq, err := decodeCursor(encodeCursor(42))
	require.NoError(t, err)
	assert.EqualValues(t, 42, seq)
}

func TestSQLiteEmpty(t *testing.T) {
	p, err := openTestStore(t).Fetch(context.Background(), ResourceID{Resource: SpansResource, Scope: "p1"}, PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, p.Edges)
	assert.False(t, p.HasNext())
	assert.Nil(t, p.PageInfo.EndCursor)
}
