package view

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"testing"

	"github.com/spanlens/spanlens/internal/config"
	"github.com/spanlens/spanlens/internal/config/data"
	"github.com/spanlens/spanlens/internal/dao"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// indexSource serves total span nodes using row indexes as cursors.
type indexSource struct {
	total int
	err   error
	mx    sync.Mutex
	reqs  []dao.PageRequest
}

func (s *indexSource) Fetch(_ context.Context, rid dao.ResourceID, req dao.PageRequest) (*dao.Page, error) {
	s.mx.Lock()
	s.reqs = append(s.reqs, req)
	err := s.err
	s.mx.Unlock()
	if err != nil {
		return nil, err
	}

	start := 0
	if req.After != "" {
		n, err := strconv.Atoi(req.After)
		if err != nil {
			return nil, dao.ErrBadCursor
		}
		start = n + 1
	}
	end := min(start+req.First, s.total)

	p := dao.Page{PageInfo: &dao.PageInfo{HasNextPage: end < s.total}}
	for i := start; i < end; i++ {
		p.Edges = append(p.Edges, dao.Edge{
			Cursor: strconv.Itoa(i),
			Node:   []byte(fmt.Sprintf(`{"id":"%s-%d","name":"span-%d","spanKind":"LLM","statusCode":"OK"}`, rid.Scope, i, i)),
		})
	}
	if n := len(p.Edges); n > 0 {
		p.PageInfo.EndCursor = &p.Edges[n-1].Cursor
	}

	return &p, nil
}

func (s *indexSource) requests() []dao.PageRequest {
	s.mx.Lock()
	defer s.mx.Unlock()
	return append([]dao.PageRequest(nil), s.reqs...)
}

func newTestApp(t *testing.T, src dao.Source) *App {
	t.Helper()

	cfg := config.NewConfig()
	cfg.SpanLens.SetDir(data.NewDirAt(t.TempDir()))
	cfg.SpanLens.Project = "p1"
	require.NoError(t, cfg.Refine(nil))

	log := zaptest.NewLogger(t)
	app := NewApp(cfg, dao.NewFactory(src, log), log, "test")
	app.command = NewCommand(app)

	return app
}
