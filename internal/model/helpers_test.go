package model

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/spanlens/spanlens/internal/dao"
)

// pagedSource serves total nodes in pages. When gate is set, every fetch
// blocks until a value is sent on it or the context ends.
type pagedSource struct {
	total int
	gate  chan struct{}
	err   error
	mx    sync.Mutex
	reqs  []dao.PageRequest
}

func (s *pagedSource) Fetch(ctx context.Context, rid dao.ResourceID, req dao.PageRequest) (*dao.Page, error) {
	s.mx.Lock()
	s.reqs = append(s.reqs, req)
	gate, err := s.gate, s.err
	s.mx.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
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

	var p dao.Page
	for i := start; i < end; i++ {
		p.Edges = append(p.Edges, dao.Edge{
			Cursor: strconv.Itoa(i),
			Node:   []byte(fmt.Sprintf(`{"id":"%s-%d","name":"span-%d","spanKind":"LLM"}`, rid.Scope, i, i)),
		})
	}
	hasNext := end < s.total
	p.PageInfo = &dao.PageInfo{HasNextPage: hasNext}
	if len(p.Edges) > 0 {
		c := p.Edges[len(p.Edges)-1].Cursor
		p.PageInfo.EndCursor = &c
	}

	return &p, nil
}

func (s *pagedSource) requests() []dao.PageRequest {
	s.mx.Lock()
	defer s.mx.Unlock()
	return append([]dao.PageRequest(nil), s.reqs...)
}

func (s *pagedSource) setErr(err error) {
	s.mx.Lock()
	defer s.mx.Unlock()
	s.err = err
}

type connRecorder struct {
	mx      sync.Mutex
	changes []int
	errs    []error
}

func (r *connRecorder) ConnectionChanged(ee []dao.Edge) {
	r.mx.Lock()
	defer r.mx.Unlock()
	r.changes = append(r.changes, len(ee))
}

func (r *connRecorder) ConnectionLoadFailed(err error) {
	r.mx.Lock()
	defer r.mx.Unlock()
	r.errs = append(r.errs, err)
}

func (r *connRecorder) counts() ([]int, []error) {
	r.mx.Lock()
	defer r.mx.Unlock()
	return append([]int(nil), r.changes...), append([]error(nil), r.errs...)
}

var spansP1 = dao.ResourceID{Resource: dao.SpansResource, Scope: "p1"}
