package model

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/spanlens/spanlens/internal/dao"
	"go.uber.org/zap"
)

// ErrDisposed is returned by loads issued on, or completed after, a
// disposed connection.
var ErrDisposed = errors.New("connection disposed")

// Connection accumulates the pages of a cursor connection. Edges are
// append-only and at most one page is in flight at a time.
type Connection struct {
	rid       dao.ResourceID
	source    dao.Source
	pageSize  int
	timeout   time.Duration
	log       *zap.Logger
	edges     []dao.Edge
	cursor    string
	hasNext   bool
	loaded    bool
	loading   bool
	disposed  bool
	listeners []ConnectionListener
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mx        sync.RWMutex
}

// ConnectionOption configures a Connection.
type ConnectionOption func(*Connection)

// WithPageSize sets the page size used when a load names none.
func WithPageSize(n int) ConnectionOption {
	return func(c *Connection) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithTimeout bounds every page fetch.
func WithTimeout(d time.Duration) ConnectionOption {
	return func(c *Connection) {
		c.timeout = d
	}
}

// WithConnectionLogger sets the connection logger.
func WithConnectionLogger(l *zap.Logger) ConnectionOption {
	return func(c *Connection) {
		if l != nil {
			c.log = l
		}
	}
}

// NewConnection returns an unloaded connection over a source.
func NewConnection(src dao.Source, rid dao.ResourceID, opts ...ConnectionOption) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	c := Connection{
		rid:      rid,
		source:   src,
		pageSize: dao.DefaultPageSize,
		log:      zap.NewNop(),
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, o := range opts {
		o(&c)
	}

	return &c
}

// ResourceID returns the connection id.
func (c *Connection) ResourceID() dao.ResourceID {
	return c.rid
}

// AddListener registers a connection listener.
func (c *Connection) AddListener(l ConnectionListener) {
	c.mx.Lock()
	defer c.mx.Unlock()
	c.listeners = append(c.listeners, l)
}

// RemoveListener unregisters a connection listener.
func (c *Connection) RemoveListener(l ConnectionListener) {
	c.mx.Lock()
	defer c.mx.Unlock()

	for i, listener := range c.listeners {
		if listener == l {
			c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
			return
		}
	}
}

// Load fetches the first page and blocks until it lands. Loading an
// already loaded connection is a no-op.
func (c *Connection) Load(ctx context.Context) error {
	req, ok, err := c.begin(0, true)
	if !ok {
		return err
	}

	return c.run(ctx, req)
}

// Next fetches the following page and blocks until it lands. It is a
// no-op when no pages remain.
func (c *Connection) Next(ctx context.Context, pageSize int) error {
	req, ok, err := c.begin(pageSize, false)
	if !ok {
		return err
	}

	return c.run(ctx, req)
}

// LoadNext fetches the following page in the background. It is a no-op
// while a page is in flight or when no pages remain. IsLoadingNext
// reports true as soon as LoadNext returns after issuing a fetch.
func (c *Connection) LoadNext(pageSize int) {
	req, ok, _ := c.begin(pageSize, false)
	if !ok {
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		_ = c.run(context.Background(), req)
	}()
}

// HasNext returns true if more pages follow.
func (c *Connection) HasNext() bool {
	c.mx.RLock()
	defer c.mx.RUnlock()
	return c.hasNext
}

// IsLoadingNext returns true while a page is in flight.
func (c *Connection) IsLoadingNext() bool {
	c.mx.RLock()
	defer c.mx.RUnlock()
	return c.loading
}

// Loaded returns true once the first page landed.
func (c *Connection) Loaded() bool {
	c.mx.RLock()
	defer c.mx.RUnlock()
	return c.loaded
}

// Cursor returns the opaque cursor the next page resumes after.
func (c *Connection) Cursor() string {
	c.mx.RLock()
	defer c.mx.RUnlock()
	return c.cursor
}

// Len returns the number of loaded edges.
func (c *Connection) Len() int {
	c.mx.RLock()
	defer c.mx.RUnlock()
	return len(c.edges)
}

// Edges returns a snapshot of the loaded edges.
func (c *Connection) Edges() []dao.Edge {
	c.mx.RLock()
	defer c.mx.RUnlock()
	return c.snapshot()
}

// Dispose cancels in-flight fetches. Pages landing afterwards are
// dropped and listeners are no longer notified.
func (c *Connection) Dispose() {
	c.mx.Lock()
	defer c.mx.Unlock()

	if c.disposed {
		return
	}
	c.disposed = true
	c.listeners = nil
	c.cancel()
}

// Wait blocks until background fetches have returned.
func (c *Connection) Wait() {
	c.wg.Wait()
}

func (c *Connection) begin(pageSize int, first bool) (dao.PageRequest, bool, error) {
	c.mx.Lock()
	defer c.mx.Unlock()

	switch {
	case c.disposed:
		return dao.PageRequest{}, false, ErrDisposed
	case c.loading:
		return dao.PageRequest{}, false, nil
	case first && c.loaded:
		return dao.PageRequest{}, false, nil
	case !first && (!c.loaded || !c.hasNext):
		return dao.PageRequest{}, false, nil
	}
	if pageSize <= 0 {
		pageSize = c.pageSize
	}
	c.loading = true

	return dao.PageRequest{First: pageSize, After: c.cursor}, true, nil
}

func (c *Connection) run(ctx context.Context, req dao.PageRequest) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(c.ctx, cancel)
	defer stop()

	page, err := c.fetch(ctx, req)

	return c.complete(req, page, err)
}

func (c *Connection) fetch(ctx context.Context, req dao.PageRequest) (page *dao.Page, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("fetch %s: panic: %v", c.rid, r)
		}
	}()
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	page, err = c.source.Fetch(ctx, c.rid, req)
	if err == nil && page == nil {
		err = fmt.Errorf("fetch %s: empty response", c.rid)
	}

	return page, err
}

func (c *Connection) complete(req dao.PageRequest, page *dao.Page, err error) error {
	c.mx.Lock()
	c.loading = false
	if c.disposed {
		c.mx.Unlock()
		return ErrDisposed
	}
	if err != nil {
		listeners := c.listenersLocked()
		c.mx.Unlock()
		c.log.Warn("Page fetch failed",
			zap.String("rid", c.rid.String()),
			zap.String("after", req.After),
			zap.Error(err),
		)
		for _, l := range listeners {
			l.ConnectionLoadFailed(err)
		}
		return err
	}

	c.edges = append(c.edges, page.Edges...)
	next := page.NextCursor(req.After)
	c.hasNext = page.HasNext()
	if c.hasNext && next == req.After {
		c.log.Warn("Connection claims more pages without advancing, stopping",
			zap.String("rid", c.rid.String()),
		)
		c.hasNext = false
	}
	c.cursor = next
	c.loaded = true
	edges, listeners := c.snapshot(), c.listenersLocked()
	c.mx.Unlock()

	c.log.Debug("Page loaded",
		zap.String("rid", c.rid.String()),
		zap.Int("edges", len(page.Edges)),
		zap.Int("total", len(edges)),
		zap.Bool("hasNext", c.HasNext()),
	)
	for _, l := range listeners {
		l.ConnectionChanged(edges)
	}

	return nil
}

func (c *Connection) snapshot() []dao.Edge {
	n := len(c.edges)
	return c.edges[:n:n]
}

func (c *Connection) listenersLocked() []ConnectionListener {
	ll := make([]ConnectionListener, len(c.listeners))
	copy(ll, c.listeners)
	return ll
}
