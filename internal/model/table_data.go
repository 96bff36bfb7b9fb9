package model

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/spanlens/spanlens/internal/dao"
	"github.com/spanlens/spanlens/internal/model1"
	"github.com/spanlens/spanlens/internal/render"
	"go.uber.org/zap"
)

// TableData renders a paged connection into a grid and keeps listeners
// posted as pages land.
type TableData struct {
	rid       dao.ResourceID
	source    dao.Source
	renderer  model1.Renderer
	conn      *Connection
	pager     *Pager
	data      *model1.TableData
	nodes     map[string]json.RawMessage
	pageSize  int
	timeout   time.Duration
	log       *zap.Logger
	listeners []TableListener
	mx        sync.RWMutex
}

// TableOption configures a TableData.
type TableOption func(*TableData)

// WithTablePaging sets the page size and the scroll threshold.
func WithTablePaging(pageSize, threshold int) TableOption {
	return func(t *TableData) {
		t.pageSize = pageSize
		t.pager = NewPager(t, pageSize, threshold)
	}
}

// WithFetchTimeout bounds every page fetch.
func WithFetchTimeout(d time.Duration) TableOption {
	return func(t *TableData) {
		t.timeout = d
	}
}

// WithTableLogger sets the table logger.
func WithTableLogger(l *zap.Logger) TableOption {
	return func(t *TableData) {
		if l != nil {
			t.log = l
		}
	}
}

// NewTableData creates a new table data model.
func NewTableData(rid dao.ResourceID, src dao.Source, opts ...TableOption) (*TableData, error) {
	r, err := RendererFor(rid)
	if err != nil {
		return nil, err
	}
	t := TableData{
		rid:      rid,
		source:   src,
		renderer: r,
		data:     model1.NewTableData(rid.Scope),
		pageSize: DefaultPagerPageSize,
		log:      zap.NewNop(),
	}
	t.pager = NewPager(&t, DefaultPagerPageSize, DefaultScrollThreshold)
	for _, o := range opts {
		o(&t)
	}
	t.data.SetGrid(model1.NewEmptyGrid(r.Header()))

	return &t, nil
}

// ResourceID returns the connection id.
func (t *TableData) ResourceID() dao.ResourceID {
	return t.rid
}

// Pager returns the scroll pager driving this table.
func (t *TableData) Pager() *Pager {
	return t.pager
}

// Header returns the table header.
func (t *TableData) Header() model1.Header {
	return t.renderer.Header()
}

// RowCount returns the number of rows.
func (t *TableData) RowCount() int {
	return t.Peek().RowCount()
}

// Empty returns true if no data is available.
func (t *TableData) Empty() bool {
	return t.Peek().Empty()
}

// Peek returns a clone of the current table data.
func (t *TableData) Peek() *model1.TableData {
	t.mx.RLock()
	defer t.mx.RUnlock()
	return t.data.Clone()
}

// Node returns the raw node behind a row id.
func (t *TableData) Node(id string) (json.RawMessage, bool) {
	t.mx.RLock()
	defer t.mx.RUnlock()
	n, ok := t.nodes[id]
	return n, ok
}

// AddListener registers a table listener.
func (t *TableData) AddListener(l TableListener) {
	t.mx.Lock()
	defer t.mx.Unlock()
	t.listeners = append(t.listeners, l)
}

// RemoveListener unregisters a table listener.
func (t *TableData) RemoveListener(l TableListener) {
	t.mx.Lock()
	defer t.mx.Unlock()

	for i, listener := range t.listeners {
		if listener == l {
			t.listeners = append(t.listeners[:i], t.listeners[i+1:]...)
			return
		}
	}
}

// Watch loads the first page of the connection unless already loaded.
func (t *TableData) Watch(ctx context.Context) error {
	t.mx.RLock()
	conn := t.conn
	t.mx.RUnlock()
	if conn != nil {
		return nil
	}

	return t.Refresh(ctx)
}

// Refresh drops the loaded pages and reloads the connection from the
// first page.
func (t *TableData) Refresh(ctx context.Context) error {
	conn := NewConnection(t.source, t.rid,
		WithPageSize(t.pageSize),
		WithTimeout(t.timeout),
		WithConnectionLogger(t.log),
	)
	conn.AddListener(&connListener{table: t, conn: conn})

	t.mx.Lock()
	old := t.conn
	t.conn = conn
	t.mx.Unlock()
	if old != nil {
		old.Dispose()
	}

	if err := conn.Load(ctx); err != nil {
		return fmt.Errorf("failed to load %s: %w", t.rid, err)
	}

	return nil
}

// Stop disposes of the connection.
func (t *TableData) Stop() {
	t.pager.Detach()

	t.mx.Lock()
	conn := t.conn
	t.conn = nil
	t.mx.Unlock()
	if conn != nil {
		conn.Dispose()
	}
}

// HasNext returns true if more pages follow.
func (t *TableData) HasNext() bool {
	c := t.connection()
	return c != nil && c.HasNext()
}

// IsLoadingNext returns true while a page is in flight.
func (t *TableData) IsLoadingNext() bool {
	c := t.connection()
	return c != nil && c.IsLoadingNext()
}

// LoadNext requests the next page in the background.
func (t *TableData) LoadNext(pageSize int) {
	if c := t.connection(); c != nil {
		c.LoadNext(pageSize)
	}
}

// Connection returns the current connection, nil when stopped.
func (t *TableData) Connection() *Connection {
	return t.connection()
}

func (t *TableData) connection() *Connection {
	t.mx.RLock()
	defer t.mx.RUnlock()
	return t.conn
}

func (t *TableData) update(conn *Connection, edges []dao.Edge) {
	nodes := Nodes(edges)
	grid := t.renderer.Render(nodes)
	byID := make(map[string]json.RawMessage, len(nodes))
	if !grid.Empty {
		for i, r := range grid.Rows {
			byID[r.ID] = nodes[i]
		}
	}

	data := model1.NewTableData(t.rid.Scope)
	data.SetGrid(grid)

	t.mx.Lock()
	if t.conn != conn {
		t.mx.Unlock()
		return
	}
	t.data, t.nodes = data, byID
	t.mx.Unlock()

	if grid.Empty {
		t.notifyNoData(data.Clone())
		return
	}
	t.notifyDataChanged(data.Clone())
}

func (t *TableData) fail(conn *Connection, err error) {
	t.mx.Lock()
	if t.conn != conn {
		t.mx.Unlock()
		return
	}
	data := t.data.Clone()
	data.SetError(err.Error())
	t.data = data
	t.mx.Unlock()

	t.notifyLoadFailed(err)
}

func (t *TableData) snapshotListeners() []TableListener {
	t.mx.RLock()
	defer t.mx.RUnlock()

	ll := make([]TableListener, len(t.listeners))
	copy(ll, t.listeners)
	return ll
}

func (t *TableData) notifyNoData(data *model1.TableData) {
	for _, l := range t.snapshotListeners() {
		l.TableNoData(data)
	}
}

func (t *TableData) notifyDataChanged(data *model1.TableData) {
	for _, l := range t.snapshotListeners() {
		l.TableDataChanged(data)
	}
}

func (t *TableData) notifyLoadFailed(err error) {
	for _, l := range t.snapshotListeners() {
		l.TableLoadFailed(err)
	}
}

// connListener ties connection events to the connection that raised
// them, so a replaced connection cannot overwrite the table.
type connListener struct {
	table *TableData
	conn  *Connection
}

func (l *connListener) ConnectionChanged(edges []dao.Edge) {
	l.table.update(l.conn, edges)
}

func (l *connListener) ConnectionLoadFailed(err error) {
	l.table.fail(l.conn, err)
}

// RendererFor returns the renderer of a resource.
func RendererFor(rid dao.ResourceID) (model1.Renderer, error) {
	switch rid.Resource {
	case dao.SpansResource:
		return render.Span{}, nil
	case dao.ExamplesResource:
		return render.Example{}, nil
	default:
		return nil, fmt.Errorf("%w: no renderer for %s", dao.ErrUnknownResource, rid)
	}
}
