package model

import "sync"

const (
	// DefaultPagerPageSize is the number of edges requested per scroll trigger.
	DefaultPagerPageSize = 100

	// DefaultScrollThreshold is the number of rows left below the viewport
	// under which the next page is requested.
	DefaultScrollThreshold = 10
)

// Geometry describes a scrollable viewport, in rows.
type Geometry struct {
	ScrollHeight int
	ScrollTop    int
	ClientHeight int
}

// Remaining returns the rows left below the viewport.
func (g Geometry) Remaining() int {
	return g.ScrollHeight - g.ScrollTop - g.ClientHeight
}

// Pager requests the next page when the viewport nears the bottom.
// A pager starts detached and ignores scroll events until attached.
type Pager struct {
	loader    Loader
	pageSize  int
	threshold int
	attached  bool
	mx        sync.Mutex
}

// NewPager returns a detached pager. Non positive sizes pick the defaults.
func NewPager(l Loader, pageSize, threshold int) *Pager {
	if pageSize <= 0 {
		pageSize = DefaultPagerPageSize
	}
	if threshold <= 0 {
		threshold = DefaultScrollThreshold
	}

	return &Pager{loader: l, pageSize: pageSize, threshold: threshold}
}

// PageSize returns the page size requested per trigger.
func (p *Pager) PageSize() int {
	return p.pageSize
}

// Threshold returns the trigger distance in rows.
func (p *Pager) Threshold() int {
	return p.threshold
}

// Attach starts reacting to scroll events.
func (p *Pager) Attach() {
	p.mx.Lock()
	defer p.mx.Unlock()
	p.attached = true
}

// Detach stops reacting to scroll events.
func (p *Pager) Detach() {
	p.mx.Lock()
	defer p.mx.Unlock()
	p.attached = false
}

// IsAttached returns true if the pager reacts to scroll events.
func (p *Pager) IsAttached() bool {
	p.mx.Lock()
	defer p.mx.Unlock()
	return p.attached
}

// OnScroll requests the next page if the viewport is within threshold
// rows of the bottom. Calls are serialized, so while a page is in flight
// no further request goes out. Returns true if a page was requested.
func (p *Pager) OnScroll(g Geometry) bool {
	p.mx.Lock()
	defer p.mx.Unlock()

	if !p.attached || p.loader == nil {
		return false
	}
	if g.Remaining() >= p.threshold {
		return false
	}
	if p.loader.IsLoadingNext() || !p.loader.HasNext() {
		return false
	}
	p.loader.LoadNext(p.pageSize)

	return true
}
