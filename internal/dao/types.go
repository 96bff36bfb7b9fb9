package dao

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

type Error string

const (
	ErrUnknownResource = Error("unknown resource")
	ErrBadCursor       = Error("invalid cursor")
	ErrNotFound        = Error("connection owner not found")
	ErrNoSource        = Error("no data source configured")
	ErrNoAWSSession    = Error("source has no AWS session")
)

func (e Error) Error() string {
	return string(e)
}

// DefaultPageSize is the page size used when a request names none.
const DefaultPageSize = 100

const (
	// SpansResource lists the spans of a project.
	SpansResource = "spans"

	// ExamplesResource lists the examples of a dataset.
	ExamplesResource = "examples"
)

// ResourceID identifies a connection: a resource type plus the id of the
// entity owning it (a project or a dataset).
type ResourceID struct {
	Resource string
	Scope    string
}

// String returns a string representation in the form "resource@scope".
func (r ResourceID) String() string {
	if r.Scope == "" {
		return r.Resource
	}
	return r.Resource + "@" + r.Scope
}

// ParseResourceID parses "resource" or "resource@scope".
func ParseResourceID(s string) (ResourceID, error) {
	res, scope, _ := strings.Cut(strings.TrimSpace(s), "@")
	if _, ok := resources[res]; !ok {
		return ResourceID{}, fmt.Errorf("%w: %q", ErrUnknownResource, res)
	}
	return ResourceID{Resource: res, Scope: scope}, nil
}

// PageRequest asks for the first N edges following an opaque cursor.
type PageRequest struct {
	First int
	After string
}

// PageInfo tells whether more edges follow the page.
type PageInfo struct {
	HasNextPage bool    `json:"hasNextPage"`
	EndCursor   *string `json:"endCursor"`
}

// Edge wraps one connection node with its cursor.
type Edge struct {
	Cursor string          `json:"cursor"`
	Node   json.RawMessage `json:"node"`
}

// Page is one slice of a connection.
type Page struct {
	Edges    []Edge    `json:"edges"`
	PageInfo *PageInfo `json:"pageInfo"`
}

// HasNext reports whether more pages follow. A page without page info is the last one.
func (p *Page) HasNext() bool {
	return p != nil && p.PageInfo != nil && p.PageInfo.HasNextPage
}

// NextCursor returns the cursor to resume after this page: the end cursor
// when given, else the cursor of the last edge, else after itself.
func (p *Page) NextCursor(after string) string {
	if p == nil {
		return after
	}
	if p.PageInfo != nil && p.PageInfo.EndCursor != nil && *p.PageInfo.EndCursor != "" {
		return *p.PageInfo.EndCursor
	}
	if n := len(p.Edges); n > 0 && p.Edges[n-1].Cursor != "" {
		return p.Edges[n-1].Cursor
	}
	return after
}

// Source fetches connection pages.
type Source interface {
	Fetch(ctx context.Context, rid ResourceID, req PageRequest) (*Page, error)
}
