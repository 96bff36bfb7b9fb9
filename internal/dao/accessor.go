package dao

import "sort"

// Meta describes a browsable connection.
type Meta struct {
	Resource string
	Title    string
	// ScopeKind names the entity owning the connection.
	ScopeKind string
	// PageSize is the default page size of the connection.
	PageSize int
}

var resources = map[string]Meta{
	SpansResource: {
		Resource:  SpansResource,
		Title:     "Spans",
		ScopeKind: "project",
		PageSize:  DefaultPageSize,
	},
	ExamplesResource: {
		Resource:  ExamplesResource,
		Title:     "Examples",
		ScopeKind: "dataset",
		PageSize:  DefaultPageSize,
	},
}

// MetaFor returns the metadata of a resource.
func MetaFor(resource string) (Meta, error) {
	m, ok := resources[resource]
	if !ok {
		return Meta{}, ErrUnknownResource
	}
	return m, nil
}

// ListResources returns all browsable resources, sorted.
func ListResources() []string {
	rr := make([]string, 0, len(resources))
	for r := range resources {
		rr = append(rr, r)
	}
	sort.Strings(rr)

	return rr
}
