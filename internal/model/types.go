package model

import (
	"encoding/json"

	"github.com/spanlens/spanlens/internal/dao"
	"github.com/spanlens/spanlens/internal/model1"
)

// TableListener represents a table model listener.
type TableListener interface {
	// TableNoData notifies listener no data was found.
	TableNoData(*model1.TableData)

	// TableDataChanged notifies the model data changed.
	TableDataChanged(*model1.TableData)

	// TableLoadFailed notifies the load failed.
	TableLoadFailed(error)
}

// ConnectionListener represents a connection listener. Callbacks run on
// the fetching goroutine.
type ConnectionListener interface {
	// ConnectionChanged hands over a snapshot of every loaded edge.
	ConnectionChanged([]dao.Edge)

	// ConnectionLoadFailed notifies a page fetch failed.
	ConnectionLoadFailed(error)
}

// Loader is the cursor state a pager drives.
type Loader interface {
	// HasNext returns true if more pages follow.
	HasNext() bool

	// IsLoadingNext returns true while a page is in flight.
	IsLoadingNext() bool

	// LoadNext requests the next page and returns immediately.
	LoadNext(pageSize int)
}

// Nodes returns the nodes of the given edges.
func Nodes(edges []dao.Edge) []json.RawMessage {
	nn := make([]json.RawMessage, len(edges))
	for i, e := range edges {
		nn[i] = e.Node
	}
	return nn
}
