package postgres

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/bake/internal/core/ports"
)

// NodeID is the unique identifier for the query engine Graft node.
const NodeID graft.ID = "adapter.query_engine"

func init() {
	graft.Register(graft.Node[ports.QueryEngine]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.QueryEngine, error) {
			return NewEngine(), nil
		},
	})
}
