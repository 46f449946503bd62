package ports

import (
	"context"
	"io"

	"go.trai.ch/bake/internal/core/domain"
)

// Exporter serves export requests to the outer adapters.
//
//go:generate go run go.uber.org/mock/mockgen -source=exporter.go -destination=mocks/mock_exporter.go -package=mocks
type Exporter interface {
	// Export streams the artifact of req to sink, calling beforeSink right before
	// the first byte, and waits for the outcome.
	Export(ctx context.Context, req domain.ExportRequest, sink io.Writer, beforeSink func()) error
	// Key returns the fingerprint of req.
	Key(req domain.ExportRequest) (domain.Fingerprint, error)
}
