package ports

import (
	"context"

	"go.trai.ch/bake/internal/core/domain"
)

// QueryEngine executes the metadata queries an export needs before the converter runs.
//
//go:generate go run go.uber.org/mock/mockgen -source=query.go -destination=mocks/mock_query.go -package=mocks
type QueryEngine interface {
	// Columns runs sql and returns the result column set without reading rows.
	Columns(ctx context.Context, conn domain.ConnParams, sql string) ([]domain.Column, error)

	// SpatialRef runs sql, which must select an SRID and a geometry type, and scans its
	// first row. The boolean is false when the query returned no row.
	SpatialRef(ctx context.Context, conn domain.ConnParams, sql string) (domain.SpatialRef, bool, error)

	// QuoteIdentifier quotes name for use as an identifier in the engine's SQL dialect.
	QuoteIdentifier(name string) string
}
