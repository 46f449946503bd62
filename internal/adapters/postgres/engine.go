// Package postgres implements the query engine used to inspect export queries.
package postgres

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	connectTimeout = 10 * time.Second
	maxConns       = 4

	geometryOIDQuery = "SELECT oid FROM pg_type WHERE typname = 'geometry'"
)

var _ ports.QueryEngine = (*Engine)(nil)

// Engine implements ports.QueryEngine on top of one pgx pool per database.
type Engine struct {
	mu    sync.Mutex
	pools map[string]*database
}

type database struct {
	pool *pgxpool.Pool

	geomMu   sync.Mutex
	geomOIDs map[uint32]bool
}

// NewEngine creates an Engine with no open pools.
func NewEngine() *Engine {
	return &Engine{
		pools: make(map[string]*database),
	}
}

// Columns runs sql and returns its column set, marking PostGIS geometry columns.
func (e *Engine) Columns(ctx context.Context, conn domain.ConnParams, sql string) ([]domain.Column, error) {
	db, err := e.database(ctx, conn)
	if err != nil {
		return nil, err
	}

	rows, err := db.pool.Query(ctx, sql)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to run column query")
	}
	fields := append([]pgconn.FieldDescription(nil), rows.FieldDescriptions()...)
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, zerr.Wrap(err, "failed to run column query")
	}

	geom, err := db.geometryOIDs(ctx)
	if err != nil {
		return nil, err
	}

	columns := make([]domain.Column, len(fields))
	for i, f := range fields {
		columns[i] = domain.Column{
			Name:     f.Name,
			Geometry: geom[f.DataTypeOID],
		}
	}
	return columns, nil
}

// SpatialRef scans the SRID and geometry type from the first row of sql.
func (e *Engine) SpatialRef(ctx context.Context, conn domain.ConnParams, sql string) (domain.SpatialRef, bool, error) {
	db, err := e.database(ctx, conn)
	if err != nil {
		return domain.SpatialRef{}, false, err
	}

	var (
		srid *int32
		typ  *string
	)
	err = db.pool.QueryRow(ctx, sql).Scan(&srid, &typ)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.SpatialRef{}, false, nil
	}
	if err != nil {
		return domain.SpatialRef{}, false, zerr.Wrap(err, "failed to run spatial reference query")
	}

	var ref domain.SpatialRef
	if srid != nil {
		ref.SRID = int(*srid)
	}
	if typ != nil {
		ref.GeometryType = *typ
	}
	return ref, true, nil
}

// QuoteIdentifier quotes name as a postgres identifier.
func (e *Engine) QuoteIdentifier(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// Close closes every pool the engine opened.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for key, db := range e.pools {
		db.pool.Close()
		delete(e.pools, key)
	}
}

func (e *Engine) database(ctx context.Context, conn domain.ConnParams) (*database, error) {
	dsn := conn.DSN()

	e.mu.Lock()
	defer e.mu.Unlock()

	if db, ok := e.pools[dsn]; ok {
		return db, nil
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to parse connection parameters"), "database", conn.DBName)
	}
	cfg.MaxConns = maxConns
	cfg.ConnConfig.ConnectTimeout = connectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to create connection pool"), "database", conn.DBName)
	}

	db := &database{pool: pool}
	e.pools[dsn] = db
	return db, nil
}

// geometryOIDs resolves the type OIDs PostGIS registered for geometry. The lookup is
// cached per database once it succeeds; a database without PostGIS has none.
func (db *database) geometryOIDs(ctx context.Context) (map[uint32]bool, error) {
	db.geomMu.Lock()
	defer db.geomMu.Unlock()

	if db.geomOIDs != nil {
		return db.geomOIDs, nil
	}

	rows, err := db.pool.Query(ctx, geometryOIDQuery)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to look up geometry type")
	}
	oids, err := pgx.CollectRows(rows, pgx.RowTo[uint32])
	if err != nil {
		return nil, zerr.Wrap(err, "failed to look up geometry type")
	}

	db.geomOIDs = make(map[uint32]bool, len(oids))
	for _, oid := range oids {
		db.geomOIDs[oid] = true
	}
	return db.geomOIDs, nil
}
