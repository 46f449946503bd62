package export

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	// subqueryAlias names the wrapped export query in every generated statement.
	subqueryAlias = "_bake_export"

	// primaryGeometryColumn is sorted first when the format needs spatial metadata.
	primaryGeometryColumn = "the_geom"
)

// layerCreationOptions are passed to the converter on every run.
var layerCreationOptions = []string{
	"-lco", "RESIZE=YES",
	"-lco", "ENCODING=UTF-8",
	"-lco", "STRING_QUOTING=IF_NEEDED",
	"-lco", "LINEFORMAT=CRLF",
}

// plan is the state a generation collects before invoking the converter.
type plan struct {
	sql      string
	columns  []domain.Column
	geometry string
	srs      domain.SpatialRef
	hasSRS   bool
}

// generate produces the artifact of job at job.path. Every step short-circuits the
// rest on a fatal error.
func (e *Exporter) generate(ctx context.Context, job *Job, req domain.ExportRequest) error {
	p := plan{
		sql:      trimStatement(req.SQL),
		geometry: req.GeometryHint,
	}

	cols, err := e.query.Columns(ctx, req.Conn, fmt.Sprintf("SELECT * FROM (%s) AS %s LIMIT 0", p.sql, subqueryAlias))
	if err != nil {
		return zerr.With(errors.Join(domain.ErrIntrospectionFailed, err), "job", job.key.JobID())
	}
	p.columns = selectColumns(cols, req.SkipFields, job.format.NeedsSRS)

	if p.geometry == "" {
		for _, c := range p.columns {
			if c.Geometry {
				p.geometry = c.Name
				break
			}
		}
	}

	if job.format.NeedsSRS && p.geometry != "" {
		g := e.query.QuoteIdentifier(p.geometry)
		srsSQL := fmt.Sprintf("SELECT ST_SRID(%s) AS srid, GeometryType(%s) AS type FROM (%s) AS %s WHERE %s IS NOT NULL LIMIT 1",
			g, g, p.sql, subqueryAlias, g)
		p.srs, p.hasSRS, err = e.query.SpatialRef(ctx, req.Conn, srsSQL)
		if err != nil {
			return zerr.With(errors.Join(domain.ErrSRSDetectionFailed, err), "job", job.key.JobID())
		}
		if !p.hasSRS {
			e.logger.Info("no spatial metadata found", "job", job.key.JobID(), "column", p.geometry)
			if vtx, ok := ports.VertexFromContext(ctx); ok {
				vtx.Log(domain.LogLevelWarn, "no spatial metadata for "+p.geometry)
			}
		}
	}

	args := e.converterArgs(job, req, p)
	timeout := converterTimeout(req.Timeout, e.opts.Timeout)

	e.logger.Info("converter started", "job", job.key.JobID(), "format", job.format.ID, "path", job.path)
	if vtx, ok := ports.VertexFromContext(ctx); ok {
		vtx.Log(domain.LogLevelInfo, e.opts.Command+" -f "+job.format.Driver+" "+job.path)
	}
	start := time.Now()
	if _, err := e.runner.Run(ctx, e.opts.Command, args, timeout); err != nil {
		return zerr.With(err, "job", job.key.JobID())
	}
	e.logger.Info("converter finished", "job", job.key.JobID(), "elapsed", time.Since(start).String())
	return nil
}

// converterArgs builds the converter command line for p.
func (e *Exporter) converterArgs(job *Job, req domain.ExportRequest, p plan) []string {
	args := make([]string, 0, 16+len(job.format.ExtraArgs)+len(req.ExtraArgs))
	args = append(args, "-f", job.format.Driver)
	args = append(args, layerCreationOptions...)
	args = append(args,
		job.path,
		req.Conn.OGRString(),
		"-sql", e.projection(p, job.format.IsCSV()),
	)
	if p.hasSRS {
		if p.srs.SRID > 0 {
			args = append(args, "-a_srs", "EPSG:"+strconv.Itoa(p.srs.SRID))
		}
		if p.srs.GeometryType != "" {
			args = append(args, "-nlt", p.srs.GeometryType)
		}
	}
	args = append(args, job.format.ExtraArgs...)
	args = append(args, req.ExtraArgs...)
	return append(args, "-nln", req.Layer())
}

// converterTimeout returns the tighter of the request and configured limits. Zero means
// no limit, so a request can lower the configured timeout but never lift it.
func converterTimeout(requested, configured time.Duration) time.Duration {
	switch {
	case requested <= 0:
		return configured
	case configured <= 0:
		return requested
	default:
		return min(requested, configured)
	}
}

// projection selects the planned columns from the export query, as text for CSV.
func (e *Exporter) projection(p plan, asText bool) string {
	exprs := make([]string, len(p.columns))
	for i, c := range p.columns {
		exprs[i] = e.query.QuoteIdentifier(c.Name)
		if asText {
			exprs[i] += "::text"
		}
	}
	return fmt.Sprintf("SELECT %s FROM (%s) AS %s", strings.Join(exprs, ", "), p.sql, subqueryAlias)
}

// selectColumns drops skipped columns and, when geometryFirst is set, moves a column
// named the_geom to the front while keeping the order of the rest.
func selectColumns(cols []domain.Column, skip []string, geometryFirst bool) []domain.Column {
	out := make([]domain.Column, 0, len(cols))
	for _, c := range cols {
		if !slices.Contains(skip, c.Name) {
			out = append(out, c)
		}
	}
	if geometryFirst {
		slices.SortStableFunc(out, func(a, b domain.Column) int {
			return primaryRank(a) - primaryRank(b)
		})
	}
	return out
}

func primaryRank(c domain.Column) int {
	if c.Name == primaryGeometryColumn {
		return 0
	}
	return 1
}

// trimStatement strips trailing whitespace and statement terminators, which the
// converter rejects inside a subquery.
func trimStatement(sql string) string {
	return strings.TrimRight(sql, "; \t\r\n")
}
