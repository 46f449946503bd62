// Package export coalesces identical export requests onto a single converter run and
// streams the resulting artifact to every waiting client in arrival order.
package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/core/ports"
	"go.trai.ch/zerr"
)

// DefaultCommand is the converter used when Options.Command is empty.
const DefaultCommand = "ogr2ogr"

// Options configures an Exporter.
type Options struct {
	// Command is the converter binary.
	Command string
	// TmpDir is where artifacts are written.
	TmpDir string
	// Timeout bounds converter runs for requests that do not set one.
	Timeout time.Duration
	// PID is embedded in artifact paths.
	PID int
}

func (o Options) withDefaults() Options {
	if o.Command == "" {
		o.Command = DefaultCommand
	}
	if o.TmpDir == "" {
		o.TmpDir = os.TempDir()
	}
	if o.PID == 0 {
		o.PID = os.Getpid()
	}
	return o
}

// Exporter serves export requests.
type Exporter struct {
	registry  *Registry
	query     ports.QueryEngine
	runner    ports.ProcessRunner
	logger    ports.Logger
	telemetry ports.Telemetry
	metrics   ports.Metrics
	opts      Options
}

// NewExporter creates an Exporter that registers its jobs in registry.
func NewExporter(
	registry *Registry,
	query ports.QueryEngine,
	runner ports.ProcessRunner,
	logger ports.Logger,
	telemetry ports.Telemetry,
	metrics ports.Metrics,
	opts Options,
) *Exporter {
	return &Exporter{
		registry:  registry,
		query:     query,
		runner:    runner,
		logger:    logger,
		telemetry: telemetry,
		metrics:   metrics,
		opts:      opts.withDefaults(),
	}
}

// Key returns the fingerprint of req.
func (e *Exporter) Key(req domain.ExportRequest) (domain.Fingerprint, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	return req.Key(), nil
}

// SendResponse queues a delivery of req's artifact to sink. The only synchronous
// error is a validation failure; every other outcome is reported to callback.
//
// beforeSink runs right before the first byte is written. When ctx is canceled the
// handle is canceled too: a handle still waiting for its turn is skipped without a
// callback, a handle being streamed to receives an error wrapping
// domain.ErrRequestCanceled.
func (e *Exporter) SendResponse(
	ctx context.Context,
	req domain.ExportRequest,
	sink io.Writer,
	beforeSink func(),
	callback func(error),
) error {
	_, err := e.submit(ctx, req, NewHandle(sink, beforeSink, callback))
	return err
}

// Export delivers req's artifact to sink and waits for the outcome.
func (e *Exporter) Export(ctx context.Context, req domain.ExportRequest, sink io.Writer, beforeSink func()) error {
	result := make(chan error, 1)
	h, err := e.submit(ctx, req, NewHandle(sink, beforeSink, func(err error) { result <- err }))
	if err != nil {
		return err
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		if h.Cancel() {
			return zerr.Wrap(domain.ErrRequestCanceled, "client went away before transfer")
		}
	case <-h.Done():
	}

	// The handle was either skipped or is finishing its transfer.
	select {
	case err := <-result:
		return err
	case <-h.Done():
	}
	select {
	case err := <-result:
		return err
	default:
		return zerr.Wrap(domain.ErrRequestCanceled, "client went away before transfer")
	}
}

func (e *Exporter) submit(ctx context.Context, req domain.ExportRequest, h *Handle) (*Handle, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	format, err := domain.LookupFormat(req.FormatID)
	if err != nil {
		return nil, err
	}
	key := req.Key()

	h.onRelease(context.AfterFunc(ctx, func() {
		h.Cancel()
		e.metrics.RequestCanceled(format.ID)
		e.logger.Info("request canceled", "job", key.JobID())
	}))

	job, isNew := e.registry.Attach(key, h)
	if !isNew {
		e.metrics.RequestCoalesced(format.ID)
		e.logger.Info("request coalesced", "job", key.JobID(), "format", format.ID)
		_, vtx := e.telemetry.Record(ctx, e.vertexName(format, key))
		vtx.Cached()
		vtx.Complete(nil)
		return h, nil
	}

	job.format = format
	job.path = ArtifactPath(e.opts.TmpDir, e.opts.PID, key, format)

	e.metrics.JobStarted(format.ID)
	e.logger.Info("job created", "job", key.JobID(), "format", format.ID, "layer", req.Layer())

	go e.bake(context.WithoutCancel(ctx), job, req)
	return h, nil
}

// bake runs the generation of job and then drains its queue.
func (e *Exporter) bake(ctx context.Context, job *Job, req domain.ExportRequest) {
	ctx, vtx := e.telemetry.Record(ctx, e.vertexName(job.format, job.key))

	start := time.Now()
	err := e.generate(ctx, job, req)
	e.metrics.JobFinished(job.format.ID, time.Since(start), err)
	vtx.Complete(err)

	if err != nil {
		e.logger.Error(err, "job", job.key.JobID())
	}
	e.drain(job, err)
}

func (e *Exporter) vertexName(format domain.Format, key domain.Fingerprint) string {
	return fmt.Sprintf("export %s %s", format.ID, key.JobID())
}
