// Package app implements the application layer for bake.
package app

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"go.trai.ch/bake/internal/adapters/httpapi"
	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/core/ports"
	"go.trai.ch/bake/internal/engine/export"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout   = 30 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// MetricsRecorder records export metrics and serves them over HTTP.
type MetricsRecorder interface {
	ports.Metrics
	Handler() http.Handler
}

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	registry     *export.Registry
	query        ports.QueryEngine
	runner       ports.ProcessRunner
	logger       ports.Logger
	telemetry    ports.Telemetry
	metrics      MetricsRecorder

	configPath string

	mu       sync.Mutex
	cfg      *domain.Config
	exporter *export.Exporter
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	registry *export.Registry,
	query ports.QueryEngine,
	runner ports.ProcessRunner,
	logger ports.Logger,
	telemetry ports.Telemetry,
	metrics MetricsRecorder,
) *App {
	return &App{
		configLoader: loader,
		registry:     registry,
		query:        query,
		runner:       runner,
		logger:       logger,
		telemetry:    telemetry,
		metrics:      metrics,
	}
}

// WithConfigPath sets the configuration file read on first use. Switching to another
// path drops the loaded configuration and the exporter built from it.
func (a *App) WithConfigPath(path string) *App {
	a.mu.Lock()
	defer a.mu.Unlock()
	if path != a.configPath {
		a.cfg = nil
		a.exporter = nil
	}
	a.configPath = path
	return a
}

// Config loads the configuration once and returns it.
func (a *App) Config() (*domain.Config, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.configLocked()
}

func (a *App) configLocked() (*domain.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}
	cfg, err := a.configLoader.Load(a.configPath)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	a.cfg = cfg
	return cfg, nil
}

// Exporter returns the exporter built from the configuration.
func (a *App) Exporter() (*export.Exporter, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.exporter != nil {
		return a.exporter, nil
	}
	cfg, err := a.configLocked()
	if err != nil {
		return nil, err
	}

	a.exporter = export.NewExporter(a.registry, a.query, a.runner, a.logger, a.telemetry, a.metrics, export.Options{
		Command: cfg.ConverterCommand,
		TmpDir:  cfg.TmpDir,
		Timeout: cfg.ConverterTimeout,
	})
	return a.exporter, nil
}

// ServeOptions configures Serve.
type ServeOptions struct {
	// Listen overrides the configured address.
	Listen string
	// Ready is called with the bound address once the server accepts connections.
	Ready func(addr string)
}

// Serve runs the HTTP adapter until ctx is canceled, then shuts it down gracefully.
func (a *App) Serve(ctx context.Context, opts ServeOptions) error {
	exporter, err := a.Exporter()
	if err != nil {
		return err
	}
	cfg, err := a.Config()
	if err != nil {
		return err
	}

	listen := opts.Listen
	if listen == "" {
		listen = cfg.Listen
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", listen)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to listen"), "addr", listen)
	}

	srv := &http.Server{
		Handler:           httpapi.NewRouter(httpapi.NewHandler(exporter, a.logger, cfg.Database), a.metrics.Handler()),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return zerr.Wrap(err, "http server failed")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down", "in_flight_jobs", a.registry.Len())
		return srv.Shutdown(shutdownCtx)
	})

	if opts.Ready != nil {
		opts.Ready(ln.Addr().String())
	}
	return g.Wait()
}

// ExportOptions describes a one-shot export.
type ExportOptions struct {
	Format       string
	SQL          string
	Layer        string
	GeometryHint string
	SkipFields   []string
	ExtraArgs    []string
	Timeout      time.Duration
	// Conn overrides the configured database defaults field by field.
	Conn domain.ConnParams
	// Out is the destination file. Empty writes to the provided writer.
	Out string
}

func (a *App) request(opts ExportOptions) (domain.ExportRequest, error) {
	cfg, err := a.Config()
	if err != nil {
		return domain.ExportRequest{}, err
	}
	return domain.ExportRequest{
		FormatID:     opts.Format,
		Conn:         opts.Conn.Merge(cfg.Database),
		SQL:          opts.SQL,
		LayerName:    opts.Layer,
		GeometryHint: opts.GeometryHint,
		SkipFields:   opts.SkipFields,
		ExtraArgs:    opts.ExtraArgs,
		Timeout:      opts.Timeout,
	}, nil
}

// Export runs a single export and writes the artifact to opts.Out, or to stdout
// when no file is given. A failed export leaves no output file behind.
func (a *App) Export(ctx context.Context, opts ExportOptions, stdout io.Writer) error {
	req, err := a.request(opts)
	if err != nil {
		return err
	}
	exporter, err := a.Exporter()
	if err != nil {
		return err
	}

	if opts.Out == "" {
		return exporter.Export(ctx, req, stdout, nil)
	}

	out := &lazyFile{path: opts.Out}
	if err := exporter.Export(ctx, req, out, nil); err != nil {
		out.discard()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	a.logger.Info("export written", "path", opts.Out)
	return nil
}

// Key returns the fingerprint of the export described by opts.
func (a *App) Key(opts ExportOptions) (domain.Fingerprint, error) {
	req, err := a.request(opts)
	if err != nil {
		return "", err
	}
	exporter, err := a.Exporter()
	if err != nil {
		return "", err
	}
	return exporter.Key(req)
}

// Close releases database pools and flushes telemetry.
func (a *App) Close() error {
	if c, ok := a.query.(interface{ Close() }); ok {
		c.Close()
	}
	return a.telemetry.Close()
}

// lazyFile creates its file on the first write so failed exports leave nothing behind.
type lazyFile struct {
	path string
	f    *os.File
}

func (l *lazyFile) Write(p []byte) (int, error) {
	if l.f == nil {
		f, err := os.Create(l.path)
		if err != nil {
			return 0, zerr.With(zerr.Wrap(err, "failed to create output file"), "path", l.path)
		}
		l.f = f
	}
	return l.f.Write(p)
}

func (l *lazyFile) Close() error {
	if l.f == nil {
		// An empty artifact still produces an empty file.
		f, err := os.Create(l.path)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "failed to create output file"), "path", l.path)
		}
		l.f = f
	}
	return l.f.Close()
}

func (l *lazyFile) discard() {
	if l.f != nil {
		_ = l.f.Close()
		_ = os.Remove(l.path)
	}
}
