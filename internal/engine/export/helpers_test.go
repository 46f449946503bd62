package export_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/core/ports"
	"go.trai.ch/bake/internal/core/ports/mocks"
	"go.trai.ch/bake/internal/engine/export"
	"go.uber.org/mock/gomock"
)

// artifactArg is the position of the output path in the converter arguments.
const artifactArg = 10

type fixture struct {
	ctrl     *gomock.Controller
	query    *mocks.MockQueryEngine
	runner   *mocks.MockProcessRunner
	registry *export.Registry
	exporter *export.Exporter
	tmpDir   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	query := mocks.NewMockQueryEngine(ctrl)
	query.EXPECT().QuoteIdentifier(gomock.Any()).DoAndReturn(func(name string) string {
		return `"` + name + `"`
	}).AnyTimes()

	runner := mocks.NewMockProcessRunner(ctrl)
	registry := export.NewRegistry()
	tmpDir := t.TempDir()

	return &fixture{
		ctrl:     ctrl,
		query:    query,
		runner:   runner,
		registry: registry,
		tmpDir:   tmpDir,
		exporter: export.NewExporter(registry, query, runner, quietLogger(ctrl), quietTelemetry(ctrl), quietMetrics(ctrl), export.Options{
			Command: "ogr2ogr",
			TmpDir:  tmpDir,
			PID:     4242,
		}),
	}
}

func quietLogger(ctrl *gomock.Controller) ports.Logger {
	l := mocks.NewMockLogger(ctrl)
	l.EXPECT().Info(gomock.Any(), gomock.Any()).AnyTimes()
	l.EXPECT().Warn(gomock.Any(), gomock.Any()).AnyTimes()
	l.EXPECT().Error(gomock.Any(), gomock.Any()).AnyTimes()
	return l
}

func quietMetrics(ctrl *gomock.Controller) ports.Metrics {
	m := mocks.NewMockMetrics(ctrl)
	m.EXPECT().JobStarted(gomock.Any()).AnyTimes()
	m.EXPECT().RequestCoalesced(gomock.Any()).AnyTimes()
	m.EXPECT().RequestCanceled(gomock.Any()).AnyTimes()
	m.EXPECT().JobFinished(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	return m
}

func quietTelemetry(ctrl *gomock.Controller) ports.Telemetry {
	vtx := mocks.NewMockVertex(ctrl)
	vtx.EXPECT().Stdout().Return(io.Discard).AnyTimes()
	vtx.EXPECT().Stderr().Return(io.Discard).AnyTimes()
	vtx.EXPECT().Log(gomock.Any(), gomock.Any()).AnyTimes()
	vtx.EXPECT().Cached().AnyTimes()
	vtx.EXPECT().Complete(gomock.Any()).AnyTimes()

	tel := mocks.NewMockTelemetry(ctrl)
	tel.EXPECT().Record(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ string) (context.Context, ports.Vertex) {
			return ports.ContextWithVertex(ctx, vtx), vtx
		}).AnyTimes()
	tel.EXPECT().Close().Return(nil).AnyTimes()
	return tel
}

// expectColumns makes introspection return cols.
func (f *fixture) expectColumns(cols ...domain.Column) {
	f.query.EXPECT().Columns(gomock.Any(), gomock.Any(), gomock.Any()).Return(cols, nil).AnyTimes()
}

// writeArtifact writes content to the output path found in args, like the converter would.
func writeArtifact(args []string, content string) error {
	return os.WriteFile(args[artifactArg], []byte(content), 0o600)
}

// writeScript creates an executable shell script standing in for the converter.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "converter.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o700); err != nil { //nolint:gosec // test script must be executable
		t.Fatalf("failed to write converter script: %v", err)
	}
	return path
}

func csvRequest(sql string) domain.ExportRequest {
	return domain.ExportRequest{
		FormatID: "csv",
		Conn:     domain.ConnParams{Host: "db", Port: 5432, User: "alice", Password: "secret", DBName: "gis"},
		SQL:      sql,
	}
}
