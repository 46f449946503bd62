package progrock_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/bake/internal/adapters/telemetry/progrock"
	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/core/ports"
)

func TestNew(t *testing.T) {
	recorder := progrock.New()
	assert.NotNil(t, recorder)
}

func TestRecorder_Record_CarriesVertex(t *testing.T) {
	recorder := progrock.New()

	ctx, vertex := recorder.Record(context.Background(), "export csv 0123")
	got, ok := ports.VertexFromContext(ctx)
	require.True(t, ok)
	assert.Same(t, vertex, got)

	vertex.Complete(nil)
	require.NoError(t, recorder.Close())
}

func TestRecorder_Integration(t *testing.T) {
	recorder := progrock.New()

	_, vertex := recorder.Record(context.Background(), "export kml 4567")
	if _, err := vertex.Stderr().Write([]byte("Warning 1: layer created\n")); err != nil {
		t.Errorf("failed to write to stderr: %v", err)
	}
	vertex.Log(domain.LogLevelInfo, "converter started")
	vertex.Log(domain.LogLevelWarn, "no spatial metadata for the_geom")
	vertex.Complete(errors.New("converter return code 1"))

	_, cached := recorder.Record(context.Background(), "export kml 4567 (coalesced)")
	cached.Cached()
	cached.Complete(nil)

	if err := recorder.Close(); err != nil {
		t.Errorf("failed to close recorder: %v", err)
	}
}
