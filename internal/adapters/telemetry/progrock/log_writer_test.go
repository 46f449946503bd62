package progrock_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vito/progrock"
	adapter "go.trai.ch/bake/internal/adapters/telemetry/progrock"
	"go.trai.ch/bake/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
	"google.golang.org/protobuf/types/known/timestamppb"
)

func TestLogWriter_WriteStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLogger := mocks.NewMockLogger(ctrl)
	w := adapter.NewLogWriter(mockLogger)

	started := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	completed := started.Add(1500 * time.Millisecond)
	failure := "converter return code 1"

	mockLogger.EXPECT().Info("vertex completed", "vertex", "export csv a", "elapsed", "1.5s").Times(1)
	mockLogger.EXPECT().Info("vertex cached", "vertex", "export csv a (coalesced)").Times(1)
	mockLogger.EXPECT().Warn("vertex failed", "vertex", "export kml b", "error", failure).Times(1)

	err := w.WriteStatus(&progrock.StatusUpdate{
		Vertexes: []*progrock.Vertex{
			{Id: "1", Name: "export csv a", Started: timestamppb.New(started), Completed: timestamppb.New(completed)},
			{Id: "2", Name: "export csv a (coalesced)", Cached: true, Completed: timestamppb.New(completed)},
			{Id: "3", Name: "export kml b", Completed: timestamppb.New(completed), Error: &failure},
			{Id: "4", Name: "export kml c"},
		},
	})
	require.NoError(t, err)
	require.NoError(t, w.Close())
}
