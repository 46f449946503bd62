package httpapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/bake/internal/adapters/httpapi"
	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

var testConn = domain.ConnParams{Host: "db", Port: 5432, User: "alice", DBName: "gis"}

func newRouter(t *testing.T, exporter *mocks.MockExporter, metrics http.Handler) http.Handler {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Info(gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Error(gomock.Any(), gomock.Any()).AnyTimes()
	return httpapi.NewRouter(httpapi.NewHandler(exporter, mockLogger, testConn), metrics)
}

func decodeError(t *testing.T, body io.Reader) map[string]string {
	t.Helper()
	var payload map[string]string
	require.NoError(t, json.NewDecoder(body).Decode(&payload))
	return payload
}

func TestHandleExport_Streams(t *testing.T) {
	ctrl := gomock.NewController(t)
	exporter := mocks.NewMockExporter(ctrl)
	exporter.EXPECT().Export(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req domain.ExportRequest, sink io.Writer, beforeSink func()) error {
			assert.Equal(t, domain.ExportRequest{
				FormatID:     "kml",
				Conn:         testConn,
				SQL:          "SELECT * FROM places",
				LayerName:    "places",
				GeometryHint: "geom",
				SkipFields:   []string{"a", "b"},
				Timeout:      30 * time.Second,
			}, req)
			beforeSink()
			_, err := io.WriteString(sink, "<kml/>")
			return err
		}).Times(1)

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet,
		"/api/v1/export?q=SELECT+*+FROM+places&format=kml&filename=places&skipfields=a,+b,&gn=geom&timeout=30s", nil)
	newRouter(t, exporter, nil).ServeHTTP(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<kml/>", rec.Body.String())
	assert.Equal(t, `attachment; filename="places.kml"`, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Header().Get("Content-Type"), "kml")
	_, err := uuid.Parse(rec.Header().Get(httpapi.RequestIDHeader))
	assert.NoError(t, err)
}

func TestHandleExport_DefaultsToCSV(t *testing.T) {
	ctrl := gomock.NewController(t)
	exporter := mocks.NewMockExporter(ctrl)
	exporter.EXPECT().Export(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req domain.ExportRequest, sink io.Writer, beforeSink func()) error {
			assert.Equal(t, "csv", req.FormatID)
			assert.Nil(t, req.SkipFields)
			beforeSink()
			_, err := io.WriteString(sink, "a\r\n1\r\n")
			return err
		}).Times(1)

	rec := httptest.NewRecorder()
	newRouter(t, exporter, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/export?q=SELECT+1+AS+a", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="cartodb-query.csv"`, rec.Header().Get("Content-Disposition"))
}

func TestHandleExport_KeepsClientRequestID(t *testing.T) {
	ctrl := gomock.NewController(t)
	exporter := mocks.NewMockExporter(ctrl)
	exporter.EXPECT().Export(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	id := uuid.NewString()
	r := httptest.NewRequest(http.MethodGet, "/api/v1/export?q=SELECT+1", nil)
	r.Header.Set(httpapi.RequestIDHeader, id)
	rec := httptest.NewRecorder()
	newRouter(t, exporter, nil).ServeHTTP(rec, r)

	assert.Equal(t, id, rec.Header().Get(httpapi.RequestIDHeader))
}

func TestHandleExport_Errors(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		err    error
		status int
	}{
		{"unknown format", "?q=SELECT+1&format=xls", nil, http.StatusBadRequest},
		{"bad timeout", "?q=SELECT+1&timeout=later", nil, http.StatusBadRequest},
		{"empty query", "?q=", domain.ErrEmptyQuery, http.StatusBadRequest},
		{"bad sql", "?q=SELEC", errors.Join(domain.ErrIntrospectionFailed, errors.New("syntax error")), http.StatusBadRequest},
		{"timeout", "?q=SELECT+1", domain.ErrConverterTimeout, http.StatusGatewayTimeout},
		{"converter", "?q=SELECT+1", domain.ErrConverterExit, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			exporter := mocks.NewMockExporter(ctrl)
			if tt.err != nil {
				exporter.EXPECT().Export(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(tt.err)
			}

			rec := httptest.NewRecorder()
			newRouter(t, exporter, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/export"+tt.query, nil))

			assert.Equal(t, tt.status, rec.Code)
			payload := decodeError(t, rec.Body)
			assert.NotEmpty(t, payload["error"])
			assert.Equal(t, rec.Header().Get(httpapi.RequestIDHeader), payload["request_id"])
		})
	}
}

func TestHandleExport_FailureAfterStreaming(t *testing.T) {
	ctrl := gomock.NewController(t)
	exporter := mocks.NewMockExporter(ctrl)
	exporter.EXPECT().Export(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ domain.ExportRequest, sink io.Writer, beforeSink func()) error {
			beforeSink()
			_, _ = io.WriteString(sink, "partial")
			return domain.ErrTransferFailed
		})

	rec := httptest.NewRecorder()
	newRouter(t, exporter, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/export?q=SELECT+1", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "partial", rec.Body.String())
}

func TestHandleExport_ClientGoneMidStream(t *testing.T) {
	ctrl := gomock.NewController(t)
	exporter := mocks.NewMockExporter(ctrl)
	exporter.EXPECT().Export(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ domain.ExportRequest, sink io.Writer, beforeSink func()) error {
			beforeSink()
			_, _ = io.WriteString(sink, "partial")
			return errors.Join(domain.ErrRequestCanceled, errors.New("write: broken pipe"))
		})

	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Info(gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Error(gomock.Any(), gomock.Any()).Times(0)
	router := httpapi.NewRouter(httpapi.NewHandler(exporter, mockLogger, testConn), nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/export?q=SELECT+1", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "partial", rec.Body.String())
}

func TestHandleExport_ClientGoneBeforeStream(t *testing.T) {
	ctrl := gomock.NewController(t)
	exporter := mocks.NewMockExporter(ctrl)
	exporter.EXPECT().Export(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(domain.ErrRequestCanceled)

	rec := httptest.NewRecorder()
	newRouter(t, exporter, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/export?q=SELECT+1", nil))

	assert.Equal(t, 499, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestHandleKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	exporter := mocks.NewMockExporter(ctrl)
	exporter.EXPECT().Key(gomock.Any()).DoAndReturn(func(req domain.ExportRequest) (domain.Fingerprint, error) {
		return req.Key(), nil
	})

	rec := httptest.NewRecorder()
	newRouter(t, exporter, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/export/key?q=SELECT+1&format=csv", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var payload map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&payload))

	want := domain.BuildKey("csv", "gis", "alice", "", "cartodb-query", "SELECT 1", nil)
	assert.Equal(t, want.String(), payload["key"])
	assert.Equal(t, want.JobID(), payload["job"])
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	ctrl := gomock.NewController(t)
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "bake_jobs_started_total 0\n")
	})
	router := newRouter(t, mocks.NewMockExporter(ctrl), metrics)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "bake_jobs_started_total")
}
