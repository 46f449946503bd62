package logger_test

import (
	"bytes"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/bake/internal/adapters/logger"
)

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name  string
		log   func(*logger.Logger)
		level string
		want  []string
	}{
		{
			name:  "info",
			log:   func(l *logger.Logger) { l.Info("job created", "job", "abc123", "format", "csv") },
			level: "level=INFO",
			want:  []string{`msg="job created"`, "job=abc123", "format=csv"},
		},
		{
			name:  "warn",
			log:   func(l *logger.Logger) { l.Warn("transfer failed", "job", "abc123") },
			level: "level=WARN",
			want:  []string{`msg="transfer failed"`, "job=abc123"},
		},
		{
			name:  "error",
			log:   func(l *logger.Logger) { l.Error(os.ErrNotExist, "path", "/tmp/x") },
			level: "level=ERROR",
			want:  []string{`error="file does not exist"`, "path=/tmp/x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			lg := logger.New()
			lg.SetOutput(&buf)

			tt.log(lg)

			out := buf.String()
			assert.Contains(t, out, tt.level)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
		})
	}
}

func TestLogger_DefaultsToStderr(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)

	original := os.Stderr
	os.Stderr = w
	t.Cleanup(func() { os.Stderr = original })

	lg := logger.New()
	lg.Info("artifact removed")
	require.NoError(t, w.Close())

	out, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Contains(t, string(out), "artifact removed")
}

func TestLogger_ConcurrentSetOutput(t *testing.T) {
	lg := logger.New()
	lg.SetOutput(io.Discard)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			lg.Info("request coalesced")
		}()
		go func() {
			defer wg.Done()
			lg.SetOutput(io.Discard)
		}()
	}
	wg.Wait()
}
