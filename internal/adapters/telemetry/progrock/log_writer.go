package progrock

import (
	"github.com/vito/progrock"
	"go.trai.ch/bake/internal/core/ports"
)

// LogWriter is a progrock.Writer that reports finished vertices to a logger instead
// of keeping them in memory, for long-running processes.
type LogWriter struct {
	logger ports.Logger
}

// NewLogWriter creates a LogWriter.
func NewLogWriter(logger ports.Logger) *LogWriter {
	return &LogWriter{logger: logger}
}

// WriteStatus logs the vertices the update marks as completed.
func (w *LogWriter) WriteStatus(update *progrock.StatusUpdate) error {
	for _, v := range update.Vertexes {
		if v.Completed == nil {
			continue
		}

		args := []any{"vertex", v.Name}
		if v.Started != nil {
			args = append(args, "elapsed", v.Completed.AsTime().Sub(v.Started.AsTime()).String())
		}
		switch {
		case v.Error != nil:
			w.logger.Warn("vertex failed", append(args, "error", *v.Error)...)
		case v.Cached:
			w.logger.Info("vertex cached", args...)
		default:
			w.logger.Info("vertex completed", args...)
		}
	}
	return nil
}

// Close does nothing.
func (w *LogWriter) Close() error {
	return nil
}
