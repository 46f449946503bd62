// Package shell provides the process runner that supervises the external converter.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/bake/internal/core/ports"
	"go.trai.ch/zerr"
)

// waitDelay bounds how long Wait keeps draining output pipes after the process was killed.
const waitDelay = 500 * time.Millisecond

var _ ports.ProcessRunner = (*Runner)(nil)

// Runner implements ports.ProcessRunner using os/exec.
type Runner struct {
	logger ports.Logger
}

// NewRunner creates a new Runner.
func NewRunner(logger ports.Logger) *Runner {
	return &Runner{
		logger: logger,
	}
}

// Run spawns command and waits for it, enforcing timeout when it is positive.
//
// Diagnostic output is captured for the returned string and mirrored to the vertex
// carried by ctx, or to the logger when there is none. Exactly one outcome is
// reported: spawn failure, timeout, non-zero exit, or success.
func (r *Runner) Run(ctx context.Context, command string, args []string, timeout time.Duration) (string, error) {
	runCtx, cancel := ctx, context.CancelFunc(func() {})
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, timeout)
	}
	defer cancel()

	var diag bytes.Buffer
	stdout, stderr := r.outputs(ctx)
	defer func() {
		_ = stdout.Close()
		_ = stderr.Close()
	}()

	cmd := exec.CommandContext(runCtx, command, args...) //nolint:gosec // converter command comes from configuration
	cmd.Stdout = stdout
	cmd.Stderr = io.MultiWriter(&diag, stderr)
	cmd.WaitDelay = waitDelay

	if err := cmd.Start(); err != nil {
		return "", errors.Join(domain.ErrConverterSpawn, zerr.With(zerr.Wrap(err, "failed to start converter"), "command", command))
	}

	err := cmd.Wait()
	text := diag.String()

	switch {
	case err == nil:
		return text, nil
	case timeout > 0 && errors.Is(runCtx.Err(), context.DeadlineExceeded):
		return text, zerr.With(zerr.Wrap(domain.ErrConverterTimeout, "converter killed"), "timeout", timeout.String())
	case ctx.Err() != nil:
		return text, zerr.Wrap(ctx.Err(), "converter interrupted")
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return text, zerr.With(zerr.Wrap(err, "converter failed"), "command", command)
	}

	code := exitErr.ExitCode()
	msg := fmt.Sprintf("converter return code %d", code)
	if text != "" {
		msg += ", Error: " + strings.TrimRight(text, "\n")
	}
	return text, zerr.With(zerr.Wrap(domain.ErrConverterExit, msg), "exit_code", code)
}

func (r *Runner) outputs(ctx context.Context) (stdout, stderr io.WriteCloser) {
	if v, ok := ports.VertexFromContext(ctx); ok {
		return nopCloser{v.Stdout()}, nopCloser{v.Stderr()}
	}
	return &logWriter{logger: r.logger, level: "info"}, &logWriter{logger: r.logger, level: "warn"}
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// logWriter forwards complete lines to the logger.
type logWriter struct {
	logger ports.Logger
	level  string
	buf    []byte
}

func (w *logWriter) Write(p []byte) (n int, err error) {
	w.buf = append(w.buf, p...)

	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.logLine(w.buf[:i])
		w.buf = w.buf[i+1:]
	}

	return len(p), nil
}

func (w *logWriter) Close() error {
	if len(w.buf) > 0 {
		w.logLine(w.buf)
		w.buf = nil
	}
	return nil
}

func (w *logWriter) logLine(line []byte) {
	msg := strings.TrimSuffix(string(line), "\r")
	if msg == "" {
		return
	}

	if w.level == "info" {
		w.logger.Info(msg, "stream", "stdout")
	} else {
		w.logger.Warn(msg, "stream", "stderr")
	}
}
