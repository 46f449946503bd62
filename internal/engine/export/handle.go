package export

import (
	"errors"
	"io"
	"os"
	"sync"

	"go.trai.ch/bake/internal/core/domain"
	"go.trai.ch/zerr"
)

// State is the delivery state of a request handle.
type State string

const (
	// StatePending indicates the handle waits for its turn in the queue.
	StatePending State = "Pending"
	// StateStreaming indicates the artifact is being copied to the sink.
	StateStreaming State = "Streaming"
	// StateCompleted indicates the artifact was fully delivered.
	StateCompleted State = "Completed"
	// StateErrored indicates the handle was notified of an error.
	StateErrored State = "Errored"
)

// Handle wraps one client's sink. Cancellation is observed independently of the drain
// loop and may happen at any time.
type Handle struct {
	sink       io.Writer
	beforeSink func()
	callback   func(error)

	mu       sync.Mutex
	state    State
	canceled bool
	source   io.Closer
	release  func() bool

	done     chan struct{}
	doneOnce sync.Once
}

// NewHandle creates a pending handle. beforeSink may be nil; it runs once, right
// before the first byte is written to sink. callback receives the outcome of the
// delivery and may be nil.
func NewHandle(sink io.Writer, beforeSink func(), callback func(error)) *Handle {
	return &Handle{
		sink:       sink,
		beforeSink: beforeSink,
		callback:   callback,
		state:      StatePending,
		done:       make(chan struct{}),
	}
}

// Cancel marks the client as gone. An open artifact read is closed immediately, which
// makes the running copy fail. Cancel reports whether the sink was released right
// away, i.e. the handle had not started streaming yet.
func (h *Handle) Cancel() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state == StateCompleted || h.state == StateErrored {
		return false
	}
	h.canceled = true
	if h.source != nil {
		_ = h.source.Close()
	}
	return h.state == StatePending
}

// Canceled reports whether Cancel was called before the handle finished.
func (h *Handle) Canceled() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.canceled
}

// State returns the current delivery state.
func (h *Handle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Done returns a channel closed once the drain loop no longer touches the sink:
// after delivery, after an error was reported, or after the handle was skipped.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// onRelease registers fn to run when the handle is done.
func (h *Handle) onRelease(fn func() bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.release = fn
}

// open starts streaming path to the handle. It returns a nil file and no error when
// the handle was canceled before its turn.
func (h *Handle) open(path string) (*os.File, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.canceled {
		return nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to open artifact"), "path", path)
	}
	h.source = f
	h.state = StateStreaming
	return f, nil
}

// transfer copies the artifact to the sink. skipped is true when the handle was
// canceled before its turn; the callback is not invoked in that case.
func (h *Handle) transfer(path string) (skipped bool, err error) {
	f, err := h.open(path)
	if err != nil {
		err = zerr.Wrap(errors.Join(domain.ErrTransferFailed, err), "transfer failed")
		h.finish(err)
		return false, err
	}
	if f == nil {
		h.skip()
		return true, nil
	}

	if h.beforeSink != nil {
		h.beforeSink()
	}
	_, err = io.Copy(h.sink, f)

	h.mu.Lock()
	h.source = nil
	canceled := h.canceled
	h.mu.Unlock()
	_ = f.Close()

	switch {
	case err != nil && canceled:
		err = zerr.Wrap(errors.Join(domain.ErrRequestCanceled, err), "client went away during transfer")
	case err != nil:
		err = zerr.Wrap(errors.Join(domain.ErrTransferFailed, err), "transfer failed")
	}
	h.finish(err)
	return false, err
}

// finish records the outcome, reports it to the callback and releases the handle.
func (h *Handle) finish(err error) {
	h.mu.Lock()
	if err != nil {
		h.state = StateErrored
	} else {
		h.state = StateCompleted
	}
	h.mu.Unlock()

	if h.callback != nil {
		h.callback(err)
	}
	h.markDone()
}

func (h *Handle) skip() {
	h.markDone()
}

func (h *Handle) markDone() {
	h.doneOnce.Do(func() {
		h.mu.Lock()
		release := h.release
		h.mu.Unlock()
		if release != nil {
			release()
		}
		close(h.done)
	})
}
