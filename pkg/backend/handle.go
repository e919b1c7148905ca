package backend

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
)

// asyncHandle is completed exactly once by its producer. Fields other than
// done are written before done is set and only read after it is observed.
type asyncHandle struct {
	id     string
	done   atomic.Bool
	status Status
	result []PackageInfo
	err    error
}

func newHandle() *asyncHandle {
	return &asyncHandle{id: uuid.NewString()}
}

func (h *asyncHandle) ID() string        { return h.id }
func (h *asyncHandle) IsCompleted() bool { return h.done.Load() }

func (h *asyncHandle) Status() Status {
	if !h.done.Load() {
		return StatusPending
	}
	return h.status
}

func (h *asyncHandle) Result() []PackageInfo {
	if !h.done.Load() {
		return nil
	}
	return h.result
}

func (h *asyncHandle) Err() error {
	if !h.done.Load() {
		return nil
	}
	return h.err
}

func (h *asyncHandle) complete(result []PackageInfo, err error) {
	if err != nil {
		h.status = StatusFailure
		h.err = err
	} else {
		h.status = StatusSuccess
		h.result = result
	}
	h.done.Store(true)
}

// Go runs fn on a new goroutine and returns a handle that completes when
// fn returns. A non-nil error marks the handle failed.
func Go(ctx context.Context, fn func(ctx context.Context) ([]PackageInfo, error)) Handle {
	h := newHandle()
	go func() {
		h.complete(fn(ctx))
	}()
	return h
}

// Completed returns an already-finished handle.
func Completed(result []PackageInfo, err error) Handle {
	h := newHandle()
	h.complete(result, err)
	return h
}

var _ Handle = (*asyncHandle)(nil)
