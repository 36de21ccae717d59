// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake implementations for testing and development.
// Provides predictable, controllable readiness without touching the OS.

package fake

import (
	"sync"

	"github.com/momentics/fdreactor/api"
	"github.com/momentics/fdreactor/reactor"
)

// ReadyFunc reports the readiness of fd given its current interest.
type ReadyFunc func(fd int, interest api.EventMask) api.EventMask

// WaitRecord describes one call to Wait.
type WaitRecord struct {
	Block bool
	FDs   []int
}

// Backend is a scripted reactor.Backend. Readiness is level-triggered: a
// descriptor reports whatever its ReadyFunc returns on every wait until the
// script changes. A blocking wait with nothing ready fails instead of hanging.
type Backend struct {
	mu    sync.Mutex
	ready map[int]ReadyFunc
	errs  []error
	waits []WaitRecord
}

var _ reactor.Backend = (*Backend)(nil)

// NewBackend creates a backend where nothing is ready.
func NewBackend() *Backend {
	return &Backend{ready: make(map[int]ReadyFunc)}
}

// Name identifies the fake in logs.
func (b *Backend) Name() string { return "fake" }

// SetReady scripts fd to report mask masked by its interest, plus any
// ERROR and HANGUP bits in mask, mirroring poll(2).
func (b *Backend) SetReady(fd int, mask api.EventMask) {
	b.SetReadyFunc(fd, func(_ int, interest api.EventMask) api.EventMask {
		return mask & (interest | api.EventError | api.EventHangup)
	})
}

// SetReadyFunc installs an arbitrary readiness script for fd.
func (b *Backend) SetReadyFunc(fd int, fn ReadyFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ready[fd] = fn
}

// Clear removes the script of fd; it reports nothing afterwards.
func (b *Backend) Clear(fd int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.ready, fd)
}

// FailNext queues errors returned by the next waits, one per wait.
func (b *Backend) FailNext(errs ...error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.errs = append(b.errs, errs...)
}

// Waits returns a copy of the recorded waits.
func (b *Backend) Waits() []WaitRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]WaitRecord, len(b.waits))
	copy(out, b.waits)
	return out
}

// Wait implements reactor.Backend.
func (b *Backend) Wait(entries []reactor.WaitEntry, out []api.EventMask, block bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec := WaitRecord{Block: block, FDs: make([]int, len(entries))}
	for i, e := range entries {
		rec.FDs[i] = e.FD
	}
	b.waits = append(b.waits, rec)

	if len(b.errs) > 0 {
		err := b.errs[0]
		b.errs = b.errs[1:]
		return err
	}

	hit := false
	for i, e := range entries {
		out[i] = api.EventNone
		if fn, ok := b.ready[e.FD]; ok {
			out[i] = fn(e.FD, e.Interest)
		}
		if out[i] != api.EventNone {
			hit = true
		}
	}
	if block && !hit {
		return api.NewError(api.ErrCodeWaitFailed, "fake: blocking wait with nothing ready would never return").
			WithContext("fds", rec.FDs)
	}
	return nil
}
