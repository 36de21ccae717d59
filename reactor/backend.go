// File: reactor/backend.go
// Author: momentics <momentics@gmail.com>
//
// Readiness-wait strategy shared by the poll and select backends.

package reactor

import (
	"github.com/momentics/fdreactor/api"
	"github.com/momentics/fdreactor/control"
)

// WaitEntry is one descriptor submitted to a readiness wait.
type WaitEntry struct {
	FD       int
	Interest api.EventMask
}

//go:generate mockgen -destination=mocks/backend_mock.go -package=mocks github.com/momentics/fdreactor/reactor Backend

// Backend waits for readiness on a batch of descriptors.
//
// Wait fills out[i] with the raw bits reported for entries[i]; len(out) ==
// len(entries). When block is false it must return without blocking.
// It returns api.ErrInterrupted when the wait was interrupted before any
// report, an *api.Error with ErrCodeInvalidDescriptor when the environment
// reports an entry's descriptor as invalid, and ErrCodeWaitFailed otherwise.
type Backend interface {
	Name() string
	Wait(entries []WaitEntry, out []api.EventMask, block bool) error
}

// NewBackend constructs the named backend for this platform.
func NewBackend(name string) (Backend, error) {
	switch name {
	case control.BackendPoll, "":
		return newPollBackend()
	case control.BackendSelect:
		return newSelectBackend()
	default:
		return nil, api.NewError(api.ErrCodeInvalidArgument, "unknown backend").WithContext("backend", name)
	}
}

func invalidDescriptor(backend string, fd int) *api.Error {
	return api.NewError(api.ErrCodeInvalidDescriptor, "invalid descriptor in readiness report").
		WithContext("backend", backend).
		WithContext("fd", fd)
}
