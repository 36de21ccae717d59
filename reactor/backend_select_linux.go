//go:build linux
// +build linux

// File: reactor/backend_select_linux.go
// Author: momentics <momentics@gmail.com>
//
// Bounded readiness-set backend built on select(2).

package reactor

import (
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/momentics/fdreactor/api"
	"github.com/momentics/fdreactor/control"
)

// fdSetSize is the number of descriptors an FdSet can hold.
const fdSetSize = int(unsafe.Sizeof(unix.FdSet{})) * 8

// selectBackend rebuilds its three sets on every wait. The exceptional set
// carries every descriptor regardless of interest.
type selectBackend struct {
	rfds, wfds, efds unix.FdSet
}

func newSelectBackend() (Backend, error) {
	return &selectBackend{}, nil
}

func (b *selectBackend) Name() string { return control.BackendSelect }

func (b *selectBackend) Wait(entries []WaitEntry, out []api.EventMask, block bool) error {
	b.rfds.Zero()
	b.wfds.Zero()
	b.efds.Zero()

	maxfd := -1
	for _, e := range entries {
		if e.FD < 0 || e.FD >= fdSetSize {
			return invalidDescriptor(b.Name(), e.FD)
		}
		if e.Interest&api.EventReadable != 0 {
			b.rfds.Set(e.FD)
		}
		if e.Interest&api.EventWritable != 0 {
			b.wfds.Set(e.FD)
		}
		b.efds.Set(e.FD)
		if e.FD > maxfd {
			maxfd = e.FD
		}
	}

	var timeout *unix.Timeval
	if !block {
		timeout = &unix.Timeval{}
	}
	if _, err := unix.Select(maxfd+1, &b.rfds, &b.wfds, &b.efds, timeout); err != nil {
		switch err {
		case unix.EINTR:
			return api.ErrInterrupted
		case unix.EBADF:
			return b.findInvalid(entries, err)
		}
		return api.NewError(api.ErrCodeWaitFailed, "select() failed in event loop").WithCause(err)
	}

	for i, e := range entries {
		var m api.EventMask
		if b.rfds.IsSet(e.FD) {
			m |= api.EventReadable
		}
		if b.wfds.IsSet(e.FD) {
			m |= api.EventWritable
		}
		if b.efds.IsSet(e.FD) {
			m |= api.EventError
		}
		out[i] = m
	}
	return nil
}

// findInvalid names the descriptor behind an EBADF, which select does not report.
func (b *selectBackend) findInvalid(entries []WaitEntry, cause error) error {
	for _, e := range entries {
		if _, err := unix.FcntlInt(uintptr(e.FD), unix.F_GETFD, 0); err == unix.EBADF {
			return invalidDescriptor(b.Name(), e.FD).WithCause(cause)
		}
	}
	return api.NewError(api.ErrCodeInvalidDescriptor, "select() reported a bad descriptor").WithCause(cause)
}
