//go:build linux
// +build linux

// File: reactor/backend_poll_linux.go
// Author: momentics <momentics@gmail.com>
//
// Bulk-multiplexing backend: one poll(2) call over every registered descriptor.

package reactor

import (
	"golang.org/x/sys/unix"

	"github.com/momentics/fdreactor/api"
	"github.com/momentics/fdreactor/control"
)

// pollBackend reuses its PollFd slice across waits.
type pollBackend struct {
	fds []unix.PollFd
}

func newPollBackend() (Backend, error) {
	return &pollBackend{}, nil
}

func (b *pollBackend) Name() string { return control.BackendPoll }

func (b *pollBackend) Wait(entries []WaitEntry, out []api.EventMask, block bool) error {
	b.fds = b.fds[:0]
	for _, e := range entries {
		var events int16
		if e.Interest&api.EventReadable != 0 {
			events |= unix.POLLIN
		}
		if e.Interest&api.EventWritable != 0 {
			events |= unix.POLLOUT
		}
		// POLLERR and POLLHUP are always reported.
		b.fds = append(b.fds, unix.PollFd{Fd: int32(e.FD), Events: events})
	}

	timeout := -1
	if !block {
		timeout = 0
	}
	if _, err := unix.Poll(b.fds, timeout); err != nil {
		if err == unix.EINTR {
			return api.ErrInterrupted
		}
		return api.NewError(api.ErrCodeWaitFailed, "poll() failed in event loop").WithCause(err)
	}

	for i := range b.fds {
		rev := b.fds[i].Revents
		if rev&unix.POLLNVAL != 0 {
			return invalidDescriptor(b.Name(), entries[i].FD)
		}
		var m api.EventMask
		if rev&unix.POLLIN != 0 {
			m |= api.EventReadable
		}
		if rev&unix.POLLOUT != 0 {
			m |= api.EventWritable
		}
		if rev&unix.POLLERR != 0 {
			m |= api.EventError
		}
		if rev&unix.POLLHUP != 0 {
			m |= api.EventHangup
		}
		out[i] = m
	}
	return nil
}
