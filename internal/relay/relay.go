//go:build linux
// +build linux

// File: internal/relay/relay.go
// Author: momentics <momentics@gmail.com>
//
// Byte relay between two non-blocking descriptors driven by a dispatcher.

package relay

import (
	"errors"

	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"

	"github.com/momentics/fdreactor/api"
)

// Relay copies everything readable from In to Out. Both descriptors must be
// non-blocking. It deregisters itself once In reaches end-of-data and the
// buffer is drained, or on the first I/O error.
type Relay struct {
	In, Out int

	d    api.Dispatcher
	log  zerolog.Logger
	buf  []byte
	head int // first unwritten byte
	tail int // end of buffered data
	eof  bool
	err  error

	inLive, outLive bool
	copied          int64
}

// New prepares a relay with a buffer of bufSize bytes.
func New(d api.Dispatcher, in, out, bufSize int, log zerolog.Logger) *Relay {
	if bufSize <= 0 {
		bufSize = 64 << 10
	}
	return &Relay{
		In:  in,
		Out: out,
		d:   d,
		log: log.With().Str("component", "relay").Int("in", in).Int("out", out).Logger(),
		buf: make([]byte, bufSize),
	}
}

// Start registers both descriptors. Out starts with no interest; only
// errors and hangups are reported for it until data is buffered.
func (r *Relay) Start() {
	r.d.Register(r.In, api.EventReadable, api.HandlerFunc(r.onInput))
	r.d.Register(r.Out, api.EventNone, api.HandlerFunc(r.onOutput))
	r.inLive, r.outLive = true, true
}

// Copied returns the number of bytes written to Out.
func (r *Relay) Copied() int64 { return r.copied }

// Err returns the error that stopped the relay, if any.
func (r *Relay) Err() error { return r.err }

func (r *Relay) pending() int { return r.tail - r.head }

func (r *Relay) onInput(mask api.EventMask) {
	if r.tail == len(r.buf) && r.head > 0 {
		r.tail = copy(r.buf, r.buf[r.head:r.tail])
		r.head = 0
	}
	if r.tail == len(r.buf) {
		r.d.SetInterest(r.In, api.EventAll&^api.EventReadable, api.EventNone)
		return
	}
	n, err := unix.Read(r.In, r.buf[r.tail:])
	switch {
	case errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR):
		return
	case err != nil:
		r.fail(err)
		return
	case n == 0:
		r.log.Debug().Stringer("mask", mask).Msg("input reached end of data")
		r.eof = true
		r.closeInput()
	default:
		r.tail += n
	}
	if r.pending() > 0 {
		r.d.SetInterest(r.Out, api.EventAll, api.EventWritable)
		r.d.ForceEvents(r.Out, api.EventWritable)
	} else if r.eof {
		r.closeOutput()
	}
}

func (r *Relay) onOutput(mask api.EventMask) {
	if r.pending() == 0 {
		if mask&(api.EventError|api.EventHangup) != 0 {
			r.fail(unix.EPIPE)
		}
		return
	}
	n, err := unix.Write(r.Out, r.buf[r.head:r.tail])
	switch {
	case errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR):
		return
	case err != nil:
		r.fail(err)
		return
	}
	r.head += n
	r.copied += int64(n)
	if r.pending() > 0 {
		return
	}
	r.head, r.tail = 0, 0
	r.d.SetInterest(r.Out, api.EventAll&^api.EventWritable, api.EventNone)
	if r.eof {
		r.closeOutput()
		return
	}
	r.d.SetInterest(r.In, api.EventAll, api.EventReadable)
}

func (r *Relay) fail(err error) {
	if r.err == nil {
		r.err = err
		r.log.Error().Err(err).Msg("relay stopped")
	}
	r.closeInput()
	r.closeOutput()
}

func (r *Relay) closeInput() {
	if r.inLive {
		r.inLive = false
		r.d.Deregister(r.In)
	}
}

func (r *Relay) closeOutput() {
	if r.outLive {
		r.outLive = false
		r.d.Deregister(r.Out)
	}
}
