// File: api/events.go
// Package api defines the readiness vocabulary shared by the dispatcher and its backends.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

import "strings"

// EventMask is a platform-neutral set of readiness classes.
type EventMask uint8

const (
	// EventReadable reports that a read will not block.
	EventReadable EventMask = 1 << iota
	// EventWritable reports that a write will not block.
	EventWritable
	// EventError reports an error or exceptional condition on the descriptor.
	EventError
	// EventHangup reports that the peer closed its end.
	EventHangup
)

// EventNone is the empty mask.
const EventNone EventMask = 0

// EventAll keeps every bit; SetInterest(fd, EventAll, x) only adds x.
const EventAll = EventReadable | EventWritable | EventError | EventHangup

// Normalize returns m with EventReadable set whenever EventHangup is set.
// A hangup means a read returns end-of-data instead of blocking.
func Normalize(m EventMask) EventMask {
	if m&EventHangup != 0 {
		m |= EventReadable
	}
	return m
}

// Has reports whether every bit of o is set in m.
func (m EventMask) Has(o EventMask) bool {
	return m&o == o
}

func (m EventMask) String() string {
	if m == EventNone {
		return "NONE"
	}
	var parts []string
	if m&EventReadable != 0 {
		parts = append(parts, "READ")
	}
	if m&EventWritable != 0 {
		parts = append(parts, "WRITE")
	}
	if m&EventError != 0 {
		parts = append(parts, "ERROR")
	}
	if m&EventHangup != 0 {
		parts = append(parts, "HANGUP")
	}
	return strings.Join(parts, "|")
}
