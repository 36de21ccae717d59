package api

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	for m := EventNone; m <= EventAll; m++ {
		got := Normalize(m)
		if m&EventHangup != 0 {
			assert.True(t, got.Has(EventReadable|EventHangup), "mask %s", m)
		} else {
			assert.Equal(t, m, got)
		}
	}
}

func TestEventMaskString(t *testing.T) {
	assert.Equal(t, "NONE", EventNone.String())
	assert.Equal(t, "READ|HANGUP", (EventReadable | EventHangup).String())
	assert.Equal(t, "READ|WRITE|ERROR|HANGUP", EventAll.String())
}

func TestErrorMatchesSentinels(t *testing.T) {
	cause := errors.New("EBADF")
	err := NewError(ErrCodeInvalidDescriptor, "bad").WithContext("fd", 3).WithCause(cause)

	assert.ErrorIs(t, err, ErrInvalidDescriptor)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrNotRegistered)
	assert.Contains(t, err.Error(), "bad: EBADF")
	assert.Contains(t, err.Error(), "fd:3")

	wrapped := fmt.Errorf("outer: %w", err)
	var aerr *Error
	assert.True(t, errors.As(wrapped, &aerr))
	assert.Equal(t, ErrCodeInvalidDescriptor, aerr.Code)
}
