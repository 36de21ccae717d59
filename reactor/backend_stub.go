//go:build !linux
// +build !linux

// File: reactor/backend_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub backends for unsupported platforms.

package reactor

import "github.com/momentics/fdreactor/api"

func newPollBackend() (Backend, error) {
	return nil, api.NewError(api.ErrCodeNotSupported, "reactor: poll backend is not supported on this platform")
}

func newSelectBackend() (Backend, error) {
	return nil, api.NewError(api.ErrCodeNotSupported, "reactor: select backend is not supported on this platform")
}
