// File: reactor/options.go
// Package reactor defines functional options for the Dispatcher.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package reactor

import (
	"github.com/rs/zerolog"

	"github.com/momentics/fdreactor/control"
)

// Option customizes dispatcher initialization.
type Option func(*Dispatcher)

// WithConfig applies backend, sweep policy and retry settings from cfg.
// WithBackend takes precedence over cfg.Backend.
func WithConfig(cfg control.Config) Option {
	return func(d *Dispatcher) {
		d.cfg = cfg
	}
}

// WithBackend installs a ready-made backend instead of the configured one.
func WithBackend(b Backend) Option {
	return func(d *Dispatcher) {
		d.backend = b
	}
}

// WithSweepPolicy overrides the configured sweep policy.
func WithSweepPolicy(policy string) Option {
	return func(d *Dispatcher) {
		d.cfg.SweepPolicy = policy
	}
}

// WithLogger sets the base logger; the dispatcher adds its own fields.
func WithLogger(l zerolog.Logger) Option {
	return func(d *Dispatcher) {
		d.log = l
	}
}

// WithMetrics publishes dispatcher counters into mr after every sweep.
func WithMetrics(mr *control.MetricsRegistry) Option {
	return func(d *Dispatcher) {
		d.metrics = mr
	}
}

// WithDebugProbes registers a probe dumping the registration table.
func WithDebugProbes(dp *control.DebugProbes) Option {
	return func(d *Dispatcher) {
		d.probes = dp
	}
}

// WithFatalHandler is called with the error of any fatal condition before
// the dispatcher panics. The dispatcher panics even if fn returns.
func WithFatalHandler(fn func(error)) Option {
	return func(d *Dispatcher) {
		d.onFatal = fn
	}
}
