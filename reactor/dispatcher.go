// File: reactor/dispatcher.go
// Author: momentics <momentics@gmail.com>
//
// Single-threaded readiness dispatcher: wait, then sweep, until the table is empty.

package reactor

import (
	"errors"
	"math"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/momentics/fdreactor/api"
	"github.com/momentics/fdreactor/control"
)

// Metric keys published by the dispatcher.
const (
	MetricSweeps          = "reactor.sweeps"
	MetricDispatches      = "reactor.dispatches"
	MetricForced          = "reactor.forced_deliveries"
	MetricAbandonedSweeps = "reactor.abandoned_sweeps"
	MetricWaitRetries     = "reactor.wait_retries"
	MetricRegistrations   = "reactor.registrations"
	MetricTableHighWater  = "reactor.table_high_water"
	ProbeTable            = "reactor.table"
)

// Stats are cumulative dispatcher counters.
type Stats struct {
	Sweeps           uint64
	Dispatches       uint64
	ForcedDeliveries uint64
	AbandonedSweeps  uint64
	WaitRetries      uint64
	NonBlockingWaits uint64
}

type slotRef struct {
	slot int
	gen  uint64
}

// Dispatcher is a level-triggered reactor. It implements api.Dispatcher.
// It is not safe for concurrent use: every method must run on the
// goroutine that calls Run, typically from inside callbacks.
type Dispatcher struct {
	cfg     control.Config
	backend Backend
	table   *table
	log     zerolog.Logger
	metrics *control.MetricsRegistry
	probes  *control.DebugProbes
	onFatal func(error)
	id      string

	abandon bool
	retry   bool

	// per-wait buffers, reused
	entries []WaitEntry
	refs    []slotRef
	ready   []api.EventMask

	mutated   bool
	running   bool
	stats     Stats
	published Stats
}

var _ api.Dispatcher = (*Dispatcher)(nil)

// New builds a dispatcher. Without options it uses control.DefaultConfig.
func New(opts ...Option) (*Dispatcher, error) {
	d := &Dispatcher{
		cfg:   control.DefaultConfig(),
		table: newTable(),
		log:   zerolog.Nop(),
		id:    uuid.NewString(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.cfg.Backend == "" {
		d.cfg.Backend = control.BackendPoll
	}
	if d.cfg.SweepPolicy == "" {
		d.cfg.SweepPolicy = control.SweepComplete
	}
	switch d.cfg.SweepPolicy {
	case control.SweepComplete:
	case control.SweepAbandon:
		d.abandon = true
	default:
		return nil, api.NewError(api.ErrCodeInvalidArgument, "unknown sweep policy").
			WithContext("sweep_policy", d.cfg.SweepPolicy)
	}
	d.retry = d.cfg.RetryInterrupted

	if d.backend == nil {
		b, err := NewBackend(d.cfg.Backend)
		if err != nil {
			return nil, err
		}
		d.backend = b
	}
	d.log = d.log.With().
		Str("component", "reactor").
		Str("dispatcher", d.id).
		Str("backend", d.backend.Name()).
		Logger()

	if d.probes != nil {
		d.probes.RegisterProbe(ProbeTable, func() any { return d.table.snapshot() })
	}
	d.log.Debug().Str("sweep_policy", d.cfg.SweepPolicy).Bool("retry_interrupted", d.retry).Msg("dispatcher created")
	return d, nil
}

// ID identifies the dispatcher in logs.
func (d *Dispatcher) ID() string { return d.id }

// BackendName reports the readiness backend in use.
func (d *Dispatcher) BackendName() string { return d.backend.Name() }

// Len returns the number of live registrations.
func (d *Dispatcher) Len() int { return d.table.len() }

// Registered reports whether fd has a live registration.
func (d *Dispatcher) Registered(fd int) bool {
	_, ok := d.table.lookup(fd)
	return ok
}

// Snapshot lists live registrations in visitation order.
func (d *Dispatcher) Snapshot() []TableEntry { return d.table.snapshot() }

// Stats returns the cumulative counters.
func (d *Dispatcher) Stats() Stats { return d.stats }

// Register adds fd. Registering a descriptor twice, or one outside
// [0, math.MaxInt32], is fatal.
func (d *Dispatcher) Register(fd int, interest api.EventMask, h api.Handler) {
	if h == nil || fd < 0 || fd > math.MaxInt32 {
		d.fatal(api.NewError(api.ErrCodeInvalidArgument, "register needs a descriptor and a handler").
			WithContext("fd", fd))
	}
	if _, ok := d.table.lookup(fd); ok {
		d.fatal(api.NewError(api.ErrCodeAlreadyRegistered, "register of a registered descriptor").
			WithContext("fd", fd))
	}
	d.table.add(fd, interest, h)
	d.mutated = true
	d.log.Debug().Int("fd", fd).Stringer("interest", interest).Msg("registered")
}

// Deregister removes fd immediately. Deregistering an unknown descriptor is fatal.
func (d *Dispatcher) Deregister(fd int) {
	if _, ok := d.table.lookup(fd); !ok {
		d.fatal(api.NewError(api.ErrCodeNotRegistered, "deregister of an unknown descriptor").
			WithContext("fd", fd))
	}
	d.table.remove(fd)
	d.mutated = true
	d.log.Debug().Int("fd", fd).Msg("deregistered")
}

// SetInterest sets the interest of fd to (interest & keep) | set.
func (d *Dispatcher) SetInterest(fd int, keep, set api.EventMask) {
	slot, ok := d.table.lookup(fd)
	if !ok {
		d.fatal(api.NewError(api.ErrCodeNotRegistered, "set interest on an unknown descriptor").
			WithContext("fd", fd))
	}
	r := &d.table.slots[slot]
	r.interest = (r.interest & keep) | set
}

// ForceEvents ORs mask into the forced bits of fd. The next wait does not
// block and the next sweep delivers them once.
func (d *Dispatcher) ForceEvents(fd int, mask api.EventMask) {
	slot, ok := d.table.lookup(fd)
	if !ok {
		d.fatal(api.NewError(api.ErrCodeNotRegistered, "force events on an unknown descriptor").
			WithContext("fd", fd))
	}
	d.table.slots[slot].forced |= mask
}

// Run waits and sweeps until no registration is left. It has no stop
// operation: it returns when callbacks have removed every registration.
func (d *Dispatcher) Run() {
	if d.running {
		d.fatal(api.NewError(api.ErrCodeReentrant, "run called while running"))
	}
	d.running = true
	defer func() { d.running = false }()

	d.log.Debug().Int("registrations", d.table.len()).Msg("run started")
	for d.table.len() > 0 {
		d.wait()
		d.sweep()
	}
	d.log.Debug().Uint64("sweeps", d.stats.Sweeps).Msg("run finished")
}

// wait submits every live registration to the backend. Forced bits anywhere
// in the table make the wait non-blocking.
func (d *Dispatcher) wait() {
	d.entries = d.entries[:0]
	d.refs = d.refs[:0]
	block := !d.table.anyForced()
	for slot := range d.table.slots {
		r := &d.table.slots[slot]
		if r.gen == 0 {
			continue
		}
		d.entries = append(d.entries, WaitEntry{FD: r.fd, Interest: r.interest})
		d.refs = append(d.refs, slotRef{slot: slot, gen: r.gen})
	}
	if cap(d.ready) < len(d.entries) {
		d.ready = make([]api.EventMask, len(d.entries))
	}
	d.ready = d.ready[:len(d.entries)]
	if !block {
		d.stats.NonBlockingWaits++
	}

	for {
		clear(d.ready)
		err := d.backend.Wait(d.entries, d.ready, block)
		if err == nil {
			return
		}
		if errors.Is(err, api.ErrInterrupted) && d.retry {
			d.stats.WaitRetries++
			continue
		}
		var aerr *api.Error
		if !errors.As(err, &aerr) {
			aerr = api.NewError(api.ErrCodeWaitFailed, "readiness wait failed").WithCause(err)
		}
		d.fatal(aerr.WithContext("backend", d.backend.Name()))
	}
}

// sweep dispatches the registrations submitted to the last wait, in slot
// order. Registrations removed before their turn are skipped; registrations
// added during the sweep were not submitted and wait for the next one.
func (d *Dispatcher) sweep() {
	d.stats.Sweeps++
	d.mutated = false
	for i, ref := range d.refs {
		if !d.table.live(ref.slot, ref.gen) {
			continue
		}
		r := &d.table.slots[ref.slot]
		forced := r.forced
		mask := api.Normalize(d.ready[i] | forced)
		if mask == api.EventNone {
			continue
		}
		r.forced = api.EventNone
		h := r.handler

		d.stats.Dispatches++
		if forced != api.EventNone {
			d.stats.ForcedDeliveries++
		}
		h.OnReady(mask)

		if d.abandon && d.mutated {
			if i+1 < len(d.refs) {
				d.stats.AbandonedSweeps++
				d.log.Debug().Int("visited", i+1).Int("submitted", len(d.refs)).Msg("table changed, sweep abandoned")
			}
			break
		}
	}
	d.publish()
}

// publish adds the counter growth since the previous sweep to the registry
// and sets the table gauges.
func (d *Dispatcher) publish() {
	if d.metrics == nil {
		return
	}
	cur, prev := d.stats, d.published
	d.metrics.Add(MetricSweeps, int64(cur.Sweeps-prev.Sweeps))
	d.metrics.Add(MetricDispatches, int64(cur.Dispatches-prev.Dispatches))
	d.metrics.Add(MetricForced, int64(cur.ForcedDeliveries-prev.ForcedDeliveries))
	d.metrics.Add(MetricAbandonedSweeps, int64(cur.AbandonedSweeps-prev.AbandonedSweeps))
	d.metrics.Add(MetricWaitRetries, int64(cur.WaitRetries-prev.WaitRetries))
	d.metrics.Set(MetricRegistrations, int64(d.table.len()))
	d.metrics.Set(MetricTableHighWater, int64(d.table.highWater()))
	d.published = cur
}

// fatal reports a condition the dispatcher cannot continue from and panics.
func (d *Dispatcher) fatal(err *api.Error) {
	d.log.WithLevel(zerolog.FatalLevel).Err(err).Msg("dispatcher aborted")
	if d.onFatal != nil {
		d.onFatal(err)
	}
	panic(err)
}
