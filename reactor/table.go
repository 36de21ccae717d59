// File: reactor/table.go
// Author: momentics <momentics@gmail.com>
//
// Index-stable registration table. Slots never move: removal frees a slot
// and a later registration reuses it, so a sweep can keep iterating while
// callbacks add or remove registrations.

package reactor

import (
	"github.com/eapache/queue"

	"github.com/momentics/fdreactor/api"
)

type registration struct {
	fd       int
	interest api.EventMask
	forced   api.EventMask
	handler  api.Handler
	gen      uint64 // 0 marks a free slot
}

type table struct {
	slots   []registration
	index   map[int]int  // fd -> slot
	free    *queue.Queue // FIFO of free slot numbers
	nextGen uint64
}

func newTable() *table {
	return &table{
		index: make(map[int]int),
		free:  queue.New(),
	}
}

func (t *table) len() int { return len(t.index) }

// highWater is the number of slots ever allocated.
func (t *table) highWater() int { return len(t.slots) }

func (t *table) lookup(fd int) (int, bool) {
	slot, ok := t.index[fd]
	return slot, ok
}

// add stores a registration and returns its slot and generation.
// The caller has checked that fd is absent.
func (t *table) add(fd int, interest api.EventMask, h api.Handler) (int, uint64) {
	t.nextGen++
	r := registration{fd: fd, interest: interest, handler: h, gen: t.nextGen}
	var slot int
	if t.free.Length() > 0 {
		slot = t.free.Remove().(int)
		t.slots[slot] = r
	} else {
		slot = len(t.slots)
		t.slots = append(t.slots, r)
	}
	t.index[fd] = slot
	return slot, r.gen
}

// remove frees the slot of fd. The caller has checked that fd is present.
func (t *table) remove(fd int) {
	slot := t.index[fd]
	delete(t.index, fd)
	t.slots[slot] = registration{}
	t.free.Add(slot)
}

// live reports whether slot still holds the registration of generation gen.
func (t *table) live(slot int, gen uint64) bool {
	return slot < len(t.slots) && t.slots[slot].gen == gen
}

// anyForced reports whether some registration carries forced bits.
func (t *table) anyForced() bool {
	for i := range t.slots {
		if t.slots[i].gen != 0 && t.slots[i].forced != 0 {
			return true
		}
	}
	return false
}

// TableEntry is a read-only view of one registration.
type TableEntry struct {
	FD       int           `json:"fd"`
	Interest api.EventMask `json:"interest"`
	Forced   api.EventMask `json:"forced"`
}

// snapshot lists live registrations in slot order.
func (t *table) snapshot() []TableEntry {
	out := make([]TableEntry, 0, len(t.index))
	for i := range t.slots {
		r := &t.slots[i]
		if r.gen == 0 {
			continue
		}
		out = append(out, TableEntry{FD: r.fd, Interest: r.interest, Forced: r.forced})
	}
	return out
}
