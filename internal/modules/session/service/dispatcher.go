package service

import (
	"sort"
	"sync"

	"trackboard/internal/modules/session/domain"
)

type Listener func(domain.Event)

// Dispatcher delivers events in emission order. An event emitted from inside
// a listener is queued and delivered after the current one finishes. A
// listener panic propagates to the emitter; events still queued are delivered
// by the next Emit.
type Dispatcher struct {
	mu          sync.Mutex
	listeners   map[int]Listener
	nextID      int
	queue       []domain.Event
	dispatching bool
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{listeners: map[int]Listener{}}
}

func (d *Dispatcher) Subscribe(fn Listener) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.nextID
	d.nextID++
	d.listeners[id] = fn
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.listeners, id)
	}
}

func (d *Dispatcher) Emit(events ...domain.Event) {
	d.mu.Lock()
	d.queue = append(d.queue, events...)
	if d.dispatching {
		d.mu.Unlock()
		return
	}
	d.dispatching = true
	defer func() {
		// A panicking listener must not leave the dispatcher stuck queueing.
		if r := recover(); r != nil {
			d.mu.Lock()
			d.dispatching = false
			d.mu.Unlock()
			panic(r)
		}
	}()
	for len(d.queue) > 0 {
		ev := d.queue[0]
		d.queue = d.queue[1:]
		listeners := d.snapshot()
		d.mu.Unlock()
		for _, fn := range listeners {
			fn(ev)
		}
		d.mu.Lock()
	}
	d.dispatching = false
	d.mu.Unlock()
}

func (d *Dispatcher) snapshot() []Listener {
	ids := make([]int, 0, len(d.listeners))
	for id := range d.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]Listener, 0, len(ids))
	for _, id := range ids {
		out = append(out, d.listeners[id])
	}
	return out
}
