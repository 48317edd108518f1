package events

import "sync"

type pendingEvent struct {
	topic string
	event Event
}

// Deferred queues events and hands them to the target on Flush. A component
// holding a lock publishes here, then flushes once the lock is released so
// subscribers can call back into it.
type Deferred struct {
	mu         sync.Mutex
	delivering sync.Mutex
	target     Publisher
	pending    []pendingEvent
}

func NewDeferred(target Publisher) *Deferred {
	return &Deferred{target: target}
}

func (d *Deferred) Publish(topic string, ev Event) {
	d.mu.Lock()
	d.pending = append(d.pending, pendingEvent{topic: topic, event: ev})
	d.mu.Unlock()
}

// Flush delivers queued events in the order they were published. Concurrent
// flushes take turns; one batch is never interleaved with another.
func (d *Deferred) Flush() {
	d.delivering.Lock()
	defer d.delivering.Unlock()
	for {
		d.mu.Lock()
		batch := d.pending
		d.pending = nil
		d.mu.Unlock()

		if len(batch) == 0 {
			return
		}
		for _, p := range batch {
			d.target.Publish(p.topic, p.event)
		}
	}
}

func (d *Deferred) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}
