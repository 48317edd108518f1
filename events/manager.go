package events

import (
	"fmt"
	"sync"

	"github.com/yeremiapane/restaurant-pos/utils"
)

// Handler receives a published event. A returned error is logged by the bus.
type Handler func(Event) error

// Handle identifies one registration and is only meaningful to Unsubscribe.
type Handle uint64

// Publisher is the producer side of the bus.
type Publisher interface {
	Publish(topic string, ev Event)
}

type subscription struct {
	handle  Handle
	handler Handler
}

// EventManager is a synchronous topic bus. Handlers for a topic run in
// subscription order on the publisher's goroutine.
type EventManager struct {
	mu         sync.RWMutex
	topics     map[string][]subscription
	handleOf   map[Handle]string
	nextHandle Handle
}

func NewEventManager() *EventManager {
	return &EventManager{
		topics:   make(map[string][]subscription),
		handleOf: make(map[Handle]string),
	}
}

func (em *EventManager) Subscribe(topic string, handler Handler) Handle {
	em.mu.Lock()
	defer em.mu.Unlock()

	em.nextHandle++
	h := em.nextHandle
	em.topics[topic] = append(em.topics[topic], subscription{handle: h, handler: handler})
	em.handleOf[h] = topic
	return h
}

// Unsubscribe removes exactly one registration. Unknown handles return false.
func (em *EventManager) Unsubscribe(h Handle) bool {
	em.mu.Lock()
	defer em.mu.Unlock()

	topic, ok := em.handleOf[h]
	if !ok {
		return false
	}
	delete(em.handleOf, h)

	subs := em.topics[topic]
	for i, s := range subs {
		if s.handle == h {
			em.topics[topic] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(em.topics[topic]) == 0 {
		delete(em.topics, topic)
	}
	return true
}

// Publish delivers ev to every handler subscribed to topic at the time of the
// call. Errors and panics in a handler are logged and do not stop the others.
func (em *EventManager) Publish(topic string, ev Event) {
	em.mu.RLock()
	subs := em.topics[topic]
	snapshot := make([]subscription, len(subs))
	copy(snapshot, subs)
	em.mu.RUnlock()

	for _, s := range snapshot {
		if err := invoke(s.handler, ev); err != nil {
			utils.ErrorLogger.WithField("topic", topic).
				WithField("handle", s.handle).
				Errorf("Event handler failed: %v", err)
		}
	}
}

// PublishEvent publishes on the event's own topic.
func (em *EventManager) PublishEvent(ev Event) {
	em.Publish(ev.Topic(), ev)
}

func (em *EventManager) SubscriberCount(topic string) int {
	em.mu.RLock()
	defer em.mu.RUnlock()
	return len(em.topics[topic])
}

// Clear drops every subscription and restarts handle numbering. Tests only.
func (em *EventManager) Clear() {
	em.mu.Lock()
	defer em.mu.Unlock()
	em.topics = make(map[string][]subscription)
	em.handleOf = make(map[Handle]string)
	em.nextHandle = 0
}

func invoke(h Handler, ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return h(ev)
}
