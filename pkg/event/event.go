// Package event is an in-process dispatcher for advert lifecycle events.
package event

import (
	"sync"

	"github.com/shashiranjanraj/propelyu/pkg/logger"
)

const (
	AdvertCreated = "advert.created"
	AdvertUpdated = "advert.updated"
	AdvertDeleted = "advert.deleted"
)

// Handler receives an event payload.
type Handler func(payload interface{})

// Bus holds listeners by event name.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

func NewBus() *Bus {
	return &Bus{handlers: map[string][]Handler{}}
}

// Listen registers a handler for the given event name.
func (b *Bus) Listen(event string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[event] = append(b.handlers[event], handler)
}

func (b *Bus) listeners(event string) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	hs := make([]Handler, len(b.handlers[event]))
	copy(hs, b.handlers[event])
	return hs
}

// Fire dispatches synchronously. A panicking listener is logged and does not
// stop the others.
func (b *Bus) Fire(event string, payload interface{}) {
	for _, h := range b.listeners(event) {
		safeCall(event, h, payload)
	}
}

func safeCall(event string, h Handler, payload interface{}) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("event: listener panicked", "event", event, "panic", rec)
		}
	}()
	h(payload)
}
