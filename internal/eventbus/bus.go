// Package eventbus fans console events out to per-server subscribers. The
// supervisor publishes here; each attached session drains its own channel.
package eventbus

import (
	"context"
	"sync"

	"pkt.systems/pslog"

	"github.com/serverwave/serverwave/schema"
)

// EventType identifies the event payload.
type EventType string

const (
	// EventLine carries one output line for a server.
	EventLine EventType = "line"
	// EventStatus carries a server lifecycle transition.
	EventStatus EventType = "status"
)

// Event represents a console-facing event emitted by the supervisor.
type Event struct {
	Type   EventType
	Line   schema.LineEvent
	Status schema.StatusEvent
}

// Bus fanouts events to per-server subscribers.
type Bus struct {
	mu    sync.Mutex
	subs  map[schema.ServerID]map[chan Event]struct{}
	log   pslog.Logger
	depth int
}

// New constructs a Bus.
func New(logger pslog.Logger) *Bus {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Bus{
		subs:  make(map[schema.ServerID]map[chan Event]struct{}),
		log:   logger,
		depth: 256,
	}
}

// Subscribe registers a subscriber for the server and returns a channel + cancel.
func (b *Bus) Subscribe(serverID schema.ServerID) (<-chan Event, func()) {
	if b == nil {
		return nil, func() {}
	}
	ch := make(chan Event, b.depth)
	b.mu.Lock()
	serverSubs := b.subs[serverID]
	if serverSubs == nil {
		serverSubs = make(map[chan Event]struct{})
		b.subs[serverID] = serverSubs
	}
	serverSubs[ch] = struct{}{}
	count := len(serverSubs)
	b.mu.Unlock()
	if b.log != nil {
		b.log.With("server", serverID).Debug("eventbus subscribe", "subs", count)
	}
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			// Removal and close happen under the same lock publish sends
			// under, so a send can never race the close.
			b.mu.Lock()
			if subs := b.subs[serverID]; subs != nil {
				delete(subs, ch)
				if len(subs) == 0 {
					delete(b.subs, serverID)
				}
			}
			close(ch)
			b.mu.Unlock()
			if b.log != nil {
				b.log.With("server", serverID).Debug("eventbus unsubscribe")
			}
		})
	}
}

// PublishLine publishes an output line event.
func (b *Bus) PublishLine(event schema.LineEvent) {
	b.publish(event.ServerID, Event{Type: EventLine, Line: event})
}

// PublishStatus publishes a lifecycle event.
func (b *Bus) PublishStatus(event schema.StatusEvent) {
	b.publish(event.ServerID, Event{Type: EventStatus, Status: event})
}

func (b *Bus) publish(serverID schema.ServerID, event Event) {
	if b == nil {
		return
	}
	// Sends are non-blocking against buffered channels, so they stay under
	// the lock. Unsubscribe closes its channel under the same lock.
	b.mu.Lock()
	dropped := 0
	for sub := range b.subs[serverID] {
		select {
		case sub <- event:
		default:
			dropped++
		}
	}
	b.mu.Unlock()
	if dropped > 0 && b.log != nil {
		b.log.With("server", serverID).Trace("eventbus dropped", "count", dropped)
	}
}
