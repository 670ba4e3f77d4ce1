// Package progress carries human-readable phase labels from long-running
// pipeline stages to whoever is displaying a status line. Subscribers read a
// bounded channel; a slow or absent subscriber never blocks the pipeline.
package progress

import (
	"sync"
	"time"
)

// Event is one phase transition.
type Event struct {
	Phase string    `json:"phase"`
	At    time.Time `json:"at"`
}

// Sink receives phase labels. Pipelines only ever publish.
type Sink interface {
	Publish(phase string)
}

// Bus is a bounded, drop-oldest event buffer with a single channel of
// subscribers' view. The zero value is not usable; use NewBus.
type Bus struct {
	mu     sync.Mutex
	ch     chan Event
	closed bool
}

// NewBus creates a bus buffering up to size events.
func NewBus(size int) *Bus {
	if size <= 0 {
		size = 32
	}
	return &Bus{ch: make(chan Event, size)}
}

// Publish records a phase transition. When the buffer is full the oldest
// event is dropped so progress display lags rather than the pipeline.
func (b *Bus) Publish(phase string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}

	ev := Event{Phase: phase, At: time.Now().UTC()}
	for {
		select {
		case b.ch <- ev:
			return
		default:
			select {
			case <-b.ch:
			default:
			}
		}
	}
}

// Events returns the subscriber channel.
func (b *Bus) Events() <-chan Event {
	return b.ch
}

// Close ends the stream; further publishes are discarded.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		b.closed = true
		close(b.ch)
	}
}

// Discard is a Sink for callers that do not display progress.
var Discard Sink = discard{}

type discard struct{}

func (discard) Publish(string) {}
