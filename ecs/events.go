package ecs

// Event is a generic ECS event payload.
type Event struct {
	Type string
	Data any
}

// EventTypeGround marks events whose Data is a GroundEvent.
const EventTypeGround = "ground"

// GroundEventKind identifies grounding state changes.
type GroundEventKind string

const (
	GroundEventLanded      GroundEventKind = "landed"
	GroundEventAirborne    GroundEventKind = "airborne"
	GroundEventFellThrough GroundEventKind = "fell_through"
)

// GroundEvent is emitted when a character's grounding state changes.
type GroundEvent struct {
	Entity Entity
	Kind   GroundEventKind
}

// EventQueue is a simple FIFO queue, flushed at the end of each tick.
type EventQueue struct {
	items []Event
}

// Push adds an event.
func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

// Peek returns the queued events without clearing them.
func (q *EventQueue) Peek() []Event {
	if q == nil {
		return nil
	}
	return q.items
}

func (q *EventQueue) flush() {
	if q == nil {
		return
	}
	q.items = nil
}
