package network

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType classifies emergence events.
type EventType string

const (
	// EventConsensusConcept records a concept admitted by quorum.
	EventConsensusConcept EventType = "consensus_concept"

	// EventDistributedAttractor records a pattern spread across nodes.
	EventDistributedAttractor EventType = "distributed_attractor"
)

// EmergenceEvent is an append-only observability record. Events are never
// mutated after being recorded.
type EmergenceEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Payload   map[string]any `json:"payload"`
	Timestamp time.Time      `json:"timestamp"`
}

// eventLog is the append-only emergence event sink shared by the network
// components.
type eventLog struct {
	mu     sync.Mutex
	events []EmergenceEvent
}

func newEventLog() *eventLog {
	return &eventLog{}
}

func (l *eventLog) append(typ EventType, at time.Time, payload map[string]any) EmergenceEvent {
	ev := EmergenceEvent{
		ID:        uuid.New().String(),
		Type:      typ,
		Payload:   payload,
		Timestamp: at,
	}
	l.mu.Lock()
	l.events = append(l.events, ev)
	l.mu.Unlock()
	return ev
}

// since returns copies of all events at or after t.
func (l *eventLog) since(t time.Time) []EmergenceEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]EmergenceEvent, 0, len(l.events))
	for _, ev := range l.events {
		if !ev.Timestamp.Before(t) {
			out = append(out, ev)
		}
	}
	return out
}
