// Package events publishes notifications about committed ledger changes.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"fintrack/internal/uuid"
)

// Event types.
const (
	OperationCreated = "operation.created"
	OperationUpdated = "operation.updated"
	OperationDeleted = "operation.deleted"
	BudgetCreated    = "budget.created"
	BudgetUpdated    = "budget.updated"
	BudgetDeleted    = "budget.deleted"
	LedgerRestated   = "ledger.restated"
	LedgerImported   = "ledger.imported"
)

// Event is a change notification. Payload is encoded as JSON.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	ResourceID string    `json:"resource_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload,omitempty"`
}

// New creates an event of the given type with a fresh id.
func New(eventType, resourceID string, payload any) Event {
	return Event{
		ID:         uuid.New(),
		Type:       eventType,
		ResourceID: resourceID,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// Body returns the JSON encoding of e.
func (e Event) Body() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers events after the change they describe is committed.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Publish implements Publisher.
func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

// Close implements Publisher.
func (r *Recorder) Close() error { return nil }

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Types returns the types of the recorded events in publish order.
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, len(r.events))
	for i, e := range r.events {
		types[i] = e.Type
	}
	return types
}
