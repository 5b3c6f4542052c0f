package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType identifies a payout lifecycle transition.
type EventType string

const (
	EventPayoutCreated       EventType = "payout.created"
	EventPayoutApproved      EventType = "payout.approved"
	EventPayoutRejected      EventType = "payout.rejected"
	EventPayoutPaid          EventType = "payout.paid"
	EventPayoutPaymentFailed EventType = "payout.payment_failed"
	EventDeductionReviewed   EventType = "deduction.reviewed"
	EventIncidentResolved    EventType = "incident.resolved"
)

// Event is the message fanned out to back-office subscribers when a
// payout or deduction changes state.
type Event struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	DriverID  string          `json:"driverId"`
	ActorID   string          `json:"actorId,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// Validate checks the fields a consumer relies on.
func (e Event) Validate() error {
	if e.Type == "" {
		return fmt.Errorf("event type is required")
	}
	if e.DriverID == "" {
		return fmt.Errorf("event driver ID is required")
	}
	return nil
}

// Publisher abstracts the event transport so services can be tested
// without Redis.
type Publisher interface {
	Publish(ctx context.Context, driverID string, event Event) error
	Subscribe(ctx context.Context, driverID string, subscriberID string, filters ...EventType) (<-chan Event, error)
	Unsubscribe(ctx context.Context, driverID string, subscriberID string) error
	Shutdown(ctx context.Context) error
}

// NewEvent builds an event with the standard metadata filled in.
func NewEvent(eventType EventType, driverID, actorID string, data any) (Event, error) {
	var payload json.RawMessage
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return Event{}, fmt.Errorf("marshal event payload: %w", err)
		}
		payload = raw
	}

	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		DriverID:  driverID,
		ActorID:   actorID,
		Timestamp: time.Now(),
		Payload:   payload,
	}, nil
}
