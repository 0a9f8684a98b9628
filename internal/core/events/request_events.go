package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeRequestSubmitted = "payment_request.submitted"
	EventTypeRequestApproved  = "payment_request.approved"
	EventTypeRequestRejected  = "payment_request.rejected"
	EventTypeRequestExecuted  = "payment_request.executed"
	EventTypeReminderEmitted  = "payment_request.reminder_emitted"
)

// RequestLifecycleEvent is published after a payment request transition
// commits. One event type per transition keeps handler wiring simple.
type RequestLifecycleEvent struct {
	BaseEvent
	RequestID      int64 `json:"request_id"`
	OrganizationID int64 `json:"organization_id"`
	ActorID        int64 `json:"actor_id"`
	Amount         int64 `json:"amount"`
}

func newRequestLifecycleEvent(eventType string, requestID, orgID, actorID, amount int64) *RequestLifecycleEvent {
	return &RequestLifecycleEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"request_id":      requestID,
				"organization_id": orgID,
				"actor_id":        actorID,
				"amount":          amount,
			},
		},
		RequestID:      requestID,
		OrganizationID: orgID,
		ActorID:        actorID,
		Amount:         amount,
	}
}

func NewRequestSubmittedEvent(requestID, orgID, actorID, amount int64) *RequestLifecycleEvent {
	return newRequestLifecycleEvent(EventTypeRequestSubmitted, requestID, orgID, actorID, amount)
}

func NewRequestApprovedEvent(requestID, orgID, actorID, amount int64) *RequestLifecycleEvent {
	return newRequestLifecycleEvent(EventTypeRequestApproved, requestID, orgID, actorID, amount)
}

func NewRequestRejectedEvent(requestID, orgID, actorID, amount int64) *RequestLifecycleEvent {
	return newRequestLifecycleEvent(EventTypeRequestRejected, requestID, orgID, actorID, amount)
}

func NewRequestExecutedEvent(requestID, orgID, actorID, amount int64) *RequestLifecycleEvent {
	return newRequestLifecycleEvent(EventTypeRequestExecuted, requestID, orgID, actorID, amount)
}

type ReminderEmittedEvent struct {
	BaseEvent
	RequestID      int64 `json:"request_id"`
	OrganizationID int64 `json:"organization_id"`
	Recipients     int   `json:"recipients"`
}

func NewReminderEmittedEvent(requestID, orgID int64, recipients int) *ReminderEmittedEvent {
	return &ReminderEmittedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeReminderEmitted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"request_id":      requestID,
				"organization_id": orgID,
				"recipients":      recipients,
			},
		},
		RequestID:      requestID,
		OrganizationID: orgID,
		Recipients:     recipients,
	}
}
