package paymentrequest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tesoreria-cl/tesoreria/internal/core/events"
	"github.com/tesoreria-cl/tesoreria/internal/obs"
)

// EventHandler consumes lifecycle events after their transaction committed.
// It owns the transition metrics and the structured lifecycle log, so the
// service publishes once and every consumer hangs off the bus.
type EventHandler struct {
	logger *slog.Logger
}

func NewEventHandler(logger *slog.Logger) *EventHandler {
	return &EventHandler{logger: logger}
}

func (h *EventHandler) HandleTransition(ctx context.Context, event events.Event) error {
	lifecycle, ok := event.(*events.RequestLifecycleEvent)
	if !ok {
		h.logger.Error("invalid event type for transition handler", "event_type", event.EventType())
		return fmt.Errorf("expected RequestLifecycleEvent, got %T", event)
	}

	obs.ObserveTransition(transitionAction(lifecycle.EventType()))

	h.logger.Info("payment request transition",
		"event_type", lifecycle.EventType(),
		"request_id", lifecycle.RequestID,
		"organization_id", lifecycle.OrganizationID,
		"actor_id", lifecycle.ActorID,
		"amount", lifecycle.Amount,
		"event_id", lifecycle.EventID())

	return nil
}

func (h *EventHandler) HandleReminderEmitted(ctx context.Context, event events.Event) error {
	reminder, ok := event.(*events.ReminderEmittedEvent)
	if !ok {
		h.logger.Error("invalid event type for reminder handler", "event_type", event.EventType())
		return fmt.Errorf("expected ReminderEmittedEvent, got %T", event)
	}

	h.logger.Info("payment request reminder emitted",
		"request_id", reminder.RequestID,
		"organization_id", reminder.OrganizationID,
		"recipients", reminder.Recipients,
		"event_id", reminder.EventID())

	return nil
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	transitions := []string{
		events.EventTypeRequestSubmitted,
		events.EventTypeRequestApproved,
		events.EventTypeRequestRejected,
		events.EventTypeRequestExecuted,
	}
	for _, eventType := range transitions {
		eventBus.Subscribe(eventType, h.HandleTransition)
	}
	eventBus.Subscribe(events.EventTypeReminderEmitted, h.HandleReminderEmitted)

	h.logger.Info("payment request event handlers registered",
		"handlers", append(transitions, events.EventTypeReminderEmitted))
}

// transitionAction maps "payment_request.submitted" to the metric label
// "submit" and so on.
func transitionAction(eventType string) string {
	switch eventType {
	case events.EventTypeRequestSubmitted:
		return "submit"
	case events.EventTypeRequestApproved:
		return "approve"
	case events.EventTypeRequestRejected:
		return "reject"
	case events.EventTypeRequestExecuted:
		return "execute"
	}
	return strings.TrimPrefix(eventType, "payment_request.")
}
