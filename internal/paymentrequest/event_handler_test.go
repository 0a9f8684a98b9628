package paymentrequest_test

import (
	"context"
	"log/slog"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tesoreria-cl/tesoreria/internal/core/events"
	"github.com/tesoreria-cl/tesoreria/internal/paymentrequest"
)

var _ = Describe("EventHandler", func() {
	var (
		bus     *events.EventBus
		handler *paymentrequest.EventHandler
		ctx     context.Context
	)

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		bus = events.NewEventBus(logger)
		handler = paymentrequest.NewEventHandler(logger)
		handler.RegisterEventHandlers(bus)
		ctx = context.Background()
	})

	It("consumes every lifecycle transition", func() {
		lifecycle := []events.Event{
			events.NewRequestSubmittedEvent(1, 1, 10, 45000),
			events.NewRequestApprovedEvent(1, 1, 20, 45000),
			events.NewRequestRejectedEvent(2, 1, 20, 45000),
			events.NewRequestExecutedEvent(1, 1, 30, 45000),
		}
		for _, event := range lifecycle {
			Expect(bus.PublishSync(ctx, event)).To(Succeed())
		}
	})

	It("consumes reminder events", func() {
		event := events.NewReminderEmittedEvent(1, 1, 2)
		Expect(bus.PublishSync(ctx, event)).To(Succeed())
	})

	It("rejects an event of the wrong concrete type", func() {
		err := handler.HandleTransition(ctx, events.NewReminderEmittedEvent(1, 1, 2))
		Expect(err).To(HaveOccurred())

		err = handler.HandleReminderEmitted(ctx, events.NewRequestApprovedEvent(1, 1, 20, 45000))
		Expect(err).To(HaveOccurred())
	})

	It("surfaces handler failures through synchronous publish", func() {
		mismatched := &events.RequestLifecycleEvent{
			BaseEvent: events.BaseEvent{Type: events.EventTypeReminderEmitted},
		}
		Expect(bus.PublishSync(ctx, mismatched)).NotTo(Succeed())
	})
})
