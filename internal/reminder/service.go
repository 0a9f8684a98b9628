package reminder

import (
	"context"
	"log/slog"
	"time"

	prDatamodel "github.com/tesoreria-cl/tesoreria/internal/core/datamodel/paymentrequest"
	"github.com/tesoreria-cl/tesoreria/internal/core/events"
	"github.com/tesoreria-cl/tesoreria/internal/obs"
)

// Repository is the sweep's storage port. CreateReminderIfPending does the
// whole idempotency dance in one transaction: re-check the request is still
// pendiente, skip when an unread recordatorio already exists, otherwise
// fan out to the organization's active presidentes.
type Repository interface {
	AgedPending(olderThan time.Time) ([]*prDatamodel.PaymentRequest, error)
	CreateReminderIfPending(row *prDatamodel.PaymentRequest) (created bool, recipients int, err error)
}

type SweepResult struct {
	Scanned          int `json:"scanned"`
	RemindersCreated int `json:"reminders_created"`
	Failures         int `json:"failures"`
}

// Service nudges approvers about requests sitting in pendiente past the
// aging threshold. Sweeps are safe to run concurrently and to re-run: a
// request with an unread reminder is never reminded again.
type Service struct {
	repo      Repository
	bus       *events.EventBus
	threshold time.Duration
	logger    *slog.Logger
}

func NewService(repo Repository, bus *events.EventBus, threshold time.Duration, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		bus:       bus,
		threshold: threshold,
		logger:    logger,
	}
}

// Sweep processes every aged pendiente request across all organizations.
// A failure on one request is logged and skipped so the rest of the batch
// still runs.
func (s *Service) Sweep(ctx context.Context) (*SweepResult, error) {
	cutoff := time.Now().Add(-s.threshold)

	rows, err := s.repo.AgedPending(cutoff)
	if err != nil {
		s.logger.Error("reminder sweep failed to list aged requests", "error", err)
		return nil, err
	}

	result := &SweepResult{Scanned: len(rows)}
	for _, row := range rows {
		created, recipients, err := s.repo.CreateReminderIfPending(row)
		if err != nil {
			s.logger.Error("reminder sweep failed for request",
				"error", err, "request_id", row.ID, "organization_id", row.OrganizationID)
			obs.ObserveSweepFailure()
			result.Failures++
			continue
		}
		if !created {
			continue
		}

		result.RemindersCreated++
		s.bus.Publish(ctx, events.NewReminderEmittedEvent(row.ID, row.OrganizationID, recipients))
		s.logger.Info("reminder emitted",
			"request_id", row.ID, "organization_id", row.OrganizationID, "recipients", recipients)
	}

	obs.ObserveReminders(result.RemindersCreated)
	s.logger.Info("reminder sweep finished",
		"scanned", result.Scanned,
		"reminders_created", result.RemindersCreated,
		"failures", result.Failures)

	return result, nil
}

// Run sweeps on the configured interval until the context is cancelled.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("reminder scheduler started", "interval", interval, "threshold", s.threshold)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("reminder scheduler stopped")
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.logger.Error("scheduled sweep failed", "error", err)
			}
		}
	}
}
