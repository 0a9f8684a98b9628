package dashboard

import (
	"log/slog"

	"github.com/tesoreria-cl/tesoreria/internal"
)

// Repository aggregates over the ledger and the request queues. Soft-deleted
// ledger rows are excluded from every figure.
type Repository interface {
	Totals(orgID int64) (ingresos, egresos int64, err error)
	CountRequestsByStatus(orgID int64, status string) (int64, error)
	MonthlyTotals(orgID int64, months int) ([]MonthlyTotal, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) Summary(p *internal.Principal) (*Summary, error) {
	ingresos, egresos, err := s.repo.Totals(p.OrganizationID)
	if err != nil {
		s.logger.Error("failed to compute ledger totals", "error", err, "organization_id", p.OrganizationID)
		return nil, err
	}

	pendingApproval, err := s.repo.CountRequestsByStatus(p.OrganizationID, "pendiente")
	if err != nil {
		return nil, err
	}
	pendingExecution, err := s.repo.CountRequestsByStatus(p.OrganizationID, "aprobado")
	if err != nil {
		return nil, err
	}

	return &Summary{
		Balance:          ingresos - egresos,
		TotalIngresos:    ingresos,
		TotalEgresos:     egresos,
		PendingApproval:  pendingApproval,
		PendingExecution: pendingExecution,
	}, nil
}

func (s *Service) Monthly(p *internal.Principal, months int) (*MonthlyResponse, error) {
	if months <= 0 || months > 24 {
		months = 12
	}

	totals, err := s.repo.MonthlyTotals(p.OrganizationID, months)
	if err != nil {
		s.logger.Error("failed to compute monthly totals", "error", err, "organization_id", p.OrganizationID)
		return nil, err
	}

	return &MonthlyResponse{Months: totals}, nil
}
