package transaction

import (
	"log/slog"
	"time"

	"github.com/tesoreria-cl/tesoreria/internal"
	"github.com/tesoreria-cl/tesoreria/internal/auth"
	auditDatamodel "github.com/tesoreria-cl/tesoreria/internal/core/datamodel/audit"
	txDatamodel "github.com/tesoreria-cl/tesoreria/internal/core/datamodel/transaction"
)

// Repository is the ledger storage port. Delete is a soft delete; GetByID and
// List never return soft-deleted rows. History does see soft-deleted rows, so
// a deleted row's trail stays retrievable.
type Repository interface {
	Create(row *txDatamodel.Transaction) error
	GetByID(orgID, id int64) (*txDatamodel.Transaction, error)
	Update(before, after *txDatamodel.Transaction, actorID int64) error
	SoftDelete(row *txDatamodel.Transaction, actorID int64) error
	List(orgID int64, filters ListFilters) ([]*txDatamodel.Transaction, int64, error)
	History(orgID, id int64) ([]*auditDatamodel.AuditEntry, error)
}

// CategoryValidator confirms a category belongs to the caller's organization.
// Ledger rows accept both ingreso and egreso categories.
type CategoryValidator interface {
	ValidateCategory(orgID, categoryID int64) error
}

type Service struct {
	repo       Repository
	categories CategoryValidator
	logger     *slog.Logger
}

func NewService(repo Repository, categories CategoryValidator, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		categories: categories,
		logger:     logger,
	}
}

// Create registers a manual ledger entry. Engine-created rows never pass
// through here; the lifecycle repository writes them directly.
func (s *Service) Create(p *internal.Principal, dto CreateTransactionDTO) (*Transaction, error) {
	if err := auth.Authorize(p, auth.ActionManageTransactions); err != nil {
		s.logger.Warn("create transaction denied", "user_id", p.UserID, "role", p.Role)
		return nil, err
	}

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if dto.CategoryID != nil {
		if err := s.validateCategory(p.OrganizationID, *dto.CategoryID); err != nil {
			return nil, err
		}
	}

	date, err := dto.ParseDate()
	if err != nil {
		return nil, internal.NewValidationError("date must be YYYY-MM-DD", internal.ErrCodeInvalidDate)
	}

	now := time.Now()
	row := &txDatamodel.Transaction{
		OrganizationID: p.OrganizationID,
		Type:           dto.Type,
		Amount:         dto.Amount,
		CategoryID:     dto.CategoryID,
		Description:    dto.Description,
		Date:           date,
		PayerName:      dto.PayerName,
		PayerRUT:       dto.PayerRUT,
		Beneficiary:    dto.Beneficiary,
		Source:         string(SourceManual),
		CreatedBy:      p.UserID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(row); err != nil {
		s.logger.Error("failed to create transaction", "error", err, "user_id", p.UserID)
		return nil, err
	}

	s.logger.Info("transaction created",
		"transaction_id", row.ID,
		"organization_id", p.OrganizationID,
		"type", dto.Type,
		"amount", dto.Amount)

	return FromDataModel(row), nil
}

func (s *Service) Get(p *internal.Principal, id int64) (*Transaction, error) {
	row, err := s.repo.GetByID(p.OrganizationID, id)
	if err != nil {
		return nil, internal.ErrTransactionNotFound
	}
	return FromDataModel(row), nil
}

func (s *Service) List(p *internal.Principal, filters ListFilters) (*ListResponse, error) {
	filters.Normalize()

	rows, total, err := s.repo.List(p.OrganizationID, filters)
	if err != nil {
		s.logger.Error("failed to list transactions", "error", err, "organization_id", p.OrganizationID)
		return nil, err
	}

	return &ListResponse{
		Transactions: FromDataModelSlice(rows),
		Total:        total,
		Limit:        filters.Limit,
		Offset:       filters.Offset,
	}, nil
}

// Update edits a manual row. Rows created by the lifecycle engine are
// immutable through this API.
func (s *Service) Update(p *internal.Principal, id int64, dto UpdateTransactionDTO) (*Transaction, error) {
	if err := auth.Authorize(p, auth.ActionManageTransactions); err != nil {
		return nil, err
	}

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.repo.GetByID(p.OrganizationID, id)
	if err != nil {
		return nil, internal.ErrTransactionNotFound
	}

	if !FromDataModel(row).Mutable() {
		s.logger.Warn("update denied: transaction created by payment request",
			"transaction_id", id, "user_id", p.UserID)
		return nil, internal.ErrTransactionImmutable
	}

	before := *row
	if dto.Type != nil {
		row.Type = *dto.Type
	}
	if dto.Amount != nil {
		row.Amount = *dto.Amount
	}
	if dto.CategoryID != nil {
		if err := s.validateCategory(p.OrganizationID, *dto.CategoryID); err != nil {
			return nil, err
		}
		row.CategoryID = dto.CategoryID
	}
	if dto.Description != nil {
		row.Description = *dto.Description
	}
	if dto.Date != nil {
		date, err := time.Parse(dateLayout, *dto.Date)
		if err != nil {
			return nil, internal.NewValidationError("date must be YYYY-MM-DD", internal.ErrCodeInvalidDate)
		}
		row.Date = date
	}
	if dto.PayerName != nil {
		row.PayerName = dto.PayerName
	}
	if dto.PayerRUT != nil {
		row.PayerRUT = dto.PayerRUT
	}
	if dto.Beneficiary != nil {
		row.Beneficiary = dto.Beneficiary
	}

	if err := s.repo.Update(&before, row, p.UserID); err != nil {
		s.logger.Error("failed to update transaction", "error", err, "transaction_id", id)
		return nil, err
	}

	return FromDataModel(row), nil
}

// Delete soft-deletes a manual row. The row stays in storage for the audit
// trail but disappears from listings and balances.
func (s *Service) Delete(p *internal.Principal, id int64) error {
	if err := auth.Authorize(p, auth.ActionManageTransactions); err != nil {
		return err
	}

	row, err := s.repo.GetByID(p.OrganizationID, id)
	if err != nil {
		return internal.ErrTransactionNotFound
	}

	if !FromDataModel(row).Mutable() {
		s.logger.Warn("delete denied: transaction created by payment request",
			"transaction_id", id, "user_id", p.UserID)
		return internal.ErrTransactionImmutable
	}

	if err := s.repo.SoftDelete(row, p.UserID); err != nil {
		s.logger.Error("failed to delete transaction", "error", err, "transaction_id", id)
		return err
	}

	s.logger.Info("transaction deleted", "transaction_id", id, "user_id", p.UserID)
	return nil
}

// Audit returns the row's full history, including entries for rows that were
// soft-deleted since.
func (s *Service) Audit(p *internal.Principal, id int64) (*AuditTrailResponse, error) {
	if err := auth.Authorize(p, auth.ActionManageTransactions); err != nil {
		return nil, err
	}

	entries, err := s.repo.History(p.OrganizationID, id)
	if err != nil {
		if err != internal.ErrTransactionNotFound {
			s.logger.Error("failed to load transaction history", "error", err, "transaction_id", id)
		}
		return nil, err
	}

	return AuditTrailFromDataModel(entries), nil
}

func (s *Service) validateCategory(orgID, categoryID int64) error {
	if s.categories == nil {
		return nil
	}
	return s.categories.ValidateCategory(orgID, categoryID)
}
