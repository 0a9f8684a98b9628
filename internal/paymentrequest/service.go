package paymentrequest

import (
	"context"
	"log/slog"

	"github.com/tesoreria-cl/tesoreria/internal"
	"github.com/tesoreria-cl/tesoreria/internal/auth"
	"github.com/tesoreria-cl/tesoreria/internal/core/events"
	prDatamodel "github.com/tesoreria-cl/tesoreria/internal/core/datamodel/paymentrequest"
)

// Repository is the storage port for the lifecycle engine. The transition
// methods (Submit/Approve/Reject/Execute) are transactional: the status
// compare-and-swap, the audit entry, the notification fan-out and, for
// Execute, the ledger row all commit or roll back together. A failed
// compare-and-swap surfaces as internal.ErrInvalidTransition.
type Repository interface {
	Create(row *prDatamodel.PaymentRequest) error
	GetByID(orgID, id int64) (*prDatamodel.PaymentRequest, error)
	UpdateDraft(row *prDatamodel.PaymentRequest, actorID int64) error
	List(orgID int64, filters ListFilters) ([]*prDatamodel.PaymentRequest, int64, error)
	Submit(row *prDatamodel.PaymentRequest, actorID int64) error
	Approve(row *prDatamodel.PaymentRequest, actorID int64) error
	Reject(row *prDatamodel.PaymentRequest, actorID int64, comment string) error
	Execute(row *prDatamodel.PaymentRequest, actorID int64, proofReference string, comment *string) (transactionID int64, err error)
}

// CategoryValidator confirms a category belongs to the caller's organization
// and classifies expenses.
type CategoryValidator interface {
	ValidateExpenseCategory(orgID, categoryID int64) error
}

type Service struct {
	repo       Repository
	categories CategoryValidator
	bus        *events.EventBus
	logger     *slog.Logger
}

func NewService(repo Repository, categories CategoryValidator, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		categories: categories,
		bus:        bus,
		logger:     logger,
	}
}

// Create registers a new draft. Drafts stay invisible to approvers until
// submitted.
func (s *Service) Create(p *internal.Principal, dto CreateRequestDTO) (*PaymentRequest, error) {
	if err := auth.Authorize(p, auth.ActionCreateRequest); err != nil {
		s.logger.Warn("create request denied", "user_id", p.UserID, "role", p.Role)
		return nil, err
	}

	if err := dto.Validate(); err != nil {
		s.logger.Warn("create request validation failed", "error", err, "user_id", p.UserID)
		return nil, err
	}

	if dto.CategoryID != nil {
		if err := s.categories.ValidateExpenseCategory(p.OrganizationID, *dto.CategoryID); err != nil {
			return nil, err
		}
	}

	request := NewPaymentRequest(p.OrganizationID, p.UserID, dto)
	row := ToDataModel(request)
	if err := s.repo.Create(row); err != nil {
		s.logger.Error("failed to create payment request", "error", err, "user_id", p.UserID)
		return nil, err
	}

	s.logger.Info("payment request created",
		"request_id", row.ID,
		"organization_id", p.OrganizationID,
		"user_id", p.UserID,
		"amount", dto.Amount)

	return FromDataModel(row), nil
}

// Get returns a request in the caller's organization. Drafts are visible
// only to their creator; everyone else sees them as absent.
func (s *Service) Get(p *internal.Principal, id int64) (*PaymentRequest, error) {
	row, err := s.repo.GetByID(p.OrganizationID, id)
	if err != nil {
		return nil, internal.ErrRequestNotFound
	}

	request := FromDataModel(row)
	if request.Status == StatusBorrador && request.CreatedBy != p.UserID {
		return nil, internal.ErrRequestNotFound
	}

	if err := request.ValidateState(); err != nil {
		s.logger.Error("payment request state inconsistency", "request_id", id, "error", err)
	}

	return request, nil
}

func (s *Service) List(p *internal.Principal, filters ListFilters) (*ListResponse, error) {
	filters.Normalize()
	filters.CallerID = p.UserID

	rows, total, err := s.repo.List(p.OrganizationID, filters)
	if err != nil {
		s.logger.Error("failed to list payment requests", "error", err, "organization_id", p.OrganizationID)
		return nil, err
	}

	return &ListResponse{
		Requests: FromDataModelSlice(rows),
		Total:    total,
		Limit:    filters.Limit,
		Offset:   filters.Offset,
	}, nil
}

// Update edits a draft in place. Amount, description and beneficiary are
// frozen once the request is submitted.
func (s *Service) Update(p *internal.Principal, id int64, dto UpdateRequestDTO) (*PaymentRequest, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.repo.GetByID(p.OrganizationID, id)
	if err != nil {
		return nil, internal.ErrRequestNotFound
	}

	request := FromDataModel(row)
	if request.CreatedBy != p.UserID {
		return nil, internal.ErrNotCreator
	}
	if !request.Editable() {
		return nil, internal.ErrCannotModify
	}

	if dto.Amount != nil {
		row.Amount = *dto.Amount
	}
	if dto.Description != nil {
		row.Description = *dto.Description
	}
	if dto.Beneficiary != nil {
		row.Beneficiary = *dto.Beneficiary
	}
	if dto.CategoryID != nil {
		if err := s.categories.ValidateExpenseCategory(p.OrganizationID, *dto.CategoryID); err != nil {
			return nil, err
		}
		row.CategoryID = dto.CategoryID
	}

	if err := s.repo.UpdateDraft(row, p.UserID); err != nil {
		s.logger.Error("failed to update payment request", "error", err, "request_id", id)
		return nil, err
	}

	return FromDataModel(row), nil
}

// Submit moves borrador → pendiente and notifies every presidente in the
// organization.
func (s *Service) Submit(ctx context.Context, p *internal.Principal, id int64) (*PaymentRequest, error) {
	if err := auth.Authorize(p, auth.ActionSubmitRequest); err != nil {
		return nil, err
	}

	row, err := s.repo.GetByID(p.OrganizationID, id)
	if err != nil {
		return nil, internal.ErrRequestNotFound
	}

	if row.CreatedBy != p.UserID {
		s.logger.Warn("submit denied: caller is not the creator",
			"request_id", id, "creator_id", row.CreatedBy, "caller_id", p.UserID)
		return nil, internal.ErrNotCreator
	}

	request := FromDataModel(row)
	if !request.CanSubmit() {
		s.logger.Warn("cannot submit request in current status",
			"request_id", id, "status", request.Status)
		return nil, internal.ErrInvalidTransition
	}

	if err := s.repo.Submit(row, p.UserID); err != nil {
		s.logger.Error("failed to submit payment request", "error", err, "request_id", id)
		return nil, err
	}

	s.bus.Publish(ctx, events.NewRequestSubmittedEvent(row.ID, row.OrganizationID, p.UserID, row.Amount))

	s.logger.Info("payment request submitted", "request_id", id, "user_id", p.UserID)

	return s.reload(p.OrganizationID, id)
}

// Approve moves pendiente → aprobado. Concurrent approvals race on the
// status compare-and-swap; exactly one caller wins, the other gets a
// conflict.
func (s *Service) Approve(ctx context.Context, p *internal.Principal, id int64) (*PaymentRequest, error) {
	if err := auth.Authorize(p, auth.ActionApproveRequest); err != nil {
		s.logger.Warn("approve denied: role not allowed", "request_id", id, "user_id", p.UserID, "role", p.Role)
		return nil, err
	}

	row, err := s.repo.GetByID(p.OrganizationID, id)
	if err != nil {
		return nil, internal.ErrRequestNotFound
	}

	request := FromDataModel(row)
	if !request.CanApprove() {
		s.logger.Warn("cannot approve request in current status",
			"request_id", id, "status", request.Status)
		return nil, internal.ErrInvalidTransition
	}

	if err := s.repo.Approve(row, p.UserID); err != nil {
		s.logger.Error("failed to approve payment request", "error", err, "request_id", id)
		return nil, err
	}

	s.bus.Publish(ctx, events.NewRequestApprovedEvent(row.ID, row.OrganizationID, p.UserID, row.Amount))

	s.logger.Info("payment request approved",
		"request_id", id, "approver_id", p.UserID, "amount", row.Amount)

	return s.reload(p.OrganizationID, id)
}

// Reject moves pendiente → rechazado. The comment is mandatory and is
// embedded in the creator's notification.
func (s *Service) Reject(ctx context.Context, p *internal.Principal, id int64, dto RejectRequestDTO) (*PaymentRequest, error) {
	if err := auth.Authorize(p, auth.ActionRejectRequest); err != nil {
		s.logger.Warn("reject denied: role not allowed", "request_id", id, "user_id", p.UserID, "role", p.Role)
		return nil, err
	}

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.repo.GetByID(p.OrganizationID, id)
	if err != nil {
		return nil, internal.ErrRequestNotFound
	}

	request := FromDataModel(row)
	if !request.CanReject() {
		s.logger.Warn("cannot reject request in current status",
			"request_id", id, "status", request.Status)
		return nil, internal.ErrInvalidTransition
	}

	if err := s.repo.Reject(row, p.UserID, dto.Comment); err != nil {
		s.logger.Error("failed to reject payment request", "error", err, "request_id", id)
		return nil, err
	}

	s.bus.Publish(ctx, events.NewRequestRejectedEvent(row.ID, row.OrganizationID, p.UserID, row.Amount))

	s.logger.Info("payment request rejected",
		"request_id", id, "rejecter_id", p.UserID, "comment", dto.Comment)

	return s.reload(p.OrganizationID, id)
}

// Execute moves aprobado → ejecutado, creating the egreso ledger entry in
// the same transaction and linking it back to the request.
func (s *Service) Execute(ctx context.Context, p *internal.Principal, id int64, dto ExecuteRequestDTO) (*PaymentRequest, error) {
	if err := auth.Authorize(p, auth.ActionExecuteRequest); err != nil {
		s.logger.Warn("execute denied: role not allowed", "request_id", id, "user_id", p.UserID, "role", p.Role)
		return nil, err
	}

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.repo.GetByID(p.OrganizationID, id)
	if err != nil {
		return nil, internal.ErrRequestNotFound
	}

	request := FromDataModel(row)
	if !request.CanExecute() {
		s.logger.Warn("cannot execute request in current status",
			"request_id", id, "status", request.Status)
		return nil, internal.ErrInvalidTransition
	}

	transactionID, err := s.repo.Execute(row, p.UserID, dto.ProofReference, dto.Comment)
	if err != nil {
		s.logger.Error("failed to execute payment request", "error", err, "request_id", id)
		return nil, err
	}

	s.bus.Publish(ctx, events.NewRequestExecutedEvent(row.ID, row.OrganizationID, p.UserID, row.Amount))

	s.logger.Info("payment request executed",
		"request_id", id,
		"executor_id", p.UserID,
		"transaction_id", transactionID,
		"amount", row.Amount)

	return s.reload(p.OrganizationID, id)
}

func (s *Service) reload(orgID, id int64) (*PaymentRequest, error) {
	row, err := s.repo.GetByID(orgID, id)
	if err != nil {
		return nil, internal.ErrRequestNotFound
	}
	return FromDataModel(row), nil
}
