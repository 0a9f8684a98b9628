package category

import (
	"log/slog"

	"github.com/tesoreria-cl/tesoreria/internal"
	"github.com/tesoreria-cl/tesoreria/internal/auth"
	categoryDatamodel "github.com/tesoreria-cl/tesoreria/internal/core/datamodel/category"
)

// Repository is the category storage port. InUse reports whether any payment
// request or ledger row references the category, including soft-deleted
// ledger rows, since those remain auditable.
type Repository interface {
	Create(row *categoryDatamodel.Category) error
	GetByID(orgID, id int64) (*categoryDatamodel.Category, error)
	List(orgID int64) ([]*categoryDatamodel.Category, error)
	Update(row *categoryDatamodel.Category) error
	Delete(orgID, id int64) error
	InUse(orgID, id int64) (bool, error)
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

func (s *Service) Create(p *internal.Principal, dto CreateCategoryDTO) (*Category, error) {
	if err := auth.Authorize(p, auth.ActionManageCategories); err != nil {
		s.logger.Warn("create category denied", "user_id", p.UserID, "role", p.Role)
		return nil, err
	}

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	c := NewCategory(p.OrganizationID, dto.Name, Type(dto.Type))
	row := ToDataModel(c)
	if err := s.repo.Create(row); err != nil {
		s.logger.Error("failed to create category", "error", err, "organization_id", p.OrganizationID)
		return nil, err
	}

	s.logger.Info("category created", "category_id", row.ID, "name", dto.Name, "type", dto.Type)
	return FromDataModel(row), nil
}

func (s *Service) List(p *internal.Principal) (*ListResponse, error) {
	rows, err := s.repo.List(p.OrganizationID)
	if err != nil {
		s.logger.Error("failed to list categories", "error", err, "organization_id", p.OrganizationID)
		return nil, err
	}
	return &ListResponse{Categories: FromDataModelSlice(rows)}, nil
}

func (s *Service) Update(p *internal.Principal, id int64, dto UpdateCategoryDTO) (*Category, error) {
	if err := auth.Authorize(p, auth.ActionManageCategories); err != nil {
		return nil, err
	}

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.repo.GetByID(p.OrganizationID, id)
	if err != nil {
		return nil, internal.ErrCategoryNotFound
	}

	row.Name = dto.Name
	if err := s.repo.Update(row); err != nil {
		s.logger.Error("failed to update category", "error", err, "category_id", id)
		return nil, err
	}

	return FromDataModel(row), nil
}

// Delete removes an unused category. Categories referenced by any payment
// request or ledger row are kept so historical data stays classified.
func (s *Service) Delete(p *internal.Principal, id int64) error {
	if err := auth.Authorize(p, auth.ActionManageCategories); err != nil {
		return err
	}

	if _, err := s.repo.GetByID(p.OrganizationID, id); err != nil {
		return internal.ErrCategoryNotFound
	}

	inUse, err := s.repo.InUse(p.OrganizationID, id)
	if err != nil {
		s.logger.Error("failed to check category references", "error", err, "category_id", id)
		return err
	}
	if inUse {
		s.logger.Warn("delete denied: category is referenced", "category_id", id)
		return internal.ErrCategoryInUse
	}

	if err := s.repo.Delete(p.OrganizationID, id); err != nil {
		s.logger.Error("failed to delete category", "error", err, "category_id", id)
		return err
	}

	s.logger.Info("category deleted", "category_id", id, "user_id", p.UserID)
	return nil
}

// ValidateCategory confirms the category exists in the organization. Used by
// the ledger, which accepts both types.
func (s *Service) ValidateCategory(orgID, categoryID int64) error {
	if _, err := s.repo.GetByID(orgID, categoryID); err != nil {
		return internal.ErrCategoryNotFound
	}
	return nil
}

// ValidateExpenseCategory additionally requires type egreso. Payment
// requests always represent outgoing money.
func (s *Service) ValidateExpenseCategory(orgID, categoryID int64) error {
	row, err := s.repo.GetByID(orgID, categoryID)
	if err != nil {
		return internal.ErrCategoryNotFound
	}
	if Type(row.Type) != TypeEgreso {
		return internal.NewValidationError("payment requests require an expense category", internal.ErrCodeInvalidCategory)
	}
	return nil
}
