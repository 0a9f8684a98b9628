package user

import (
	"log/slog"

	"github.com/tesoreria-cl/tesoreria/internal"
	"github.com/tesoreria-cl/tesoreria/internal/auth"
	userDatamodel "github.com/tesoreria-cl/tesoreria/internal/core/datamodel/user"
)

type Repository interface {
	Create(row *userDatamodel.User) error
	GetByID(orgID, id int64) (*userDatamodel.User, error)
	List(orgID int64) ([]*userDatamodel.User, error)
	UpdateRole(orgID, id int64, role string) error
	SetActive(orgID, id int64, active bool) error
}

// PasswordHasher is satisfied by the auth service.
type PasswordHasher interface {
	HashPassword(plain string) (string, error)
}

type Service struct {
	repo   Repository
	hasher PasswordHasher
	logger *slog.Logger
}

func NewService(repo Repository, hasher PasswordHasher, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		hasher: hasher,
		logger: logger,
	}
}

// Me returns the caller's own profile.
func (s *Service) Me(p *internal.Principal) (*User, error) {
	row, err := s.repo.GetByID(p.OrganizationID, p.UserID)
	if err != nil {
		return nil, internal.ErrUserNotFound
	}
	return FromDataModel(row), nil
}

func (s *Service) List(p *internal.Principal) (*ListResponse, error) {
	rows, err := s.repo.List(p.OrganizationID)
	if err != nil {
		s.logger.Error("failed to list users", "error", err, "organization_id", p.OrganizationID)
		return nil, err
	}
	return &ListResponse{Users: FromDataModelSlice(rows)}, nil
}

// Create registers a new member in the caller's organization. Presidente
// only.
func (s *Service) Create(p *internal.Principal, dto CreateUserDTO) (*User, error) {
	if err := auth.Authorize(p, auth.ActionManageUsers); err != nil {
		s.logger.Warn("create user denied", "user_id", p.UserID, "role", p.Role)
		return nil, err
	}

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.HashPassword(dto.Password)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, err
	}

	row := &userDatamodel.User{
		OrganizationID: p.OrganizationID,
		Email:          dto.Email,
		Name:           dto.Name,
		Role:           dto.Role,
		PasswordHash:   hash,
		IsActive:       true,
	}
	if err := s.repo.Create(row); err != nil {
		s.logger.Error("failed to create user", "error", err, "email", dto.Email)
		return nil, err
	}

	s.logger.Info("user created", "new_user_id", row.ID, "role", dto.Role, "created_by", p.UserID)
	return FromDataModel(row), nil
}

// ChangeRole reassigns a member's role. The new role takes effect on the
// member's next authenticated request.
func (s *Service) ChangeRole(p *internal.Principal, id int64, dto ChangeRoleDTO) (*User, error) {
	if err := auth.Authorize(p, auth.ActionManageUsers); err != nil {
		return nil, err
	}

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.repo.GetByID(p.OrganizationID, id)
	if err != nil {
		return nil, internal.ErrUserNotFound
	}

	if err := s.repo.UpdateRole(p.OrganizationID, id, dto.Role); err != nil {
		s.logger.Error("failed to change role", "error", err, "target_user_id", id)
		return nil, err
	}

	s.logger.Info("user role changed",
		"target_user_id", id, "from", row.Role, "to", dto.Role, "changed_by", p.UserID)

	row.Role = dto.Role
	return FromDataModel(row), nil
}

// SetActive activates or deactivates a member. Deactivated members fail
// authentication and drop out of notification fan-out.
func (s *Service) SetActive(p *internal.Principal, id int64, active bool) (*User, error) {
	if err := auth.Authorize(p, auth.ActionManageUsers); err != nil {
		return nil, err
	}

	if id == p.UserID && !active {
		return nil, internal.NewValidationError("cannot deactivate your own account", internal.ErrCodeValidationFailed)
	}

	row, err := s.repo.GetByID(p.OrganizationID, id)
	if err != nil {
		return nil, internal.ErrUserNotFound
	}

	if err := s.repo.SetActive(p.OrganizationID, id, active); err != nil {
		s.logger.Error("failed to set user active flag", "error", err, "target_user_id", id)
		return nil, err
	}

	s.logger.Info("user active flag changed",
		"target_user_id", id, "active", active, "changed_by", p.UserID)

	row.IsActive = active
	return FromDataModel(row), nil
}
