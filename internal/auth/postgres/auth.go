package postgres

import (
	"github.com/tesoreria-cl/tesoreria/internal"
	"github.com/tesoreria-cl/tesoreria/internal/auth"
	userDatamodel "github.com/tesoreria-cl/tesoreria/internal/core/datamodel/user"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) auth.RepositoryAPI {
	return &Repository{db: db}
}

func (r *Repository) GetByEmail(email string) (*auth.User, error) {
	var row userDatamodel.User
	if err := r.db.Where("email = ?", email).First(&row).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return toAuthUser(&row), nil
}

func (r *Repository) GetByID(userID int64) (*auth.User, error) {
	var row userDatamodel.User
	if err := r.db.Where("id = ?", userID).First(&row).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return toAuthUser(&row), nil
}

func toAuthUser(row *userDatamodel.User) *auth.User {
	return &auth.User{
		ID:             row.ID,
		OrganizationID: row.OrganizationID,
		Email:          row.Email,
		Name:           row.Name,
		Role:           internal.Role(row.Role),
		PasswordHash:   row.PasswordHash,
		IsActive:       row.IsActive,
	}
}
