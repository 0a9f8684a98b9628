package postgres

import (
	"time"

	"github.com/tesoreria-cl/tesoreria/internal"
	userDatamodel "github.com/tesoreria-cl/tesoreria/internal/core/datamodel/user"
	"github.com/tesoreria-cl/tesoreria/internal/user"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.Repository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(row *userDatamodel.User) error {
	return r.db.Create(row).Error
}

func (r *UserRepository) GetByID(orgID, id int64) (*userDatamodel.User, error) {
	var row userDatamodel.User
	err := r.db.Where("id = ? AND organization_id = ?", id, orgID).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *UserRepository) List(orgID int64) ([]*userDatamodel.User, error) {
	var rows []*userDatamodel.User
	err := r.db.Where("organization_id = ?", orgID).
		Order("name ASC").
		Find(&rows).Error
	return rows, err
}

func (r *UserRepository) UpdateRole(orgID, id int64, role string) error {
	return r.db.Model(&userDatamodel.User{}).
		Where("id = ? AND organization_id = ?", id, orgID).
		Updates(map[string]interface{}{
			"role":       role,
			"updated_at": time.Now(),
		}).Error
}

func (r *UserRepository) SetActive(orgID, id int64, active bool) error {
	return r.db.Model(&userDatamodel.User{}).
		Where("id = ? AND organization_id = ?", id, orgID).
		Updates(map[string]interface{}{
			"is_active":  active,
			"updated_at": time.Now(),
		}).Error
}
