package postgres

import (
	"time"

	"github.com/tesoreria-cl/tesoreria/internal"
	"github.com/tesoreria-cl/tesoreria/internal/category"
	categoryDatamodel "github.com/tesoreria-cl/tesoreria/internal/core/datamodel/category"
	prDatamodel "github.com/tesoreria-cl/tesoreria/internal/core/datamodel/paymentrequest"
	txDatamodel "github.com/tesoreria-cl/tesoreria/internal/core/datamodel/transaction"
	"gorm.io/gorm"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) category.Repository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Create(row *categoryDatamodel.Category) error {
	return r.db.Create(row).Error
}

func (r *CategoryRepository) GetByID(orgID, id int64) (*categoryDatamodel.Category, error) {
	var row categoryDatamodel.Category
	err := r.db.Where("id = ? AND organization_id = ?", id, orgID).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrCategoryNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *CategoryRepository) List(orgID int64) ([]*categoryDatamodel.Category, error) {
	var rows []*categoryDatamodel.Category
	err := r.db.Where("organization_id = ?", orgID).
		Order("type ASC, name ASC").
		Find(&rows).Error
	return rows, err
}

func (r *CategoryRepository) Update(row *categoryDatamodel.Category) error {
	return r.db.Model(&categoryDatamodel.Category{}).
		Where("id = ? AND organization_id = ?", row.ID, row.OrganizationID).
		Updates(map[string]interface{}{
			"name":       row.Name,
			"updated_at": time.Now(),
		}).Error
}

func (r *CategoryRepository) Delete(orgID, id int64) error {
	return r.db.Where("id = ? AND organization_id = ?", id, orgID).
		Delete(&categoryDatamodel.Category{}).Error
}

// InUse counts references from ledger rows and payment requests.
// Soft-deleted ledger rows still count; they remain part of the audit trail.
func (r *CategoryRepository) InUse(orgID, id int64) (bool, error) {
	var count int64
	err := r.db.Model(&txDatamodel.Transaction{}).
		Where("organization_id = ? AND category_id = ?", orgID, id).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}

	err = r.db.Model(&prDatamodel.PaymentRequest{}).
		Where("organization_id = ? AND category_id = ?", orgID, id).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
