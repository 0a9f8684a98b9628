package postgres

import (
	"time"

	"github.com/tesoreria-cl/tesoreria/internal"
	"github.com/tesoreria-cl/tesoreria/internal/audit"
	auditDatamodel "github.com/tesoreria-cl/tesoreria/internal/core/datamodel/audit"
	txDatamodel "github.com/tesoreria-cl/tesoreria/internal/core/datamodel/transaction"
	"github.com/tesoreria-cl/tesoreria/internal/transaction"
	"gorm.io/gorm"
)

type TransactionRepository struct {
	db       *gorm.DB
	recorder *audit.Recorder
}

func NewTransactionRepository(db *gorm.DB, recorder *audit.Recorder) transaction.Repository {
	return &TransactionRepository{db: db, recorder: recorder}
}

func (r *TransactionRepository) Create(row *txDatamodel.Transaction) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		return r.recorder.Record(tx, audit.EntityTransaction, row.ID, audit.ActionCreate, row.CreatedBy, audit.Changes{
			"type":   {From: nil, To: row.Type},
			"amount": {From: nil, To: row.Amount},
		})
	})
}

func (r *TransactionRepository) GetByID(orgID, id int64) (*txDatamodel.Transaction, error) {
	var row txDatamodel.Transaction
	err := r.db.Where("id = ? AND organization_id = ? AND deleted_at IS NULL", id, orgID).
		First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrTransactionNotFound
		}
		return nil, err
	}
	return &row, nil
}

// Update persists an edit to a manual row. The audit entry carries the field
// diff so the trail shows exactly what changed.
func (r *TransactionRepository) Update(before, after *txDatamodel.Transaction, actorID int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		after.EditedBy = &actorID
		after.EditedAt = &now
		after.UpdatedAt = now

		result := tx.Model(&txDatamodel.Transaction{}).
			Where("id = ? AND organization_id = ? AND source = ? AND deleted_at IS NULL",
				after.ID, after.OrganizationID, string(transaction.SourceManual)).
			Updates(map[string]interface{}{
				"type":        after.Type,
				"amount":      after.Amount,
				"category_id": after.CategoryID,
				"description": after.Description,
				"date":        after.Date,
				"payer_name":  after.PayerName,
				"payer_rut":   after.PayerRUT,
				"beneficiary": after.Beneficiary,
				"edited_by":   actorID,
				"edited_at":   now,
				"updated_at":  now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return internal.ErrTransactionImmutable
		}

		changes := transaction.DiffForAudit(before, after)
		if len(changes) == 0 {
			return nil
		}
		return r.recorder.Record(tx, audit.EntityTransaction, after.ID, audit.ActionUpdate, actorID, changes)
	})
}

func (r *TransactionRepository) SoftDelete(row *txDatamodel.Transaction, actorID int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		result := tx.Model(&txDatamodel.Transaction{}).
			Where("id = ? AND organization_id = ? AND source = ? AND deleted_at IS NULL",
				row.ID, row.OrganizationID, string(transaction.SourceManual)).
			Updates(map[string]interface{}{
				"deleted_at": now,
				"edited_by":  actorID,
				"edited_at":  now,
				"updated_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return internal.ErrTransactionImmutable
		}

		return r.recorder.Record(tx, audit.EntityTransaction, row.ID, audit.ActionDelete, actorID, audit.Changes{
			"deleted_at": {From: nil, To: now.Format(time.RFC3339)},
		})
	})
}

// History returns the audit trail for a row. The existence check skips the
// deleted_at filter on purpose: a soft-deleted row's trail is still readable.
func (r *TransactionRepository) History(orgID, id int64) ([]*auditDatamodel.AuditEntry, error) {
	var count int64
	err := r.db.Model(&txDatamodel.Transaction{}).
		Where("id = ? AND organization_id = ?", id, orgID).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, internal.ErrTransactionNotFound
	}

	return r.recorder.ListForEntity(r.db, audit.EntityTransaction, id)
}

func (r *TransactionRepository) List(orgID int64, filters transaction.ListFilters) ([]*txDatamodel.Transaction, int64, error) {
	query := r.db.Model(&txDatamodel.Transaction{}).
		Where("organization_id = ? AND deleted_at IS NULL", orgID)

	if filters.Type != "" {
		query = query.Where("type = ?", filters.Type)
	}
	if filters.CategoryID != nil {
		query = query.Where("category_id = ?", *filters.CategoryID)
	}
	if filters.Search != "" {
		pattern := "%" + filters.Search + "%"
		query = query.Where(
			"LOWER(description) LIKE LOWER(?) OR LOWER(beneficiary) LIKE LOWER(?) OR LOWER(payer_name) LIKE LOWER(?)",
			pattern, pattern, pattern)
	}
	if filters.DateFrom != "" {
		query = query.Where("date >= ?", filters.DateFrom)
	}
	if filters.DateTo != "" {
		query = query.Where("date <= ?", filters.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*txDatamodel.Transaction
	err := query.Order(filters.SortBy + " " + filters.SortOrder).
		Limit(filters.Limit).
		Offset(filters.Offset).
		Find(&rows).Error
	return rows, total, err
}
