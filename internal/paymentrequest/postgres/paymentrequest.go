package postgres

import (
	"time"

	"github.com/tesoreria-cl/tesoreria/internal"
	"github.com/tesoreria-cl/tesoreria/internal/audit"
	notifDatamodel "github.com/tesoreria-cl/tesoreria/internal/core/datamodel/notification"
	prDatamodel "github.com/tesoreria-cl/tesoreria/internal/core/datamodel/paymentrequest"
	txDatamodel "github.com/tesoreria-cl/tesoreria/internal/core/datamodel/transaction"
	userDatamodel "github.com/tesoreria-cl/tesoreria/internal/core/datamodel/user"
	"github.com/tesoreria-cl/tesoreria/internal/notification"
	"github.com/tesoreria-cl/tesoreria/internal/paymentrequest"
	"github.com/tesoreria-cl/tesoreria/internal/transaction"
	"gorm.io/gorm"
)

// PaymentRequestRepository persists the request lifecycle. Every transition
// runs in one database transaction: a compare-and-swap on the status column,
// the audit entry, the notification fan-out and, for Execute, the ledger row.
// Losing the compare-and-swap surfaces as internal.ErrInvalidTransition, so
// two concurrent approvers resolve to exactly one winner.
type PaymentRequestRepository struct {
	db       *gorm.DB
	recorder *audit.Recorder
}

func NewPaymentRequestRepository(db *gorm.DB, recorder *audit.Recorder) paymentrequest.Repository {
	return &PaymentRequestRepository{db: db, recorder: recorder}
}

func (r *PaymentRequestRepository) Create(row *prDatamodel.PaymentRequest) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		return r.recorder.Record(tx, audit.EntityPaymentRequest, row.ID, audit.ActionCreate, row.CreatedBy, audit.Changes{
			"status":      {From: nil, To: row.Status},
			"amount":      {From: nil, To: row.Amount},
			"beneficiary": {From: nil, To: row.Beneficiary},
		})
	})
}

func (r *PaymentRequestRepository) GetByID(orgID, id int64) (*prDatamodel.PaymentRequest, error) {
	var row prDatamodel.PaymentRequest
	err := r.db.Where("id = ? AND organization_id = ?", id, orgID).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrRequestNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *PaymentRequestRepository) UpdateDraft(row *prDatamodel.PaymentRequest, actorID int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		result := tx.Model(&prDatamodel.PaymentRequest{}).
			Where("id = ? AND organization_id = ? AND status = ?",
				row.ID, row.OrganizationID, string(paymentrequest.StatusBorrador)).
			Updates(map[string]interface{}{
				"amount":      row.Amount,
				"description": row.Description,
				"beneficiary": row.Beneficiary,
				"category_id": row.CategoryID,
				"updated_at":  now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return internal.ErrCannotModify
		}
		row.UpdatedAt = now
		return r.recorder.Record(tx, audit.EntityPaymentRequest, row.ID, audit.ActionUpdate, actorID, audit.Changes{
			"amount":      {From: nil, To: row.Amount},
			"description": {From: nil, To: row.Description},
			"beneficiary": {From: nil, To: row.Beneficiary},
		})
	})
}

func (r *PaymentRequestRepository) List(orgID int64, filters paymentrequest.ListFilters) ([]*prDatamodel.PaymentRequest, int64, error) {
	query := r.db.Model(&prDatamodel.PaymentRequest{}).
		Where("organization_id = ?", orgID).
		Where("status <> ? OR created_by = ?", string(paymentrequest.StatusBorrador), filters.CallerID)

	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.Search != "" {
		pattern := "%" + filters.Search + "%"
		query = query.Where("LOWER(description) LIKE LOWER(?) OR LOWER(beneficiary) LIKE LOWER(?)",
			pattern, pattern)
	}
	if filters.DateFrom != "" {
		query = query.Where("created_at >= ?", filters.DateFrom)
	}
	if filters.DateTo != "" {
		query = query.Where("created_at <= ?", filters.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*prDatamodel.PaymentRequest
	err := query.Order(filters.SortBy + " " + filters.SortOrder).
		Limit(filters.Limit).
		Offset(filters.Offset).
		Find(&rows).Error
	return rows, total, err
}

// Submit flips borrador → pendiente and notifies every active presidente.
func (r *PaymentRequestRepository) Submit(row *prDatamodel.PaymentRequest, actorID int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		if err := r.swapStatus(tx, row, paymentrequest.StatusBorrador, map[string]interface{}{
			"status":     string(paymentrequest.StatusPendiente),
			"updated_at": now,
		}); err != nil {
			return err
		}

		recipients, err := activeUserIDsByRole(tx, row.OrganizationID, internal.RolePresidente)
		if err != nil {
			return err
		}
		if err := insertFanOut(tx, notification.SubmittedFanOut(
			row.OrganizationID, row.ID, row.Beneficiary, row.Amount, recipients)); err != nil {
			return err
		}

		return r.recorder.Record(tx, audit.EntityPaymentRequest, row.ID, audit.ActionSubmit, actorID, audit.Changes{
			"status": {From: string(paymentrequest.StatusBorrador), To: string(paymentrequest.StatusPendiente)},
		})
	})
}

// Approve flips pendiente → aprobado, stamps the approver and notifies the
// creator plus every active secretaria.
func (r *PaymentRequestRepository) Approve(row *prDatamodel.PaymentRequest, actorID int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		if err := r.swapStatus(tx, row, paymentrequest.StatusPendiente, map[string]interface{}{
			"status":      string(paymentrequest.StatusAprobado),
			"approved_by": actorID,
			"approved_at": now,
			"updated_at":  now,
		}); err != nil {
			return err
		}

		secretarias, err := activeUserIDsByRole(tx, row.OrganizationID, internal.RoleSecretaria)
		if err != nil {
			return err
		}
		recipients := dedupe(append(secretarias, row.CreatedBy))
		if err := insertFanOut(tx, notification.ApprovedFanOut(
			row.OrganizationID, row.ID, row.Beneficiary, row.Amount, recipients)); err != nil {
			return err
		}

		return r.recorder.Record(tx, audit.EntityPaymentRequest, row.ID, audit.ActionApprove, actorID, audit.Changes{
			"status": {From: string(paymentrequest.StatusPendiente), To: string(paymentrequest.StatusAprobado)},
		})
	})
}

// Reject flips pendiente → rechazado and notifies the creator with the
// comment embedded.
func (r *PaymentRequestRepository) Reject(row *prDatamodel.PaymentRequest, actorID int64, comment string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		if err := r.swapStatus(tx, row, paymentrequest.StatusPendiente, map[string]interface{}{
			"status":            string(paymentrequest.StatusRechazado),
			"rejected_by":       actorID,
			"rejected_at":       now,
			"rejection_comment": comment,
			"updated_at":        now,
		}); err != nil {
			return err
		}

		if err := insertFanOut(tx, notification.RejectedFanOut(
			row.OrganizationID, row.ID, comment, []int64{row.CreatedBy})); err != nil {
			return err
		}

		return r.recorder.Record(tx, audit.EntityPaymentRequest, row.ID, audit.ActionReject, actorID, audit.Changes{
			"status":            {From: string(paymentrequest.StatusPendiente), To: string(paymentrequest.StatusRechazado)},
			"rejection_comment": {From: nil, To: comment},
		})
	})
}

// Execute flips aprobado → ejecutado, writes the egreso ledger row in the
// same transaction, links it back to the request and notifies the creator
// plus every active presidente.
func (r *PaymentRequestRepository) Execute(row *prDatamodel.PaymentRequest, actorID int64, proofReference string, comment *string) (int64, error) {
	var transactionID int64

	err := r.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		if err := r.swapStatus(tx, row, paymentrequest.StatusAprobado, map[string]interface{}{
			"status":            string(paymentrequest.StatusEjecutado),
			"executed_by":       actorID,
			"executed_at":       now,
			"execution_comment": comment,
			"proof_reference":   proofReference,
			"updated_at":        now,
		}); err != nil {
			return err
		}

		beneficiary := row.Beneficiary
		ledger := &txDatamodel.Transaction{
			OrganizationID: row.OrganizationID,
			Type:           string(transaction.TypeEgreso),
			Amount:         row.Amount,
			CategoryID:     row.CategoryID,
			Description:    row.Description,
			Date:           now,
			Beneficiary:    &beneficiary,
			Source:         string(transaction.SourcePaymentRequest),
			CreatedBy:      actorID,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := tx.Create(ledger).Error; err != nil {
			return err
		}
		transactionID = ledger.ID

		if err := tx.Model(&prDatamodel.PaymentRequest{}).
			Where("id = ?", row.ID).
			Update("transaction_id", ledger.ID).Error; err != nil {
			return err
		}

		presidentes, err := activeUserIDsByRole(tx, row.OrganizationID, internal.RolePresidente)
		if err != nil {
			return err
		}
		recipients := dedupe(append(presidentes, row.CreatedBy))
		if err := insertFanOut(tx, notification.ExecutedFanOut(
			row.OrganizationID, row.ID, row.Beneficiary, row.Amount, recipients)); err != nil {
			return err
		}

		return r.recorder.Record(tx, audit.EntityPaymentRequest, row.ID, audit.ActionExecute, actorID, audit.Changes{
			"status":          {From: string(paymentrequest.StatusAprobado), To: string(paymentrequest.StatusEjecutado)},
			"proof_reference": {From: nil, To: proofReference},
			"transaction_id":  {From: nil, To: ledger.ID},
		})
	})
	if err != nil {
		return 0, err
	}
	return transactionID, nil
}

// swapStatus is the compare-and-swap at the heart of every transition.
func (r *PaymentRequestRepository) swapStatus(tx *gorm.DB, row *prDatamodel.PaymentRequest, from paymentrequest.Status, updates map[string]interface{}) error {
	result := tx.Model(&prDatamodel.PaymentRequest{}).
		Where("id = ? AND organization_id = ? AND status = ?", row.ID, row.OrganizationID, string(from)).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrInvalidTransition
	}
	return nil
}

func activeUserIDsByRole(tx *gorm.DB, orgID int64, role internal.Role) ([]int64, error) {
	var ids []int64
	err := tx.Model(&userDatamodel.User{}).
		Where("organization_id = ? AND role = ? AND is_active = true", orgID, string(role)).
		Pluck("id", &ids).Error
	return ids, err
}

func insertFanOut(tx *gorm.DB, rows []*notifDatamodel.Notification) error {
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(rows).Error
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	result := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}
