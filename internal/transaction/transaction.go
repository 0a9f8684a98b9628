package transaction

import (
	"encoding/json"
	"time"

	"github.com/tesoreria-cl/tesoreria/internal/audit"
	auditDatamodel "github.com/tesoreria-cl/tesoreria/internal/core/datamodel/audit"
	txDatamodel "github.com/tesoreria-cl/tesoreria/internal/core/datamodel/transaction"
)

type Type string

const (
	TypeIngreso Type = "ingreso"
	TypeEgreso  Type = "egreso"
)

func (t Type) Valid() bool {
	return t == TypeIngreso || t == TypeEgreso
}

// Source distinguishes hand-entered rows from rows created by executing a
// payment request. Engine rows are immutable through the ledger API.
type Source string

const (
	SourceManual         Source = "manual"
	SourcePaymentRequest Source = "payment_request"
)

type Transaction struct {
	ID             int64      `json:"id"`
	OrganizationID int64      `json:"organization_id"`
	Type           Type       `json:"type"`
	Amount         int64      `json:"amount"`
	CategoryID     *int64     `json:"category_id,omitempty"`
	Description    string     `json:"description"`
	Date           time.Time  `json:"date"`
	PayerName      *string    `json:"payer_name,omitempty"`
	PayerRUT       *string    `json:"payer_rut,omitempty"`
	Beneficiary    *string    `json:"beneficiary,omitempty"`
	Source         Source     `json:"source"`
	CreatedBy      int64      `json:"created_by"`
	EditedBy       *int64     `json:"edited_by,omitempty"`
	EditedAt       *time.Time `json:"edited_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Mutable reports whether the ledger API may edit or delete the row.
func (t *Transaction) Mutable() bool {
	return t.Source == SourceManual
}

func FromDataModel(t *txDatamodel.Transaction) *Transaction {
	return &Transaction{
		ID:             t.ID,
		OrganizationID: t.OrganizationID,
		Type:           Type(t.Type),
		Amount:         t.Amount,
		CategoryID:     t.CategoryID,
		Description:    t.Description,
		Date:           t.Date,
		PayerName:      t.PayerName,
		PayerRUT:       t.PayerRUT,
		Beneficiary:    t.Beneficiary,
		Source:         Source(t.Source),
		CreatedBy:      t.CreatedBy,
		EditedBy:       t.EditedBy,
		EditedAt:       t.EditedAt,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

func FromDataModelSlice(rows []*txDatamodel.Transaction) []*Transaction {
	result := make([]*Transaction, len(rows))
	for i, t := range rows {
		result[i] = FromDataModel(t)
	}
	return result
}

// AuditEntry is one step of a row's history. Soft-deleted rows keep their
// trail, so deletion is itself the last retrievable entry.
type AuditEntry struct {
	ID        int64           `json:"id"`
	Action    string          `json:"action"`
	UserID    int64           `json:"user_id"`
	Changes   json.RawMessage `json:"changes"`
	CreatedAt time.Time       `json:"created_at"`
}

type AuditTrailResponse struct {
	Entries []*AuditEntry `json:"entries"`
}

func AuditTrailFromDataModel(rows []*auditDatamodel.AuditEntry) *AuditTrailResponse {
	entries := make([]*AuditEntry, len(rows))
	for i, row := range rows {
		entries[i] = &AuditEntry{
			ID:        row.ID,
			Action:    row.Action,
			UserID:    row.UserID,
			Changes:   json.RawMessage(row.Changes),
			CreatedAt: row.CreatedAt,
		}
	}
	return &AuditTrailResponse{Entries: entries}
}

// DiffForAudit returns the changed fields between two versions of a row.
func DiffForAudit(before, after *txDatamodel.Transaction) audit.Changes {
	return audit.Diff(auditFields(before), auditFields(after))
}

// auditFields flattens the row for before/after diffing.
func auditFields(t *txDatamodel.Transaction) map[string]interface{} {
	fields := map[string]interface{}{
		"type":        t.Type,
		"amount":      t.Amount,
		"description": t.Description,
		"date":        t.Date.Format("2006-01-02"),
	}
	if t.CategoryID != nil {
		fields["category_id"] = *t.CategoryID
	}
	if t.PayerName != nil {
		fields["payer_name"] = *t.PayerName
	}
	if t.PayerRUT != nil {
		fields["payer_rut"] = *t.PayerRUT
	}
	if t.Beneficiary != nil {
		fields["beneficiary"] = *t.Beneficiary
	}
	return fields
}
