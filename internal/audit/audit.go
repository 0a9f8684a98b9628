package audit

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	auditDatamodel "github.com/tesoreria-cl/tesoreria/internal/core/datamodel/audit"
	"gorm.io/gorm"
)

const (
	EntityPaymentRequest = "payment_request"
	EntityTransaction    = "transaction"
	EntityCategory       = "category"
	EntityUser           = "user"
)

const (
	ActionCreate  = "create"
	ActionUpdate  = "update"
	ActionDelete  = "delete"
	ActionSubmit  = "submit"
	ActionApprove = "approve"
	ActionReject  = "reject"
	ActionExecute = "execute"
)

// FieldChange records one field's before/after values.
type FieldChange struct {
	From interface{} `json:"from"`
	To   interface{} `json:"to"`
}

type Changes map[string]FieldChange

// Recorder appends audit entries. Record takes the caller's *gorm.DB so the
// entry commits or rolls back together with the mutation it describes.
type Recorder struct {
	logger *slog.Logger
}

func NewRecorder(logger *slog.Logger) *Recorder {
	return &Recorder{logger: logger}
}

func (r *Recorder) Record(tx *gorm.DB, entityType string, entityID int64, action string, userID int64, changes Changes) error {
	payload := "{}"
	if len(changes) > 0 {
		data, err := json.Marshal(changes)
		if err != nil {
			return fmt.Errorf("marshal audit changes: %w", err)
		}
		payload = string(data)
	}

	entry := &auditDatamodel.AuditEntry{
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		UserID:     userID,
		Changes:    payload,
		CreatedAt:  time.Now(),
	}

	if err := tx.Create(entry).Error; err != nil {
		return fmt.Errorf("write audit entry: %w", err)
	}

	r.logger.Debug("audit entry recorded",
		"entity_type", entityType,
		"entity_id", entityID,
		"action", action,
		"user_id", userID)

	return nil
}

// ListForEntity returns the audit trail for one entity, oldest first.
func (r *Recorder) ListForEntity(db *gorm.DB, entityType string, entityID int64) ([]*auditDatamodel.AuditEntry, error) {
	var entries []*auditDatamodel.AuditEntry
	err := db.Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}

// Diff compares two field maps and returns the changed fields. Keys present
// in only one map are reported with a nil counterpart.
func Diff(before, after map[string]interface{}) Changes {
	changes := make(Changes)
	for key, b := range before {
		a, ok := after[key]
		if !ok {
			changes[key] = FieldChange{From: b, To: nil}
			continue
		}
		if fmt.Sprintf("%v", a) != fmt.Sprintf("%v", b) {
			changes[key] = FieldChange{From: b, To: a}
		}
	}
	for key, a := range after {
		if _, ok := before[key]; !ok {
			changes[key] = FieldChange{From: nil, To: a}
		}
	}
	return changes
}
