package audit

import "time"

// AuditEntry is append-only; rows are never updated or deleted.
type AuditEntry struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	EntityType string    `json:"entity_type" gorm:"column:entity_type;not null;index:idx_audit_entity"`
	EntityID   int64     `json:"entity_id" gorm:"column:entity_id;not null;index:idx_audit_entity"`
	Action     string    `json:"action" gorm:"not null"`
	UserID     int64     `json:"user_id" gorm:"column:user_id;not null"`
	Changes    string    `json:"changes" gorm:"type:jsonb"`
	CreatedAt  time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
}

func (AuditEntry) TableName() string {
	return "audit_entries"
}
