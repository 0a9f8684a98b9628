package notification

import "time"

// Notification is one inbox row for one recipient. Fan-out always creates a
// row per user, never a shared row.
type Notification struct {
	ID             int64     `json:"id" gorm:"primaryKey"`
	OrganizationID int64     `json:"organization_id" gorm:"column:organization_id;not null;index"`
	UserID         int64     `json:"user_id" gorm:"column:user_id;not null;index"`
	Type           string    `json:"type" gorm:"not null"`
	Title          string    `json:"title" gorm:"not null"`
	Message        string    `json:"message" gorm:"not null"`
	ReferenceType  string    `json:"reference_type" gorm:"column:reference_type"`
	ReferenceID    int64     `json:"reference_id" gorm:"column:reference_id;index"`
	IsRead         bool      `json:"is_read" gorm:"column:is_read;default:false"`
	CreatedAt      time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
}

func (Notification) TableName() string {
	return "notifications"
}
