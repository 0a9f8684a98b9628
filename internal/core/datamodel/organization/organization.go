package organization

import "time"

// Organization is the tenant boundary. Every other row in the schema hangs
// off an organization and every query must filter by its id.
type Organization struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (Organization) TableName() string {
	return "organizations"
}
