package user

import "time"

type User struct {
	ID             int64     `json:"id" gorm:"primaryKey"`
	OrganizationID int64     `json:"organization_id" gorm:"column:organization_id;not null;index"`
	Email          string    `json:"email" gorm:"not null;uniqueIndex:idx_users_org_email,composite:organization_id"`
	PasswordHash   string    `json:"-" gorm:"column:password_hash;not null"`
	Name           string    `json:"name" gorm:"not null"`
	Role           string    `json:"role" gorm:"not null"`
	IsActive       bool      `json:"is_active" gorm:"column:is_active;default:true"`
	CreatedAt      time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (User) TableName() string {
	return "users"
}
