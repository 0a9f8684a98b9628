package transaction

import "time"

type Transaction struct {
	ID             int64      `json:"id" gorm:"primaryKey"`
	OrganizationID int64      `json:"organization_id" gorm:"column:organization_id;not null;index"`
	Type           string     `json:"type" gorm:"not null"`
	Amount         int64      `json:"amount" gorm:"not null"`
	CategoryID     *int64     `json:"category_id,omitempty" gorm:"column:category_id"`
	Description    string     `json:"description" gorm:"not null"`
	Date           time.Time  `json:"date" gorm:"column:date;type:date"`
	PayerName      *string    `json:"payer_name,omitempty" gorm:"column:payer_name"`
	PayerRUT       *string    `json:"payer_rut,omitempty" gorm:"column:payer_rut"`
	Beneficiary    *string    `json:"beneficiary,omitempty" gorm:"column:beneficiary"`
	Source         string     `json:"source" gorm:"not null;default:manual"`
	CreatedBy      int64      `json:"created_by" gorm:"column:created_by;not null"`
	EditedBy       *int64     `json:"edited_by,omitempty" gorm:"column:edited_by"`
	EditedAt       *time.Time `json:"edited_at,omitempty" gorm:"column:edited_at"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty" gorm:"column:deleted_at;index"`
	CreatedAt      time.Time  `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt      time.Time  `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (Transaction) TableName() string {
	return "transactions"
}
