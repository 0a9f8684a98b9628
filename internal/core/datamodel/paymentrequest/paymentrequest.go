package paymentrequest

import "time"

type PaymentRequest struct {
	ID               int64      `json:"id" gorm:"primaryKey"`
	OrganizationID   int64      `json:"organization_id" gorm:"column:organization_id;not null;index"`
	Amount           int64      `json:"amount" gorm:"not null"`
	Description      string     `json:"description" gorm:"not null"`
	Beneficiary      string     `json:"beneficiary" gorm:"not null"`
	CategoryID       *int64     `json:"category_id,omitempty" gorm:"column:category_id"`
	Status           string     `json:"status" gorm:"not null;default:borrador;index"`
	CreatedBy        int64      `json:"created_by" gorm:"column:created_by;not null"`
	ApprovedBy       *int64     `json:"approved_by,omitempty" gorm:"column:approved_by"`
	ApprovedAt       *time.Time `json:"approved_at,omitempty" gorm:"column:approved_at"`
	RejectedBy       *int64     `json:"rejected_by,omitempty" gorm:"column:rejected_by"`
	RejectedAt       *time.Time `json:"rejected_at,omitempty" gorm:"column:rejected_at"`
	RejectionComment *string    `json:"rejection_comment,omitempty" gorm:"column:rejection_comment"`
	ExecutedBy       *int64     `json:"executed_by,omitempty" gorm:"column:executed_by"`
	ExecutedAt       *time.Time `json:"executed_at,omitempty" gorm:"column:executed_at"`
	ExecutionComment *string    `json:"execution_comment,omitempty" gorm:"column:execution_comment"`
	ProofReference   *string    `json:"proof_reference,omitempty" gorm:"column:proof_reference"`
	TransactionID    *int64     `json:"transaction_id,omitempty" gorm:"column:transaction_id"`
	CreatedAt        time.Time  `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt        time.Time  `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (PaymentRequest) TableName() string {
	return "payment_requests"
}
