package paymentrequest

import (
	"fmt"
	"time"

	prDatamodel "github.com/tesoreria-cl/tesoreria/internal/core/datamodel/paymentrequest"
)

// Status is the payment request lifecycle state. rechazado and ejecutado are
// terminal; no transition leaves them.
type Status string

const (
	StatusBorrador  Status = "borrador"
	StatusPendiente Status = "pendiente"
	StatusAprobado  Status = "aprobado"
	StatusRechazado Status = "rechazado"
	StatusEjecutado Status = "ejecutado"
)

func (s Status) Valid() bool {
	switch s {
	case StatusBorrador, StatusPendiente, StatusAprobado, StatusRechazado, StatusEjecutado:
		return true
	}
	return false
}

func (s Status) Terminal() bool {
	return s == StatusRechazado || s == StatusEjecutado
}

type PaymentRequest struct {
	ID               int64      `json:"id"`
	OrganizationID   int64      `json:"organization_id"`
	Amount           int64      `json:"amount"`
	Description      string     `json:"description"`
	Beneficiary      string     `json:"beneficiary"`
	CategoryID       *int64     `json:"category_id,omitempty"`
	Status           Status     `json:"status"`
	CreatedBy        int64      `json:"created_by"`
	ApprovedBy       *int64     `json:"approved_by,omitempty"`
	ApprovedAt       *time.Time `json:"approved_at,omitempty"`
	RejectedBy       *int64     `json:"rejected_by,omitempty"`
	RejectedAt       *time.Time `json:"rejected_at,omitempty"`
	RejectionComment *string    `json:"rejection_comment,omitempty"`
	ExecutedBy       *int64     `json:"executed_by,omitempty"`
	ExecutedAt       *time.Time `json:"executed_at,omitempty"`
	ExecutionComment *string    `json:"execution_comment,omitempty"`
	ProofReference   *string    `json:"proof_reference,omitempty"`
	TransactionID    *int64     `json:"transaction_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Editable reports whether fields may still change in place. Amount,
// description and beneficiary freeze once the request leaves borrador.
func (r *PaymentRequest) Editable() bool {
	return r.Status == StatusBorrador
}

func (r *PaymentRequest) CanSubmit() bool {
	return r.Status == StatusBorrador
}

func (r *PaymentRequest) CanApprove() bool {
	return r.Status == StatusPendiente
}

func (r *PaymentRequest) CanReject() bool {
	return r.Status == StatusPendiente
}

func (r *PaymentRequest) CanExecute() bool {
	return r.Status == StatusAprobado
}

// ValidateState checks that only the payload fields matching the current
// status are populated, so a row carrying, say, approved_at in borrador is
// caught instead of silently trusted.
func (r *PaymentRequest) ValidateState() error {
	if !r.Status.Valid() {
		return fmt.Errorf("unknown status %q", r.Status)
	}

	approvalSet := r.ApprovedBy != nil || r.ApprovedAt != nil
	rejectionSet := r.RejectedBy != nil || r.RejectedAt != nil || r.RejectionComment != nil
	executionSet := r.ExecutedBy != nil || r.ExecutedAt != nil || r.TransactionID != nil

	switch r.Status {
	case StatusBorrador, StatusPendiente:
		if approvalSet || rejectionSet || executionSet {
			return fmt.Errorf("status %s must not carry approval, rejection or execution fields", r.Status)
		}
	case StatusAprobado:
		if !approvalSet {
			return fmt.Errorf("status aprobado requires approved_by and approved_at")
		}
		if rejectionSet || executionSet {
			return fmt.Errorf("status aprobado must not carry rejection or execution fields")
		}
	case StatusRechazado:
		if !rejectionSet || r.RejectionComment == nil || *r.RejectionComment == "" {
			return fmt.Errorf("status rechazado requires rejection fields and a comment")
		}
		if approvalSet || executionSet {
			return fmt.Errorf("status rechazado must not carry approval or execution fields")
		}
	case StatusEjecutado:
		if !approvalSet || !executionSet || r.TransactionID == nil {
			return fmt.Errorf("status ejecutado requires approval and execution fields and a linked transaction")
		}
		if rejectionSet {
			return fmt.Errorf("status ejecutado must not carry rejection fields")
		}
	}

	return nil
}

func NewPaymentRequest(orgID, creatorID int64, dto CreateRequestDTO) *PaymentRequest {
	now := time.Now()
	return &PaymentRequest{
		OrganizationID: orgID,
		Amount:         dto.Amount,
		Description:    dto.Description,
		Beneficiary:    dto.Beneficiary,
		CategoryID:     dto.CategoryID,
		Status:         StatusBorrador,
		CreatedBy:      creatorID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func ToDataModel(r *PaymentRequest) *prDatamodel.PaymentRequest {
	return &prDatamodel.PaymentRequest{
		ID:               r.ID,
		OrganizationID:   r.OrganizationID,
		Amount:           r.Amount,
		Description:      r.Description,
		Beneficiary:      r.Beneficiary,
		CategoryID:       r.CategoryID,
		Status:           string(r.Status),
		CreatedBy:        r.CreatedBy,
		ApprovedBy:       r.ApprovedBy,
		ApprovedAt:       r.ApprovedAt,
		RejectedBy:       r.RejectedBy,
		RejectedAt:       r.RejectedAt,
		RejectionComment: r.RejectionComment,
		ExecutedBy:       r.ExecutedBy,
		ExecutedAt:       r.ExecutedAt,
		ExecutionComment: r.ExecutionComment,
		ProofReference:   r.ProofReference,
		TransactionID:    r.TransactionID,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

func FromDataModel(r *prDatamodel.PaymentRequest) *PaymentRequest {
	return &PaymentRequest{
		ID:               r.ID,
		OrganizationID:   r.OrganizationID,
		Amount:           r.Amount,
		Description:      r.Description,
		Beneficiary:      r.Beneficiary,
		CategoryID:       r.CategoryID,
		Status:           Status(r.Status),
		CreatedBy:        r.CreatedBy,
		ApprovedBy:       r.ApprovedBy,
		ApprovedAt:       r.ApprovedAt,
		RejectedBy:       r.RejectedBy,
		RejectedAt:       r.RejectedAt,
		RejectionComment: r.RejectionComment,
		ExecutedBy:       r.ExecutedBy,
		ExecutedAt:       r.ExecutedAt,
		ExecutionComment: r.ExecutionComment,
		ProofReference:   r.ProofReference,
		TransactionID:    r.TransactionID,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

func FromDataModelSlice(rows []*prDatamodel.PaymentRequest) []*PaymentRequest {
	result := make([]*PaymentRequest, len(rows))
	for i, r := range rows {
		result[i] = FromDataModel(r)
	}
	return result
}
