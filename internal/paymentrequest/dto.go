package paymentrequest

import (
	errors "github.com/tesoreria-cl/tesoreria/internal"
	"github.com/tesoreria-cl/tesoreria/internal/core/common/validation"
)

type CreateRequestDTO struct {
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
	Beneficiary string `json:"beneficiary"`
	CategoryID  *int64 `json:"category_id,omitempty"`
}

func (dto CreateRequestDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("amount", dto.Amount).Positive(errors.ErrCodeInvalidAmount)
	v.Field("description", dto.Description).Required().MaxLength(500)
	v.Field("beneficiary", dto.Beneficiary).Required().MaxLength(200)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// UpdateRequestDTO edits a draft in place. Nil fields are left untouched.
type UpdateRequestDTO struct {
	Amount      *int64  `json:"amount,omitempty"`
	Description *string `json:"description,omitempty"`
	Beneficiary *string `json:"beneficiary,omitempty"`
	CategoryID  *int64  `json:"category_id,omitempty"`
}

func (dto UpdateRequestDTO) Validate() error {
	v := validation.NewValidator()
	if dto.Amount != nil {
		v.Field("amount", *dto.Amount).Positive(errors.ErrCodeInvalidAmount)
	}
	if dto.Description != nil {
		v.Field("description", *dto.Description).Required().MaxLength(500)
	}
	if dto.Beneficiary != nil {
		v.Field("beneficiary", *dto.Beneficiary).Required().MaxLength(200)
	}
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type RejectRequestDTO struct {
	Comment string `json:"comment"`
}

func (dto RejectRequestDTO) Validate() error {
	if dto.Comment == "" {
		return errors.NewValidationError("rejection comment is required", errors.ErrCodeMissingComment)
	}
	return nil
}

// ExecuteRequestDTO carries the proof-of-payment reference returned by the
// attachment store. Execution without proof is rejected.
type ExecuteRequestDTO struct {
	ProofReference string  `json:"proof_reference"`
	Comment        *string `json:"comment,omitempty"`
}

func (dto ExecuteRequestDTO) Validate() error {
	if dto.ProofReference == "" {
		return errors.NewValidationError("proof of payment is required to execute", errors.ErrCodeMissingProof)
	}
	return nil
}

const (
	SortByCreatedAt = "created_at"
	SortByUpdatedAt = "updated_at"
	SortByAmount    = "amount"

	SortAsc  = "asc"
	SortDesc = "desc"
)

type ListFilters struct {
	Status    string
	Search    string
	DateFrom  string
	DateTo    string
	SortBy    string
	SortOrder string
	Limit     int
	Offset    int
	// CallerID scopes borrador visibility: drafts are listed only for their
	// creator.
	CallerID int64
}

func (f *ListFilters) Normalize() {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	switch f.SortBy {
	case SortByCreatedAt, SortByUpdatedAt, SortByAmount:
	default:
		f.SortBy = SortByCreatedAt
	}
	switch f.SortOrder {
	case SortAsc, SortDesc:
	default:
		f.SortOrder = SortDesc
	}
}

type ListResponse struct {
	Requests []*PaymentRequest `json:"requests"`
	Total    int64             `json:"total"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
}
