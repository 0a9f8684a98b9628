package transaction

import (
	"time"

	errors "github.com/tesoreria-cl/tesoreria/internal"
	"github.com/tesoreria-cl/tesoreria/internal/core/common/validation"
)

const dateLayout = "2006-01-02"

type CreateTransactionDTO struct {
	Type        string  `json:"type"`
	Amount      int64   `json:"amount"`
	CategoryID  *int64  `json:"category_id,omitempty"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	PayerName   *string `json:"payer_name,omitempty"`
	PayerRUT    *string `json:"payer_rut,omitempty"`
	Beneficiary *string `json:"beneficiary,omitempty"`
}

func (dto CreateTransactionDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("type", dto.Type).Required().OneOf(string(TypeIngreso), string(TypeEgreso))
	v.Field("amount", dto.Amount).Positive(errors.ErrCodeInvalidAmount)
	v.Field("description", dto.Description).Required().MaxLength(500)
	v.Field("date", dto.Date).Required()
	if err := v.Validate(); err != nil {
		return err
	}

	date, err := dto.ParseDate()
	if err != nil {
		return errors.NewValidationError("date must be YYYY-MM-DD", errors.ErrCodeInvalidDate)
	}
	if appErr := validation.ValidateDate("date", date); appErr != nil {
		return appErr
	}
	return nil
}

func (dto CreateTransactionDTO) ParseDate() (time.Time, error) {
	return time.Parse(dateLayout, dto.Date)
}

// UpdateTransactionDTO edits a manual row. Nil fields are left untouched.
type UpdateTransactionDTO struct {
	Type        *string `json:"type,omitempty"`
	Amount      *int64  `json:"amount,omitempty"`
	CategoryID  *int64  `json:"category_id,omitempty"`
	Description *string `json:"description,omitempty"`
	Date        *string `json:"date,omitempty"`
	PayerName   *string `json:"payer_name,omitempty"`
	PayerRUT    *string `json:"payer_rut,omitempty"`
	Beneficiary *string `json:"beneficiary,omitempty"`
}

func (dto UpdateTransactionDTO) Validate() error {
	v := validation.NewValidator()
	if dto.Type != nil {
		v.Field("type", *dto.Type).OneOf(string(TypeIngreso), string(TypeEgreso))
	}
	if dto.Amount != nil {
		v.Field("amount", *dto.Amount).Positive(errors.ErrCodeInvalidAmount)
	}
	if dto.Description != nil {
		v.Field("description", *dto.Description).Required().MaxLength(500)
	}
	if err := v.Validate(); err != nil {
		return err
	}

	if dto.Date != nil {
		date, err := time.Parse(dateLayout, *dto.Date)
		if err != nil {
			return errors.NewValidationError("date must be YYYY-MM-DD", errors.ErrCodeInvalidDate)
		}
		if appErr := validation.ValidateDate("date", date); appErr != nil {
			return appErr
		}
	}
	return nil
}

type ListFilters struct {
	Type       string
	CategoryID *int64
	Search     string
	DateFrom   string
	DateTo     string
	SortBy     string
	SortOrder  string
	Limit      int
	Offset     int
}

const (
	SortByDate      = "date"
	SortByAmount    = "amount"
	SortByCreatedAt = "created_at"

	SortAsc  = "asc"
	SortDesc = "desc"
)

func (f *ListFilters) Normalize() {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	switch f.SortBy {
	case SortByDate, SortByAmount, SortByCreatedAt:
	default:
		f.SortBy = SortByDate
	}
	switch f.SortOrder {
	case SortAsc, SortDesc:
	default:
		f.SortOrder = SortDesc
	}
}

type ListResponse struct {
	Transactions []*Transaction `json:"transactions"`
	Total        int64          `json:"total"`
	Limit        int            `json:"limit"`
	Offset       int            `json:"offset"`
}
