package category

import (
	"github.com/tesoreria-cl/tesoreria/internal/core/common/validation"
)

type CreateCategoryDTO struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func (dto CreateCategoryDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("name", dto.Name).Required().MaxLength(100)
	v.Field("type", dto.Type).Required().OneOf(string(TypeIngreso), string(TypeEgreso))
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// UpdateCategoryDTO renames a category. The type is fixed at creation so
// existing ledger rows keep their classification.
type UpdateCategoryDTO struct {
	Name string `json:"name"`
}

func (dto UpdateCategoryDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("name", dto.Name).Required().MaxLength(100)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type ListResponse struct {
	Categories []*Category `json:"categories"`
}
