package category

import (
	"time"

	categoryDatamodel "github.com/tesoreria-cl/tesoreria/internal/core/datamodel/category"
)

// Type classifies a category as income or expense. Payment requests only
// accept egreso categories.
type Type string

const (
	TypeIngreso Type = "ingreso"
	TypeEgreso  Type = "egreso"
)

func (t Type) Valid() bool {
	return t == TypeIngreso || t == TypeEgreso
}

type Category struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"organization_id"`
	Name           string    `json:"name"`
	Type           Type      `json:"type"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func NewCategory(orgID int64, name string, typ Type) *Category {
	now := time.Now()
	return &Category{
		OrganizationID: orgID,
		Name:           name,
		Type:           typ,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func ToDataModel(c *Category) *categoryDatamodel.Category {
	return &categoryDatamodel.Category{
		ID:             c.ID,
		OrganizationID: c.OrganizationID,
		Name:           c.Name,
		Type:           string(c.Type),
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func FromDataModel(c *categoryDatamodel.Category) *Category {
	return &Category{
		ID:             c.ID,
		OrganizationID: c.OrganizationID,
		Name:           c.Name,
		Type:           Type(c.Type),
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func FromDataModelSlice(rows []*categoryDatamodel.Category) []*Category {
	result := make([]*Category, len(rows))
	for i, c := range rows {
		result[i] = FromDataModel(c)
	}
	return result
}
