package user

import (
	errors "github.com/tesoreria-cl/tesoreria/internal"
	"github.com/tesoreria-cl/tesoreria/internal/core/common/validation"
)

type CreateUserDTO struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

func (dto CreateUserDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("email", dto.Email).Required().MaxLength(200)
	v.Field("name", dto.Name).Required().MaxLength(200)
	v.Field("role", dto.Role).Required().OneOf(
		string(errors.RoleDelegado), string(errors.RolePresidente), string(errors.RoleSecretaria))
	v.Field("password", dto.Password).Required().MinLength(8)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type ChangeRoleDTO struct {
	Role string `json:"role"`
}

func (dto ChangeRoleDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("role", dto.Role).Required().OneOf(
		string(errors.RoleDelegado), string(errors.RolePresidente), string(errors.RoleSecretaria))
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type ListResponse struct {
	Users []*User `json:"users"`
}
