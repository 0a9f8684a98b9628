package auth

import (
	"strings"

	errors "github.com/tesoreria-cl/tesoreria/internal"
)

type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (dto LoginDTO) Validate() error {
	if strings.TrimSpace(dto.Email) == "" {
		return errors.NewValidationFieldError("email", "email is required", errors.ErrCodeValidationFailed)
	}
	if dto.Password == "" {
		return errors.NewValidationFieldError("password", "password is required", errors.ErrCodeValidationFailed)
	}
	return nil
}

type RefreshTokenDTO struct {
	RefreshToken string `json:"refresh_token"`
}

func (dto RefreshTokenDTO) Validate() error {
	if dto.RefreshToken == "" {
		return errors.NewValidationFieldError("refresh_token", "refresh token is required", errors.ErrCodeValidationFailed)
	}
	return nil
}
