package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tesoreria-cl/tesoreria/internal"
)

type ServiceAPI interface {
	Authenticate(dto LoginDTO) (AuthTokens, error)
	RefreshTokens(refreshToken string) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	GetActiveUser(userID int64) (*User, error)
	HashPassword(password string) (string, error)
}

type RepositoryAPI interface {
	GetByEmail(email string) (*User, error)
	GetByID(userID int64) (*User, error)
}

type TokenGeneratorAPI interface {
	GenerateAccessToken(user *User) (string, error)
	GenerateRefreshToken(user *User) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// User is the authentication view of an organization member. Role and
// organization travel inside the token claims so every request can be
// resolved to a Principal without extra lookups.
type User struct {
	ID             int64         `json:"id"`
	OrganizationID int64         `json:"organization_id"`
	Email          string        `json:"email"`
	Name           string        `json:"name"`
	Role           internal.Role `json:"role"`
	PasswordHash   string        `json:"-"`
	IsActive       bool          `json:"is_active"`
}

func (u *User) Principal() *internal.Principal {
	return &internal.Principal{
		UserID:         u.ID,
		OrganizationID: u.OrganizationID,
		Role:           u.Role,
	}
}

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

type Claims struct {
	UserID         int64  `json:"user_id"`
	OrganizationID int64  `json:"organization_id"`
	Role           string `json:"role"`
	TokenType      string `json:"token_type"`
	jwt.RegisteredClaims
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at,omitempty"`
}

type AuthInfo struct {
	UserID    int64
	Token     string
	ExpiresAt time.Time
}
