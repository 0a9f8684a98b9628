package auth_test

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/tesoreria-cl/tesoreria/internal"
	"github.com/tesoreria-cl/tesoreria/internal/auth"
)

func TestAuthService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Service Suite")
}

type mockRepository struct {
	users map[string]*auth.User
}

func (m *mockRepository) GetByEmail(email string) (*auth.User, error) {
	user, ok := m.users[email]
	if !ok {
		return nil, internal.ErrUserNotFound
	}
	return user, nil
}

func (m *mockRepository) GetByID(userID int64) (*auth.User, error) {
	for _, user := range m.users {
		if user.ID == userID {
			return user, nil
		}
	}
	return nil, internal.ErrUserNotFound
}

var _ = Describe("AuthService", func() {
	var (
		repo    *mockRepository
		tokens  *auth.JWTTokenGenerator
		service *auth.Service
	)

	newUser := func(email string, password string, active bool) *auth.User {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		Expect(err).NotTo(HaveOccurred())
		return &auth.User{
			ID:             int64(len(repo.users) + 1),
			OrganizationID: 1,
			Email:          email,
			Name:           "Miembro",
			Role:           internal.RoleDelegado,
			PasswordHash:   string(hash),
			IsActive:       active,
		}
	}

	BeforeEach(func() {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		Expect(err).NotTo(HaveOccurred())

		repo = &mockRepository{users: make(map[string]*auth.User)}
		tokens = auth.NewJWTTokenGenerator(key, &key.PublicKey, 15*time.Minute, 7*24*time.Hour)
		service = auth.NewService(repo, tokens, bcrypt.MinCost)
	})

	Describe("Authenticate", func() {
		BeforeEach(func() {
			repo.users["delegado@demo.cl"] = newUser("delegado@demo.cl", "secreto123", true)
		})

		It("issues a token pair for valid credentials", func() {
			pair, err := service.Authenticate(auth.LoginDTO{
				Email:    "delegado@demo.cl",
				Password: "secreto123",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(pair.AccessToken).NotTo(BeEmpty())
			Expect(pair.RefreshToken).NotTo(BeEmpty())

			claims, err := service.ValidateAccessToken(pair.AccessToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.OrganizationID).To(Equal(int64(1)))
			Expect(claims.Role).To(Equal(string(internal.RoleDelegado)))
		})

		It("rejects a wrong password", func() {
			_, err := service.Authenticate(auth.LoginDTO{
				Email:    "delegado@demo.cl",
				Password: "incorrecta",
			})
			Expect(err).To(MatchError(internal.ErrInvalidCredentials))
		})

		It("does not reveal whether the account exists", func() {
			_, err := service.Authenticate(auth.LoginDTO{
				Email:    "nadie@demo.cl",
				Password: "secreto123",
			})
			Expect(err).To(MatchError(internal.ErrInvalidCredentials))
		})

		It("rejects a deactivated member", func() {
			repo.users["baja@demo.cl"] = newUser("baja@demo.cl", "secreto123", false)

			_, err := service.Authenticate(auth.LoginDTO{
				Email:    "baja@demo.cl",
				Password: "secreto123",
			})
			Expect(err).To(MatchError(internal.ErrUserInactive))
		})
	})

	Describe("RefreshTokens", func() {
		var pair auth.AuthTokens

		BeforeEach(func() {
			repo.users["delegado@demo.cl"] = newUser("delegado@demo.cl", "secreto123", true)

			var err error
			pair, err = service.Authenticate(auth.LoginDTO{
				Email:    "delegado@demo.cl",
				Password: "secreto123",
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("exchanges a refresh token for a fresh pair", func() {
			refreshed, err := service.RefreshTokens(pair.RefreshToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(refreshed.AccessToken).NotTo(BeEmpty())
		})

		It("refuses an access token in the refresh slot", func() {
			_, err := service.RefreshTokens(pair.AccessToken)
			Expect(err).To(MatchError(internal.ErrInvalidToken))
		})

		It("refuses refresh after deactivation", func() {
			repo.users["delegado@demo.cl"].IsActive = false

			_, err := service.RefreshTokens(pair.RefreshToken)
			Expect(err).To(MatchError(internal.ErrUserInactive))
		})

		It("picks up a role change on refresh", func() {
			repo.users["delegado@demo.cl"].Role = internal.RolePresidente

			refreshed, err := service.RefreshTokens(pair.RefreshToken)
			Expect(err).NotTo(HaveOccurred())

			claims, err := service.ValidateAccessToken(refreshed.AccessToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.Role).To(Equal(string(internal.RolePresidente)))
		})
	})

	Describe("ValidateAccessToken", func() {
		It("rejects an expired token", func() {
			expiring := auth.NewJWTTokenGenerator(tokens.PrivateKey, tokens.PublicKey, time.Nanosecond, time.Nanosecond)
			user := newUser("delegado@demo.cl", "secreto123", true)

			tokenString, err := expiring.GenerateAccessToken(user)
			Expect(err).NotTo(HaveOccurred())

			time.Sleep(10 * time.Millisecond)
			_, err = expiring.ValidateToken(tokenString)
			Expect(err).To(MatchError(internal.ErrTokenExpired))
		})

		It("rejects a refresh token used as access token", func() {
			user := newUser("delegado@demo.cl", "secreto123", true)
			tokenString, err := tokens.GenerateRefreshToken(user)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.ValidateAccessToken(tokenString)
			Expect(err).To(MatchError(internal.ErrInvalidToken))
		})

		It("rejects garbage", func() {
			_, err := service.ValidateAccessToken("ni.siquiera.un.jwt")
			Expect(err).To(MatchError(internal.ErrInvalidToken))
		})
	})
})
