package user_test

import (
	"errors"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tesoreria-cl/tesoreria/internal"
	userDatamodel "github.com/tesoreria-cl/tesoreria/internal/core/datamodel/user"
	"github.com/tesoreria-cl/tesoreria/internal/user"
)

func TestUserService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Service Suite")
}

type mockRepository struct {
	rows   map[int64]*userDatamodel.User
	nextID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{rows: make(map[int64]*userDatamodel.User), nextID: 1}
}

func (m *mockRepository) Create(row *userDatamodel.User) error {
	row.ID = m.nextID
	m.nextID++
	stored := *row
	m.rows[row.ID] = &stored
	return nil
}

func (m *mockRepository) GetByID(orgID, id int64) (*userDatamodel.User, error) {
	row, ok := m.rows[id]
	if !ok || row.OrganizationID != orgID {
		return nil, internal.ErrUserNotFound
	}
	copied := *row
	return &copied, nil
}

func (m *mockRepository) List(orgID int64) ([]*userDatamodel.User, error) {
	var rows []*userDatamodel.User
	for _, row := range m.rows {
		if row.OrganizationID == orgID {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (m *mockRepository) UpdateRole(orgID, id int64, role string) error {
	m.rows[id].Role = role
	return nil
}

func (m *mockRepository) SetActive(orgID, id int64, active bool) error {
	m.rows[id].IsActive = active
	return nil
}

type mockHasher struct{}

func (mockHasher) HashPassword(plain string) (string, error) {
	return "hashed:" + plain, nil
}

var _ = Describe("UserService", func() {
	var (
		repo    *mockRepository
		service *user.Service
	)

	const orgID = int64(1)

	presidente := &internal.Principal{UserID: 20, OrganizationID: orgID, Role: internal.RolePresidente}
	secretaria := &internal.Principal{UserID: 30, OrganizationID: orgID, Role: internal.RoleSecretaria}

	seed := func(role string, active bool) *userDatamodel.User {
		row := &userDatamodel.User{
			OrganizationID: orgID,
			Email:          "miembro@demo.cl",
			Name:           "Miembro",
			Role:           role,
			PasswordHash:   "x",
			IsActive:       active,
		}
		Expect(repo.Create(row)).To(Succeed())
		return row
	}

	BeforeEach(func() {
		repo = newMockRepository()
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		service = user.NewService(repo, mockHasher{}, logger)
	})

	Describe("Create", func() {
		dto := user.CreateUserDTO{
			Email:    "nuevo@demo.cl",
			Name:     "Nuevo Delegado",
			Role:     string(internal.RoleDelegado),
			Password: "secreto123",
		}

		It("registers an active member with a hashed password", func() {
			created, err := service.Create(presidente, dto)
			Expect(err).NotTo(HaveOccurred())
			Expect(created.IsActive).To(BeTrue())

			stored := repo.rows[created.ID]
			Expect(stored.PasswordHash).To(Equal("hashed:secreto123"))
		})

		It("denies non-presidentes", func() {
			_, err := service.Create(secretaria, dto)
			Expect(err).To(MatchError(internal.ErrRoleNotAllowed))
		})

		It("rejects an unknown role", func() {
			bad := dto
			bad.Role = "tesorero"

			_, err := service.Create(presidente, bad)
			var appErr *internal.AppError
			Expect(errors.As(err, &appErr)).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
		})
	})

	Describe("ChangeRole", func() {
		It("reassigns the member's role", func() {
			row := seed(string(internal.RoleDelegado), true)

			updated, err := service.ChangeRole(presidente, row.ID, user.ChangeRoleDTO{
				Role: string(internal.RoleSecretaria),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Role).To(Equal(string(internal.RoleSecretaria)))
			Expect(repo.rows[row.ID].Role).To(Equal(string(internal.RoleSecretaria)))
		})

		It("hides members of other organizations", func() {
			row := seed(string(internal.RoleDelegado), true)
			outsider := &internal.Principal{UserID: 99, OrganizationID: 2, Role: internal.RolePresidente}

			_, err := service.ChangeRole(outsider, row.ID, user.ChangeRoleDTO{
				Role: string(internal.RoleSecretaria),
			})
			Expect(err).To(MatchError(internal.ErrUserNotFound))
		})
	})

	Describe("SetActive", func() {
		It("deactivates a member", func() {
			row := seed(string(internal.RoleDelegado), true)

			updated, err := service.SetActive(presidente, row.ID, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.IsActive).To(BeFalse())
		})

		It("refuses self-deactivation", func() {
			_, err := service.SetActive(presidente, presidente.UserID, false)
			var appErr *internal.AppError
			Expect(errors.As(err, &appErr)).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
		})

		It("reactivates a deactivated member", func() {
			row := seed(string(internal.RoleDelegado), false)

			updated, err := service.SetActive(presidente, row.ID, true)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.IsActive).To(BeTrue())
		})
	})
})
