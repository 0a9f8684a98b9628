package transaction_test

import (
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tesoreria-cl/tesoreria/internal"
	auditDatamodel "github.com/tesoreria-cl/tesoreria/internal/core/datamodel/audit"
	txDatamodel "github.com/tesoreria-cl/tesoreria/internal/core/datamodel/transaction"
	"github.com/tesoreria-cl/tesoreria/internal/transaction"
)

func TestTransactionService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Transaction Service Suite")
}

type mockRepository struct {
	rows        map[int64]*txDatamodel.Transaction
	history     map[int64][]*auditDatamodel.AuditEntry
	nextID      int64
	updateCalls int
	deleteCalls int
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		rows:    make(map[int64]*txDatamodel.Transaction),
		history: make(map[int64][]*auditDatamodel.AuditEntry),
		nextID:  1,
	}
}

func (m *mockRepository) Create(row *txDatamodel.Transaction) error {
	row.ID = m.nextID
	m.nextID++
	stored := *row
	m.rows[row.ID] = &stored
	return nil
}

func (m *mockRepository) GetByID(orgID, id int64) (*txDatamodel.Transaction, error) {
	row, ok := m.rows[id]
	if !ok || row.OrganizationID != orgID || row.DeletedAt != nil {
		return nil, internal.ErrTransactionNotFound
	}
	copied := *row
	return &copied, nil
}

func (m *mockRepository) Update(before, after *txDatamodel.Transaction, actorID int64) error {
	m.updateCalls++
	stored := *after
	m.rows[after.ID] = &stored
	return nil
}

func (m *mockRepository) SoftDelete(row *txDatamodel.Transaction, actorID int64) error {
	m.deleteCalls++
	now := time.Now()
	m.rows[row.ID].DeletedAt = &now
	return nil
}

func (m *mockRepository) History(orgID, id int64) ([]*auditDatamodel.AuditEntry, error) {
	row, ok := m.rows[id]
	if !ok || row.OrganizationID != orgID {
		return nil, internal.ErrTransactionNotFound
	}
	return m.history[id], nil
}

func (m *mockRepository) List(orgID int64, filters transaction.ListFilters) ([]*txDatamodel.Transaction, int64, error) {
	var rows []*txDatamodel.Transaction
	for _, row := range m.rows {
		if row.OrganizationID != orgID || row.DeletedAt != nil {
			continue
		}
		rows = append(rows, row)
	}
	return rows, int64(len(rows)), nil
}

type mockCategoryValidator struct {
	err error
}

func (m *mockCategoryValidator) ValidateCategory(orgID, categoryID int64) error {
	return m.err
}

var _ = Describe("TransactionService", func() {
	var (
		repo       *mockRepository
		categories *mockCategoryValidator
		service    *transaction.Service
	)

	const orgID = int64(1)

	secretaria := &internal.Principal{UserID: 30, OrganizationID: orgID, Role: internal.RoleSecretaria}
	delegado := &internal.Principal{UserID: 10, OrganizationID: orgID, Role: internal.RoleDelegado}

	validCreate := func() transaction.CreateTransactionDTO {
		return transaction.CreateTransactionDTO{
			Type:        "ingreso",
			Amount:      25000,
			Description: "Cuota mensual marzo",
			Date:        "2026-03-05",
		}
	}

	seed := func(source string) *txDatamodel.Transaction {
		row := &txDatamodel.Transaction{
			OrganizationID: orgID,
			Type:           "egreso",
			Amount:         45000,
			Description:    "Materiales de arte",
			Date:           time.Now(),
			Source:         source,
			CreatedBy:      30,
		}
		Expect(repo.Create(row)).To(Succeed())
		return row
	}

	BeforeEach(func() {
		repo = newMockRepository()
		categories = &mockCategoryValidator{}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		service = transaction.NewService(repo, categories, logger)
	})

	Describe("Create", func() {
		It("registers a manual entry for any active role", func() {
			created, err := service.Create(delegado, validCreate())
			Expect(err).NotTo(HaveOccurred())
			Expect(created.Source).To(Equal(transaction.SourceManual))
			Expect(created.CreatedBy).To(Equal(delegado.UserID))
		})

		It("rejects a zero amount", func() {
			dto := validCreate()
			dto.Amount = 0

			_, err := service.Create(secretaria, dto)
			var appErr *internal.AppError
			Expect(errors.As(err, &appErr)).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
		})

		It("rejects a future date", func() {
			dto := validCreate()
			dto.Date = time.Now().AddDate(0, 0, 2).Format("2006-01-02")

			_, err := service.Create(secretaria, dto)
			Expect(err).To(HaveOccurred())
		})

		It("rejects a category from another organization", func() {
			categories.err = internal.ErrCategoryNotFound
			dto := validCreate()
			categoryID := int64(7)
			dto.CategoryID = &categoryID

			_, err := service.Create(secretaria, dto)
			Expect(err).To(MatchError(internal.ErrCategoryNotFound))
		})
	})

	Describe("Get", func() {
		It("hides rows from other organizations", func() {
			row := seed(string(transaction.SourceManual))
			outsider := &internal.Principal{UserID: 99, OrganizationID: 2, Role: internal.RoleSecretaria}

			_, err := service.Get(outsider, row.ID)
			Expect(err).To(MatchError(internal.ErrTransactionNotFound))
		})
	})

	Describe("Update", func() {
		It("edits a manual row", func() {
			row := seed(string(transaction.SourceManual))
			amount := int64(50000)

			updated, err := service.Update(secretaria, row.ID, transaction.UpdateTransactionDTO{Amount: &amount})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Amount).To(Equal(amount))
			Expect(repo.updateCalls).To(Equal(1))
		})

		It("refuses to touch an engine-created row", func() {
			row := seed(string(transaction.SourcePaymentRequest))
			amount := int64(50000)

			_, err := service.Update(secretaria, row.ID, transaction.UpdateTransactionDTO{Amount: &amount})
			Expect(err).To(MatchError(internal.ErrTransactionImmutable))
			Expect(repo.updateCalls).To(Equal(0))
		})
	})

	Describe("Audit", func() {
		It("returns the trail for a soft-deleted row", func() {
			row := seed(string(transaction.SourceManual))
			repo.history[row.ID] = []*auditDatamodel.AuditEntry{
				{ID: 1, EntityType: "transaction", EntityID: row.ID, Action: "create", UserID: 30, Changes: `{"amount":{"from":null,"to":45000}}`},
				{ID: 2, EntityType: "transaction", EntityID: row.ID, Action: "delete", UserID: 30, Changes: `{}`},
			}
			Expect(service.Delete(secretaria, row.ID)).To(Succeed())

			trail, err := service.Audit(secretaria, row.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(trail.Entries).To(HaveLen(2))
			Expect(trail.Entries[1].Action).To(Equal("delete"))
		})

		It("hides trails from other organizations", func() {
			row := seed(string(transaction.SourceManual))
			outsider := &internal.Principal{UserID: 99, OrganizationID: 2, Role: internal.RoleSecretaria}

			_, err := service.Audit(outsider, row.ID)
			Expect(err).To(MatchError(internal.ErrTransactionNotFound))
		})
	})

	Describe("Delete", func() {
		It("soft-deletes a manual row", func() {
			row := seed(string(transaction.SourceManual))

			Expect(service.Delete(secretaria, row.ID)).To(Succeed())
			Expect(repo.deleteCalls).To(Equal(1))

			_, err := service.Get(secretaria, row.ID)
			Expect(err).To(MatchError(internal.ErrTransactionNotFound))
		})

		It("refuses to delete an engine-created row", func() {
			row := seed(string(transaction.SourcePaymentRequest))

			err := service.Delete(secretaria, row.ID)
			Expect(err).To(MatchError(internal.ErrTransactionImmutable))
			Expect(repo.deleteCalls).To(Equal(0))
		})
	})
})
