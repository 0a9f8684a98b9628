package paymentrequest_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tesoreria-cl/tesoreria/internal"
	prDatamodel "github.com/tesoreria-cl/tesoreria/internal/core/datamodel/paymentrequest"
	"github.com/tesoreria-cl/tesoreria/internal/core/events"
	"github.com/tesoreria-cl/tesoreria/internal/paymentrequest"
)

func TestPaymentRequestService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "PaymentRequest Service Suite")
}

type mockRepository struct {
	rows   map[int64]*prDatamodel.PaymentRequest
	nextID int64

	createError     error
	transitionError error

	submitCalls  int
	approveCalls int
	rejectCalls  int
	executeCalls int

	lastRejectComment string
	lastProof         string
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		rows:   make(map[int64]*prDatamodel.PaymentRequest),
		nextID: 1,
	}
}

func (m *mockRepository) Create(row *prDatamodel.PaymentRequest) error {
	if m.createError != nil {
		return m.createError
	}
	row.ID = m.nextID
	m.nextID++
	m.rows[row.ID] = row
	return nil
}

func (m *mockRepository) GetByID(orgID, id int64) (*prDatamodel.PaymentRequest, error) {
	row, ok := m.rows[id]
	if !ok || row.OrganizationID != orgID {
		return nil, internal.ErrRequestNotFound
	}
	copied := *row
	return &copied, nil
}

func (m *mockRepository) UpdateDraft(row *prDatamodel.PaymentRequest, actorID int64) error {
	stored, ok := m.rows[row.ID]
	if !ok || stored.Status != "borrador" {
		return internal.ErrCannotModify
	}
	copied := *row
	m.rows[row.ID] = &copied
	return nil
}

func (m *mockRepository) List(orgID int64, filters paymentrequest.ListFilters) ([]*prDatamodel.PaymentRequest, int64, error) {
	var result []*prDatamodel.PaymentRequest
	for _, row := range m.rows {
		if row.OrganizationID != orgID {
			continue
		}
		if row.Status == "borrador" && row.CreatedBy != filters.CallerID {
			continue
		}
		if filters.Status != "" && row.Status != filters.Status {
			continue
		}
		copied := *row
		result = append(result, &copied)
	}
	return result, int64(len(result)), nil
}

func (m *mockRepository) swap(row *prDatamodel.PaymentRequest, from, to string) error {
	if m.transitionError != nil {
		return m.transitionError
	}
	stored, ok := m.rows[row.ID]
	if !ok || stored.Status != from {
		return internal.ErrInvalidTransition
	}
	stored.Status = to
	stored.UpdatedAt = time.Now()
	return nil
}

func (m *mockRepository) Submit(row *prDatamodel.PaymentRequest, actorID int64) error {
	m.submitCalls++
	return m.swap(row, "borrador", "pendiente")
}

func (m *mockRepository) Approve(row *prDatamodel.PaymentRequest, actorID int64) error {
	m.approveCalls++
	if err := m.swap(row, "pendiente", "aprobado"); err != nil {
		return err
	}
	now := time.Now()
	stored := m.rows[row.ID]
	stored.ApprovedBy = &actorID
	stored.ApprovedAt = &now
	return nil
}

func (m *mockRepository) Reject(row *prDatamodel.PaymentRequest, actorID int64, comment string) error {
	m.rejectCalls++
	m.lastRejectComment = comment
	if err := m.swap(row, "pendiente", "rechazado"); err != nil {
		return err
	}
	now := time.Now()
	stored := m.rows[row.ID]
	stored.RejectedBy = &actorID
	stored.RejectedAt = &now
	stored.RejectionComment = &comment
	return nil
}

func (m *mockRepository) Execute(row *prDatamodel.PaymentRequest, actorID int64, proof string, comment *string) (int64, error) {
	m.executeCalls++
	m.lastProof = proof
	if err := m.swap(row, "aprobado", "ejecutado"); err != nil {
		return 0, err
	}
	now := time.Now()
	transactionID := int64(900)
	stored := m.rows[row.ID]
	stored.ExecutedBy = &actorID
	stored.ExecutedAt = &now
	stored.ExecutionComment = comment
	stored.ProofReference = &proof
	stored.TransactionID = &transactionID
	return transactionID, nil
}

type mockCategoryValidator struct {
	err error
}

func (m *mockCategoryValidator) ValidateExpenseCategory(orgID, categoryID int64) error {
	return m.err
}

var _ = Describe("PaymentRequest Service", func() {
	var (
		repo       *mockRepository
		categories *mockCategoryValidator
		service    *paymentrequest.Service
		ctx        context.Context

		delegado   *internal.Principal
		presidente *internal.Principal
		secretaria *internal.Principal
	)

	seed := func(status string, creatorID int64) *prDatamodel.PaymentRequest {
		row := &prDatamodel.PaymentRequest{
			ID:             repo.nextID,
			OrganizationID: 1,
			Amount:         50000,
			Description:    "Materiales para taller",
			Beneficiary:    "Libreria Central",
			Status:         status,
			CreatedBy:      creatorID,
			CreatedAt:      time.Now(),
			UpdatedAt:      time.Now(),
		}
		if status == "aprobado" || status == "ejecutado" {
			approver := int64(2)
			now := time.Now()
			row.ApprovedBy = &approver
			row.ApprovedAt = &now
		}
		repo.nextID++
		repo.rows[row.ID] = row
		return row
	}

	BeforeEach(func() {
		repo = newMockRepository()
		categories = &mockCategoryValidator{}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		bus := events.NewEventBus(logger)
		service = paymentrequest.NewService(repo, categories, bus, logger)
		ctx = context.Background()

		delegado = &internal.Principal{UserID: 10, OrganizationID: 1, Role: internal.RoleDelegado}
		presidente = &internal.Principal{UserID: 2, OrganizationID: 1, Role: internal.RolePresidente}
		secretaria = &internal.Principal{UserID: 3, OrganizationID: 1, Role: internal.RoleSecretaria}
	})

	Describe("Create", func() {
		It("creates a draft for a delegado", func() {
			req, err := service.Create(delegado, paymentrequest.CreateRequestDTO{
				Amount:      75000,
				Description: "Compra de pinturas",
				Beneficiary: "Arte y Color",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(req.Status).To(Equal(paymentrequest.StatusBorrador))
			Expect(req.CreatedBy).To(Equal(delegado.UserID))
		})

		It("rejects a secretaria", func() {
			_, err := service.Create(secretaria, paymentrequest.CreateRequestDTO{
				Amount:      75000,
				Description: "Compra de pinturas",
				Beneficiary: "Arte y Color",
			})
			Expect(err).To(MatchError(internal.ErrRoleNotAllowed))
		})

		It("rejects a non-positive amount", func() {
			_, err := service.Create(delegado, paymentrequest.CreateRequestDTO{
				Amount:      0,
				Description: "Compra de pinturas",
				Beneficiary: "Arte y Color",
			})
			var appErr *internal.AppError
			Expect(errors.As(err, &appErr)).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
		})

		It("rejects an invalid category", func() {
			categories.err = internal.ErrCategoryNotFound
			categoryID := int64(99)
			_, err := service.Create(delegado, paymentrequest.CreateRequestDTO{
				Amount:      75000,
				Description: "Compra de pinturas",
				Beneficiary: "Arte y Color",
				CategoryID:  &categoryID,
			})
			Expect(err).To(MatchError(internal.ErrCategoryNotFound))
		})
	})

	Describe("Get", func() {
		It("hides another user's draft", func() {
			row := seed("borrador", delegado.UserID)
			_, err := service.Get(presidente, row.ID)
			Expect(err).To(MatchError(internal.ErrRequestNotFound))
		})

		It("returns the creator's own draft", func() {
			row := seed("borrador", delegado.UserID)
			req, err := service.Get(delegado, row.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(req.ID).To(Equal(row.ID))
		})

		It("hides requests from other organizations", func() {
			row := seed("pendiente", delegado.UserID)
			otherOrg := &internal.Principal{UserID: 50, OrganizationID: 2, Role: internal.RolePresidente}
			_, err := service.Get(otherOrg, row.ID)
			Expect(err).To(MatchError(internal.ErrRequestNotFound))
		})
	})

	Describe("Update", func() {
		It("lets the creator edit a draft", func() {
			row := seed("borrador", delegado.UserID)
			amount := int64(99000)
			req, err := service.Update(delegado, row.ID, paymentrequest.UpdateRequestDTO{Amount: &amount})
			Expect(err).NotTo(HaveOccurred())
			Expect(req.Amount).To(Equal(amount))
		})

		It("rejects edits from anyone but the creator", func() {
			row := seed("borrador", delegado.UserID)
			amount := int64(99000)
			_, err := service.Update(presidente, row.ID, paymentrequest.UpdateRequestDTO{Amount: &amount})
			Expect(err).To(MatchError(internal.ErrNotCreator))
		})

		It("rejects edits once submitted", func() {
			row := seed("pendiente", delegado.UserID)
			amount := int64(99000)
			_, err := service.Update(delegado, row.ID, paymentrequest.UpdateRequestDTO{Amount: &amount})
			Expect(err).To(MatchError(internal.ErrCannotModify))
		})
	})

	Describe("Submit", func() {
		It("moves a draft to pendiente", func() {
			row := seed("borrador", delegado.UserID)
			req, err := service.Submit(ctx, delegado, row.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(req.Status).To(Equal(paymentrequest.StatusPendiente))
			Expect(repo.submitCalls).To(Equal(1))
		})

		It("rejects submission by a non-creator", func() {
			row := seed("borrador", delegado.UserID)
			otherDelegado := &internal.Principal{UserID: 77, OrganizationID: 1, Role: internal.RoleDelegado}
			_, err := service.Submit(ctx, otherDelegado, row.ID)
			Expect(err).To(MatchError(internal.ErrNotCreator))
		})

		It("conflicts when the request is already pendiente", func() {
			row := seed("pendiente", delegado.UserID)
			_, err := service.Submit(ctx, delegado, row.ID)
			Expect(err).To(MatchError(internal.ErrInvalidTransition))
			Expect(repo.submitCalls).To(BeZero())
		})
	})

	Describe("Approve", func() {
		It("lets a presidente approve a pending request", func() {
			row := seed("pendiente", delegado.UserID)
			req, err := service.Approve(ctx, presidente, row.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(req.Status).To(Equal(paymentrequest.StatusAprobado))
			Expect(*req.ApprovedBy).To(Equal(presidente.UserID))
		})

		It("forbids a delegado even on a pending request", func() {
			row := seed("pendiente", delegado.UserID)
			_, err := service.Approve(ctx, delegado, row.ID)
			Expect(err).To(MatchError(internal.ErrRoleNotAllowed))
			Expect(repo.approveCalls).To(BeZero())
		})

		It("conflicts on an already approved request", func() {
			row := seed("aprobado", delegado.UserID)
			_, err := service.Approve(ctx, presidente, row.ID)
			Expect(err).To(MatchError(internal.ErrInvalidTransition))
		})

		It("conflicts when the repository loses the status race", func() {
			row := seed("pendiente", delegado.UserID)
			repo.transitionError = internal.ErrInvalidTransition
			_, err := service.Approve(ctx, presidente, row.ID)
			Expect(err).To(MatchError(internal.ErrInvalidTransition))
		})
	})

	Describe("Reject", func() {
		It("requires a comment", func() {
			row := seed("pendiente", delegado.UserID)
			_, err := service.Reject(ctx, presidente, row.ID, paymentrequest.RejectRequestDTO{})
			var appErr *internal.AppError
			Expect(errors.As(err, &appErr)).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeMissingComment))
			Expect(repo.rejectCalls).To(BeZero())
		})

		It("records the comment", func() {
			row := seed("pendiente", delegado.UserID)
			req, err := service.Reject(ctx, presidente, row.ID,
				paymentrequest.RejectRequestDTO{Comment: "Falta cotización"})
			Expect(err).NotTo(HaveOccurred())
			Expect(req.Status).To(Equal(paymentrequest.StatusRechazado))
			Expect(repo.lastRejectComment).To(Equal("Falta cotización"))
		})

		It("forbids a secretaria", func() {
			row := seed("pendiente", delegado.UserID)
			_, err := service.Reject(ctx, secretaria, row.ID,
				paymentrequest.RejectRequestDTO{Comment: "no"})
			Expect(err).To(MatchError(internal.ErrRoleNotAllowed))
		})
	})

	Describe("Execute", func() {
		It("requires proof of payment", func() {
			row := seed("aprobado", delegado.UserID)
			_, err := service.Execute(ctx, secretaria, row.ID, paymentrequest.ExecuteRequestDTO{})
			var appErr *internal.AppError
			Expect(errors.As(err, &appErr)).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeMissingProof))
			Expect(repo.executeCalls).To(BeZero())
		})

		It("executes an approved request and links the ledger entry", func() {
			row := seed("aprobado", delegado.UserID)
			req, err := service.Execute(ctx, secretaria, row.ID,
				paymentrequest.ExecuteRequestDTO{ProofReference: "transfer-0012"})
			Expect(err).NotTo(HaveOccurred())
			Expect(req.Status).To(Equal(paymentrequest.StatusEjecutado))
			Expect(req.TransactionID).NotTo(BeNil())
			Expect(repo.lastProof).To(Equal("transfer-0012"))
		})

		It("forbids a presidente", func() {
			row := seed("aprobado", delegado.UserID)
			_, err := service.Execute(ctx, presidente, row.ID,
				paymentrequest.ExecuteRequestDTO{ProofReference: "transfer-0012"})
			Expect(err).To(MatchError(internal.ErrRoleNotAllowed))
		})

		It("conflicts on a pending request even for a secretaria", func() {
			row := seed("pendiente", delegado.UserID)
			_, err := service.Execute(ctx, secretaria, row.ID,
				paymentrequest.ExecuteRequestDTO{ProofReference: "transfer-0012"})
			Expect(err).To(MatchError(internal.ErrInvalidTransition))
		})

		It("conflicts on an already executed request", func() {
			row := seed("ejecutado", delegado.UserID)
			executor := int64(3)
			now := time.Now()
			proof := "transfer-0001"
			transactionID := int64(900)
			stored := repo.rows[row.ID]
			stored.ExecutedBy = &executor
			stored.ExecutedAt = &now
			stored.ProofReference = &proof
			stored.TransactionID = &transactionID

			_, err := service.Execute(ctx, secretaria, row.ID,
				paymentrequest.ExecuteRequestDTO{ProofReference: "transfer-0002"})
			Expect(err).To(MatchError(internal.ErrInvalidTransition))
		})
	})

	Describe("List", func() {
		It("hides other users' drafts but shows submitted requests", func() {
			seed("borrador", delegado.UserID)
			seed("pendiente", delegado.UserID)

			resp, err := service.List(presidente, paymentrequest.ListFilters{})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Total).To(Equal(int64(1)))
			Expect(resp.Requests[0].Status).To(Equal(paymentrequest.StatusPendiente))
		})
	})
})
