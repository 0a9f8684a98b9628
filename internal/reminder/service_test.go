package reminder_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	prDatamodel "github.com/tesoreria-cl/tesoreria/internal/core/datamodel/paymentrequest"
	"github.com/tesoreria-cl/tesoreria/internal/core/events"
	"github.com/tesoreria-cl/tesoreria/internal/reminder"
)

func TestReminderService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Reminder Service Suite")
}

type mockRepository struct {
	aged        []*prDatamodel.PaymentRequest
	agedError   error
	createError map[int64]error
	skipped     map[int64]bool
	createCalls []int64
}

func (m *mockRepository) AgedPending(olderThan time.Time) ([]*prDatamodel.PaymentRequest, error) {
	if m.agedError != nil {
		return nil, m.agedError
	}
	return m.aged, nil
}

func (m *mockRepository) CreateReminderIfPending(row *prDatamodel.PaymentRequest) (bool, int, error) {
	m.createCalls = append(m.createCalls, row.ID)
	if err := m.createError[row.ID]; err != nil {
		return false, 0, err
	}
	if m.skipped[row.ID] {
		return false, 0, nil
	}
	return true, 2, nil
}

var _ = Describe("ReminderService", func() {
	var (
		repo    *mockRepository
		service *reminder.Service
		ctx     context.Context
	)

	pending := func(id int64) *prDatamodel.PaymentRequest {
		return &prDatamodel.PaymentRequest{
			ID:             id,
			OrganizationID: 1,
			Status:         "pendiente",
			Beneficiary:    "Libreria Central",
			Amount:         45000,
		}
	}

	BeforeEach(func() {
		repo = &mockRepository{
			createError: make(map[int64]error),
			skipped:     make(map[int64]bool),
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		service = reminder.NewService(repo, events.NewEventBus(logger), 72*time.Hour, logger)
		ctx = context.Background()
	})

	Describe("Sweep", func() {
		It("reminds every aged request", func() {
			repo.aged = []*prDatamodel.PaymentRequest{pending(1), pending(2)}

			result, err := service.Sweep(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Scanned).To(Equal(2))
			Expect(result.RemindersCreated).To(Equal(2))
			Expect(result.Failures).To(Equal(0))
			Expect(repo.createCalls).To(Equal([]int64{1, 2}))
		})

		It("counts skipped requests as neither created nor failed", func() {
			repo.aged = []*prDatamodel.PaymentRequest{pending(1), pending(2)}
			repo.skipped[2] = true

			result, err := service.Sweep(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Scanned).To(Equal(2))
			Expect(result.RemindersCreated).To(Equal(1))
			Expect(result.Failures).To(Equal(0))
		})

		It("keeps sweeping past a failing request", func() {
			repo.aged = []*prDatamodel.PaymentRequest{pending(1), pending(2), pending(3)}
			repo.createError[2] = errors.New("connection reset")

			result, err := service.Sweep(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.RemindersCreated).To(Equal(2))
			Expect(result.Failures).To(Equal(1))
			Expect(repo.createCalls).To(HaveLen(3))
		})

		It("fails the sweep when the listing itself fails", func() {
			repo.agedError = errors.New("connection refused")

			result, err := service.Sweep(ctx)
			Expect(err).To(HaveOccurred())
			Expect(result).To(BeNil())
			Expect(repo.createCalls).To(BeEmpty())
		})

		It("does nothing when no request has aged out", func() {
			result, err := service.Sweep(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Scanned).To(Equal(0))
			Expect(result.RemindersCreated).To(Equal(0))
		})
	})
})
