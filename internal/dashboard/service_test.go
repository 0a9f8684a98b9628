package dashboard_test

import (
	"errors"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tesoreria-cl/tesoreria/internal"
	"github.com/tesoreria-cl/tesoreria/internal/dashboard"
)

func TestDashboardService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Dashboard Service Suite")
}

type mockRepository struct {
	ingresos        int64
	egresos         int64
	countsByStatus  map[string]int64
	totalsError     error
	requestedMonths int
}

func (m *mockRepository) Totals(orgID int64) (int64, int64, error) {
	if m.totalsError != nil {
		return 0, 0, m.totalsError
	}
	return m.ingresos, m.egresos, nil
}

func (m *mockRepository) CountRequestsByStatus(orgID int64, status string) (int64, error) {
	return m.countsByStatus[status], nil
}

func (m *mockRepository) MonthlyTotals(orgID int64, months int) ([]dashboard.MonthlyTotal, error) {
	m.requestedMonths = months
	return make([]dashboard.MonthlyTotal, months), nil
}

var _ = Describe("DashboardService", func() {
	var (
		repo    *mockRepository
		service *dashboard.Service
	)

	presidente := &internal.Principal{UserID: 20, OrganizationID: 1, Role: internal.RolePresidente}

	BeforeEach(func() {
		repo = &mockRepository{countsByStatus: make(map[string]int64)}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		service = dashboard.NewService(repo, logger)
	})

	Describe("Summary", func() {
		It("reports the balance and the pending queues", func() {
			repo.ingresos = 300000
			repo.egresos = 120000
			repo.countsByStatus["pendiente"] = 3
			repo.countsByStatus["aprobado"] = 1

			summary, err := service.Summary(presidente)
			Expect(err).NotTo(HaveOccurred())
			Expect(summary.Balance).To(Equal(int64(180000)))
			Expect(summary.TotalIngresos).To(Equal(int64(300000)))
			Expect(summary.TotalEgresos).To(Equal(int64(120000)))
			Expect(summary.PendingApproval).To(Equal(int64(3)))
			Expect(summary.PendingExecution).To(Equal(int64(1)))
		})

		It("reports a negative balance when expenses exceed income", func() {
			repo.ingresos = 50000
			repo.egresos = 80000

			summary, err := service.Summary(presidente)
			Expect(err).NotTo(HaveOccurred())
			Expect(summary.Balance).To(Equal(int64(-30000)))
		})

		It("propagates storage failures", func() {
			repo.totalsError = errors.New("connection refused")

			_, err := service.Summary(presidente)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Monthly", func() {
		It("defaults to twelve months", func() {
			_, err := service.Monthly(presidente, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.requestedMonths).To(Equal(12))
		})

		It("falls back to twelve months for an oversized window", func() {
			_, err := service.Monthly(presidente, 60)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.requestedMonths).To(Equal(12))
		})

		It("honors a window inside the cap", func() {
			_, err := service.Monthly(presidente, 6)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.requestedMonths).To(Equal(6))
		})
	})
})
