package notification_test

import (
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tesoreria-cl/tesoreria/internal"
	notifDatamodel "github.com/tesoreria-cl/tesoreria/internal/core/datamodel/notification"
	"github.com/tesoreria-cl/tesoreria/internal/notification"
)

func TestNotificationService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Notification Service Suite")
}

type mockRepository struct {
	rows          map[int64]*notifDatamodel.Notification
	nextID        int64
	markReadCalls []int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{rows: make(map[int64]*notifDatamodel.Notification), nextID: 1}
}

func (m *mockRepository) add(orgID, userID int64, read bool) *notifDatamodel.Notification {
	row := &notifDatamodel.Notification{
		ID:             m.nextID,
		OrganizationID: orgID,
		UserID:         userID,
		Type:           "solicitud_creada",
		Title:          "Nueva solicitud de pago",
		Message:        "Solicitud pendiente de aprobación",
		IsRead:         read,
	}
	m.nextID++
	m.rows[row.ID] = row
	return row
}

func (m *mockRepository) GetByID(orgID, id int64) (*notifDatamodel.Notification, error) {
	row, ok := m.rows[id]
	if !ok || row.OrganizationID != orgID {
		return nil, internal.ErrNotificationNotFound
	}
	return row, nil
}

func (m *mockRepository) List(orgID, userID int64, filters notification.ListFilters) ([]*notifDatamodel.Notification, int64, error) {
	var rows []*notifDatamodel.Notification
	for _, row := range m.rows {
		if row.OrganizationID != orgID || row.UserID != userID {
			continue
		}
		if filters.IsRead != nil && row.IsRead != *filters.IsRead {
			continue
		}
		rows = append(rows, row)
	}
	return rows, int64(len(rows)), nil
}

func (m *mockRepository) UnreadCount(orgID, userID int64) (int64, error) {
	var count int64
	for _, row := range m.rows {
		if row.OrganizationID == orgID && row.UserID == userID && !row.IsRead {
			count++
		}
	}
	return count, nil
}

func (m *mockRepository) MarkRead(id int64) error {
	m.markReadCalls = append(m.markReadCalls, id)
	m.rows[id].IsRead = true
	return nil
}

func (m *mockRepository) MarkAllRead(orgID, userID int64) (int64, error) {
	var updated int64
	for _, row := range m.rows {
		if row.OrganizationID == orgID && row.UserID == userID && !row.IsRead {
			row.IsRead = true
			updated++
		}
	}
	return updated, nil
}

var _ = Describe("NotificationService", func() {
	var (
		repo    *mockRepository
		service *notification.Service
	)

	const orgID = int64(1)

	presidente := &internal.Principal{UserID: 20, OrganizationID: orgID, Role: internal.RolePresidente}

	BeforeEach(func() {
		repo = newMockRepository()
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		service = notification.NewService(repo, logger)
	})

	Describe("List", func() {
		It("returns only the caller's inbox", func() {
			repo.add(orgID, presidente.UserID, false)
			repo.add(orgID, 30, false)

			response, err := service.List(presidente, notification.ListFilters{})
			Expect(err).NotTo(HaveOccurred())
			Expect(response.Total).To(Equal(int64(1)))
		})

		It("filters to unread when asked", func() {
			repo.add(orgID, presidente.UserID, true)
			repo.add(orgID, presidente.UserID, false)

			unread := false
			response, err := service.List(presidente, notification.ListFilters{IsRead: &unread})
			Expect(err).NotTo(HaveOccurred())
			Expect(response.Total).To(Equal(int64(1)))
			Expect(response.Notifications[0].IsRead).To(BeFalse())
		})
	})

	Describe("UnreadCount", func() {
		It("counts only unread rows", func() {
			repo.add(orgID, presidente.UserID, true)
			repo.add(orgID, presidente.UserID, false)
			repo.add(orgID, presidente.UserID, false)

			count, err := service.UnreadCount(presidente)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(2)))
		})
	})

	Describe("MarkRead", func() {
		It("marks the caller's notification", func() {
			row := repo.add(orgID, presidente.UserID, false)

			Expect(service.MarkRead(presidente, row.ID)).To(Succeed())
			Expect(repo.markReadCalls).To(Equal([]int64{row.ID}))
		})

		It("rejects a notification owned by another user", func() {
			row := repo.add(orgID, 30, false)

			err := service.MarkRead(presidente, row.ID)
			Expect(err).To(MatchError(internal.ErrNotRecipient))
			Expect(repo.markReadCalls).To(BeEmpty())
		})

		It("reads cross-organization rows as absent", func() {
			row := repo.add(2, presidente.UserID, false)

			err := service.MarkRead(presidente, row.ID)
			Expect(err).To(MatchError(internal.ErrNotificationNotFound))
		})
	})

	Describe("MarkAllRead", func() {
		It("flips every unread row for the caller", func() {
			repo.add(orgID, presidente.UserID, false)
			repo.add(orgID, presidente.UserID, false)
			repo.add(orgID, 30, false)

			updated, err := service.MarkAllRead(presidente)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated).To(Equal(int64(2)))

			count, err := service.UnreadCount(presidente)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(0)))
		})
	})
})
