package postgres

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	prDatamodel "github.com/tesoreria-cl/tesoreria/internal/core/datamodel/paymentrequest"
	"github.com/tesoreria-cl/tesoreria/internal/reminder"
)

func TestReminderRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Reminder Repository Suite")
}

// SQLite mirrors of the datamodels, without postgres-only column defaults.

type SQLiteUser struct {
	ID             int64  `gorm:"primaryKey"`
	OrganizationID int64  `gorm:"column:organization_id;not null"`
	Email          string `gorm:"not null"`
	PasswordHash   string `gorm:"column:password_hash;not null"`
	Name           string `gorm:"not null"`
	Role           string `gorm:"not null"`
	IsActive       bool   `gorm:"column:is_active"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (SQLiteUser) TableName() string { return "users" }

type SQLitePaymentRequest struct {
	ID             int64  `gorm:"primaryKey"`
	OrganizationID int64  `gorm:"column:organization_id;not null"`
	Amount         int64  `gorm:"not null"`
	Description    string `gorm:"not null"`
	Beneficiary    string `gorm:"not null"`
	CategoryID     *int64 `gorm:"column:category_id"`
	Status         string `gorm:"not null"`
	CreatedBy      int64  `gorm:"column:created_by;not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (SQLitePaymentRequest) TableName() string { return "payment_requests" }

type SQLiteNotification struct {
	ID             int64  `gorm:"primaryKey"`
	OrganizationID int64  `gorm:"column:organization_id;not null"`
	UserID         int64  `gorm:"column:user_id;not null"`
	Type           string `gorm:"not null"`
	Title          string `gorm:"not null"`
	Message        string `gorm:"not null"`
	ReferenceType  string `gorm:"column:reference_type"`
	ReferenceID    int64  `gorm:"column:reference_id"`
	IsRead         bool   `gorm:"column:is_read"`
	CreatedAt      time.Time
}

func (SQLiteNotification) TableName() string { return "notifications" }

var _ = Describe("ReminderRepository", func() {
	var (
		db   *gorm.DB
		repo reminder.Repository
	)

	const orgID = int64(1)

	seedPresidente := func(id int64, active bool) {
		Expect(db.Create(&SQLiteUser{
			ID: id, OrganizationID: orgID, Email: "p@demo.cl", PasswordHash: "x",
			Name: "Presidenta", Role: "presidente", IsActive: active,
		}).Error).To(Succeed())
	}

	seedPending := func(age time.Duration) *prDatamodel.PaymentRequest {
		row := &prDatamodel.PaymentRequest{
			OrganizationID: orgID,
			Amount:         45000,
			Description:    "Materiales de arte",
			Beneficiary:    "Libreria Central",
			Status:         "pendiente",
			CreatedBy:      10,
			CreatedAt:      time.Now().Add(-age),
			UpdatedAt:      time.Now().Add(-age),
		}
		Expect(db.Create(row).Error).To(Succeed())
		return row
	}

	reminderCount := func(requestID int64) int64 {
		var count int64
		Expect(db.Model(&SQLiteNotification{}).
			Where("type = ? AND reference_id = ?", "recordatorio", requestID).
			Count(&count).Error).To(Succeed())
		return count
	}

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(&SQLiteUser{}, &SQLitePaymentRequest{}, &SQLiteNotification{})).To(Succeed())
		repo = NewReminderRepository(db)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	Describe("AgedPending", func() {
		It("returns only pendiente rows older than the cutoff", func() {
			aged := seedPending(80 * time.Hour)
			seedPending(1 * time.Hour)

			stale := seedPending(80 * time.Hour)
			Expect(db.Model(&SQLitePaymentRequest{}).
				Where("id = ?", stale.ID).
				Update("status", "aprobado").Error).To(Succeed())

			rows, err := repo.AgedPending(time.Now().Add(-72 * time.Hour))
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(1))
			Expect(rows[0].ID).To(Equal(aged.ID))
		})
	})

	Describe("CreateReminderIfPending", func() {
		It("fans out to active presidentes", func() {
			seedPresidente(20, true)
			seedPresidente(21, true)
			seedPresidente(22, false)
			row := seedPending(80 * time.Hour)

			created, recipients, err := repo.CreateReminderIfPending(row)
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeTrue())
			Expect(recipients).To(Equal(2))
			Expect(reminderCount(row.ID)).To(Equal(int64(2)))
		})

		It("does not double-remind while a reminder is unread", func() {
			seedPresidente(20, true)
			row := seedPending(80 * time.Hour)

			created, _, err := repo.CreateReminderIfPending(row)
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeTrue())

			created, _, err = repo.CreateReminderIfPending(row)
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeFalse())
			Expect(reminderCount(row.ID)).To(Equal(int64(1)))
		})

		It("reminds again once the earlier reminder was read", func() {
			seedPresidente(20, true)
			row := seedPending(80 * time.Hour)

			created, _, err := repo.CreateReminderIfPending(row)
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeTrue())

			Expect(db.Model(&SQLiteNotification{}).
				Where("reference_id = ?", row.ID).
				Update("is_read", true).Error).To(Succeed())

			created, _, err = repo.CreateReminderIfPending(row)
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeTrue())
			Expect(reminderCount(row.ID)).To(Equal(int64(2)))
		})

		It("skips a request that was approved between listing and reminding", func() {
			seedPresidente(20, true)
			row := seedPending(80 * time.Hour)
			Expect(db.Model(&SQLitePaymentRequest{}).
				Where("id = ?", row.ID).
				Update("status", "aprobado").Error).To(Succeed())

			created, _, err := repo.CreateReminderIfPending(row)
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeFalse())
			Expect(reminderCount(row.ID)).To(Equal(int64(0)))
		})

		It("skips when the organization has no active presidente", func() {
			seedPresidente(22, false)
			row := seedPending(80 * time.Hour)

			created, _, err := repo.CreateReminderIfPending(row)
			Expect(err).NotTo(HaveOccurred())
			Expect(created).To(BeFalse())
			Expect(reminderCount(row.ID)).To(Equal(int64(0)))
		})
	})
})
