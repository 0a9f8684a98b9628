package postgres

import (
	"time"

	"github.com/tesoreria-cl/tesoreria/internal"
	notifDatamodel "github.com/tesoreria-cl/tesoreria/internal/core/datamodel/notification"
	prDatamodel "github.com/tesoreria-cl/tesoreria/internal/core/datamodel/paymentrequest"
	userDatamodel "github.com/tesoreria-cl/tesoreria/internal/core/datamodel/user"
	"github.com/tesoreria-cl/tesoreria/internal/notification"
	"github.com/tesoreria-cl/tesoreria/internal/paymentrequest"
	"github.com/tesoreria-cl/tesoreria/internal/reminder"
	"gorm.io/gorm"
)

type ReminderRepository struct {
	db *gorm.DB
}

func NewReminderRepository(db *gorm.DB) reminder.Repository {
	return &ReminderRepository{db: db}
}

// AgedPending lists pendiente requests across all organizations whose
// submission is older than the cutoff. updated_at tracks the last
// transition, which for pendiente is the submit.
func (r *ReminderRepository) AgedPending(olderThan time.Time) ([]*prDatamodel.PaymentRequest, error) {
	var rows []*prDatamodel.PaymentRequest
	err := r.db.Where("status = ? AND updated_at < ?",
		string(paymentrequest.StatusPendiente), olderThan).
		Order("updated_at ASC").
		Find(&rows).Error
	return rows, err
}

// CreateReminderIfPending re-checks state inside the insert transaction so a
// sweep racing an approval, or a second sweep, never double-reminds.
func (r *ReminderRepository) CreateReminderIfPending(row *prDatamodel.PaymentRequest) (bool, int, error) {
	created := false
	recipients := 0

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var current prDatamodel.PaymentRequest
		if err := tx.Where("id = ?", row.ID).First(&current).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil
			}
			return err
		}
		if current.Status != string(paymentrequest.StatusPendiente) {
			return nil
		}

		var unread int64
		err := tx.Model(&notifDatamodel.Notification{}).
			Where("organization_id = ? AND type = ? AND reference_type = ? AND reference_id = ? AND is_read = false",
				row.OrganizationID,
				string(notification.TypeRecordatorio),
				notification.ReferencePaymentRequest,
				row.ID).
			Count(&unread).Error
		if err != nil {
			return err
		}
		if unread > 0 {
			return nil
		}

		var ids []int64
		err = tx.Model(&userDatamodel.User{}).
			Where("organization_id = ? AND role = ? AND is_active = true",
				row.OrganizationID, string(internal.RolePresidente)).
			Pluck("id", &ids).Error
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		fanOut := notification.ReminderFanOut(row.OrganizationID, row.ID, current.Beneficiary, current.Amount, ids)
		if err := tx.Create(fanOut).Error; err != nil {
			return err
		}

		created = true
		recipients = len(ids)
		return nil
	})
	if err != nil {
		return false, 0, err
	}
	return created, recipients, nil
}
