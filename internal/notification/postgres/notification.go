package postgres

import (
	"github.com/tesoreria-cl/tesoreria/internal"
	notifDatamodel "github.com/tesoreria-cl/tesoreria/internal/core/datamodel/notification"
	"github.com/tesoreria-cl/tesoreria/internal/notification"
	"gorm.io/gorm"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) notification.Repository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) GetByID(orgID, id int64) (*notifDatamodel.Notification, error) {
	var row notifDatamodel.Notification
	err := r.db.Where("id = ? AND organization_id = ?", id, orgID).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrNotificationNotFound
		}
		return nil, err
	}
	return &row, nil
}

func (r *NotificationRepository) List(orgID, userID int64, filters notification.ListFilters) ([]*notifDatamodel.Notification, int64, error) {
	query := r.db.Model(&notifDatamodel.Notification{}).
		Where("organization_id = ? AND user_id = ?", orgID, userID)

	if filters.IsRead != nil {
		query = query.Where("is_read = ?", *filters.IsRead)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*notifDatamodel.Notification
	err := query.Order("created_at DESC").
		Limit(filters.Limit).
		Offset(filters.Offset).
		Find(&rows).Error
	return rows, total, err
}

func (r *NotificationRepository) UnreadCount(orgID, userID int64) (int64, error) {
	var count int64
	err := r.db.Model(&notifDatamodel.Notification{}).
		Where("organization_id = ? AND user_id = ? AND is_read = false", orgID, userID).
		Count(&count).Error
	return count, err
}

func (r *NotificationRepository) MarkRead(id int64) error {
	return r.db.Model(&notifDatamodel.Notification{}).
		Where("id = ?", id).
		Update("is_read", true).Error
}

func (r *NotificationRepository) MarkAllRead(orgID, userID int64) (int64, error) {
	result := r.db.Model(&notifDatamodel.Notification{}).
		Where("organization_id = ? AND user_id = ? AND is_read = false", orgID, userID).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}
