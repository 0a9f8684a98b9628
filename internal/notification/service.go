package notification

import (
	"log/slog"

	"github.com/tesoreria-cl/tesoreria/internal"
	notifDatamodel "github.com/tesoreria-cl/tesoreria/internal/core/datamodel/notification"
)

type Repository interface {
	GetByID(orgID, id int64) (*notifDatamodel.Notification, error)
	List(orgID, userID int64, filters ListFilters) ([]*notifDatamodel.Notification, int64, error)
	UnreadCount(orgID, userID int64) (int64, error)
	MarkRead(id int64) error
	MarkAllRead(orgID, userID int64) (int64, error)
}

// Service owns the per-user inbox read and mutate paths. Fan-out writes do
// not go through here; they are inserted inside lifecycle transactions so
// they commit atomically with the state change that caused them.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) List(p *internal.Principal, filters ListFilters) (*ListResponse, error) {
	filters.Normalize()

	rows, total, err := s.repo.List(p.OrganizationID, p.UserID, filters)
	if err != nil {
		s.logger.Error("failed to list notifications", "error", err, "user_id", p.UserID)
		return nil, err
	}

	return &ListResponse{
		Notifications: FromDataModelSlice(rows),
		Total:         total,
		Limit:         filters.Limit,
		Offset:        filters.Offset,
	}, nil
}

func (s *Service) UnreadCount(p *internal.Principal) (int64, error) {
	count, err := s.repo.UnreadCount(p.OrganizationID, p.UserID)
	if err != nil {
		s.logger.Error("failed to count unread notifications", "error", err, "user_id", p.UserID)
		return 0, err
	}
	return count, nil
}

// MarkRead flips is_read on a single notification. Rows belonging to another
// user are rejected; rows in another organization read as absent.
func (s *Service) MarkRead(p *internal.Principal, notificationID int64) error {
	row, err := s.repo.GetByID(p.OrganizationID, notificationID)
	if err != nil {
		return internal.ErrNotificationNotFound
	}

	if row.UserID != p.UserID {
		s.logger.Warn("mark read denied: notification owned by another user",
			"notification_id", notificationID,
			"owner_id", row.UserID,
			"caller_id", p.UserID)
		return internal.ErrNotRecipient
	}

	if err := s.repo.MarkRead(notificationID); err != nil {
		s.logger.Error("failed to mark notification read", "error", err, "notification_id", notificationID)
		return err
	}

	return nil
}

func (s *Service) MarkAllRead(p *internal.Principal) (int64, error) {
	updated, err := s.repo.MarkAllRead(p.OrganizationID, p.UserID)
	if err != nil {
		s.logger.Error("failed to mark all notifications read", "error", err, "user_id", p.UserID)
		return 0, err
	}

	s.logger.Info("marked notifications read", "user_id", p.UserID, "updated", updated)
	return updated, nil
}
