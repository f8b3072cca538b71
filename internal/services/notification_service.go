package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "plutoa/internal/errors"
	"plutoa/internal/models"
	"plutoa/internal/pagination"
)

// notificationService is the notification store. Rows are append-only;
// only the read flag changes after creation. Deletes are hard deletes so a
// removed alert frees its dedupe slot.
type notificationService struct {
	db *gorm.DB
}

// NewNotificationService creates a new NotificationServicer.
func NewNotificationService(db *gorm.DB) NotificationServicer {
	return &notificationService{db: db}
}

// Create persists a notification.
func (s *notificationService) Create(notification *models.Notification) error {
	if err := s.db.Create(notification).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetUserNotifications returns a paginated list of the user's notifications,
// newest first, optionally restricted to unread ones.
func (s *notificationService) GetUserNotifications(
	userID uint,
	page pagination.PageRequest,
	unreadOnly bool,
) (*pagination.PageResponse[models.Notification], error) {
	page.Defaults()

	base := s.db.Model(&models.Notification{}).Where("user_id = ?", userID)
	if unreadOnly {
		base = base.Where("is_read = ?", false)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var notifications []models.Notification
	err := base.Scopes(pagination.Paginate(page)).
		Order("created_at DESC, id DESC").
		Find(&notifications).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(notifications, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// MarkAsRead marks one notification as read.
func (s *notificationService) MarkAsRead(userID, notificationID uint) (*models.Notification, error) {
	notification, err := s.getByID(userID, notificationID)
	if err != nil {
		return nil, err
	}

	if !notification.IsRead {
		if err := s.db.Model(notification).Update("is_read", true).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return notification, nil
}

// MarkAllAsRead marks every unread notification of the user as read and
// returns how many rows changed.
func (s *notificationService) MarkAllAsRead(userID uint) (int64, error) {
	result := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	if result.Error != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	return result.RowsAffected, nil
}

// UnreadCount returns the number of unread notifications.
func (s *notificationService) UnreadCount(userID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count, nil
}

// DeleteNotification removes a notification outright. Hard delete: a
// soft-deleted budget alert would keep occupying its dedupe slot and
// suppress future alerts for the same threshold.
func (s *notificationService) DeleteNotification(userID, notificationID uint) error {
	notification, err := s.getByID(userID, notificationID)
	if err != nil {
		return err
	}

	if err := s.db.Unscoped().Delete(notification).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (s *notificationService) getByID(userID, notificationID uint) (*models.Notification, error) {
	var notification models.Notification
	if err := s.db.Where("id = ? AND user_id = ?", notificationID, userID).First(&notification).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotificationNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &notification, nil
}
