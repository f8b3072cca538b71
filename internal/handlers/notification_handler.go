package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "plutoa/internal/errors"
	"plutoa/internal/pagination"
	"plutoa/internal/services"
)

// NotificationHandler handles notification-related requests.
type NotificationHandler struct {
	notificationService services.NotificationServicer
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notificationService services.NotificationServicer) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// GetNotifications handles listing notifications for the authenticated user.
// @Summary     Get notifications
// @Description Get a paginated list of notifications, newest first
// @Tags        notifications
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       unread_only query bool false "Only unread notifications"
// @Param       page        query int  false "Page number (default 1)"
// @Param       page_size   query int  false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Notification] "Paginated notifications"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /notifications [get]
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	unreadOnly := c.Query("unread_only") == "true"

	result, err := h.notificationService.GetUserNotifications(userID, page, unreadOnly)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetUnreadCount returns the number of unread notifications.
// @Summary     Get unread count
// @Description Get the number of unread notifications
// @Tags        notifications
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]int64 "Unread count"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /notifications/unread-count [get]
func (h *NotificationHandler) GetUnreadCount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	count, err := h.notificationService.UnreadCount(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"unread_count": count})
}

// MarkAsRead marks one notification as read.
// @Summary     Mark notification as read
// @Description Mark a single notification as read
// @Tags        notifications
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Notification ID"
// @Success     200 {object} models.Notification "Updated notification"
// @Failure     400 {object} ErrorResponse "Invalid notification ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Notification not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /notifications/{id}/read [post]
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	notificationID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	notification, err := h.notificationService.MarkAsRead(userID, notificationID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notification": notification})
}

// MarkAllAsRead marks all notifications of the user as read.
// @Summary     Mark all notifications as read
// @Description Mark every unread notification of the user as read
// @Tags        notifications
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]int64 "Number of notifications marked"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /notifications/read-all [post]
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	affected, err := h.notificationService.MarkAllAsRead(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"marked": affected})
}

// DeleteNotification handles deleting a notification.
// @Summary     Delete notification
// @Description Delete a notification outright; a deleted budget alert can fire again
// @Tags        notifications
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Notification ID"
// @Success     204 "Notification deleted"
// @Failure     400 {object} ErrorResponse "Invalid notification ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Notification not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /notifications/{id} [delete]
func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	notificationID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.notificationService.DeleteNotification(userID, notificationID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
