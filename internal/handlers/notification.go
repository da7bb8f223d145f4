// internal/handlers/notification.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/license-console/internal/services"
	"github.com/javajoker/license-console/internal/utils"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

// GetNotifications lists command outcomes, newest first.
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	var filter services.NotificationFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		utils.BadRequestResponse(c, "Invalid query parameters", err.Error())
		return
	}

	if err := utils.ValidateStruct(filter); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	notifications, err := h.notificationService.List(c.Request.Context(), filter)
	if err != nil {
		logrus.WithError(err).Error("Failed to list notifications")
		utils.InternalErrorResponse(c, "Failed to list notifications")
		return
	}

	utils.SuccessResponse(c, notifications)
}

func (h *NotificationHandler) GetLatestNotification(c *gin.Context) {
	latest, ok := h.notificationService.Latest()
	if !ok {
		utils.SuccessResponse(c, nil)
		return
	}
	utils.SuccessResponse(c, latest)
}
