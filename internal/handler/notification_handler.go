package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-classroom-api/internal/dto"
	"github.com/noah-isme/sma-classroom-api/internal/models"
	"github.com/noah-isme/sma-classroom-api/pkg/response"
)

type notificationService interface {
	List(ctx context.Context, actor *models.Identity, query dto.ListNotificationsQuery) ([]models.Notification, error)
	MarkRead(ctx context.Context, actor *models.Identity, id string) error
}

// NotificationHandler serves the caller's inbox.
type NotificationHandler struct {
	service notificationService
}

// NewNotificationHandler constructs a notification handler.
func NewNotificationHandler(svc notificationService) *NotificationHandler {
	return &NotificationHandler{service: svc}
}

// List godoc
// @Summary List notifications
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param unreadOnly query bool false "Only unread"
// @Success 200 {object} response.Envelope
// @Router /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		return
	}
	var query dto.ListNotificationsQuery
	if !bind(c, &query) {
		return
	}
	items, err := h.service.List(c.Request.Context(), identity, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// MarkRead godoc
// @Summary Mark notification read
// @Tags Notifications
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /notifications/{id}/read [patch]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	identity, ok := identityFromContext(c)
	if !ok {
		return
	}
	var param dto.IDParam
	if !bind(c, &param) {
		return
	}
	if err := h.service.MarkRead(c.Request.Context(), identity, param.ID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
