package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/orlovm/bidmarket/internal/services"
	"github.com/orlovm/bidmarket/pkg/errors"
	"github.com/orlovm/bidmarket/pkg/response"
)

// NotificationHandler exposes HTTP endpoints for persisted notifications.
type NotificationHandler struct {
	service *services.NotificationService
}

// NewNotificationHandler constructs a notification handler.
func NewNotificationHandler(db *gorm.DB) (*NotificationHandler, error) {
	service, err := services.NewNotificationService(db)
	if err != nil {
		return nil, err
	}
	return &NotificationHandler{service: service}, nil
}

// List returns notifications for the current account.
func (h *NotificationHandler) List(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	items, err := h.service.ListForClient(requestContext(c), services.ListNotificationsInput{
		ClientID: session.UserID,
		Limit:    parseIntQuery(c, "limit", 25),
		Offset:   parseIntQuery(c, "offset", 0),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, items)
}

// MarkRead toggles a notification to read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	id := strings.TrimSpace(c.Param("id"))
	dto, err := h.service.MarkRead(requestContext(c), session.UserID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, dto)
}
