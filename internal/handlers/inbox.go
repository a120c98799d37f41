package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/orlovm/bidmarket/internal/auth"
	"github.com/orlovm/bidmarket/internal/notifications"
	"github.com/orlovm/bidmarket/internal/services"
	"github.com/orlovm/bidmarket/pkg/errors"
	"github.com/orlovm/bidmarket/pkg/response"
)

// InboxHandler exposes the provider-facing aggregated request inbox.
type InboxHandler struct {
	service *services.InboxService
}

// NewInboxHandler constructs an inbox handler with its service stack.
func NewInboxHandler(db *gorm.DB, dispatcher *notifications.Dispatcher) (*InboxHandler, error) {
	matching, err := services.NewMatchingService(db, dispatcher)
	if err != nil {
		return nil, err
	}
	requests, err := services.NewRequestService(db, matching)
	if err != nil {
		return nil, err
	}
	service, err := services.NewInboxService(db, requests)
	if err != nil {
		return nil, err
	}
	return &InboxHandler{service: service}, nil
}

// List returns the aggregated inbox for the authenticated provider.
func (h *InboxHandler) List(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	items, err := h.service.ClientRequestsForProvider(requestContext(c), session)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, items)
}

// UnreadCount returns how many inbox entries still hold unread alerts.
func (h *InboxHandler) UnreadCount(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	count, err := h.service.UnreadCount(requestContext(c), session)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"unread": count})
}

// MarkRead marks all of the provider's alerts for a request as read.
func (h *InboxHandler) MarkRead(c *gin.Context) {
	h.mark(c, h.service.MarkAlertsAsRead)
}

// MarkSeen marks all of the provider's alerts for a request as seen.
func (h *InboxHandler) MarkSeen(c *gin.Context) {
	h.mark(c, h.service.MarkAlertsAsSeen)
}

// Services returns the provider's services alerted for this request.
func (h *InboxHandler) Services(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	requestID := strings.TrimSpace(c.Param("requestId"))
	items, err := h.service.ServicesForRequest(requestContext(c), session, requestID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, items)
}

func (h *InboxHandler) mark(c *gin.Context, apply func(context.Context, auth.Session, string, string) error) {
	session, ok := sessionFrom(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	requestID := strings.TrimSpace(c.Param("requestId"))
	if requestID == "" {
		response.Error(c, errors.NewBadRequest("request id is required"))
		return
	}

	// Callers may target an explicit provider id; it defaults to their own.
	providerID := strings.TrimSpace(c.Query("provider_id"))
	if providerID == "" {
		providerID = session.ProviderID
	}

	if err := apply(requestContext(c), session, providerID, requestID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"updated": true})
}
