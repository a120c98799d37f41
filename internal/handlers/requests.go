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

// RequestHandler exposes HTTP endpoints for client requests.
type RequestHandler struct {
	service *services.RequestService
}

// NewRequestHandler constructs a request handler with its service stack.
func NewRequestHandler(db *gorm.DB, dispatcher *notifications.Dispatcher) (*RequestHandler, error) {
	matching, err := services.NewMatchingService(db, dispatcher)
	if err != nil {
		return nil, err
	}
	service, err := services.NewRequestService(db, matching)
	if err != nil {
		return nil, err
	}
	return &RequestHandler{service: service}, nil
}

// Create posts a new request for the authenticated client.
func (h *RequestHandler) Create(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var input services.CreateRequestInput
	if !bindAndValidate(c, &input) {
		return
	}

	dto, err := h.service.Create(requestContext(c), session, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, dto)
}

// List returns the authenticated client's own requests.
func (h *RequestHandler) List(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	items, err := h.service.ListOwn(requestContext(c), session)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, items)
}

// Close moves an open request to client_closed.
func (h *RequestHandler) Close(c *gin.Context) {
	h.transition(c, h.service.Close)
}

// Cancel moves an open request to client_cancelled.
func (h *RequestHandler) Cancel(c *gin.Context) {
	h.transition(c, h.service.Cancel)
}

func (h *RequestHandler) transition(c *gin.Context, apply func(context.Context, auth.Session, string) error) {
	session, ok := sessionFrom(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	requestID := strings.TrimSpace(c.Param("id"))
	if requestID == "" {
		response.Error(c, errors.NewBadRequest("request id is required"))
		return
	}

	if err := apply(requestContext(c), session, requestID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"updated": true})
}
