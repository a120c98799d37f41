package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/orlovm/bidmarket/internal/notifications"
	"github.com/orlovm/bidmarket/internal/services"
	"github.com/orlovm/bidmarket/pkg/errors"
	"github.com/orlovm/bidmarket/pkg/response"
)

// ProposalHandler exposes HTTP endpoints for provider proposals.
type ProposalHandler struct {
	service *services.ProposalService
}

// NewProposalHandler constructs a proposal handler.
func NewProposalHandler(db *gorm.DB, dispatcher *notifications.Dispatcher) (*ProposalHandler, error) {
	service, err := services.NewProposalService(db, dispatcher)
	if err != nil {
		return nil, err
	}
	return &ProposalHandler{service: service}, nil
}

// Create submits proposals for the selected services of a request.
func (h *ProposalHandler) Create(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var input services.CreateProposalInput
	if !bindAndValidate(c, &input) {
		return
	}

	created, err := h.service.Create(requestContext(c), session, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"created": created})
}

// ListForRequest returns proposals on one of the client's requests.
func (h *ProposalHandler) ListForRequest(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	requestID := strings.TrimSpace(c.Param("id"))
	items, err := h.service.ListForRequest(requestContext(c), session, requestID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, items)
}

// Withdraw retracts one of the provider's submitted proposals.
func (h *ProposalHandler) Withdraw(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	proposalID := strings.TrimSpace(c.Param("id"))
	if err := h.service.Withdraw(requestContext(c), session, proposalID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"withdrawn": true})
}
