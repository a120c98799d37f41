package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/orlovm/bidmarket/internal/auth"
	"github.com/orlovm/bidmarket/internal/models"
	"github.com/orlovm/bidmarket/internal/notifications"
	apperrors "github.com/orlovm/bidmarket/pkg/errors"
	"github.com/orlovm/bidmarket/pkg/metrics"
)

// CreateProposalInput defines attributes required to answer a request.
type CreateProposalInput struct {
	RequestID  string   `json:"request_id" validate:"required"`
	ServiceIDs []string `json:"service_ids" validate:"required,min=1"`
	Price      float64  `json:"price" validate:"required,gt=0"`
	Comment    *string  `json:"comment"`
}

// ProposalDTO is the API-facing proposal payload.
type ProposalDTO struct {
	ID         string    `json:"id"`
	RequestID  string    `json:"request_id"`
	ProviderID string    `json:"provider_id"`
	ServiceID  string    `json:"service_id"`
	Price      *float64  `json:"price"`
	Comment    *string   `json:"comment"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// ProposalService creates and manages provider proposals.
type ProposalService struct {
	db         *gorm.DB
	providers  *ProviderService
	dispatcher *notifications.Dispatcher
}

// NewProposalService constructs a ProposalService. The dispatcher may be nil
// in tests; creation then skips the fan-out step.
func NewProposalService(db *gorm.DB, dispatcher *notifications.Dispatcher) (*ProposalService, error) {
	if db == nil {
		return nil, errors.New("proposal service: db is required")
	}

	providers, err := NewProviderService(db)
	if err != nil {
		return nil, err
	}

	return &ProposalService{
		db:         db,
		providers:  providers,
		dispatcher: dispatcher,
	}, nil
}

// Create submits one proposal row per selected service. Ownership is
// all-or-nothing: if any service id is not owned by the caller's active
// provider or not active, the whole call is rejected naming the offenders.
// Returns the number of proposals created.
func (s *ProposalService) Create(ctx context.Context, session auth.Session, input CreateProposalInput) (int, error) {
	ctx = ensureContext(ctx)

	if !session.IsProvider() {
		return 0, apperrors.ErrForbidden
	}

	provider, err := s.providers.ResolveActive(ctx, session.ProviderID)
	if err != nil {
		return 0, err
	}

	serviceIDs := normaliseIDs(input.ServiceIDs)
	if len(serviceIDs) == 0 {
		return 0, apperrors.NewBadRequest("at least one service is required")
	}
	if input.Price <= 0 {
		return 0, apperrors.NewBadRequest("price must be positive")
	}

	rejected, err := s.verifyOwnership(ctx, provider.ID, serviceIDs)
	if err != nil {
		return 0, err
	}
	if len(rejected) > 0 {
		return 0, apperrors.NewRejectedServices(rejected)
	}

	var request models.Request
	if err := s.db.WithContext(ctx).
		First(&request, "id = ?", input.RequestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperrors.ErrNotFound
		}
		return 0, fmt.Errorf("proposal service: load request: %w", err)
	}
	if !request.IsOpen() {
		return 0, apperrors.ErrRequestNotOpen
	}

	price := input.Price
	proposals := make([]models.Proposal, 0, len(serviceIDs))
	for _, serviceID := range serviceIDs {
		proposals = append(proposals, models.Proposal{
			RequestID:  request.ID,
			ProviderID: provider.ID,
			ServiceID:  serviceID,
			Price:      &price,
			Comment:    input.Comment,
			Status:     models.ProposalSubmitted,
		})
	}

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range proposals {
			if err := tx.Create(&proposals[i]).Error; err != nil {
				return fmt.Errorf("proposal service: create proposal: %w", err)
			}
		}
		return nil
	}); err != nil {
		return 0, err
	}

	metrics.ProposalsCreated.Add(float64(len(proposals)))

	if s.dispatcher != nil {
		s.dispatcher.Enqueue(notifications.Job{
			Kind:          notifications.JobProposalReceived,
			RequestID:     request.ID,
			ClientID:      request.ClientID,
			ProposalCount: len(proposals),
		})
	}

	return len(proposals), nil
}

// verifyOwnership returns the subset of serviceIDs not owned by the provider
// or not active.
func (s *ProposalService) verifyOwnership(ctx context.Context, providerID string, serviceIDs []string) ([]string, error) {
	var ownedIDs []string
	if err := s.db.WithContext(ctx).
		Model(&models.Service{}).
		Where("id IN ?", serviceIDs).
		Where("provider_id = ? AND active = ?", providerID, true).
		Pluck("id", &ownedIDs).Error; err != nil {
		return nil, fmt.Errorf("proposal service: verify ownership: %w", err)
	}

	owned := make(map[string]struct{}, len(ownedIDs))
	for _, id := range ownedIDs {
		owned[id] = struct{}{}
	}

	var rejected []string
	for _, id := range serviceIDs {
		if _, ok := owned[id]; !ok {
			rejected = append(rejected, id)
		}
	}
	return rejected, nil
}

// ListForRequest returns proposals on a request owned by the session's client.
func (s *ProposalService) ListForRequest(ctx context.Context, session auth.Session, requestID string) ([]ProposalDTO, error) {
	ctx = ensureContext(ctx)

	if !session.IsClient() {
		return nil, apperrors.ErrForbidden
	}

	var request models.Request
	if err := s.db.WithContext(ctx).
		Where("id = ? AND client_id = ?", requestID, session.UserID).
		First(&request).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("proposal service: load request: %w", err)
	}

	var rows []models.Proposal
	if err := s.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("proposal service: list proposals: %w", err)
	}

	items := make([]ProposalDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapProposal(row))
	}
	return items, nil
}

// Withdraw moves a submitted proposal of the caller's provider to withdrawn.
func (s *ProposalService) Withdraw(ctx context.Context, session auth.Session, proposalID string) error {
	ctx = ensureContext(ctx)

	if !session.IsProvider() {
		return apperrors.ErrForbidden
	}

	var proposal models.Proposal
	if err := s.db.WithContext(ctx).
		Where("id = ? AND provider_id = ?", proposalID, session.ProviderID).
		First(&proposal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("proposal service: load proposal: %w", err)
	}

	if proposal.Status != models.ProposalSubmitted {
		return apperrors.NewBadRequest("only submitted proposals can be withdrawn")
	}

	if err := s.db.WithContext(ctx).Model(&proposal).
		Update("status", models.ProposalWithdrawn).Error; err != nil {
		return fmt.Errorf("proposal service: withdraw: %w", err)
	}
	return nil
}

func mapProposal(row models.Proposal) ProposalDTO {
	return ProposalDTO{
		ID:         row.ID,
		RequestID:  row.RequestID,
		ProviderID: row.ProviderID,
		ServiceID:  row.ServiceID,
		Price:      row.Price,
		Comment:    row.Comment,
		Status:     row.Status,
		CreatedAt:  row.CreatedAt,
	}
}
