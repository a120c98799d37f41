package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/orlovm/bidmarket/internal/auth"
	"github.com/orlovm/bidmarket/internal/models"
	apperrors "github.com/orlovm/bidmarket/pkg/errors"
	"github.com/orlovm/bidmarket/pkg/logger"
)

// AccommodationInput carries accommodation attributes for request creation.
type AccommodationInput struct {
	CheckIn  *time.Time `json:"check_in"`
	CheckOut *time.Time `json:"check_out"`
	Guests   int        `json:"guests"`
	Rooms    int        `json:"rooms"`
}

// TransportInput carries transport attributes for request creation.
type TransportInput struct {
	FromAreaID *string    `json:"from_area_id"`
	ToAreaID   *string    `json:"to_area_id"`
	DepartAt   *time.Time `json:"depart_at"`
	Seats      int        `json:"seats"`
}

// EntertainmentInput carries entertainment attributes for request creation.
type EntertainmentInput struct {
	EventDate *time.Time `json:"event_date"`
	PartySize int        `json:"party_size"`
}

// CreateRequestInput defines attributes required to post a request.
type CreateRequestInput struct {
	Type    string  `json:"type" validate:"required"`
	Budget  float64 `json:"budget" validate:"gte=0"`
	Comment string  `json:"comment"`

	Accommodation *AccommodationInput `json:"accommodation,omitempty"`
	Transport     *TransportInput     `json:"transport,omitempty"`
	Entertainment *EntertainmentInput `json:"entertainment,omitempty"`
}

// RequestDTO is the API-facing request payload.
type RequestDTO struct {
	ID            string    `json:"id"`
	ClientID      string    `json:"client_id"`
	AreaID        string    `json:"area_id"`
	CategoryID    *string   `json:"category_id"`
	Type          string    `json:"type"`
	Budget        float64   `json:"budget"`
	Status        string    `json:"status"`
	Comment       string    `json:"comment"`
	CreatedAt     time.Time `json:"created_at"`
	ProposalCount int64     `json:"proposal_count,omitempty"`
}

// RequestService creates requests together with their attribute sub-record
// and hands freshly created requests to the matching engine.
type RequestService struct {
	db         *gorm.DB
	clients    *ClientService
	categories *CategoryResolver
	matching   *MatchingService
	log        *zap.Logger
}

// NewRequestService constructs a RequestService.
func NewRequestService(db *gorm.DB, matching *MatchingService) (*RequestService, error) {
	if db == nil {
		return nil, errors.New("request service: db is required")
	}
	if matching == nil {
		return nil, errors.New("request service: matching service is required")
	}

	clients, err := NewClientService(db)
	if err != nil {
		return nil, err
	}
	categories, err := NewCategoryResolver(db)
	if err != nil {
		return nil, err
	}

	return &RequestService{
		db:         db,
		clients:    clients,
		categories: categories,
		matching:   matching,
		log:        logger.WithModule("requests"),
	}, nil
}

// Create posts a new request for the authenticated client. The request row
// and its attribute sub-record commit atomically; the matching pass runs
// afterwards and its failure never surfaces to the caller, only to the log.
func (s *RequestService) Create(ctx context.Context, session auth.Session, input CreateRequestInput) (*RequestDTO, error) {
	ctx = ensureContext(ctx)

	if !session.IsClient() {
		return nil, apperrors.ErrForbidden
	}

	areaID, err := s.clients.CurrentAreaID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	category, err := s.categories.ResolveBySysname(ctx, input.Type)
	if err != nil {
		return nil, err
	}

	request := models.Request{
		ClientID:   session.UserID,
		AreaID:     areaID,
		CategoryID: &category.ID,
		Type:       category.Sysname,
		Budget:     input.Budget,
		Status:     models.RequestOpen,
		Comment:    input.Comment,
	}

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&request).Error; err != nil {
			return fmt.Errorf("request service: create request: %w", err)
		}
		return s.createDetails(tx, &request, input)
	}); err != nil {
		return nil, err
	}

	// The request row stands regardless of matching outcome.
	if _, err := s.matching.CreateAlerts(ctx, request.ID); err != nil {
		s.log.Error("matching failed after request creation",
			zap.String("request_id", request.ID),
			zap.Error(err),
		)
	}

	dto := mapRequest(request)
	return &dto, nil
}

func (s *RequestService) createDetails(tx *gorm.DB, request *models.Request, input CreateRequestInput) error {
	switch request.Type {
	case models.CategoryAccommodation:
		details := models.AccommodationDetails{RequestID: request.ID, Guests: 1, Rooms: 1}
		if in := input.Accommodation; in != nil {
			details.CheckIn = in.CheckIn
			details.CheckOut = in.CheckOut
			if in.Guests > 0 {
				details.Guests = in.Guests
			}
			if in.Rooms > 0 {
				details.Rooms = in.Rooms
			}
		}
		if err := tx.Create(&details).Error; err != nil {
			return fmt.Errorf("request service: create accommodation details: %w", err)
		}
	case models.CategoryTransport:
		details := models.TransportDetails{RequestID: request.ID, Seats: 1}
		if in := input.Transport; in != nil {
			details.FromAreaID = in.FromAreaID
			details.ToAreaID = in.ToAreaID
			details.DepartAt = in.DepartAt
			if in.Seats > 0 {
				details.Seats = in.Seats
			}
		}
		if err := tx.Create(&details).Error; err != nil {
			return fmt.Errorf("request service: create transport details: %w", err)
		}
	case models.CategoryEntertainment:
		details := models.EntertainmentDetails{RequestID: request.ID, PartySize: 1}
		if in := input.Entertainment; in != nil {
			details.EventDate = in.EventDate
			if in.PartySize > 0 {
				details.PartySize = in.PartySize
			}
		}
		if err := tx.Create(&details).Error; err != nil {
			return fmt.Errorf("request service: create entertainment details: %w", err)
		}
	default:
		return apperrors.NewBadRequest(fmt.Sprintf("unsupported request type %q", request.Type))
	}
	return nil
}

// Close moves an open request to client_closed.
func (s *RequestService) Close(ctx context.Context, session auth.Session, requestID string) error {
	return s.transition(ctx, session, requestID, models.RequestClientClosed)
}

// Cancel moves an open request to client_cancelled.
func (s *RequestService) Cancel(ctx context.Context, session auth.Session, requestID string) error {
	return s.transition(ctx, session, requestID, models.RequestClientCancelled)
}

// transition applies a forward-only status change on a request owned by the
// session's client.
func (s *RequestService) transition(ctx context.Context, session auth.Session, requestID, status string) error {
	ctx = ensureContext(ctx)

	if !session.IsClient() {
		return apperrors.ErrForbidden
	}

	var request models.Request
	if err := s.db.WithContext(ctx).
		Where("id = ? AND client_id = ?", requestID, session.UserID).
		First(&request).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("request service: load request: %w", err)
	}

	if !request.CanTransitionTo(status) {
		return apperrors.ErrRequestNotOpen
	}

	if err := s.db.WithContext(ctx).Model(&request).
		Update("status", status).Error; err != nil {
		return fmt.Errorf("request service: update status: %w", err)
	}
	return nil
}

// ListOwn returns the client's requests, newest first, with proposal counts.
func (s *RequestService) ListOwn(ctx context.Context, session auth.Session) ([]RequestDTO, error) {
	ctx = ensureContext(ctx)

	if !session.IsClient() {
		return nil, apperrors.ErrForbidden
	}

	var requests []models.Request
	if err := s.db.WithContext(ctx).
		Where("client_id = ?", session.UserID).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("request service: list requests: %w", err)
	}

	counts, err := s.proposalCounts(ctx, requests)
	if err != nil {
		return nil, err
	}

	items := make([]RequestDTO, 0, len(requests))
	for _, request := range requests {
		dto := mapRequest(request)
		dto.ProposalCount = counts[request.ID]
		items = append(items, dto)
	}
	return items, nil
}

// proposalCounts counts proposals for all listed requests in one grouped
// query.
func (s *RequestService) proposalCounts(ctx context.Context, requests []models.Request) (map[string]int64, error) {
	if len(requests) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(requests))
	for _, request := range requests {
		ids = append(ids, request.ID)
	}

	var rows []struct {
		RequestID string
		Total     int64
	}
	if err := s.db.WithContext(ctx).
		Model(&models.Proposal{}).
		Select("request_id", "COUNT(*) AS total").
		Where("request_id IN ?", ids).
		Group("request_id").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("request service: count proposals: %w", err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.RequestID] = row.Total
	}
	return counts, nil
}

// Get loads one request with ownership scoping removed; used by the inbox
// aggregator which authorises via alerts instead.
func (s *RequestService) Get(ctx context.Context, requestID string) (*RequestDTO, error) {
	ctx = ensureContext(ctx)

	var request models.Request
	if err := s.db.WithContext(ctx).
		First(&request, "id = ?", requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("request service: load request: %w", err)
	}

	dto := mapRequest(request)
	return &dto, nil
}

func mapRequest(row models.Request) RequestDTO {
	return RequestDTO{
		ID:         row.ID,
		ClientID:   row.ClientID,
		AreaID:     row.AreaID,
		CategoryID: row.CategoryID,
		Type:       row.Type,
		Budget:     row.Budget,
		Status:     row.Status,
		Comment:    row.Comment,
		CreatedAt:  row.CreatedAt,
	}
}
