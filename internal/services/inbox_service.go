package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/orlovm/bidmarket/internal/auth"
	"github.com/orlovm/bidmarket/internal/models"
	apperrors "github.com/orlovm/bidmarket/pkg/errors"
	"github.com/orlovm/bidmarket/pkg/logger"
)

// InboxItem is one aggregated entry of the provider inbox: the full request
// detail plus the collapsed read state of all alerts pointing at it.
type InboxItem struct {
	Request    RequestDTO `json:"request"`
	IsRead     bool       `json:"is_read"`
	AlertCount int        `json:"alert_count"`
}

// ServiceForRequest annotates one alerted service with whether the provider
// has already used it in a proposal for this request.
type ServiceForRequest struct {
	ID              string  `json:"id"`
	CategoryID      string  `json:"category_id"`
	Title           string  `json:"title"`
	PriceHint       float64 `json:"price_hint"`
	AlreadyProposed bool    `json:"already_proposed"`
}

// InboxService aggregates a provider's alerts into its request inbox.
type InboxService struct {
	db       *gorm.DB
	requests *RequestService
	log      *zap.Logger
}

// NewInboxService constructs an InboxService.
func NewInboxService(db *gorm.DB, requests *RequestService) (*InboxService, error) {
	if db == nil {
		return nil, errors.New("inbox service: db is required")
	}
	if requests == nil {
		return nil, errors.New("inbox service: request service is required")
	}
	return &InboxService{
		db:       db,
		requests: requests,
		log:      logger.WithModule("inbox"),
	}, nil
}

// ClientRequestsForProvider collapses the provider's alert rows into one
// entry per request. A request counts as read only when every alert for it
// is read. Requests whose detail lookup fails are logged and skipped so one
// bad row never breaks the whole inbox. Ordering is unread first, newest
// first within each group.
func (s *InboxService) ClientRequestsForProvider(ctx context.Context, session auth.Session) ([]InboxItem, error) {
	ctx = ensureContext(ctx)

	if !session.IsProvider() {
		return nil, apperrors.ErrForbidden
	}

	var alerts []models.Alert
	if err := s.db.WithContext(ctx).
		Where("provider_id = ?", session.ProviderID).
		Find(&alerts).Error; err != nil {
		return nil, fmt.Errorf("inbox service: load alerts: %w", err)
	}
	if len(alerts) == 0 {
		return nil, nil
	}

	readState := reduceReadState(alerts)
	counts := make(map[string]int, len(readState))
	for _, alert := range alerts {
		counts[alert.RequestID]++
	}

	items := make([]InboxItem, 0, len(readState))
	for requestID, isRead := range readState {
		request, err := s.requests.Get(ctx, requestID)
		if err != nil {
			s.log.Warn("skipping inbox entry: request lookup failed",
				zap.String("request_id", requestID),
				zap.String("provider_id", session.ProviderID),
				zap.Error(err),
			)
			continue
		}

		items = append(items, InboxItem{
			Request:    *request,
			IsRead:     isRead,
			AlertCount: counts[requestID],
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].IsRead != items[j].IsRead {
			return !items[i].IsRead
		}
		return items[i].Request.CreatedAt.After(items[j].Request.CreatedAt)
	})

	return items, nil
}

// MarkAlertsAsRead flips is_read on every alert the provider holds for the
// request. A mismatch between the session's provider and the target provider
// is deliberately a silent no-op, not an error, so the existence of other
// providers' alerts is never leaked.
func (s *InboxService) MarkAlertsAsRead(ctx context.Context, session auth.Session, providerID, requestID string) error {
	return s.markAlerts(ctx, session, providerID, requestID, "is_read")
}

// MarkAlertsAsSeen flips is_seen the same way; the inbox badge uses it.
func (s *InboxService) MarkAlertsAsSeen(ctx context.Context, session auth.Session, providerID, requestID string) error {
	return s.markAlerts(ctx, session, providerID, requestID, "is_seen")
}

func (s *InboxService) markAlerts(ctx context.Context, session auth.Session, providerID, requestID, column string) error {
	ctx = ensureContext(ctx)

	if !session.IsProvider() {
		return apperrors.ErrForbidden
	}
	if session.ProviderID != providerID {
		// Cross-provider marking: silent no-op.
		return nil
	}

	if err := s.db.WithContext(ctx).
		Model(&models.Alert{}).
		Where("provider_id = ? AND request_id = ?", providerID, requestID).
		Update(column, true).Error; err != nil {
		return fmt.Errorf("inbox service: mark alerts %s: %w", column, err)
	}
	return nil
}

// UnreadCount returns the number of inbox entries that still hold at least
// one unread alert.
func (s *InboxService) UnreadCount(ctx context.Context, session auth.Session) (int, error) {
	ctx = ensureContext(ctx)

	if !session.IsProvider() {
		return 0, apperrors.ErrForbidden
	}

	var alerts []models.Alert
	if err := s.db.WithContext(ctx).
		Select("request_id", "is_read").
		Where("provider_id = ?", session.ProviderID).
		Find(&alerts).Error; err != nil {
		return 0, fmt.Errorf("inbox service: load alerts: %w", err)
	}

	count := 0
	for _, isRead := range reduceReadState(alerts) {
		if !isRead {
			count++
		}
	}
	return count, nil
}

// ServicesForRequest returns the subset of the provider's services actually
// alerted for this request, each annotated with whether it was already used
// in a proposal. Authorization mirrors MarkAlertsAsRead: only the session's
// own provider is consulted.
func (s *InboxService) ServicesForRequest(ctx context.Context, session auth.Session, requestID string) ([]ServiceForRequest, error) {
	ctx = ensureContext(ctx)

	if !session.IsProvider() {
		return nil, apperrors.ErrForbidden
	}

	var serviceIDs []string
	if err := s.db.WithContext(ctx).
		Model(&models.Alert{}).
		Where("provider_id = ? AND request_id = ?", session.ProviderID, requestID).
		Pluck("service_id", &serviceIDs).Error; err != nil {
		return nil, fmt.Errorf("inbox service: load alerted services: %w", err)
	}
	if len(serviceIDs) == 0 {
		return nil, nil
	}

	var services []models.Service
	if err := s.db.WithContext(ctx).
		Where("id IN ?", serviceIDs).
		Find(&services).Error; err != nil {
		return nil, fmt.Errorf("inbox service: load services: %w", err)
	}

	var proposedIDs []string
	if err := s.db.WithContext(ctx).
		Model(&models.Proposal{}).
		Where("provider_id = ? AND request_id = ? AND service_id IN ?", session.ProviderID, requestID, serviceIDs).
		Pluck("service_id", &proposedIDs).Error; err != nil {
		return nil, fmt.Errorf("inbox service: load proposals: %w", err)
	}

	proposed := make(map[string]struct{}, len(proposedIDs))
	for _, id := range proposedIDs {
		proposed[id] = struct{}{}
	}

	items := make([]ServiceForRequest, 0, len(services))
	for _, service := range services {
		_, alreadyProposed := proposed[service.ID]
		items = append(items, ServiceForRequest{
			ID:              service.ID,
			CategoryID:      service.CategoryID,
			Title:           service.Title,
			PriceHint:       service.PriceHint,
			AlreadyProposed: alreadyProposed,
		})
	}

	sort.Slice(items, func(i, j int) bool { return items[i].Title < items[j].Title })
	return items, nil
}
