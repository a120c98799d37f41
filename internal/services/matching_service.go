package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/orlovm/bidmarket/internal/models"
	"github.com/orlovm/bidmarket/internal/notifications"
	"github.com/orlovm/bidmarket/pkg/logger"
	"github.com/orlovm/bidmarket/pkg/metrics"
)

// MatchingService finds the providers eligible to be alerted for a freshly
// created request and persists one alert row per matched service.
type MatchingService struct {
	db         *gorm.DB
	categories *CategoryResolver
	dispatcher *notifications.Dispatcher
	log        *zap.Logger
}

// NewMatchingService constructs a MatchingService. The dispatcher may be nil
// in tests; alert creation then simply skips the fan-out step.
func NewMatchingService(db *gorm.DB, dispatcher *notifications.Dispatcher) (*MatchingService, error) {
	if db == nil {
		return nil, errors.New("matching service: db is required")
	}

	categories, err := NewCategoryResolver(db)
	if err != nil {
		return nil, err
	}

	return &MatchingService{
		db:         db,
		categories: categories,
		dispatcher: dispatcher,
		log:        logger.WithModule("matching"),
	}, nil
}

type matchedService struct {
	ID         string
	ProviderID string
}

// CreateAlerts runs the matching pass for the request and returns the number
// of alert rows created. Requests without a category are skipped without
// error. Duplicate (request, provider, service) tuples are suppressed by the
// unique index, so re-invoking for the same request is harmless.
func (s *MatchingService) CreateAlerts(ctx context.Context, requestID string) (int, error) {
	ctx = ensureContext(ctx)

	request, err := s.loadRequest(ctx, requestID)
	if err != nil {
		metrics.MatchingRuns.WithLabelValues("error").Inc()
		return 0, err
	}

	if request.CategoryID == nil || *request.CategoryID == "" {
		// Category-less requests are never matched, by design.
		metrics.MatchingRuns.WithLabelValues("empty").Inc()
		return 0, nil
	}

	providerIDs, err := s.locateProviders(ctx, request.AreaID)
	if err != nil {
		metrics.MatchingRuns.WithLabelValues("error").Inc()
		return 0, err
	}
	if len(providerIDs) == 0 {
		metrics.MatchingRuns.WithLabelValues("empty").Inc()
		return 0, nil
	}

	matched, err := s.matchServices(ctx, providerIDs, *request.CategoryID)
	if err != nil {
		metrics.MatchingRuns.WithLabelValues("error").Inc()
		return 0, err
	}
	if len(matched) == 0 {
		metrics.MatchingRuns.WithLabelValues("empty").Inc()
		return 0, nil
	}

	created, alertedProviders, err := s.insertAlerts(ctx, requestID, matched)
	if err != nil {
		metrics.MatchingRuns.WithLabelValues("error").Inc()
		return created, err
	}

	metrics.MatchingRuns.WithLabelValues("matched").Inc()

	if s.dispatcher != nil && len(alertedProviders) > 0 {
		s.dispatcher.Enqueue(notifications.Job{
			Kind:        notifications.JobRequestMatched,
			RequestID:   requestID,
			ProviderIDs: alertedProviders,
		})
	}

	return created, nil
}

func (s *MatchingService) loadRequest(ctx context.Context, requestID string) (*models.Request, error) {
	var request models.Request
	if err := s.db.WithContext(ctx).
		Select("id", "area_id", "category_id").
		First(&request, "id = ?", requestID).Error; err != nil {
		return nil, fmt.Errorf("matching service: load request: %w", err)
	}
	return &request, nil
}

// locateProviders finds active providers whose owning client currently sits
// in the request's area. Exact area match only, no hierarchical fallback.
func (s *MatchingService) locateProviders(ctx context.Context, areaID string) ([]string, error) {
	var providerIDs []string
	if err := s.db.WithContext(ctx).
		Model(&models.Provider{}).
		Joins("JOIN clients ON clients.id = providers.client_id").
		Where("providers.status = ?", models.ProviderActive).
		Where("clients.current_area_id = ?", areaID).
		Pluck("providers.id", &providerIDs).Error; err != nil {
		return nil, fmt.Errorf("matching service: locate providers: %w", err)
	}
	return providerIDs, nil
}

// matchServices intersects the located providers' active services with the
// one-level category neighbourhood of the request category.
func (s *MatchingService) matchServices(ctx context.Context, providerIDs []string, categoryID string) ([]matchedService, error) {
	categoryIDs, err := s.categories.MatchingCategoryIDs(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	var matched []matchedService
	if err := s.db.WithContext(ctx).
		Model(&models.Service{}).
		Select("services.id", "services.provider_id").
		Where("services.provider_id IN ?", providerIDs).
		Where("services.active = ?", true).
		Where("services.category_id IN ?", categoryIDs).
		Find(&matched).Error; err != nil {
		return nil, fmt.Errorf("matching service: match services: %w", err)
	}
	return matched, nil
}

func (s *MatchingService) insertAlerts(ctx context.Context, requestID string, matched []matchedService) (int, []string, error) {
	created := 0
	var providerIDs []string

	for _, match := range matched {
		alert := models.Alert{
			RequestID:  requestID,
			ProviderID: match.ProviderID,
			ServiceID:  match.ID,
		}

		if err := s.db.WithContext(ctx).Create(&alert).Error; err != nil {
			if isUniqueConstraintError(err) {
				metrics.AlertDedupHits.Inc()
				s.log.Debug("duplicate alert suppressed",
					zap.String("request_id", requestID),
					zap.String("provider_id", match.ProviderID),
					zap.String("service_id", match.ID),
				)
				continue
			}
			return created, providerIDs, fmt.Errorf("matching service: insert alert: %w", err)
		}

		created++
		metrics.AlertsCreated.Inc()
		providerIDs = append(providerIDs, match.ProviderID)
	}

	return created, normaliseIDs(providerIDs), nil
}
