package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/orlovm/bidmarket/internal/models"
	apperrors "github.com/orlovm/bidmarket/pkg/errors"
)

// ProviderService manages provider profiles and resolves the caller's active
// provider for the proposal and inbox paths.
type ProviderService struct {
	db *gorm.DB
}

// NewProviderService constructs a ProviderService.
func NewProviderService(db *gorm.DB) (*ProviderService, error) {
	if db == nil {
		return nil, errors.New("provider service: db is required")
	}
	return &ProviderService{db: db}, nil
}

// ActiveForClient returns the client's currently active provider profile.
func (s *ProviderService) ActiveForClient(ctx context.Context, clientID string) (*models.Provider, error) {
	ctx = ensureContext(ctx)

	var provider models.Provider
	if err := s.db.WithContext(ctx).
		Where("client_id = ? AND status = ?", clientID, models.ProviderActive).
		First(&provider).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNoActiveProvider
		}
		return nil, fmt.Errorf("provider service: load active provider: %w", err)
	}
	return &provider, nil
}

// ResolveActive loads the provider by id and verifies it is still active.
// Used by ownership checks before any mutation; a provider deactivating
// mid-call is tolerated as last check wins.
func (s *ProviderService) ResolveActive(ctx context.Context, providerID string) (*models.Provider, error) {
	ctx = ensureContext(ctx)

	var provider models.Provider
	if err := s.db.WithContext(ctx).
		First(&provider, "id = ?", providerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNoActiveProvider
		}
		return nil, fmt.Errorf("provider service: load provider: %w", err)
	}

	if !provider.IsActive() {
		return nil, apperrors.ErrNoActiveProvider
	}
	return &provider, nil
}

// Activate switches the provider to active status. A client may have at most
// one active provider, so any other active profile of the same client is
// suspended first.
func (s *ProviderService) Activate(ctx context.Context, clientID, providerID string) error {
	ctx = ensureContext(ctx)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var provider models.Provider
		if err := tx.
			Where("id = ? AND client_id = ?", providerID, clientID).
			First(&provider).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound
			}
			return fmt.Errorf("provider service: load provider: %w", err)
		}

		if err := tx.Model(&models.Provider{}).
			Where("client_id = ? AND status = ? AND id <> ?", clientID, models.ProviderActive, providerID).
			Update("status", models.ProviderSuspended).Error; err != nil {
			return fmt.Errorf("provider service: suspend siblings: %w", err)
		}

		if err := tx.Model(&provider).
			Update("status", models.ProviderActive).Error; err != nil {
			return fmt.Errorf("provider service: activate: %w", err)
		}
		return nil
	})
}
