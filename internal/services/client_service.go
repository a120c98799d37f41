package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/orlovm/bidmarket/internal/models"
	apperrors "github.com/orlovm/bidmarket/pkg/errors"
)

// ClientService manages client accounts and owns the location-update
// boundary where the tier-3 area rule is enforced.
type ClientService struct {
	db *gorm.DB
}

// NewClientService constructs a ClientService.
func NewClientService(db *gorm.DB) (*ClientService, error) {
	if db == nil {
		return nil, errors.New("client service: db is required")
	}
	return &ClientService{db: db}, nil
}

// Get loads a client by id.
func (s *ClientService) Get(ctx context.Context, clientID string) (*models.Client, error) {
	ctx = ensureContext(ctx)

	var client models.Client
	if err := s.db.WithContext(ctx).
		First(&client, "id = ?", clientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("client service: load client: %w", err)
	}
	return &client, nil
}

// CurrentAreaID returns the client's selected location, failing with a
// validation error when none is set. Request creation depends on this.
func (s *ClientService) CurrentAreaID(ctx context.Context, clientID string) (string, error) {
	client, err := s.Get(ctx, clientID)
	if err != nil {
		return "", err
	}

	if client.CurrentAreaID == nil || *client.CurrentAreaID == "" {
		return "", apperrors.ErrClientAreaMissing
	}
	return *client.CurrentAreaID, nil
}

// UpdateLocation sets the client's current area. Only tier-3 areas are
// selectable; the matching engine itself never re-checks this.
func (s *ClientService) UpdateLocation(ctx context.Context, clientID, areaID string) error {
	ctx = ensureContext(ctx)

	var area models.Area
	if err := s.db.WithContext(ctx).
		First(&area, "id = ?", areaID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewBadRequest("unknown area")
		}
		return fmt.Errorf("client service: load area: %w", err)
	}

	if !area.Selectable() {
		return apperrors.NewBadRequest("only leaf areas can be selected as a location")
	}

	result := s.db.WithContext(ctx).
		Model(&models.Client{}).
		Where("id = ?", clientID).
		Update("current_area_id", areaID)
	if result.Error != nil {
		return fmt.Errorf("client service: update location: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
