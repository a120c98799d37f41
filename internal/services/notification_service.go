package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/orlovm/bidmarket/internal/models"
	"github.com/orlovm/bidmarket/internal/notifications"
	apperrors "github.com/orlovm/bidmarket/pkg/errors"
)

// NotificationDTO represents the API-friendly notification payload.
type NotificationDTO struct {
	ID        string         `json:"id"`
	ClientID  string         `json:"client_id"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	IsRead    bool           `json:"is_read"`
	CreatedAt time.Time      `json:"created_at"`
	ReadAt    *time.Time     `json:"read_at,omitempty"`
}

// CreateNotificationInput defines attributes required to persist a notification.
type CreateNotificationInput struct {
	ClientID string
	Type     string
	Title    string
	Message  string
	Metadata map[string]any
}

// ListNotificationsInput defines filters for querying client notifications.
type ListNotificationsInput struct {
	ClientID string
	Limit    int
	Offset   int
}

// NotificationService persists in-app notifications. It also implements
// notifications.Sink, translating dispatch jobs into notification rows.
type NotificationService struct {
	db *gorm.DB
}

var _ notifications.Sink = (*NotificationService)(nil)

// NewNotificationService constructs a NotificationService.
func NewNotificationService(db *gorm.DB) (*NotificationService, error) {
	if db == nil {
		return nil, errors.New("notification service: db is required")
	}
	return &NotificationService{db: db}, nil
}

// Deliver consumes a dispatch job. For request.matched jobs one notification
// is created per matched provider's owning client; for proposal.received
// jobs the request owner is notified.
func (s *NotificationService) Deliver(ctx context.Context, job notifications.Job) error {
	ctx = ensureContext(ctx)

	switch job.Kind {
	case notifications.JobRequestMatched:
		return s.deliverRequestMatched(ctx, job)
	case notifications.JobProposalReceived:
		return s.deliverProposalReceived(ctx, job)
	default:
		return fmt.Errorf("notification service: unknown job kind %q", job.Kind)
	}
}

func (s *NotificationService) deliverRequestMatched(ctx context.Context, job notifications.Job) error {
	providerIDs := normaliseIDs(job.ProviderIDs)
	if len(providerIDs) == 0 {
		return nil
	}

	var providers []models.Provider
	if err := s.db.WithContext(ctx).
		Where("id IN ?", providerIDs).
		Find(&providers).Error; err != nil {
		return fmt.Errorf("notification service: load providers: %w", err)
	}

	for _, provider := range providers {
		_, err := s.Create(ctx, CreateNotificationInput{
			ClientID: provider.ClientID,
			Type:     models.NotificationRequestMatched,
			Title:    "New matching request",
			Message:  "A new request matches one of your services",
			Metadata: map[string]any{
				"request_id":  job.RequestID,
				"provider_id": provider.ID,
			},
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *NotificationService) deliverProposalReceived(ctx context.Context, job notifications.Job) error {
	if job.ClientID == "" {
		return errors.New("notification service: client id is required for proposal jobs")
	}

	_, err := s.Create(ctx, CreateNotificationInput{
		ClientID: job.ClientID,
		Type:     models.NotificationProposalReceived,
		Title:    "New proposal",
		Message:  fmt.Sprintf("You received %d new proposal(s) on your request", job.ProposalCount),
		Metadata: map[string]any{
			"request_id":     job.RequestID,
			"proposal_count": job.ProposalCount,
		},
	})
	return err
}

// Create registers a new notification row.
func (s *NotificationService) Create(ctx context.Context, input CreateNotificationInput) (*NotificationDTO, error) {
	ctx = ensureContext(ctx)
	clientID := strings.TrimSpace(input.ClientID)
	if clientID == "" {
		return nil, errors.New("notification service: client id is required")
	}
	notificationType := strings.TrimSpace(input.Type)
	if notificationType == "" {
		return nil, errors.New("notification service: type is required")
	}

	notification := models.Notification{
		ClientID: clientID,
		Type:     notificationType,
		Title:    strings.TrimSpace(input.Title),
		Message:  strings.TrimSpace(input.Message),
	}

	if input.Metadata != nil {
		data, err := json.Marshal(input.Metadata)
		if err != nil {
			return nil, fmt.Errorf("notification service: marshal metadata: %w", err)
		}
		notification.Metadata = datatypes.JSON(data)
	}

	if err := s.db.WithContext(ctx).Create(&notification).Error; err != nil {
		return nil, fmt.Errorf("notification service: create notification: %w", err)
	}

	dto := mapNotification(notification)
	return &dto, nil
}

// ListForClient returns notifications for the supplied client ordered by recency.
func (s *NotificationService) ListForClient(ctx context.Context, input ListNotificationsInput) ([]NotificationDTO, error) {
	ctx = ensureContext(ctx)
	clientID := strings.TrimSpace(input.ClientID)
	if clientID == "" {
		return nil, errors.New("notification service: client id is required")
	}

	limit := input.Limit
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	offset := input.Offset
	if offset < 0 {
		offset = 0
	}

	var rows []models.Notification
	if err := s.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("notification service: list notifications: %w", err)
	}

	items := make([]NotificationDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapNotification(row))
	}
	return items, nil
}

// MarkRead sets the notification read flag for a client.
func (s *NotificationService) MarkRead(ctx context.Context, clientID, notificationID string) (*NotificationDTO, error) {
	ctx = ensureContext(ctx)

	var notification models.Notification
	if err := s.db.WithContext(ctx).
		Where("id = ? AND client_id = ?", notificationID, clientID).
		First(&notification).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("notification service: load notification: %w", err)
	}

	now := time.Now().UTC()
	if err := s.db.WithContext(ctx).Model(&notification).
		Updates(map[string]any{
			"is_read": true,
			"read_at": now,
		}).Error; err != nil {
		return nil, fmt.Errorf("notification service: mark read: %w", err)
	}

	notification.IsRead = true
	notification.ReadAt = &now
	dto := mapNotification(notification)
	return &dto, nil
}

// PurgeRead removes read notifications older than the cutoff and returns the
// number of rows deleted. Used by the maintenance cleaner.
func (s *NotificationService) PurgeRead(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).
		Where("is_read = ? AND created_at < ?", true, cutoff).
		Delete(&models.Notification{})
	if result.Error != nil {
		return 0, fmt.Errorf("notification service: purge read: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func mapNotification(row models.Notification) NotificationDTO {
	return NotificationDTO{
		ID:        row.ID,
		ClientID:  row.ClientID,
		Type:      row.Type,
		Title:     row.Title,
		Message:   row.Message,
		Metadata:  decodeJSON(row.Metadata),
		IsRead:    row.IsRead,
		CreatedAt: row.CreatedAt,
		ReadAt:    row.ReadAt,
	}
}

func decodeJSON(data datatypes.JSON) map[string]any {
	if len(data) == 0 {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}
