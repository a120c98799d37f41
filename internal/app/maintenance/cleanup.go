package maintenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/orlovm/bidmarket/internal/models"
	"github.com/orlovm/bidmarket/internal/services"
	"github.com/orlovm/bidmarket/pkg/logger"
)

const (
	defaultNotificationRetentionDays = 90
	defaultAlertRetentionDays        = 180
	defaultSchedule                  = "@daily"
)

// Cleaner purges stale rows on a schedule: read notifications past their
// retention window and alerts belonging to closed or cancelled requests.
type Cleaner struct {
	db            *gorm.DB
	notifications *services.NotificationService
	cron          *cron.Cron
	now           func() time.Time
	log           *zap.Logger

	notificationRetention int
	alertRetention        int
	schedule              string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for retention comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithNotificationRetentionDays adjusts how long read notifications are kept.
func WithNotificationRetentionDays(days int) Option {
	return func(cleaner *Cleaner) {
		if days > 0 {
			cleaner.notificationRetention = days
		}
	}
}

// WithAlertRetentionDays adjusts how long alerts of finished requests are kept.
func WithAlertRetentionDays(days int) Option {
	return func(cleaner *Cleaner) {
		if days > 0 {
			cleaner.alertRetention = days
		}
	}
}

// WithSchedule overrides the cron specification for the cleanup pass.
func WithSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.schedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner.
func NewCleaner(db *gorm.DB, opts ...Option) (*Cleaner, error) {
	if db == nil {
		return nil, errors.New("maintenance: db is required")
	}

	notifications, err := services.NewNotificationService(db)
	if err != nil {
		return nil, err
	}

	cleaner := &Cleaner{
		db:                    db,
		notifications:         notifications,
		cron:                  cron.New(),
		now:                   time.Now,
		log:                   logger.WithModule("maintenance"),
		notificationRetention: defaultNotificationRetentionDays,
		alertRetention:        defaultAlertRetentionDays,
		schedule:              defaultSchedule,
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	return cleaner, nil
}

// Start registers the cleanup job and launches the scheduler.
func (c *Cleaner) Start() error {
	if _, err := c.cron.AddFunc(c.schedule, func() {
		if err := c.RunOnce(context.Background()); err != nil {
			c.log.Error("cleanup pass failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("maintenance: schedule cleanup: %w", err)
	}

	c.cron.Start()
	return nil
}

// Stop halts the scheduler, waiting for a running pass to finish.
func (c *Cleaner) Stop() {
	ctx := c.cron.Stop()
	<-ctx.Done()
}

// RunOnce executes a single cleanup pass.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	var errs error

	now := c.now().UTC()

	purged, err := c.notifications.PurgeRead(ctx, now.AddDate(0, 0, -c.notificationRetention))
	if err != nil {
		errs = multierr.Append(errs, err)
	} else if purged > 0 {
		c.log.Info("purged read notifications", zap.Int64("count", purged))
	}

	removed, err := c.purgeStaleAlerts(ctx, now.AddDate(0, 0, -c.alertRetention))
	if err != nil {
		errs = multierr.Append(errs, err)
	} else if removed > 0 {
		c.log.Info("purged stale alerts", zap.Int64("count", removed))
	}

	return errs
}

// purgeStaleAlerts removes alerts whose request was closed or cancelled
// before the cutoff. Alerts of open requests are never touched.
func (c *Cleaner) purgeStaleAlerts(ctx context.Context, cutoff time.Time) (int64, error) {
	finished := []string{
		models.RequestClientClosed,
		models.RequestClientCancelled,
		models.RequestSystemCancelled,
	}

	result := c.db.WithContext(ctx).
		Where("request_id IN (?)",
			c.db.Model(&models.Request{}).
				Select("id").
				Where("status IN ? AND updated_at < ?", finished, cutoff),
		).
		Delete(&models.Alert{})
	if result.Error != nil {
		return 0, fmt.Errorf("maintenance: purge alerts: %w", result.Error)
	}
	return result.RowsAffected, nil
}
