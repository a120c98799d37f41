package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/orlovm/bidmarket/internal/app"
	"github.com/orlovm/bidmarket/internal/auth"
	"github.com/orlovm/bidmarket/internal/handlers"
	"github.com/orlovm/bidmarket/internal/middleware"
	"github.com/orlovm/bidmarket/internal/notifications"
)

// NewRouter builds the Gin engine, wires middleware and registers core routes.
func NewRouter(db *gorm.DB, resolver auth.SessionResolver, dispatcher *notifications.Dispatcher, cfg *app.Config) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if resolver == nil {
		return nil, fmt.Errorf("session resolver must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())

	// Health endpoint (public)
	r.GET("/health", handlers.Health(db))

	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	requestHandler, err := handlers.NewRequestHandler(db, dispatcher)
	if err != nil {
		return nil, err
	}
	proposalHandler, err := handlers.NewProposalHandler(db, dispatcher)
	if err != nil {
		return nil, err
	}
	inboxHandler, err := handlers.NewInboxHandler(db, dispatcher)
	if err != nil {
		return nil, err
	}
	notificationHandler, err := handlers.NewNotificationHandler(db)
	if err != nil {
		return nil, err
	}

	api := r.Group("/api")
	api.Use(middleware.Auth(resolver))

	registerRequestRoutes(api, requestHandler, proposalHandler)
	registerProposalRoutes(api, proposalHandler)
	registerInboxRoutes(api, inboxHandler)
	registerNotificationRoutes(api, notificationHandler)

	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
