package handlers

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/orlovm/bidmarket/internal/auth"
	"github.com/orlovm/bidmarket/internal/middleware"
)

// requestContext safely returns the request context with a background fallback for tests.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if req := c.Request; req != nil {
		return req.Context()
	}
	return context.Background()
}

// sessionFrom extracts the resolved session placed by the auth middleware.
func sessionFrom(c *gin.Context) (auth.Session, bool) {
	return middleware.SessionFromContext(c)
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
