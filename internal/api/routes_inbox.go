package api

import (
	"github.com/gin-gonic/gin"

	"github.com/orlovm/bidmarket/internal/auth"
	"github.com/orlovm/bidmarket/internal/handlers"
	"github.com/orlovm/bidmarket/internal/middleware"
)

func registerInboxRoutes(api *gin.RouterGroup, handler *handlers.InboxHandler) {
	group := api.Group("/inbox")
	group.Use(middleware.RequireRole(auth.RoleProvider))
	{
		group.GET("", handler.List)
		group.GET("/unread-count", handler.UnreadCount)
		group.POST("/:requestId/read", handler.MarkRead)
		group.POST("/:requestId/seen", handler.MarkSeen)
		group.GET("/:requestId/services", handler.Services)
	}
}
