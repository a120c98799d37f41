package api

import (
	"github.com/gin-gonic/gin"

	"github.com/orlovm/bidmarket/internal/handlers"
)

func registerNotificationRoutes(api *gin.RouterGroup, handler *handlers.NotificationHandler) {
	group := api.Group("/notifications")
	{
		group.GET("", handler.List)
		group.POST("/:id/read", handler.MarkRead)
	}
}
