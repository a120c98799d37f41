package api

import (
	"github.com/gin-gonic/gin"

	"github.com/orlovm/bidmarket/internal/auth"
	"github.com/orlovm/bidmarket/internal/handlers"
	"github.com/orlovm/bidmarket/internal/middleware"
)

func registerRequestRoutes(api *gin.RouterGroup, handler *handlers.RequestHandler, proposals *handlers.ProposalHandler) {
	group := api.Group("/requests")
	group.Use(middleware.RequireRole(auth.RoleClient))
	{
		group.POST("", handler.Create)
		group.GET("", handler.List)
		group.POST("/:id/close", handler.Close)
		group.POST("/:id/cancel", handler.Cancel)
		group.GET("/:id/proposals", proposals.ListForRequest)
	}
}
