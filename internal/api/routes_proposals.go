package api

import (
	"github.com/gin-gonic/gin"

	"github.com/orlovm/bidmarket/internal/auth"
	"github.com/orlovm/bidmarket/internal/handlers"
	"github.com/orlovm/bidmarket/internal/middleware"
)

func registerProposalRoutes(api *gin.RouterGroup, handler *handlers.ProposalHandler) {
	group := api.Group("/proposals")
	group.Use(middleware.RequireRole(auth.RoleProvider))
	{
		group.POST("", handler.Create)
		group.POST("/:id/withdraw", handler.Withdraw)
	}
}
