package v1

import (
	"github.com/gin-gonic/gin"

	appctx "vendorbook/internal/core/context"
	"vendorbook/internal/infrastructure/http/v1/middleware"
)

// CatalogRouteHandler defines the interface for catalog handlers.
type CatalogRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

// RegisterCatalogRoutes registers the CRUD routes of a catalog. Any
// authenticated user may read; mutations are for owners.
func RegisterCatalogRoutes(group *gin.RouterGroup, handler CatalogRouteHandler) {
	owner := middleware.RequireRole(appctx.RoleOwner)

	group.GET("", handler.List)
	group.POST("", owner, handler.Create)
	group.GET("/:id", handler.Get)
	group.PUT("/:id", owner, handler.Update)
	group.DELETE("/:id", owner, handler.Delete)
}
