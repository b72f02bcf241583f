package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"saborconquista/internal/middleware"
	"saborconquista/internal/web"
	"saborconquista/internal/workspace"
)

// RouterConfig carries the settings the pages need.
type RouterConfig struct {
	CookieSecure bool
	PhotoBase    string
	PollInterval time.Duration
}

// NewRouter wires every page behind the client-id middleware.
func NewRouter(reg *workspace.Registry, renderer *web.Renderer, cfg RouterConfig, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.HTMLRender = renderer

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "workspaces": reg.Len()})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	pages := router.Group("/", middleware.ClientWorkspace(reg, cfg.CookieSecure))
	NewAuthHandler(logger).RegisterAuthRoutes(pages)
	NewMenuHandler(logger, cfg.PhotoBase).RegisterMenuRoutes(pages)
	NewProfileHandler(logger).RegisterProfileRoutes(pages)
	NewKitchenHandler(logger, cfg.PollInterval).RegisterKitchenRoutes(pages)
	NewCatalogHandler(logger).RegisterCatalogRoutes(pages)

	pageHandler := NewPageHandler()
	pages.GET("/", pageHandler.Home)
	pages.GET(middleware.UnauthorizedPath, pageHandler.Unauthorized)
	// NoRoute bypasses groups, so the workspace middleware is repeated here
	router.NoRoute(middleware.ClientWorkspace(reg, cfg.CookieSecure), pageHandler.NotFound)

	return router
}
