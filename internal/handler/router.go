package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"booklister/internal/handler/api"
	"booklister/internal/handler/middleware"
	"booklister/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(engine *gin.Engine, cfg config.Config, publishHandler *api.PublishHandler, policyHandler *api.PolicyHandler) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, publishHandler, policyHandler)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(nil, cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, publishHandler *api.PublishHandler, policyHandler *api.PolicyHandler) {
	engine.GET("/health", healthCheck)

	apiGroup := engine.Group("/api")
	{
		books := apiGroup.Group("/books")
		{
			addRoutes(books, []route{
				{Method: http.MethodPost, Path: "/:id/publish", Handler: publishHandler.Publish},
				{Method: http.MethodGet, Path: "/:id/publish-status", Handler: publishHandler.Status},
			})
		}

		policies := apiGroup.Group("/policies")
		{
			addRoutes(policies, []route{
				{Method: http.MethodGet, Path: "/defaults", Handler: policyHandler.GetDefaults},
				{Method: http.MethodPut, Path: "/defaults", Handler: policyHandler.SetDefaults},
			})
		}
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
