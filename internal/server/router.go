package server

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/bookforge/bookforge-backend/internal/platform/logger"
	"github.com/bookforge/bookforge-backend/internal/server/handlers"
	"github.com/bookforge/bookforge-backend/internal/server/middleware"
	"github.com/bookforge/bookforge-backend/internal/server/response"
)

type RouterConfig struct {
	Log               *logger.Logger
	GenerateHandler   *handlers.GenerateHandler
	SubmissionHandler *handlers.SubmissionHandler
	AdminHandler      *handlers.AdminHandler
	NotifyHandler     *handlers.NotifyHandler
	RealtimeHandler   *handlers.RealtimeHandler
	BillingHandler    *handlers.BillingHandler
	AuthMiddleware    *middleware.AuthMiddleware
	AdminMiddleware   *middleware.AdminMiddleware
	ServiceName       string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLog(cfg.Log))
	router.Use(otelgin.Middleware(cfg.ServiceName))

	// The generation API serves browser clients directly; CORS stays open
	// and preflight is answered for every route.
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:    []string{"Authorization", "Content-Type", "X-Requested-With"},
	}))

	// Wrong method on a known path is a 405, not a 404.
	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		response.RespondError(c, http.StatusMethodNotAllowed, "method_not_allowed",
			fmt.Errorf("method %s not allowed", c.Request.Method))
	})
	router.NoRoute(func(c *gin.Context) {
		response.RespondError(c, http.StatusNotFound, "not_found",
			fmt.Errorf("no route for %s", c.Request.URL.Path))
	})

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		generate := api.Group("/generate")
		{
			generate.POST("/outline", cfg.GenerateHandler.Outline)
			generate.POST("/chapter", cfg.GenerateHandler.Chapter)
			generate.POST("/cover", cfg.GenerateHandler.Cover)
			generate.POST("/pdf", cfg.GenerateHandler.PDF)
			generate.POST("/book", cfg.GenerateHandler.Build)
		}

		api.POST("/submissions", cfg.SubmissionHandler.Create)
		api.POST("/notify/submission", cfg.NotifyHandler.SubmissionEmails)
		api.GET("/realtime/stream", cfg.RealtimeHandler.Stream)

		protected := api.Group("/")
		protected.Use(cfg.AuthMiddleware.RequireAuth())
		{
			protected.GET("/submissions", cfg.SubmissionHandler.ListMine)
			protected.GET("/billing/subscriptions", cfg.BillingHandler.MySubscriptions)
			protected.GET("/billing/orders", cfg.BillingHandler.MyOrders)
		}

		admin := api.Group("/admin")
		admin.Use(cfg.AdminMiddleware.RequireAdmin())
		{
			admin.GET("/submissions", cfg.AdminHandler.ListSubmissions)
			admin.PUT("/submissions", cfg.AdminHandler.UpdateSubmissionStatus)
			admin.POST("/billing/sync", cfg.BillingHandler.Sync)
		}
	}

	return router
}
