package http

import (
	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/auth"
	"github.com/openshelf/openshelf/internal/entities"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.Use(auth.SecurityHeadersMiddleware())

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	}

	healthController := NewHealthController(cfg.Version)
	router.GET("/health", healthController.Health)

	if cfg.AuthService != nil && cfg.SessionManager != nil {
		authController := auth.NewController(cfg.AuthService, cfg.SessionManager, cfg.LoginRateLimiter)
		authController.RegisterRoutes(router)
	}

	api := router.Group("/api")

	booksController := NewBooksController(cfg.Books)
	api.GET("/books", booksController.List)
	api.GET("/books/:id", booksController.Get)
	api.POST("/books", booksController.Create)
	api.PUT("/books/:id", booksController.Update)
	api.DELETE("/books/:id", booksController.Delete)

	authorsController := NewAuthorsController(cfg.Authors)
	api.GET("/authors", authorsController.List)
	api.GET("/authors/:id", authorsController.Get)
	api.POST("/authors", authorsController.Create)
	api.PUT("/authors/:id", authorsController.Update)
	api.DELETE("/authors/:id", authorsController.Delete)

	readersController := NewReadersController(cfg.Readers)
	api.GET("/readers", readersController.List)
	api.GET("/readers/:id", readersController.Get)
	api.POST("/readers", readersController.Create)
	api.PUT("/readers/:id", readersController.Update)
	api.DELETE("/readers/:id", readersController.Delete)

	loansController := NewLoansController(cfg.Loans, cfg.Circulation)
	api.GET("/loans", loansController.List)
	api.GET("/loans/:id", loansController.Get)
	api.POST("/loans", loansController.Checkout)
	api.PUT("/loans/:id/return", loansController.Return)

	if cfg.ReportGenerator != nil {
		reportsController := NewReportsController(cfg.ReportGenerator, cfg.Books, cfg.Readers, cfg.Loans)
		api.GET("/reports/books", reportsController.Books)
		api.GET("/reports/readers", reportsController.Readers)
		api.GET("/reports/loans", reportsController.Loans)
		api.GET("/reports/stats", reportsController.Stats)
	}

	if cfg.AuditScheduler != nil {
		admin := api.Group("/admin")
		if cfg.AuthMiddleware != nil {
			admin.Use(cfg.AuthMiddleware.RequireRole(entities.UserRoleAdmin))
		}
		adminController := NewAdminController(cfg.AuditScheduler)
		admin.POST("/audit", adminController.TriggerAudit)
	}

	return router
}
