package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/auth"
	"github.com/openshelf/openshelf/internal/circulation"
	"github.com/openshelf/openshelf/internal/config"
	"github.com/openshelf/openshelf/internal/database"
	"github.com/openshelf/openshelf/internal/database/authors"
	"github.com/openshelf/openshelf/internal/database/books"
	"github.com/openshelf/openshelf/internal/database/loans"
	"github.com/openshelf/openshelf/internal/database/readers"
	http_controllers "github.com/openshelf/openshelf/internal/http"
	"github.com/openshelf/openshelf/internal/reports"
	"github.com/openshelf/openshelf/internal/scheduler"
	"github.com/openshelf/openshelf/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting OpenShelf v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	booksRepo := books.NewRepository(db.DB)
	authorsRepo := authors.NewRepository(db.DB)
	readersRepo := readers.NewRepository(db.DB)
	loansRepo := loans.NewRepository(db.DB)

	circulationService := circulation.NewService(db.DB)

	reportGenerator := reports.NewGenerator(cfg.Reports.LibraryName)

	// Task queue and audit scheduler
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	var auditScheduler *scheduler.AvailabilityAuditScheduler
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:           cfg.Tasks.Workers,
			MaxRetries:        cfg.Tasks.MaxRetries,
			RetryDelay:        cfg.Tasks.RetryDelay,
			TaskTimeout:       cfg.Tasks.TaskTimeout,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewAvailabilityAuditQueue(circulationService),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		auditScheduler = scheduler.NewAvailabilityAuditScheduler(taskClient, cfg.Audit)
		if err := auditScheduler.Start(); err != nil {
			log.Fatalf("Failed to start audit scheduler: %v", err)
		}
	}

	// Authentication
	authService := auth.NewService(db.DB, cfg.Auth)

	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatalf("Failed to get SQL DB for sessions: %v", err)
	}

	sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to initialize session manager: %v", err)
	}

	authMiddleware := auth.NewMiddleware(authService, sessionManager)

	loginRateLimiter := auth.NewRateLimiter(auth.RateLimitConfig{
		MaxAttempts:     cfg.Auth.MaxLoginAttempts,
		WindowDuration:  cfg.Auth.RateLimitWindow,
		LockoutDuration: cfg.Auth.LockoutDuration,
	})

	var csrfSecret []byte
	if cfg.Auth.SessionSecret != "" {
		csrfSecret, err = hex.DecodeString(cfg.Auth.SessionSecret)
		if err != nil {
			// Not hex, use as raw bytes
			csrfSecret = []byte(cfg.Auth.SessionSecret)
		}
	} else {
		secret, err := auth.GenerateSessionSecret()
		if err != nil {
			log.Fatalf("Failed to generate CSRF secret: %v", err)
		}
		csrfSecret, _ = hex.DecodeString(secret)
		log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
	}

	hasUsers, err := authService.HasUsers()
	if err != nil {
		log.Printf("Failed to check for existing users: %v", err)
	} else if !hasUsers {
		log.Printf("No users found. The first account created via /api/auth/signup becomes the administrator.")
	}

	routerCfg := http_controllers.RouterConfig{
		Books:            booksRepo,
		Authors:          authorsRepo,
		Readers:          readersRepo,
		Loans:            loansRepo,
		Circulation:      circulationService,
		ReportGenerator:  reportGenerator,
		AuthService:      authService,
		AuthMiddleware:   authMiddleware,
		SessionManager:   sessionManager,
		LoginRateLimiter: loginRateLimiter,
		CSRFSecret:       csrfSecret,
		SecureCookies:    cfg.Auth.SecureCookies,
		AuditScheduler:   auditScheduler,
		Version:          version,
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		loginRateLimiter.Stop()
		if auditScheduler != nil {
			auditScheduler.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
