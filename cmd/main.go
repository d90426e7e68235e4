package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bookforge/bookforge-backend/internal/bookgen"
	"github.com/bookforge/bookforge-backend/internal/data/repos"
	"github.com/bookforge/bookforge-backend/internal/data/repos/ailog"
	"github.com/bookforge/bookforge-backend/internal/db"
	"github.com/bookforge/bookforge-backend/internal/observability"
	"github.com/bookforge/bookforge-backend/internal/platform/docrender"
	"github.com/bookforge/bookforge-backend/internal/platform/envutil"
	"github.com/bookforge/bookforge-backend/internal/platform/logger"
	"github.com/bookforge/bookforge-backend/internal/platform/openai"
	"github.com/bookforge/bookforge-backend/internal/platform/redisbus"
	"github.com/bookforge/bookforge-backend/internal/platform/sendgrid"
	"github.com/bookforge/bookforge-backend/internal/realtime"
	"github.com/bookforge/bookforge-backend/internal/server"
	"github.com/bookforge/bookforge-backend/internal/server/handlers"
	"github.com/bookforge/bookforge-backend/internal/server/middleware"
	"github.com/bookforge/bookforge-backend/internal/services"
)

func main() {
	// Logger
	logMode := envutil.String("LOG_MODE", "development")
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()

	// Tracing + metrics
	observability.SetCurrent(observability.NewMetrics())
	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "bookforge-backend",
		Environment: envutil.String("ENVIRONMENT", "development"),
		Version:     envutil.String("SERVICE_VERSION", "dev"),
	})
	if otelShutdown != nil {
		defer otelShutdown(ctx)
	}

	// Database
	log.Info("Connecting to database...")
	dbService, err := db.New(log)
	if err != nil {
		log.Fatal("Database init failed", "error", err)
	}
	if dbService.Driver() == "postgres" {
		if err := db.RunMigrations(ctx, log, db.PostgresDSN()); err != nil {
			log.Fatal("Migrations failed", "error", err)
		}
	}
	if err := dbService.AutoMigrateAll(); err != nil {
		log.Warn("Auto migration failed", "error", err)
	}
	thePG := dbService.DB()

	// Repos
	log.Info("Setting up repos...")
	allRepos := repos.New(thePG, log)

	// Clients
	log.Info("Setting up upstream clients...")
	var aiClient openai.Client
	if os.Getenv("OPENAI_API_KEY") != "" {
		aiClient, err = openai.NewClient(log)
		if err != nil {
			log.Warn("OpenAI client init failed, generation falls back to local templates", "error", err)
			aiClient = nil
		}
	} else {
		log.Warn("OPENAI_API_KEY not set, generation falls back to local templates")
	}

	renderer, err := docrender.NewFromEnv(log)
	if err != nil {
		log.Fatal("Document renderer init failed", "error", err)
	}

	var mailer sendgrid.Client
	if os.Getenv("SENDGRID_API_KEY") != "" {
		mailer, err = sendgrid.NewFromEnv(log)
		if err != nil {
			log.Warn("SendGrid client init failed, notifications disabled", "error", err)
		}
	} else {
		log.Warn("SENDGRID_API_KEY not set, notifications disabled")
	}

	// Cover style catalog
	catalog := bookgen.DefaultStyleCatalog()
	if path := os.Getenv("COVER_STYLES_PATH"); path != "" {
		catalog, err = bookgen.LoadStyleCatalog(path)
		if err != nil {
			log.Fatal("Cover style catalog load failed", "error", err)
		}
	}

	// Realtime hub. With Redis configured, progress goes through pub/sub so
	// clients connected to any replica see it; the forwarder loops messages
	// back into the local hub.
	hub := realtime.NewHub(log)
	var broadcaster realtime.Broadcaster = hub
	if os.Getenv("REDIS_ADDR") != "" {
		bus, busErr := redisbus.New(log)
		if busErr != nil {
			log.Warn("Redis bus init failed, progress events stay in-process", "error", busErr)
		} else if fwdErr := bus.StartForwarder(ctx, hub.Broadcast); fwdErr != nil {
			log.Warn("Redis forwarder failed, progress events stay in-process", "error", fwdErr)
			_ = bus.Close()
		} else {
			broadcaster = bus
			defer bus.Close()
		}
	}

	// Generation services
	log.Info("Setting up services...")
	recorder := ailog.NewRecorder(allRepos.AICallLog, envutil.String("OPENAI_MODEL", "gpt-4o-mini"), log)

	var outlinePrimary bookgen.OutlineStrategy
	var contentPrimary bookgen.ContentStrategy
	var coverPrimary bookgen.CoverStrategy
	if aiClient != nil {
		outlinePrimary = &bookgen.ProxyOutline{AI: aiClient}
		contentPrimary = &bookgen.ProxyContent{AI: aiClient}
		coverPrimary = &bookgen.ProxyCover{AI: aiClient, Catalog: catalog}
	}
	outlineService := bookgen.NewOutlineService(outlinePrimary, recorder, log)
	contentService := bookgen.NewContentService(contentPrimary, recorder, log)
	coverService := bookgen.NewCoverService(coverPrimary, bookgen.NewLocalCover(catalog, log), recorder, log)
	pdfService := bookgen.NewPDFService(renderer, recorder, log)
	buildService := services.NewBookBuildService(outlineService, contentService, coverService, pdfService, broadcaster, log)

	var notifyService services.NotifyService
	if mailer != nil {
		notifyService = services.NewNotifyService(mailer, log)
	}
	submissionService := services.NewSubmissionService(thePG, allRepos.Submission, allRepos.User, notifyService, log)

	// Middleware
	authMiddleware, err := middleware.NewAuthMiddleware(log)
	if err != nil {
		log.Fatal("Auth middleware init failed", "error", err)
	}
	adminMiddleware, err := middleware.NewAdminMiddleware(log)
	if err != nil {
		log.Fatal("Admin middleware init failed", "error", err)
	}

	// Router
	log.Info("Setting up router...")
	router := server.NewRouter(server.RouterConfig{
		Log:               log,
		GenerateHandler:   handlers.NewGenerateHandler(outlineService, contentService, coverService, pdfService, buildService, log),
		SubmissionHandler: handlers.NewSubmissionHandler(submissionService, allRepos.Submission, log),
		AdminHandler:      handlers.NewAdminHandler(submissionService, log),
		NotifyHandler:     handlers.NewNotifyHandler(notifyService, log),
		RealtimeHandler:   handlers.NewRealtimeHandler(hub, log),
		BillingHandler:    handlers.NewBillingHandler(allRepos.Billing, log),
		AuthMiddleware:    authMiddleware,
		AdminMiddleware:   adminMiddleware,
		ServiceName:       "bookforge-backend",
	})

	srv := server.New(router, log)
	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal("Server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("Shutdown error", "error", err)
	}
}
