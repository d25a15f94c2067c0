// @title SAQ Advisor Backend API
// @version 1.0
// @description PCI DSS Self-Assessment Questionnaire advisor API - Merchants determine applicable SAQ types, answer questionnaires and submit them for review
// @termsOfService http://swagger.io/terms/

// @contact.name SAQ Advisor Support
// @contact.email support@paysec.tools

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter your bearer token in the format: Bearer {token}

// Package main is the entry point for the SAQ Advisor Backend API server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/paysec-tools/saqadvisor_backend/internal/auth"
	"github.com/paysec-tools/saqadvisor_backend/internal/config"
	"github.com/paysec-tools/saqadvisor_backend/internal/database"
	"github.com/paysec-tools/saqadvisor_backend/internal/handlers"
	"github.com/paysec-tools/saqadvisor_backend/internal/middleware"
	"github.com/paysec-tools/saqadvisor_backend/internal/repository"
	"github.com/paysec-tools/saqadvisor_backend/internal/services"

	// Swagger docs
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/paysec-tools/saqadvisor_backend/docs"
)

// Build-time variables (set via ldflags)
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
	GitBranch = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database connection
	ctx := context.Background()
	dbCfg := database.Config{
		URI:                    cfg.DatabaseURI,
		Database:               cfg.DatabaseName,
		MaxPoolSize:            100,
		MinPoolSize:            10,
		MaxConnIdleTime:        30 * time.Minute,
		ConnectTimeout:         10 * time.Second,
		ServerSelectionTimeout: 10 * time.Second,
	}

	dbClient, err := database.NewClient(dbCfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Initialize JWT service early (before defer) to avoid exitAfterDefer issue
	jwtCfg := auth.JWTConfig{
		PrivateKeyPath:    cfg.JWTPrivateKeyPath,
		PublicKeyPath:     cfg.JWTPublicKeyPath,
		AccessTokenExpiry: cfg.AccessTokenExpiry,
		InvitationExpiry:  cfg.InvitationExpiry,
		Issuer:            "saqadvisor-backend",
	}

	jwtService, err := auth.NewJWTService(jwtCfg)
	if err != nil {
		if closeErr := dbClient.Close(ctx); closeErr != nil {
			log.Printf("Error closing database connection: %v", closeErr)
		}
		log.Fatalf("Failed to initialize JWT service: %v", err)
	}

	defer func() {
		if closeErr := dbClient.Close(ctx); closeErr != nil {
			log.Printf("Error closing database connection: %v", closeErr)
		}
	}()

	// Ensure indexes
	log.Println("Creating database indexes...")
	if indexErr := dbClient.EnsureIndexes(ctx); indexErr != nil {
		log.Printf("Warning: Failed to create indexes: %v", indexErr)
	}

	// Seed initial data (SAQ question banks)
	log.Println("Seeding initial data...")
	if seedErr := dbClient.SeedData(ctx); seedErr != nil {
		log.Printf("Warning: Failed to seed data: %v", seedErr)
	}

	// Initialize repositories
	questionRepo := repository.NewQuestionRepository(dbClient)
	responseRepo := repository.NewResponseRepository(dbClient)
	questionnaireAnswerRepo := repository.NewQuestionnaireAnswerRepository(dbClient)
	auditRepo := repository.NewAuditRepository(dbClient)

	// Initialize mail service (always use HTTP service)
	mailService := services.NewHTTPMailService(cfg.MailServiceURL, cfg.MailAPIKey)

	// Initialize audit logging
	auditService := services.NewAuditService(auditRepo)
	auditHelpers := services.NewAuditHelpers(auditService)

	// Initialize notification service
	notificationService := services.NewNotificationService(mailService)

	// Initialize template service
	templateService := services.NewTemplateService(questionRepo)

	// Initialize answer service
	answerService := services.NewAnswerService(
		responseRepo,
		questionnaireAnswerRepo,
		auditHelpers,
	)

	// Initialize questionnaire service
	questionnaireService := services.NewQuestionnaireService(
		questionnaireAnswerRepo,
		notificationService,
		auditHelpers,
	)

	// Initialize review service
	reviewService := services.NewReviewService(
		questionnaireAnswerRepo,
		responseRepo,
		notificationService,
		auditHelpers,
	)

	// Initialize render service
	renderService := services.NewRenderService(questionnaireAnswerRepo, auditHelpers)

	// Initialize sharing service
	sharingService := services.NewSharingService(
		questionnaireAnswerRepo,
		jwtService,
		notificationService,
		auditHelpers,
		cfg.InvitationBaseURL,
	)

	// Initialize advisor service (wizard session manager)
	advisorService := services.NewAdvisorService(
		templateService,
		answerService,
		questionnaireService,
		renderService,
		cfg.RenderDebounce,
		cfg.SessionTTL,
	)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(dbClient, Version)
	advisorHandler := handlers.NewAdvisorHandler(advisorService)
	questionnaireHandler := handlers.NewQuestionnaireHandler(questionnaireService, answerService, renderService, auditService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	sharingHandler := handlers.NewSharingHandler(sharingService, questionnaireService)
	templateHandler := handlers.NewTemplateHandler(templateService)

	// Create Gin router
	router := gin.New()

	// Apply global middleware
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(middleware.SecureHeaders())
	router.Use(rateLimiter.RateLimit())

	// Register health routes (not under /api/v1)
	healthHandler.RegisterRoutes(router)

	// Register Swagger documentation route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Create API v1 group
	apiV1 := router.Group("/api/v1")

	// Create auth middleware
	authMiddleware := middleware.AuthMiddleware(jwtService)

	// Register routes
	advisorHandler.RegisterRoutes(apiV1, authMiddleware)
	questionnaireHandler.RegisterRoutes(apiV1, authMiddleware)
	reviewHandler.RegisterRoutes(apiV1, authMiddleware)
	sharingHandler.RegisterRoutes(apiV1, authMiddleware)
	templateHandler.RegisterRoutes(apiV1, authMiddleware)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Starting SAQ Advisor Backend API server v%s on port %s", Version, cfg.ServerPort)
		log.Printf("Build: %s | Commit: %s | Branch: %s", BuildTime, GitCommit, GitBranch)
		log.Printf("Environment: %s", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown server gracefully
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server shutdown complete")
}
