package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/splicerhq/groupbuy_api/internal/cache"
	"github.com/splicerhq/groupbuy_api/internal/config"
	"github.com/splicerhq/groupbuy_api/internal/database"
	"github.com/splicerhq/groupbuy_api/internal/handler"
	"github.com/splicerhq/groupbuy_api/internal/middleware"
	"github.com/splicerhq/groupbuy_api/internal/repository"
	"github.com/splicerhq/groupbuy_api/internal/service"
	"github.com/splicerhq/groupbuy_api/internal/utils"
	"github.com/splicerhq/groupbuy_api/internal/worker"
)

// main is the application entrypoint for the Splicer group buying API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting groupbuy api")

	utils.SetJWTSecret(cfg.JWTSecret)

	// 3. Connect database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := runMigrations(db.DB); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 3b. Connect to Redis
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Error().Err(err).Msg("redis connection failed")
		fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected successfully")

	// 3c. Initialize caches
	statsCache := cache.NewDealStatsCache(redisClient, cfg.Cache.DealStatsTTL)

	// 4. Initialize repositories
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	dealRepo := repository.NewDealRepository(db)
	partRepo := repository.NewParticipantRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)

	// 5. Initialize services
	authSvc := service.NewAuthService(userRepo, cfg.JWTExpiry)
	productSvc := service.NewProductService(productRepo, categoryRepo)
	dealSvc := service.NewDealService(db, dealRepo, partRepo, productRepo, statsCache)
	dashboardSvc := service.NewDashboardService(dashboardRepo)

	// 6. Initialize middleware
	jwtMw := middleware.NewJWTMiddleware()
	loginLimiter := middleware.NewLoginRateLimiter()

	// 7. Initialize handlers
	handlers := &Handlers{
		Health:    handler.NewHealthHandler(db),
		Auth:      handler.NewAuthHandler(authSvc, loginLimiter),
		Category:  handler.NewCategoryHandler(productSvc),
		Product:   handler.NewProductHandler(productSvc),
		Deal:      handler.NewDealHandler(dealSvc),
		Dashboard: handler.NewDashboardHandler(dashboardSvc),
	}

	// 8. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.LoggingMiddleware())
	setupRoutes(router, handlers, jwtMw)

	// 9. Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 10. Start workers
	go worker.NewDealExpiryWorker(dealSvc, cfg.Worker.ExpiryInterval, cfg.Worker.ExpiryBatchSize).Start(ctx)

	// 11. Start HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 12. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 13. Cancel context to stop workers
	cancel()

	// 14. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health    *handler.HealthHandler
	Auth      *handler.AuthHandler
	Category  *handler.CategoryHandler
	Product   *handler.ProductHandler
	Deal      *handler.DealHandler
	Dashboard *handler.DashboardHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers, jwtMiddleware *middleware.JWTMiddleware) {
	router.GET("/v1/health", handlers.Health.Health)

	// Public routes
	router.POST("/v1/auth/register", handlers.Auth.Register)
	router.POST("/v1/auth/login", handlers.Auth.Login)

	router.GET("/v1/categories", handlers.Category.ListCategories)
	router.GET("/v1/products", handlers.Product.ListProducts)
	router.GET("/v1/products/:productId", handlers.Product.GetProduct)
	router.GET("/v1/products/:productId/deals", handlers.Deal.ListByProduct)
	router.GET("/v1/deals", handlers.Deal.SearchDeals)
	router.GET("/v1/deals/:dealId", handlers.Deal.GetDeal)
	router.GET("/v1/deals/:dealId/participants", handlers.Deal.ListParticipants)
	router.GET("/v1/deals/:dealId/stats", handlers.Deal.GetStats)

	// Authenticated routes
	authed := router.Group("/v1")
	authed.Use(jwtMiddleware.Handle())
	{
		authed.GET("/auth/me", handlers.Auth.Me)
		authed.GET("/dashboard", handlers.Dashboard.GetDashboard)

		authed.POST("/deals", handlers.Deal.CreateDeal)
		authed.POST("/deals/:dealId/join", handlers.Deal.JoinDeal)
		authed.POST("/deals/:dealId/leave", handlers.Deal.LeaveDeal)
		authed.POST("/deals/:dealId/cancel", handlers.Deal.CancelDeal)

		authed.GET("/my/deals/joined", handlers.Deal.ListJoined)
		authed.GET("/my/deals/created", handlers.Deal.ListCreated)
	}

	// Admin routes
	admin := router.Group("/v1/admin")
	admin.Use(jwtMiddleware.Handle(), jwtMiddleware.RequireAdmin())
	{
		admin.POST("/categories", handlers.Category.CreateCategory)
		admin.PUT("/categories/:categoryId", handlers.Category.UpdateCategory)
		admin.PATCH("/categories/:categoryId/toggle", handlers.Category.ToggleCategory)
		admin.DELETE("/categories/:categoryId", handlers.Category.DeleteCategory)

		admin.POST("/products", handlers.Product.CreateProduct)
		admin.PUT("/products/:productId", handlers.Product.UpdateProduct)
		admin.PATCH("/products/:productId/toggle", handlers.Product.ToggleProduct)
		admin.DELETE("/products/:productId", handlers.Product.DeleteProduct)

		admin.GET("/deals", handlers.Deal.ListAdmin)
		admin.GET("/deals/:dealId/consistency", handlers.Deal.CheckCounters)
	}
}

// runMigrations runs database migrations using golang-migrate.
func runMigrations(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
