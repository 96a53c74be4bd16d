package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"drake-homes/internal/brochure"
	"drake-homes/internal/config"
	"drake-homes/internal/database"
	"drake-homes/internal/handlers"
	"drake-homes/internal/ratelimit"
	"drake-homes/internal/scheduler"
	"drake-homes/internal/search"
	"drake-homes/internal/selection"
	"drake-homes/internal/upload"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
)

var (
	gormDB          *database.GormDB
	searchEngine    search.Engine
	appConfig       *config.Config
	rateLimiter     *ratelimit.RateLimiter
	appScheduler    *scheduler.Scheduler
	indexWorker     *scheduler.IndexWorker
	uploadSessions  *upload.Sessions
	brochureService *brochure.Service
)

func main() {
	// Load configuration
	configPath := config.GetEnv("CONFIG_PATH", "config/app.yaml")
	var err error
	appConfig, err = config.LoadConfig(configPath)
	if err != nil {
		log.Printf("Warning: Failed to load config from %s: %v. Using defaults.", configPath, err)
		appConfig = config.DefaultConfig()
	} else {
		log.Printf("Loaded configuration from %s", configPath)
	}
	if dbType := config.GetEnv("DB_TYPE", ""); dbType != "" {
		appConfig.Database.Type = dbType
	}

	gormDB, err = database.Open(appConfig.Database, appConfig.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer gormDB.Close()
	log.Printf("Using %s database", databaseType())

	if err := gormDB.InitSchema(); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	schema, err := loadSchema()
	if err != nil {
		log.Fatalf("Failed to load selection schema: %v", err)
	}

	searchEngine = newSearchEngine()

	indexWorker = scheduler.NewIndexWorker(gormDB, searchEngine, appConfig.Search.GetPollInterval())
	indexWorker.Start()
	defer indexWorker.Stop()
	log.Println("Index worker started")

	uploadSessions = upload.NewSessions(appConfig.Upload.GetSessionTTL())
	defer uploadSessions.CloseAll()
	store, err := upload.NewLocalStore(appConfig.Upload.StorageDir, appConfig.Upload.PublicBaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize upload storage: %v", err)
	}

	if appConfig.Brochure.Enabled {
		brochureService = brochure.NewService(
			brochure.NewChromeRenderer(appConfig.Brochure.ChromePath, appConfig.Brochure.GetTimeout()),
			brochure.NewCircuitBreaker(appConfig.Brochure.FailureThreshold, appConfig.Brochure.GetResetTimeout()),
		)
		log.Println("Brochure PDF rendering enabled")
	}

	// Initialize rate limiter
	rateLimiter = ratelimit.NewRateLimiter(
		appConfig.RateLimit.RequestsPerMinute,
		appConfig.RateLimit.RequestsPerHour,
		appConfig.RateLimit.Enabled,
	)
	log.Printf("Rate limiter initialized: %d req/min, %d req/hour (enabled: %v)",
		appConfig.RateLimit.RequestsPerMinute,
		appConfig.RateLimit.RequestsPerHour,
		appConfig.RateLimit.Enabled,
	)

	appScheduler = scheduler.NewScheduler(gormDB, searchEngine, uploadSessions, appConfig)
	if err := appScheduler.AddFunc(scheduler.SessionExpirySpec, func() { rateLimiter.Prune() }); err != nil {
		log.Printf("Warning: Failed to schedule rate limiter pruning: %v", err)
	}
	if err := appScheduler.Start(); err != nil {
		log.Printf("Warning: Failed to start scheduler: %v", err)
	}
	defer appScheduler.Stop()

	// Setup Gin router
	r := gin.New()
	if appConfig.Logging.LogRequests {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())
	r.MaxMultipartMemory = 32 << 20

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     appConfig.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition", "Retry-After", "X-Brochure-Fallback"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", healthCheck)
	r.Static(appConfig.Upload.PublicBaseURL, store.Dir())

	limited := ratelimit.Middleware(rateLimiter)
	api := r.Group("/api")

	properties := handlers.NewPropertyHandler(gormDB, brochureService, indexWorker)
	{
		g := api.Group("/properties")
		g.GET("", properties.List)
		g.POST("", properties.Create)
		g.GET("/map", properties.Map)
		g.POST("/bulk", properties.Bulk)
		g.GET("/:id", properties.Get)
		g.PUT("/:id", properties.Update)
		g.DELETE("/:id", properties.Delete)
		g.POST("/:id/images", properties.AddImage)
		g.PUT("/:id/images/:imageId/main", properties.SetMainImage)
		g.DELETE("/:id/images/:imageId", properties.DeleteImage)
		g.GET("/:id/brochure", properties.Brochure)
		g.GET("/:id/media", properties.Media)
		g.GET("/:id/history", properties.History)
	}

	plans := handlers.NewPlanHandler(gormDB, indexWorker)
	{
		g := api.Group("/plans")
		g.GET("", plans.List)
		g.POST("", plans.Create)
		g.GET("/:id", plans.Get)
		g.PUT("/:id", plans.Update)
		g.DELETE("/:id", plans.Delete)
		g.POST("/:id/features", plans.AddFeature)
		g.DELETE("/:id/features/:featureId", plans.DeleteFeature)
		g.POST("/:id/images", plans.AddImage)
		g.DELETE("/:id/images/:imageId", plans.DeleteImage)
		g.POST("/:id/documents", plans.AddDocument)
		g.DELETE("/:id/documents/:documentId", plans.DeleteDocument)
		g.GET("/:id/media", plans.Media)
		g.GET("/:id/configurator", plans.Configurator)
	}

	lots := handlers.NewLotHandler(gormDB, indexWorker)
	{
		g := api.Group("/lots")
		g.GET("", lots.List)
		g.POST("", lots.Create)
		g.POST("/bulk", lots.Bulk)
		g.GET("/:id", lots.Get)
		g.PUT("/:id", lots.Update)
		g.DELETE("/:id", lots.Delete)
		g.POST("/:id/features", lots.AddFeature)
		g.DELETE("/:id/features/:featureId", lots.DeleteFeature)
		g.POST("/:id/images", lots.AddImage)
		g.DELETE("/:id/images/:imageId", lots.DeleteImage)
		g.GET("/:id/media", lots.Media)
	}

	galleries := handlers.NewGalleryHandler(gormDB)
	{
		g := api.Group("/galleries")
		g.GET("", galleries.ListGalleries)
		g.POST("", galleries.CreateGallery)
		g.GET("/:id", galleries.GetGallery)
		g.PUT("/:id", galleries.UpdateGallery)
		g.DELETE("/:id", galleries.DeleteGallery)

		img := api.Group("/gallery")
		img.GET("", galleries.ListImages)
		img.POST("", galleries.CreateImage)
		img.GET("/:id", galleries.GetImage)
		img.PUT("/:id", galleries.UpdateImage)
		img.DELETE("/:id", galleries.DeleteImage)
	}

	customizations := handlers.NewCustomizationHandler(gormDB)
	{
		g := api.Group("/customization-categories")
		g.GET("", customizations.ListCategories)
		g.POST("", customizations.CreateCategory)
		g.GET("/:id", customizations.GetCategory)
		g.PUT("/:id", customizations.UpdateCategory)
		g.DELETE("/:id", customizations.DeleteCategory)

		o := api.Group("/customization-options")
		o.GET("", customizations.ListOptions)
		o.POST("", customizations.CreateOption)
		o.GET("/:id", customizations.GetOption)
		o.PUT("/:id", customizations.UpdateOption)
		o.DELETE("/:id", customizations.DeleteOption)
	}

	configurations := handlers.NewConfigurationHandler(gormDB)
	{
		g := api.Group("/configurations")
		g.GET("", configurations.List)
		g.POST("", limited, configurations.Create)
		g.GET("/:id", configurations.Get)
		g.PUT("/:id", configurations.Update)
		g.DELETE("/:id", configurations.Delete)
	}

	books := handlers.NewSelectionBookHandler(gormDB, schema, brochureService)
	{
		g := api.Group("/selection-books")
		g.GET("", books.List)
		g.POST("", limited, books.Create)
		g.GET("/schema", books.Schema)
		g.GET("/:id", books.Get)
		g.PUT("/:id", books.Update)
		g.DELETE("/:id", books.Delete)
		g.POST("/:id/options", books.ChangeOption)
		g.POST("/:id/text", books.ChangeText)
		g.GET("/:id/steps", books.Steps)
		g.GET("/:id/summary", books.Summary)
		g.PUT("/:id/status", books.UpdateStatus)
		g.GET("/:id/print", books.Print)
	}

	testimonials := handlers.NewTestimonialHandler(gormDB)
	{
		g := api.Group("/testimonials")
		g.GET("", testimonials.List)
		g.POST("", limited, testimonials.Create)
		g.GET("/:id", testimonials.Get)
		g.PUT("/:id", testimonials.Update)
		g.DELETE("/:id", testimonials.Delete)
	}

	uploads := handlers.NewUploadHandler(gormDB, store, uploadSessions, appConfig.Upload, indexWorker)
	{
		g := api.Group("/upload")
		g.POST("", uploads.Upload)
		g.POST("/sessions", uploads.CreateSession)
		g.GET("/sessions/:id", uploads.GetSession)
		g.DELETE("/sessions/:id", uploads.DeleteSession)
		g.POST("/sessions/:id/files", uploads.AddFiles)
		g.GET("/sessions/:id/files/:entryId/preview", uploads.Preview)
		g.DELETE("/sessions/:id/files/:entryId", uploads.RemoveFile)
		g.PUT("/sessions/:id/main/:entryId", uploads.SetMain)
		g.POST("/sessions/:id/upload", uploads.UploadAll)
		g.POST("/sessions/:id/retry", uploads.Retry)
	}

	api.GET("/search", handlers.NewSearchHandler(searchEngine).Search)

	// Admin API routes (requires authentication in production)
	adminHandler := handlers.NewAdminHandler(gormDB, appScheduler, indexWorker, brochureService, rateLimiter)
	admin := api.Group("/admin")
	{
		admin.GET("/stats", adminHandler.GetStats)
		admin.GET("/price-distribution", adminHandler.GetPriceDistribution)
		admin.GET("/ratelimit", adminHandler.GetRateLimitStats)

		// Cleanup operations
		admin.POST("/cleanup/run", adminHandler.RunCleanup)
		admin.GET("/cleanup/logs", adminHandler.GetDeleteLogs)

		// Property history
		admin.GET("/changes/recent", adminHandler.GetRecentChanges)

		// Search
		admin.POST("/reindex", adminHandler.Reindex)
	}
	log.Println("Admin API routes registered at /api/admin/*")

	port := config.GetEnv("PORT", appConfig.Server.Port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	sig := <-sigChan
	log.Printf("Received %s, shutting down", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown failed: %v", err)
	}
}

func healthCheck(c *gin.Context) {
	status := gin.H{
		"status":   "ok",
		"time":     time.Now(),
		"database": databaseType(),
	}
	if sqlDB, err := gormDB.DB().DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		status["status"] = "degraded"
		status["database_error"] = "unreachable"
	}
	if client, ok := searchEngine.(*search.SearchClient); ok {
		status["search"] = client.Healthy()
	} else {
		status["search"] = "disabled"
	}
	c.JSON(http.StatusOK, status)
}

func databaseType() string {
	if appConfig.Database.Type == "" {
		return "sqlite"
	}
	return appConfig.Database.Type
}

func loadSchema() (*selection.Schema, error) {
	path := config.GetEnvOrConfig(appConfig.Selection.SchemaPath, "SELECTION_SCHEMA_PATH", "")
	if path == "" {
		return selection.DefaultSchema()
	}
	log.Printf("Loading selection schema from %s", path)
	return selection.LoadSchema(path)
}

// newSearchEngine connects to Meilisearch, or returns a disabled engine
// when no host is configured
func newSearchEngine() search.Engine {
	m := appConfig.Search.Meilisearch
	host := config.GetEnvOrConfig(m.Host, "MEILISEARCH_HOST", "")
	if host == "" {
		log.Println("Search: no Meilisearch host configured, search disabled")
		return search.Disabled{}
	}
	client := search.NewSearchClient(host, config.GetEnvOrConfig(m.APIKey, "MEILISEARCH_KEY", ""), m.IndexPrefix)
	if err := client.InitIndexes(); err != nil {
		log.Printf("Warning: Failed to initialize search indexes: %v", err)
	}
	return client
}
