package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Owhab/nexacms-sub003/internal/authorization"
	"github.com/Owhab/nexacms-sub003/internal/config"
	"github.com/Owhab/nexacms-sub003/internal/handlers"
	"github.com/Owhab/nexacms-sub003/internal/middleware"
	"github.com/Owhab/nexacms-sub003/internal/migration"
	"github.com/Owhab/nexacms-sub003/internal/models"
	"github.com/Owhab/nexacms-sub003/internal/repository"
	"github.com/Owhab/nexacms-sub003/internal/sections"
	"github.com/Owhab/nexacms-sub003/internal/service"
	"github.com/Owhab/nexacms-sub003/pkg/cache"
	"github.com/Owhab/nexacms-sub003/pkg/logger"
	"github.com/Owhab/nexacms-sub003/pkg/media"
)

const (
	batchMigrationLimit = 10
	preloadLimit        = 5
	expensiveWindow     = 60
)

type Application struct {
	cfg *config.Config

	db    *gorm.DB
	cache *cache.Cache

	registry *sections.Registry
	factory  *sections.Factory
	renderer *sections.Renderer
	engine   *migration.Engine

	repositories repositoryContainer
	services     serviceContainer
	handlers     handlerContainer

	rateLimiter *middleware.RateLimitManager
	router      *gin.Engine
	server      *http.Server
}

type repositoryContainer struct {
	Section repository.SectionRepository
}

type serviceContainer struct {
	Section     *service.SectionService
	SectionType *service.SectionTypeService
}

type handlerContainer struct {
	Section     *handlers.SectionHandler
	SectionType *handlers.SectionTypeHandler
}

func New(cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	app := &Application{cfg: cfg}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.runMigrations(); err != nil {
		return nil, err
	}

	if err := app.initCache(); err != nil {
		return nil, err
	}

	if err := app.build(context.Background()); err != nil {
		return nil, err
	}

	app.server = &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        app.router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	return app, nil
}

// build wires everything above the database and cache connections.
func (a *Application) build(ctx context.Context) error {
	if err := a.initSections(); err != nil {
		return err
	}
	if err := a.initRepositories(); err != nil {
		return err
	}
	if err := a.initServices(); err != nil {
		return err
	}
	a.initHandlers()
	a.rateLimiter = middleware.NewRateLimitManager(ctx)
	a.initRouter()
	return nil
}

func (a *Application) Run() error {
	logger.Info("Server starting", map[string]interface{}{
		"port":        a.cfg.Port,
		"environment": a.cfg.Environment,
	})

	return a.server.ListenAndServe()
}

func (a *Application) Shutdown(ctx context.Context) error {
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			return err
		}
	}

	if a.rateLimiter != nil {
		if err := a.rateLimiter.Shutdown(); err != nil {
			logger.Error(err, "Failed to stop rate limiter", nil)
		}
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			logger.Error(err, "Failed to close cache connection", nil)
		}
	}

	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			sqlDB.Close()
		}
	}

	return nil
}

func (a *Application) Router() *gin.Engine {
	return a.router
}

func (a *Application) initDatabase() error {
	logger.Info("Connecting to database", nil)

	db, err := gorm.Open(postgres.Open(a.cfg.DatabaseURL), &gorm.Config{
		Logger: logger.NewGormLogger(),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	a.db = db
	return nil
}

func (a *Application) runMigrations() error {
	if a.db == nil {
		return fmt.Errorf("database connection is not initialized")
	}

	logger.Info("Running database migrations", nil)

	if err := a.db.AutoMigrate(&models.SectionInstance{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	statements := []string{
		"CREATE INDEX IF NOT EXISTS idx_section_instances_type ON section_instances(type_id)",
		"CREATE INDEX IF NOT EXISTS idx_section_instances_properties ON section_instances USING GIN (properties)",
	}
	for _, stmt := range statements {
		if err := a.db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	logger.Info("Database migration completed", nil)
	return nil
}

func (a *Application) initCache() error {
	if !a.cfg.EnableRedis {
		c, _ := cache.NewCache("", false)
		a.cache = c
		return nil
	}

	c, err := cache.NewCache(a.cfg.RedisURL, true)
	if err != nil {
		if a.cfg.IsProduction() {
			return err
		}
		logger.Warn("Redis unavailable, page render cache disabled", map[string]interface{}{
			"error": err.Error(),
		})
		c, _ = cache.NewCache("", false)
	}
	a.cache = c
	return nil
}

// initSections builds the registry, applying the optional YAML catalog on top of the
// built-in types, and the factory, renderer and migration engine that share it.
func (a *Application) initSections() error {
	a.registry = sections.NewDefaultRegistry()

	if path := strings.TrimSpace(a.cfg.SectionCatalogFile); path != "" {
		file, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open section catalog: %w", err)
		}
		report, err := a.registry.ApplyCatalog(file)
		file.Close()
		if err != nil {
			return fmt.Errorf("failed to apply section catalog: %w", err)
		}
		logger.Info("Section catalog applied", map[string]interface{}{
			"file":         path,
			"registered":   len(report.Registered),
			"patched":      len(report.Patched),
			"unregistered": len(report.Unregistered),
			"warnings":     report.Warnings,
		})
	}

	factory, err := sections.NewFactory(a.registry, sections.DefaultImplementations(), sections.FactoryOptions{
		LoadTimeout: a.cfg.SectionLoadTimeout,
		CacheSize:   a.cfg.SectionCacheSize,
	})
	if err != nil {
		return fmt.Errorf("failed to create section factory: %w", err)
	}
	a.factory = factory

	resolver, err := media.NewResolver(a.cfg.MediaBaseURL)
	if err != nil {
		return fmt.Errorf("invalid media base url: %w", err)
	}
	a.renderer = sections.NewRenderer(a.registry, a.factory, service.NewSiteRenderContext(resolver))

	engine, err := migration.NewEngine(a.registry)
	if err != nil {
		return fmt.Errorf("failed to create migration engine: %w", err)
	}
	a.engine = engine
	return nil
}

func (a *Application) initRepositories() error {
	if a.db == nil {
		return fmt.Errorf("database connection is not initialized")
	}
	a.repositories = repositoryContainer{
		Section: repository.NewSectionRepository(a.db),
	}
	return nil
}

func (a *Application) initServices() error {
	a.services = serviceContainer{
		Section: service.NewSectionService(
			a.repositories.Section,
			a.registry,
			a.renderer,
			a.engine,
			a.cache,
			service.SectionServiceOptions{
				RenderCacheTTL:    a.cfg.RenderCacheTTL,
				RenderConcurrency: a.cfg.SectionRenderConcurrency,
			},
		),
		SectionType: service.NewSectionTypeService(a.registry, a.factory, a.cache, a.cfg.EnableRuntimeRegistration),
	}
	return nil
}

func (a *Application) initHandlers() {
	a.handlers = handlerContainer{
		Section:     handlers.NewSectionHandler(a.services.Section),
		SectionType: handlers.NewSectionTypeHandler(a.services.SectionType),
	}
}

func (a *Application) initRouter() {
	if a.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(logger.GinLogger())
	router.Use(middleware.SecurityHeadersMiddleware(a.cfg.MediaBaseURL))
	if a.cfg.EnableMetrics {
		router.Use(middleware.MetricsMiddleware())
	}
	router.Use(middleware.RateLimitMiddleware(a.rateLimiter, a.cfg))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     a.cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	if a.cfg.EnableMetrics {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	v1 := router.Group("/api/v1")
	{
		public := v1.Group("")
		{
			public.GET("/section-types", a.handlers.SectionType.List)
			public.GET("/section-types/:id", a.handlers.SectionType.Get)
			public.GET("/section-types/:id/schema", a.handlers.SectionType.Schema)
			public.GET("/pages/:pageId/render", a.handlers.Section.RenderPage)
		}

		admin := v1.Group("/admin")
		admin.Use(middleware.AuthMiddleware(a.cfg.JWTSecret))
		{
			preview := admin.Group("")
			preview.Use(middleware.RequirePermission(authorization.PermissionPreviewSections))
			{
				preview.GET("/pages/:pageId/sections", a.handlers.Section.ListPageSections)
				preview.GET("/sections/:sectionId/render", a.handlers.Section.RenderSection)
				preview.POST("/migrations/preview", a.handlers.Section.PreviewMigration)
				preview.POST("/migrations/recommend", a.handlers.Section.Recommend)
			}

			content := admin.Group("")
			content.Use(middleware.RequirePermission(authorization.PermissionManageAllContent))
			{
				content.POST("/pages/:pageId/sections", a.handlers.Section.CreateSection)
				content.POST("/pages/:pageId/sections/reorder", a.handlers.Section.ReorderSections)
				content.PUT("/sections/:sectionId/properties", a.handlers.Section.SaveProperties)
				content.DELETE("/sections/:sectionId", a.handlers.Section.DeleteSection)
				content.POST("/sections/:sectionId/migrate", a.handlers.Section.MigrateSection)
				content.POST("/migrations/batch",
					middleware.OperationRateLimit(a.rateLimiter, "batch migration", batchMigrationLimit, expensiveWindow),
					a.handlers.Section.BatchMigrate,
				)
			}

			types := admin.Group("/section-types")
			types.Use(middleware.RequirePermission(authorization.PermissionManageSectionTypes))
			{
				types.GET("", a.handlers.SectionType.ListAll)
				types.POST("", a.handlers.SectionType.Register)
				types.PATCH("/:id", a.handlers.SectionType.Patch)
				types.DELETE("/:id", a.handlers.SectionType.Unregister)
			}

			factory := admin.Group("/section-factory")
			factory.Use(middleware.RequirePermission(authorization.PermissionManageSettings))
			{
				factory.GET("/stats", a.handlers.SectionType.FactoryStats)
				factory.POST("/preload",
					middleware.OperationRateLimit(a.rateLimiter, "preload", preloadLimit, expensiveWindow),
					a.handlers.SectionType.Preload,
				)
				factory.GET("/usage", handlers.GetSectionStatistics(a.db))
				factory.DELETE("/render-cache", handlers.ClearRenderCache(a.cache))
				factory.DELETE("/cache", a.handlers.SectionType.ClearCaches)
			}
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Route not found",
			"path":  c.Request.URL.Path,
		})
	})

	a.router = router
}
