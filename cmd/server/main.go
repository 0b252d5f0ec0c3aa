package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/navisol/werf/internal/config"
	"github.com/navisol/werf/internal/handler"
	"github.com/navisol/werf/internal/middleware"
	"github.com/navisol/werf/internal/model/entity"
	"github.com/navisol/werf/internal/repository"
	"github.com/navisol/werf/internal/service"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Optional .env for local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting werf service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	rdb := initRedis(cfg.Redis)

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, rdb, cfg)
	handlers := handler.NewHandlers(services)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, handlers, cfg)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := db.AutoMigrate(
		&entity.User{},
		&entity.NumberSequence{},
		&entity.Client{},
		&entity.Project{},
		&entity.DeliveryItem{},
		&entity.Equipment{},
		&entity.EquipmentItem{},
		&entity.ProjectDocument{},
		&entity.ProductionStage{},
		&entity.StageComment{},
		&entity.StagePhoto{},
		&entity.PlanningTask{},
		&entity.PlanningResource{},
		&entity.TaskDependency{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	v1 := r.Group("/api/v1")
	{
		// Auth (no login required)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(cfg.JWT.Secret))
		{
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.POST("/auth/register", middleware.RequireRole("admin"), h.Auth.Register)

			authorized.GET("/dashboard", h.Dashboard.Overview)

			// Clients
			clients := authorized.Group("/clients")
			{
				clients.GET("", h.Client.List)
				clients.GET("/active", h.Client.ListActive)
				clients.POST("", h.Client.Create)
				clients.GET("/:id", h.Client.Get)
				clients.PUT("/:id", h.Client.Update)
				clients.POST("/:id/archive", h.Client.Archive)
			}

			// Projects
			projects := authorized.Group("/projects")
			{
				projects.GET("", h.Project.List)
				projects.POST("", h.Project.Create)
				projects.GET("/:id", h.Project.Get)
				projects.PUT("/:id", h.Project.Update)
				projects.DELETE("/:id", h.Project.Delete)
				projects.PUT("/:id/status", h.Project.UpdateStatus)

				// Delivery checklist
				projects.GET("/:id/delivery-items", h.Project.ListDeliveryItems)
				projects.POST("/:id/delivery-items", h.Project.AddDeliveryItem)
				projects.PUT("/:id/delivery-items/:itemId/toggle", h.Project.ToggleDeliveryItem)
				projects.DELETE("/:id/delivery-items/:itemId", h.Project.RemoveDeliveryItem)

				// Equipment configurator
				projects.GET("/:id/equipment", h.Equipment.Get)
				projects.POST("/:id/equipment/items", h.Equipment.AddItem)
				projects.PUT("/:id/equipment/items/:itemId", h.Equipment.UpdateItem)
				projects.DELETE("/:id/equipment/items/:itemId", h.Equipment.RemoveItem)
				projects.PUT("/:id/equipment/vat-rate", h.Equipment.SetVatRate)
				projects.POST("/:id/equipment/freeze", h.Equipment.Freeze)
				projects.POST("/:id/equipment/unfreeze", h.Equipment.Unfreeze)
				projects.GET("/:id/equipment/export", h.Equipment.ExportCSV)
				projects.POST("/:id/equipment/import", h.Equipment.ImportCSV)

				// Documents
				projects.GET("/:id/documents", h.Document.List)
				projects.GET("/:id/documents/latest", h.Document.Latest)
				projects.POST("/:id/documents/quotations", h.Document.CreateQuotation)
				projects.POST("/:id/documents/invoices", h.Document.CreateInvoice)
				projects.POST("/:id/documents/bom", h.Document.CreateBOM)
				projects.GET("/:id/documents/:docId", h.Document.Get)
				projects.POST("/:id/documents/:docId/finalize", h.Document.Finalize)
				projects.POST("/:id/documents/:docId/supersede", h.Document.Supersede)
				projects.GET("/:id/documents/:docId/download", h.Document.Download)
				projects.GET("/:id/documents/:docId/preview", h.Document.Preview)

				// Production
				projects.GET("/:id/stages", h.Production.ListStages)
				projects.POST("/:id/stages", h.Production.CreateStage)
				projects.GET("/:id/production-summary", h.Production.Summary)

				// Planning
				projects.GET("/:id/tasks", h.Planning.ListTasks)
				projects.POST("/:id/tasks", h.Planning.CreateTask)
				projects.GET("/:id/resources", h.Planning.ListResources)
				projects.POST("/:id/resources", h.Planning.CreateResource)
			}

			// Production stages
			stages := authorized.Group("/stages")
			{
				stages.GET("/:stageId", h.Production.GetStage)
				stages.DELETE("/:stageId", h.Production.DeleteStage)
				stages.POST("/:stageId/start", h.Production.Start)
				stages.POST("/:stageId/complete", h.Production.Complete)
				stages.POST("/:stageId/block", h.Production.Block)
				stages.PUT("/:stageId/progress", h.Production.SetProgress)
				stages.GET("/:stageId/comments", h.Production.ListComments)
				stages.POST("/:stageId/comments", h.Production.AddComment)
				stages.GET("/:stageId/photos", h.Production.ListPhotos)
				stages.POST("/:stageId/photos", h.Production.AddPhoto)
			}
			authorized.DELETE("/comments/:commentId", h.Production.RemoveComment)
			authorized.DELETE("/photos/:photoId", h.Production.RemovePhoto)
			authorized.GET("/photos/:photoId/download", h.Production.DownloadPhoto)

			// Planning tasks
			tasks := authorized.Group("/tasks")
			{
				tasks.GET("/:taskId", h.Planning.GetTask)
				tasks.PUT("/:taskId", h.Planning.UpdateTask)
				tasks.DELETE("/:taskId", h.Planning.DeleteTask)
				tasks.PUT("/:taskId/status", h.Planning.SetTaskStatus)
				tasks.POST("/:taskId/shift", h.Planning.ShiftTask)
				tasks.POST("/:taskId/resize", h.Planning.ResizeTask)
				tasks.POST("/:taskId/dependencies", h.Planning.AddDependency)
			}
			authorized.DELETE("/dependencies/:depId", h.Planning.RemoveDependency)
			authorized.DELETE("/resources/:resourceId", h.Planning.DeleteResource)
		}
	}
}
