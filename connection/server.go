package connection

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"civicpulse/config"
	"civicpulse/controller/auth"
	"civicpulse/controller/category"
	"civicpulse/controller/department"
	"civicpulse/controller/region"
	"civicpulse/controller/report"
	"civicpulse/controller/user"
	"civicpulse/scheduler"
	"civicpulse/services"
)

func StartServer() {
	cfg := config.Load()

	logger, err := newLogger(cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	db, err := DBConnection(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	notifier, err := services.NewNotifier(context.Background(), cfg.FirebaseCredentials, logger)
	if err != nil {
		// Push is optional; run without it rather than refusing to start.
		logger.Warn("firebase init failed, push notifications disabled", zap.Error(err))
		notifier = nil
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatalf("Failed to create upload dir: %v", err)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.Static("/uploads", cfg.UploadDir)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Api is running!"})
	})

	auth.AuthController(router, db, cfg, logger)
	report.ReportController(router, db, cfg, logger, notifier)
	department.DepartmentController(router, db, cfg, logger)
	region.RegionController(router, db, cfg, logger)
	category.CategoryController(router, db, cfg, logger)
	user.UserController(router, db, cfg, logger)

	scheduler.StartScheduler(db, logger)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("API listening", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

func newLogger(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
