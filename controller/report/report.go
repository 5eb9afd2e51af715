// Package report implements the report resource: CRUD, the citizen
// lifecycle actions, timeline, photos, feedback and analytics.
package report

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"civicpulse/config"
	"civicpulse/middleware"
	"civicpulse/model"
	"civicpulse/services"
)

func ReportController(router *gin.Engine, db *mongo.Database, cfg *config.Config, log *zap.Logger, notifier *services.Notifier) {
	routes := router.Group("/reports", middleware.AccessTokenMiddleware(cfg))
	{
		routes.GET("", func(c *gin.Context) {
			GetReports(c, db)
		})
		routes.POST("", func(c *gin.Context) {
			CreateReport(c, db, cfg, log)
		})
		routes.GET("/user", func(c *gin.Context) {
			GetMyReports(c, db)
		})
		routes.GET("/assigned", middleware.RoleMiddleware(model.RoleOfficer, model.RoleAdmin), func(c *gin.Context) {
			GetAssignedReports(c, db)
		})
		routes.GET("/analytics", middleware.RoleMiddleware(model.RoleOfficer, model.RoleAdmin), func(c *gin.Context) {
			Analytics(c, db)
		})
		routes.GET("/dashboard-stats", middleware.RoleMiddleware(model.RoleOfficer, model.RoleAdmin), func(c *gin.Context) {
			DashboardStats(c, db)
		})
		routes.GET("/:id", func(c *gin.Context) {
			GetReport(c, db)
		})
		routes.PUT("/:id", func(c *gin.Context) {
			UpdateReport(c, db, log, notifier)
		})
		routes.DELETE("/:id", func(c *gin.Context) {
			DeleteReport(c, db, log)
		})
		routes.GET("/:id/timeline", func(c *gin.Context) {
			Timeline(c, db)
		})
		routes.POST("/:id/updates", func(c *gin.Context) {
			AddUpdate(c, db, cfg, log, notifier)
		})
		routes.POST("/:id/feedback", func(c *gin.Context) {
			SubmitFeedback(c, db)
		})
		routes.PUT("/:id/photo", func(c *gin.Context) {
			UploadPhoto(c, db, cfg)
		})
		routes.PATCH("/:id/cancel", func(c *gin.Context) {
			CancelReport(c, db, log)
		})
		routes.PATCH("/:id/acknowledge", func(c *gin.Context) {
			AcknowledgeReport(c, db, log)
		})
		routes.PATCH("/:id/close", func(c *gin.Context) {
			CloseReport(c, db, log)
		})
	}
}

// fetchReport loads one report by the :id path parameter.
func fetchReport(ctx context.Context, db *mongo.Database, c *gin.Context) (model.Report, error) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return model.Report{}, fmt.Errorf("%w: invalid report id", model.ErrValidation)
	}
	var r model.Report
	err = db.Collection("reports").FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Report{}, fmt.Errorf("%w: report %s", model.ErrNotFound, id.Hex())
	}
	if err != nil {
		return model.Report{}, err
	}
	return r, nil
}

func respondErr(c *gin.Context, err error) {
	status := model.HTTPStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "Server error"
	}
	c.JSON(status, model.Fail(msg))
}

// savePhotos writes uploaded files under the configured directory and
// returns their served paths. A failed move surfaces as an error without
// cleaning up files already written.
func savePhotos(c *gin.Context, files []*multipart.FileHeader, cfg *config.Config) ([]string, error) {
	maxBytes := cfg.MaxUploadMB << 20
	paths := make([]string, 0, len(files))
	for _, file := range files {
		if file.Size > maxBytes {
			return nil, fmt.Errorf("%w: file %s exceeds %d MB", model.ErrValidation, file.Filename, cfg.MaxUploadMB)
		}
		name := uuid.NewString() + filepath.Ext(file.Filename)
		dst := filepath.Join(cfg.UploadDir, name)
		if err := c.SaveUploadedFile(file, dst); err != nil {
			return nil, fmt.Errorf("saving upload: %w", err)
		}
		paths = append(paths, "/uploads/"+name)
	}
	return paths, nil
}

func formPhotos(c *gin.Context) []*multipart.FileHeader {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	return form.File["photos"]
}
