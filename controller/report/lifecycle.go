package report

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"civicpulse/dto"
	"civicpulse/middleware"
	"civicpulse/model"
	"civicpulse/policy"
)

// The three citizen lifecycle actions. Each one is owner-only and runs a
// narrow source-state check inside the status machine.

func CancelReport(c *gin.Context, db *mongo.Database, log *zap.Logger) {
	lifecycleAction(c, db, log, policy.ActReportCancel, "Report cancelled",
		func(r *model.Report, actor primitive.ObjectID, msg string, now time.Time) (model.StatusUpdate, error) {
			return r.Cancel(actor, msg, now)
		})
}

func AcknowledgeReport(c *gin.Context, db *mongo.Database, log *zap.Logger) {
	lifecycleAction(c, db, log, policy.ActReportAcknowledge, "Resolution acknowledged",
		func(r *model.Report, actor primitive.ObjectID, msg string, now time.Time) (model.StatusUpdate, error) {
			return r.Acknowledge(actor, msg, now)
		})
}

func CloseReport(c *gin.Context, db *mongo.Database, log *zap.Logger) {
	lifecycleAction(c, db, log, policy.ActReportClose, "Report closed",
		func(r *model.Report, actor primitive.ObjectID, msg string, now time.Time) (model.StatusUpdate, error) {
			return r.Close(actor, msg, now)
		})
}

type transitionFunc func(r *model.Report, actor primitive.ObjectID, msg string, now time.Time) (model.StatusUpdate, error)

func lifecycleAction(c *gin.Context, db *mongo.Database, log *zap.Logger, action, successMsg string, transition transitionFunc) {
	ctx := c.Request.Context()
	r, err := fetchReport(ctx, db, c)
	if err != nil {
		respondErr(c, err)
		return
	}
	actor := middleware.Actor(c)
	if err := policy.Allow(actor, action, r.Citizen.Hex()); err != nil {
		respondErr(c, err)
		return
	}

	var request dto.LifecycleRequest
	_ = c.ShouldBindJSON(&request) // body is optional

	entry, err := transition(&r, middleware.UserID(c), request.Message, time.Now())
	if err != nil {
		respondErr(c, err)
		return
	}

	set := bson.M{"status": r.Status}
	if r.ResolvedAt != nil {
		set["resolvedAt"] = r.ResolvedAt
	}
	if r.ClosedAt != nil {
		set["closedAt"] = r.ClosedAt
	}
	update := bson.M{
		"$set":  set,
		"$push": bson.M{"updates": entry},
	}
	if _, err := db.Collection("reports").UpdateByID(ctx, r.ID, update); err != nil {
		c.JSON(http.StatusInternalServerError, model.Fail("Failed to update report"))
		return
	}

	log.Info("lifecycle action",
		zap.String("action", action),
		zap.String("reportId", r.ID.Hex()),
		zap.String("status", string(r.Status)))
	c.JSON(http.StatusOK, model.OKMessage(r, successMsg))
}
