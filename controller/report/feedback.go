package report

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"civicpulse/dto"
	"civicpulse/middleware"
	"civicpulse/model"
	"civicpulse/policy"
)

// SubmitFeedback records the citizen rating on a resolved report.
func SubmitFeedback(c *gin.Context, db *mongo.Database) {
	ctx := c.Request.Context()
	r, err := fetchReport(ctx, db, c)
	if err != nil {
		respondErr(c, err)
		return
	}
	if err := policy.Allow(middleware.Actor(c), policy.ActReportFeedback, r.Citizen.Hex()); err != nil {
		respondErr(c, err)
		return
	}

	var request dto.FeedbackRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, model.Fail("Invalid input: "+err.Error()))
		return
	}

	if err := r.SubmitFeedback(request.Rating, request.Comment, time.Now()); err != nil {
		respondErr(c, err)
		return
	}

	_, err = db.Collection("reports").UpdateByID(ctx, r.ID, bson.M{"$set": bson.M{"feedback": r.Feedback}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.Fail("Failed to save feedback"))
		return
	}
	c.JSON(http.StatusOK, model.OKMessage(r.Feedback, "Feedback submitted"))
}
