package report

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"civicpulse/config"
	"civicpulse/dto"
	"civicpulse/middleware"
	"civicpulse/model"
	"civicpulse/policy"
)

// CreateReport accepts JSON or multipart form (with optional photos) and
// stores a new Pending report with its initial timeline entry.
func CreateReport(c *gin.Context, db *mongo.Database, cfg *config.Config, log *zap.Logger) {
	actor := middleware.Actor(c)
	if err := policy.Allow(actor, policy.ActReportCreate, ""); err != nil {
		respondErr(c, err)
		return
	}

	var request dto.CreateReportRequest
	if err := c.ShouldBind(&request); err != nil {
		c.JSON(http.StatusBadRequest, model.Fail("Invalid input: "+err.Error()))
		return
	}

	severity := model.Severity(request.Severity)
	if !severity.Valid() {
		c.JSON(http.StatusBadRequest, model.Fail("Invalid severity"))
		return
	}
	categoryID, err := primitive.ObjectIDFromHex(request.Category)
	if err != nil {
		c.JSON(http.StatusBadRequest, model.Fail("Invalid category id"))
		return
	}

	ctx := c.Request.Context()
	var category model.Category
	err = db.Collection("categories").FindOne(ctx, bson.M{"_id": categoryID}).Decode(&category)
	if errors.Is(err, mongo.ErrNoDocuments) {
		c.JSON(http.StatusBadRequest, model.Fail("Unknown category"))
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.Fail("Database error"))
		return
	}

	loc := model.Location{Address: request.Address, Lat: request.Lat, Lng: request.Lng}
	r := model.NewReport(request.Title, request.Description, categoryID, severity, loc, middleware.UserID(c), time.Now())
	// Route the report to the department owning its category, when set.
	r.Department = category.Department

	if files := formPhotos(c); len(files) > 0 {
		photos, err := savePhotos(c, files, cfg)
		if err != nil {
			respondErr(c, err)
			return
		}
		r.Photos = photos
	}

	res, err := db.Collection("reports").InsertOne(ctx, r)
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.Fail("Failed to create report"))
		return
	}
	r.ID = res.InsertedID.(primitive.ObjectID)

	log.Info("report created",
		zap.String("reportId", r.ID.Hex()),
		zap.String("citizen", actor.ID),
		zap.String("severity", string(severity)))
	c.JSON(http.StatusCreated, model.OKMessage(r, "Report submitted"))
}
