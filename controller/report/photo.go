package report

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"civicpulse/config"
	"civicpulse/middleware"
	"civicpulse/model"
	"civicpulse/policy"
)

// UploadPhoto attaches one or more photos to an existing report. The file
// lands on disk first; if the database append then fails the file is left
// behind rather than rolled back.
func UploadPhoto(c *gin.Context, db *mongo.Database, cfg *config.Config) {
	ctx := c.Request.Context()
	r, err := fetchReport(ctx, db, c)
	if err != nil {
		respondErr(c, err)
		return
	}
	if err := policy.Allow(middleware.Actor(c), policy.ActReportUpdate, r.Citizen.Hex()); err != nil {
		respondErr(c, err)
		return
	}

	files := formPhotos(c)
	if len(files) == 0 {
		if file, err := c.FormFile("photo"); err == nil {
			files = append(files, file)
		}
	}
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, model.Fail("No photo uploaded"))
		return
	}

	photos, err := savePhotos(c, files, cfg)
	if err != nil {
		respondErr(c, err)
		return
	}

	_, err = db.Collection("reports").UpdateByID(ctx, r.ID, bson.M{
		"$push": bson.M{"photos": bson.M{"$each": photos}},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.Fail("Failed to attach photos"))
		return
	}
	c.JSON(http.StatusOK, model.OKMessage(photos, "Photos uploaded"))
}
