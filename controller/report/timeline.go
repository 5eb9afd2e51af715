package report

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"civicpulse/model"
	"civicpulse/services"
)

// Timeline returns the display-ordered status history with actor names
// resolved. A report without updates yields an empty list.
func Timeline(c *gin.Context, db *mongo.Database) {
	ctx := c.Request.Context()
	r, err := fetchReport(ctx, db, c)
	if err != nil {
		respondErr(c, err)
		return
	}

	users := map[primitive.ObjectID]model.User{}
	if ids := services.TimelineActorIDs(r.Updates); len(ids) > 0 {
		cursor, err := db.Collection("users").Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
		if err != nil {
			c.JSON(http.StatusInternalServerError, model.Fail("Database error"))
			return
		}
		var actors []model.User
		if err := cursor.All(ctx, &actors); err != nil {
			c.JSON(http.StatusInternalServerError, model.Fail("Database error"))
			return
		}
		for _, u := range actors {
			users[u.ID] = u
		}
	}

	entries := services.ProjectTimeline(r.Updates, users)
	count := int64(len(entries))
	c.JSON(http.StatusOK, model.OKList(entries, count, nil))
}
