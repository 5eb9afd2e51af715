package report

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"civicpulse/model"
	"civicpulse/services"
)

type bucket struct {
	ID    interface{} `bson:"_id" json:"key"`
	Count int64       `bson:"count" json:"count"`
}

// Analytics aggregates report counts by status, category, severity and
// month, plus the average resolution time, for the admin dashboard.
func Analytics(c *gin.Context, db *mongo.Database) {
	ctx := c.Request.Context()
	col := db.Collection("reports")

	byStatus, err := runBuckets(ctx, col, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.Fail("Database error"))
		return
	}

	byCategory, err := runBuckets(ctx, col, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$category", "count": bson.M{"$sum": 1}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "categories",
			"localField":   "_id",
			"foreignField": "_id",
			"as":           "category",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$category", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$project", Value: bson.M{"_id": "$category.name", "count": 1}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.Fail("Database error"))
		return
	}

	bySeverity, err := runBuckets(ctx, col, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$severity", "count": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.Fail("Database error"))
		return
	}

	yearAgo := time.Now().AddDate(-1, 0, 0)
	monthly, err := runBuckets(ctx, col, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"createdAt": bson.M{"$gte": yearAgo}}}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"$dateToString": bson.M{"format": "%Y-%m", "date": "$createdAt"}},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.Fail("Database error"))
		return
	}

	avgHours, err := services.AvgResolutionHours(ctx, col)
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.Fail("Database error"))
		return
	}

	c.JSON(http.StatusOK, model.OK(gin.H{
		"byStatus":           byStatus,
		"byCategory":         byCategory,
		"bySeverity":         bySeverity,
		"monthly":            monthly,
		"avgResolutionHours": avgHours,
	}))
}

// DashboardStats returns headline totals and the latest submissions.
func DashboardStats(c *gin.Context, db *mongo.Database) {
	ctx := c.Request.Context()
	col := db.Collection("reports")

	totals := gin.H{}
	total, err := col.CountDocuments(ctx, bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.Fail("Database error"))
		return
	}
	totals["total"] = total
	for key, status := range map[string]model.Status{
		"pending":    model.StatusPending,
		"assigned":   model.StatusAssigned,
		"inProgress": model.StatusInProgress,
		"resolved":   model.StatusResolved,
		"closed":     model.StatusClosed,
	} {
		n, err := col.CountDocuments(ctx, bson.M{"status": status})
		if err != nil {
			c.JSON(http.StatusInternalServerError, model.Fail("Database error"))
			return
		}
		totals[key] = n
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(5)
	cursor, err := col.Find(ctx, bson.M{}, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.Fail("Database error"))
		return
	}
	recent := []model.Report{}
	if err := cursor.All(ctx, &recent); err != nil {
		c.JSON(http.StatusInternalServerError, model.Fail("Database error"))
		return
	}

	c.JSON(http.StatusOK, model.OK(gin.H{"totals": totals, "recent": recent}))
}

func runBuckets(ctx context.Context, col *mongo.Collection, pipeline mongo.Pipeline) ([]bucket, error) {
	cursor, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	buckets := []bucket{}
	if err := cursor.All(ctx, &buckets); err != nil {
		return nil, err
	}
	return buckets, nil
}
