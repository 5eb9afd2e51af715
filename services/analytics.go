package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"civicpulse/model"
)

// AvgResolutionHours measures the mean Pending-to-Resolved interval across
// all resolved reports. Used by the analytics endpoint and the nightly
// snapshot job.
func AvgResolutionHours(ctx context.Context, col *mongo.Collection) (float64, error) {
	cursor, err := col.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"resolvedAt": bson.M{"$ne": nil}}}},
		{{Key: "$project", Value: bson.M{
			"hours": bson.M{"$divide": bson.A{
				bson.M{"$subtract": bson.A{"$resolvedAt", "$createdAt"}},
				1000 * 60 * 60,
			}},
		}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "avg": bson.M{"$avg": "$hours"}}}},
	})
	if err != nil {
		return 0, err
	}
	var out []struct {
		Avg float64 `bson:"avg"`
	}
	if err := cursor.All(ctx, &out); err != nil {
		return 0, err
	}
	if len(out) == 0 {
		return 0, nil
	}
	return out[0].Avg, nil
}

// CountsByField groups reports on a single field, e.g. status or severity.
func CountsByField(ctx context.Context, col *mongo.Collection, field string) (map[string]int64, error) {
	cursor, err := col.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$" + field, "count": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return nil, err
	}
	var rows []struct {
		ID    string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.ID] = row.Count
	}
	return counts, nil
}

// BuildSnapshot assembles the nightly analytics rollup.
func BuildSnapshot(ctx context.Context, db *mongo.Database, now time.Time) (model.AnalyticsSnapshot, error) {
	col := db.Collection("reports")

	total, err := col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return model.AnalyticsSnapshot{}, err
	}
	byStatus, err := CountsByField(ctx, col, "status")
	if err != nil {
		return model.AnalyticsSnapshot{}, err
	}
	bySeverity, err := CountsByField(ctx, col, "severity")
	if err != nil {
		return model.AnalyticsSnapshot{}, err
	}
	avg, err := AvgResolutionHours(ctx, col)
	if err != nil {
		return model.AnalyticsSnapshot{}, err
	}

	return model.AnalyticsSnapshot{
		Date:               now.Format("2006-01-02"),
		Total:              total,
		ByStatus:           byStatus,
		BySeverity:         bySeverity,
		AvgResolutionHours: avg,
		GeneratedAt:        now,
	}, nil
}
