package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"civicpulse/services"
)

// StartScheduler runs the nightly analytics snapshot at 03:00.
func StartScheduler(db *mongo.Database, log *zap.Logger) {
	c := cron.New(cron.WithSeconds())

	_, err := c.AddFunc("0 0 3 * * *", func() {
		if err := SnapshotAnalytics(context.Background(), db); err != nil {
			log.Error("analytics snapshot failed", zap.Error(err))
			return
		}
		log.Info("analytics snapshot written")
	})
	if err != nil {
		log.Fatal("failed to add cron job", zap.Error(err))
	}

	c.Start()
	log.Info("scheduler started")
}

// SnapshotAnalytics upserts today's rollup into analytics_snapshots.
func SnapshotAnalytics(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	snapshot, err := services.BuildSnapshot(ctx, db, time.Now())
	if err != nil {
		return err
	}

	_, err = db.Collection("analytics_snapshots").ReplaceOne(ctx,
		bson.M{"date": snapshot.Date},
		snapshot,
		options.Replace().SetUpsert(true),
	)
	return err
}
