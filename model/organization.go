package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Department struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Email       string             `bson:"email,omitempty" json:"email,omitempty"`
	Phone       string             `bson:"phone,omitempty" json:"phone,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

type Region struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	City        string             `bson:"city,omitempty" json:"city,omitempty"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

type Category struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name        string              `bson:"name" json:"name"`
	Description string              `bson:"description,omitempty" json:"description,omitempty"`
	Icon        string              `bson:"icon,omitempty" json:"icon,omitempty"`
	Department  *primitive.ObjectID `bson:"department,omitempty" json:"department,omitempty"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
}

// AnalyticsSnapshot is the nightly rollup written by the scheduler.
type AnalyticsSnapshot struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Date               string             `bson:"date" json:"date"` // YYYY-MM-DD
	Total              int64              `bson:"total" json:"total"`
	ByStatus           map[string]int64   `bson:"byStatus" json:"byStatus"`
	BySeverity         map[string]int64   `bson:"bySeverity" json:"bySeverity"`
	AvgResolutionHours float64            `bson:"avgResolutionHours" json:"avgResolutionHours"`
	GeneratedAt        time.Time          `bson:"generatedAt" json:"generatedAt"`
}
