package model

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Severity string

const (
	SeverityLow      Severity = "Low"
	SeverityMedium   Severity = "Medium"
	SeverityHigh     Severity = "High"
	SeverityCritical Severity = "Critical"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// Location keeps both the flat lat/lng pair and a [lng, lat] coordinate
// array; the array form is what $geoWithin queries run against.
type Location struct {
	Address     string    `bson:"address" json:"address"`
	Lat         float64   `bson:"lat" json:"lat"`
	Lng         float64   `bson:"lng" json:"lng"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
}

type StatusUpdate struct {
	Message   string             `bson:"message" json:"message"`
	Status    Status             `bson:"status" json:"status"`
	UpdatedBy primitive.ObjectID `bson:"updatedBy" json:"updatedBy"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}

type Feedback struct {
	Rating      int       `bson:"rating" json:"rating"`
	Comment     string    `bson:"comment,omitempty" json:"comment,omitempty"`
	SubmittedAt time.Time `bson:"submittedAt" json:"submittedAt"`
}

type Report struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Title           string              `bson:"title" json:"title"`
	Description     string              `bson:"description" json:"description"`
	Category        primitive.ObjectID  `bson:"category" json:"category"`
	Severity        Severity            `bson:"severity" json:"severity"`
	Status          Status              `bson:"status" json:"status"`
	Location        Location            `bson:"location" json:"location"`
	Photos          []string            `bson:"photos" json:"photos"`
	Citizen         primitive.ObjectID  `bson:"citizen" json:"citizen"`
	AssignedOfficer *primitive.ObjectID `bson:"assignedOfficer,omitempty" json:"assignedOfficer,omitempty"`
	Department      *primitive.ObjectID `bson:"department,omitempty" json:"department,omitempty"`
	Region          *primitive.ObjectID `bson:"region,omitempty" json:"region,omitempty"`
	Updates         []StatusUpdate      `bson:"updates" json:"updates"`
	Feedback        *Feedback           `bson:"feedback,omitempty" json:"feedback,omitempty"`
	CreatedAt       time.Time           `bson:"createdAt" json:"createdAt"`
	ResolvedAt      *time.Time          `bson:"resolvedAt,omitempty" json:"resolvedAt,omitempty"`
	ClosedAt        *time.Time          `bson:"closedAt,omitempty" json:"closedAt,omitempty"`
}

// NewReport builds a Pending report with its initial timeline entry.
func NewReport(title, description string, category primitive.ObjectID, severity Severity, loc Location, citizen primitive.ObjectID, now time.Time) Report {
	loc.Coordinates = []float64{loc.Lng, loc.Lat}
	r := Report{
		Title:       title,
		Description: description,
		Category:    category,
		Severity:    severity,
		Status:      StatusPending,
		Location:    loc,
		Photos:      []string{},
		Citizen:     citizen,
		CreatedAt:   now,
	}
	r.Updates = []StatusUpdate{{
		Message:   DefaultMessage(StatusPending),
		Status:    StatusPending,
		UpdatedBy: citizen,
		Timestamp: now,
	}}
	return r
}

// SubmitFeedback records the citizen rating. Allowed only while the report
// sits in Resolved, before it is acknowledged or closed.
func (r *Report) SubmitFeedback(rating int, comment string, now time.Time) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}
	if r.Status != StatusResolved {
		return fmt.Errorf("%w: feedback is only accepted on a resolved report", ErrInvalidState)
	}
	r.Feedback = &Feedback{Rating: rating, Comment: comment, SubmittedAt: now}
	return nil
}
