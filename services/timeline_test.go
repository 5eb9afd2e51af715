package services

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicpulse/model"
)

func TestProjectTimelineEmpty(t *testing.T) {
	entries := ProjectTimeline(nil, nil)
	if entries == nil {
		t.Fatal("empty timeline must be an empty slice, not nil")
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
}

func TestProjectTimelineResolvesActorsAndOrders(t *testing.T) {
	citizen := primitive.NewObjectID()
	officer := primitive.NewObjectID()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	updates := []model.StatusUpdate{
		{Message: "assigned", Status: model.StatusAssigned, UpdatedBy: officer, Timestamp: base.Add(time.Hour)},
		{Message: "submitted", Status: model.StatusPending, UpdatedBy: citizen, Timestamp: base},
		{Message: "resolved", Status: model.StatusResolved, UpdatedBy: officer, Timestamp: base.Add(2 * time.Hour)},
	}
	users := map[primitive.ObjectID]model.User{
		citizen: {ID: citizen, Name: "Ada Jones", Role: model.RoleCitizen},
		officer: {ID: officer, Name: "Officer Reyes", Role: model.RoleOfficer},
	}

	entries := ProjectTimeline(updates, users)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Status != model.StatusPending || entries[2].Status != model.StatusResolved {
		t.Fatalf("entries not ordered by timestamp: %+v", entries)
	}
	if entries[0].UpdatedBy.Name != "Ada Jones" || entries[0].UpdatedBy.Role != model.RoleCitizen {
		t.Fatalf("citizen not resolved: %+v", entries[0].UpdatedBy)
	}
	if entries[1].UpdatedBy.Name != "Officer Reyes" {
		t.Fatalf("officer not resolved: %+v", entries[1].UpdatedBy)
	}
}

func TestProjectTimelineUnknownActor(t *testing.T) {
	updates := []model.StatusUpdate{
		{Message: "submitted", Status: model.StatusPending, UpdatedBy: primitive.NewObjectID(), Timestamp: time.Now()},
	}
	entries := ProjectTimeline(updates, nil)
	if entries[0].UpdatedBy.Name != "Unknown" {
		t.Fatalf("deleted actor should render as Unknown, got %q", entries[0].UpdatedBy.Name)
	}
}

func TestTimelineActorIDsDeduplicates(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()
	updates := []model.StatusUpdate{
		{UpdatedBy: a}, {UpdatedBy: b}, {UpdatedBy: a},
	}
	ids := TimelineActorIDs(updates)
	if len(ids) != 2 {
		t.Fatalf("expected 2 distinct ids, got %d", len(ids))
	}
}
