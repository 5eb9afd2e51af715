package services

import (
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicpulse/model"
)

type TimelineActor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

type TimelineEntry struct {
	Status    model.Status  `json:"status"`
	Message   string        `json:"message"`
	UpdatedBy TimelineActor `json:"updatedBy"`
	CreatedAt time.Time     `json:"createdAt"`
}

// ProjectTimeline turns a report's updates array into the display-ordered
// history, resolving each actor reference against the given user set.
// Actors that no longer exist render as "Unknown". An empty updates array
// yields an empty slice, not nil, so it serializes as [].
func ProjectTimeline(updates []model.StatusUpdate, users map[primitive.ObjectID]model.User) []TimelineEntry {
	entries := make([]TimelineEntry, 0, len(updates))
	for _, u := range updates {
		actor := TimelineActor{ID: u.UpdatedBy.Hex(), Name: "Unknown"}
		if user, ok := users[u.UpdatedBy]; ok {
			actor.Name = user.Name
			actor.Role = user.Role
		}
		entries = append(entries, TimelineEntry{
			Status:    u.Status,
			Message:   u.Message,
			UpdatedBy: actor,
			CreatedAt: u.Timestamp,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	return entries
}

// TimelineActorIDs collects the distinct user ids referenced by a timeline,
// for a single $in lookup.
func TimelineActorIDs(updates []model.StatusUpdate) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]bool, len(updates))
	ids := make([]primitive.ObjectID, 0, len(updates))
	for _, u := range updates {
		if !seen[u.UpdatedBy] {
			seen[u.UpdatedBy] = true
			ids = append(ids, u.UpdatedBy)
		}
	}
	return ids
}
