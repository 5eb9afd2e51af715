package report

import (
	"context"
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
	"civicpulse/services"
)

// UpdateReport is the generic PUT: field edits plus, for officers and
// admins, an unrestricted status change (any enum member from any state).
func UpdateReport(c *gin.Context, db *mongo.Database, log *zap.Logger, notifier *services.Notifier) {
	ctx := c.Request.Context()
	r, err := fetchReport(ctx, db, c)
	if err != nil {
		respondErr(c, err)
		return
	}
	actor := middleware.Actor(c)
	if err := policy.Allow(actor, policy.ActReportUpdate, r.Citizen.Hex()); err != nil {
		respondErr(c, err)
		return
	}

	var request dto.UpdateReportRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, model.Fail("Invalid input: "+err.Error()))
		return
	}

	set := bson.M{}
	if request.Title != "" {
		set["title"] = request.Title
	}
	if request.Description != "" {
		set["description"] = request.Description
	}
	if request.Severity != "" {
		severity := model.Severity(request.Severity)
		if !severity.Valid() {
			c.JSON(http.StatusBadRequest, model.Fail("Invalid severity"))
			return
		}
		set["severity"] = severity
	}
	for field, raw := range map[string]string{
		"assignedOfficer": request.AssignedOfficer,
		"department":      request.Department,
		"region":          request.Region,
	} {
		if raw == "" {
			continue
		}
		oid, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, model.Fail("Invalid "+field+" id"))
			return
		}
		set[field] = oid
	}

	update := bson.M{}
	var entry *model.StatusUpdate
	if request.Status != "" {
		if err := policy.Allow(actor, policy.ActReportSetStatus, ""); err != nil {
			respondErr(c, err)
			return
		}
		e, err := r.SetStatus(model.Status(request.Status), request.Message, middleware.UserID(c), time.Now())
		if err != nil {
			respondErr(c, err)
			return
		}
		entry = &e
		set["status"] = r.Status
		if r.ResolvedAt != nil {
			set["resolvedAt"] = r.ResolvedAt
		}
		if r.ClosedAt != nil {
			set["closedAt"] = r.ClosedAt
		}
		update["$push"] = bson.M{"updates": e}
	}
	if len(set) == 0 {
		c.JSON(http.StatusBadRequest, model.Fail("Nothing to update"))
		return
	}
	update["$set"] = set

	if _, err := db.Collection("reports").UpdateByID(ctx, r.ID, update); err != nil {
		c.JSON(http.StatusInternalServerError, model.Fail("Failed to update report"))
		return
	}

	if entry != nil {
		log.Info("report status changed",
			zap.String("reportId", r.ID.Hex()),
			zap.String("status", string(entry.Status)),
			zap.String("by", actor.ID))
		notifyOwner(ctx, db, notifier, r, *entry)
	}
	c.JSON(http.StatusOK, model.OKMessage(r, "Report updated"))
}

// AddUpdate appends a timeline note, optionally changing status and
// attaching photos. The owning citizen and staff may post notes; a
// status change in the body additionally requires a staff role.
func AddUpdate(c *gin.Context, db *mongo.Database, cfg *config.Config, log *zap.Logger, notifier *services.Notifier) {
	ctx := c.Request.Context()
	r, err := fetchReport(ctx, db, c)
	if err != nil {
		respondErr(c, err)
		return
	}
	actor := middleware.Actor(c)
	if err := policy.Allow(actor, policy.ActReportUpdate, r.Citizen.Hex()); err != nil {
		respondErr(c, err)
		return
	}

	var request dto.AddUpdateRequest
	if err := c.ShouldBind(&request); err != nil {
		c.JSON(http.StatusBadRequest, model.Fail("Invalid input: "+err.Error()))
		return
	}

	now := time.Now()
	var entry model.StatusUpdate
	set := bson.M{}
	if request.Status != "" {
		if err := policy.Allow(actor, policy.ActReportSetStatus, ""); err != nil {
			respondErr(c, err)
			return
		}
		entry, err = r.SetStatus(model.Status(request.Status), request.Message, middleware.UserID(c), now)
		if err != nil {
			respondErr(c, err)
			return
		}
		set["status"] = r.Status
		if r.ResolvedAt != nil {
			set["resolvedAt"] = r.ResolvedAt
		}
		if r.ClosedAt != nil {
			set["closedAt"] = r.ClosedAt
		}
	} else {
		entry = r.AddNote(request.Message, middleware.UserID(c), now)
	}

	update := bson.M{"$push": bson.M{"updates": entry}}
	if files := formPhotos(c); len(files) > 0 {
		photos, err := savePhotos(c, files, cfg)
		if err != nil {
			respondErr(c, err)
			return
		}
		update["$push"] = bson.M{
			"updates": entry,
			"photos":  bson.M{"$each": photos},
		}
	}
	if len(set) > 0 {
		update["$set"] = set
	}

	if _, err := db.Collection("reports").UpdateByID(ctx, r.ID, update); err != nil {
		c.JSON(http.StatusInternalServerError, model.Fail("Failed to add update"))
		return
	}

	if request.Status != "" {
		notifyOwner(ctx, db, notifier, r, entry)
	}
	c.JSON(http.StatusCreated, model.OKMessage(entry, "Update added"))
}

// DeleteReport removes a report. Restricted to the owner or an admin.
func DeleteReport(c *gin.Context, db *mongo.Database, log *zap.Logger) {
	ctx := c.Request.Context()
	r, err := fetchReport(ctx, db, c)
	if err != nil {
		respondErr(c, err)
		return
	}
	actor := middleware.Actor(c)
	if err := policy.Allow(actor, policy.ActReportDelete, r.Citizen.Hex()); err != nil {
		respondErr(c, err)
		return
	}

	if _, err := db.Collection("reports").DeleteOne(ctx, bson.M{"_id": r.ID}); err != nil {
		c.JSON(http.StatusInternalServerError, model.Fail("Failed to delete report"))
		return
	}
	log.Info("report deleted", zap.String("reportId", r.ID.Hex()), zap.String("by", actor.ID))
	c.JSON(http.StatusOK, model.OKMessage(nil, "Report deleted"))
}

// notifyOwner pushes a status change to the owning citizen, best effort.
func notifyOwner(ctx context.Context, db *mongo.Database, notifier *services.Notifier, r model.Report, entry model.StatusUpdate) {
	if notifier == nil {
		return
	}
	var owner model.User
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": r.Citizen}).Decode(&owner); err != nil {
		return
	}
	notifier.StatusChanged(ctx, owner, r, entry)
}
