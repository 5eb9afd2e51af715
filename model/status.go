package model

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Status string

const (
	StatusPending    Status = "Pending"
	StatusAssigned   Status = "Assigned"
	StatusInProgress Status = "In Progress"
	StatusResolved   Status = "Resolved"
	StatusClosed     Status = "Closed"
	StatusRejected   Status = "Rejected"
	StatusCancelled  Status = "Cancelled"
)

func AllStatuses() []Status {
	return []Status{
		StatusPending,
		StatusAssigned,
		StatusInProgress,
		StatusResolved,
		StatusClosed,
		StatusRejected,
		StatusCancelled,
	}
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAssigned, StatusInProgress, StatusResolved,
		StatusClosed, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// Terminal statuses accept no further citizen actions.
func (s Status) Terminal() bool {
	return s == StatusClosed || s == StatusCancelled
}

// DefaultMessage is used for a timeline entry when the caller gives none.
func DefaultMessage(s Status) string {
	switch s {
	case StatusPending:
		return "Report submitted"
	case StatusAssigned:
		return "Report assigned to an officer"
	case StatusInProgress:
		return "Work on this report is in progress"
	case StatusResolved:
		return "Report marked as resolved"
	case StatusClosed:
		return "Report closed"
	case StatusRejected:
		return "Report rejected"
	case StatusCancelled:
		return "Report cancelled by the reporter"
	default:
		return "Status updated to " + string(s)
	}
}

// applyTransition moves the report into next, stamps resolvedAt/closedAt on
// first entry into those states, and appends one timeline entry. The timeline
// is append-only; entries are never edited or removed.
func (r *Report) applyTransition(next Status, message string, actor primitive.ObjectID, now time.Time) (StatusUpdate, error) {
	if !next.Valid() {
		return StatusUpdate{}, fmt.Errorf("%w: unknown status %q", ErrValidation, next)
	}
	r.Status = next
	if next == StatusResolved && r.ResolvedAt == nil {
		t := now
		r.ResolvedAt = &t
	}
	if next == StatusClosed && r.ClosedAt == nil {
		t := now
		r.ClosedAt = &t
	}
	if message == "" {
		message = DefaultMessage(next)
	}
	entry := StatusUpdate{
		Message:   message,
		Status:    next,
		UpdatedBy: actor,
		Timestamp: now,
	}
	r.Updates = append(r.Updates, entry)
	return entry, nil
}

// Cancel is the citizen-side withdrawal. Only a Pending report can be
// cancelled; anything later already has officer activity behind it.
func (r *Report) Cancel(actor primitive.ObjectID, message string, now time.Time) (StatusUpdate, error) {
	if r.Status != StatusPending {
		return StatusUpdate{}, fmt.Errorf("%w: cannot cancel a report in status %q", ErrInvalidState, r.Status)
	}
	return r.applyTransition(StatusCancelled, message, actor, now)
}

// Close ends the report directly, from any state that is not already closed
// or cancelled.
func (r *Report) Close(actor primitive.ObjectID, message string, now time.Time) (StatusUpdate, error) {
	if r.Status.Terminal() {
		return StatusUpdate{}, fmt.Errorf("%w: report is already %q", ErrInvalidState, r.Status)
	}
	if message == "" {
		message = "Report closed by the reporter"
	}
	return r.applyTransition(StatusClosed, message, actor, now)
}

// Acknowledge is the citizen confirming a resolution, which closes the
// report. Kept distinct from Close so the audit trail shows the citizen
// accepted the fix.
func (r *Report) Acknowledge(actor primitive.ObjectID, message string, now time.Time) (StatusUpdate, error) {
	if r.Status != StatusResolved {
		return StatusUpdate{}, fmt.Errorf("%w: only a resolved report can be acknowledged, current status is %q", ErrInvalidState, r.Status)
	}
	if message == "" {
		message = "Resolution acknowledged by the reporter"
	}
	return r.applyTransition(StatusClosed, message, actor, now)
}

// SetStatus is the officer/admin transition. Any enum member is a legal
// target from any state; only membership is checked.
func (r *Report) SetStatus(next Status, message string, actor primitive.ObjectID, now time.Time) (StatusUpdate, error) {
	return r.applyTransition(next, message, actor, now)
}

// AddNote appends a timeline entry without changing status.
func (r *Report) AddNote(message string, actor primitive.ObjectID, now time.Time) StatusUpdate {
	entry := StatusUpdate{
		Message:   message,
		Status:    r.Status,
		UpdatedBy: actor,
		Timestamp: now,
	}
	r.Updates = append(r.Updates, entry)
	return entry
}
