package model

import (
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestReport(t *testing.T) (Report, primitive.ObjectID) {
	t.Helper()
	citizen := primitive.NewObjectID()
	r := NewReport("Pothole on Elm St", "Deep pothole near the crosswalk",
		primitive.NewObjectID(), SeverityHigh,
		Location{Address: "Elm St 12", Lat: 37.77, Lng: -122.42},
		citizen, time.Now())
	return r, citizen
}

func TestNewReportStartsPendingWithOneUpdate(t *testing.T) {
	r, citizen := newTestReport(t)
	if r.Status != StatusPending {
		t.Fatalf("expected Pending, got %q", r.Status)
	}
	if len(r.Updates) != 1 {
		t.Fatalf("expected 1 initial update, got %d", len(r.Updates))
	}
	if r.Updates[0].Status != StatusPending || r.Updates[0].UpdatedBy != citizen {
		t.Fatalf("initial update entry malformed: %+v", r.Updates[0])
	}
	if got, want := r.Location.Coordinates, []float64{-122.42, 37.77}; got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("coordinates not [lng, lat]: %v", got)
	}
}

func TestStatusEnumMembership(t *testing.T) {
	for _, s := range AllStatuses() {
		if !s.Valid() {
			t.Errorf("enum member %q reported invalid", s)
		}
	}
	for _, s := range []Status{"", "Open", "pending", "Done"} {
		if s.Valid() {
			t.Errorf("non-member %q reported valid", s)
		}
	}
}

func TestCancelPendingReport(t *testing.T) {
	r, citizen := newTestReport(t)
	if _, err := r.Cancel(citizen, "", time.Now()); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if r.Status != StatusCancelled {
		t.Fatalf("expected Cancelled, got %q", r.Status)
	}
	if len(r.Updates) != 2 {
		t.Fatalf("expected 2 updates after cancel, got %d", len(r.Updates))
	}
}

func TestCancelNonPendingFailsWithInvalidState(t *testing.T) {
	actor := primitive.NewObjectID()
	for _, status := range []Status{StatusAssigned, StatusInProgress, StatusResolved, StatusClosed, StatusRejected, StatusCancelled} {
		r, citizen := newTestReport(t)
		if _, err := r.SetStatus(status, "", actor, time.Now()); err != nil {
			t.Fatalf("setup transition to %q failed: %v", status, err)
		}
		before := len(r.Updates)
		_, err := r.Cancel(citizen, "", time.Now())
		if !errors.Is(err, ErrInvalidState) {
			t.Errorf("cancel from %q: expected ErrInvalidState, got %v", status, err)
		}
		if len(r.Updates) != before {
			t.Errorf("cancel from %q appended an update on failure", status)
		}
	}
}

func TestAcknowledgeResolvedReport(t *testing.T) {
	r, citizen := newTestReport(t)
	officer := primitive.NewObjectID()
	if _, err := r.SetStatus(StatusResolved, "fixed", officer, time.Now()); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	before := len(r.Updates)

	if _, err := r.Acknowledge(citizen, "", time.Now()); err != nil {
		t.Fatalf("acknowledge failed: %v", err)
	}
	if r.Status != StatusClosed {
		t.Fatalf("expected Closed, got %q", r.Status)
	}
	if r.ClosedAt == nil {
		t.Fatal("closedAt not set on acknowledge")
	}
	if len(r.Updates) != before+1 {
		t.Fatalf("expected exactly one appended update, got %d new", len(r.Updates)-before)
	}
}

func TestAcknowledgeRequiresResolved(t *testing.T) {
	r, citizen := newTestReport(t)
	if _, err := r.Acknowledge(citizen, "", time.Now()); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestCloseFailsWhenTerminal(t *testing.T) {
	actor := primitive.NewObjectID()
	for _, status := range []Status{StatusClosed, StatusCancelled} {
		r, citizen := newTestReport(t)
		if _, err := r.SetStatus(status, "", actor, time.Now()); err != nil {
			t.Fatalf("setup failed: %v", err)
		}
		if _, err := r.Close(citizen, "", time.Now()); !errors.Is(err, ErrInvalidState) {
			t.Errorf("close from %q: expected ErrInvalidState, got %v", status, err)
		}
	}
}

func TestCloseFromAnyNonTerminalState(t *testing.T) {
	actor := primitive.NewObjectID()
	for _, status := range []Status{StatusPending, StatusAssigned, StatusInProgress, StatusResolved, StatusRejected} {
		r, citizen := newTestReport(t)
		if _, err := r.SetStatus(status, "", actor, time.Now()); err != nil {
			t.Fatalf("setup failed: %v", err)
		}
		if _, err := r.Close(citizen, "", time.Now()); err != nil {
			t.Errorf("close from %q failed: %v", status, err)
		}
	}
}

func TestResolvedAtSetExactlyOnce(t *testing.T) {
	r, _ := newTestReport(t)
	officer := primitive.NewObjectID()
	first := time.Now()
	if _, err := r.SetStatus(StatusResolved, "", officer, first); err != nil {
		t.Fatal(err)
	}
	stamp := *r.ResolvedAt

	if _, err := r.SetStatus(StatusInProgress, "reopened", officer, first.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	if _, err := r.SetStatus(StatusResolved, "", officer, first.Add(2*time.Hour)); err != nil {
		t.Fatal(err)
	}
	if !r.ResolvedAt.Equal(stamp) {
		t.Fatalf("resolvedAt overwritten: %v -> %v", stamp, r.ResolvedAt)
	}
}

func TestSetStatusRejectsNonMember(t *testing.T) {
	r, _ := newTestReport(t)
	_, err := r.SetStatus("Escalated", "", primitive.NewObjectID(), time.Now())
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestUpdateTimestampsNonDecreasing(t *testing.T) {
	r, _ := newTestReport(t)
	officer := primitive.NewObjectID()
	now := time.Now()
	for i, status := range []Status{StatusAssigned, StatusInProgress, StatusResolved} {
		if _, err := r.SetStatus(status, "", officer, now.Add(time.Duration(i+1)*time.Minute)); err != nil {
			t.Fatal(err)
		}
	}
	for i := 1; i < len(r.Updates); i++ {
		if r.Updates[i].Timestamp.Before(r.Updates[i-1].Timestamp) {
			t.Fatalf("updates out of order at %d", i)
		}
	}
}

func TestDefaultMessageUsedWhenEmpty(t *testing.T) {
	r, _ := newTestReport(t)
	entry, err := r.SetStatus(StatusAssigned, "", primitive.NewObjectID(), time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if entry.Message != DefaultMessage(StatusAssigned) {
		t.Fatalf("expected default message, got %q", entry.Message)
	}
}

func TestFeedbackRules(t *testing.T) {
	r, _ := newTestReport(t)

	if err := r.SubmitFeedback(4, "thanks", time.Now()); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("feedback on pending report: expected ErrInvalidState, got %v", err)
	}

	if _, err := r.SetStatus(StatusResolved, "", primitive.NewObjectID(), time.Now()); err != nil {
		t.Fatal(err)
	}
	for _, rating := range []int{0, 6, -1} {
		if err := r.SubmitFeedback(rating, "", time.Now()); !errors.Is(err, ErrValidation) {
			t.Errorf("rating %d: expected ErrValidation, got %v", rating, err)
		}
	}
	if err := r.SubmitFeedback(5, "great work", time.Now()); err != nil {
		t.Fatalf("valid feedback rejected: %v", err)
	}
	if r.Feedback == nil || r.Feedback.Rating != 5 {
		t.Fatalf("feedback not stored: %+v", r.Feedback)
	}
}

func TestAddNoteKeepsStatus(t *testing.T) {
	r, citizen := newTestReport(t)
	entry := r.AddNote("any news?", citizen, time.Now())
	if entry.Status != StatusPending {
		t.Fatalf("note should carry current status, got %q", entry.Status)
	}
	if len(r.Updates) != 2 {
		t.Fatalf("expected 2 updates, got %d", len(r.Updates))
	}
	if r.Status != StatusPending {
		t.Fatalf("note changed status to %q", r.Status)
	}
}
