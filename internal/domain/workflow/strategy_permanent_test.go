package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"shiftswap/internal/domain/schedule"
)

func TestPermanentChangeAppliesRangeAndSkipsClosedDays(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// Mon 9th through Sun 15th, with a holiday on Wednesday.
	start := monday
	end := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	holiday := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	f.sched.specialDays[dateKey(holiday)] = schedule.SpecialDayHoliday

	req, err := f.service.Create(ctx, CreateInput{
		Kind:        KindPermanentChange,
		RequesterID: "ana",
		ReceiverID:  "bob",
		TargetDate:  start,
		StartDate:   start,
		EndDate:     &end,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if req.Permanent == nil || !req.Permanent.StartDate.Equal(start) {
		t.Fatalf("permanent detail = %+v", req.Permanent)
	}

	if _, err := f.service.Approve(ctx, req.ID, "bob", false, ""); err != nil {
		t.Fatalf("receiver approve: %v", err)
	}
	res, err := f.service.Approve(ctx, req.ID, "sue", false, "")
	if err != nil {
		t.Fatalf("supervisor approve: %v", err)
	}
	if res.Apply == nil {
		t.Fatal("no apply result")
	}

	// 7 days minus the holiday and the Sunday.
	if res.Apply.DaysApplied != 5 {
		t.Fatalf("days applied = %d, want 5", res.Apply.DaysApplied)
	}
	if len(res.Apply.Skipped) != 2 {
		t.Fatalf("skipped = %+v, want 2 entries", res.Apply.Skipped)
	}
	reasons := map[string]bool{}
	for _, skipped := range res.Apply.Skipped {
		reasons[skipped.Reason] = true
	}
	if !reasons["holiday"] || !reasons["Sunday"] {
		t.Fatalf("skip reasons = %v", reasons)
	}

	// Two employees, five kept days each.
	if len(f.writer.upserts) != 10 {
		t.Fatalf("day record writes = %d, want 10", len(f.writer.upserts))
	}
	// Shifts cross but each employee stays in their own room.
	ownRooms := map[string]string{"ana": "room-1", "bob": "room-2"}
	for _, call := range f.writer.upserts {
		if call.changeKind != schedule.SourcePermanent {
			t.Fatalf("change kind = %q", call.changeKind)
		}
		if call.roomID == nil || *call.roomID != ownRooms[call.employeeID] {
			t.Fatalf("record for %s has room %v, want %q", call.employeeID, call.roomID, ownRooms[call.employeeID])
		}
	}

	if len(f.writer.trims) != 2 {
		t.Fatalf("standing trims = %v", f.writer.trims)
	}
	wantResumes := map[string]bool{"ana:tpl-am": true, "bob:tpl-pm": true}
	for _, insert := range f.writer.inserts {
		if !wantResumes[insert] {
			t.Fatalf("unexpected standing resume %q", insert)
		}
	}
	if len(f.writer.inserts) != 2 {
		t.Fatalf("standing resumes = %v", f.writer.inserts)
	}
}

func TestPermanentChangeDefaultsEndToYearEnd(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	req, err := f.service.Create(ctx, CreateInput{
		Kind:        KindPermanentChange,
		RequesterID: "ana",
		ReceiverID:  "bob",
		TargetDate:  monday,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if req.Permanent == nil || req.Permanent.EndDate == nil {
		t.Fatalf("permanent detail = %+v", req.Permanent)
	}
	want := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	if !req.Permanent.EndDate.Equal(want) {
		t.Fatalf("end date = %v, want %v", req.Permanent.EndDate, want)
	}
}

func TestPermanentChangeRejectsOverlap(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	end := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	first, err := f.service.Create(ctx, CreateInput{
		Kind:        KindPermanentChange,
		RequesterID: "ana",
		ReceiverID:  "bob",
		TargetDate:  monday,
		StartDate:   monday,
		EndDate:     &end,
	})
	if err != nil {
		t.Fatalf("first Create: %v", err)
	}
	if _, err := f.service.Approve(ctx, first.ID, "bob", false, ""); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	// The same pair in the opposite direction must be refused.
	later := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	_, err = f.service.Create(ctx, CreateInput{
		Kind:        KindPermanentChange,
		RequesterID: "bob",
		ReceiverID:  "ana",
		TargetDate:  later,
		StartDate:   later,
	})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Rule != "no_overlapping_permanent_change" {
		t.Fatalf("err = %v, want no_overlapping_permanent_change violation", err)
	}

	// An unrelated pair on the same window is fine.
	f.dir.addEmployee("cal", true)
	f.dir.supervisors["cal"] = "sue"
	f.sched.setStandingShift("cal", "AM", "tpl-am")
	if _, err := f.service.Create(ctx, CreateInput{
		Kind:        KindPermanentChange,
		RequesterID: "cal",
		ReceiverID:  "bob",
		TargetDate:  later,
		StartDate:   later,
	}); err != nil {
		t.Fatalf("cal's Create: %v", err)
	}
}

func TestPermanentChangeRejectsPastStart(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// The fixture clock reads March 1st.
	past := time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC)
	_, err := f.service.Create(ctx, CreateInput{
		Kind:        KindPermanentChange,
		RequesterID: "ana",
		ReceiverID:  "bob",
		TargetDate:  past,
		StartDate:   past,
	})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Rule != "start_date_not_past" {
		t.Fatalf("err = %v, want start_date_not_past violation", err)
	}
}

func TestPermanentChangeRejectsMaintenanceBoundary(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	maintenance := time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)
	f.sched.specialDays[dateKey(maintenance)] = schedule.SpecialDayMaintenance

	_, err := f.service.Create(ctx, CreateInput{
		Kind:        KindPermanentChange,
		RequesterID: "ana",
		ReceiverID:  "bob",
		TargetDate:  maintenance,
		StartDate:   maintenance,
	})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Rule != "date_not_maintenance" {
		t.Fatalf("maintenance start: err = %v, want date_not_maintenance violation", err)
	}

	_, err = f.service.Create(ctx, CreateInput{
		Kind:        KindPermanentChange,
		RequesterID: "ana",
		ReceiverID:  "bob",
		TargetDate:  monday,
		StartDate:   monday,
		EndDate:     &maintenance,
	})
	if !errors.As(err, &verr) || verr.Rule != "date_not_maintenance" {
		t.Fatalf("maintenance end: err = %v, want date_not_maintenance violation", err)
	}
}

func TestPermanentChangeRejectsInvertedRange(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	before := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	_, err := f.service.Create(ctx, CreateInput{
		Kind:        KindPermanentChange,
		RequesterID: "ana",
		ReceiverID:  "bob",
		TargetDate:  monday,
		StartDate:   monday,
		EndDate:     &before,
	})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Rule != "valid_range" {
		t.Fatalf("err = %v, want valid_range violation", err)
	}
}
