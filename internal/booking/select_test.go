package booking

import (
	"testing"
	"time"
)

func slotAt(t *testing.T, day string, clock string, label string, disabled bool) SlotCandidate {
	t.Helper()
	start, err := time.Parse("2006-01-02 15:04", day+" "+clock)
	if err != nil {
		t.Fatalf("bad slot time %s %s: %v", day, clock, err)
	}
	return SlotCandidate{Start: start, Label: label, Disabled: disabled}
}

func TestChooseSlotEmpty(t *testing.T) {
	_, ok := chooseSlot(nil, Request{}, time.Now())
	if ok {
		t.Fatal("expected no selection from an empty candidate set")
	}
}

func TestChooseNextPlayableAfterNowOnTargetDate(t *testing.T) {
	// Target date is two days out; slots at 09:00, 11:00, 14:00. With a wall
	// clock of 10:30 the comparison instant is "10:30 on the target date", so
	// the 11:00 slot must win.
	date, _ := time.Parse("2006-01-02", "2026-09-01")
	cands := []SlotCandidate{
		slotAt(t, "2026-09-01", "14:00", "2:00 PM", false),
		slotAt(t, "2026-09-01", "09:00", "9:00 AM", false),
		slotAt(t, "2026-09-01", "11:00", "11:00 AM", false),
	}
	now, _ := time.Parse("2006-01-02 15:04", "2026-08-30 10:30")

	got, ok := chooseSlot(cands, Request{Date: date}, now)
	if !ok {
		t.Fatal("expected a selection")
	}
	if got.Label != "11:00 AM" {
		t.Fatalf("expected the 11:00 slot, got %s", got.Label)
	}
}

func TestChooseNextPlayableFallsBackToEarliest(t *testing.T) {
	// Every slot is before the comparison instant; the earliest overall is
	// still attempted rather than failing.
	date, _ := time.Parse("2006-01-02", "2026-09-01")
	cands := []SlotCandidate{
		slotAt(t, "2026-09-01", "10:00", "10:00 AM", false),
		slotAt(t, "2026-09-01", "08:00", "8:00 AM", true),
		slotAt(t, "2026-09-01", "09:00", "9:00 AM", false),
	}
	now, _ := time.Parse("2006-01-02 15:04", "2026-08-30 22:15")

	got, _ := chooseSlot(cands, Request{Date: date}, now)
	if got.Label != "8:00 AM" {
		t.Fatalf("expected the earliest slot overall, got %s", got.Label)
	}
}

func TestChooseAtTimeExactMatchWinsEvenWhenDisabled(t *testing.T) {
	date, _ := time.Parse("2006-01-02", "2026-09-01")
	cands := []SlotCandidate{
		slotAt(t, "2026-09-01", "08:30", "8:30 AM", true),
		slotAt(t, "2026-09-01", "09:00", "9:00 AM", false),
	}

	got, _ := chooseSlot(cands, Request{Date: date, StartTime: "8:30 AM"}, time.Now())
	if got.Label != "8:30 AM" {
		t.Fatalf("expected the exact disabled match, got %s", got.Label)
	}
	if !got.Disabled {
		t.Fatal("expected the disabled slot itself, not a substitute")
	}
}

func TestChooseAtTimeNoExactMatchPicksNextEnabled(t *testing.T) {
	date, _ := time.Parse("2006-01-02", "2026-09-01")
	cands := []SlotCandidate{
		slotAt(t, "2026-09-01", "08:00", "8:00 AM", false),
		slotAt(t, "2026-09-01", "09:00", "9:00 AM", true),
		slotAt(t, "2026-09-01", "10:00", "10:00 AM", false),
	}

	// No slot is labelled "8:30 AM"; the earliest enabled slot strictly after
	// 08:30 is the 10:00 one (09:00 is disabled).
	got, _ := chooseSlot(cands, Request{Date: date, StartTime: "8:30 AM"}, time.Now())
	if got.Label != "10:00 AM" {
		t.Fatalf("expected the 10:00 slot, got %s", got.Label)
	}
}

func TestChooseAtTimeNothingAfterFallsBackToEarliestEnabled(t *testing.T) {
	date, _ := time.Parse("2006-01-02", "2026-09-01")
	cands := []SlotCandidate{
		slotAt(t, "2026-09-01", "08:00", "8:00 AM", false),
		slotAt(t, "2026-09-01", "09:00", "9:00 AM", false),
	}

	got, _ := chooseSlot(cands, Request{Date: date, StartTime: "7:00 PM"}, time.Now())
	if got.Label != "8:00 AM" {
		t.Fatalf("expected fallback to the earliest enabled slot, got %s", got.Label)
	}
}

func TestChooseAtTimeAllDisabledStillSelects(t *testing.T) {
	date, _ := time.Parse("2006-01-02", "2026-09-01")
	cands := []SlotCandidate{
		slotAt(t, "2026-09-01", "12:00", "12:00 PM", true),
		slotAt(t, "2026-09-01", "09:00", "9:00 AM", true),
	}

	got, ok := chooseSlot(cands, Request{Date: date, StartTime: "10:00 AM"}, time.Now())
	if !ok {
		t.Fatal("expected a selection even when every slot is disabled")
	}
	if got.Label != "9:00 AM" {
		t.Fatalf("expected the earliest slot, got %s", got.Label)
	}
}
