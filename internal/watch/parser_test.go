package watch

import (
	"strings"
	"testing"
	"time"
)

const scheduleHTML = `
<html><body>
<div class="booking-slots">
  <a class="slot" href="/reservations/book?start=2026-09-01T09:00">9:00 AM</a>
  <a class="slot disabled" href="/reservations/book?start=2026-09-01T10:00">10:00 AM</a>
  <a class="slot" aria-disabled="true" href="/reservations/book?start=2026-09-01T11:00">11:00 AM</a>
  <a class="slot" href="/reservations/book?start=2026-09-01T12:30">12:30 PM</a>
  <a class="slot" href="/reservations/book?start=not-a-time">1:00 PM</a>
</div>
</body></html>`

func TestParseScheduleSkipsDisabledAndBroken(t *testing.T) {
	slots, err := parseSchedule(strings.NewReader(scheduleHTML), "city-club")
	if err != nil {
		t.Fatalf("parseSchedule: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("got %d slots, want 2: %+v", len(slots), slots)
	}
	want0 := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	if !slots[0].Start.Equal(want0) {
		t.Errorf("slot 0 start = %v, want %v", slots[0].Start, want0)
	}
	if slots[0].Label != "9:00 AM" {
		t.Errorf("slot 0 label = %q", slots[0].Label)
	}
	if slots[1].Label != "12:30 PM" {
		t.Errorf("slot 1 label = %q", slots[1].Label)
	}
	for _, s := range slots {
		if s.Facility != "city-club" {
			t.Errorf("facility = %q, want city-club", s.Facility)
		}
	}
}

func TestParseScheduleEmptyPage(t *testing.T) {
	slots, err := parseSchedule(strings.NewReader("<html><body></body></html>"), "x")
	if err != nil {
		t.Fatalf("parseSchedule: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("got %d slots, want 0", len(slots))
	}
}

func TestNewSlotsDiff(t *testing.T) {
	mk := func(hour int) OpenSlot {
		return OpenSlot{Start: time.Date(2026, 9, 1, hour, 0, 0, 0, time.UTC)}
	}
	open := []OpenSlot{mk(9), mk(10), mk(11)}
	seen := map[string]bool{mk(9).Key(): true, mk(11).Key(): true}

	fresh := newSlots(open, seen)
	if len(fresh) != 1 {
		t.Fatalf("got %d new slots, want 1", len(fresh))
	}
	if fresh[0].Key() != mk(10).Key() {
		t.Errorf("new slot = %s, want %s", fresh[0].Key(), mk(10).Key())
	}

	if got := newSlots(open, map[string]bool{}); len(got) != 3 {
		t.Errorf("empty seen set: got %d, want 3", len(got))
	}
}
