package booking

import (
	"testing"
	"time"
)

func TestParseSlotStart(t *testing.T) {
	start, err := ParseSlotStart("/reservations/new?court=3&start=2026-09-01T09:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	if !start.Equal(want) {
		t.Fatalf("expected %s, got %s", want, start)
	}
}

func TestParseSlotStartWithSeconds(t *testing.T) {
	start, err := ParseSlotStart("https://courts.example.net/reservations/new?start=2026-09-01T14:30:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.Hour() != 14 || start.Minute() != 30 {
		t.Fatalf("unexpected start %s", start)
	}
}

func TestParseSlotStartRejectsGarbage(t *testing.T) {
	for _, href := range []string{
		"/reservations/new",
		"/reservations/new?start=",
		"/reservations/new?start=tomorrow",
		"://bad",
	} {
		if _, err := ParseSlotStart(href); err == nil {
			t.Fatalf("expected error for %q", href)
		}
	}
}

func TestParseClock(t *testing.T) {
	cases := []struct {
		in          string
		hour, mnute int
	}{
		{"8:30 AM", 8, 30},
		{"8:30AM", 8, 30},
		{"12:15 PM", 12, 15},
		{" 19:00 ", 19, 0},
	}
	for _, c := range cases {
		h, m, err := parseClock(c.in)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", c.in, err)
		}
		if h != c.hour || m != c.mnute {
			t.Fatalf("%q: expected %02d:%02d, got %02d:%02d", c.in, c.hour, c.mnute, h, m)
		}
	}
	if _, _, err := parseClock("half past nine"); err == nil {
		t.Fatal("expected error for prose time")
	}
}

func TestDurationLabel(t *testing.T) {
	cases := map[int]string{
		30:  "30 minutes",
		60:  "1 hour",
		90:  "1.5 hours",
		120: "2 hours",
		45:  "45 minutes",
	}
	for minutes, want := range cases {
		if got := durationLabel(minutes); got != want {
			t.Fatalf("durationLabel(%d) = %q, want %q", minutes, got, want)
		}
	}
}
