package booking

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLoginBeforeInitializeErrors(t *testing.T) {
	s := NewSession(Config{BaseURL: "https://courts.example.net"}, Credentials{}, nil)
	if _, err := s.Login(context.Background()); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}

func TestBookCourtBeforeInitializeErrors(t *testing.T) {
	s := NewSession(Config{BaseURL: "https://courts.example.net"}, Credentials{}, nil)
	ok, _, err := s.BookCourt(context.Background(), Request{Date: time.Now()})
	if !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
	if ok {
		t.Fatal("expected booking to report failure")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	s := NewSession(Config{}, Credentials{}, nil)
	s.Close()
	s.Close()
	if s.browser != nil || s.page != nil || s.launcher != nil {
		t.Fatal("expected all handles reset")
	}
	if s.authenticated {
		t.Fatal("expected authenticated reset")
	}
	if _, err := s.Login(context.Background()); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected uninitialized state after close, got %v", err)
	}
}

func TestOutcomeNotificationNamesTarget(t *testing.T) {
	date, _ := time.Parse("2006-01-02", "2026-09-01")
	req := Request{Facility: "riverside-tennis", Court: "Court 2", Date: date, StartTime: "8:30 AM", DurationMinutes: 90}
	at, _ := time.Parse(time.RFC3339, "2026-08-30T06:00:00Z")

	out := newOutcome(OutcomeSaveFailedAfterRetries, "court no longer available", at)
	title, msg := out.Notification(req)

	if title != "Booking could not be saved" {
		t.Fatalf("unexpected title %q", title)
	}
	for _, want := range []string{"riverside-tennis", "Court 2", "Tue, 01 Sep 2026", "8:30 AM", "90 min", "court no longer available"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestOutcomeBookedMapsToTrue(t *testing.T) {
	if !newOutcome(OutcomeBooked, "", time.Now()).Booked() {
		t.Fatal("booked outcome must report true")
	}
	for _, k := range []OutcomeKind{OutcomeNoSlotsAvailable, OutcomeSaveFailedAfterRetries, OutcomeUnexpectedError} {
		if newOutcome(k, "", time.Now()).Booked() {
			t.Fatalf("%s must report false", k)
		}
	}
}

func TestOutcomeKindStrings(t *testing.T) {
	cases := map[OutcomeKind]string{
		OutcomeBooked:                 "booked",
		OutcomeNoSlotsAvailable:       "no_slots_available",
		OutcomeSaveFailedAfterRetries: "save_failed_after_retries",
		OutcomeUnexpectedError:        "unexpected_error",
	}
	for k, want := range cases {
		if k.String() != want {
			t.Fatalf("%d.String() = %q, want %q", int(k), k.String(), want)
		}
	}
}
