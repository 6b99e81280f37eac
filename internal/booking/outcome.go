package booking

import (
	"fmt"
	"strings"
	"time"
)

// OutcomeKind classifies how a booking attempt ended.
type OutcomeKind int

const (
	OutcomeBooked OutcomeKind = iota
	OutcomeNoSlotsAvailable
	OutcomeSaveFailedAfterRetries
	OutcomeUnexpectedError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeBooked:
		return "booked"
	case OutcomeNoSlotsAvailable:
		return "no_slots_available"
	case OutcomeSaveFailedAfterRetries:
		return "save_failed_after_retries"
	case OutcomeUnexpectedError:
		return "unexpected_error"
	}
	return fmt.Sprintf("outcome(%d)", int(k))
}

// Outcome is the terminal classification of one BookCourt call.
type Outcome struct {
	Kind   OutcomeKind
	Detail string
	At     time.Time
}

func (o Outcome) Booked() bool { return o.Kind == OutcomeBooked }

func newOutcome(kind OutcomeKind, detail string, at time.Time) Outcome {
	return Outcome{Kind: kind, Detail: detail, At: at}
}

// Notification renders the outcome as a notifier payload. Every terminal
// outcome names the target date/time/duration so a human can intervene
// without consulting logs.
func (o Outcome) Notification(req Request) (title, message string) {
	target := req.Date.Format("Mon, 02 Jan 2006")
	if req.StartTime != "" {
		target += " at " + req.StartTime
	}
	if req.DurationMinutes > 0 {
		target += fmt.Sprintf(" for %d min", req.DurationMinutes)
	}

	switch o.Kind {
	case OutcomeBooked:
		title = "🎾 Court booked"
	case OutcomeNoSlotsAvailable:
		title = "No courts available"
	case OutcomeSaveFailedAfterRetries:
		title = "Booking could not be saved"
	default:
		title = "Booking error"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Facility: %s\n", req.Facility)
	if req.Court != "" {
		fmt.Fprintf(&b, "Court: %s\n", req.Court)
	}
	fmt.Fprintf(&b, "Target: %s\n", target)
	if o.Detail != "" {
		fmt.Fprintf(&b, "Detail: %s\n", o.Detail)
	}
	fmt.Fprintf(&b, "Attempted: %s", o.At.Format(time.RFC1123))
	return title, b.String()
}
