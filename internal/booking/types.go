package booking

import "time"

// Credentials are the portal login identity. They are held in memory for the
// lifetime of one session and never persisted by this package.
type Credentials struct {
	Email    string
	Password string
}

// Request describes one court booking to attempt.
type Request struct {
	Facility string // portal club slug, e.g. "riverside-tennis"
	Court    string // optional court filter, passed through to the portal

	Date time.Time // target day

	// StartTime is the portal's display wording for the wanted slot, e.g.
	// "8:30 AM". Empty means "the next playable slot on the target date".
	StartTime string

	DurationMinutes int
}

// SlotCandidate is one reservable offering discovered on the live page.
// Disabled mirrors the portal's visual state only; disabled slots may still be
// clickable and open a waitlist dialog, so discovery never filters on it.
type SlotCandidate struct {
	Start    time.Time
	Label    string
	Disabled bool

	el clickable
}

// clickable is the handle used to trigger selection of a discovered slot.
// The live implementation wraps a rod element; tests substitute fakes.
type clickable interface {
	click() error
}
