package booking

import (
	"log"
	"sort"
	"strings"
	"time"
)

// chooseSlot picks which discovered slot to click. It never fails when at
// least one candidate exists: a stale but non-ideal click still surfaces the
// real availability through the resulting dialog, whereas clicking nothing
// has zero value.
func chooseSlot(cands []SlotCandidate, req Request, now time.Time) (SlotCandidate, bool) {
	if len(cands) == 0 {
		return SlotCandidate{}, false
	}
	if req.StartTime == "" {
		return chooseNextPlayable(cands, req.Date, now), true
	}
	return chooseAtTime(cands, req), true
}

// chooseNextPlayable is the default policy: the earliest slot strictly after
// "right now, but on the target date". When every slot on the target date is
// already in the past relative to that instant, it degrades to the earliest
// slot overall so that a discovered slot is always attempted.
func chooseNextPlayable(cands []SlotCandidate, date time.Time, now time.Time) SlotCandidate {
	sorted := sortedByStart(cands)
	cutoff := time.Date(date.Year(), date.Month(), date.Day(),
		now.Hour(), now.Minute(), now.Second(), 0, sorted[0].Start.Location())
	for _, c := range sorted {
		if c.Start.After(cutoff) {
			return c
		}
	}
	log.Printf("booking: all %d slots start before %s, falling back to the earliest", len(sorted), cutoff.Format("15:04"))
	return sorted[0]
}

// chooseAtTime is the explicit-target-time policy. An exact textual match is
// clicked regardless of its disabled marker: a disabled exact match still
// opens the expected dialog (typically the waitlist variant). Failing that,
// the earliest enabled slot after the requested instant wins, then the
// earliest enabled slot, then the earliest slot of all.
func chooseAtTime(cands []SlotCandidate, req Request) SlotCandidate {
	want := strings.TrimSpace(req.StartTime)
	for _, c := range cands {
		if strings.EqualFold(strings.TrimSpace(c.Label), want) {
			return c
		}
	}

	var enabled []SlotCandidate
	for _, c := range cands {
		if !c.Disabled {
			enabled = append(enabled, c)
		}
	}
	if len(enabled) == 0 {
		log.Printf("booking: no enabled slot and no exact match for %q, falling back to the earliest slot", want)
		return sortedByStart(cands)[0]
	}
	sorted := sortedByStart(enabled)

	if hour, minute, err := parseClock(want); err == nil {
		target := time.Date(req.Date.Year(), req.Date.Month(), req.Date.Day(),
			hour, minute, 0, 0, sorted[0].Start.Location())
		for _, c := range sorted {
			if c.Start.After(target) {
				return c
			}
		}
	} else {
		log.Printf("booking: %v, falling back to the earliest available slot", err)
	}
	return sorted[0]
}

func sortedByStart(cands []SlotCandidate) []SlotCandidate {
	out := make([]SlotCandidate, len(cands))
	copy(out, cands)
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}
