package watch

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/leoninela2025/tennis-bot/internal/notify"
	"github.com/leoninela2025/tennis-bot/internal/storage"
)

// Watcher polls facility schedule pages and announces newly opened slots.
// It never books anything; it only watches.
type Watcher struct {
	BaseURL    string
	Facilities []string
	DaysAhead  int
	Interval   time.Duration

	Store    *storage.Store
	Notifier notify.Notifier

	Client  *http.Client
	Limiter *rate.Limiter
}

func New(baseURL string, facilities []string, store *storage.Store, notifier notify.Notifier) *Watcher {
	return &Watcher{
		BaseURL:    baseURL,
		Facilities: facilities,
		DaysAhead:  7,
		Interval:   2 * time.Minute,
		Store:      store,
		Notifier:   notifier,
		Client:     &http.Client{Timeout: 20 * time.Second},
		// One request per 2s keeps the poll well under the portal's notice.
		Limiter: rate.NewLimiter(rate.Every(2*time.Second), 1),
	}
}

// Run polls until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	log.Printf("watch: polling %d facilities every %s", len(w.Facilities), w.Interval)
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	w.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

func (w *Watcher) poll(ctx context.Context) {
	for _, facility := range w.Facilities {
		if err := w.pollFacility(ctx, facility); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("watch: %s: %v", facility, err)
		}
	}
}

func (w *Watcher) pollFacility(ctx context.Context, facility string) error {
	seen, err := w.Store.SeenSlots(ctx, facility)
	if err != nil {
		return err
	}

	var open []OpenSlot
	today := time.Now().Truncate(24 * time.Hour)
	for d := 0; d < w.DaysAhead; d++ {
		if err := w.Limiter.Wait(ctx); err != nil {
			return err
		}
		slots, err := FetchDaySchedule(ctx, w.Client, w.BaseURL, facility, "", today.AddDate(0, 0, d))
		if err != nil {
			return err
		}
		open = append(open, slots...)
	}

	fresh := newSlots(open, seen)
	if len(fresh) > 0 {
		log.Printf("watch: %s: %d new slots", facility, len(fresh))
		if err := w.Notifier.Notify(ctx, "New court slots at "+facility, describeSlots(fresh)); err != nil {
			log.Printf("watch: notify: %v", err)
		}
	}

	// The saved set mirrors what is currently open so slots that close and
	// reopen get announced again.
	current := make(map[string]bool, len(open))
	for _, s := range open {
		current[s.Key()] = true
	}
	return w.Store.SaveSeenSlots(ctx, facility, current)
}

// newSlots returns the slots not present in seen, preserving order.
func newSlots(open []OpenSlot, seen map[string]bool) []OpenSlot {
	var fresh []OpenSlot
	for _, s := range open {
		if !seen[s.Key()] {
			fresh = append(fresh, s)
		}
	}
	return fresh
}

func describeSlots(slots []OpenSlot) string {
	var b strings.Builder
	for i, s := range slots {
		if i == 10 {
			fmt.Fprintf(&b, "… and %d more", len(slots)-10)
			break
		}
		fmt.Fprintf(&b, "%s (%s)\n", s.Start.Format("Mon 02 Jan 15:04"), s.Label)
	}
	return strings.TrimRight(b.String(), "\n")
}
