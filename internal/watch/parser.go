package watch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/leoninela2025/tennis-bot/internal/booking"
)

// OpenSlot is a bookable slot seen on a facility's schedule page.
type OpenSlot struct {
	Facility string
	Start    time.Time
	Label    string
}

// Key identifies the slot across polls.
func (s OpenSlot) Key() string {
	return s.Start.Format("2006-01-02T15:04")
}

// parseSchedule extracts the open slots from a booking page. Disabled entries
// and entries with unparseable start times are skipped.
func parseSchedule(r io.Reader, facility string) ([]OpenSlot, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse schedule html: %w", err)
	}

	var slots []OpenSlot
	doc.Find(".booking-slots a.slot").Each(func(_ int, sel *goquery.Selection) {
		if sel.HasClass("disabled") {
			return
		}
		if v, ok := sel.Attr("aria-disabled"); ok && v == "true" {
			return
		}
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		start, err := booking.ParseSlotStart(href)
		if err != nil {
			return
		}
		slots = append(slots, OpenSlot{
			Facility: facility,
			Start:    start,
			Label:    strings.TrimSpace(sel.Text()),
		})
	})
	return slots, nil
}

// FetchDaySchedule downloads and parses one day of a facility's schedule.
func FetchDaySchedule(ctx context.Context, client *http.Client, baseURL, facility, court string, day time.Time) ([]OpenSlot, error) {
	q := url.Values{}
	q.Set("club", facility)
	if court != "" {
		q.Set("court", court)
	}
	q.Set("date", day.Format("2006-01-02"))
	u := strings.TrimRight(baseURL, "/") + "/reservations/bookacourt?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch schedule: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch schedule: unexpected status %d", resp.StatusCode)
	}
	return parseSchedule(resp.Body, facility)
}
