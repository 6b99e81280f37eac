package booking

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// discoverSlots loads the reservation calendar for the request, steers the
// calendar widget to the target date, and enumerates every slot link it can
// parse. Disabled slots are included on purpose: the portal's disabled markup
// is inconsistent and disabled slots can still open a waitlist dialog.
func (s *Session) discoverSlots(ctx context.Context, req Request) ([]SlotCandidate, error) {
	page := s.page.Context(ctx)

	if err := page.Timeout(navTimeout).Navigate(s.bookingURL(req)); err != nil {
		return nil, fmt.Errorf("navigate to booking page: %w", err)
	}
	if err := page.Timeout(navTimeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("booking page load: %w", err)
	}

	s.selectCalendarDay(page, req.Date)

	// The slot list renders asynchronously after a date change. Absence of the
	// marker within the bound gets a short fixed delay instead of a failure;
	// whatever is on screen afterwards is what we work with.
	if _, err := page.Timeout(slotListTimeout).Element(slotListSelector); err != nil {
		log.Printf("booking: slot list marker not seen within %s, reading the page after %s", slotListTimeout, slotRenderDelay)
		sleepCtx(ctx, slotRenderDelay)
	}

	els, err := page.Elements(slotLinkSelector)
	if err != nil {
		return nil, fmt.Errorf("enumerate slots: %w", err)
	}

	var cands []SlotCandidate
	for _, el := range els {
		href, err := el.Attribute("href")
		if err != nil || href == nil {
			continue
		}
		start, err := ParseSlotStart(*href)
		if err != nil {
			log.Printf("booking: skipping slot: %v", err)
			continue
		}
		label, _ := el.Text()
		disabled, _ := el.Matches(disabledSlotClass)
		cands = append(cands, SlotCandidate{
			Start:    start,
			Label:    strings.TrimSpace(label),
			Disabled: disabled,
			el:       rodClickable{el: el},
		})
	}
	log.Printf("booking: discovered %d parseable slots for %s", len(cands), req.Date.Format("2006-01-02"))
	return cands, nil
}

// selectCalendarDay clicks the day-of-month cell for the target date. A date
// that is not visible in the widget is a soft degrade: we log and book against
// whatever date the calendar currently shows.
func (s *Session) selectCalendarDay(page *rod.Page, date time.Time) {
	want := strconv.Itoa(date.Day())
	els, err := page.Timeout(elementTimeout).Elements(calendarDaySelector)
	if err != nil {
		log.Printf("booking: calendar widget not found, keeping the currently shown date: %v", err)
		return
	}
	for _, el := range els {
		text, err := el.Text()
		if err != nil {
			continue
		}
		if strings.TrimSpace(text) == want {
			if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
				log.Printf("booking: click calendar day %s: %v", want, err)
			}
			return
		}
	}
	log.Printf("booking: day %s not visible in the calendar, keeping the currently shown date", want)
}

func (s *Session) bookingURL(req Request) string {
	q := url.Values{}
	q.Set("club", req.Facility)
	if req.Court != "" {
		q.Set("court", req.Court)
	}
	return s.cfg.BaseURL + bookPath + "?" + q.Encode()
}

type rodClickable struct{ el *rod.Element }

func (c rodClickable) click() error {
	return c.el.Click(proto.InputMouseButtonLeft, 1)
}
