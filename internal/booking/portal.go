package booking

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Everything the session knows about the reservation portal's DOM lives here.
// These are integration assumptions about a site we do not control; when the
// portal ships a redesign, this is the file that breaks.

const (
	loginPath = "/account/login"
	bookPath  = "/reservations/bookacourt"

	loginUserSelector     = `input[name="UserName"]`
	loginPassSelector     = `input[name="Password"]`
	rememberMeSelector    = `input[name="RememberMe"]`
	loginSubmitSelector   = `form[action*="login" i] button[type="submit"]`
	loginErrorSelector    = `.validation-summary-errors, .alert-danger, .login-error`
	logoutLinkSelector    = `a[href*="logout" i]`
	bookCourtLinkSelector = `a[href*="bookacourt" i]`

	calendarDaySelector = `.booking-calendar td a`
	slotListSelector    = `.booking-slots`
	slotLinkSelector    = `.booking-slots a.slot`
	disabledSlotClass   = `.disabled, [aria-disabled="true"]`

	dialogSelector         = `#reservationDialog`
	durationSelectSelector = `select[name="Duration"]`
	agreementBoxSelector   = `input#agreeTerms`
	agreementLabelSelector = `label[for="agreeTerms"]`
	saveButtonSelector     = `#reservationDialog button[data-action="save"]`
	successMarkerSelector  = `.booking-confirmation`
	errorDialogSelector    = `#errorDialog .modal-body, .error-dialog`
	errorConfirmSelector   = `#errorDialog button.confirm, .error-dialog button.confirm`
)

const desktopUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// slotStartLayout is the timestamp format the portal embeds in slot links,
// e.g. /reservations/new?start=2026-09-01T09:00.
const slotStartLayout = "2006-01-02T15:04"

// ParseSlotStart extracts the slot start timestamp from a slot link target.
// The portal encodes it in the "start" query parameter.
func ParseSlotStart(href string) (time.Time, error) {
	u, err := url.Parse(href)
	if err != nil {
		return time.Time{}, fmt.Errorf("slot href: %w", err)
	}
	raw := u.Query().Get("start")
	if raw == "" {
		return time.Time{}, fmt.Errorf("slot href %q has no start parameter", href)
	}
	for _, layout := range []string{slotStartLayout, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("slot start %q is not a recognized timestamp", raw)
}

// parseClock parses a user-facing time-of-day string such as "8:30 AM" or "14:00".
func parseClock(s string) (hour, minute int, err error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"3:04 PM", "3:04PM", "15:04"} {
		if t, perr := time.Parse(layout, s); perr == nil {
			return t.Hour(), t.Minute(), nil
		}
	}
	return 0, 0, fmt.Errorf("unrecognized time of day %q", s)
}

// durationLabel maps a duration in minutes onto the portal's dropdown wording.
func durationLabel(minutes int) string {
	switch minutes {
	case 30:
		return "30 minutes"
	case 60:
		return "1 hour"
	case 90:
		return "1.5 hours"
	case 120:
		return "2 hours"
	}
	return fmt.Sprintf("%d minutes", minutes)
}

// fallbackDurationLabel is used when the requested duration cannot be selected.
const fallbackDurationLabel = "1 hour"

func isLoginURL(raw string) bool {
	return strings.Contains(strings.ToLower(raw), loginPath)
}
