package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/leoninela2025/tennis-bot/internal/notify"
)

// ErrNotInitialized is returned when Login or BookCourt is called before
// Initialize, or after Close.
var ErrNotInitialized = errors.New("booking: session not initialized")

const (
	navTimeout      = 30 * time.Second
	elementTimeout  = 10 * time.Second
	shortTimeout    = 3 * time.Second
	dialogTimeout   = 5 * time.Second
	slotListTimeout = 10 * time.Second
	slotRenderDelay = 2 * time.Second
	saveSignalWait  = 8 * time.Second
	saveRetryDelay  = 2 * time.Second
)

// Config carries the portal-level settings for one session.
type Config struct {
	BaseURL  string // e.g. https://courts.clubpoint.net
	Headless bool
}

// Session owns one browser automation lifecycle for one booking attempt.
// It is not safe for concurrent use; run at most one BookCourt at a time.
type Session struct {
	cfg      Config
	creds    Credentials
	notifier notify.Notifier

	browser  *rod.Browser
	page     *rod.Page
	launcher *launcher.Launcher

	authenticated bool

	// flow drives the portal pages for a booking attempt. Nil means the rod
	// implementation; tests script it.
	flow courtFlow

	// now is swapped out by tests.
	now func() time.Time
}

// courtFlow is the page-driving surface of one booking attempt, split off so
// the BookCourt pipeline can run against a scripted portal.
type courtFlow interface {
	discoverSlots(ctx context.Context, req Request) ([]SlotCandidate, error)
	// awaitDialog waits, bounded, for the confirmation dialog after a slot
	// click. (nil, nil) means the portal claimed the slot with no dialog.
	awaitDialog(ctx context.Context) (confirmDialog, error)
	saver() saveDriver
}

// confirmDialog is an open confirmation dialog ready to be filled in.
type confirmDialog interface {
	complete(ctx context.Context, req Request) error
}

func NewSession(cfg Config, creds Credentials, n notify.Notifier) *Session {
	return &Session{cfg: cfg, creds: creds, notifier: n, now: time.Now}
}

// Initialize launches a fresh headless browser with a desktop viewport. Call
// it exactly once per session; calling it again leaks the previous browser.
func (s *Session) Initialize(ctx context.Context) error {
	l := launcher.New().Headless(s.cfg.Headless).Leakless(true)
	controlURL, err := l.Launch()
	if err != nil {
		return fmt.Errorf("booking: launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		l.Cleanup()
		return fmt.Errorf("booking: connect browser: %w", err)
	}

	page, err := stealth.Page(browser)
	if err != nil {
		_ = browser.Close()
		l.Cleanup()
		return fmt.Errorf("booking: open page: %w", err)
	}
	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: desktopUserAgent}); err != nil {
		_ = browser.Close()
		l.Cleanup()
		return fmt.Errorf("booking: set user agent: %w", err)
	}
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width: 1366, Height: 768, DeviceScaleFactor: 1,
	}); err != nil {
		_ = browser.Close()
		l.Cleanup()
		return fmt.Errorf("booking: set viewport: %w", err)
	}

	s.launcher = l
	s.browser = browser
	s.page = page
	return nil
}

// Login drives the portal's login form. It reports success or failure and
// only errors when the session is uninitialized; everything that goes wrong
// inside the flow is logged and folded into `false`.
func (s *Session) Login(ctx context.Context) (bool, error) {
	if s.page == nil {
		return false, ErrNotInitialized
	}
	s.authenticated = s.login(ctx)
	return s.authenticated, nil
}

func (s *Session) login(ctx context.Context) bool {
	page := s.page.Context(ctx)
	loginURL := s.cfg.BaseURL + loginPath

	if err := page.Timeout(navTimeout).Navigate(loginURL); err != nil {
		log.Printf("booking: navigate to login: %v", err)
		return false
	}
	if err := page.Timeout(navTimeout).WaitLoad(); err != nil {
		log.Printf("booking: login page load: %v", err)
		return false
	}

	if err := s.fillField(page, loginUserSelector, s.creds.Email); err != nil {
		log.Printf("booking: fill username: %v", err)
		return false
	}
	if err := s.fillField(page, loginPassSelector, s.creds.Password); err != nil {
		log.Printf("booking: fill password: %v", err)
		return false
	}

	// Remember-me is optional on this portal; tick it when present so the
	// server keeps the session warm across redirects.
	if box, err := page.Timeout(shortTimeout).Element(rememberMeSelector); err == nil {
		if checked, err := isChecked(box); err == nil && !checked {
			_ = box.Click(proto.InputMouseButtonLeft, 1)
		}
	}

	submit, err := page.Timeout(elementTimeout).Element(loginSubmitSelector)
	if err != nil {
		log.Printf("booking: login submit control not found: %v", err)
		return false
	}
	wait := page.Timeout(navTimeout).WaitNavigation(proto.PageLifecycleEventNameNetworkAlmostIdle)
	if err := submit.Click(proto.InputMouseButtonLeft, 1); err != nil {
		log.Printf("booking: click login submit: %v", err)
		return false
	}
	wait()

	// Layered success check: off the login page, or a known post-login marker.
	cur := s.currentURL(page)
	if cur != "" && !isLoginURL(cur) {
		return true
	}
	if s.anyVisible(page, logoutLinkSelector, bookCourtLinkSelector) {
		return true
	}
	if msg := s.visibleLoginError(page); msg != "" {
		log.Printf("booking: portal rejected login: %s", msg)
		return false
	}
	if cur != "" && cur != loginURL {
		// Address changed and nothing on screen says it failed.
		log.Printf("booking: login address changed to %s with no visible error, treating as success", cur)
		return true
	}
	return false
}

// BookCourt runs one full booking attempt: implicit login when needed, slot
// discovery and selection, the confirmation dialog, and the save retry loop.
// The outcome is also pushed to the notifier. Only session misuse errors; all
// booking failures come back as a non-booked outcome.
func (s *Session) BookCourt(ctx context.Context, req Request) (bool, Outcome, error) {
	if s.page == nil {
		return false, Outcome{}, ErrNotInitialized
	}
	out := s.bookCourt(ctx, req)
	s.report(ctx, req, out)
	return out.Booked(), out, nil
}

func (s *Session) bookCourt(ctx context.Context, req Request) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = newOutcome(OutcomeUnexpectedError, fmt.Sprintf("panic during booking: %v", r), s.now())
		}
	}()

	if !s.authenticated {
		ok, err := s.Login(ctx)
		if err != nil {
			return newOutcome(OutcomeUnexpectedError, err.Error(), s.now())
		}
		if !ok {
			return newOutcome(OutcomeUnexpectedError, "portal login failed", s.now())
		}
	}

	flow := s.flow
	if flow == nil {
		flow = rodFlow{s: s}
	}

	cands, err := flow.discoverSlots(ctx, req)
	if err != nil {
		return newOutcome(OutcomeUnexpectedError, err.Error(), s.now())
	}
	pick, ok := chooseSlot(cands, req, s.now())
	if !ok {
		return newOutcome(OutcomeNoSlotsAvailable,
			fmt.Sprintf("no bookable slots found on %s", req.Date.Format("2006-01-02")), s.now())
	}
	log.Printf("booking: selecting slot %s (%s, disabled=%v)", pick.Start.Format(slotStartLayout), pick.Label, pick.Disabled)
	if err := pick.el.click(); err != nil {
		return newOutcome(OutcomeUnexpectedError, fmt.Sprintf("click slot: %v", err), s.now())
	}

	dlg, err := flow.awaitDialog(ctx)
	if err != nil {
		return newOutcome(OutcomeUnexpectedError, fmt.Sprintf("await confirmation dialog: %v", err), s.now())
	}
	if dlg == nil {
		// Slot was claimed without further steps. Reported optimistically;
		// this UI variant is not fully driven and a human should verify.
		log.Printf("booking: no confirmation dialog appeared, treating the slot as claimed")
		return newOutcome(OutcomeBooked, "slot claimed without a confirmation dialog; verify on the portal", s.now())
	}

	if err := dlg.complete(ctx, req); err != nil {
		return newOutcome(OutcomeUnexpectedError, err.Error(), s.now())
	}

	res, err := runSaveLoop(ctx, flow.saver(), maxSaveAttempts, saveRetryDelay)
	if err != nil {
		return newOutcome(OutcomeUnexpectedError, err.Error(), s.now())
	}
	if res.Succeeded {
		return newOutcome(OutcomeBooked,
			fmt.Sprintf("reservation saved on attempt %d", res.Attempts), s.now())
	}
	return newOutcome(OutcomeSaveFailedAfterRetries, res.failureDetail(), s.now())
}

// Close tears the browser down and resets the session to uninitialized. It is
// safe to call repeatedly and must run on every exit path so the browser
// process does not leak.
func (s *Session) Close() {
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			log.Printf("booking: close browser: %v", err)
		}
	}
	if s.launcher != nil {
		s.launcher.Cleanup()
	}
	s.browser = nil
	s.page = nil
	s.launcher = nil
	s.authenticated = false
}

func (s *Session) report(ctx context.Context, req Request, out Outcome) {
	if s.notifier == nil {
		return
	}
	title, msg := out.Notification(req)
	if err := s.notifier.Notify(ctx, title, msg); err != nil {
		log.Printf("booking: notify: %v", err)
	}
}

func (s *Session) fillField(page *rod.Page, selector, value string) error {
	el, err := page.Timeout(elementTimeout).Element(selector)
	if err != nil {
		return fmt.Errorf("field %s: %w", selector, err)
	}
	_ = el.SelectAllText()
	return el.Input(value)
}

func (s *Session) currentURL(page *rod.Page) string {
	info, err := page.Timeout(shortTimeout).Info()
	if err != nil {
		log.Printf("booking: read page address: %v", err)
		return ""
	}
	return info.URL
}

func (s *Session) anyVisible(page *rod.Page, selectors ...string) bool {
	for _, sel := range selectors {
		el, err := page.Timeout(shortTimeout).Element(sel)
		if err != nil {
			continue
		}
		if vis, err := el.Visible(); err == nil && vis {
			return true
		}
	}
	return false
}

func (s *Session) visibleLoginError(page *rod.Page) string {
	el, err := page.Timeout(shortTimeout).Element(loginErrorSelector)
	if err != nil {
		return ""
	}
	if vis, err := el.Visible(); err != nil || !vis {
		return ""
	}
	text, err := el.Text()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}

func isChecked(el *rod.Element) (bool, error) {
	v, err := el.Property("checked")
	if err != nil {
		return false, err
	}
	return v.Bool(), nil
}
