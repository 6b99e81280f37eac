package booking

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// rodFlow is the live courtFlow: slot discovery, the confirmation dialog and
// the save driver, all on the session's rod page.
type rodFlow struct{ s *Session }

func (f rodFlow) discoverSlots(ctx context.Context, req Request) ([]SlotCandidate, error) {
	return f.s.discoverSlots(ctx, req)
}

func (f rodFlow) awaitDialog(ctx context.Context) (confirmDialog, error) {
	el, err := f.s.page.Context(ctx).Timeout(dialogTimeout).Element(dialogSelector)
	if err != nil {
		// A cancelled wait is not "no dialog"; only a quiet page is.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, nil
	}
	return rodDialog{s: f.s, el: el}, nil
}

func (f rodFlow) saver() saveDriver {
	return &rodSaveDriver{page: f.s.page, signalWait: saveSignalWait}
}

// rodDialog is the confirmation dialog element with the session it lives on.
type rodDialog struct {
	s  *Session
	el *rod.Element
}

func (d rodDialog) complete(ctx context.Context, req Request) error {
	return d.s.completeDialog(ctx, d.el, req)
}

// completeDialog fills the confirmation dialog: duration first, then the
// agreement checkbox. A duration that cannot be selected degrades to the
// fallback label rather than aborting the attempt; a missing checkbox or
// label is a hard confirmation failure.
func (s *Session) completeDialog(ctx context.Context, dlg *rod.Element, req Request) error {
	label := durationLabel(req.DurationMinutes)
	if err := selectDuration(dlg, label); err != nil {
		log.Printf("booking: duration %q not selectable (%v), degrading to %q", label, err, fallbackDurationLabel)
		if err := selectDuration(dlg, fallbackDurationLabel); err != nil {
			log.Printf("booking: fallback duration not selectable either, leaving the portal default: %v", err)
		}
	}

	box, err := dlg.Timeout(elementTimeout).Element(agreementBoxSelector)
	if err != nil {
		return fmt.Errorf("confirmation dialog: agreement checkbox not found: %w", err)
	}
	checked, err := isChecked(box)
	if err != nil {
		return fmt.Errorf("confirmation dialog: read agreement state: %w", err)
	}
	if !checked {
		// The input's own click target is covered by its label in this UI, so
		// the label is what gets clicked.
		lab, err := dlg.Timeout(elementTimeout).Element(agreementLabelSelector)
		if err != nil {
			return fmt.Errorf("confirmation dialog: agreement label not found: %w", err)
		}
		if err := lab.Click(proto.InputMouseButtonLeft, 1); err != nil {
			return fmt.Errorf("confirmation dialog: toggle agreement: %w", err)
		}
	}
	return nil
}

func selectDuration(dlg *rod.Element, label string) error {
	sel, err := dlg.Timeout(shortTimeout).Element(durationSelectSelector)
	if err != nil {
		return err
	}
	return sel.Select([]string{label}, true, rod.SelectorTypeText)
}

// rodSaveDriver is the live implementation of saveDriver: it races page
// navigation, the success marker, and the error dialog against a shared wait
// bound, first settled wins, losers cancelled via the context.
type rodSaveDriver struct {
	page       *rod.Page
	signalWait time.Duration
}

func (d *rodSaveDriver) ClickSave(ctx context.Context) error {
	el, err := d.page.Context(ctx).Timeout(elementTimeout).Element(saveButtonSelector)
	if err != nil {
		return fmt.Errorf("save control not found: %w", err)
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

func (d *rodSaveDriver) AwaitSignal(ctx context.Context) (saveSignal, string) {
	ctx, cancel := context.WithTimeout(ctx, d.signalWait)
	defer cancel()

	type signal struct {
		kind   saveSignal
		detail string
	}
	ch := make(chan signal, 3)
	page := d.page.Context(ctx)

	go func() {
		wait := page.WaitNavigation(proto.PageLifecycleEventNameNetworkAlmostIdle)
		wait()
		if ctx.Err() == nil {
			ch <- signal{kind: saveSignalNavigated}
		}
	}()
	go func() {
		if _, err := page.Element(successMarkerSelector); err == nil {
			ch <- signal{kind: saveSignalSuccess}
		}
	}()
	go func() {
		el, err := page.Element(errorDialogSelector)
		if err != nil {
			return
		}
		text, _ := el.Text()
		ch <- signal{kind: saveSignalErrorDialog, detail: strings.TrimSpace(text)}
	}()

	select {
	case sig := <-ch:
		return sig.kind, sig.detail
	case <-ctx.Done():
		return saveSignalTimeout, ""
	}
}

func (d *rodSaveDriver) DismissErrorDialog(ctx context.Context) error {
	el, err := d.page.Context(ctx).Timeout(shortTimeout).Element(errorConfirmSelector)
	if err != nil {
		return errDismissMissing
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click error dialog confirm: %w", err)
	}
	// Give the modal a beat to leave the DOM before the next save click.
	sleepCtx(ctx, 500*time.Millisecond)
	return nil
}
