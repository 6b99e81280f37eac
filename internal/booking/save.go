package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// saveSignal is the first thing observed after clicking save.
type saveSignal int

const (
	saveSignalTimeout saveSignal = iota
	saveSignalNavigated
	saveSignalSuccess
	saveSignalErrorDialog
)

// maxSaveAttempts bounds the retry loop around the portal's save action.
const maxSaveAttempts = 3

// errDismissMissing aborts the retry loop: an error dialog is on screen but
// its confirm control cannot be located, so further save clicks would land on
// glass.
var errDismissMissing = errors.New("error dialog confirm control not found")

// saveDriver abstracts the browser interactions of the save step so the retry
// loop can be exercised without a browser.
type saveDriver interface {
	// ClickSave presses the dialog's save control.
	ClickSave(ctx context.Context) error
	// AwaitSignal waits, bounded, for the first of: navigation, a success
	// marker, an error dialog (returned with its text), or nothing.
	AwaitSignal(ctx context.Context) (saveSignal, string)
	// DismissErrorDialog confirms away the portal's error dialog. It returns
	// errDismissMissing when the confirm control is absent.
	DismissErrorDialog(ctx context.Context) error
}

type saveResult struct {
	Succeeded bool
	Attempts  int
	LastError string // text of the last error dialog, if any
}

// runSaveLoop drives save attempts until one succeeds, the attempts are
// exhausted, or the error dialog gets stuck. A non-nil error means the browser
// interaction itself broke, which the caller maps to an unexpected-error
// outcome.
func runSaveLoop(ctx context.Context, d saveDriver, maxAttempts int, retryDelay time.Duration) (saveResult, error) {
	var res saveResult
	for res.Attempts < maxAttempts {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Attempts++

		if err := d.ClickSave(ctx); err != nil {
			return res, fmt.Errorf("click save: %w", err)
		}

		sig, detail := d.AwaitSignal(ctx)
		switch sig {
		case saveSignalNavigated, saveSignalSuccess:
			res.Succeeded = true
			return res, nil
		case saveSignalErrorDialog:
			res.LastError = detail
			log.Printf("booking: save attempt %d/%d rejected by portal: %s", res.Attempts, maxAttempts, detail)
			if err := d.DismissErrorDialog(ctx); err != nil {
				if errors.Is(err, errDismissMissing) {
					log.Printf("booking: %v, abandoning remaining save attempts", err)
					return res, nil
				}
				return res, fmt.Errorf("dismiss error dialog: %w", err)
			}
			sleepCtx(ctx, retryDelay)
		case saveSignalTimeout:
			log.Printf("booking: save attempt %d/%d settled nothing within the wait bound", res.Attempts, maxAttempts)
		}
	}
	return res, nil
}

func (r saveResult) failureDetail() string {
	if r.LastError != "" {
		return r.LastError
	}
	return fmt.Sprintf("no success signal after %d save attempts", r.Attempts)
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
