package booking

import (
	"context"
	"errors"
	"testing"
	"time"
)

// scriptedDriver replays a fixed sequence of save signals.
type scriptedDriver struct {
	signals    []saveSignal
	details    []string
	dismissErr error

	clicks    int
	dismissed int
}

func (d *scriptedDriver) ClickSave(context.Context) error {
	d.clicks++
	return nil
}

func (d *scriptedDriver) AwaitSignal(context.Context) (saveSignal, string) {
	i := d.clicks - 1
	if i >= len(d.signals) {
		return saveSignalTimeout, ""
	}
	var detail string
	if i < len(d.details) {
		detail = d.details[i]
	}
	return d.signals[i], detail
}

func (d *scriptedDriver) DismissErrorDialog(context.Context) error {
	d.dismissed++
	return d.dismissErr
}

func TestSaveLoopStopsOnFirstSuccess(t *testing.T) {
	d := &scriptedDriver{signals: []saveSignal{saveSignalSuccess}}
	res, err := runSaveLoop(context.Background(), d, maxSaveAttempts, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Succeeded || res.Attempts != 1 {
		t.Fatalf("expected success on attempt 1, got %+v", res)
	}
	if d.clicks != 1 {
		t.Fatalf("expected exactly one save click, got %d", d.clicks)
	}
}

func TestSaveLoopNavigationCountsAsSuccess(t *testing.T) {
	d := &scriptedDriver{signals: []saveSignal{saveSignalErrorDialog, saveSignalNavigated}, details: []string{"court already taken"}}
	res, err := runSaveLoop(context.Background(), d, maxSaveAttempts, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Succeeded || res.Attempts != 2 {
		t.Fatalf("expected success on attempt 2, got %+v", res)
	}
}

func TestSaveLoopExhaustsAfterThreeErrorDialogs(t *testing.T) {
	d := &scriptedDriver{
		signals: []saveSignal{saveSignalErrorDialog, saveSignalErrorDialog, saveSignalErrorDialog},
		details: []string{"slot conflict", "slot conflict", "court no longer available"},
	}
	res, err := runSaveLoop(context.Background(), d, maxSaveAttempts, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Succeeded {
		t.Fatal("expected failure")
	}
	if res.Attempts != 3 || d.clicks != 3 {
		t.Fatalf("expected exactly 3 attempts, got %+v (clicks=%d)", res, d.clicks)
	}
	if res.LastError != "court no longer available" {
		t.Fatalf("expected the last dialog text to survive, got %q", res.LastError)
	}
	if d.dismissed != 3 {
		t.Fatalf("expected the dialog dismissed each time, got %d", d.dismissed)
	}
}

func TestSaveLoopAbortsWhenDismissControlMissing(t *testing.T) {
	d := &scriptedDriver{
		signals:    []saveSignal{saveSignalErrorDialog, saveSignalErrorDialog},
		details:    []string{"maintenance window"},
		dismissErr: errDismissMissing,
	}
	res, err := runSaveLoop(context.Background(), d, maxSaveAttempts, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Succeeded {
		t.Fatal("expected failure")
	}
	if res.Attempts != 1 || d.clicks != 1 {
		t.Fatalf("expected the loop to stop after the stuck dialog, got %+v (clicks=%d)", res, d.clicks)
	}
}

func TestSaveLoopRetriesAfterTimeout(t *testing.T) {
	d := &scriptedDriver{signals: []saveSignal{saveSignalTimeout, saveSignalTimeout, saveSignalTimeout}}
	res, err := runSaveLoop(context.Background(), d, maxSaveAttempts, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Succeeded || res.Attempts != 3 {
		t.Fatalf("expected 3 inconclusive attempts, got %+v", res)
	}
	if res.LastError != "" {
		t.Fatalf("expected no captured dialog text, got %q", res.LastError)
	}
}

func TestSaveLoopHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := &scriptedDriver{signals: []saveSignal{saveSignalErrorDialog}}
	_, err := runSaveLoop(ctx, d, maxSaveAttempts, time.Millisecond)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if d.clicks != 0 {
		t.Fatalf("expected no save clicks after cancellation, got %d", d.clicks)
	}
}

func TestFailureDetailPrefersDialogText(t *testing.T) {
	r := saveResult{Attempts: 3, LastError: "court already taken"}
	if got := r.failureDetail(); got != "court already taken" {
		t.Fatalf("unexpected detail %q", got)
	}
	r.LastError = ""
	if got := r.failureDetail(); got != "no success signal after 3 save attempts" {
		t.Fatalf("unexpected generic detail %q", got)
	}
}
