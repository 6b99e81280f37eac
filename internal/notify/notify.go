package notify

import (
	"context"
	"log"
)

// Notifier delivers a human-readable message about a booking or availability
// event. Delivery failures are the implementation's problem to report; callers
// treat Notify as fire-and-forget.
type Notifier interface {
	Notify(ctx context.Context, title, message string) error
}

// LogNotifier writes notifications to the process log. It is the default when
// no Telegram target is configured.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, title, message string) error {
	log.Printf("notify: %s\n%s", title, message)
	return nil
}

// Multi fans a notification out to several notifiers, keeping going past
// individual failures.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, title, message string) error {
	var last error
	for _, n := range m {
		if err := n.Notify(ctx, title, message); err != nil {
			log.Printf("notify: %v", err)
			last = err
		}
	}
	return last
}
