package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/leoninela2025/tennis-bot/internal/booking"
	"github.com/leoninela2025/tennis-bot/internal/jobs"
	"github.com/leoninela2025/tennis-bot/internal/notify"
)

// Scheduler polls for due jobs and runs one browser booking session per
// attempt. Browser sessions are capped by a weighted semaphore: headless
// Chrome is heavy, and the portal gets suspicious of parallel logins.
type Scheduler struct {
	Repo     *jobs.Repo
	Creds    *jobs.CredStore
	Portal   booking.Config
	Notifier notify.Notifier
	Interval time.Duration

	// MaxSessions bounds concurrently running browsers; 1 is the sane default.
	MaxSessions int64

	sem *semaphore.Weighted
	wg  sync.WaitGroup
}

func (s *Scheduler) Run(ctx context.Context) error {
	if s.MaxSessions < 1 {
		s.MaxSessions = 1
	}
	s.sem = semaphore.NewWeighted(s.MaxSessions)

	t := time.NewTicker(s.Interval)
	defer t.Stop()

	// kick immediately
	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			return ctx.Err()
		case <-t.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	js, err := s.Repo.DueJobs(ctx, 25)
	if err != nil {
		log.Printf("scheduler: due jobs query failed: %v", err)
		return
	}

	now := time.Now()
	for _, j := range js {
		if j.NextAttemptAt(now).After(now) {
			continue
		}
		if !s.sem.TryAcquire(1) {
			// Browser capacity is full; the job stays due for the next tick.
			return
		}

		j := j
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.sem.Release(1)
			s.runJobAttempt(ctx, j)
		}()
	}
}

func (s *Scheduler) runJobAttempt(ctx context.Context, j jobs.Job) {
	attemptID := uuid.NewString()
	log.Printf("scheduler: job %d (%s) attempt %s", j.ID, j.Name, attemptID)

	out, booked := s.attemptBooking(ctx, j)
	if err := s.Repo.MarkAttempt(ctx, j.ID, attemptID, out.Kind.String(), out.Detail, booked); err != nil {
		log.Printf("scheduler: record attempt for job %d: %v", j.ID, err)
	}
	if booked {
		return
	}

	if time.Now().After(j.WindowEndAt) {
		msg := "attempt window ended without success"
		_ = s.Repo.SetStatus(ctx, j.ID, jobs.StatusFailed, &msg)
	}
}

func (s *Scheduler) attemptBooking(ctx context.Context, j jobs.Job) (booking.Outcome, bool) {
	email, password, err := s.Creds.Get(ctx, j.Facility)
	if err != nil {
		out := booking.Outcome{
			Kind:   booking.OutcomeUnexpectedError,
			Detail: fmt.Sprintf("no portal credentials for %s: %v", j.Facility, err),
			At:     time.Now(),
		}
		if s.Notifier != nil {
			title, msg := out.Notification(s.request(j))
			if nerr := s.Notifier.Notify(ctx, title, msg); nerr != nil {
				log.Printf("scheduler: notify: %v", nerr)
			}
		}
		return out, false
	}

	sess := booking.NewSession(s.Portal, booking.Credentials{Email: email, Password: password}, s.Notifier)
	defer sess.Close()

	if err := sess.Initialize(ctx); err != nil {
		log.Printf("scheduler: job %d: %v", j.ID, err)
		return booking.Outcome{Kind: booking.OutcomeUnexpectedError, Detail: err.Error(), At: time.Now()}, false
	}

	booked, out, err := sess.BookCourt(ctx, s.request(j))
	if err != nil {
		log.Printf("scheduler: job %d: %v", j.ID, err)
		return booking.Outcome{Kind: booking.OutcomeUnexpectedError, Detail: err.Error(), At: time.Now()}, false
	}
	return out, booked
}

func (s *Scheduler) request(j jobs.Job) booking.Request {
	return booking.Request{
		Facility:        j.Facility,
		Court:           j.Court,
		Date:            j.PlayDate,
		StartTime:       j.StartTime,
		DurationMinutes: j.DurationMinutes,
	}
}
