package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/leoninela2025/tennis-bot/internal/db"
)

// Job is one standing instruction to book a court: which facility, which day
// and time, and the window during which the scheduler should keep trying.
type Job struct {
	ID   int64
	Name string

	Facility        string
	Court           string
	PlayDate        time.Time
	StartTime       string // portal display wording, e.g. "8:30 AM"; empty = next playable
	DurationMinutes int
	Timezone        string

	WindowStartAt time.Time
	WindowEndAt   time.Time
	IntervalSec   int

	Status        string
	LastAttemptAt *time.Time
	BookedAt      *time.Time
	LastError     *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

const (
	StatusActive = "active"
	StatusBooked = "booked"
	StatusFailed = "failed"
)

func (j Job) Validate() error {
	if j.Name == "" {
		return fmt.Errorf("name required")
	}
	if j.Facility == "" {
		return fmt.Errorf("facility required")
	}
	if j.PlayDate.IsZero() {
		return fmt.Errorf("play_date required")
	}
	if j.DurationMinutes < 30 {
		return fmt.Errorf("duration_minutes must be >= 30")
	}
	if !j.WindowEndAt.After(j.WindowStartAt) {
		return fmt.Errorf("window_end_at must be after window_start_at")
	}
	if j.IntervalSec < 1 {
		return fmt.Errorf("interval_seconds must be >= 1")
	}
	return nil
}

// NextAttemptAt is when the scheduler may try this job again.
func (j Job) NextAttemptAt(now time.Time) time.Time {
	if j.LastAttemptAt == nil {
		return j.WindowStartAt
	}
	return j.LastAttemptAt.Add(time.Duration(j.IntervalSec) * time.Second)
}

// Window computes the attempt window for a job from the portal's booking
// release rule: slots for playDate open daysOut days earlier at releaseTime
// local time; attempts start leadMinutes before that and run for
// windowMinutes after.
func Window(playDate time.Time, daysOut int, releaseTime string, leadMinutes, windowMinutes int, loc *time.Location) (start, end time.Time, err error) {
	if releaseTime == "" {
		releaseTime = "00:00"
	}
	openDate := playDate.AddDate(0, 0, -daysOut)
	openAt, err := time.ParseInLocation("2006-01-02 15:04", openDate.Format("2006-01-02")+" "+releaseTime, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid release time (want HH:MM): %w", err)
	}
	start = openAt.Add(-time.Duration(leadMinutes) * time.Minute).UTC()
	end = openAt.Add(time.Duration(windowMinutes) * time.Minute).UTC()
	return start, end, nil
}

type Repo struct{ db *db.DB }

func NewRepo(d *db.DB) *Repo { return &Repo{db: d} }

const jobColumns = `id,name,facility,court,play_date,start_time,duration_minutes,timezone,window_start_at,window_end_at,interval_seconds,status,last_attempt_at,booked_at,last_error,created_at,updated_at`

func (r *Repo) Create(ctx context.Context, j Job) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
INSERT INTO jobs(name,facility,court,play_date,start_time,duration_minutes,timezone,window_start_at,window_end_at,interval_seconds,status)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,'active')
RETURNING id`,
		j.Name, j.Facility, j.Court, j.PlayDate, j.StartTime, j.DurationMinutes, j.Timezone,
		j.WindowStartAt, j.WindowEndAt, j.IntervalSec,
	).Scan(&id)
	return id, db.WrapNotFound(err)
}

func (r *Repo) List(ctx context.Context) ([]Job, error) {
	rows, err := r.db.Query(ctx, `SELECT `+jobColumns+` FROM jobs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanJobs(rows)
}

func (r *Repo) Get(ctx context.Context, id int64) (Job, error) {
	j, err := scanJob(r.db.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id=$1`, id))
	if err != nil {
		return Job{}, db.WrapNotFound(err)
	}
	return j, nil
}

// DueJobs returns active jobs whose attempt window contains now.
func (r *Repo) DueJobs(ctx context.Context, limit int) ([]Job, error) {
	rows, err := r.db.Query(ctx, `
SELECT `+jobColumns+`
FROM jobs
WHERE status='active'
  AND now() >= window_start_at
  AND now() <= window_end_at
ORDER BY window_start_at ASC
LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanJobs(rows)
}

func (r *Repo) SetStatus(ctx context.Context, jobID int64, status string, lastErr *string) error {
	return r.db.Exec(ctx, `UPDATE jobs SET status=$2, last_error=$3, updated_at=now() WHERE id=$1`, jobID, status, lastErr)
}

// MarkAttempt records one booking attempt and rolls the job state forward in
// the same transaction, so the attempt log never disagrees with the job row.
func (r *Repo) MarkAttempt(ctx context.Context, jobID int64, attemptID string, outcome string, detail string, booked bool) error {
	return r.db.InTx(ctx, func(q db.Querier) error {
		if err := q.Exec(ctx, `INSERT INTO job_attempts(id, job_id, outcome, detail) VALUES ($1,$2,$3,$4)`,
			attemptID, jobID, outcome, detail); err != nil {
			return err
		}
		if booked {
			return q.Exec(ctx, `UPDATE jobs SET last_attempt_at=now(), booked_at=now(), status='booked', last_error=NULL, updated_at=now() WHERE id=$1`, jobID)
		}
		return q.Exec(ctx, `UPDATE jobs SET last_attempt_at=now(), last_error=$2, updated_at=now() WHERE id=$1`, jobID, detail)
	})
}

// RunNow reopens a job's window starting immediately; used by the web UI's
// manual trigger.
func (r *Repo) RunNow(ctx context.Context, jobID int64) error {
	n, err := r.db.ExecRows(ctx, `
UPDATE jobs
SET status='active',
    window_start_at=now(),
    window_end_at=GREATEST(window_end_at, now() + interval '15 minutes'),
    last_attempt_at=NULL,
    updated_at=now()
WHERE id=$1`, jobID)
	if err != nil {
		return err
	}
	if n == 0 {
		return db.ErrNotFound
	}
	return nil
}

// Attempt is one row of the per-job attempt log.
type Attempt struct {
	ID          string
	JobID       int64
	Outcome     string
	Detail      string
	AttemptedAt time.Time
}

func (r *Repo) RecentAttempts(ctx context.Context, jobID int64, limit int) ([]Attempt, error) {
	rows, err := r.db.Query(ctx, `
SELECT id, job_id, outcome, detail, attempted_at
FROM job_attempts
WHERE job_id=$1
ORDER BY attempted_at DESC
LIMIT $2`, jobID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Attempt
	for rows.Next() {
		var a Attempt
		if err := rows.Scan(&a.ID, &a.JobID, &a.Outcome, &a.Detail, &a.AttemptedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanJob(row db.Row) (Job, error) {
	var j Job
	err := row.Scan(
		&j.ID, &j.Name, &j.Facility, &j.Court, &j.PlayDate, &j.StartTime, &j.DurationMinutes, &j.Timezone,
		&j.WindowStartAt, &j.WindowEndAt, &j.IntervalSec, &j.Status,
		&j.LastAttemptAt, &j.BookedAt, &j.LastError, &j.CreatedAt, &j.UpdatedAt,
	)
	return j, err
}

func scanJobs(rows db.Rows) ([]Job, error) {
	var out []Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}
