package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/leoninela2025/tennis-bot/internal/config"
	"github.com/leoninela2025/tennis-bot/internal/db"
	"github.com/leoninela2025/tennis-bot/internal/jobs"
	"github.com/leoninela2025/tennis-bot/internal/migrate"
)

func newJobCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "job",
		Short: "Manage booking jobs (non-UI)",
	}
	cmd.AddCommand(newJobCreateCmd())
	cmd.AddCommand(newJobListCmd())
	return cmd
}

func newJobCreateCmd() *cobra.Command {
	var (
		name            string
		facility        string
		court           string
		playDate        string
		startTime       string
		duration        int
		timezone        string
		daysOut         int
		releaseTime     string
		leadMinutes     int
		windowMinutes   int
		intervalSeconds int
	)

	c := &cobra.Command{
		Use:   "create",
		Short: "Create a job that fires when the facility releases the slot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			ctx := context.Background()
			d, err := db.Open(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer d.Close()

			if err := migrate.Up(ctx, d); err != nil {
				return err
			}

			repo := jobs.NewRepo(d)

			pd, err := time.Parse("2006-01-02", playDate)
			if err != nil {
				return fmt.Errorf("invalid --play-date (want YYYY-MM-DD)")
			}

			loc, err := time.LoadLocation(timezone)
			if err != nil {
				return fmt.Errorf("invalid --timezone: %w", err)
			}

			windowStart, windowEnd, err := jobs.Window(pd, daysOut, releaseTime, leadMinutes, windowMinutes, loc)
			if err != nil {
				return err
			}

			j := jobs.Job{
				Name:            name,
				Facility:        facility,
				Court:           court,
				PlayDate:        pd,
				StartTime:       startTime,
				DurationMinutes: duration,
				Timezone:        timezone,
				WindowStartAt:   windowStart,
				WindowEndAt:     windowEnd,
				IntervalSec:     intervalSeconds,
			}
			if err := j.Validate(); err != nil {
				return err
			}

			id, err := repo.Create(ctx, j)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "created job id=%d window_start_utc=%s window_end_utc=%s\n",
				id, windowStart.Format(time.RFC3339), windowEnd.Format(time.RFC3339))
			return nil
		},
	}

	c.Flags().StringVar(&name, "name", "", "job name")
	c.Flags().StringVar(&facility, "facility", "", "facility identifier")
	c.Flags().StringVar(&court, "court", "", "preferred court (optional)")
	c.Flags().StringVar(&playDate, "play-date", "", "play date YYYY-MM-DD")
	c.Flags().StringVar(&startTime, "start-time", "", `slot wording as shown on the portal, e.g. "8:30 AM"; empty books the next playable slot`)
	c.Flags().IntVar(&duration, "duration-minutes", 60, "reservation length in minutes")
	c.Flags().StringVar(&timezone, "timezone", "Europe/Warsaw", "timezone used for window math")
	c.Flags().IntVar(&daysOut, "days-out", 7, "days in advance when slots open")
	c.Flags().StringVar(&releaseTime, "release-time", "07:00", "local release time HH:MM")
	c.Flags().IntVar(&leadMinutes, "lead-minutes", 1, "start attempts N minutes before release time")
	c.Flags().IntVar(&windowMinutes, "window-minutes", 30, "run attempts N minutes after release time")
	c.Flags().IntVar(&intervalSeconds, "interval-seconds", 30, "retry interval seconds")

	_ = c.MarkFlagRequired("name")
	_ = c.MarkFlagRequired("facility")
	_ = c.MarkFlagRequired("play-date")
	return c
}

func newJobListCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "list",
		Short: "List jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			ctx := context.Background()
			d, err := db.Open(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer d.Close()

			repo := jobs.NewRepo(d)
			js, err := repo.List(ctx)
			if err != nil {
				return err
			}
			for _, j := range js {
				start := j.StartTime
				if start == "" {
					start = "next playable"
				}
				fmt.Fprintf(os.Stdout, "id=%d name=%q facility=%s play=%s start=%q status=%s window=%s..%s\n",
					j.ID, j.Name, j.Facility, j.PlayDate.Format("2006-01-02"), start, j.Status,
					j.WindowStartAt.Format(time.RFC3339), j.WindowEndAt.Format(time.RFC3339))
			}
			return nil
		},
	}
	return c
}
