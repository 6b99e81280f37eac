package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/leoninela2025/tennis-bot/internal/booking"
	"github.com/leoninela2025/tennis-bot/internal/config"
)

func newBookCmd() *cobra.Command {
	var (
		facility  string
		court     string
		playDate  string
		startTime string
		duration  int
		email     string
		password  string
	)

	c := &cobra.Command{
		Use:   "book",
		Short: "Run a single booking attempt right now (no scheduler, no database)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}

			if email == "" {
				email = os.Getenv("PORTAL_EMAIL")
			}
			if password == "" {
				password = os.Getenv("PORTAL_PASSWORD")
			}
			if email == "" || password == "" {
				return fmt.Errorf("portal credentials required (--email/--password or PORTAL_EMAIL/PORTAL_PASSWORD)")
			}

			pd, err := time.Parse("2006-01-02", playDate)
			if err != nil {
				return fmt.Errorf("invalid --play-date (want YYYY-MM-DD)")
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			sess := booking.NewSession(
				booking.Config{BaseURL: cfg.PortalBaseURL, Headless: cfg.Headless},
				booking.Credentials{Email: email, Password: password},
				buildNotifier(cfg),
			)
			defer sess.Close()

			if err := sess.Initialize(ctx); err != nil {
				return err
			}

			booked, out, err := sess.BookCourt(ctx, booking.Request{
				Facility:        facility,
				Court:           court,
				Date:            pd,
				StartTime:       startTime,
				DurationMinutes: duration,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "booked=%v outcome=%s detail=%q\n", booked, out.Kind, out.Detail)
			if !booked {
				os.Exit(1)
			}
			return nil
		},
	}

	c.Flags().StringVar(&facility, "facility", "", "facility identifier")
	c.Flags().StringVar(&court, "court", "", "preferred court (optional)")
	c.Flags().StringVar(&playDate, "play-date", "", "play date YYYY-MM-DD")
	c.Flags().StringVar(&startTime, "start-time", "", `slot wording, e.g. "8:30 AM"; empty books the next playable slot`)
	c.Flags().IntVar(&duration, "duration-minutes", 60, "reservation length in minutes")
	c.Flags().StringVar(&email, "email", "", "portal login email")
	c.Flags().StringVar(&password, "password", "", "portal login password")

	_ = c.MarkFlagRequired("facility")
	_ = c.MarkFlagRequired("play-date")
	return c
}
