package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/leoninela2025/tennis-bot/internal/config"
	"github.com/leoninela2025/tennis-bot/internal/storage"
	"github.com/leoninela2025/tennis-bot/internal/watch"
)

func newWatchCmd() *cobra.Command {
	var (
		facilities []string
		daysAhead  int
		intervalS  int
	)

	c := &cobra.Command{
		Use:   "watch",
		Short: "Watch facility schedules and announce newly opened slots",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			store := storage.New(cfg.RedisAddr, cfg.RedisPassword)
			defer store.Close()
			if err := store.Ping(ctx); err != nil {
				return fmt.Errorf("redis: %w", err)
			}

			w := watch.New(cfg.PortalBaseURL, facilities, store, buildNotifier(cfg))
			w.DaysAhead = daysAhead
			w.Interval = time.Duration(intervalS) * time.Second

			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	c.Flags().StringSliceVar(&facilities, "facility", nil, "facility identifier (repeatable)")
	c.Flags().IntVar(&daysAhead, "days-ahead", 7, "how many days of schedule to poll")
	c.Flags().IntVar(&intervalS, "interval-seconds", 120, "poll interval in seconds")
	_ = c.MarkFlagRequired("facility")
	return c
}
