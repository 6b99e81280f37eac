package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leoninela2025/tennis-bot/internal/auth"
	"github.com/leoninela2025/tennis-bot/internal/booking"
	"github.com/leoninela2025/tennis-bot/internal/config"
	"github.com/leoninela2025/tennis-bot/internal/crypto"
	"github.com/leoninela2025/tennis-bot/internal/db"
	"github.com/leoninela2025/tennis-bot/internal/jobs"
	"github.com/leoninela2025/tennis-bot/internal/migrate"
	"github.com/leoninela2025/tennis-bot/internal/notify"
	"github.com/leoninela2025/tennis-bot/internal/scheduler"
	"github.com/leoninela2025/tennis-bot/internal/web"
)

func newServerCmd() *cobra.Command {
	var migrateUp bool

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Run the web UI + scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			if err := cfg.RequireWebKeys(); err != nil {
				return err
			}
			if err := cfg.RequireCredKey(); err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			d, err := db.Open(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer d.Close()

			if err := d.Ping(ctx); err != nil {
				return fmt.Errorf("db ping: %w", err)
			}

			if migrateUp {
				if err := migrate.Up(ctx, d); err != nil {
					return err
				}
			}

			aead, err := crypto.New(cfg.CredEncKey)
			if err != nil {
				return err
			}

			authStore := auth.NewStore(d, cfg.CookieHashKey, cfg.CookieBlockKey)
			jobRepo := jobs.NewRepo(d)
			credStore := jobs.NewCredStore(d, aead)

			// scheduler
			s := &scheduler.Scheduler{
				Repo:        jobRepo,
				Creds:       credStore,
				Portal:      booking.Config{BaseURL: cfg.PortalBaseURL, Headless: cfg.Headless},
				Notifier:    buildNotifier(cfg),
				Interval:    cfg.PollInterval,
				MaxSessions: cfg.MaxSessions,
			}
			go func() { _ = s.Run(ctx) }()

			// web
			ws := &web.Server{Auth: authStore, Jobs: jobRepo, BaseURL: cfg.BaseURL}
			return web.Start(ctx, cfg.ListenAddr, ws.Routes())
		},
	}

	cmd.Flags().BoolVar(&migrateUp, "migrate", true, "run database migrations on startup")

	cmd.Flags().Lookup("migrate").NoOptDefVal = "true"
	return cmd
}

// buildNotifier wires Telegram when configured, with log output always on.
func buildNotifier(cfg config.Config) notify.Notifier {
	n := notify.Multi{notify.LogNotifier{}}
	if cfg.TelegramToken != "" && cfg.TelegramChatID != 0 {
		tg, err := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Printf("telegram notifier disabled: %v", err)
		} else {
			n = append(n, tg)
		}
	}
	return n
}
