package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leoninela2025/tennis-bot/internal/config"
	"github.com/leoninela2025/tennis-bot/internal/crypto"
	"github.com/leoninela2025/tennis-bot/internal/db"
	"github.com/leoninela2025/tennis-bot/internal/jobs"
	"github.com/leoninela2025/tennis-bot/internal/migrate"
)

func newCredsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "creds",
		Short: "Manage portal login credentials (encrypted at rest)",
	}
	cmd.AddCommand(newCredsSetCmd())
	return cmd
}

func newCredsSetCmd() *cobra.Command {
	var facility, email, password string

	c := &cobra.Command{
		Use:   "set",
		Short: "Store the portal email/password for a facility",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			if err := cfg.RequireCredKey(); err != nil {
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

			aead, err := crypto.New(cfg.CredEncKey)
			if err != nil {
				return err
			}
			store := jobs.NewCredStore(d, aead)
			if err := store.Set(ctx, facility, email, password); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "stored credentials for facility %q\n", facility)
			return nil
		},
	}

	c.Flags().StringVar(&facility, "facility", "", "facility identifier used by jobs")
	c.Flags().StringVar(&email, "email", "", "portal login email")
	c.Flags().StringVar(&password, "password", "", "portal login password")
	_ = c.MarkFlagRequired("facility")
	_ = c.MarkFlagRequired("email")
	_ = c.MarkFlagRequired("password")
	return c
}
