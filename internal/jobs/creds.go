package jobs

import (
	"context"
	"fmt"

	"github.com/leoninela2025/tennis-bot/internal/crypto"
	"github.com/leoninela2025/tennis-bot/internal/db"
)

// CredStore keeps one portal login per facility, password sealed with AEAD
// before it reaches the database.
type CredStore struct {
	db   *db.DB
	aead *crypto.AEAD
}

func NewCredStore(d *db.DB, a *crypto.AEAD) *CredStore {
	return &CredStore{db: d, aead: a}
}

func (s *CredStore) Set(ctx context.Context, facility, email, password string) error {
	enc, err := s.aead.EncryptToString(password)
	if err != nil {
		return fmt.Errorf("seal password: %w", err)
	}
	return s.db.Exec(ctx, `
INSERT INTO facility_credentials(facility, email, password_enc)
VALUES ($1,$2,$3)
ON CONFLICT (facility) DO UPDATE SET email=EXCLUDED.email, password_enc=EXCLUDED.password_enc, updated_at=now()`,
		facility, email, enc)
}

// Get returns the decrypted login for a facility.
func (s *CredStore) Get(ctx context.Context, facility string) (email, password string, err error) {
	var enc string
	err = s.db.QueryRow(ctx, `SELECT email, password_enc FROM facility_credentials WHERE facility=$1`, facility).
		Scan(&email, &enc)
	if err != nil {
		return "", "", db.WrapNotFound(err)
	}
	password, err = s.aead.DecryptString(enc)
	if err != nil {
		return "", "", fmt.Errorf("unseal password for %s: %w", facility, err)
	}
	return email, password, nil
}
