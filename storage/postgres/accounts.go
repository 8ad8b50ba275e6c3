package pgstore

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/KenTanaka/smskit/core"
)

// Accounts is a pgx-backed core.AccountStore. Writes land as one upsert, so
// the pending token and its expiry are always stored or cleared together; a
// CHECK constraint backs that invariant at the schema level.
type Accounts struct {
	pg *pgxpool.Pool
}

func New(pg *pgxpool.Pool) *Accounts { return &Accounts{pg: pg} }

// EnsureSchema creates the smskit schema and accounts table if missing.
func (s *Accounts) EnsureSchema(ctx context.Context) error {
	_, err := s.pg.Exec(ctx, `
        CREATE SCHEMA IF NOT EXISTS smskit;
        CREATE TABLE IF NOT EXISTS smskit.accounts (
            id                          TEXT PRIMARY KEY,
            two_factor_enabled          BOOLEAN NOT NULL DEFAULT FALSE,
            trusted_phone_number        TEXT,
            device_trusted_phone_number TEXT,
            pending_token               TEXT,
            pending_token_expires_at    TIMESTAMPTZ,
            created_at                  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at                  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            CONSTRAINT accounts_pending_pair
                CHECK ((pending_token IS NULL) = (pending_token_expires_at IS NULL))
        )`)
	return err
}

func (s *Accounts) Read(ctx context.Context, id string) (*core.Account, error) {
	row := s.pg.QueryRow(ctx, `
        SELECT id, two_factor_enabled, trusted_phone_number, device_trusted_phone_number,
               pending_token, pending_token_expires_at
        FROM smskit.accounts WHERE id=$1`, id)
	var a core.Account
	err := row.Scan(&a.ID, &a.TwoFactorEnabled, &a.TrustedPhoneNumber, &a.DeviceTrustedPhoneNumber,
		&a.PendingToken, &a.PendingTokenExpiry)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Accounts) Write(ctx context.Context, a *core.Account) error {
	_, err := s.pg.Exec(ctx, `
        INSERT INTO smskit.accounts
            (id, two_factor_enabled, trusted_phone_number, device_trusted_phone_number,
             pending_token, pending_token_expires_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,NOW())
        ON CONFLICT (id) DO UPDATE SET
            two_factor_enabled          = EXCLUDED.two_factor_enabled,
            trusted_phone_number        = EXCLUDED.trusted_phone_number,
            device_trusted_phone_number = EXCLUDED.device_trusted_phone_number,
            pending_token               = EXCLUDED.pending_token,
            pending_token_expires_at    = EXCLUDED.pending_token_expires_at,
            updated_at                  = NOW()`,
		a.ID, a.TwoFactorEnabled, a.TrustedPhoneNumber, a.DeviceTrustedPhoneNumber,
		a.PendingToken, a.PendingTokenExpiry)
	return err
}
