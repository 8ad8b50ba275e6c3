package core

import (
	"context"
	"time"
)

// Account is the slice of the customer record the verification flow reads and
// writes. Everything else about the account belongs to the host application.
//
// PendingToken and PendingTokenExpiry are set and cleared together: a reader
// must never observe one without the other.
type Account struct {
	ID                       string
	TwoFactorEnabled         bool
	TrustedPhoneNumber       *string
	DeviceTrustedPhoneNumber *string
	PendingToken             *string
	PendingTokenExpiry       *time.Time
}

// AccountStore persists accounts. Read returns ErrAccountNotFound for unknown
// ids. Write persists the whole record; concurrent writers may race (last
// writer wins) but the pending pair must land atomically, never half-written.
type AccountStore interface {
	Read(ctx context.Context, id string) (*Account, error)
	Write(ctx context.Context, a *Account) error
}

func (a *Account) setPendingToken(token string, expiry time.Time) {
	a.PendingToken = &token
	a.PendingTokenExpiry = &expiry
}

func (a *Account) clearPendingToken() {
	a.PendingToken = nil
	a.PendingTokenExpiry = nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
