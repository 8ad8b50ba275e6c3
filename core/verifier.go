package core

import (
	"context"
	"time"
)

// VerifyResult classifies the outcome of a token verification.
type VerifyResult string

const (
	VerifySuccess VerifyResult = "success"
	VerifyInvalid VerifyResult = "invalid"
	VerifyExpired VerifyResult = "expired"
)

// VerifyToken checks a presented token against the account's pending pair.
//
// invalid: no exact match, or nothing pending. expired: match, but now is at
// or past the bound expiry. success consumes the token, flips
// TwoFactorEnabled, and persists challengedPhone as the authoritative number;
// a second call with the same token is invalid.
//
// The comparison runs unconditionally so "wrong token" and "no token pending"
// are indistinguishable to an outside observer.
func (s *Service) VerifyToken(ctx context.Context, a *Account, presented, challengedPhone string, now time.Time) (VerifyResult, error) {
	match := tokenEqual(presented, deref(a.PendingToken))
	if !match || a.PendingToken == nil || a.PendingTokenExpiry == nil {
		return VerifyInvalid, nil
	}
	if !now.Before(*a.PendingTokenExpiry) {
		return VerifyExpired, nil
	}

	a.clearPendingToken()
	a.TwoFactorEnabled = true
	if challengedPhone != "" {
		phone := challengedPhone
		a.TrustedPhoneNumber = &phone
	}
	if err := s.writeAccount(ctx, a); err != nil {
		return VerifyInvalid, err
	}
	return VerifySuccess, nil
}
