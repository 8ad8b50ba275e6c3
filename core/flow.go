package core

import (
	"context"
	"errors"
	"strings"
	"time"
)

// FlowState is the caller-visible position in the verification state machine.
type FlowState string

const (
	// StateAwaitingNumber means no number could be resolved; the caller must
	// collect one and submit it.
	StateAwaitingNumber FlowState = "awaiting_number"
	// StateTokenSent means a one-time token is outstanding for this attempt.
	StateTokenSent FlowState = "token_sent"
	// StateVerified is terminal: the account is two-factor-authenticated.
	StateVerified FlowState = "verified"
)

// Reason codes attached to a FlowResult when a step could not advance.
const (
	ReasonNoNumber       = "no_number_available"
	ReasonDeliveryFailed = "delivery_failed"
	ReasonInvalidToken   = "invalid_token"
	ReasonExpiredToken   = "expired_token"
	ReasonAttemptExpired = "attempt_expired"
)

// FlowResult is returned by every flow operation: the new state plus whatever
// the caller needs for its next action.
type FlowResult struct {
	State     FlowState
	Reason    string
	AttemptID string
	// PhoneHint is the resolved but not yet confirmed number, for prefill.
	PhoneHint string
	// Credential is the device-trust credential to persist with the caller;
	// set only when State is StateVerified via a token exchange.
	Credential string
	// AlreadyAuthenticated marks a pass-through: verification was satisfied
	// by the session or a device-trust credential, with no token exchange.
	AlreadyAuthenticated bool
}

// BeginFlow starts (or re-enters) the verification flow for an account.
//
// A session that already completed verification, or a valid device-trust
// credential for this account, short-circuits to StateVerified without any
// token exchange. Otherwise the challenge number is resolved: a returning
// account with a resolved number goes straight to token issuance; anything
// else surfaces StateAwaitingNumber.
func (s *Service) BeginFlow(ctx context.Context, accountID, credential string) (*FlowResult, error) {
	a, err := s.readAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if attemptID, ok := s.sessionVerified(ctx, accountID); ok {
		return &FlowResult{State: StateVerified, AttemptID: attemptID, AlreadyAuthenticated: true}, nil
	}

	if credential != "" {
		if tc, err := s.ValidateTrustCredential(credential); err == nil && tc.AccountID == a.ID {
			phone := tc.Phone
			a.DeviceTrustedPhoneNumber = &phone
			if err := s.writeAccount(ctx, a); err != nil {
				return nil, err
			}
			attemptID := newAttemptID()
			s.markSessionVerified(ctx, accountID, attemptID)
			return &FlowResult{State: StateVerified, AttemptID: attemptID, AlreadyAuthenticated: true}, nil
		}
		// Invalid or stale credentials fall back to the normal challenge.
	}

	attemptID := newAttemptID()
	phone, resolved := ResolveChallengePhone(a)
	if resolved && a.TwoFactorEnabled {
		if err := s.IssueToken(ctx, a, phone); err != nil {
			if errors.Is(err, ErrDeliveryFailed) {
				return &FlowResult{State: StateAwaitingNumber, Reason: ReasonDeliveryFailed, AttemptID: attemptID, PhoneHint: phone}, nil
			}
			return nil, err
		}
		if err := s.storeChallenge(ctx, accountID, challengeData{AttemptID: attemptID, Phone: phone}); err != nil {
			return nil, err
		}
		return &FlowResult{State: StateTokenSent, AttemptID: attemptID, PhoneHint: phone}, nil
	}

	return &FlowResult{State: StateAwaitingNumber, AttemptID: attemptID, PhoneHint: phone}, nil
}

// SubmitPhoneNumber issues a token against a number the requester entered.
// On delivery failure the flow stays in StateAwaitingNumber so the caller can
// correct the number or retry.
func (s *Service) SubmitPhoneNumber(ctx context.Context, accountID, phone string) (*FlowResult, error) {
	a, err := s.readAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if attemptID, ok := s.sessionVerified(ctx, accountID); ok {
		return &FlowResult{State: StateVerified, AttemptID: attemptID, AlreadyAuthenticated: true}, nil
	}

	attemptID := newAttemptID()
	if ch, ok, _ := s.loadChallenge(ctx, accountID); ok && ch.AttemptID != "" {
		attemptID = ch.AttemptID
	}

	phone = strings.TrimSpace(phone)
	if phone == "" {
		return &FlowResult{State: StateAwaitingNumber, Reason: ReasonNoNumber, AttemptID: attemptID}, nil
	}

	if err := s.IssueToken(ctx, a, phone); err != nil {
		if errors.Is(err, ErrDeliveryFailed) {
			return &FlowResult{State: StateAwaitingNumber, Reason: ReasonDeliveryFailed, AttemptID: attemptID, PhoneHint: phone}, nil
		}
		return nil, err
	}
	if err := s.storeChallenge(ctx, accountID, challengeData{AttemptID: attemptID, Phone: phone}); err != nil {
		return nil, err
	}
	return &FlowResult{State: StateTokenSent, AttemptID: attemptID, PhoneHint: phone}, nil
}

// ResendToken reissues a one-time token for the current attempt, superseding
// the outstanding one. Without a live attempt it falls back to the resolved
// number, and without that the caller is sent back to number entry.
func (s *Service) ResendToken(ctx context.Context, accountID string) (*FlowResult, error) {
	a, err := s.readAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if attemptID, ok := s.sessionVerified(ctx, accountID); ok {
		return &FlowResult{State: StateVerified, AttemptID: attemptID, AlreadyAuthenticated: true}, nil
	}

	attemptID := newAttemptID()
	var phone string
	if ch, ok, _ := s.loadChallenge(ctx, accountID); ok && ch.Phone != "" {
		attemptID = ch.AttemptID
		phone = ch.Phone
	} else if p, resolved := ResolveChallengePhone(a); resolved {
		phone = p
	} else {
		return &FlowResult{State: StateAwaitingNumber, Reason: ReasonNoNumber, AttemptID: attemptID}, nil
	}

	if err := s.IssueToken(ctx, a, phone); err != nil {
		if errors.Is(err, ErrDeliveryFailed) {
			return &FlowResult{State: StateAwaitingNumber, Reason: ReasonDeliveryFailed, AttemptID: attemptID, PhoneHint: phone}, nil
		}
		return nil, err
	}
	if err := s.storeChallenge(ctx, accountID, challengeData{AttemptID: attemptID, Phone: phone}); err != nil {
		return nil, err
	}
	return &FlowResult{State: StateTokenSent, AttemptID: attemptID, PhoneHint: phone}, nil
}

// SubmitToken verifies a presented token for the current attempt. Success is
// terminal: the session is marked verified and a device-trust credential
// bound to the challenged number is returned for the caller to persist.
func (s *Service) SubmitToken(ctx context.Context, accountID, presented string) (*FlowResult, error) {
	a, err := s.readAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if attemptID, ok := s.sessionVerified(ctx, accountID); ok {
		return &FlowResult{State: StateVerified, AttemptID: attemptID, AlreadyAuthenticated: true}, nil
	}

	ch, ok, err := s.loadChallenge(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !ok {
		// The attempt-scoped challenge is gone (TTL or abandonment); the
		// caller has to restart from number resolution.
		return &FlowResult{State: StateAwaitingNumber, Reason: ReasonAttemptExpired}, nil
	}

	result, err := s.VerifyToken(ctx, a, presented, ch.Phone, time.Now())
	if err != nil {
		return nil, err
	}
	switch result {
	case VerifyInvalid:
		return &FlowResult{State: StateTokenSent, Reason: ReasonInvalidToken, AttemptID: ch.AttemptID}, nil
	case VerifyExpired:
		return &FlowResult{State: StateTokenSent, Reason: ReasonExpiredToken, AttemptID: ch.AttemptID}, nil
	}

	credential, err := s.IssueTrustCredential(a.ID, ch.Phone)
	if err != nil {
		return nil, err
	}
	s.clearChallenge(ctx, accountID)
	s.markSessionVerified(ctx, accountID, ch.AttemptID)
	return &FlowResult{State: StateVerified, AttemptID: ch.AttemptID, Credential: credential}, nil
}
