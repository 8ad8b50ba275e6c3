package core

import (
	"context"
	"fmt"
	stdlog "log"
	"strings"
	"time"
)

// IssueToken generates a fresh one-time token for the account, binds it
// durably, and hands the rendered message to the SMS sender.
//
// The pending pair is written before anything is sent: if the durable write
// fails nothing goes out. Issuing while a prior token is outstanding
// supersedes it. A delivery failure leaves the token bound but is reported as
// ErrDeliveryFailed so the caller can reissue.
func (s *Service) IssueToken(ctx context.Context, a *Account, phone string) error {
	if strings.TrimSpace(phone) == "" {
		return ErrNoNumberAvailable
	}
	code := randDigits(tokenDigits)
	expiry := time.Now().Add(s.opts.TokenValidity)

	a.setPendingToken(code, expiry)
	if err := s.writeAccount(ctx, a); err != nil {
		return err
	}

	body := fmt.Sprintf(s.opts.MessageFormat, code)
	if s.sms != nil {
		if err := s.sms.SendVerificationMessage(ctx, phone, body); err != nil {
			return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
		}
		return nil
	}
	// In production, require SMS to be configured
	if !isDevEnvironment(getEnvironment()) {
		return fmt.Errorf("%w: sms sender not configured", ErrDeliveryFailed)
	}
	// Dev mode: log code to stdout
	stdlog.Printf("[smskit/dev-sms] one-time code to=%s code=%s", phone, code)
	return nil
}
