package core

import "time"

// Config is the high-level configuration consumed by NewFromConfig: an
// issuer, the durations, and the trust secret. Zero durations get defaults.
type Config struct {
	// Issuer names the process issuing device-trust credentials (e.g. the
	// site's base URL). Stamped into and required of every credential.
	Issuer string

	// TokenValidity bounds how long an issued one-time token can be redeemed.
	// Defaults to 10 minutes.
	TokenValidity time.Duration

	// DeviceTrustMaxAge bounds how long a device-trust credential lets a
	// device skip the SMS challenge. Defaults to 30 days.
	DeviceTrustMaxAge time.Duration

	// DeviceTrustSecret signs device-trust credentials. Required.
	DeviceTrustSecret string

	// SessionTTL bounds one authentication attempt: the challenged number and
	// the session-verified marker are kept at most this long. Defaults to
	// 30 minutes.
	SessionTTL time.Duration

	// MessageFormat renders the SMS body; a single %s receives the code.
	// Defaults to "Your verification code is %s."
	MessageFormat string
}
