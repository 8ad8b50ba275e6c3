package core

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mr-tron/base58"
)

const tokenDigits = 6

// Options configures issued tokens and device-trust credentials.
type Options struct {
	Issuer            string
	TokenValidity     time.Duration
	DeviceTrustMaxAge time.Duration
	DeviceTrustSecret []byte
	SessionTTL        time.Duration
	MessageFormat     string
}

// Service is the core verification service used by HTTP adapters.
type Service struct {
	opts           Options
	accounts       AccountStore
	sms            SMSSender
	ephemeralStore EphemeralStore
	ephemeralMode  EphemeralMode
}

func NewService(opts Options) *Service {
	return &Service{opts: opts, ephemeralMode: EphemeralMemory}
}

// NewFromConfig creates a Service from high-level Config, applying defaults.
func NewFromConfig(cfg Config) (*Service, error) {
	secret := strings.TrimSpace(cfg.DeviceTrustSecret)
	if secret == "" {
		return nil, fmt.Errorf("smskit: DeviceTrustSecret is required")
	}
	if cfg.Issuer == "" {
		return nil, fmt.Errorf("smskit: Issuer is required (e.g. \"https://shop.example.com\")")
	}

	validity := cfg.TokenValidity
	if validity <= 0 {
		validity = 10 * time.Minute
	}
	maxAge := cfg.DeviceTrustMaxAge
	if maxAge <= 0 {
		maxAge = 30 * 24 * time.Hour
	}
	sessionTTL := cfg.SessionTTL
	if sessionTTL <= 0 {
		sessionTTL = 30 * time.Minute
	}
	format := cfg.MessageFormat
	if format == "" {
		format = "Your verification code is %s."
	}

	opts := Options{
		Issuer:            cfg.Issuer,
		TokenValidity:     validity,
		DeviceTrustMaxAge: maxAge,
		DeviceTrustSecret: []byte(secret),
		SessionTTL:        sessionTTL,
		MessageFormat:     format,
	}
	return NewService(opts), nil
}

// Options exposes immutable configuration for callers.
func (s *Service) Options() Options { return s.opts }

// WithAccountStore attaches the durable account store.
func (s *Service) WithAccountStore(store AccountStore) *Service { s.accounts = store; return s }

// SMSSender delivers rendered one-time code messages out-of-band.
type SMSSender interface {
	SendVerificationMessage(ctx context.Context, phone, body string) error
}

// WithSMSSender sets the SMS sender dependency.
func (s *Service) WithSMSSender(sender SMSSender) *Service { s.sms = sender; return s }

// HasSMSSender returns true if an SMS sender is configured.
func (s *Service) HasSMSSender() bool { return s.sms != nil }

func (s *Service) readAccount(ctx context.Context, id string) (*Account, error) {
	if s.accounts == nil {
		return nil, fmt.Errorf("%w: account store not configured", ErrStorageFailure)
	}
	a, err := s.accounts.Read(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if a == nil {
		return nil, ErrAccountNotFound
	}
	return a, nil
}

func (s *Service) writeAccount(ctx context.Context, a *Account) error {
	if s.accounts == nil {
		return fmt.Errorf("%w: account store not configured", ErrStorageFailure)
	}
	if err := s.accounts.Write(ctx, a); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return nil
}

// SeedAccount writes an account record directly, creating it if absent. Meant
// for dev servers and tests; host applications own account creation.
func (s *Service) SeedAccount(ctx context.Context, a Account) error {
	return s.writeAccount(ctx, &a)
}

// helpers

func randBytes(n int) []byte {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return b
}

func randInt(max int) int {
	b := randBytes(4)
	n := int(b[0]) | int(b[1])<<8 | int(b[2])<<16 | int(b[3])<<24
	if n < 0 {
		n = -n
	}
	return n % max
}

// randDigits generates an n-digit numeric code (e.g. 6 digits = 000000-999999).
func randDigits(n int) string {
	code := make([]byte, n)
	for i := 0; i < n; i++ {
		code[i] = '0' + byte(randInt(10))
	}
	return string(code)
}

// newAttemptID mints a compact opaque id for one authentication attempt.
func newAttemptID() string {
	return base58.Encode(randBytes(16))
}

// tokenEqual compares two tokens without leaking, through timing, whether a
// token is pending at all or merely wrong. Hashing first makes the comparison
// length-independent.
func tokenEqual(a, b string) bool {
	ha := sha256.Sum256([]byte(a))
	hb := sha256.Sum256([]byte(b))
	return subtle.ConstantTimeCompare(ha[:], hb[:]) == 1
}

// getEnvironment reads the environment from ENV, APP_ENV, or ENVIRONMENT variables
func getEnvironment() string {
	env := os.Getenv("ENV")
	if env == "" {
		env = os.Getenv("APP_ENV")
	}
	if env == "" {
		env = os.Getenv("ENVIRONMENT")
	}
	return env
}

// isDevEnvironment returns true unless the environment is explicitly set to prod/production
func isDevEnvironment(env string) bool {
	e := strings.ToLower(strings.TrimSpace(env))
	if e == "prod" || e == "production" {
		return false
	}
	return true
}

// IsDevEnvironment reports whether the current ENV/APP_ENV/ENVIRONMENT is non-production.
func IsDevEnvironment() bool {
	return isDevEnvironment(getEnvironment())
}
