package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTrustService(t *testing.T, maxAge time.Duration) *Service {
	t.Helper()
	return NewService(Options{
		Issuer:            "https://shop.example.com",
		TokenValidity:     10 * time.Minute,
		DeviceTrustMaxAge: maxAge,
		DeviceTrustSecret: []byte("test-secret"),
		SessionTTL:        30 * time.Minute,
		MessageFormat:     "%s",
	})
}

func TestTrustCredential_RoundTrip(t *testing.T) {
	svc := newTrustService(t, 30*24*time.Hour)

	raw, err := svc.IssueTrustCredential("cust-1", "+819012345678")
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	tc, err := svc.ValidateTrustCredential(raw)
	require.NoError(t, err)
	require.Equal(t, "cust-1", tc.AccountID)
	require.Equal(t, "+819012345678", tc.Phone)
	require.WithinDuration(t, time.Now(), tc.IssuedAt, 5*time.Second)
}

func TestTrustCredential_StaleRejectedDespiteValidSignature(t *testing.T) {
	svc := newTrustService(t, time.Nanosecond)

	raw, err := svc.IssueTrustCredential("cust-1", "+819012345678")
	require.NoError(t, err)
	time.Sleep(time.Millisecond)

	_, err = svc.ValidateTrustCredential(raw)
	require.ErrorIs(t, err, ErrCredentialExpired)
}

func TestTrustCredential_TamperedRejected(t *testing.T) {
	svc := newTrustService(t, 30*24*time.Hour)

	raw, err := svc.IssueTrustCredential("cust-1", "+819012345678")
	require.NoError(t, err)

	tampered := raw[:len(raw)-2] + "xx"
	_, err = svc.ValidateTrustCredential(tampered)
	require.ErrorIs(t, err, ErrCredentialInvalid)
}

func TestTrustCredential_WrongSecretRejected(t *testing.T) {
	issuer := newTrustService(t, 30*24*time.Hour)
	raw, err := issuer.IssueTrustCredential("cust-1", "+819012345678")
	require.NoError(t, err)

	other := newTrustService(t, 30*24*time.Hour)
	other.opts.DeviceTrustSecret = []byte("different-secret")
	_, err = other.ValidateTrustCredential(raw)
	require.ErrorIs(t, err, ErrCredentialInvalid)
}

func TestTrustCredential_WrongIssuerRejected(t *testing.T) {
	issuer := newTrustService(t, 30*24*time.Hour)
	raw, err := issuer.IssueTrustCredential("cust-1", "+819012345678")
	require.NoError(t, err)

	other := newTrustService(t, 30*24*time.Hour)
	other.opts.Issuer = "https://other.example.com"
	_, err = other.ValidateTrustCredential(raw)
	require.ErrorIs(t, err, ErrCredentialInvalid)
}

func TestTrustCredential_Empty(t *testing.T) {
	svc := newTrustService(t, 30*24*time.Hour)
	_, err := svc.ValidateTrustCredential("")
	require.ErrorIs(t, err, ErrCredentialInvalid)
}
