package core

import (
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TrustCredential is the decoded form of a device-trust credential: a signed,
// time-bounded claim that this device already completed SMS verification for
// the account on the given number.
type TrustCredential struct {
	AccountID string
	Phone     string
	IssuedAt  time.Time
}

type trustClaims struct {
	Phone string `json:"phone"`
	jwt.RegisteredClaims
}

// IssueTrustCredential signs a credential binding the account, the challenged
// number, and the issuance instant under the process-wide secret.
func (s *Service) IssueTrustCredential(accountID, phone string) (string, error) {
	now := time.Now()
	claims := trustClaims{
		Phone: phone,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   s.opts.Issuer,
			Subject:  accountID,
			IssuedAt: jwt.NewNumericDate(now),
			ID:       uuid.NewString(),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(s.opts.DeviceTrustSecret)
}

// ValidateTrustCredential parses and checks a credential. Credentials older
// than DeviceTrustMaxAge are rejected as expired even when correctly signed;
// anything else wrong with them is ErrCredentialInvalid. Callers fall back to
// the normal challenge on either error.
func (s *Service) ValidateTrustCredential(raw string) (*TrustCredential, error) {
	if raw == "" {
		return nil, ErrCredentialInvalid
	}
	var claims trustClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.opts.DeviceTrustSecret, nil
	}, jwt.WithIssuer(s.opts.Issuer))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCredentialInvalid, err)
	}
	if claims.Subject == "" || claims.Phone == "" || claims.IssuedAt == nil {
		return nil, ErrCredentialInvalid
	}
	issuedAt := claims.IssuedAt.Time
	if time.Since(issuedAt) > s.opts.DeviceTrustMaxAge {
		return nil, ErrCredentialExpired
	}
	return &TrustCredential{
		AccountID: claims.Subject,
		Phone:     claims.Phone,
		IssuedAt:  issuedAt,
	}, nil
}
