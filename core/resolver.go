package core

import "strings"

// ResolveChallengePhone picks the number to challenge for an account.
// A device-trusted number always wins over the number confirmed on first
// verification; with neither present the caller has to collect one from the
// user. Pure function, no side effects.
func ResolveChallengePhone(a *Account) (string, bool) {
	if a == nil {
		return "", false
	}
	if p := deref(a.DeviceTrustedPhoneNumber); strings.TrimSpace(p) != "" {
		return p, true
	}
	if p := deref(a.TrustedPhoneNumber); strings.TrimSpace(p) != "" {
		return p, true
	}
	return "", false
}
