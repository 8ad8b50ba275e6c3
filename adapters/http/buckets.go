package authhttp

import (
	"time"

	memorylimiter "github.com/KenTanaka/smskit/ratelimit/memory"
)

// Bucket names used by smskit endpoints.
const (
	RLFlowBegin       = "tfa_sms_begin"
	RLFlowSubmitPhone = "tfa_sms_submit_phone"
	RLFlowSubmitToken = "tfa_sms_submit_token"
	RLFlowResend      = "tfa_sms_resend"
)

// Limit configures a named rate limit bucket.
type Limit struct {
	Limit  int
	Window time.Duration
}

// DefaultRateLimits returns the built-in per-endpoint limits, enforced per
// client IP. Hosts can override via WithRateLimiter. Issuance buckets are
// tight because every hit sends an SMS; verification allows a few retries of
// a mistyped code without opening the door to guessing a 6-digit token.
func DefaultRateLimits() map[string]Limit {
	return map[string]Limit{
		"default":         {Limit: 120, Window: time.Minute},
		RLFlowBegin:       {Limit: 10, Window: 10 * time.Minute},
		RLFlowSubmitPhone: {Limit: 5, Window: 10 * time.Minute},
		RLFlowSubmitToken: {Limit: 10, Window: 10 * time.Minute},
		RLFlowResend:      {Limit: 3, Window: 10 * time.Minute},
	}
}

// ToMemoryLimits converts adapter limits to the memory limiter's type.
func ToMemoryLimits(limits map[string]Limit) map[string]memorylimiter.Limit {
	out := make(map[string]memorylimiter.Limit, len(limits))
	for name, l := range limits {
		out[name] = memorylimiter.Limit{Limit: l.Limit, Window: l.Window}
	}
	return out
}
