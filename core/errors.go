package core

import "errors"

// Error taxonomy surfaced by the verification flow. Adapters map each kind to
// a distinct reason code. Storage failures are fatal to the current step and
// are never retried here; delivery and token errors are recoverable by
// resubmitting or reissuing.
var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrNoNumberAvailable = errors.New("no phone number available")
	ErrDeliveryFailed    = errors.New("sms delivery failed")
	ErrStorageFailure    = errors.New("account storage failure")
	ErrCredentialInvalid = errors.New("device trust credential invalid")
	ErrCredentialExpired = errors.New("device trust credential expired")
)
