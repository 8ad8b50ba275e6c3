package core

import (
	"context"
)

const (
	keyChallenge       = "tfa:sms:challenge:"
	keySessionVerified = "tfa:sms:verified:"
)

// challengeData is the attempt-scoped state held between token issuance and
// verification: which number was challenged, under which attempt.
type challengeData struct {
	AttemptID string `json:"attempt_id"`
	Phone     string `json:"phone"`
}

func (s *Service) storeChallenge(ctx context.Context, accountID string, data challengeData) error {
	return s.ephemSetJSON(ctx, keyChallenge+accountID, data, s.opts.SessionTTL)
}

func (s *Service) loadChallenge(ctx context.Context, accountID string) (challengeData, bool, error) {
	var data challengeData
	ok, err := s.ephemGetJSON(ctx, keyChallenge+accountID, &data)
	return data, ok, err
}

func (s *Service) clearChallenge(ctx context.Context, accountID string) {
	_ = s.ephemDel(ctx, keyChallenge+accountID)
}

// markSessionVerified records that this session already completed
// verification, so re-entry is redirected instead of re-challenged.
func (s *Service) markSessionVerified(ctx context.Context, accountID, attemptID string) {
	_ = s.ephemSetString(ctx, keySessionVerified+accountID, attemptID, s.opts.SessionTTL)
}

func (s *Service) sessionVerified(ctx context.Context, accountID string) (string, bool) {
	if !s.useEphemeralStore() {
		return "", false
	}
	attemptID, ok, err := s.ephemGetString(ctx, keySessionVerified+accountID)
	if err != nil || !ok {
		return "", false
	}
	return attemptID, true
}
