package memorystore

import (
	"context"
	"sync"

	"github.com/KenTanaka/smskit/core"
)

// Accounts is an in-memory core.AccountStore for development and tests.
// Records are copied on the way in and out, so a Write lands the whole record
// at once and callers never share pointers with the store.
type Accounts struct {
	mu       sync.Mutex
	accounts map[string]core.Account
}

func NewAccounts() *Accounts {
	return &Accounts{accounts: make(map[string]core.Account)}
}

func (s *Accounts) Read(ctx context.Context, id string) (*core.Account, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, core.ErrAccountNotFound
	}
	cp := copyAccount(a)
	return &cp, nil
}

func (s *Accounts) Write(ctx context.Context, a *core.Account) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.ID] = copyAccount(*a)
	return nil
}

// Put seeds an account, creating it if absent.
func (s *Accounts) Put(a core.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.ID] = copyAccount(a)
}

func copyAccount(a core.Account) core.Account {
	cp := a
	cp.TrustedPhoneNumber = copyStr(a.TrustedPhoneNumber)
	cp.DeviceTrustedPhoneNumber = copyStr(a.DeviceTrustedPhoneNumber)
	cp.PendingToken = copyStr(a.PendingToken)
	if a.PendingTokenExpiry != nil {
		t := *a.PendingTokenExpiry
		cp.PendingTokenExpiry = &t
	}
	return cp
}

func copyStr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
