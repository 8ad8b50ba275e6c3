package authhttp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	core "github.com/KenTanaka/smskit/core"
	memorystore "github.com/KenTanaka/smskit/storage/memory"
	"github.com/stretchr/testify/require"
)

// testSender captures outgoing messages; with MessageFormat "%s" the body is
// the raw code.
type testSender struct {
	to     []string
	bodies []string
}

func (s *testSender) SendVerificationMessage(ctx context.Context, phone, body string) error {
	s.to = append(s.to, phone)
	s.bodies = append(s.bodies, body)
	return nil
}

func (s *testSender) lastCode(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, s.bodies)
	return s.bodies[len(s.bodies)-1]
}

func newTestService(t *testing.T) (*Service, *memorystore.Accounts, *testSender) {
	t.Helper()
	s, err := NewService(core.Config{
		Issuer:            "https://shop.example.com",
		DeviceTrustSecret: "test-secret",
		MessageFormat:     "%s",
	})
	require.NoError(t, err)
	accounts := memorystore.NewAccounts()
	sender := &testSender{}
	s.WithAccountStore(accounts).WithSMSSender(sender)
	return s, accounts, sender
}

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(w, r)
	return w
}

func decodeFlow(t *testing.T, w *httptest.ResponseRecorder) flowResponse {
	t.Helper()
	var res flowResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res
}

func TestAPIHandler_Begin_InvalidRequest(t *testing.T) {
	s, _, _ := newTestService(t)
	h := s.APIHandler()

	w := postJSON(t, h, "/auth/2fa/sms/begin", `{}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), `"error":"invalid_request"`)
}

func TestAPIHandler_Begin_UnknownAccount(t *testing.T) {
	s, _, _ := newTestService(t)
	h := s.APIHandler()

	w := postJSON(t, h, "/auth/2fa/sms/begin", `{"account_id":"nobody"}`)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), `"error":"account_not_found"`)
}

func TestAPIHandler_Number_RequiresE164(t *testing.T) {
	s, accounts, _ := newTestService(t)
	accounts.Put(core.Account{ID: "cust-1"})
	h := s.APIHandler()

	for _, phone := range []string{"0901234", "090-1234-5678", "+0123", "not-a-number"} {
		w := postJSON(t, h, "/auth/2fa/sms/number", `{"account_id":"cust-1","phone_number":"`+phone+`"}`)
		require.Equal(t, http.StatusBadRequest, w.Code, "phone %q", phone)
		require.Contains(t, w.Body.String(), `"error":"phone_number_must_be_e164"`)
	}
}

func TestAPIHandler_Token_Required(t *testing.T) {
	s, accounts, _ := newTestService(t)
	accounts.Put(core.Account{ID: "cust-1"})
	h := s.APIHandler()

	w := postJSON(t, h, "/auth/2fa/sms/token", `{"account_id":"cust-1","token":"  "}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), `"error":"token_required"`)
}

func TestAPIHandler_RejectsUnknownFields(t *testing.T) {
	s, accounts, _ := newTestService(t)
	accounts.Put(core.Account{ID: "cust-1"})
	h := s.APIHandler()

	w := postJSON(t, h, "/auth/2fa/sms/begin", `{"account_id":"cust-1","bogus":true}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), `"error":"invalid_request"`)
}

func TestAPIHandler_FullFlow(t *testing.T) {
	s, accounts, sender := newTestService(t)
	accounts.Put(core.Account{ID: "cust-1"})
	h := s.APIHandler()

	// First visit: no number on file.
	w := postJSON(t, h, "/auth/2fa/sms/begin", `{"account_id":"cust-1"}`)
	require.Equal(t, http.StatusOK, w.Code)
	begin := decodeFlow(t, w)
	require.Equal(t, "awaiting_number", begin.State)
	require.NotEmpty(t, begin.AttemptID)

	w = postJSON(t, h, "/auth/2fa/sms/number", `{"account_id":"cust-1","phone_number":"+819012345678"}`)
	require.Equal(t, http.StatusOK, w.Code)
	sent := decodeFlow(t, w)
	require.Equal(t, "token_sent", sent.State)
	require.Equal(t, []string{"+819012345678"}, sender.to)

	// Wrong code leaves the attempt open.
	code := sender.lastCode(t)
	wrong := "000000"
	if wrong == code {
		wrong = "111111"
	}
	w = postJSON(t, h, "/auth/2fa/sms/token", `{"account_id":"cust-1","token":"`+wrong+`"}`)
	require.Equal(t, http.StatusOK, w.Code)
	bad := decodeFlow(t, w)
	require.Equal(t, "token_sent", bad.State)
	require.Equal(t, "invalid_token", bad.Reason)

	w = postJSON(t, h, "/auth/2fa/sms/token", `{"account_id":"cust-1","token":"`+code+`"}`)
	require.Equal(t, http.StatusOK, w.Code)
	done := decodeFlow(t, w)
	require.Equal(t, "verified", done.State)
	require.NotEmpty(t, done.DeviceCredential)

	// Re-entry within the same session passes through.
	w = postJSON(t, h, "/auth/2fa/sms/begin", `{"account_id":"cust-1"}`)
	require.Equal(t, http.StatusOK, w.Code)
	again := decodeFlow(t, w)
	require.Equal(t, "verified", again.State)
	require.True(t, again.AlreadyAuthenticated)
}

func TestAPIHandler_BeginWithCredential(t *testing.T) {
	s, accounts, sender := newTestService(t)
	accounts.Put(core.Account{ID: "cust-2", TwoFactorEnabled: true})
	h := s.APIHandler()

	cred, err := s.Core().IssueTrustCredential("cust-2", "+819012345678")
	require.NoError(t, err)

	w := postJSON(t, h, "/auth/2fa/sms/begin", `{"account_id":"cust-2","device_credential":"`+cred+`"}`)
	require.Equal(t, http.StatusOK, w.Code)
	res := decodeFlow(t, w)
	require.Equal(t, "verified", res.State)
	require.True(t, res.AlreadyAuthenticated)
	require.Empty(t, sender.to)
}

func TestAPIHandler_ResendRateLimited(t *testing.T) {
	s, accounts, _ := newTestService(t)
	phone := "+819012345678"
	accounts.Put(core.Account{ID: "cust-3", TwoFactorEnabled: true, TrustedPhoneNumber: &phone})
	h := s.APIHandler()

	// httptest requests come from 192.0.2.1, a public TEST-NET address, so
	// the default per-IP limits apply.
	limit := DefaultRateLimits()[RLFlowResend].Limit
	for i := 0; i < limit; i++ {
		w := postJSON(t, h, "/auth/2fa/sms/resend", `{"account_id":"cust-3"}`)
		require.Equal(t, http.StatusOK, w.Code, "resend %d", i)
	}
	w := postJSON(t, h, "/auth/2fa/sms/resend", `{"account_id":"cust-3"}`)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Contains(t, w.Body.String(), `"error":"rate_limited"`)
}

func TestDefaultClientIP_FailsOpenOnPrivate(t *testing.T) {
	fn := DefaultClientIP()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.5:1234"
	require.Empty(t, fn(r))

	r.RemoteAddr = "127.0.0.1:1234"
	require.Empty(t, fn(r))

	r.RemoteAddr = "203.0.113.7:1234"
	require.Equal(t, "203.0.113.7", fn(r))
}
