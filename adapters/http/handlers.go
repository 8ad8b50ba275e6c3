package authhttp

import (
	"net/http"

	core "github.com/KenTanaka/smskit/core"
)

// APIHandler returns a handler serving the SMS verification routes under
// /auth/2fa/sms/*. It is intended to be mounted under the host's mux/router
// at any prefix; the host is responsible for authenticating the session that
// names the account.
func (s *Service) APIHandler() http.Handler {
	if s == nil || s.svc == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { serverErr(w, "smskit_not_initialized") })
	}
	if !core.IsDevEnvironment() {
		if s.svc.EphemeralMode() != core.EphemeralRedis {
			panic("smskit: redis-compatible ephemeral store is required in production")
		}
	}

	mux := http.NewServeMux()
	mux.Handle("POST /auth/2fa/sms/begin", http.HandlerFunc(s.handleFlowBeginPOST))
	mux.Handle("POST /auth/2fa/sms/number", http.HandlerFunc(s.handleFlowNumberPOST))
	mux.Handle("POST /auth/2fa/sms/token", http.HandlerFunc(s.handleFlowTokenPOST))
	mux.Handle("POST /auth/2fa/sms/resend", http.HandlerFunc(s.handleFlowResendPOST))
	return mux
}
