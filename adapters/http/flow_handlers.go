package authhttp

import (
	"errors"
	"net/http"
	"strings"

	core "github.com/KenTanaka/smskit/core"
)

type flowResponse struct {
	State                string `json:"state"`
	Reason               string `json:"reason,omitempty"`
	AttemptID            string `json:"attempt_id,omitempty"`
	PhoneNumber          string `json:"phone_number,omitempty"`
	DeviceCredential     string `json:"device_credential,omitempty"`
	AlreadyAuthenticated bool   `json:"already_authenticated,omitempty"`
}

func writeFlow(w http.ResponseWriter, res *core.FlowResult) {
	writeJSON(w, http.StatusOK, flowResponse{
		State:                string(res.State),
		Reason:               res.Reason,
		AttemptID:            res.AttemptID,
		PhoneNumber:          res.PhoneHint,
		DeviceCredential:     res.Credential,
		AlreadyAuthenticated: res.AlreadyAuthenticated,
	})
}

func writeFlowErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrAccountNotFound):
		notFound(w, "account_not_found")
	case errors.Is(err, core.ErrStorageFailure):
		serverErr(w, "storage_failure")
	default:
		serverErr(w, "internal_error")
	}
}

func (s *Service) handleFlowBeginPOST(w http.ResponseWriter, r *http.Request) {
	if !s.allow(r, RLFlowBegin) {
		tooMany(w)
		return
	}

	var req struct {
		AccountID        string `json:"account_id"`
		DeviceCredential string `json:"device_credential,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil || strings.TrimSpace(req.AccountID) == "" {
		badRequest(w, "invalid_request")
		return
	}

	res, err := s.svc.BeginFlow(r.Context(), strings.TrimSpace(req.AccountID), req.DeviceCredential)
	if err != nil {
		writeFlowErr(w, err)
		return
	}
	writeFlow(w, res)
}

func (s *Service) handleFlowNumberPOST(w http.ResponseWriter, r *http.Request) {
	if !s.allow(r, RLFlowSubmitPhone) {
		tooMany(w)
		return
	}

	var req struct {
		AccountID   string `json:"account_id"`
		PhoneNumber string `json:"phone_number"`
	}
	if err := decodeJSON(r, &req); err != nil || strings.TrimSpace(req.AccountID) == "" {
		badRequest(w, "invalid_request")
		return
	}

	phone := strings.TrimSpace(req.PhoneNumber)
	if phone == "" || !reE164.MatchString(phone) {
		badRequest(w, "phone_number_must_be_e164")
		return
	}

	res, err := s.svc.SubmitPhoneNumber(r.Context(), strings.TrimSpace(req.AccountID), phone)
	if err != nil {
		writeFlowErr(w, err)
		return
	}
	writeFlow(w, res)
}

func (s *Service) handleFlowTokenPOST(w http.ResponseWriter, r *http.Request) {
	if !s.allow(r, RLFlowSubmitToken) {
		tooMany(w)
		return
	}

	var req struct {
		AccountID string `json:"account_id"`
		Token     string `json:"token"`
	}
	if err := decodeJSON(r, &req); err != nil || strings.TrimSpace(req.AccountID) == "" {
		badRequest(w, "invalid_request")
		return
	}
	token := strings.TrimSpace(req.Token)
	if token == "" {
		badRequest(w, "token_required")
		return
	}

	res, err := s.svc.SubmitToken(r.Context(), strings.TrimSpace(req.AccountID), token)
	if err != nil {
		writeFlowErr(w, err)
		return
	}
	writeFlow(w, res)
}

func (s *Service) handleFlowResendPOST(w http.ResponseWriter, r *http.Request) {
	if !s.allow(r, RLFlowResend) {
		tooMany(w)
		return
	}

	var req struct {
		AccountID string `json:"account_id"`
	}
	if err := decodeJSON(r, &req); err != nil || strings.TrimSpace(req.AccountID) == "" {
		badRequest(w, "invalid_request")
		return
	}

	res, err := s.svc.ResendToken(r.Context(), strings.TrimSpace(req.AccountID))
	if err != nil {
		writeFlowErr(w, err)
		return
	}
	writeFlow(w, res)
}
