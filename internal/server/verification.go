package server

import (
	"net/http"

	"alertsmis/internal/verification"
)

type tokenResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	Reused  bool   `json:"reused"`
}

type submitResponse struct {
	Success   bool   `json:"success"`
	AlertID   int64  `json:"alert_id"`
	Escalated bool   `json:"escalated"`
	Token     string `json:"token,omitempty"`
	Redirect  string `json:"redirect"`
}

func (s *Service) handleGetAlertVerification(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	alertID, ok := parseAlertID(query.Get("id"))
	if !ok {
		s.badRequest(w, "a valid alert id is required")
		return
	}

	var (
		view *verification.AlertView
		err  error
	)
	if callerFromContext(r.Context()) != nil {
		view, err = s.verifier.Alert(r.Context(), alertID)
	} else {
		view, err = s.verifier.AlertByToken(r.Context(), alertID, query.Get("token"))
	}
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, view)
}

func (s *Service) handlePostAlertVerification(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	alertID, ok := parseAlertID(query.Get("id"))
	if !ok {
		s.badRequest(w, "a valid alert id is required")
		return
	}

	form, err := decodeVerificationForm(r)
	if err != nil {
		s.logger.WithError(err).Debug("failed to decode verification form")
		s.badRequest(w, "invalid form payload")
		return
	}

	result, err := s.verifier.Submit(r.Context(), alertID, query.Get("token"), form)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, submitResponse{
		Success:   true,
		AlertID:   result.AlertID,
		Escalated: result.Escalated,
		Token:     result.Token,
		Redirect:  result.Redirect,
	})
}

func (s *Service) handleGenerateToken(w http.ResponseWriter, r *http.Request) {
	alertID, ok := parseAlertID(r.FormValue("alert_id"))
	if !ok {
		s.badRequest(w, "a valid alert_id is required")
		return
	}

	token, reused, err := s.verifier.IssueToken(r.Context(), alertID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.logger.WithField("alert_id", alertID).WithField("caller", callerFromContext(r.Context()).Username).Info("verification token requested")

	s.writeJSON(w, http.StatusOK, tokenResponse{Success: true, Token: token.Token, Reused: reused})
}
