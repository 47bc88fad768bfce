package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"alertsmis/internal/verification"
	"alertsmis/pkg/types"
)

type errorResponse struct {
	Success     bool              `json:"success"`
	Error       string            `json:"error"`
	FieldErrors map[string]string `json:"field_errors,omitempty"`
}

func (s *Service) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.WithError(err).Error("failed to encode response")
	}
}

// writeError maps domain errors onto status codes. Anything unrecognised is
// logged and reported as a 500 without detail.
func (s *Service) writeError(w http.ResponseWriter, err error) {
	var verr *verification.ValidationError

	switch {
	case errors.Is(err, types.ErrAlertNotFound):
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, types.ErrInvalidToken):
		s.writeJSON(w, http.StatusForbidden, errorResponse{Error: err.Error()})
	case errors.As(err, &verr):
		s.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "invalid form", FieldErrors: verr.Fields})
	default:
		s.logger.WithError(err).Error("request failed")
		s.internalServerError(w)
	}
}

func (s *Service) badRequest(w http.ResponseWriter, msg string) {
	s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

func (s *Service) internalServerError(w http.ResponseWriter) {
	s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
}
