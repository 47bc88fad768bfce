package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"alertsmis/internal/utils"
	"alertsmis/pkg/types"
)

type createAlertRequest struct {
	types.AlertIntake
	types.AlertCase
}

func (s *Service) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	filter, err := decodeAlertFilter(r)
	if err != nil {
		s.badRequest(w, "invalid filter")
		return
	}

	page, err := s.alerts.List(r.Context(), filter, callerFromContext(r.Context()), s.config.PageSize)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, page)
}

func (s *Service) handleCreateAlert(w http.ResponseWriter, r *http.Request) {
	var req createAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, "invalid alert payload")
		return
	}

	fieldErrors := map[string]string{}
	if strings.TrimSpace(utils.PtrString(req.PersonReporting)) == "" {
		fieldErrors["person_reporting"] = "person reporting is required"
	}
	if strings.TrimSpace(utils.PtrString(req.AlertCaseName)) == "" {
		fieldErrors["alert_case_name"] = "alert case name is required"
	}
	if len(fieldErrors) > 0 {
		s.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "invalid alert", FieldErrors: fieldErrors})
		return
	}

	alert := &types.Alert{AlertIntake: req.AlertIntake, AlertCase: req.AlertCase}
	if alert.CallTaker == nil {
		if caller := callerFromContext(r.Context()); caller != nil {
			alert.CallTaker = utils.StringPtr(caller.Username)
		}
	}

	if err := s.alerts.Create(r.Context(), alert); err != nil {
		s.writeError(w, err)
		return
	}

	s.logger.WithField("alert_id", alert.ID).Info("alert logged")

	s.writeJSON(w, http.StatusCreated, alert)
}

func (s *Service) handleAlertCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := s.alerts.Counts(r.Context(), time.Now())
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, counts)
}
