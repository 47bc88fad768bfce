package server

import (
	"net/http"
	"strconv"
	"strings"

	"alertsmis/pkg/types"
)

// parseAlertID accepts positive integer ids only.
func parseAlertID(raw string) (int64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}

	return id, true
}

func decodeVerificationForm(r *http.Request) (*types.VerificationForm, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}

	var form types.VerificationForm
	if err := decoder.Decode(&form, r.PostForm); err != nil {
		return nil, err
	}

	return &form, nil
}

func decodeAlertFilter(r *http.Request) (*types.AlertFilter, error) {
	var filter types.AlertFilter
	if err := decoder.Decode(&filter, r.URL.Query()); err != nil {
		return nil, err
	}

	filter.Region = strings.TrimSpace(filter.Region)
	filter.District = strings.TrimSpace(filter.District)
	filter.AlertCaseName = strings.TrimSpace(filter.AlertCaseName)
	filter.PersonReporting = strings.TrimSpace(filter.PersonReporting)

	return &filter, nil
}
