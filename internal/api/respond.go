package api

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"client-report-engine/internal/common/errors"
)

type errorBody struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			s.log.Error("failed to encode response", map[string]interface{}{"error": err.Error()})
		}
	}
}

// writeError maps the error taxonomy onto HTTP statuses: validation 400,
// not-found 404, render/conversion 500. No kind is silently swallowed.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch errors.KindOf(err) {
	case errors.KindValidation:
		status = http.StatusBadRequest
	case errors.KindNotFound:
		status = http.StatusNotFound
	case errors.KindRender, errors.KindConversion:
		status = http.StatusInternalServerError
	}

	body := errorBody{Error: err.Error(), Code: string(errors.CodeOf(err))}
	var appErr *errors.Error
	if stderrors.As(err, &appErr) {
		body.Error = appErr.Message
		body.Details = appErr.Details
	}

	if status >= 500 {
		s.log.Error("request failed", map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
			"error":  err.Error(),
		})
	} else {
		s.log.Warn("request rejected", map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
			"error":  err.Error(),
		})
	}

	s.writeJSON(w, status, body)
}
