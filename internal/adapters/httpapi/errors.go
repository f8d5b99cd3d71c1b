package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/healthportal-app/portal-client/internal/app/patient"
	"github.com/healthportal-app/portal-client/internal/app/session"
	"github.com/healthportal-app/portal-client/internal/ports/out/portalapi"
)

type errorBody struct {
	Error struct {
		Code      string         `json:"code"`
		Message   string         `json:"message"`
		Details   map[string]any `json:"details,omitempty"`
		RequestID string         `json:"requestId,omitempty"`
	} `json:"error"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code string, message string, details map[string]any) {
	var eb errorBody
	eb.Error.Code = code
	eb.Error.Message = message
	eb.Error.Details = details
	eb.Error.RequestID = middleware.GetReqID(r.Context())
	writeJSON(w, status, eb)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// redirect answers 303 with Location and a small JSON body naming the target.
func redirect(w http.ResponseWriter, location string) {
	w.Header().Set("Location", location)
	writeJSON(w, http.StatusSeeOther, map[string]string{"redirect": location})
}

func writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	ae, ok := session.AsAuthError(err)
	if !ok {
		writeError(w, r, http.StatusInternalServerError, "INTERNAL", "unexpected error", nil)
		return
	}
	var details map[string]any
	if len(ae.Fields) > 0 {
		details = make(map[string]any, len(ae.Fields))
		for k, v := range ae.Fields {
			details[k] = v
		}
	}
	switch ae.Kind {
	case session.InvalidCredentials:
		writeError(w, r, http.StatusUnauthorized, "INVALID_CREDENTIALS", ae.Message, nil)
	case session.ValidationFailed:
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", ae.Message, details)
	case session.DuplicateEmail:
		writeError(w, r, http.StatusConflict, "DUPLICATE_EMAIL", ae.Message, nil)
	case session.Superseded:
		writeError(w, r, http.StatusConflict, "SUPERSEDED", ae.Message, nil)
	case session.InvalidToken:
		writeError(w, r, http.StatusBadGateway, "INVALID_TOKEN", ae.Message, nil)
	default:
		writeError(w, r, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", ae.Message, nil)
	}
}

// writeDataError maps a data client failure. A rejected credential has already
// logged the session out, so the user is sent to /login.
func writeDataError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, patient.ErrInvalidInput) {
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	apiErr, ok := portalapi.AsError(err)
	if !ok {
		if errors.Is(err, portalapi.ErrTransport) {
			writeError(w, r, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", "The health portal is unreachable. Please try again later.", nil)
			return
		}
		writeError(w, r, http.StatusInternalServerError, "INTERNAL", "unexpected error", nil)
		return
	}
	switch {
	case apiErr.IsAuthRejection():
		redirect(w, loginPath)
	case apiErr.Status == http.StatusNotFound:
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", messageOr(apiErr.Message, "Not found"), nil)
	case apiErr.Status == http.StatusBadRequest || apiErr.Status == http.StatusUnprocessableEntity:
		writeError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", messageOr(apiErr.Message, "The request was rejected."), nil)
	default:
		writeError(w, r, http.StatusBadGateway, "UPSTREAM_ERROR", messageOr(apiErr.Message, http.StatusText(apiErr.Status)), nil)
	}
}

func messageOr(msg, def string) string {
	if msg == "" {
		return def
	}
	return msg
}
