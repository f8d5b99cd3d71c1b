package devapi

import (
	"encoding/json"
	"net/http"
)

// validationIssue mirrors one entry of a 422 "detail" list.
type validationIssue struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeValidation(w http.ResponseWriter, issues ...validationIssue) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": issues})
}

func fieldIssue(field, msg string) validationIssue {
	return validationIssue{Loc: []string{"body", field}, Msg: msg, Type: "value_error"}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		writeValidation(w, validationIssue{Loc: []string{"body"}, Msg: "JSON decode error: " + err.Error(), Type: "json_invalid"})
		return false
	}
	return true
}
