package httpapi

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"
)

const maxFormBytes = 1 << 20

// form is a flat view of a request body, accepted as JSON or URL-encoded.
type form map[string]string

func readForm(w http.ResponseWriter, r *http.Request) (form, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			return nil, fmt.Errorf("invalid JSON body: %w", err)
		}
		f := make(form, len(raw))
		for k, v := range raw {
			switch t := v.(type) {
			case nil:
			case string:
				f[k] = t
			case []any:
				parts := make([]string, 0, len(t))
				for _, e := range t {
					parts = append(parts, fmt.Sprint(e))
				}
				f[k] = strings.Join(parts, ",")
			default:
				f[k] = fmt.Sprint(t)
			}
		}
		return f, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("invalid form body: %w", err)
	}
	f := make(form, len(r.PostForm))
	for k, vs := range r.PostForm {
		if len(vs) > 0 {
			f[k] = vs[0]
		}
	}
	return f, nil
}

func (f form) has(k string) bool {
	_, ok := f[k]
	return ok
}

func (f form) bool(k string) bool {
	switch strings.ToLower(strings.TrimSpace(f[k])) {
	case "true", "on", "1", "yes":
		return true
	default:
		return false
	}
}

func (f form) int(k string) (int, error) {
	v := strings.TrimSpace(f[k])
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a whole number", k)
	}
	return n, nil
}

func (f form) float(k string) (float64, error) {
	v := strings.TrimSpace(f[k])
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", k)
	}
	return n, nil
}
