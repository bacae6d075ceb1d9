package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const maxFormMemory = 32 << 20

// writeJSON writes payload with the given status code.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// formValues merges query, urlencoded, multipart and JSON object bodies
// into one set of values. JSON scalars are stringified; arrays become
// repeated values.
func formValues(r *http.Request) (url.Values, error) {
	ct := r.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(ct, "application/json"):
		values := r.URL.Query()
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return nil, err
		}
		for k, v := range body {
			switch val := v.(type) {
			case nil:
			case []any:
				for _, item := range val {
					values.Add(k, scalar(item))
				}
			default:
				values.Set(k, scalar(val))
			}
		}
		return values, nil
	case strings.HasPrefix(ct, "multipart/form-data"):
		if err := r.ParseMultipartForm(maxFormMemory); err != nil {
			return nil, err
		}
		return r.Form, nil
	default:
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
		return r.Form, nil
	}
}

func scalar(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	}
	data, _ := json.Marshal(v)
	return string(data)
}

func int64Value(values url.Values, key string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(values.Get(key)), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// optionalString distinguishes an absent field from an empty one.
func optionalString(values url.Values, key string) *string {
	if _, ok := values[key]; !ok {
		return nil
	}
	v := values.Get(key)
	return &v
}

// listValue accepts repeated keys, "key[]" and comma-separated values.
func listValue(values url.Values, key string) []string {
	var out []string
	for _, raw := range append(values[key], values[key+"[]"]...) {
		for _, part := range strings.Split(raw, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
