package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

// RawBodyKey holds the unparsed body when a request body is not a JSON object.
const RawBodyKey = "_raw"

const maxBodyBytes = 1 << 20

// preflight answers every OPTIONS request with 204 before routing. Any
// CORS headers have already been written by the cors handler.
func preflight(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// parseBody decodes the request body into an object. It never fails: an
// empty body yields an empty object and anything that is not a JSON object
// is kept as a string under RawBodyKey.
func parseBody(r *http.Request) map[string]any {
	if r.Body == nil {
		return map[string]any{}
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return map[string]any{}
	}

	text := strings.TrimSpace(string(raw))
	if text == "" {
		return map[string]any{}
	}

	var body map[string]any
	if err := json.Unmarshal([]byte(text), &body); err != nil || body == nil {
		return map[string]any{RawBodyKey: text}
	}
	return body
}

func bodyString(body map[string]any, key string) string {
	s, _ := body[key].(string)
	return strings.TrimSpace(s)
}
