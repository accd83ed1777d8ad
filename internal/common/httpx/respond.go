package httpx

import (
	"encoding/json"
	"net/http"

	"medtransport/internal/common/apperr"
)

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Error maps err to its HTTP status and writes the stable kind alongside
// the message.
func Error(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	body := errorBody{Error: err.Error(), Kind: string(apperr.KindOf(err))}
	if status == http.StatusInternalServerError {
		// Do not leak internals to the caller.
		body = errorBody{Error: "internal server error"}
	}
	JSON(w, status, body)
}

// QueryInt parses an integer query parameter, falling back to def.
func QueryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	var n int
	for _, c := range raw {
		if c < '0' || c > '9' {
			return def
		}
		n = n*10 + int(c-'0')
	}
	return n
}
