package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/ManuGH/fieldpulse/internal/log"
)

// problem writes the same {"error","detail","request_id"} body the API
// handlers use, for responses the middleware produces itself.
func problem(w http.ResponseWriter, r *http.Request, code int, kind, detail string) {
	body := map[string]string{"error": kind, "detail": detail}
	if id := log.RequestIDFromContext(r.Context()); id != "" {
		body["request_id"] = id
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
