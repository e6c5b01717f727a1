package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// AdminGate guards catalog mutations with a shared-secret header.
// The key comes from config at startup; it is not a real security
// boundary, just the precondition the mutation endpoints require.
type AdminGate struct {
	Username string
	Password string
	Key      string
}

func (g AdminGate) Register(r *chi.Mux) {
	r.Post("/admin/login", g.login)
}

// Require rejects requests whose X-Admin-Key does not match.
func (g AdminGate) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Admin-Key") != g.Key {
			writeJSON(w, http.StatusForbidden, map[string]string{"message": "forbidden"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (g AdminGate) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.Username != g.Username || req.Password != g.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid credentials"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "login successful", "adminKey": g.Key})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
