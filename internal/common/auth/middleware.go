package auth

import (
	"context"
	"encoding/json"
	"net/http"
)

type contextKey string

const claimsContextKey = contextKey("claims")

// Middleware validates the Authorization header and stores the claims in
// the request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("Authorization")
		if token == "" {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		claims, err := ValidateToken(token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// FromContext returns the claims stored by Middleware, or nil.
func FromContext(r *http.Request) *Claims {
	claims, ok := r.Context().Value(claimsContextKey).(*Claims)
	if !ok {
		return nil
	}
	return claims
}

// ActorFromRequest returns the authenticated actor, or false when the
// request carries no valid claims.
func ActorFromRequest(r *http.Request) (Actor, bool) {
	claims := FromContext(r)
	if claims == nil {
		return Actor{}, false
	}
	return claims.Actor(), true
}

// TokenHandler mints a token for a known user id and role. Intended for
// development and integration setups; production deployments sit behind
// an external identity provider.
func TokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID string `json:"user_id"`
			Role   string `json:"role"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.UserID == "" {
			http.Error(w, "user_id is required", http.StatusBadRequest)
			return
		}
		if req.Role == "" {
			req.Role = RoleReporter
		}

		token, err := GenerateToken(req.UserID, req.Role)
		if err != nil {
			http.Error(w, "failed to generate token", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"token": token})
	}
}
