package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"mhregistry/internal/token"
	id "mhregistry/pkg/domain"
	"mhregistry/pkg/requestcontext"
)

// TokenValidator defines the interface for validating access tokens.
type TokenValidator interface {
	Validate(tokenString string) (*token.Claims, error)
}

// RequireAuth validates the bearer token and loads the acting account into
// the request context. Requests without a valid token never reach the
// handler.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok {
				logger.WarnContext(ctx, "unauthorized access, missing token",
					"request_id", requestcontext.RequestID(ctx),
				)
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}
			claims, err := validator.Validate(raw)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access, invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}
			ctx = requestcontext.WithAccountID(ctx, id.AccountID(claims.AccountID))
			ctx = requestcontext.WithUsername(ctx, claims.Username)
			ctx = requestcontext.WithAffirmByName(ctx, claims.Name)
			ctx = requestcontext.WithStaff(ctx, claims.IsStaff())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"UNAUTHORIZED","error_description":"` + description + `"}`))
}
