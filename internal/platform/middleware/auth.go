package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	id "hydration/pkg/domain"
	"hydration/pkg/requestcontext"
)

// Identity is the caller as asserted by the identity provider.
type Identity struct {
	Subject string
	Email   string
	Name    string
}

// TokenVerifier validates a bearer token issued by the identity provider.
type TokenVerifier interface {
	VerifyToken(tokenString string) (*Identity, error)
}

// UserResolver maps an identity provider subject to the local user, provisioning
// it on first sight.
type UserResolver interface {
	ResolveUser(ctx context.Context, identity *Identity) (id.UserID, error)
}

// writeJSONError writes a JSON error response with the given status code and error details.
func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + errCode + `","error_description":"` + errDesc + `"}`))
}

// RequireAuth rejects requests without a valid bearer token and stores the
// caller's subject and resolved user ID in the request context.
func RequireAuth(verifier TokenVerifier, resolver UserResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			identity, err := verifier.VerifyToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"request_id", requestID,
					"error", err,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			userID, err := resolver.ResolveUser(ctx, identity)
			if err != nil {
				logger.ErrorContext(ctx, "failed to resolve user for subject",
					"request_id", requestID,
					"error", err,
				)
				writeJSONError(w, http.StatusInternalServerError, "internal_error", "Unable to resolve user")
				return
			}

			ctx = requestcontext.WithSubject(ctx, identity.Subject)
			ctx = requestcontext.WithUserID(ctx, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
