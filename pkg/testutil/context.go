package testutil

import (
	"net/http"
	"time"

	id "hydration/pkg/domain"
	"hydration/pkg/requestcontext"
)

// WithUserID adds a resolved user ID to the request context, as the auth
// middleware does for authenticated requests.
func WithUserID(req *http.Request, userID id.UserID) *http.Request {
	return req.WithContext(requestcontext.WithUserID(req.Context(), userID))
}

// WithTime pins the request-scoped clock.
func WithTime(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}
