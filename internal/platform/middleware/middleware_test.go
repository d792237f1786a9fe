package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hydration/internal/platform/logger"
	id "hydration/pkg/domain"
	"hydration/pkg/requestcontext"
)

type stubVerifier struct{}

func (stubVerifier) VerifyToken(token string) (*Identity, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return &Identity{Subject: "sub-1", Email: "a@example.com"}, nil
}

type stubResolver struct {
	userID id.UserID
	err    error
}

func (r stubResolver) ResolveUser(context.Context, *Identity) (id.UserID, error) {
	return r.userID, r.err
}

func TestRequireAuth(t *testing.T) {
	userID := id.NewUserID()
	var seen id.UserID
	var subject string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestcontext.UserID(r.Context())
		subject = requestcontext.Subject(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	serve := func(resolver UserResolver, header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		RequireAuth(stubVerifier{}, resolver, logger.Discard())(next).ServeHTTP(rec, req)
		return rec
	}

	t.Run("missing header", func(t *testing.T) {
		rec := serve(stubResolver{userID: userID}, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), `"unauthorized"`)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		rec := serve(stubResolver{userID: userID}, "Basic good")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		rec := serve(stubResolver{userID: userID}, "Bearer nope")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("resolver failure", func(t *testing.T) {
		rec := serve(stubResolver{err: errors.New("db down")}, "Bearer good")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("valid token populates context", func(t *testing.T) {
		rec := serve(stubResolver{userID: userID}, "Bearer good")
		require.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, userID, seen)
		assert.Equal(t, "sub-1", subject)
	})
}

func TestRequestID(t *testing.T) {
	var got string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetRequestID(r.Context())
	}))

	t.Run("inbound uuid is kept", func(t *testing.T) {
		const inbound = "3f2b8c1e-4d5a-4b6c-9d7e-8f9a0b1c2d3e"
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, inbound)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, inbound, got)
		assert.Equal(t, inbound, rec.Header().Get(RequestIDHeader))
	})

	t.Run("garbage is replaced", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "<script>")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Len(t, got, 36)
		assert.NotEqual(t, "<script>", got)
	})
}

func TestRecovery(t *testing.T) {
	h := Recovery(logger.Discard())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal_error")
}

func TestRequireJSON(t *testing.T) {
	h := RequireJSON(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("volumeMl=250"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"volumeMl":250}`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoggerRecordsStatus(t *testing.T) {
	h := Logger(logger.Discard(), nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
