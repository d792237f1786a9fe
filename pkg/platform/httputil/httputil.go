// Package httputil holds the JSON envelope helpers shared by all handlers.
package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	dErrors "hydration/pkg/domain-errors"
	"hydration/pkg/temporal"
)

// MaxBodyBytes caps request bodies decoded by DecodeJSON.
const MaxBodyBytes = 1 << 20

// Renderer resolves a message key and its arguments into display text.
type Renderer interface {
	Render(key string, args ...any) string
}

// ErrorResponse is the envelope for non-validation errors.
type ErrorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

// FieldError is one rendered violation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Key     string `json:"key"`
}

// ValidationResponse is the 400 envelope carrying one entry per violation.
type ValidationResponse struct {
	Error      string       `json:"error"`
	Violations []FieldError `json:"violations"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// DecodeJSON decodes a single JSON document from the request body, rejecting
// unknown fields.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request body")
	}
	return nil
}

// WriteError translates err into an HTTP response. Validation errors are
// rendered through renderer; internal errors never leak their description.
func WriteError(w http.ResponseWriter, err error) {
	WriteErrorWith(w, nil, err)
}

// WriteErrorWith is WriteError with a message renderer for validation errors.
func WriteErrorWith(w http.ResponseWriter, renderer Renderer, err error) {
	var verr *temporal.ValidationError
	if errors.As(err, &verr) {
		WriteViolations(w, renderer, verr.Violations)
		return
	}

	code := dErrors.CodeOf(err)
	resp := ErrorResponse{Error: string(code)}
	if code != dErrors.CodeInternal {
		var de *dErrors.Error
		if errors.As(err, &de) {
			resp.Description = de.Message
		}
	}
	WriteJSON(w, dErrors.ToHTTPStatus(code), resp)
}

// WriteViolations writes a 400 response with one entry per violation, in order.
// Without a renderer the message falls back to the key.
func WriteViolations(w http.ResponseWriter, renderer Renderer, violations []temporal.Violation) {
	out := make([]FieldError, 0, len(violations))
	for _, v := range violations {
		msg := v.Key
		if renderer != nil {
			msg = renderer.Render(v.Key, v.Args...)
		}
		out = append(out, FieldError{Field: v.Field, Message: msg, Key: v.Key})
	}
	WriteJSON(w, http.StatusBadRequest, ValidationResponse{
		Error:      string(dErrors.CodeValidation),
		Violations: out,
	})
}
