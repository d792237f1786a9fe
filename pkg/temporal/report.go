package temporal

import (
	"fmt"
	"strings"
)

// Violation is one field-scoped failure. Key is a message key, not rendered text.
type Violation struct {
	Field string
	Key   string
	Args  []any
}

func (v Violation) String() string {
	if len(v.Args) == 0 {
		return v.Field + ": " + v.Key
	}
	return fmt.Sprintf("%s: %s %v", v.Field, v.Key, v.Args)
}

// Report accumulates violations for one validation pass over one target.
// Order is insertion order; nothing is deduplicated. The zero value is ready to use.
// A Report is not safe for concurrent use; create one per pass.
type Report struct {
	violations []Violation
}

// Add records a violation.
func (r *Report) Add(field, key string, args ...any) {
	r.violations = append(r.violations, Violation{Field: field, Key: key, Args: append([]any(nil), args...)})
}

// AddOutcome records o against field when it is Invalid and reports whether o was valid.
func (r *Report) AddOutcome(field string, o Outcome) bool {
	if o.IsValid() {
		return true
	}
	r.Add(field, o.key, o.args...)
	return false
}

// Merge appends vs, prefixing each field with prefix and a dot when prefix is set.
func (r *Report) Merge(prefix string, vs ...Violation) {
	for _, v := range vs {
		if prefix != "" {
			v.Field = prefix + "." + v.Field
		}
		r.violations = append(r.violations, v)
	}
}

func (r *Report) IsValid() bool { return len(r.violations) == 0 }

func (r *Report) Len() int { return len(r.violations) }

// Violations returns a copy of the accumulated list.
func (r *Report) Violations() []Violation {
	if len(r.violations) == 0 {
		return nil
	}
	out := make([]Violation, len(r.violations))
	copy(out, r.violations)
	return out
}

// Err returns nil when the report is valid, otherwise a *ValidationError.
func (r *Report) Err() error {
	if r.IsValid() {
		return nil
	}
	return &ValidationError{Violations: r.Violations()}
}

// ValidationError carries a non-empty violation list across layers.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.String())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
