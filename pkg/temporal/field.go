package temporal

import "time"

// Field binds a request field name to an accessor that reads it from T.
// Only temporal and string fields can be bound; the constructors enforce that
// at compile time and reject blank names or nil accessors with a panic.
type Field[T any] struct {
	name     string
	timeOf   func(T) *time.Time
	stringOf func(T) *string
}

// TimeField binds a field already decoded as a time.
func TimeField[T any](name string, get func(T) *time.Time) Field[T] {
	mustBindable(name, get == nil)
	return Field[T]{name: name, timeOf: get}
}

// StringField binds a field carrying an ISO-8601 string.
func StringField[T any](name string, get func(T) *string) Field[T] {
	mustBindable(name, get == nil)
	return Field[T]{name: name, stringOf: get}
}

func mustBindable(name string, nilAccessor bool) {
	if name == "" {
		panic("temporal: field name is required")
	}
	if nilAccessor {
		panic("temporal: field " + name + " has no accessor")
	}
}

// Name returns the externally visible field path.
func (f Field[T]) Name() string { return f.name }

// Extract reads the field from target and normalizes it under cfg.
// A malformed string is an Invalid outcome, not an error.
func (f Field[T]) Extract(target T, n *Normalizer, cfg Config) Outcome {
	switch {
	case f.timeOf != nil:
		v := f.timeOf(target)
		if v == nil {
			return Valid(Timestamp{})
		}
		return n.NormalizeTime(*v, cfg)
	case f.stringOf != nil:
		v := f.stringOf(target)
		if v == nil {
			return Valid(Timestamp{})
		}
		t, err := ParseTimestamp(*v)
		if err != nil {
			return Invalid(KeyInvalidFormat)
		}
		return n.NormalizeTime(t, cfg)
	default:
		panic("temporal: unbound field")
	}
}
