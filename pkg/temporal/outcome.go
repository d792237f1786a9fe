package temporal

import "time"

// Message keys emitted by the engine. Rendering them is the caller's concern.
const (
	KeyInvalidFormat    = "datetime.invalid.format"
	KeyUTCTimezone      = "datetime.utc.timezone"
	KeyNoMilliseconds   = "datetime.no.milliseconds"
	KeyMustPast         = "datetime.must.past"
	KeyMustFuture       = "datetime.must.future"
	KeyMinimumAge       = "datetime.minimum.age"
	KeyRangeOrder       = "time.range.order"
	KeyRangeSameDay     = "time.range.same.day"
	KeyRangeSameOffset  = "time.range.same.offset"
	KeyRangeMaxSpan     = "time.range.max.span"
	KeyRangeMinInterval = "time.range.min.interval"
)

// Timestamp is a point in time known to carry a UTC offset and a conforming
// sub-second precision. Only the Normalizer produces non-null values.
type Timestamp struct {
	t   time.Time
	set bool
}

// IsNull reports whether the timestamp represents an absent value.
func (ts Timestamp) IsNull() bool { return !ts.set }

// Time returns the UTC time. It is the zero time for a null Timestamp.
func (ts Timestamp) Time() time.Time { return ts.t }

// Ptr returns nil for a null Timestamp, otherwise a pointer to a copy of the time.
func (ts Timestamp) Ptr() *time.Time {
	if !ts.set {
		return nil
	}
	t := ts.t
	return &t
}

// Outcome is the result of checking a single temporal value: either Valid
// carrying the (possibly null) normalized value, or Invalid carrying a message
// key and positional arguments.
type Outcome struct {
	value   Timestamp
	invalid bool
	key     string
	args    []any
}

// Valid builds a successful Outcome.
func Valid(ts Timestamp) Outcome {
	return Outcome{value: ts}
}

// Invalid builds a failed Outcome. args are copied.
func Invalid(key string, args ...any) Outcome {
	return Outcome{invalid: true, key: key, args: append([]any(nil), args...)}
}

func (o Outcome) IsValid() bool { return !o.invalid }

// Value returns the normalized timestamp; null when the outcome is Invalid.
func (o Outcome) Value() Timestamp { return o.value }

// MessageKey returns the failure key, or "" for a Valid outcome.
func (o Outcome) MessageKey() string { return o.key }

// Args returns a copy of the failure arguments.
func (o Outcome) Args() []any { return append([]any(nil), o.args...) }
