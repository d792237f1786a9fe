package temporal

import (
	"fmt"
	"time"
)

// Clock returns the evaluation-time instant.
type Clock func() time.Time

// Normalizer validates single temporal values and produces Timestamps.
// It holds no request state and is safe for concurrent use.
type Normalizer struct {
	clock Clock
}

// NormalizerOption configures a Normalizer.
type NormalizerOption func(*Normalizer)

// WithClock overrides the clock used for past/future/age checks.
func WithClock(clock Clock) NormalizerOption {
	return func(n *Normalizer) {
		if clock != nil {
			n.clock = clock
		}
	}
}

// NewNormalizer returns a Normalizer reading time.Now unless WithClock is given.
func NewNormalizer(opts ...NormalizerOption) *Normalizer {
	n := &Normalizer{clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(n)
		}
	}
	return n
}

// ParseTimestamp parses an ISO-8601 offset date-time. Fractional seconds are optional;
// the offset is mandatory.
func ParseTimestamp(raw string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, raw)
}

// Normalize checks raw against cfg. raw may be nil, string, *string, time.Time or
// *time.Time; absence yields Valid(null). Any other type panics, since it means a
// field was bound to something that is not a timestamp.
func (n *Normalizer) Normalize(raw any, cfg Config) Outcome {
	switch v := raw.(type) {
	case nil:
		return Valid(Timestamp{})
	case string:
		return n.NormalizeString(v, cfg)
	case *string:
		if v == nil {
			return Valid(Timestamp{})
		}
		return n.NormalizeString(*v, cfg)
	case time.Time:
		return n.NormalizeTime(v, cfg)
	case *time.Time:
		if v == nil {
			return Valid(Timestamp{})
		}
		return n.NormalizeTime(*v, cfg)
	default:
		panic(fmt.Sprintf("temporal: unsupported value type %T", raw))
	}
}

// NormalizeString parses raw and then applies NormalizeTime.
func (n *Normalizer) NormalizeString(raw string, cfg Config) Outcome {
	t, err := ParseTimestamp(raw)
	if err != nil {
		return Invalid(KeyInvalidFormat)
	}
	return n.NormalizeTime(t, cfg)
}

// NormalizeTime enforces the UTC offset, precision, past/future and age rules.
// Checks run in that order and stop at the first failure.
func (n *Normalizer) NormalizeTime(t time.Time, cfg Config) Outcome {
	if _, offset := t.Zone(); offset != 0 {
		return Invalid(KeyUTCTimezone)
	}
	if !cfg.allowSubSecond && t.Nanosecond() != 0 {
		return Invalid(KeyNoMilliseconds)
	}
	t = t.UTC()

	needsNow := cfg.requirePast || cfg.requireFuture || cfg.minAge > 0
	if !needsNow {
		return Valid(Timestamp{t: t, set: true})
	}

	now := n.clock().UTC()
	if cfg.requirePast && t.After(now) {
		return Invalid(KeyMustPast)
	}
	if cfg.requireFuture && !t.After(now) {
		return Invalid(KeyMustFuture)
	}
	if cfg.minAge > 0 && AgeInYears(t, now) < cfg.minAge {
		return Invalid(KeyMinimumAge, cfg.minAge)
	}
	return Valid(Timestamp{t: t, set: true})
}

// AgeInYears returns the number of whole calendar years between the date of born
// and the date of now. Time of day is ignored.
func AgeInYears(born, now time.Time) int {
	by, bm, bd := born.Date()
	ny, nm, nd := now.Date()
	age := ny - by
	if nm < bm || (nm == bm && nd < bd) {
		age--
	}
	return age
}
