package temporal

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig reports a contradictory or out-of-range rule configuration.
// It is a wiring error and is never surfaced as a Violation.
var ErrInvalidConfig = errors.New("invalid temporal rule configuration")

// Config is the immutable set of flags and thresholds that controls which
// temporal invariants are enforced. Build it with NewConfig.
//
// Invariants:
//   - at most one of RequirePast / RequireFuture is set
//   - MinimumIntervalMinutes, MaximumSpan and MinimumAge are positive when present
type Config struct {
	allowSubSecond    bool
	requirePast       bool
	requireFuture     bool
	requireSameDay    bool
	requireSameOffset bool
	minInterval       int
	maxSpan           time.Duration
	minAge            int
}

// Option configures a Config during construction.
type Option func(*Config)

// AllowSubSecondPrecision accepts timestamps with non-zero fractional seconds.
func AllowSubSecondPrecision() Option {
	return func(c *Config) { c.allowSubSecond = true }
}

// RequirePast rejects timestamps strictly after the evaluation time.
func RequirePast() Option {
	return func(c *Config) { c.requirePast = true }
}

// RequireFuture rejects timestamps at or before the evaluation time.
func RequireFuture() Option {
	return func(c *Config) { c.requireFuture = true }
}

// RequireSameDay requires both ends of a range to share a UTC calendar date.
func RequireSameDay() Option {
	return func(c *Config) { c.requireSameDay = true }
}

// RequireSameOffset requires both ends of a range to carry the same offset.
func RequireSameOffset() Option {
	return func(c *Config) { c.requireSameOffset = true }
}

// MinimumIntervalMinutes requires end-start to be at least the given number of whole minutes.
func MinimumIntervalMinutes(minutes int) Option {
	return func(c *Config) { c.minInterval = minutes }
}

// MaximumSpan caps end-start.
func MaximumSpan(span time.Duration) Option {
	return func(c *Config) { c.maxSpan = span }
}

// MinimumAge requires a single birth-date style value to be at least the given
// number of whole calendar years before today.
func MinimumAge(years int) Option {
	return func(c *Config) { c.minAge = years }
}

// NewConfig builds an immutable Config. Zero-valued thresholds mean "not set";
// negative ones and contradictory flags are rejected with ErrInvalidConfig.
func NewConfig(opts ...Option) (Config, error) {
	var c Config
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}
	if c.requirePast && c.requireFuture {
		return Config{}, fmt.Errorf("%w: past and future are mutually exclusive", ErrInvalidConfig)
	}
	if c.minInterval < 0 {
		return Config{}, fmt.Errorf("%w: minimum interval must be positive, got %d", ErrInvalidConfig, c.minInterval)
	}
	if c.maxSpan < 0 {
		return Config{}, fmt.Errorf("%w: maximum span must be positive, got %s", ErrInvalidConfig, c.maxSpan)
	}
	if c.minAge < 0 {
		return Config{}, fmt.Errorf("%w: minimum age must be positive, got %d", ErrInvalidConfig, c.minAge)
	}
	return c, nil
}

// MustConfig is NewConfig for package-level declarations; it panics on error.
func MustConfig(opts ...Option) Config {
	c, err := NewConfig(opts...)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Config) AllowsSubSecond() bool { return c.allowSubSecond }
func (c Config) RequiresPast() bool { return c.requirePast }
func (c Config) RequiresFuture() bool { return c.requireFuture }
func (c Config) RequiresSameDay() bool { return c.requireSameDay }
func (c Config) RequiresSameOffset() bool { return c.requireSameOffset }

// MinimumInterval returns the configured minimum interval in minutes and whether it is set.
func (c Config) MinimumInterval() (int, bool) {
	return c.minInterval, c.minInterval > 0
}

// MaximumSpan returns the configured maximum span and whether it is set.
func (c Config) MaximumSpan() (time.Duration, bool) {
	return c.maxSpan, c.maxSpan > 0
}

// MinimumAge returns the configured minimum age in years and whether it is set.
func (c Config) MinimumAge() (int, bool) {
	return c.minAge, c.minAge > 0
}
