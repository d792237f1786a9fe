package temporal

import "fmt"

// Binding is the static constraint declared once per request type: two fields
// and the rule configuration applied to them. It is immutable and safe to share
// across goroutines.
type Binding[T any] struct {
	start      Field[T]
	end        Field[T]
	rule       RangeRule
	normalizer *Normalizer
}

// BindingOption configures a Binding.
type BindingOption func(*bindingOptions)

type bindingOptions struct {
	normalizer *Normalizer
}

// WithNormalizer sets the Normalizer used for field extraction.
func WithNormalizer(n *Normalizer) BindingOption {
	return func(o *bindingOptions) {
		if n != nil {
			o.normalizer = n
		}
	}
}

// NewBinding validates the wiring of a constraint. Errors here are programmer
// errors and should stop startup.
func NewBinding[T any](start, end Field[T], cfg Config, opts ...BindingOption) (*Binding[T], error) {
	if start.name == "" || end.name == "" {
		return nil, fmt.Errorf("%w: binding requires two named fields", ErrInvalidConfig)
	}
	if start.name == end.name {
		return nil, fmt.Errorf("%w: start and end both bound to %q", ErrInvalidConfig, start.name)
	}
	if cfg.minAge > 0 {
		return nil, fmt.Errorf("%w: minimum age applies to single values, not ranges", ErrInvalidConfig)
	}
	o := bindingOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.normalizer == nil {
		o.normalizer = NewNormalizer()
	}
	return &Binding[T]{
		start:      start,
		end:        end,
		rule:       NewRangeRule(start.name, end.name, cfg),
		normalizer: o.normalizer,
	}, nil
}

// MustBinding is NewBinding for package-level declarations; it panics on error.
func MustBinding[T any](start, end Field[T], cfg Config, opts ...BindingOption) *Binding[T] {
	b, err := NewBinding(start, end, cfg, opts...)
	if err != nil {
		panic(err)
	}
	return b
}

// Rule returns the range rule evaluated by the binding.
func (b *Binding[T]) Rule() RangeRule { return b.rule }

// Check extracts both fields from target and evaluates the range rule,
// returning the normalized values alongside the violations. Range checks run
// only when both fields extracted cleanly.
func (b *Binding[T]) Check(target T) (start, end Timestamp, violations []Violation) {
	cfg := b.rule.cfg
	var report Report

	so := b.start.Extract(target, b.normalizer, cfg)
	eo := b.end.Extract(target, b.normalizer, cfg)
	startOK := report.AddOutcome(b.start.name, so)
	endOK := report.AddOutcome(b.end.name, eo)
	if startOK && endOK {
		report.Merge("", b.rule.Evaluate(so.Value(), eo.Value())...)
	}
	return so.Value(), eo.Value(), report.Violations()
}

// Validate returns every violation for target. An empty result means target passes.
func (b *Binding[T]) Validate(target T) []Violation {
	_, _, violations := b.Check(target)
	return violations
}
