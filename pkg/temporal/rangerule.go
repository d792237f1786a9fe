package temporal

import "time"

// RangeRule checks cross-field invariants between two timestamps. It is bound to
// the start and end field names that violations are reported against.
type RangeRule struct {
	startField string
	endField   string
	cfg        Config
}

// NewRangeRule binds cfg to a pair of field names.
func NewRangeRule(startField, endField string, cfg Config) RangeRule {
	return RangeRule{startField: startField, endField: endField, cfg: cfg}
}

func (r RangeRule) StartField() string { return r.startField }
func (r RangeRule) EndField() string { return r.endField }
func (r RangeRule) Config() Config { return r.cfg }

// Evaluate returns every violated range invariant. A null side yields no
// violations. An inverted range reports only the ordering violation.
func (r RangeRule) Evaluate(start, end Timestamp) []Violation {
	if start.IsNull() || end.IsNull() {
		return nil
	}
	return r.evaluate(start.t, end.t)
}

// EvaluateTimes is Evaluate for values that did not pass through a Normalizer,
// such as rows loaded from storage. Offsets are compared as given.
func (r RangeRule) EvaluateTimes(start, end *time.Time) []Violation {
	if start == nil || end == nil {
		return nil
	}
	return r.evaluate(*start, *end)
}

func (r RangeRule) evaluate(start, end time.Time) []Violation {
	if !start.Before(end) {
		return []Violation{{Field: r.startField, Key: KeyRangeOrder}}
	}

	var report Report
	if r.cfg.requireSameDay && !sameUTCDate(start, end) {
		report.Add(r.endField, KeyRangeSameDay)
	}
	if r.cfg.requireSameOffset {
		_, so := start.Zone()
		_, eo := end.Zone()
		if so != eo {
			report.Add(r.endField, KeyRangeSameOffset)
		}
	}

	span := end.Sub(start)
	if limit, ok := r.cfg.MaximumSpan(); ok && span > limit {
		report.Add(r.endField, KeyRangeMaxSpan, limit)
	}
	if minimum, ok := r.cfg.MinimumInterval(); ok && int(span/time.Minute) < minimum {
		report.Add(r.endField, KeyRangeMinInterval, minimum)
	}
	return report.Violations()
}

func sameUTCDate(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
