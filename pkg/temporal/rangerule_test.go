package temporal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type RangeRuleSuite struct {
	suite.Suite
	n *Normalizer
}

func TestRangeRuleSuite(t *testing.T) {
	suite.Run(t, new(RangeRuleSuite))
}

func (s *RangeRuleSuite) SetupTest() {
	s.n = NewNormalizer()
}

func (s *RangeRuleSuite) ts(raw string) Timestamp {
	out := s.n.Normalize(raw, MustConfig())
	s.Require().True(out.IsValid(), "fixture %s must normalize", raw)
	return out.Value()
}

func keys(vs []Violation) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.Key)
	}
	return out
}

func (s *RangeRuleSuite) TestOrdering() {
	rule := NewRangeRule("start", "end", MustConfig(RequireSameDay()))

	s.Run("inverted range short-circuits", func() {
		vs := rule.Evaluate(s.ts("2024-01-01T10:00:00Z"), s.ts("2024-01-01T09:00:00Z"))
		s.Equal([]string{KeyRangeOrder}, keys(vs))
		s.Equal("start", vs[0].Field)
		s.NotContains(keys(vs), KeyRangeSameDay)
	})

	s.Run("equal instants are not strictly ordered", func() {
		vs := rule.Evaluate(s.ts("2024-01-01T10:00:00Z"), s.ts("2024-01-01T10:00:00Z"))
		s.Equal([]string{KeyRangeOrder}, keys(vs))
	})

	s.Run("ordered range passes", func() {
		vs := rule.Evaluate(s.ts("2024-01-01T09:00:00Z"), s.ts("2024-01-01T10:00:00Z"))
		s.Empty(vs)
	})
}

func (s *RangeRuleSuite) TestNullPassthrough() {
	rule := NewRangeRule("start", "end", MustConfig(RequireSameDay(), MaximumSpan(time.Hour)))
	some := s.ts("2024-01-01T09:00:00Z")

	s.Empty(rule.Evaluate(Timestamp{}, some))
	s.Empty(rule.Evaluate(some, Timestamp{}))
	s.Empty(rule.EvaluateTimes(nil, nil))
}

func (s *RangeRuleSuite) TestSameDay() {
	rule := NewRangeRule("start", "end", MustConfig(RequireSameDay()))
	vs := rule.Evaluate(s.ts("2024-01-01T23:00:00Z"), s.ts("2024-01-02T01:00:00Z"))
	s.Require().Len(vs, 1)
	s.Equal(KeyRangeSameDay, vs[0].Key)
	s.Equal("end", vs[0].Field)
}

func (s *RangeRuleSuite) TestSameOffset() {
	rule := NewRangeRule("start", "end", MustConfig(RequireSameOffset()))

	s.Run("normalized values always share an offset", func() {
		vs := rule.Evaluate(s.ts("2024-01-01T08:00:00Z"), s.ts("2024-01-01T09:00:00Z"))
		s.Empty(vs)
	})

	s.Run("raw values with different offsets are reported", func() {
		start := time.Date(2024, 1, 1, 8, 0, 0, 0, time.FixedZone("CET", 3600))
		end := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
		vs := rule.EvaluateTimes(&start, &end)
		s.Equal([]string{KeyRangeSameOffset}, keys(vs))
	})
}

func (s *RangeRuleSuite) TestMaximumSpan() {
	rule := NewRangeRule("from", "to", MustConfig(MaximumSpan(2*time.Hour)))

	s.Run("span at limit passes", func() {
		s.Empty(rule.Evaluate(s.ts("2024-01-01T08:00:00Z"), s.ts("2024-01-01T10:00:00Z")))
	})

	s.Run("span over limit reports limit", func() {
		vs := rule.Evaluate(s.ts("2024-01-01T08:00:00Z"), s.ts("2024-01-01T10:00:01Z"))
		s.Require().Len(vs, 1)
		s.Equal(KeyRangeMaxSpan, vs[0].Key)
		s.Equal([]any{2 * time.Hour}, vs[0].Args)
	})
}

func (s *RangeRuleSuite) TestMinimumInterval() {
	rule := NewRangeRule("start", "end", MustConfig(MinimumIntervalMinutes(30)))

	s.Run("partial minutes do not count", func() {
		vs := rule.Evaluate(s.ts("2024-01-01T08:00:00Z"), s.ts("2024-01-01T08:29:59Z"))
		s.Equal([]string{KeyRangeMinInterval}, keys(vs))
		s.Equal([]any{30}, vs[0].Args)
	})

	s.Run("exact minimum passes", func() {
		s.Empty(rule.Evaluate(s.ts("2024-01-01T08:00:00Z"), s.ts("2024-01-01T08:30:00Z")))
	})
}

func (s *RangeRuleSuite) TestReportsEveryViolatedRule() {
	rule := NewRangeRule("start", "end", MustConfig(RequireSameDay(), MaximumSpan(time.Hour)))
	vs := rule.Evaluate(s.ts("2024-01-01T23:00:00Z"), s.ts("2024-01-02T01:00:00Z"))
	s.Equal([]string{KeyRangeSameDay, KeyRangeMaxSpan}, keys(vs))
}
