package service

import (
	"errors"
	"math"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"hydration/internal/intake/models"
	"hydration/internal/platform/messages"
	"hydration/internal/policy"
	"hydration/pkg/temporal"
)

type FilterSuite struct {
	suite.Suite
	validator *FilterValidator
}

func TestFilterSuite(t *testing.T) {
	suite.Run(t, new(FilterSuite))
}

func (s *FilterSuite) SetupTest() {
	s.validator = NewFilterValidator(policy.Static(policy.Default()))
}

func ptr[T any](v T) *T { return &v }

func violationKeys(err error) []string {
	var verr *temporal.ValidationError
	if !errors.As(err, &verr) {
		return nil
	}
	out := make([]string, 0, len(verr.Violations))
	for _, v := range verr.Violations {
		out = append(out, v.Field+"="+v.Key)
	}
	return out
}

func (s *FilterSuite) TestDefaults() {
	f, err := s.validator.Validate(&models.SearchRequest{})
	s.Require().NoError(err)
	s.Nil(f.From)
	s.Equal("consumedAt", f.SortField)
	s.Equal(models.SortDesc, f.SortDirection)
	s.Equal(0, f.Page)
	s.Equal(20, f.Size)
}

func (s *FilterSuite) TestValidFilter() {
	f, err := s.validator.Validate(&models.SearchRequest{
		From:          ptr("2024-06-01T00:00:00Z"),
		To:            ptr("2024-06-15T00:00:00Z"),
		MinVolume:     "100",
		MaxVolume:     "500",
		SortField:     "volumeMl",
		SortDirection: "asc",
		Page:          "2",
		Size:          "50",
	})
	s.Require().NoError(err)
	s.Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), *f.From)
	s.Equal(100, *f.MinVolume)
	s.Equal(models.SortAsc, f.SortDirection)
	s.Equal(50, f.Size)
}

func (s *FilterSuite) TestViolations() {
	s.Run("span over the policy limit", func() {
		_, err := s.validator.Validate(&models.SearchRequest{
			From: ptr("2024-01-01T00:00:00Z"),
			To:   ptr("2024-03-01T00:00:00Z"),
		})
		s.Equal([]string{"to=" + temporal.KeyRangeMaxSpan}, violationKeys(err))
	})

	s.Run("inverted range", func() {
		_, err := s.validator.Validate(&models.SearchRequest{
			From: ptr("2024-01-02T00:00:00Z"),
			To:   ptr("2024-01-01T00:00:00Z"),
		})
		s.Equal([]string{"from=" + temporal.KeyRangeOrder}, violationKeys(err))
	})

	s.Run("every filter problem reported together", func() {
		_, err := s.validator.Validate(&models.SearchRequest{
			From:          ptr("2024-01-01"),
			MinVolume:     "900",
			MaxVolume:     "100",
			SortField:     "password",
			SortDirection: "sideways",
			Page:          "-1",
			Size:          "101",
		})
		s.Equal([]string{
			"from=" + temporal.KeyInvalidFormat,
			"minVolume=" + messages.KeyFilterVolumeRange,
			"sortField=" + messages.KeyFilterSortField,
			"sortDirection=" + messages.KeyFilterSortDirection,
			"page=" + messages.KeyFilterPage,
			"size=" + messages.KeyFilterPageSize,
		}, violationKeys(err))
	})

	s.Run("page whose row offset overflows", func() {
		_, err := s.validator.Validate(&models.SearchRequest{Page: "9223372036854775807", Size: "20"})
		s.Equal([]string{"page=" + messages.KeyFilterPage}, violationKeys(err))
	})

	s.Run("largest page with a representable offset", func() {
		f, err := s.validator.Validate(&models.SearchRequest{Page: strconv.Itoa(math.MaxInt/20 - 1), Size: "20"})
		s.Require().NoError(err)
		s.Equal(math.MaxInt/20-1, f.Page)
	})

	s.Run("non-numeric volume", func() {
		_, err := s.validator.Validate(&models.SearchRequest{MinVolume: "lots"})
		s.Equal([]string{"minVolume=" + messages.KeyInvalidNumber}, violationKeys(err))
	})
}
