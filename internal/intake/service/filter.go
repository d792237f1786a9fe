package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync/atomic"

	"hydration/internal/intake/models"
	"hydration/internal/platform/messages"
	"hydration/internal/policy"
	"hydration/pkg/temporal"
)

const defaultSortField = "consumedAt"

var (
	fromField = temporal.StringField("from", func(r *models.SearchRequest) *string { return r.From })
	toField   = temporal.StringField("to", func(r *models.SearchRequest) *string { return r.To })
)

type compiledFilter struct {
	policy  *policy.Policy
	binding *temporal.Binding[*models.SearchRequest]
}

// FilterValidator checks search parameters against the current policy.
type FilterValidator struct {
	holder *policy.Holder
	cache  atomic.Pointer[compiledFilter]
}

func NewFilterValidator(holder *policy.Holder) *FilterValidator {
	return &FilterValidator{holder: holder}
}

func (v *FilterValidator) compile(p *policy.Policy) (*compiledFilter, error) {
	if c := v.cache.Load(); c != nil && c.policy == p {
		return c, nil
	}
	cfg, err := temporal.NewConfig(temporal.MaximumSpan(p.Intake.MaxSearchSpan))
	if err != nil {
		return nil, fmt.Errorf("search rule config: %w", err)
	}
	b, err := temporal.NewBinding(fromField, toField, cfg)
	if err != nil {
		return nil, fmt.Errorf("search binding: %w", err)
	}
	c := &compiledFilter{policy: p, binding: b}
	v.cache.Store(c)
	return c, nil
}

// Validate turns raw query parameters into a Filter, or returns a
// *temporal.ValidationError with every problem found.
func (v *FilterValidator) Validate(req *models.SearchRequest) (*models.Filter, error) {
	p := v.holder.Current()
	c, err := v.compile(p)
	if err != nil {
		return nil, err
	}
	rules := p.Intake

	var report temporal.Report
	from, to, violations := c.binding.Check(req)
	report.Merge("", violations...)

	minVolume := parseOptionalInt(&report, "minVolume", req.MinVolume)
	maxVolume := parseOptionalInt(&report, "maxVolume", req.MaxVolume)
	if minVolume != nil && maxVolume != nil && *minVolume > *maxVolume {
		report.Add("minVolume", messages.KeyFilterVolumeRange)
	}

	sortField := strings.TrimSpace(req.SortField)
	if sortField == "" {
		sortField = defaultSortField
	} else if !rules.AllowsSortField(sortField) {
		report.Add("sortField", messages.KeyFilterSortField, rules.SortFields)
	}

	direction := strings.ToUpper(strings.TrimSpace(req.SortDirection))
	switch direction {
	case "":
		direction = models.SortDesc
	case models.SortAsc, models.SortDesc:
	default:
		report.Add("sortDirection", messages.KeyFilterSortDirection)
	}

	page := 0
	if n := parseOptionalInt(&report, "page", req.Page); n != nil {
		if *n < 0 {
			report.Add("page", messages.KeyFilterPage)
		}
		page = *n
	}
	size := rules.DefaultPageSize
	if n := parseOptionalInt(&report, "size", req.Size); n != nil {
		if *n < 1 || *n > rules.MaxPageSize {
			report.Add("size", messages.KeyFilterPageSize, rules.MaxPageSize)
		}
		size = *n
	}
	// The row offset page*size must stay representable.
	if page > 0 && size >= 1 && page > (math.MaxInt-size)/size {
		report.Add("page", messages.KeyFilterPage)
	}

	if err := report.Err(); err != nil {
		return nil, err
	}
	return &models.Filter{
		From:          from.Ptr(),
		To:            to.Ptr(),
		MinVolume:     minVolume,
		MaxVolume:     maxVolume,
		SortField:     sortField,
		SortDirection: direction,
		Page:          page,
		Size:          size,
	}, nil
}

func parseOptionalInt(report *temporal.Report, field, raw string) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		report.Add(field, messages.KeyInvalidNumber)
		return nil
	}
	return &n
}
