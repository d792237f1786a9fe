package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"hydration/internal/events"
	"hydration/internal/intake/models"
	"hydration/internal/platform/messages"
	"hydration/internal/platform/metrics"
	"hydration/internal/policy"
	id "hydration/pkg/domain"
	dErrors "hydration/pkg/domain-errors"
	"hydration/pkg/platform/sentinel"
	"hydration/pkg/requestcontext"
	"hydration/pkg/temporal"
)

const dateLayout = "2006-01-02"

var tracer = otel.Tracer("hydration/intake")

// Store persists intakes. Implementations return sentinel errors.
type Store interface {
	Save(ctx context.Context, intake *models.Intake) error
	Delete(ctx context.Context, userID id.UserID, intakeID id.IntakeID) (*models.Intake, error)
	DeleteByUser(ctx context.Context, userID id.UserID) error
	Search(ctx context.Context, userID id.UserID, f models.Filter) ([]*models.Intake, int, error)
	SumBetween(ctx context.Context, userID id.UserID, from, to time.Time) (total, count int, err error)
}

// SummaryCache caches daily summaries keyed by user and UTC date.
type SummaryCache interface {
	Get(ctx context.Context, userID id.UserID, date string) (*models.DailySummary, bool, error)
	Set(ctx context.Context, userID id.UserID, summary *models.DailySummary) error
	Invalidate(ctx context.Context, userID id.UserID, date string) error
}

// GoalProvider supplies a user's daily target.
type GoalProvider interface {
	DailyGoal(ctx context.Context, userID id.UserID) (int, error)
}

// Service logs, searches and summarizes intakes.
type Service struct {
	store   Store
	goals   GoalProvider
	cache   SummaryCache
	policy  *policy.Holder
	filters *FilterValidator
	events  *events.Publisher
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithSummaryCache enables caching of daily summaries.
func WithSummaryCache(c SummaryCache) Option {
	return func(s *Service) { s.cache = c }
}

func WithEvents(p *events.Publisher) Option {
	return func(s *Service) { s.events = p }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(store Store, goals GoalProvider, holder *policy.Holder, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:   store,
		goals:   goals,
		policy:  holder,
		filters: NewFilterValidator(holder),
		logger:  logger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Log validates and records a drink.
func (s *Service) Log(ctx context.Context, userID id.UserID, req models.LogRequest) (*models.Intake, error) {
	ctx, span := tracer.Start(ctx, "intake.Log")
	defer span.End()

	now := requestcontext.Now(ctx)
	consumedAt, err := s.validateLog(now, req)
	if err != nil {
		return nil, err
	}

	intake := &models.Intake{
		ID:         id.NewIntakeID(),
		UserID:     userID,
		VolumeMl:   *req.VolumeMl,
		ConsumedAt: consumedAt,
		CreatedAt:  now,
	}
	if err := s.store.Save(ctx, intake); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save intake")
	}
	span.SetAttributes(attribute.Int("intake.volume_ml", intake.VolumeMl))

	s.invalidate(ctx, userID, intake.ConsumedAt)
	s.metrics.IncrementIntakesLogged()
	s.events.Emit(ctx, events.Event{
		Type:   events.TypeIntakeLogged,
		UserID: userID.String(),
		Data: map[string]any{
			"intakeId":   intake.ID.String(),
			"volumeMl":   intake.VolumeMl,
			"consumedAt": intake.ConsumedAt,
		},
	})
	return intake, nil
}

func (s *Service) validateLog(now time.Time, req models.LogRequest) (time.Time, error) {
	rules := s.policy.Current().Intake
	var report temporal.Report

	switch {
	case req.VolumeMl == nil:
		report.Add("volumeMl", messages.KeyRequired)
	case *req.VolumeMl < rules.MinVolumeMl || *req.VolumeMl > rules.MaxVolumeMl:
		report.Add("volumeMl", messages.KeyIntakeVolumeRange, rules.MinVolumeMl, rules.MaxVolumeMl)
	}

	var consumedAt time.Time
	if req.ConsumedAt == nil {
		report.Add("consumedAt", messages.KeyRequired)
	} else {
		n := temporal.NewNormalizer(temporal.WithClock(func() time.Time { return now }))
		out := n.Normalize(req.ConsumedAt, temporal.MustConfig(temporal.RequirePast()))
		if report.AddOutcome("consumedAt", out) {
			consumedAt = out.Value().Time()
			if rules.BackfillWindow > 0 && consumedAt.Before(now.Add(-rules.BackfillWindow)) {
				report.Add("consumedAt", messages.KeyIntakeBackfill, rules.BackfillWindow)
			}
		}
	}
	return consumedAt, report.Err()
}

// Search validates the filter and returns one page of the user's intakes.
func (s *Service) Search(ctx context.Context, userID id.UserID, req *models.SearchRequest) (*models.Page, error) {
	ctx, span := tracer.Start(ctx, "intake.Search")
	defer span.End()

	f, err := s.filters.Validate(req)
	if err != nil {
		var verr *temporal.ValidationError
		if errors.As(err, &verr) {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "search rules unavailable")
	}
	items, total, err := s.store.Search(ctx, userID, *f)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to search intakes")
	}
	if items == nil {
		items = []*models.Intake{}
	}
	return &models.Page{Items: items, Page: f.Page, Size: f.Size, Total: total}, nil
}

// Delete removes one of the user's intakes.
func (s *Service) Delete(ctx context.Context, userID id.UserID, intakeID id.IntakeID) error {
	intake, err := s.store.Delete(ctx, userID, intakeID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "intake not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete intake")
	}
	s.invalidate(ctx, userID, intake.ConsumedAt)
	s.events.Emit(ctx, events.Event{
		Type:   events.TypeIntakeDeleted,
		UserID: userID.String(),
		Data:   map[string]any{"intakeId": intakeID.String()},
	})
	return nil
}

// Today returns the user's total for the current UTC day against their goal.
func (s *Service) Today(ctx context.Context, userID id.UserID) (*models.DailySummary, error) {
	ctx, span := tracer.Start(ctx, "intake.Today")
	defer span.End()

	now := requestcontext.Now(ctx).UTC()
	date := now.Format(dateLayout)

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, userID, date)
		switch {
		case err != nil:
			s.metrics.RecordCacheResult("error")
			s.logger.WarnContext(ctx, "summary cache read failed",
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
		case ok:
			s.metrics.RecordCacheResult("hit")
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return cached, nil
		default:
			s.metrics.RecordCacheResult("miss")
		}
	}

	goal, err := s.goals.DailyGoal(ctx, userID)
	if err != nil {
		return nil, err
	}
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	total, count, err := s.store.SumBetween(ctx, userID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to summarize intakes")
	}
	summary := models.NewDailySummary(date, total, count, goal)

	if s.cache != nil {
		if err := s.cache.Set(ctx, userID, summary); err != nil {
			s.logger.WarnContext(ctx, "summary cache write failed",
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
		}
	}
	return summary, nil
}

// EraseUser removes all of the user's intakes.
func (s *Service) EraseUser(ctx context.Context, userID id.UserID) error {
	if err := s.store.DeleteByUser(ctx, userID); err != nil {
		return err
	}
	s.invalidate(ctx, userID, requestcontext.Now(ctx))
	return nil
}

func (s *Service) invalidate(ctx context.Context, userID id.UserID, consumedAt time.Time) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID, consumedAt.UTC().Format(dateLayout)); err != nil {
		s.logger.WarnContext(ctx, "summary cache invalidation failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
}
