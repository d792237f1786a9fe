package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"hydration/internal/events"
	"hydration/internal/platform/messages"
	"hydration/internal/platform/metrics"
	"hydration/internal/platform/middleware"
	"hydration/internal/policy"
	"hydration/internal/profile/models"
	id "hydration/pkg/domain"
	dErrors "hydration/pkg/domain-errors"
	"hydration/pkg/platform/sentinel"
	"hydration/pkg/platform/tx"
	"hydration/pkg/requestcontext"
	"hydration/pkg/temporal"
)

const (
	maxDisplayNameLength = 64
	minWeightKg          = 1
	maxWeightKg          = 500
)

var tracer = otel.Tracer("hydration/profile")

// Store persists profiles. Implementations return sentinel errors.
type Store interface {
	Create(ctx context.Context, p *models.Profile) error
	FindByID(ctx context.Context, userID id.UserID) (*models.Profile, error)
	FindBySubject(ctx context.Context, subject string) (*models.Profile, error)
	Update(ctx context.Context, p *models.Profile) error
	Delete(ctx context.Context, userID id.UserID) error
}

// DataEraser removes a user's data owned by another module.
type DataEraser interface {
	EraseUser(ctx context.Context, userID id.UserID) error
}

// Service owns profile provisioning, updates and erasure.
type Service struct {
	store   Store
	policy  *policy.Holder
	tx      tx.Runner
	erasers []DataEraser
	events  *events.Publisher
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithErasers registers modules whose data is removed with the profile.
func WithErasers(erasers ...DataEraser) Option {
	return func(s *Service) { s.erasers = append(s.erasers, erasers...) }
}

func WithEvents(p *events.Publisher) Option {
	return func(s *Service) { s.events = p }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithTxRunner(r tx.Runner) Option {
	return func(s *Service) {
		if r != nil {
			s.tx = r
		}
	}
}

func New(store Store, holder *policy.Holder, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:  store,
		policy: holder,
		tx:     &tx.LockRunner{},
		logger: logger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// ResolveUser returns the user for an identity, provisioning a profile on
// first sight of the subject.
func (s *Service) ResolveUser(ctx context.Context, identity *middleware.Identity) (id.UserID, error) {
	existing, err := s.store.FindBySubject(ctx, identity.Subject)
	if err == nil {
		return existing.UserID, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return id.UserID{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up profile")
	}

	now := requestcontext.Now(ctx)
	p := &models.Profile{
		UserID:      id.NewUserID(),
		Subject:     identity.Subject,
		Email:       identity.Email,
		DisplayName: strings.TrimSpace(identity.Name),
		DailyGoalMl: s.defaultGoal(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Create(ctx, p); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			// Lost a race with a concurrent first request for the same subject.
			existing, err := s.store.FindBySubject(ctx, identity.Subject)
			if err != nil {
				return id.UserID{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up profile")
			}
			return existing.UserID, nil
		}
		return id.UserID{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create profile")
	}
	s.metrics.IncrementProfilesCreated()
	s.logger.InfoContext(ctx, "profile provisioned",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", p.UserID.String(),
	)
	return p.UserID, nil
}

func (s *Service) defaultGoal() int {
	bounds := s.policy.Current().Profile
	return min(max(models.DefaultDailyGoalMl, bounds.MinDailyGoalMl), bounds.MaxDailyGoalMl)
}

// Get returns the caller's profile.
func (s *Service) Get(ctx context.Context, userID id.UserID) (*models.Profile, error) {
	p, err := s.store.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "profile not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load profile")
	}
	return p, nil
}

// DailyGoal returns the user's daily intake target in millilitres.
func (s *Service) DailyGoal(ctx context.Context, userID id.UserID) (int, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return 0, err
	}
	return p.DailyGoalMl, nil
}

// Update validates req against the current policy and replaces the editable
// fields. All violations are returned together as a *temporal.ValidationError.
func (s *Service) Update(ctx context.Context, userID id.UserID, req models.UpdateRequest) (*models.Profile, error) {
	ctx, span := tracer.Start(ctx, "profile.Update")
	defer span.End()

	birthDate, err := s.validate(ctx, req)
	if err != nil {
		span.SetAttributes(attribute.Bool("validation.failed", true))
		return nil, err
	}

	p, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	p.DisplayName = strings.TrimSpace(*req.DisplayName)
	p.BirthDate = birthDate.Ptr()
	p.WeightKg = req.WeightKg
	if req.DailyGoalMl != nil {
		p.DailyGoalMl = *req.DailyGoalMl
	}
	p.UpdatedAt = requestcontext.Now(ctx)

	if err := s.store.Update(ctx, p); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "profile not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update profile")
	}
	return p, nil
}

func (s *Service) validate(ctx context.Context, req models.UpdateRequest) (temporal.Timestamp, error) {
	rules := s.policy.Current().Profile
	var report temporal.Report

	switch {
	case req.DisplayName == nil || strings.TrimSpace(*req.DisplayName) == "":
		report.Add("displayName", messages.KeyRequired)
	case utf8.RuneCountInString(strings.TrimSpace(*req.DisplayName)) > maxDisplayNameLength:
		report.Add("displayName", messages.KeyLength, 1, maxDisplayNameLength)
	}

	var birthDate temporal.Timestamp
	if req.BirthDate == nil {
		report.Add("birthDate", messages.KeyRequired)
	} else {
		cfg, err := temporal.NewConfig(temporal.RequirePast(), temporal.MinimumAge(rules.MinimumAge))
		if err != nil {
			return temporal.Timestamp{}, dErrors.Wrap(err, dErrors.CodeInternal, "invalid profile policy")
		}
		n := temporal.NewNormalizer(temporal.WithClock(requestClock(ctx)))
		out := n.Normalize(req.BirthDate, cfg)
		if report.AddOutcome("birthDate", out) {
			birthDate = out.Value()
		}
	}

	if w := req.WeightKg; w != nil && (*w < minWeightKg || *w > maxWeightKg) {
		report.Add("weightKg", messages.KeyProfileWeightRange, minWeightKg, maxWeightKg)
	}
	if g := req.DailyGoalMl; g != nil && (*g < rules.MinDailyGoalMl || *g > rules.MaxDailyGoalMl) {
		report.Add("dailyGoalMl", messages.KeyProfileDailyGoalRange, rules.MinDailyGoalMl, rules.MaxDailyGoalMl)
	}
	return birthDate, report.Err()
}

// Delete erases the profile and every module's data for the user in one
// transaction.
func (s *Service) Delete(ctx context.Context, userID id.UserID) error {
	ctx, span := tracer.Start(ctx, "profile.Delete")
	defer span.End()

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		for _, e := range s.erasers {
			if err := e.EraseUser(ctx, userID); err != nil {
				return err
			}
		}
		return s.store.Delete(ctx, userID)
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "profile not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete profile")
	}
	s.events.Emit(ctx, events.Event{Type: events.TypeProfileErased, UserID: userID.String()})
	return nil
}

func requestClock(ctx context.Context) temporal.Clock {
	now := requestcontext.Now(ctx)
	return func() time.Time { return now }
}
