package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"hydration/internal/alarm/models"
	"hydration/internal/events"
	"hydration/internal/policy"
	id "hydration/pkg/domain"
	dErrors "hydration/pkg/domain-errors"
	"hydration/pkg/platform/sentinel"
	"hydration/pkg/requestcontext"
	"hydration/pkg/temporal"
)

var tracer = otel.Tracer("hydration/alarm")

// Store persists one alarm per user. Implementations return sentinel errors.
type Store interface {
	Get(ctx context.Context, userID id.UserID) (*models.Alarm, error)
	Save(ctx context.Context, alarm *models.Alarm) error
	Delete(ctx context.Context, userID id.UserID) error
}

// Service validates and stores alarm schedules.
type Service struct {
	store     Store
	validator *Validator
	events    *events.Publisher
	logger    *slog.Logger
}

func New(store Store, holder *policy.Holder, publisher *events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		store:     store,
		validator: NewValidator(holder),
		events:    publisher,
		logger:    logger,
	}
}

// Get returns the user's alarm.
func (s *Service) Get(ctx context.Context, userID id.UserID) (*models.Alarm, error) {
	alarm, err := s.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "alarm not configured")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load alarm")
	}
	return alarm, nil
}

// Update validates req and replaces the user's alarm.
func (s *Service) Update(ctx context.Context, userID id.UserID, req *models.UpdateRequest) (*models.Alarm, error) {
	ctx, span := tracer.Start(ctx, "alarm.Update")
	defer span.End()

	w, err := s.validator.Validate(req)
	if err != nil {
		var verr *temporal.ValidationError
		if errors.As(err, &verr) {
			span.SetAttributes(attribute.Int("validation.violations", len(verr.Violations)))
			return nil, err
		}
		s.logger.ErrorContext(ctx, "alarm policy rejected by rule engine",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "alarm rules unavailable")
	}

	alarm := &models.Alarm{
		UserID:          userID,
		Enabled:         w.Enabled,
		DailyStartTime:  w.Start,
		DailyEndTime:    w.End,
		IntervalMinutes: w.Interval,
		ActiveDays:      w.ActiveDays,
		UpdatedAt:       requestcontext.Now(ctx),
	}
	if err := s.store.Save(ctx, alarm); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save alarm")
	}

	count := NotificationCount(alarm.DailyStartTime, alarm.DailyEndTime, alarm.IntervalMinutes)
	span.SetAttributes(attribute.Int("alarm.notifications", count))
	s.events.Emit(ctx, events.Event{
		Type:   events.TypeAlarmUpdated,
		UserID: userID.String(),
		Data: map[string]any{
			"enabled":           alarm.Enabled,
			"notificationCount": count,
			"activeDays":        alarm.DayStrings(),
		},
	})
	return alarm, nil
}

// EraseUser removes the user's alarm if there is one.
func (s *Service) EraseUser(ctx context.Context, userID id.UserID) error {
	if err := s.store.Delete(ctx, userID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return err
	}
	return nil
}

// ToResponse renders an alarm with its derived reminder schedule.
func ToResponse(a *models.Alarm) *models.Response {
	times := Schedule(a.DailyStartTime, a.DailyEndTime, a.IntervalMinutes)
	schedule := make([]string, 0, len(times))
	for _, t := range times {
		schedule = append(schedule, t.String())
	}
	return &models.Response{
		Enabled: a.Enabled,
		Settings: models.SettingsResponse{
			DailyStartTime:  a.DailyStartTime,
			DailyEndTime:    a.DailyEndTime,
			IntervalMinutes: a.IntervalMinutes,
		},
		ActiveDays:        a.DayStrings(),
		NotificationCount: len(times),
		Schedule:          schedule,
		UpdatedAt:         a.UpdatedAt,
	}
}
