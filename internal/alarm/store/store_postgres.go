package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"hydration/internal/alarm/models"
	id "hydration/pkg/domain"
	"hydration/pkg/platform/sentinel"
	"hydration/pkg/platform/tx"
)

// PostgresStore persists alarms in PostgreSQL. Active days are a text[] column.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, userID id.UserID) (*models.Alarm, error) {
	query := `
		SELECT enabled, daily_start_time, daily_end_time, interval_minutes, active_days, updated_at
		FROM alarm_settings
		WHERE user_id = $1
	`
	var (
		a    = models.Alarm{UserID: userID}
		days []string
	)
	err := tx.Executor(ctx, s.db).QueryRowContext(ctx, query, userID.String()).Scan(
		&a.Enabled, &a.DailyStartTime, &a.DailyEndTime, &a.IntervalMinutes, pq.Array(&days), &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get alarm: %w", err)
	}
	a.DailyStartTime = a.DailyStartTime.UTC()
	a.DailyEndTime = a.DailyEndTime.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	a.ActiveDays = make([]id.Weekday, 0, len(days))
	for _, d := range days {
		a.ActiveDays = append(a.ActiveDays, id.Weekday(d))
	}
	return &a, nil
}

func (s *PostgresStore) Save(ctx context.Context, alarm *models.Alarm) error {
	query := `
		INSERT INTO alarm_settings (user_id, enabled, daily_start_time, daily_end_time, interval_minutes, active_days, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE SET
			enabled = EXCLUDED.enabled,
			daily_start_time = EXCLUDED.daily_start_time,
			daily_end_time = EXCLUDED.daily_end_time,
			interval_minutes = EXCLUDED.interval_minutes,
			active_days = EXCLUDED.active_days,
			updated_at = EXCLUDED.updated_at
	`
	_, err := tx.Executor(ctx, s.db).ExecContext(ctx, query,
		alarm.UserID.String(), alarm.Enabled, alarm.DailyStartTime, alarm.DailyEndTime,
		alarm.IntervalMinutes, pq.Array(alarm.DayStrings()), alarm.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save alarm: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, userID id.UserID) error {
	res, err := tx.Executor(ctx, s.db).ExecContext(ctx, `DELETE FROM alarm_settings WHERE user_id = $1`, userID.String())
	if err != nil {
		return fmt.Errorf("delete alarm: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete alarm: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
