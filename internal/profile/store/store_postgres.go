package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"hydration/internal/profile/models"
	id "hydration/pkg/domain"
	"hydration/pkg/platform/sentinel"
	"hydration/pkg/platform/tx"
)

const uniqueViolation = "23505"

// PostgresStore persists profiles in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore constructs a PostgreSQL-backed profile store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const profileColumns = `user_id, subject, email, display_name, birth_date, weight_kg, daily_goal_ml, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, p *models.Profile) error {
	query := `
		INSERT INTO profiles (` + profileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := tx.Executor(ctx, s.db).ExecContext(ctx, query,
		p.UserID.String(), p.Subject, p.Email, p.DisplayName,
		p.BirthDate, p.WeightKg, p.DailyGoalMl, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*models.Profile, error) {
	row := tx.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID.String())
	return scanProfile(row)
}

func (s *PostgresStore) FindBySubject(ctx context.Context, subject string) (*models.Profile, error) {
	row := tx.Executor(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE subject = $1`, subject)
	return scanProfile(row)
}

func (s *PostgresStore) Update(ctx context.Context, p *models.Profile) error {
	query := `
		UPDATE profiles
		SET display_name = $2, birth_date = $3, weight_kg = $4, daily_goal_ml = $5, updated_at = $6
		WHERE user_id = $1
	`
	res, err := tx.Executor(ctx, s.db).ExecContext(ctx, query,
		p.UserID.String(), p.DisplayName, p.BirthDate, p.WeightKg, p.DailyGoalMl, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return requireAffected(res)
}

func (s *PostgresStore) Delete(ctx context.Context, userID id.UserID) error {
	res, err := tx.Executor(ctx, s.db).ExecContext(ctx, `DELETE FROM profiles WHERE user_id = $1`, userID.String())
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func scanProfile(row *sql.Row) (*models.Profile, error) {
	var (
		p         models.Profile
		rawID     string
		birthDate sql.NullTime
		weight    sql.NullInt64
	)
	err := row.Scan(&rawID, &p.Subject, &p.Email, &p.DisplayName, &birthDate, &weight,
		&p.DailyGoalMl, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan profile: %w", err)
	}
	userID, err := id.ParseUserID(rawID)
	if err != nil {
		return nil, fmt.Errorf("scan profile id: %w", err)
	}
	p.UserID = userID
	if birthDate.Valid {
		t := birthDate.Time.UTC()
		p.BirthDate = &t
	}
	if weight.Valid {
		w := int(weight.Int64)
		p.WeightKg = &w
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return &p, nil
}
