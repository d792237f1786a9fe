package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"hydration/internal/intake/models"
	id "hydration/pkg/domain"
	"hydration/pkg/platform/sentinel"
	"hydration/pkg/platform/tx"
)

// sortColumns maps allow-listed sort fields to columns. Anything else sorts
// by consumed_at; field names never reach SQL text.
var sortColumns = map[string]string{
	"consumedAt": "consumed_at",
	"volumeMl":   "volume_ml",
	"createdAt":  "created_at",
}

// PostgresStore persists intakes in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, intake *models.Intake) error {
	query := `
		INSERT INTO intakes (id, user_id, volume_ml, consumed_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := tx.Executor(ctx, s.db).ExecContext(ctx, query,
		intake.ID.String(), intake.UserID.String(), intake.VolumeMl, intake.ConsumedAt, intake.CreatedAt)
	if err != nil {
		return fmt.Errorf("save intake: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, userID id.UserID, intakeID id.IntakeID) (*models.Intake, error) {
	query := `
		DELETE FROM intakes
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, volume_ml, consumed_at, created_at
	`
	row := tx.Executor(ctx, s.db).QueryRowContext(ctx, query, intakeID.String(), userID.String())
	intake, err := scanIntake(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("delete intake: %w", err)
	}
	return intake, nil
}

func (s *PostgresStore) DeleteByUser(ctx context.Context, userID id.UserID) error {
	if _, err := tx.Executor(ctx, s.db).ExecContext(ctx, `DELETE FROM intakes WHERE user_id = $1`, userID.String()); err != nil {
		return fmt.Errorf("delete intakes by user: %w", err)
	}
	return nil
}

func (s *PostgresStore) Search(ctx context.Context, userID id.UserID, f models.Filter) ([]*models.Intake, int, error) {
	where, args := buildWhere(userID, f)
	db := tx.Executor(ctx, s.db)

	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM intakes WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count intakes: %w", err)
	}

	column, ok := sortColumns[f.SortField]
	if !ok {
		column = "consumed_at"
	}
	direction := "DESC"
	if f.SortDirection == models.SortAsc {
		direction = "ASC"
	}
	n := len(args)
	query := fmt.Sprintf(`
		SELECT id, user_id, volume_ml, consumed_at, created_at
		FROM intakes
		WHERE %s
		ORDER BY %s %s, id %s
		LIMIT $%d OFFSET $%d
	`, where, column, direction, direction, n+1, n+2)
	args = append(args, f.Size, f.Page*f.Size)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("search intakes: %w", err)
	}
	defer rows.Close()

	var out []*models.Intake
	for rows.Next() {
		intake, err := scanIntake(rows.Scan)
		if err != nil {
			return nil, 0, fmt.Errorf("scan intake: %w", err)
		}
		out = append(out, intake)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate intakes: %w", err)
	}
	return out, total, nil
}

func (s *PostgresStore) SumBetween(ctx context.Context, userID id.UserID, from, to time.Time) (int, int, error) {
	query := `
		SELECT COALESCE(SUM(volume_ml), 0), COUNT(*)
		FROM intakes
		WHERE user_id = $1 AND consumed_at >= $2 AND consumed_at < $3
	`
	var total, count int
	if err := tx.Executor(ctx, s.db).QueryRowContext(ctx, query, userID.String(), from, to).Scan(&total, &count); err != nil {
		return 0, 0, fmt.Errorf("sum intakes: %w", err)
	}
	return total, count, nil
}

func buildWhere(userID id.UserID, f models.Filter) (string, []any) {
	clauses := []string{"user_id = $1"}
	args := []any{userID.String()}
	add := func(clause string, arg any) {
		args = append(args, arg)
		clauses = append(clauses, clause+" $"+strconv.Itoa(len(args)))
	}
	if f.From != nil {
		add("consumed_at >=", *f.From)
	}
	if f.To != nil {
		add("consumed_at <=", *f.To)
	}
	if f.MinVolume != nil {
		add("volume_ml >=", *f.MinVolume)
	}
	if f.MaxVolume != nil {
		add("volume_ml <=", *f.MaxVolume)
	}
	return strings.Join(clauses, " AND "), args
}

func scanIntake(scan func(dest ...any) error) (*models.Intake, error) {
	var (
		i               models.Intake
		rawID, rawOwner string
	)
	if err := scan(&rawID, &rawOwner, &i.VolumeMl, &i.ConsumedAt, &i.CreatedAt); err != nil {
		return nil, err
	}
	intakeID, err := id.ParseIntakeID(rawID)
	if err != nil {
		return nil, err
	}
	userID, err := id.ParseUserID(rawOwner)
	if err != nil {
		return nil, err
	}
	i.ID = intakeID
	i.UserID = userID
	i.ConsumedAt = i.ConsumedAt.UTC()
	i.CreatedAt = i.CreatedAt.UTC()
	return &i, nil
}
