package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/hatokurandom/hatokurandom/internal/models"
	"github.com/hatokurandom/hatokurandom/pkg/metrics"
)

var (
	ErrDuplicateCode = errors.New("supply code already saved")
	ErrCodeNotFound  = errors.New("supply code not saved")
)

var schemas = map[string]string{
	"postgres": `
        CREATE TABLE IF NOT EXISTS supplies (
            id         BIGSERIAL PRIMARY KEY,
            code       VARCHAR(64) NOT NULL UNIQUE,
            title      VARCHAR(255) NOT NULL,
            created_at TIMESTAMP NOT NULL
        )`,
	"sqlite": `
        CREATE TABLE IF NOT EXISTS supplies (
            id         INTEGER PRIMARY KEY AUTOINCREMENT,
            code       VARCHAR(64) NOT NULL UNIQUE,
            title      VARCHAR(255) NOT NULL,
            created_at TIMESTAMP NOT NULL
        )`,
}

// SupplyRepository persists saved supplies. Queries use $N placeholders,
// which both lib/pq and sqlite understand.
type SupplyRepository struct {
	db     *sql.DB
	driver string
	logger *zap.Logger
}

func NewSupplyRepository(db *sql.DB, driver string, logger *zap.Logger) *SupplyRepository {
	return &SupplyRepository{db: db, driver: driver, logger: logger}
}

// Migrate creates the supplies table if it does not exist yet.
func (r *SupplyRepository) Migrate(ctx context.Context) error {
	schema, ok := schemas[r.driver]
	if !ok {
		return fmt.Errorf("unsupported database driver %q", r.driver)
	}
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (r *SupplyRepository) Save(ctx context.Context, s *models.SavedSupply) error {
	defer observe("save", time.Now())

	query := `
        INSERT INTO supplies (code, title, created_at)
        VALUES ($1, $2, $3)
        RETURNING id
    `
	row := r.db.QueryRowContext(ctx, query, s.Code, s.Title, s.CreatedAt)
	if err := row.Scan(&s.ID); err != nil {
		if isUniqueConstraintErr(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateCode, s.Code)
		}
		r.logger.Error("failed to save supply", zap.String("code", s.Code), zap.Error(err))
		return err
	}
	return nil
}

// FindByCode returns nil without error when code is not saved.
func (r *SupplyRepository) FindByCode(ctx context.Context, code string) (*models.SavedSupply, error) {
	defer observe("find", time.Now())

	query := `
        SELECT id, code, title, created_at
        FROM supplies
        WHERE code = $1
    `
	var s models.SavedSupply
	row := r.db.QueryRowContext(ctx, query, code)
	if err := row.Scan(&s.ID, &s.Code, &s.Title, &s.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("failed to find supply", zap.String("code", code), zap.Error(err))
		return nil, err
	}
	return &s, nil
}

// ListRecent returns at most limit supplies, newest first.
func (r *SupplyRepository) ListRecent(ctx context.Context, limit int) ([]models.SavedSupply, error) {
	defer observe("list", time.Now())

	query := `
        SELECT id, code, title, created_at
        FROM supplies
        ORDER BY created_at DESC, id DESC
        LIMIT $1
    `
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		r.logger.Error("failed to list supplies", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var result []models.SavedSupply
	for rows.Next() {
		var s models.SavedSupply
		if err := rows.Scan(&s.ID, &s.Code, &s.Title, &s.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func (r *SupplyRepository) DeleteByCode(ctx context.Context, code string) error {
	defer observe("delete", time.Now())

	result, err := r.db.ExecContext(ctx, `DELETE FROM supplies WHERE code = $1`, code)
	if err != nil {
		r.logger.Error("failed to delete supply", zap.String("code", code), zap.Error(err))
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrCodeNotFound, code)
	}
	r.logger.Info("deleted supply", zap.String("code", code))
	return nil
}

func observe(op string, start time.Time) {
	metrics.DatabaseQueryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// isUniqueConstraintErr recognizes duplicate key errors from Postgres by
// SQLSTATE and from sqlite by message.
func isUniqueConstraintErr(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}
