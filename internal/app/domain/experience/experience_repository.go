package experience

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/queska/queska-go/internal/app/models"
)

// Ensure RepositoryImpl implements the Repository interface
var _ Repository = (*RepositoryImpl)(nil)

// DB is the query surface the repository needs from the pool. *pgxpool.Pool
// satisfies it in production; pgxmock pools satisfy it in tests.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ DB = (*pgxpool.Pool)(nil)

// Repository defines persistence for the Experience aggregate. Experiences
// are stored as documents: indexed columns carry the fields queries filter
// on, the doc column carries the full aggregate.
type Repository interface {
	CreateExperience(ctx context.Context, exp *models.Experience) error
	GetExperience(ctx context.Context, id uuid.UUID) (*models.Experience, error)
	GetExperienceByShareCode(ctx context.Context, shareCode string) (*models.Experience, error)
	ListUserExperiences(ctx context.Context, userID uuid.UUID, status *models.ExperienceStatus, offset, limit int) ([]*models.Experience, int, error)
	SearchExperiences(ctx context.Context, filters models.ExperienceFilters, offset, limit int) ([]*models.Experience, int, error)

	// UpdateExperience persists the aggregate with an optimistic version
	// check; it returns models.ErrConflict when the stored version moved.
	UpdateExperience(ctx context.Context, exp *models.Experience) error

	// IncrementShareViewCount bumps the share view counter atomically in
	// the store, avoiding read-modify-write races between viewers.
	IncrementShareViewCount(ctx context.Context, id uuid.UUID) error

	SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)
}

// RepositoryImpl is the pgx-backed Repository.
type RepositoryImpl struct {
	logger *zap.Logger
	pgpool DB
}

func NewRepository(pgpool DB, logger *zap.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *RepositoryImpl) CreateExperience(ctx context.Context, exp *models.Experience) error {
	doc, err := json.Marshal(exp)
	if err != nil {
		return fmt.Errorf("failed to marshal experience: %w", err)
	}

	query := `
        INSERT INTO experiences (
            id, user_id, status, slug, share_code, is_deleted, version, doc, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `
	_, err = r.pgpool.Exec(ctx, query,
		exp.ID, exp.UserID, exp.Status, exp.Slug, exp.Sharing.ShareCode,
		exp.IsDeleted, exp.Version, doc, exp.CreatedAt, exp.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create experience", zap.Error(err))
		return fmt.Errorf("failed to create experience: %w", err)
	}
	return nil
}

func (r *RepositoryImpl) GetExperience(ctx context.Context, id uuid.UUID) (*models.Experience, error) {
	query := `
        SELECT doc, version FROM experiences
        WHERE id = $1 AND is_deleted = FALSE
    `
	return r.scanOne(ctx, query, id)
}

func (r *RepositoryImpl) GetExperienceByShareCode(ctx context.Context, shareCode string) (*models.Experience, error) {
	query := `
        SELECT doc, version FROM experiences
        WHERE share_code = $1 AND is_deleted = FALSE
    `
	return r.scanOne(ctx, query, shareCode)
}

func (r *RepositoryImpl) ListUserExperiences(ctx context.Context, userID uuid.UUID, status *models.ExperienceStatus, offset, limit int) ([]*models.Experience, int, error) {
	where := `WHERE user_id = $1 AND is_deleted = FALSE`
	args := []any{userID}
	if status != nil {
		where += ` AND status = $2`
		args = append(args, *status)
	}

	var total int
	if err := r.pgpool.QueryRow(ctx, `SELECT COUNT(*) FROM experiences `+where, args...).Scan(&total); err != nil {
		r.logger.Error("Failed to count user experiences", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count user experiences: %w", err)
	}

	query := fmt.Sprintf(`
        SELECT doc, version FROM experiences %s
        ORDER BY created_at DESC
        OFFSET $%d LIMIT $%d
    `, where, len(args)+1, len(args)+2)
	args = append(args, offset, limit)

	experiences, err := r.scanMany(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return experiences, total, nil
}

func (r *RepositoryImpl) SearchExperiences(ctx context.Context, filters models.ExperienceFilters, offset, limit int) ([]*models.Experience, int, error) {
	where := `WHERE is_deleted = FALSE`
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filters.Status != nil {
		where += ` AND status = ` + arg(*filters.Status)
	}
	if filters.DestinationCity != "" {
		where += ` AND doc->'destination'->>'city' ILIKE ` + arg("%"+filters.DestinationCity+"%")
	}
	if filters.DestinationCountry != "" {
		where += ` AND doc->'destination'->>'country' ILIKE ` + arg("%"+filters.DestinationCountry+"%")
	}
	if filters.StartDateFrom != nil {
		where += ` AND (doc->'dates'->>'start_date')::timestamptz >= ` + arg(*filters.StartDateFrom)
	}
	if filters.StartDateTo != nil {
		where += ` AND (doc->'dates'->>'start_date')::timestamptz <= ` + arg(*filters.StartDateTo)
	}
	if len(filters.Tags) > 0 {
		where += ` AND doc->'tags' ?| ` + arg(filters.Tags)
	}
	if filters.CardGenerated != nil {
		where += ` AND (doc->>'card_generated')::bool = ` + arg(*filters.CardGenerated)
	}

	var total int
	if err := r.pgpool.QueryRow(ctx, `SELECT COUNT(*) FROM experiences `+where, args...).Scan(&total); err != nil {
		r.logger.Error("Failed to count experiences", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count experiences: %w", err)
	}

	query := fmt.Sprintf(`
        SELECT doc, version FROM experiences %s
        ORDER BY created_at DESC
        OFFSET %s LIMIT %s
    `, where, arg(offset), arg(limit))

	experiences, err := r.scanMany(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return experiences, total, nil
}

func (r *RepositoryImpl) UpdateExperience(ctx context.Context, exp *models.Experience) error {
	expectedVersion := exp.Version
	exp.Version++

	doc, err := json.Marshal(exp)
	if err != nil {
		exp.Version = expectedVersion
		return fmt.Errorf("failed to marshal experience: %w", err)
	}

	query := `
        UPDATE experiences
        SET status = $1, slug = $2, share_code = $3, is_deleted = $4,
            version = $5, doc = $6, updated_at = $7
        WHERE id = $8 AND version = $9
    `
	tag, err := r.pgpool.Exec(ctx, query,
		exp.Status, exp.Slug, exp.Sharing.ShareCode, exp.IsDeleted,
		exp.Version, doc, exp.UpdatedAt, exp.ID, expectedVersion,
	)
	if err != nil {
		exp.Version = expectedVersion
		r.logger.Error("Failed to update experience", zap.Error(err))
		return fmt.Errorf("failed to update experience: %w", err)
	}
	if tag.RowsAffected() == 0 {
		exp.Version = expectedVersion
		return fmt.Errorf("experience %s version %d: %w", exp.ID, expectedVersion, models.ErrConflict)
	}
	return nil
}

func (r *RepositoryImpl) IncrementShareViewCount(ctx context.Context, id uuid.UUID) error {
	query := `
        UPDATE experiences
        SET doc = jsonb_set(doc, '{sharing,view_count}',
            to_jsonb(COALESCE((doc->'sharing'->>'view_count')::int, 0) + 1))
        WHERE id = $1 AND is_deleted = FALSE
    `
	tag, err := r.pgpool.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to increment view count", zap.Error(err))
		return fmt.Errorf("failed to increment view count: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("experience %s: %w", id, models.ErrNotFound)
	}
	return nil
}

func (r *RepositoryImpl) SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM experiences WHERE slug = $1 AND is_deleted = FALSE AND ($2::uuid IS NULL OR id != $2))`
	var exists bool
	if err := r.pgpool.QueryRow(ctx, query, slug, excludeID).Scan(&exists); err != nil {
		r.logger.Error("Failed to check slug", zap.Error(err))
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return exists, nil
}

func (r *RepositoryImpl) scanOne(ctx context.Context, query string, args ...any) (*models.Experience, error) {
	var doc []byte
	var version int
	err := r.pgpool.QueryRow(ctx, query, args...).Scan(&doc, &version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("experience: %w", models.ErrNotFound)
		}
		r.logger.Error("Failed to get experience", zap.Error(err))
		return nil, fmt.Errorf("failed to get experience: %w", err)
	}

	var exp models.Experience
	if err := json.Unmarshal(doc, &exp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal experience: %w", err)
	}
	exp.Version = version
	return &exp, nil
}

func (r *RepositoryImpl) scanMany(ctx context.Context, query string, args ...any) ([]*models.Experience, error) {
	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query experiences", zap.Error(err))
		return nil, fmt.Errorf("failed to query experiences: %w", err)
	}
	defer rows.Close()

	var experiences []*models.Experience
	for rows.Next() {
		var doc []byte
		var version int
		if err := rows.Scan(&doc, &version); err != nil {
			r.logger.Error("Failed to scan experience row", zap.Error(err))
			return nil, fmt.Errorf("failed to scan experience row: %w", err)
		}
		var exp models.Experience
		if err := json.Unmarshal(doc, &exp); err != nil {
			return nil, fmt.Errorf("failed to unmarshal experience: %w", err)
		}
		exp.Version = version
		experiences = append(experiences, &exp)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating experience rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating experience rows: %w", err)
	}
	return experiences, nil
}
