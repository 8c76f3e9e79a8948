package card

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

// Repository defines persistence for experience cards, stored the same way
// as experiences: indexed filter columns plus the full document.
type Repository interface {
	CreateCard(ctx context.Context, c *models.ExperienceCard) error
	GetCard(ctx context.Context, id uuid.UUID) (*models.ExperienceCard, error)
	GetCardByCode(ctx context.Context, cardCode string) (*models.ExperienceCard, error)
	GetCardByExperienceID(ctx context.Context, experienceID uuid.UUID) (*models.ExperienceCard, error)
	ListUserCards(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]*models.ExperienceCard, int, error)
	ListSavedCards(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*models.ExperienceCard, int, error)
	SearchPublicCards(ctx context.Context, filters models.CardSearchFilters, offset, limit int) ([]*models.ExperienceCard, int, error)

	// UpdateCard persists the card with an optimistic version check and
	// returns models.ErrConflict when the stored version moved.
	UpdateCard(ctx context.Context, c *models.ExperienceCard) error

	// IncrementStat atomically bumps one of the stats counters in place.
	IncrementStat(ctx context.Context, id uuid.UUID, stat string, delta int) error

	// AppendInteraction prepends one entry to the bounded interaction log
	// without rewriting the rest of the document.
	AppendInteraction(ctx context.Context, id uuid.UUID, entry models.CardInteraction) error
}

// RepositoryImpl is the pgx-backed card Repository.
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

// statColumns whitelists the counter names IncrementStat can touch.
// The stat name is interpolated into a jsonb path, so it must never come
// from user input.
var statColumns = map[string]bool{
	"view_count":     true,
	"unique_viewers": true,
	"share_count":    true,
	"clone_count":    true,
	"save_count":     true,
}

func (r *RepositoryImpl) CreateCard(ctx context.Context, c *models.ExperienceCard) error {
	doc, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal card: %w", err)
	}

	query := `
        INSERT INTO experience_cards (
            id, experience_id, owner_user_id, card_code, is_public, is_active,
            is_deleted, version, doc, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `
	_, err = r.pgpool.Exec(ctx, query,
		c.ID, c.ExperienceID, c.Owner.UserID, c.CardCode,
		c.Settings.IsPublic, c.Settings.IsActive,
		c.IsDeleted, c.Version, doc, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create card", zap.Error(err))
		return fmt.Errorf("failed to create card: %w", err)
	}
	return nil
}

func (r *RepositoryImpl) GetCard(ctx context.Context, id uuid.UUID) (*models.ExperienceCard, error) {
	query := `
        SELECT doc, version FROM experience_cards
        WHERE id = $1 AND is_deleted = FALSE
    `
	return r.scanOne(ctx, query, id)
}

func (r *RepositoryImpl) GetCardByCode(ctx context.Context, cardCode string) (*models.ExperienceCard, error) {
	query := `
        SELECT doc, version FROM experience_cards
        WHERE card_code = $1 AND is_deleted = FALSE
    `
	return r.scanOne(ctx, query, cardCode)
}

func (r *RepositoryImpl) GetCardByExperienceID(ctx context.Context, experienceID uuid.UUID) (*models.ExperienceCard, error) {
	query := `
        SELECT doc, version FROM experience_cards
        WHERE experience_id = $1 AND is_deleted = FALSE
    `
	return r.scanOne(ctx, query, experienceID)
}

func (r *RepositoryImpl) ListUserCards(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]*models.ExperienceCard, int, error) {
	where := `WHERE owner_user_id = $1 AND is_deleted = FALSE`

	var total int
	if err := r.pgpool.QueryRow(ctx, `SELECT COUNT(*) FROM experience_cards `+where, ownerID).Scan(&total); err != nil {
		r.logger.Error("Failed to count user cards", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count user cards: %w", err)
	}

	query := `
        SELECT doc, version FROM experience_cards ` + where + `
        ORDER BY created_at DESC
        OFFSET $2 LIMIT $3
    `
	cards, err := r.scanMany(ctx, query, ownerID, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	return cards, total, nil
}

func (r *RepositoryImpl) ListSavedCards(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*models.ExperienceCard, int, error) {
	where := `WHERE doc->'saved_by' @> to_jsonb($1::text) AND is_deleted = FALSE AND is_active = TRUE`

	var total int
	if err := r.pgpool.QueryRow(ctx, `SELECT COUNT(*) FROM experience_cards `+where, userID.String()).Scan(&total); err != nil {
		r.logger.Error("Failed to count saved cards", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count saved cards: %w", err)
	}

	query := `
        SELECT doc, version FROM experience_cards ` + where + `
        ORDER BY created_at DESC
        OFFSET $2 LIMIT $3
    `
	cards, err := r.scanMany(ctx, query, userID.String(), offset, limit)
	if err != nil {
		return nil, 0, err
	}
	return cards, total, nil
}

func (r *RepositoryImpl) SearchPublicCards(ctx context.Context, filters models.CardSearchFilters, offset, limit int) ([]*models.ExperienceCard, int, error) {
	where := `WHERE is_public = TRUE AND is_active = TRUE AND is_deleted = FALSE`
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
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
	if filters.MinTravelers != nil {
		where += ` AND (doc->'travelers'->>'total_passengers')::int >= ` + arg(*filters.MinTravelers)
	}
	if filters.MaxTravelers != nil {
		where += ` AND (doc->'travelers'->>'total_passengers')::int <= ` + arg(*filters.MaxTravelers)
	}
	if len(filters.Tags) > 0 {
		where += ` AND doc->'tags' ?| ` + arg(filters.Tags)
	}

	var total int
	if err := r.pgpool.QueryRow(ctx, `SELECT COUNT(*) FROM experience_cards `+where, args...).Scan(&total); err != nil {
		r.logger.Error("Failed to count public cards", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count public cards: %w", err)
	}

	query := fmt.Sprintf(`
        SELECT doc, version FROM experience_cards %s
        ORDER BY (doc->'stats'->>'view_count')::int DESC, created_at DESC
        OFFSET %s LIMIT %s
    `, where, arg(offset), arg(limit))

	cards, err := r.scanMany(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return cards, total, nil
}

func (r *RepositoryImpl) UpdateCard(ctx context.Context, c *models.ExperienceCard) error {
	expectedVersion := c.Version
	c.Version++

	doc, err := json.Marshal(c)
	if err != nil {
		c.Version = expectedVersion
		return fmt.Errorf("failed to marshal card: %w", err)
	}

	query := `
        UPDATE experience_cards
        SET is_public = $1, is_active = $2, is_deleted = $3,
            version = $4, doc = $5, updated_at = $6
        WHERE id = $7 AND version = $8
    `
	tag, err := r.pgpool.Exec(ctx, query,
		c.Settings.IsPublic, c.Settings.IsActive, c.IsDeleted,
		c.Version, doc, c.UpdatedAt, c.ID, expectedVersion,
	)
	if err != nil {
		c.Version = expectedVersion
		r.logger.Error("Failed to update card", zap.Error(err))
		return fmt.Errorf("failed to update card: %w", err)
	}
	if tag.RowsAffected() == 0 {
		c.Version = expectedVersion
		return fmt.Errorf("card %s version %d: %w", c.ID, expectedVersion, models.ErrConflict)
	}
	return nil
}

func (r *RepositoryImpl) IncrementStat(ctx context.Context, id uuid.UUID, stat string, delta int) error {
	if !statColumns[stat] {
		return fmt.Errorf("unknown stat %q: %w", stat, models.ErrBadRequest)
	}

	query := fmt.Sprintf(`
        UPDATE experience_cards
        SET doc = jsonb_set(doc, '{stats,%s}',
            to_jsonb(GREATEST(COALESCE((doc->'stats'->>'%s')::int, 0) + $2, 0)))
        WHERE id = $1 AND is_deleted = FALSE
    `, stat, stat)

	tag, err := r.pgpool.Exec(ctx, query, id, delta)
	if err != nil {
		r.logger.Error("Failed to increment card stat", zap.String("stat", stat), zap.Error(err))
		return fmt.Errorf("failed to increment card stat %s: %w", stat, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("card %s: %w", id, models.ErrNotFound)
	}
	return nil
}

// AppendInteraction targets only the recent_interactions array, so a log
// write can never clobber counters bumped concurrently by IncrementStat.
// The jsonpath slice keeps the stored log inside its bound.
func (r *RepositoryImpl) AppendInteraction(ctx context.Context, id uuid.UUID, entry models.CardInteraction) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal interaction: %w", err)
	}

	query := fmt.Sprintf(`
        UPDATE experience_cards
        SET doc = jsonb_set(doc, '{recent_interactions}',
            jsonb_path_query_array(
                $2::jsonb || COALESCE(doc->'recent_interactions', '[]'::jsonb),
                '$[0 to %d]'))
        WHERE id = $1 AND is_deleted = FALSE
    `, models.MaxRecentInteractions-1)

	tag, err := r.pgpool.Exec(ctx, query, id, payload)
	if err != nil {
		r.logger.Error("Failed to append card interaction", zap.Error(err))
		return fmt.Errorf("failed to append card interaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("card %s: %w", id, models.ErrNotFound)
	}
	return nil
}

func (r *RepositoryImpl) scanOne(ctx context.Context, query string, args ...any) (*models.ExperienceCard, error) {
	var doc []byte
	var version int
	err := r.pgpool.QueryRow(ctx, query, args...).Scan(&doc, &version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("card: %w", models.ErrNotFound)
		}
		r.logger.Error("Failed to get card", zap.Error(err))
		return nil, fmt.Errorf("failed to get card: %w", err)
	}

	var c models.ExperienceCard
	if err := json.Unmarshal(doc, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal card: %w", err)
	}
	c.Version = version
	return &c, nil
}

func (r *RepositoryImpl) scanMany(ctx context.Context, query string, args ...any) ([]*models.ExperienceCard, error) {
	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query cards", zap.Error(err))
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer rows.Close()

	var cards []*models.ExperienceCard
	for rows.Next() {
		var doc []byte
		var version int
		if err := rows.Scan(&doc, &version); err != nil {
			r.logger.Error("Failed to scan card row", zap.Error(err))
			return nil, fmt.Errorf("failed to scan card row: %w", err)
		}
		var c models.ExperienceCard
		if err := json.Unmarshal(doc, &c); err != nil {
			return nil, fmt.Errorf("failed to unmarshal card: %w", err)
		}
		c.Version = version
		cards = append(cards, &c)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating card rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating card rows: %w", err)
	}
	return cards, nil
}
