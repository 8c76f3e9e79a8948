package card

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/queska/queska-go/internal/app/models"
)

func newMockRepository(t *testing.T) (*RepositoryImpl, pgxmock.PgxPoolIface) {
	t.Helper()
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return NewRepository(pool, zap.NewNop()), pool
}

func storedCard() *models.ExperienceCard {
	now := time.Now().UTC().Truncate(time.Second)
	return &models.ExperienceCard{
		ID:           uuid.New(),
		ExperienceID: uuid.New(),
		Owner:        models.CardOwner{UserID: uuid.New(), Name: "Ada"},
		CardCode:     "QE-ABCD-EFGH",
		Title:        "Lagos Getaway",
		Settings:     models.DefaultCardSettings(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestRepositoryCreateCard(t *testing.T) {
	repo, pool := newMockRepository(t)
	c := storedCard()

	pool.ExpectExec("INSERT INTO experience_cards").
		WithArgs(c.ID, c.ExperienceID, c.Owner.UserID, c.CardCode,
			false, true, false, 0, pgxmock.AnyArg(), c.CreatedAt, c.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.CreateCard(context.Background(), c)

	require.NoError(t, err)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestRepositoryGetCardByCode(t *testing.T) {
	repo, pool := newMockRepository(t)
	c := storedCard()
	doc, err := json.Marshal(c)
	require.NoError(t, err)

	pool.ExpectQuery("SELECT doc, version FROM experience_cards").
		WithArgs(c.CardCode).
		WillReturnRows(pgxmock.NewRows([]string{"doc", "version"}).AddRow(doc, 2))

	got, err := repo.GetCardByCode(context.Background(), c.CardCode)

	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
	assert.Equal(t, 2, got.Version)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestRepositoryGetCardNotFound(t *testing.T) {
	repo, pool := newMockRepository(t)
	id := uuid.New()

	pool.ExpectQuery("SELECT doc, version FROM experience_cards").
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetCard(context.Background(), id)

	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRepositoryUpdateCardConflict(t *testing.T) {
	repo, pool := newMockRepository(t)
	c := storedCard()
	c.Version = 4

	pool.ExpectExec("UPDATE experience_cards").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.UpdateCard(context.Background(), c)

	assert.ErrorIs(t, err, models.ErrConflict)
	assert.Equal(t, 4, c.Version, "version rolls back on conflict")
}

func TestRepositoryIncrementStat(t *testing.T) {
	repo, pool := newMockRepository(t)
	id := uuid.New()

	pool.ExpectExec("UPDATE experience_cards").
		WithArgs(id, 1).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.IncrementStat(context.Background(), id, "view_count", 1)

	require.NoError(t, err)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestRepositoryIncrementStatRejectsUnknownStat(t *testing.T) {
	repo, _ := newMockRepository(t)

	err := repo.IncrementStat(context.Background(), uuid.New(), "doc", 1)

	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestRepositoryAppendInteraction(t *testing.T) {
	repo, pool := newMockRepository(t)
	id := uuid.New()
	entry := models.CardInteraction{Action: "viewed", Timestamp: time.Now().UTC()}

	pool.ExpectExec("UPDATE experience_cards").
		WithArgs(id, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.AppendInteraction(context.Background(), id, entry)

	require.NoError(t, err)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestRepositoryAppendInteractionNotFound(t *testing.T) {
	repo, pool := newMockRepository(t)

	pool.ExpectExec("UPDATE experience_cards").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.AppendInteraction(context.Background(), uuid.New(), models.CardInteraction{Action: "shared"})

	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRepositoryListSavedCards(t *testing.T) {
	repo, pool := newMockRepository(t)
	userID := uuid.New()
	c := storedCard()
	c.SavedBy = []uuid.UUID{userID}
	doc, err := json.Marshal(c)
	require.NoError(t, err)

	pool.ExpectQuery(`SELECT COUNT\(\*\) FROM experience_cards`).
		WithArgs(userID.String()).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	pool.ExpectQuery("SELECT doc, version FROM experience_cards").
		WithArgs(userID.String(), 0, 20).
		WillReturnRows(pgxmock.NewRows([]string{"doc", "version"}).AddRow(doc, 1))

	cards, total, err := repo.ListSavedCards(context.Background(), userID, 0, 20)

	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, cards, 1)
	assert.Equal(t, c.ID, cards[0].ID)
	assert.NoError(t, pool.ExpectationsWereMet())
}
