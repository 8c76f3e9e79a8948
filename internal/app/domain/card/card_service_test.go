package card

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/queska/queska-go/internal/app/models"
)

type MockCardRepository struct {
	mock.Mock
}

func (m *MockCardRepository) CreateCard(ctx context.Context, c *models.ExperienceCard) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCardRepository) GetCard(ctx context.Context, id uuid.UUID) (*models.ExperienceCard, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ExperienceCard), args.Error(1)
}

func (m *MockCardRepository) GetCardByCode(ctx context.Context, cardCode string) (*models.ExperienceCard, error) {
	args := m.Called(ctx, cardCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ExperienceCard), args.Error(1)
}

func (m *MockCardRepository) GetCardByExperienceID(ctx context.Context, experienceID uuid.UUID) (*models.ExperienceCard, error) {
	args := m.Called(ctx, experienceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ExperienceCard), args.Error(1)
}

func (m *MockCardRepository) ListUserCards(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]*models.ExperienceCard, int, error) {
	args := m.Called(ctx, ownerID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*models.ExperienceCard), args.Int(1), args.Error(2)
}

func (m *MockCardRepository) ListSavedCards(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*models.ExperienceCard, int, error) {
	args := m.Called(ctx, userID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*models.ExperienceCard), args.Int(1), args.Error(2)
}

func (m *MockCardRepository) SearchPublicCards(ctx context.Context, filters models.CardSearchFilters, offset, limit int) ([]*models.ExperienceCard, int, error) {
	args := m.Called(ctx, filters, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*models.ExperienceCard), args.Int(1), args.Error(2)
}

func (m *MockCardRepository) UpdateCard(ctx context.Context, c *models.ExperienceCard) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCardRepository) IncrementStat(ctx context.Context, id uuid.UUID, stat string, delta int) error {
	args := m.Called(ctx, id, stat, delta)
	return args.Error(0)
}

func (m *MockCardRepository) AppendInteraction(ctx context.Context, id uuid.UUID, entry models.CardInteraction) error {
	args := m.Called(ctx, id, entry)
	return args.Error(0)
}

type MockExperienceStore struct {
	mock.Mock
}

func (m *MockExperienceStore) GetExperience(ctx context.Context, id uuid.UUID) (*models.Experience, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Experience), args.Error(1)
}

func (m *MockExperienceStore) UpdateExperience(ctx context.Context, exp *models.Experience) error {
	args := m.Called(ctx, exp)
	return args.Error(0)
}

type MockExperienceCloner struct {
	mock.Mock
}

func (m *MockExperienceCloner) CloneExperience(ctx context.Context, source *models.Experience, newOwnerID uuid.UUID, fromCardCode string, req models.CloneRequest) (*models.Experience, error) {
	args := m.Called(ctx, source, newOwnerID, fromCardCode, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Experience), args.Error(1)
}

func newTestCardService(repo *MockCardRepository, store *MockExperienceStore, cloner *MockExperienceCloner) *ServiceImpl {
	return NewService(repo, store, cloner, "https://queska.test", zap.NewNop())
}

func activeTestCard(ownerID uuid.UUID) *models.ExperienceCard {
	return &models.ExperienceCard{
		ID:           uuid.New(),
		ExperienceID: uuid.New(),
		Owner:        models.CardOwner{UserID: ownerID, Name: "Ada"},
		CardCode:     "QE-ABCD-EFGH",
		Title:        "Lagos Getaway",
		Settings:     models.DefaultCardSettings(),
		Version:      1,
	}
}

func paidExperience(ownerID uuid.UUID) *models.Experience {
	return &models.Experience{
		ID:       uuid.New(),
		UserID:   ownerID,
		UserName: "Ada",
		Title:    "Lagos Getaway",
		Status:   models.ExperienceStatusConfirmed,
		Pricing:  models.NewExperiencePricing("USD"),
		Items: []models.ExperienceItem{
			{ID: uuid.New(), Type: models.ItemTypeActivity, Name: "Beach Day"},
		},
	}
}

func TestGenerateCard(t *testing.T) {
	repo := new(MockCardRepository)
	svc := newTestCardService(repo, new(MockExperienceStore), new(MockExperienceCloner))

	ownerID := uuid.New()
	exp := paidExperience(ownerID)

	repo.On("GetCardByExperienceID", mock.Anything, exp.ID).Return(nil, models.ErrNotFound)
	repo.On("CreateCard", mock.Anything, mock.AnythingOfType("*models.ExperienceCard")).Return(nil)

	c, err := svc.GenerateCard(context.Background(), exp)

	require.NoError(t, err)
	assert.Equal(t, exp.ID, c.ExperienceID)
	assert.Equal(t, ownerID, c.Owner.UserID)
	assert.Regexp(t, `^QE-[A-Z2-9]{4}-[A-Z2-9]{4}$`, c.CardCode)
	assert.True(t, c.Settings.IsActive)
	assert.True(t, c.Settings.AllowCloning)
	assert.False(t, c.Settings.ShowPrices)
	assert.False(t, c.IncludeFullItinerary, "day-by-day plan is opt-in")
	assert.Len(t, c.Highlights, 1)
	require.NotNil(t, c.Pricing)
	assert.NotEmpty(t, c.QRCodeURL)
	repo.AssertExpectations(t)
}

func TestGenerateCardIsIdempotent(t *testing.T) {
	repo := new(MockCardRepository)
	svc := newTestCardService(repo, new(MockExperienceStore), new(MockExperienceCloner))

	ownerID := uuid.New()
	exp := paidExperience(ownerID)
	existing := activeTestCard(ownerID)
	existing.ExperienceID = exp.ID

	repo.On("GetCardByExperienceID", mock.Anything, exp.ID).Return(existing, nil)

	c, err := svc.GenerateCard(context.Background(), exp)

	require.NoError(t, err)
	assert.Same(t, existing, c)
	repo.AssertNotCalled(t, "CreateCard", mock.Anything, mock.Anything)
}

func TestGenerateCardRecordsLineage(t *testing.T) {
	repo := new(MockCardRepository)
	svc := newTestCardService(repo, new(MockExperienceStore), new(MockExperienceCloner))

	ownerID := uuid.New()
	exp := paidExperience(ownerID)
	exp.ClonedFromCardCode = "QE-ORIG-CODE"

	original := activeTestCard(uuid.New())
	original.CardCode = "QE-ORIG-CODE"

	repo.On("GetCardByExperienceID", mock.Anything, exp.ID).Return(nil, models.ErrNotFound)
	repo.On("CreateCard", mock.Anything, mock.AnythingOfType("*models.ExperienceCard")).Return(nil)
	repo.On("GetCardByCode", mock.Anything, "QE-ORIG-CODE").Return(original, nil)
	repo.On("UpdateCard", mock.Anything, mock.AnythingOfType("*models.ExperienceCard")).Return(nil)

	c, err := svc.GenerateCard(context.Background(), exp)

	require.NoError(t, err)
	assert.True(t, c.IsClone)
	require.NotNil(t, c.OriginalCardID)
	assert.Equal(t, original.ID, *c.OriginalCardID)
	assert.Contains(t, original.ClonedCards, c.ID)
}

func TestGenerateCardPropagatesLookupError(t *testing.T) {
	repo := new(MockCardRepository)
	svc := newTestCardService(repo, new(MockExperienceStore), new(MockExperienceCloner))

	exp := paidExperience(uuid.New())
	repo.On("GetCardByExperienceID", mock.Anything, exp.ID).Return(nil, errors.New("connection reset"))

	_, err := svc.GenerateCard(context.Background(), exp)

	assert.Error(t, err)
	repo.AssertNotCalled(t, "CreateCard", mock.Anything, mock.Anything)
}

func TestGetCardByCodeOwnerSeesFullCard(t *testing.T) {
	repo := new(MockCardRepository)
	svc := newTestCardService(repo, new(MockExperienceStore), new(MockExperienceCloner))

	ownerID := uuid.New()
	c := activeTestCard(ownerID)
	c.LikedBy = []uuid.UUID{uuid.New()}

	repo.On("GetCardByCode", mock.Anything, c.CardCode).Return(c, nil)

	got, err := svc.GetCardByCode(context.Background(), c.CardCode, ViewerContext{UserID: &ownerID})

	require.NoError(t, err)
	assert.Same(t, c, got)
	repo.AssertNotCalled(t, "IncrementStat", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetCardByCodePublicViewerGetsProjection(t *testing.T) {
	repo := new(MockCardRepository)
	svc := newTestCardService(repo, new(MockExperienceStore), new(MockExperienceCloner))

	c := activeTestCard(uuid.New())
	c.LikedBy = []uuid.UUID{uuid.New()}

	viewerID := uuid.New()
	repo.On("GetCardByCode", mock.Anything, c.CardCode).Return(c, nil)
	repo.On("IncrementStat", mock.Anything, c.ID, "view_count", 1).Return(nil)
	repo.On("IncrementStat", mock.Anything, c.ID, "unique_viewers", 1).Return(nil)
	repo.On("AppendInteraction", mock.Anything, c.ID, mock.AnythingOfType("models.CardInteraction")).Return(nil)

	got, err := svc.GetCardByCode(context.Background(), c.CardCode, ViewerContext{UserID: &viewerID, IPAddress: "10.0.0.1"})

	require.NoError(t, err)
	assert.NotSame(t, c, got)
	assert.Nil(t, got.LikedBy)
	assert.Equal(t, 1, c.Stats.ViewCount)
	assert.Equal(t, 1, c.Stats.UniqueViewers)
	require.NotEmpty(t, c.RecentInteractions)
	assert.Equal(t, "viewed", c.RecentInteractions[0].Action)
	repo.AssertNotCalled(t, "UpdateCard", mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestGetCardByCodeRepeatViewerNotUnique(t *testing.T) {
	repo := new(MockCardRepository)
	svc := newTestCardService(repo, new(MockExperienceStore), new(MockExperienceCloner))

	viewerID := uuid.New()
	c := activeTestCard(uuid.New())
	c.RecentInteractions = []models.CardInteraction{
		{UserID: &viewerID, Action: "viewed", Timestamp: time.Now()},
	}

	repo.On("GetCardByCode", mock.Anything, c.CardCode).Return(c, nil)
	repo.On("IncrementStat", mock.Anything, c.ID, "view_count", 1).Return(nil)
	repo.On("AppendInteraction", mock.Anything, c.ID, mock.AnythingOfType("models.CardInteraction")).Return(nil)

	_, err := svc.GetCardByCode(context.Background(), c.CardCode, ViewerContext{UserID: &viewerID})

	require.NoError(t, err)
	repo.AssertNotCalled(t, "IncrementStat", mock.Anything, c.ID, "unique_viewers", 1)
}

func TestGetCardByCodeInactive(t *testing.T) {
	repo := new(MockCardRepository)
	svc := newTestCardService(repo, new(MockExperienceStore), new(MockExperienceCloner))

	c := activeTestCard(uuid.New())
	c.Settings.IsActive = false

	repo.On("GetCardByCode", mock.Anything, c.CardCode).Return(c, nil)

	_, err := svc.GetCardByCode(context.Background(), c.CardCode, ViewerContext{})

	assert.ErrorIs(t, err, models.ErrCardInactive)
}

func TestGetCardByCodeExpired(t *testing.T) {
	repo := new(MockCardRepository)
	svc := newTestCardService(repo, new(MockExperienceStore), new(MockExperienceCloner))

	c := activeTestCard(uuid.New())
	past := time.Now().Add(-time.Hour)
	c.Settings.ExpiresAt = &past

	repo.On("GetCardByCode", mock.Anything, c.CardCode).Return(c, nil)

	_, err := svc.GetCardByCode(context.Background(), c.CardCode, ViewerContext{})

	assert.ErrorIs(t, err, models.ErrCardInactive)
}

func TestToggleLike(t *testing.T) {
	repo := new(MockCardRepository)
	svc := newTestCardService(repo, new(MockExperienceStore), new(MockExperienceCloner))

	userID := uuid.New()
	c := activeTestCard(uuid.New())

	repo.On("GetCardByCode", mock.Anything, c.CardCode).Return(c, nil)
	repo.On("UpdateCard", mock.Anything, c).Return(nil)

	liked, err := svc.ToggleLike(context.Background(), c.CardCode, userID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.True(t, c.IsLikedBy(userID))

	liked, err = svc.ToggleLike(context.Background(), c.CardCode, userID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.False(t, c.IsLikedBy(userID))
}

func TestToggleSave(t *testing.T) {
	repo := new(MockCardRepository)
	svc := newTestCardService(repo, new(MockExperienceStore), new(MockExperienceCloner))

	userID := uuid.New()
	c := activeTestCard(uuid.New())

	repo.On("GetCardByCode", mock.Anything, c.CardCode).Return(c, nil)
	repo.On("UpdateCard", mock.Anything, c).Return(nil)

	saved, err := svc.ToggleSave(context.Background(), c.CardCode, userID)
	require.NoError(t, err)
	assert.True(t, saved)
	assert.Equal(t, 1, c.Stats.SaveCount)
	require.NotEmpty(t, c.RecentInteractions)
	assert.Equal(t, "saved", c.RecentInteractions[0].Action)

	saved, err = svc.ToggleSave(context.Background(), c.CardCode, userID)
	require.NoError(t, err)
	assert.False(t, saved)
	assert.Equal(t, 0, c.Stats.SaveCount)
	assert.False(t, c.IsSavedBy(userID))
}

func TestCloneCard(t *testing.T) {
	repo := new(MockCardRepository)
	store := new(MockExperienceStore)
	cloner := new(MockExperienceCloner)
	svc := newTestCardService(repo, store, cloner)

	clonerID := uuid.New()
	c := activeTestCard(uuid.New())
	source := paidExperience(c.Owner.UserID)
	source.ID = c.ExperienceID
	clone := &models.Experience{ID: uuid.New(), UserID: clonerID, Status: models.ExperienceStatusDraft}

	req := models.CloneRequest{}
	repo.On("GetCardByCode", mock.Anything, c.CardCode).Return(c, nil)
	store.On("GetExperience", mock.Anything, c.ExperienceID).Return(source, nil)
	cloner.On("CloneExperience", mock.Anything, source, clonerID, c.CardCode, req).Return(clone, nil)
	repo.On("IncrementStat", mock.Anything, c.ID, "clone_count", 1).Return(nil)
	repo.On("AppendInteraction", mock.Anything, c.ID, mock.AnythingOfType("models.CardInteraction")).Return(nil)

	got, err := svc.CloneCard(context.Background(), c.CardCode, clonerID, req)

	require.NoError(t, err)
	assert.Same(t, clone, got)
	require.NotEmpty(t, c.RecentInteractions)
	assert.Equal(t, "cloned", c.RecentInteractions[0].Action)
	repo.AssertExpectations(t)
	cloner.AssertExpectations(t)
}

func TestCloneCardDisabled(t *testing.T) {
	repo := new(MockCardRepository)
	cloner := new(MockExperienceCloner)
	svc := newTestCardService(repo, new(MockExperienceStore), cloner)

	c := activeTestCard(uuid.New())
	c.Settings.AllowCloning = false

	repo.On("GetCardByCode", mock.Anything, c.CardCode).Return(c, nil)

	_, err := svc.CloneCard(context.Background(), c.CardCode, uuid.New(), models.CloneRequest{})

	assert.ErrorIs(t, err, models.ErrCloningDisabled)
	cloner.AssertNotCalled(t, "CloneExperience", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateSettings(t *testing.T) {
	repo := new(MockCardRepository)
	svc := newTestCardService(repo, new(MockExperienceStore), new(MockExperienceCloner))

	ownerID := uuid.New()
	c := activeTestCard(ownerID)

	repo.On("GetCard", mock.Anything, c.ID).Return(c, nil)
	repo.On("UpdateCard", mock.Anything, c).Return(nil)

	isPublic := true
	showPrices := true
	allowCloning := false
	got, err := svc.UpdateSettings(context.Background(), c.ID, ownerID, models.CardSettingsUpdateRequest{
		IsPublic:     &isPublic,
		ShowPrices:   &showPrices,
		AllowCloning: &allowCloning,
	})

	require.NoError(t, err)
	assert.True(t, got.Settings.IsPublic)
	assert.True(t, got.Settings.ShowPrices)
	assert.False(t, got.Settings.AllowCloning)
	assert.True(t, got.Settings.ShowOwnerName, "untouched settings keep their values")
}

func TestUpdateOwnerLocationRejectedWhenDisabled(t *testing.T) {
	repo := new(MockCardRepository)
	svc := newTestCardService(repo, new(MockExperienceStore), new(MockExperienceCloner))

	ownerID := uuid.New()
	c := activeTestCard(ownerID)

	repo.On("GetCard", mock.Anything, c.ID).Return(c, nil)

	_, err := svc.UpdateOwnerLocation(context.Background(), c.ID, ownerID, models.UpdateLocationRequest{
		Latitude:  6.52,
		Longitude: 3.37,
	})

	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Nil(t, c.OwnerLocation)
	repo.AssertNotCalled(t, "UpdateCard", mock.Anything, mock.Anything)
}

func TestUpdateOwnerLocationWhenEnabled(t *testing.T) {
	repo := new(MockCardRepository)
	svc := newTestCardService(repo, new(MockExperienceStore), new(MockExperienceCloner))

	ownerID := uuid.New()
	c := activeTestCard(ownerID)
	c.Settings.ShowRealTimeLocation = true

	repo.On("GetCard", mock.Anything, c.ID).Return(c, nil)
	repo.On("UpdateCard", mock.Anything, c).Return(nil)

	got, err := svc.UpdateOwnerLocation(context.Background(), c.ID, ownerID, models.UpdateLocationRequest{
		Latitude:  6.52,
		Longitude: 3.37,
	})

	require.NoError(t, err)
	require.NotNil(t, got.OwnerLocation)
	assert.Equal(t, 6.52, got.OwnerLocation.Latitude)
	assert.True(t, got.OwnerLocation.IsSharing)
}

func TestStopLocationSharingClearsLocation(t *testing.T) {
	repo := new(MockCardRepository)
	svc := newTestCardService(repo, new(MockExperienceStore), new(MockExperienceCloner))

	ownerID := uuid.New()
	c := activeTestCard(ownerID)
	c.Settings.ShowRealTimeLocation = true
	c.OwnerLocation = &models.CardLocation{UserID: ownerID, Latitude: 6.52, Longitude: 3.37, IsSharing: true}

	repo.On("GetCard", mock.Anything, c.ID).Return(c, nil)
	repo.On("UpdateCard", mock.Anything, c).Return(nil)

	got, err := svc.StopLocationSharing(context.Background(), c.ID, ownerID)

	require.NoError(t, err)
	assert.Nil(t, got.OwnerLocation)
	assert.False(t, got.Settings.ShowRealTimeLocation)
}

func TestUpdateCardPublishesItinerary(t *testing.T) {
	repo := new(MockCardRepository)
	svc := newTestCardService(repo, new(MockExperienceStore), new(MockExperienceCloner))

	ownerID := uuid.New()
	c := activeTestCard(ownerID)

	repo.On("GetCard", mock.Anything, c.ID).Return(c, nil)
	repo.On("UpdateCard", mock.Anything, c).Return(nil)

	include := true
	got, err := svc.UpdateCard(context.Background(), c.ID, ownerID, models.CardUpdateRequest{
		IncludeFullItinerary: &include,
	})

	require.NoError(t, err)
	assert.True(t, got.IncludeFullItinerary)
}

func TestCardOwnershipEnforced(t *testing.T) {
	repo := new(MockCardRepository)
	svc := newTestCardService(repo, new(MockExperienceStore), new(MockExperienceCloner))

	c := activeTestCard(uuid.New())
	repo.On("GetCard", mock.Anything, c.ID).Return(c, nil)

	_, err := svc.GetCard(context.Background(), c.ID, uuid.New())

	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestDeleteCardClearsExperienceLinkage(t *testing.T) {
	repo := new(MockCardRepository)
	store := new(MockExperienceStore)
	svc := newTestCardService(repo, store, new(MockExperienceCloner))

	ownerID := uuid.New()
	c := activeTestCard(ownerID)
	exp := paidExperience(ownerID)
	exp.ID = c.ExperienceID
	exp.ExperienceCardID = &c.ID
	exp.CardGenerated = true

	repo.On("GetCard", mock.Anything, c.ID).Return(c, nil)
	repo.On("UpdateCard", mock.Anything, c).Return(nil)
	store.On("GetExperience", mock.Anything, c.ExperienceID).Return(exp, nil)
	store.On("UpdateExperience", mock.Anything, exp).Return(nil)

	err := svc.DeleteCard(context.Background(), c.ID, ownerID)

	require.NoError(t, err)
	assert.True(t, c.IsDeleted)
	assert.Nil(t, exp.ExperienceCardID)
	assert.False(t, exp.CardGenerated)
	store.AssertExpectations(t)
}

func TestTravelEstimateRequiresCoordinates(t *testing.T) {
	repo := new(MockCardRepository)
	svc := newTestCardService(repo, new(MockExperienceStore), new(MockExperienceCloner))

	c := activeTestCard(uuid.New())
	repo.On("GetCardByCode", mock.Anything, c.CardCode).Return(c, nil)

	_, err := svc.TravelEstimate(context.Background(), c.CardCode, 6.45, 3.39)

	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestShareCardBumpsCounter(t *testing.T) {
	repo := new(MockCardRepository)
	svc := newTestCardService(repo, new(MockExperienceStore), new(MockExperienceCloner))

	c := activeTestCard(uuid.New())
	repo.On("GetCardByCode", mock.Anything, c.CardCode).Return(c, nil)
	repo.On("IncrementStat", mock.Anything, c.ID, "share_count", 1).Return(nil)
	repo.On("AppendInteraction", mock.Anything, c.ID, mock.AnythingOfType("models.CardInteraction")).Return(nil)

	url, err := svc.ShareCard(context.Background(), c.CardCode, ViewerContext{}, models.ShareCardRequest{ShareVia: "whatsapp"})

	require.NoError(t, err)
	assert.Equal(t, "https://queska.test/experience/"+c.CardCode, url)
	require.NotEmpty(t, c.RecentInteractions)
	assert.Equal(t, "shared", c.RecentInteractions[0].Action)
}

func TestNearbyCardsFiltersByRadius(t *testing.T) {
	repo := new(MockCardRepository)
	svc := newTestCardService(repo, new(MockExperienceStore), new(MockExperienceCloner))

	near := activeTestCard(uuid.New())
	near.Destination = models.TravelLocation{City: "Lagos", Latitude: ptr(6.52), Longitude: ptr(3.37)}
	far := activeTestCard(uuid.New())
	far.Destination = models.TravelLocation{City: "Abuja", Latitude: ptr(9.07), Longitude: ptr(7.49)}
	noCoords := activeTestCard(uuid.New())

	repo.On("SearchPublicCards", mock.Anything, models.CardSearchFilters{}, 0, 500).
		Return([]*models.ExperienceCard{near, far, noCoords}, 3, nil)

	cards, err := svc.NearbyCards(context.Background(), 6.45, 3.39, 50, 20)

	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "Lagos", cards[0].Destination.City)
}

func TestFeaturedCardsSkipsInactiveAndProjects(t *testing.T) {
	repo := new(MockCardRepository)
	svc := newTestCardService(repo, new(MockExperienceStore), new(MockExperienceCloner))

	active := activeTestCard(uuid.New())
	active.LikedBy = []uuid.UUID{uuid.New()}
	expired := activeTestCard(uuid.New())
	expiry := time.Now().Add(-time.Hour)
	expired.Settings.ExpiresAt = &expiry

	repo.On("SearchPublicCards", mock.Anything, models.CardSearchFilters{}, 0, 10).
		Return([]*models.ExperienceCard{active, expired}, 2, nil)

	cards, err := svc.FeaturedCards(context.Background(), 10)

	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, active.CardCode, cards[0].CardCode)
	assert.Nil(t, cards[0].LikedBy)
}

func TestListCardsPropagatesRepositoryError(t *testing.T) {
	repo := new(MockCardRepository)
	svc := newTestCardService(repo, new(MockExperienceStore), new(MockExperienceCloner))

	userID := uuid.New()
	repo.On("ListUserCards", mock.Anything, userID, 0, 20).Return(nil, 0, errors.New("connection reset"))

	_, _, err := svc.ListUserCards(context.Background(), userID, 0, 0)

	assert.Error(t, err)
}
