package card

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/queska/queska-go/internal/app/models"
	"github.com/queska/queska-go/internal/pkg/qr"
	"github.com/queska/queska-go/internal/pkg/sharecode"
)

var _ Service = (*ServiceImpl)(nil)

// ExperienceStore is the slice of the experience repository the card domain
// needs: raw loads for cloning and linkage cleanup on card deletion.
type ExperienceStore interface {
	GetExperience(ctx context.Context, id uuid.UUID) (*models.Experience, error)
	UpdateExperience(ctx context.Context, exp *models.Experience) error
}

// ExperienceCloner is implemented by the experience service.
type ExperienceCloner interface {
	CloneExperience(ctx context.Context, source *models.Experience, newOwnerID uuid.UUID, fromCardCode string, req models.CloneRequest) (*models.Experience, error)
}

// ViewerContext carries request metadata for interaction logging. All
// fields are optional; anonymous views are logged without a user id.
type ViewerContext struct {
	UserID    *uuid.UUID
	IPAddress string
	UserAgent string
}

type Service interface {
	// GenerateCard freezes a paid experience into its shareable card. It is
	// idempotent: a second call for the same experience returns the
	// existing card untouched.
	GenerateCard(ctx context.Context, exp *models.Experience) (*models.ExperienceCard, error)

	GetCard(ctx context.Context, cardID, userID uuid.UUID) (*models.ExperienceCard, error)
	GetCardByCode(ctx context.Context, cardCode string, viewer ViewerContext) (*models.ExperienceCard, error)
	ListUserCards(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*models.ExperienceCard, int, error)
	ListSavedCards(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*models.ExperienceCard, int, error)
	SearchPublicCards(ctx context.Context, filters models.CardSearchFilters, offset, limit int) ([]*models.ExperienceCard, int, error)
	FeaturedCards(ctx context.Context, limit int) ([]*models.ExperienceCard, error)
	NearbyCards(ctx context.Context, lat, lng, radiusKm float64, limit int) ([]*models.ExperienceCard, error)

	UpdateCard(ctx context.Context, cardID, userID uuid.UUID, req models.CardUpdateRequest) (*models.ExperienceCard, error)
	UpdateSettings(ctx context.Context, cardID, userID uuid.UUID, req models.CardSettingsUpdateRequest) (*models.ExperienceCard, error)
	DeactivateCard(ctx context.Context, cardID, userID uuid.UUID) (*models.ExperienceCard, error)
	DeleteCard(ctx context.Context, cardID, userID uuid.UUID) error

	UpdateOwnerLocation(ctx context.Context, cardID, userID uuid.UUID, req models.UpdateLocationRequest) (*models.ExperienceCard, error)
	StopLocationSharing(ctx context.Context, cardID, userID uuid.UUID) (*models.ExperienceCard, error)
	TravelEstimate(ctx context.Context, cardCode string, fromLat, fromLng float64) (*models.TravelTimeEstimate, error)

	ShareCard(ctx context.Context, cardCode string, viewer ViewerContext, req models.ShareCardRequest) (string, error)
	GetShareStats(ctx context.Context, cardID, userID uuid.UUID) (*models.CardStats, error)

	// ToggleLike and ToggleSave flip set membership for the user and
	// report the resulting state.
	ToggleLike(ctx context.Context, cardCode string, userID uuid.UUID) (bool, error)
	ToggleSave(ctx context.Context, cardCode string, userID uuid.UUID) (bool, error)

	CloneCard(ctx context.Context, cardCode string, userID uuid.UUID, req models.CloneRequest) (*models.Experience, error)
}

type ServiceImpl struct {
	logger      *zap.Logger
	repo        Repository
	experiences ExperienceStore
	cloner      ExperienceCloner
	baseURL     string
}

// NewService creates a new instance of ServiceImpl.
func NewService(repo Repository, experiences ExperienceStore, cloner ExperienceCloner, baseURL string, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:      logger,
		repo:        repo,
		experiences: experiences,
		cloner:      cloner,
		baseURL:     baseURL,
	}
}

func (s *ServiceImpl) GenerateCard(ctx context.Context, exp *models.Experience) (*models.ExperienceCard, error) {
	ctx, span := otel.Tracer("CardService").Start(ctx, "GenerateCard", trace.WithAttributes(
		attribute.String("experience.id", exp.ID.String()),
	))
	defer span.End()

	l := s.logger.With(zap.String("method", "GenerateCard"), zap.String("experienceID", exp.ID.String()))

	existing, err := s.repo.GetCardByExperienceID(ctx, exp.ID)
	if err == nil {
		l.Debug("Card already exists", zap.String("cardID", existing.ID.String()))
		span.SetStatus(codes.Ok, "Card already exists")
		return existing, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		l.Error("Failed to look up existing card", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Card lookup failed")
		return nil, fmt.Errorf("failed to look up existing card: %w", err)
	}

	now := time.Now()
	c := &models.ExperienceCard{
		ID:           uuid.New(),
		ExperienceID: exp.ID,
		Owner: models.CardOwner{
			UserID: exp.UserID,
			Name:   exp.UserName,
		},
		CardCode:    sharecode.NewCardCode(),
		Title:       exp.Title,
		Description: exp.Description,
		CoverImage:  exp.CoverImage,
		Images:      exp.Images,
		Destination: exp.Destination,
		Origin:      exp.Origin,
		Dates:       exp.Dates,
		Travelers:   exp.Travelers,
		Highlights:  buildHighlights(exp.Items),

		// The day-by-day plan is stored but stays owner-only until the
		// owner opts in to publishing it.
		Itinerary:            exp.Itinerary,
		IncludeFullItinerary: false,

		ExperienceStatus: models.ExperienceStatusConfirmed,
		Settings:         models.DefaultCardSettings(),
		Tags:             exp.Tags,
		Categories:       exp.Categories,
		Currency:         exp.Pricing.Currency,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	pricing := exp.Pricing
	c.Pricing = &pricing

	qrURL, err := qr.DataURL(c.ShareURL(s.baseURL))
	if err != nil {
		// The card is still fully usable without its QR code.
		l.Warn("Failed to render QR code", zap.Error(err))
	} else {
		c.QRCodeURL = qrURL
	}

	if err := s.repo.CreateCard(ctx, c); err != nil {
		l.Error("Failed to create card", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create card")
		return nil, fmt.Errorf("failed to create card: %w", err)
	}

	// A clone's card joins the original card's lineage.
	if exp.ClonedFromCardCode != "" {
		s.recordCloneLineage(ctx, exp.ClonedFromCardCode, c)
	}

	l.Info("Card generated", zap.String("cardID", c.ID.String()), zap.String("cardCode", c.CardCode))
	span.SetStatus(codes.Ok, "Card generated")
	return c, nil
}

// recordCloneLineage marks the new card as a clone and appends it to the
// original card's clone list. Lineage is best effort; a conflict here never
// fails card generation.
func (s *ServiceImpl) recordCloneLineage(ctx context.Context, originalCode string, clone *models.ExperienceCard) {
	l := s.logger.With(zap.String("method", "recordCloneLineage"), zap.String("originalCode", originalCode))

	original, err := s.repo.GetCardByCode(ctx, originalCode)
	if err != nil {
		l.Warn("Original card not found for lineage", zap.Error(err))
		return
	}

	clone.OriginalCardID = &original.ID
	clone.IsClone = true
	if err := s.repo.UpdateCard(ctx, clone); err != nil {
		l.Warn("Failed to mark clone card", zap.Error(err))
	}

	original.ClonedCards = append(original.ClonedCards, clone.ID)
	original.UpdatedAt = time.Now()
	if err := s.repo.UpdateCard(ctx, original); err != nil {
		l.Warn("Failed to record clone on original card", zap.Error(err))
	}
}

func (s *ServiceImpl) GetCard(ctx context.Context, cardID, userID uuid.UUID) (*models.ExperienceCard, error) {
	ctx, span := otel.Tracer("CardService").Start(ctx, "GetCard", trace.WithAttributes(
		attribute.String("card.id", cardID.String()),
	))
	defer span.End()

	c, err := s.ownedCard(ctx, cardID, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to get card")
		return nil, err
	}

	span.SetStatus(codes.Ok, "Card fetched")
	return c, nil
}

// GetCardByCode resolves a card for viewing. The owner gets the full card;
// everyone else gets the settings-gated projection, with the view recorded
// in the stats and the bounded interaction log.
func (s *ServiceImpl) GetCardByCode(ctx context.Context, cardCode string, viewer ViewerContext) (*models.ExperienceCard, error) {
	ctx, span := otel.Tracer("CardService").Start(ctx, "GetCardByCode", trace.WithAttributes(
		attribute.String("card.code", cardCode),
	))
	defer span.End()

	l := s.logger.With(zap.String("method", "GetCardByCode"), zap.String("cardCode", cardCode))

	c, err := s.repo.GetCardByCode(ctx, cardCode)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Card not found")
		return nil, err
	}

	isOwner := viewer.UserID != nil && *viewer.UserID == c.Owner.UserID
	if isOwner {
		span.SetStatus(codes.Ok, "Card fetched by owner")
		return c, nil
	}

	if !c.IsActive(time.Now()) {
		err := fmt.Errorf("card %s: %w", cardCode, models.ErrCardInactive)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Card inactive")
		return nil, err
	}

	s.recordView(ctx, c, viewer, l)

	span.SetStatus(codes.Ok, "Card fetched")
	return PublicProjection(c), nil
}

// recordView bumps the view counters atomically and appends to the
// interaction log with a targeted write that leaves the counters alone.
// The log write is best effort; losing one entry under contention is
// acceptable, losing counter increments is not.
func (s *ServiceImpl) recordView(ctx context.Context, c *models.ExperienceCard, viewer ViewerContext, l *zap.Logger) {
	if err := s.repo.IncrementStat(ctx, c.ID, "view_count", 1); err != nil {
		l.Warn("Failed to increment view count", zap.Error(err))
		return
	}
	c.Stats.ViewCount++

	if viewer.UserID != nil && !hasViewed(c.RecentInteractions, *viewer.UserID) {
		if err := s.repo.IncrementStat(ctx, c.ID, "unique_viewers", 1); err != nil {
			l.Warn("Failed to increment unique viewers", zap.Error(err))
		} else {
			c.Stats.UniqueViewers++
		}
	}

	entry := models.CardInteraction{
		UserID:    viewer.UserID,
		Action:    "viewed",
		IPAddress: viewer.IPAddress,
		UserAgent: viewer.UserAgent,
		Timestamp: time.Now(),
	}
	c.RecordInteraction(entry)
	if err := s.repo.AppendInteraction(ctx, c.ID, entry); err != nil {
		l.Debug("Skipped interaction log write", zap.Error(err))
	}
}

// hasViewed scans the recent log for a prior view by this user. The log is
// a bounded window, so this undercounts unique viewers for very busy cards.
func hasViewed(interactions []models.CardInteraction, userID uuid.UUID) bool {
	for _, entry := range interactions {
		if entry.Action == "viewed" && entry.UserID != nil && *entry.UserID == userID {
			return true
		}
	}
	return false
}

func (s *ServiceImpl) ListUserCards(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*models.ExperienceCard, int, error) {
	ctx, span := otel.Tracer("CardService").Start(ctx, "ListUserCards", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	cards, total, err := s.repo.ListUserCards(ctx, userID, offset, normalizeLimit(limit))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to list cards")
		return nil, 0, fmt.Errorf("failed to list cards: %w", err)
	}

	span.SetStatus(codes.Ok, "Cards listed")
	return cards, total, nil
}

func (s *ServiceImpl) ListSavedCards(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*models.ExperienceCard, int, error) {
	ctx, span := otel.Tracer("CardService").Start(ctx, "ListSavedCards", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	cards, total, err := s.repo.ListSavedCards(ctx, userID, offset, normalizeLimit(limit))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to list saved cards")
		return nil, 0, fmt.Errorf("failed to list saved cards: %w", err)
	}

	// Saved cards belong to other users, so each goes through the
	// projection.
	projected := make([]*models.ExperienceCard, len(cards))
	for i, c := range cards {
		if c.Owner.UserID == userID {
			projected[i] = c
			continue
		}
		projected[i] = PublicProjection(c)
	}

	span.SetStatus(codes.Ok, "Saved cards listed")
	return projected, total, nil
}

func (s *ServiceImpl) SearchPublicCards(ctx context.Context, filters models.CardSearchFilters, offset, limit int) ([]*models.ExperienceCard, int, error) {
	ctx, span := otel.Tracer("CardService").Start(ctx, "SearchPublicCards")
	defer span.End()

	cards, total, err := s.repo.SearchPublicCards(ctx, filters, offset, normalizeLimit(limit))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to search cards")
		return nil, 0, fmt.Errorf("failed to search cards: %w", err)
	}

	now := time.Now()
	projected := make([]*models.ExperienceCard, 0, len(cards))
	for _, c := range cards {
		if !c.IsActive(now) {
			continue
		}
		projected = append(projected, PublicProjection(c))
	}

	span.SetStatus(codes.Ok, "Cards searched")
	return projected, total, nil
}

// FeaturedCards returns the most viewed active public cards.
func (s *ServiceImpl) FeaturedCards(ctx context.Context, limit int) ([]*models.ExperienceCard, error) {
	ctx, span := otel.Tracer("CardService").Start(ctx, "FeaturedCards")
	defer span.End()

	cards, _, err := s.repo.SearchPublicCards(ctx, models.CardSearchFilters{}, 0, normalizeLimit(limit))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to load featured cards")
		return nil, fmt.Errorf("failed to load featured cards: %w", err)
	}

	now := time.Now()
	featured := make([]*models.ExperienceCard, 0, len(cards))
	for _, c := range cards {
		if !c.IsActive(now) {
			continue
		}
		featured = append(featured, PublicProjection(c))
	}

	span.SetStatus(codes.Ok, "Featured cards loaded")
	return featured, nil
}

// NearbyCards returns public cards whose destination lies within radiusKm
// of the given point. Distance filtering happens here rather than in SQL;
// the public card set is small enough that a scan beats maintaining a
// geospatial index.
func (s *ServiceImpl) NearbyCards(ctx context.Context, lat, lng, radiusKm float64, limit int) ([]*models.ExperienceCard, error) {
	ctx, span := otel.Tracer("CardService").Start(ctx, "NearbyCards", trace.WithAttributes(
		attribute.Float64("geo.lat", lat),
		attribute.Float64("geo.lng", lng),
		attribute.Float64("geo.radius_km", radiusKm),
	))
	defer span.End()

	limit = normalizeLimit(limit)
	cards, _, err := s.repo.SearchPublicCards(ctx, models.CardSearchFilters{}, 0, 500)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to load cards")
		return nil, fmt.Errorf("failed to load cards: %w", err)
	}

	now := time.Now()
	var nearby []*models.ExperienceCard
	for _, c := range cards {
		if !c.IsActive(now) {
			continue
		}
		if c.Destination.Latitude == nil || c.Destination.Longitude == nil {
			continue
		}
		if haversineKm(lat, lng, *c.Destination.Latitude, *c.Destination.Longitude) > radiusKm {
			continue
		}
		nearby = append(nearby, PublicProjection(c))
		if len(nearby) >= limit {
			break
		}
	}

	span.SetStatus(codes.Ok, "Nearby cards found")
	return nearby, nil
}

func (s *ServiceImpl) UpdateCard(ctx context.Context, cardID, userID uuid.UUID, req models.CardUpdateRequest) (*models.ExperienceCard, error) {
	ctx, span := otel.Tracer("CardService").Start(ctx, "UpdateCard", trace.WithAttributes(
		attribute.String("card.id", cardID.String()),
	))
	defer span.End()

	c, err := s.ownedCard(ctx, cardID, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to get card")
		return nil, err
	}

	if req.Title != nil {
		c.Title = *req.Title
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	if req.Tagline != nil {
		c.Tagline = *req.Tagline
	}
	if req.CoverImage != nil {
		c.CoverImage = *req.CoverImage
	}
	if req.Images != nil {
		c.Images = req.Images
	}
	if req.VideoURL != nil {
		c.VideoURL = *req.VideoURL
	}
	if req.Tags != nil {
		c.Tags = req.Tags
	}
	if req.IncludeFullItinerary != nil {
		c.IncludeFullItinerary = *req.IncludeFullItinerary
	}

	if err := s.persist(ctx, c); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to update card")
		return nil, err
	}

	span.SetStatus(codes.Ok, "Card updated")
	return c, nil
}

func (s *ServiceImpl) UpdateSettings(ctx context.Context, cardID, userID uuid.UUID, req models.CardSettingsUpdateRequest) (*models.ExperienceCard, error) {
	ctx, span := otel.Tracer("CardService").Start(ctx, "UpdateSettings", trace.WithAttributes(
		attribute.String("card.id", cardID.String()),
	))
	defer span.End()

	c, err := s.ownedCard(ctx, cardID, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to get card")
		return nil, err
	}

	if req.IsPublic != nil {
		c.Settings.IsPublic = *req.IsPublic
	}
	if req.IsActive != nil {
		c.Settings.IsActive = *req.IsActive
	}
	if req.ExpiresAt != nil {
		c.Settings.ExpiresAt = req.ExpiresAt
	}
	if req.ShowOwnerName != nil {
		c.Settings.ShowOwnerName = *req.ShowOwnerName
	}
	if req.ShowOwnerAvatar != nil {
		c.Settings.ShowOwnerAvatar = *req.ShowOwnerAvatar
	}
	if req.ShowPrices != nil {
		c.Settings.ShowPrices = *req.ShowPrices
	}
	if req.ShowVendorDetails != nil {
		c.Settings.ShowVendorDetails = *req.ShowVendorDetails
	}
	if req.ShowRealTimeLocation != nil {
		c.Settings.ShowRealTimeLocation = *req.ShowRealTimeLocation
	}
	if req.AllowCloning != nil {
		c.Settings.AllowCloning = *req.AllowCloning
	}
	if req.Theme != nil {
		c.Settings.Theme = *req.Theme
	}
	if req.CoverStyle != nil {
		c.Settings.CoverStyle = *req.CoverStyle
	}
	if req.AccentColor != nil {
		c.Settings.AccentColor = *req.AccentColor
	}

	if err := s.persist(ctx, c); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to update settings")
		return nil, err
	}

	span.SetStatus(codes.Ok, "Settings updated")
	return c, nil
}

func (s *ServiceImpl) DeactivateCard(ctx context.Context, cardID, userID uuid.UUID) (*models.ExperienceCard, error) {
	ctx, span := otel.Tracer("CardService").Start(ctx, "DeactivateCard", trace.WithAttributes(
		attribute.String("card.id", cardID.String()),
	))
	defer span.End()

	c, err := s.ownedCard(ctx, cardID, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to get card")
		return nil, err
	}

	c.Settings.IsActive = false
	if err := s.persist(ctx, c); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to deactivate card")
		return nil, err
	}

	span.SetStatus(codes.Ok, "Card deactivated")
	return c, nil
}

// DeleteCard soft-deletes the card and then clears the linkage on the
// source experience. The two writes are not transactional; a crash in
// between leaves the experience pointing at a deleted card, which readers
// treat the same as no card.
func (s *ServiceImpl) DeleteCard(ctx context.Context, cardID, userID uuid.UUID) error {
	ctx, span := otel.Tracer("CardService").Start(ctx, "DeleteCard", trace.WithAttributes(
		attribute.String("card.id", cardID.String()),
	))
	defer span.End()

	l := s.logger.With(zap.String("method", "DeleteCard"), zap.String("cardID", cardID.String()))

	c, err := s.ownedCard(ctx, cardID, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to get card")
		return err
	}

	c.IsDeleted = true
	if err := s.persist(ctx, c); err != nil {
		l.Error("Failed to delete card", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to delete card")
		return err
	}

	exp, err := s.experiences.GetExperience(ctx, c.ExperienceID)
	if err != nil {
		l.Warn("Source experience not found for linkage cleanup", zap.Error(err))
		span.SetStatus(codes.Ok, "Card deleted")
		return nil
	}
	exp.ExperienceCardID = nil
	exp.CardGenerated = false
	exp.UpdatedAt = time.Now()
	if err := s.experiences.UpdateExperience(ctx, exp); err != nil {
		l.Warn("Failed to clear card linkage on experience", zap.Error(err))
	}

	l.Info("Card deleted")
	span.SetStatus(codes.Ok, "Card deleted")
	return nil
}

func (s *ServiceImpl) UpdateOwnerLocation(ctx context.Context, cardID, userID uuid.UUID, req models.UpdateLocationRequest) (*models.ExperienceCard, error) {
	ctx, span := otel.Tracer("CardService").Start(ctx, "UpdateOwnerLocation", trace.WithAttributes(
		attribute.String("card.id", cardID.String()),
	))
	defer span.End()

	c, err := s.ownedCard(ctx, cardID, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to get card")
		return nil, err
	}

	if !c.Settings.ShowRealTimeLocation {
		err := fmt.Errorf("real-time location sharing is disabled for card %s: %w", cardID, models.ErrValidation)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Location sharing disabled")
		return nil, err
	}

	c.OwnerLocation = &models.CardLocation{
		UserID:    userID,
		Name:      c.Owner.Name,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Accuracy:  req.Accuracy,
		UpdatedAt: time.Now(),
		IsSharing: true,
	}

	if err := s.persist(ctx, c); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to update location")
		return nil, err
	}

	span.SetStatus(codes.Ok, "Location updated")
	return c, nil
}

func (s *ServiceImpl) StopLocationSharing(ctx context.Context, cardID, userID uuid.UUID) (*models.ExperienceCard, error) {
	ctx, span := otel.Tracer("CardService").Start(ctx, "StopLocationSharing", trace.WithAttributes(
		attribute.String("card.id", cardID.String()),
	))
	defer span.End()

	c, err := s.ownedCard(ctx, cardID, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to get card")
		return nil, err
	}

	// Drop the stored fix entirely so stale coordinates can never leak
	// through a later settings change.
	c.OwnerLocation = nil
	c.Settings.ShowRealTimeLocation = false

	if err := s.persist(ctx, c); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to stop location sharing")
		return nil, err
	}

	span.SetStatus(codes.Ok, "Location sharing stopped")
	return c, nil
}

func (s *ServiceImpl) TravelEstimate(ctx context.Context, cardCode string, fromLat, fromLng float64) (*models.TravelTimeEstimate, error) {
	ctx, span := otel.Tracer("CardService").Start(ctx, "TravelEstimate", trace.WithAttributes(
		attribute.String("card.code", cardCode),
	))
	defer span.End()

	c, err := s.repo.GetCardByCode(ctx, cardCode)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Card not found")
		return nil, err
	}
	if !c.IsActive(time.Now()) {
		err := fmt.Errorf("card %s: %w", cardCode, models.ErrCardInactive)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Card inactive")
		return nil, err
	}
	if c.Destination.Latitude == nil || c.Destination.Longitude == nil {
		err := fmt.Errorf("card destination has no coordinates: %w", models.ErrValidation)
		span.RecordError(err)
		span.SetStatus(codes.Error, "No destination coordinates")
		return nil, err
	}

	estimate := estimateTravelTime(fromLat, fromLng, c.Destination)
	span.SetStatus(codes.Ok, "Estimate computed")
	return &estimate, nil
}

// ShareCard bumps the share counter and returns the canonical share URL.
func (s *ServiceImpl) ShareCard(ctx context.Context, cardCode string, viewer ViewerContext, req models.ShareCardRequest) (string, error) {
	ctx, span := otel.Tracer("CardService").Start(ctx, "ShareCard", trace.WithAttributes(
		attribute.String("card.code", cardCode),
		attribute.String("share.via", req.ShareVia),
	))
	defer span.End()

	l := s.logger.With(zap.String("method", "ShareCard"), zap.String("cardCode", cardCode))

	c, err := s.repo.GetCardByCode(ctx, cardCode)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Card not found")
		return "", err
	}
	if !c.IsActive(time.Now()) {
		err := fmt.Errorf("card %s: %w", cardCode, models.ErrCardInactive)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Card inactive")
		return "", err
	}

	if err := s.repo.IncrementStat(ctx, c.ID, "share_count", 1); err != nil {
		l.Warn("Failed to increment share count", zap.Error(err))
	}

	entry := models.CardInteraction{
		UserID:    viewer.UserID,
		Action:    "shared",
		IPAddress: viewer.IPAddress,
		UserAgent: viewer.UserAgent,
		Timestamp: time.Now(),
	}
	c.RecordInteraction(entry)
	if err := s.repo.AppendInteraction(ctx, c.ID, entry); err != nil {
		l.Debug("Skipped interaction log write", zap.Error(err))
	}

	span.SetStatus(codes.Ok, "Card shared")
	return c.ShareURL(s.baseURL), nil
}

func (s *ServiceImpl) GetShareStats(ctx context.Context, cardID, userID uuid.UUID) (*models.CardStats, error) {
	ctx, span := otel.Tracer("CardService").Start(ctx, "GetShareStats", trace.WithAttributes(
		attribute.String("card.id", cardID.String()),
	))
	defer span.End()

	c, err := s.ownedCard(ctx, cardID, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to get card")
		return nil, err
	}

	stats := c.Stats
	span.SetStatus(codes.Ok, "Stats fetched")
	return &stats, nil
}

func (s *ServiceImpl) ToggleLike(ctx context.Context, cardCode string, userID uuid.UUID) (bool, error) {
	ctx, span := otel.Tracer("CardService").Start(ctx, "ToggleLike", trace.WithAttributes(
		attribute.String("card.code", cardCode),
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	c, err := s.activeCard(ctx, cardCode)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Card unavailable")
		return false, err
	}

	liked := !c.IsLikedBy(userID)
	if liked {
		c.LikedBy = append(c.LikedBy, userID)
	} else {
		c.LikedBy = removeID(c.LikedBy, userID)
	}

	if err := s.persist(ctx, c); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to toggle like")
		return false, err
	}

	span.SetStatus(codes.Ok, "Like toggled")
	return liked, nil
}

func (s *ServiceImpl) ToggleSave(ctx context.Context, cardCode string, userID uuid.UUID) (bool, error) {
	ctx, span := otel.Tracer("CardService").Start(ctx, "ToggleSave", trace.WithAttributes(
		attribute.String("card.code", cardCode),
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	c, err := s.activeCard(ctx, cardCode)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Card unavailable")
		return false, err
	}

	saved := !c.IsSavedBy(userID)
	if saved {
		c.SavedBy = append(c.SavedBy, userID)
		c.RecordInteraction(models.CardInteraction{
			UserID:    &userID,
			Action:    "saved",
			Timestamp: time.Now(),
		})
	} else {
		c.SavedBy = removeID(c.SavedBy, userID)
	}
	// The save counter is defined as the size of the save set, so it can
	// never drift from membership.
	c.Stats.SaveCount = len(c.SavedBy)

	if err := s.persist(ctx, c); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to toggle save")
		return false, err
	}

	span.SetStatus(codes.Ok, "Save toggled")
	return saved, nil
}

// CloneCard builds a new draft experience for userID from the card's frozen
// trip, honoring the card's cloning settings.
func (s *ServiceImpl) CloneCard(ctx context.Context, cardCode string, userID uuid.UUID, req models.CloneRequest) (*models.Experience, error) {
	ctx, span := otel.Tracer("CardService").Start(ctx, "CloneCard", trace.WithAttributes(
		attribute.String("card.code", cardCode),
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	l := s.logger.With(zap.String("method", "CloneCard"), zap.String("cardCode", cardCode), zap.String("userID", userID.String()))

	c, err := s.activeCard(ctx, cardCode)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Card unavailable")
		return nil, err
	}
	if !c.Settings.AllowCloning {
		err := fmt.Errorf("card %s: %w", cardCode, models.ErrCloningDisabled)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Cloning disabled")
		return nil, err
	}

	source, err := s.experiences.GetExperience(ctx, c.ExperienceID)
	if err != nil {
		l.Error("Source experience missing", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Source experience missing")
		return nil, fmt.Errorf("source experience for card %s: %w", cardCode, err)
	}

	clone, err := s.cloner.CloneExperience(ctx, source, userID, c.CardCode, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Clone failed")
		return nil, err
	}

	if err := s.repo.IncrementStat(ctx, c.ID, "clone_count", 1); err != nil {
		l.Warn("Failed to increment clone count", zap.Error(err))
	}
	entry := models.CardInteraction{
		UserID:    &userID,
		Action:    "cloned",
		Timestamp: time.Now(),
	}
	c.RecordInteraction(entry)
	if err := s.repo.AppendInteraction(ctx, c.ID, entry); err != nil {
		l.Debug("Skipped interaction log write", zap.Error(err))
	}

	l.Info("Card cloned", zap.String("cloneExperienceID", clone.ID.String()))
	span.SetStatus(codes.Ok, "Card cloned")
	return clone, nil
}

// ownedCard fetches the card and enforces ownership.
func (s *ServiceImpl) ownedCard(ctx context.Context, cardID, userID uuid.UUID) (*models.ExperienceCard, error) {
	c, err := s.repo.GetCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if c.Owner.UserID != userID {
		return nil, fmt.Errorf("card %s does not belong to user: %w", cardID, models.ErrForbidden)
	}
	return c, nil
}

// activeCard fetches a card by code and rejects inactive or expired cards.
func (s *ServiceImpl) activeCard(ctx context.Context, cardCode string) (*models.ExperienceCard, error) {
	c, err := s.repo.GetCardByCode(ctx, cardCode)
	if err != nil {
		return nil, err
	}
	if !c.IsActive(time.Now()) {
		return nil, fmt.Errorf("card %s: %w", cardCode, models.ErrCardInactive)
	}
	return c, nil
}

func (s *ServiceImpl) persist(ctx context.Context, c *models.ExperienceCard) error {
	c.UpdatedAt = time.Now()
	return s.repo.UpdateCard(ctx, c)
}

func removeID(ids []uuid.UUID, target uuid.UUID) []uuid.UUID {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 20
	}
	return limit
}
