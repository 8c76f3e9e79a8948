package experience

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/queska/queska-go/internal/app/domain/payment"
	"github.com/queska/queska-go/internal/app/domain/promo"
	"github.com/queska/queska-go/internal/app/models"
	"github.com/queska/queska-go/internal/pkg/sharecode"
)

var _ Service = (*ServiceImpl)(nil)

// shareCodeLength for the experience's own share code.
const shareCodeLength = 8

// checkoutExpiry is how long a pending payment stays claimable.
const checkoutExpiry = 24 * time.Hour

// defaultCurrency for new experiences.
const defaultCurrency = "USD"

// CardGenerator produces the shareable card once an experience is paid for.
// It is implemented by the card domain; the indirection keeps the two
// packages from importing each other.
type CardGenerator interface {
	GenerateCard(ctx context.Context, exp *models.Experience) (*models.ExperienceCard, error)
}

type Service interface {
	CreateExperience(ctx context.Context, userID uuid.UUID, req models.ExperienceCreateRequest) (*models.Experience, error)
	GetExperience(ctx context.Context, experienceID, userID uuid.UUID) (*models.Experience, error)
	GetExperienceByShareCode(ctx context.Context, shareCode string) (*models.Experience, error)
	ListUserExperiences(ctx context.Context, userID uuid.UUID, status *models.ExperienceStatus, offset, limit int) ([]*models.Experience, int, error)
	SearchExperiences(ctx context.Context, filters models.ExperienceFilters, offset, limit int) ([]*models.Experience, int, error)
	UpdateExperience(ctx context.Context, experienceID, userID uuid.UUID, req models.ExperienceUpdateRequest) (*models.Experience, error)
	DeleteExperience(ctx context.Context, experienceID, userID uuid.UUID) error
	UpdateSharingSettings(ctx context.Context, experienceID, userID uuid.UUID, req models.SharingUpdateRequest) (*models.Experience, error)

	// Item operations. All of them refresh the derived pricing and
	// itinerary before persisting.
	AddAccommodation(ctx context.Context, experienceID, userID uuid.UUID, req models.AddAccommodationRequest) (*models.Experience, error)
	AddRide(ctx context.Context, experienceID, userID uuid.UUID, req models.AddRideRequest) (*models.Experience, error)
	AddEvent(ctx context.Context, experienceID, userID uuid.UUID, req models.AddEventRequest) (*models.Experience, error)
	AddActivity(ctx context.Context, experienceID, userID uuid.UUID, req models.AddActivityRequest) (*models.Experience, error)
	AddDining(ctx context.Context, experienceID, userID uuid.UUID, req models.AddDiningRequest) (*models.Experience, error)
	AddPlace(ctx context.Context, experienceID, userID uuid.UUID, req models.AddPlaceRequest) (*models.Experience, error)
	AddFlight(ctx context.Context, experienceID, userID uuid.UUID, req models.AddFlightRequest) (*models.Experience, error)
	UpdateItem(ctx context.Context, experienceID, userID, itemID uuid.UUID, req models.ItemUpdateRequest) (*models.Experience, error)
	RemoveItem(ctx context.Context, experienceID, userID, itemID uuid.UUID) (*models.Experience, error)
	ReorderItems(ctx context.Context, experienceID, userID uuid.UUID, order []uuid.UUID) (*models.Experience, error)

	// Checkout and lifecycle
	ApplyDiscount(ctx context.Context, experienceID, userID uuid.UUID, code string) (*models.Experience, error)
	Checkout(ctx context.Context, experienceID, userID uuid.UUID, req models.CheckoutRequest) (*models.CheckoutResponse, error)
	ConfirmPayment(ctx context.Context, experienceID, userID uuid.UUID) (*models.Experience, error)
	StartExperience(ctx context.Context, experienceID, userID uuid.UUID) (*models.Experience, error)
	CompleteExperience(ctx context.Context, experienceID, userID uuid.UUID) (*models.Experience, error)
	CancelExperience(ctx context.Context, experienceID, userID uuid.UUID) (*models.Experience, error)

	// CloneExperience copies a confirmed experience into a fresh draft for
	// a new owner, shifting every scheduled date by the start-date offset.
	// fromCardCode records which card the clone came through, if any.
	CloneExperience(ctx context.Context, source *models.Experience, newOwnerID uuid.UUID, fromCardCode string, req models.CloneRequest) (*models.Experience, error)
}

type ServiceImpl struct {
	logger   *zap.Logger
	repo     Repository
	payments payment.Provider
	promos   promo.Lookup
	cards    CardGenerator
	baseURL  string
}

// NewService creates a new instance of ServiceImpl. The card generator is
// wired after construction via SetCardGenerator, since the card domain
// itself depends on this service for cloning.
func NewService(repo Repository, payments payment.Provider, promos promo.Lookup, baseURL string, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:   logger,
		repo:     repo,
		payments: payments,
		promos:   promos,
		baseURL:  baseURL,
	}
}

// SetCardGenerator wires the card domain in. Must be called before any
// payment is confirmed.
func (s *ServiceImpl) SetCardGenerator(cards CardGenerator) {
	s.cards = cards
}

func (s *ServiceImpl) CreateExperience(ctx context.Context, userID uuid.UUID, req models.ExperienceCreateRequest) (*models.Experience, error) {
	ctx, span := otel.Tracer("ExperienceService").Start(ctx, "CreateExperience", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
		attribute.String("experience.title", req.Title),
	))
	defer span.End()

	l := s.logger.With(zap.String("method", "CreateExperience"), zap.String("userID", userID.String()))
	l.Debug("Creating experience")

	if err := validateDates(req.Dates); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid dates")
		return nil, err
	}

	travelers := req.Travelers
	if travelers.TotalPassengers == 0 {
		travelers.TotalPassengers = travelers.Total()
	}
	if travelers.TotalPassengers == 0 {
		travelers.Adults = 1
		travelers.TotalPassengers = 1
	}

	slug, err := s.uniqueSlug(ctx, req.Title, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to build slug")
		return nil, err
	}

	now := time.Now()
	exp := &models.Experience{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       req.Title,
		Slug:        slug,
		Description: req.Description,
		CoverImage:  req.CoverImage,
		Origin:      req.Origin,
		Destination: req.Destination,
		Dates:       req.Dates,
		Travelers:   travelers,
		Preferences: req.Preferences,
		Items:       []models.ExperienceItem{},
		Pricing:     models.NewExperiencePricing(defaultCurrency),
		Status:      models.ExperienceStatusDraft,
		Sharing: models.ExperienceSharing{
			IsShareable: true,
			ShareCode:   sharecode.New(shareCodeLength),
		},
		Tags:      req.Tags,
		CreatedAt: now,
		UpdatedAt: now,
	}
	exp.Sharing.ShareURL = s.baseURL + "/shared/" + exp.Sharing.ShareCode
	Recalculate(exp)

	if err := s.repo.CreateExperience(ctx, exp); err != nil {
		l.Error("Failed to create experience", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create experience")
		return nil, fmt.Errorf("failed to create experience: %w", err)
	}

	l.Info("Experience created", zap.String("experienceID", exp.ID.String()))
	span.SetStatus(codes.Ok, "Experience created")
	return exp, nil
}

func (s *ServiceImpl) GetExperience(ctx context.Context, experienceID, userID uuid.UUID) (*models.Experience, error) {
	ctx, span := otel.Tracer("ExperienceService").Start(ctx, "GetExperience", trace.WithAttributes(
		attribute.String("experience.id", experienceID.String()),
	))
	defer span.End()

	exp, err := s.ownedExperience(ctx, experienceID, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to get experience")
		return nil, err
	}

	span.SetStatus(codes.Ok, "Experience fetched")
	return exp, nil
}

// GetExperienceByShareCode resolves a shared experience for public viewing
// and bumps the view counter. The counter bump is atomic in the store, so
// concurrent viewers never lose increments.
func (s *ServiceImpl) GetExperienceByShareCode(ctx context.Context, shareCode string) (*models.Experience, error) {
	ctx, span := otel.Tracer("ExperienceService").Start(ctx, "GetExperienceByShareCode", trace.WithAttributes(
		attribute.String("experience.share_code", shareCode),
	))
	defer span.End()

	l := s.logger.With(zap.String("method", "GetExperienceByShareCode"), zap.String("shareCode", shareCode))

	exp, err := s.repo.GetExperienceByShareCode(ctx, shareCode)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to get experience")
		return nil, err
	}

	if !exp.Sharing.IsShareable && !exp.Sharing.IsPublic {
		err := fmt.Errorf("experience sharing disabled: %w", models.ErrForbidden)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Sharing disabled")
		return nil, err
	}

	if err := s.repo.IncrementShareViewCount(ctx, exp.ID); err != nil {
		// A lost view count is not worth failing the read.
		l.Warn("Failed to increment view count", zap.Error(err))
	} else {
		exp.Sharing.ViewCount++
	}

	span.SetStatus(codes.Ok, "Experience fetched")
	return exp, nil
}

func (s *ServiceImpl) ListUserExperiences(ctx context.Context, userID uuid.UUID, status *models.ExperienceStatus, offset, limit int) ([]*models.Experience, int, error) {
	ctx, span := otel.Tracer("ExperienceService").Start(ctx, "ListUserExperiences", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	experiences, total, err := s.repo.ListUserExperiences(ctx, userID, status, offset, normalizeLimit(limit))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to list experiences")
		return nil, 0, fmt.Errorf("failed to list experiences: %w", err)
	}

	span.SetStatus(codes.Ok, "Experiences listed")
	return experiences, total, nil
}

func (s *ServiceImpl) SearchExperiences(ctx context.Context, filters models.ExperienceFilters, offset, limit int) ([]*models.Experience, int, error) {
	ctx, span := otel.Tracer("ExperienceService").Start(ctx, "SearchExperiences")
	defer span.End()

	experiences, total, err := s.repo.SearchExperiences(ctx, filters, offset, normalizeLimit(limit))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to search experiences")
		return nil, 0, fmt.Errorf("failed to search experiences: %w", err)
	}

	span.SetStatus(codes.Ok, "Experiences searched")
	return experiences, total, nil
}

func (s *ServiceImpl) UpdateExperience(ctx context.Context, experienceID, userID uuid.UUID, req models.ExperienceUpdateRequest) (*models.Experience, error) {
	ctx, span := otel.Tracer("ExperienceService").Start(ctx, "UpdateExperience", trace.WithAttributes(
		attribute.String("experience.id", experienceID.String()),
	))
	defer span.End()

	l := s.logger.With(zap.String("method", "UpdateExperience"), zap.String("experienceID", experienceID.String()))

	exp, err := s.ownedExperience(ctx, experienceID, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to get experience")
		return nil, err
	}
	if !exp.CanModifyItems() {
		err := fmt.Errorf("experience in status %s cannot be edited: %w", exp.Status, models.ErrValidation)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Experience locked")
		return nil, err
	}

	if req.Dates != nil {
		if err := validateDateOrder(*req.Dates); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Invalid dates")
			return nil, err
		}
		exp.Dates = *req.Dates
	}
	if req.Title != nil && *req.Title != exp.Title {
		exp.Title = *req.Title
		slug, err := s.uniqueSlug(ctx, exp.Title, &exp.ID)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Failed to build slug")
			return nil, err
		}
		exp.Slug = slug
	}
	if req.Description != nil {
		exp.Description = *req.Description
	}
	if req.CoverImage != nil {
		exp.CoverImage = *req.CoverImage
	}
	if req.Origin != nil {
		exp.Origin = req.Origin
	}
	if req.Destination != nil {
		exp.Destination = *req.Destination
	}
	if req.Travelers != nil {
		travelers := *req.Travelers
		if travelers.TotalPassengers == 0 {
			travelers.TotalPassengers = travelers.Total()
		}
		exp.Travelers = travelers
	}
	if req.Preferences != nil {
		exp.Preferences = *req.Preferences
	}
	if req.Tags != nil {
		exp.Tags = req.Tags
	}

	Recalculate(exp)
	if err := s.persist(ctx, exp); err != nil {
		l.Error("Failed to update experience", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to update experience")
		return nil, err
	}

	span.SetStatus(codes.Ok, "Experience updated")
	return exp, nil
}

func (s *ServiceImpl) DeleteExperience(ctx context.Context, experienceID, userID uuid.UUID) error {
	ctx, span := otel.Tracer("ExperienceService").Start(ctx, "DeleteExperience", trace.WithAttributes(
		attribute.String("experience.id", experienceID.String()),
	))
	defer span.End()

	l := s.logger.With(zap.String("method", "DeleteExperience"), zap.String("experienceID", experienceID.String()))

	exp, err := s.ownedExperience(ctx, experienceID, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to get experience")
		return err
	}

	if exp.Status == models.ExperienceStatusConfirmed || exp.Status == models.ExperienceStatusInProgress {
		span.SetStatus(codes.Error, "Experience cannot be deleted")
		return fmt.Errorf("cannot delete a confirmed or ongoing experience: %w", models.ErrValidation)
	}

	exp.IsDeleted = true
	if err := s.persist(ctx, exp); err != nil {
		l.Error("Failed to delete experience", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to delete experience")
		return err
	}

	l.Info("Experience deleted")
	span.SetStatus(codes.Ok, "Experience deleted")
	return nil
}

func (s *ServiceImpl) UpdateSharingSettings(ctx context.Context, experienceID, userID uuid.UUID, req models.SharingUpdateRequest) (*models.Experience, error) {
	ctx, span := otel.Tracer("ExperienceService").Start(ctx, "UpdateSharingSettings", trace.WithAttributes(
		attribute.String("experience.id", experienceID.String()),
	))
	defer span.End()

	exp, err := s.ownedExperience(ctx, experienceID, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to get experience")
		return nil, err
	}

	if req.IsPublic != nil {
		exp.Sharing.IsPublic = *req.IsPublic
	}
	if req.IsShareable != nil {
		exp.Sharing.IsShareable = *req.IsShareable
	}
	if req.HidePrices != nil {
		exp.Sharing.HidePrices = *req.HidePrices
	}
	if req.HidePersonalDetails != nil {
		exp.Sharing.HidePersonalDetails = *req.HidePersonalDetails
	}

	if err := s.persist(ctx, exp); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to update sharing settings")
		return nil, err
	}

	span.SetStatus(codes.Ok, "Sharing settings updated")
	return exp, nil
}

func (s *ServiceImpl) AddAccommodation(ctx context.Context, experienceID, userID uuid.UUID, req models.AddAccommodationRequest) (*models.Experience, error) {
	if req.Nights <= 0 {
		return nil, fmt.Errorf("nights must be positive: %w", models.ErrValidation)
	}
	return s.addItem(ctx, "AddAccommodation", experienceID, userID, func(exp *models.Experience) models.ExperienceItem {
		return NewAccommodationItem(req, exp.Pricing.Currency)
	})
}

func (s *ServiceImpl) AddRide(ctx context.Context, experienceID, userID uuid.UUID, req models.AddRideRequest) (*models.Experience, error) {
	return s.addItem(ctx, "AddRide", experienceID, userID, func(exp *models.Experience) models.ExperienceItem {
		return NewRideItem(req, exp.Pricing.Currency)
	})
}

func (s *ServiceImpl) AddEvent(ctx context.Context, experienceID, userID uuid.UUID, req models.AddEventRequest) (*models.Experience, error) {
	if req.TicketsCount <= 0 {
		return nil, fmt.Errorf("tickets count must be positive: %w", models.ErrValidation)
	}
	return s.addItem(ctx, "AddEvent", experienceID, userID, func(exp *models.Experience) models.ExperienceItem {
		return NewEventItem(req, exp.Pricing.Currency)
	})
}

func (s *ServiceImpl) AddActivity(ctx context.Context, experienceID, userID uuid.UUID, req models.AddActivityRequest) (*models.Experience, error) {
	if req.Participants <= 0 {
		return nil, fmt.Errorf("participants must be positive: %w", models.ErrValidation)
	}
	return s.addItem(ctx, "AddActivity", experienceID, userID, func(exp *models.Experience) models.ExperienceItem {
		return NewActivityItem(req, exp.Pricing.Currency)
	})
}

func (s *ServiceImpl) AddDining(ctx context.Context, experienceID, userID uuid.UUID, req models.AddDiningRequest) (*models.Experience, error) {
	if req.PartySize <= 0 {
		return nil, fmt.Errorf("party size must be positive: %w", models.ErrValidation)
	}
	return s.addItem(ctx, "AddDining", experienceID, userID, func(exp *models.Experience) models.ExperienceItem {
		return NewDiningItem(req, exp.Pricing.Currency)
	})
}

func (s *ServiceImpl) AddPlace(ctx context.Context, experienceID, userID uuid.UUID, req models.AddPlaceRequest) (*models.Experience, error) {
	return s.addItem(ctx, "AddPlace", experienceID, userID, func(exp *models.Experience) models.ExperienceItem {
		return NewPlaceItem(req, exp.Pricing.Currency)
	})
}

func (s *ServiceImpl) AddFlight(ctx context.Context, experienceID, userID uuid.UUID, req models.AddFlightRequest) (*models.Experience, error) {
	if req.Passengers <= 0 {
		return nil, fmt.Errorf("passengers must be positive: %w", models.ErrValidation)
	}
	return s.addItem(ctx, "AddFlight", experienceID, userID, func(exp *models.Experience) models.ExperienceItem {
		return NewFlightItem(req, exp.Pricing.Currency)
	})
}

// addItem is the shared load/gate/append/persist path for every item type.
func (s *ServiceImpl) addItem(ctx context.Context, method string, experienceID, userID uuid.UUID, build func(*models.Experience) models.ExperienceItem) (*models.Experience, error) {
	ctx, span := otel.Tracer("ExperienceService").Start(ctx, method, trace.WithAttributes(
		attribute.String("experience.id", experienceID.String()),
	))
	defer span.End()

	l := s.logger.With(zap.String("method", method), zap.String("experienceID", experienceID.String()))

	exp, err := s.ownedExperience(ctx, experienceID, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to get experience")
		return nil, err
	}
	if !exp.CanModifyItems() {
		err := fmt.Errorf("experience in status %s cannot be modified: %w", exp.Status, models.ErrValidation)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Experience locked")
		return nil, err
	}

	item := build(exp)
	AppendItem(exp, item)

	if err := s.persist(ctx, exp); err != nil {
		l.Error("Failed to add item", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to add item")
		return nil, err
	}

	l.Debug("Item added", zap.String("itemID", item.ID.String()), zap.String("itemType", string(item.Type)))
	span.SetStatus(codes.Ok, "Item added")
	return exp, nil
}

func (s *ServiceImpl) UpdateItem(ctx context.Context, experienceID, userID, itemID uuid.UUID, req models.ItemUpdateRequest) (*models.Experience, error) {
	ctx, span := otel.Tracer("ExperienceService").Start(ctx, "UpdateItem", trace.WithAttributes(
		attribute.String("experience.id", experienceID.String()),
		attribute.String("item.id", itemID.String()),
	))
	defer span.End()

	exp, err := s.ownedExperience(ctx, experienceID, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to get experience")
		return nil, err
	}
	if !exp.CanModifyItems() {
		err := fmt.Errorf("experience in status %s cannot be modified: %w", exp.Status, models.ErrValidation)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Experience locked")
		return nil, err
	}

	if err := UpdateItem(exp, itemID, req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Item not found")
		return nil, err
	}

	if err := s.persist(ctx, exp); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to update item")
		return nil, err
	}

	span.SetStatus(codes.Ok, "Item updated")
	return exp, nil
}

func (s *ServiceImpl) RemoveItem(ctx context.Context, experienceID, userID, itemID uuid.UUID) (*models.Experience, error) {
	ctx, span := otel.Tracer("ExperienceService").Start(ctx, "RemoveItem", trace.WithAttributes(
		attribute.String("experience.id", experienceID.String()),
		attribute.String("item.id", itemID.String()),
	))
	defer span.End()

	exp, err := s.ownedExperience(ctx, experienceID, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to get experience")
		return nil, err
	}
	if !exp.CanModifyItems() {
		err := fmt.Errorf("experience in status %s cannot be modified: %w", exp.Status, models.ErrValidation)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Experience locked")
		return nil, err
	}

	if err := RemoveItem(exp, itemID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Item not found")
		return nil, err
	}

	if err := s.persist(ctx, exp); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to remove item")
		return nil, err
	}

	span.SetStatus(codes.Ok, "Item removed")
	return exp, nil
}

func (s *ServiceImpl) ReorderItems(ctx context.Context, experienceID, userID uuid.UUID, order []uuid.UUID) (*models.Experience, error) {
	ctx, span := otel.Tracer("ExperienceService").Start(ctx, "ReorderItems", trace.WithAttributes(
		attribute.String("experience.id", experienceID.String()),
		attribute.Int("order.count", len(order)),
	))
	defer span.End()

	exp, err := s.ownedExperience(ctx, experienceID, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to get experience")
		return nil, err
	}
	if !exp.CanModifyItems() {
		err := fmt.Errorf("experience in status %s cannot be modified: %w", exp.Status, models.ErrValidation)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Experience locked")
		return nil, err
	}

	ReorderItems(exp, order)

	if err := s.persist(ctx, exp); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to reorder items")
		return nil, err
	}

	span.SetStatus(codes.Ok, "Items reordered")
	return exp, nil
}

func (s *ServiceImpl) ApplyDiscount(ctx context.Context, experienceID, userID uuid.UUID, code string) (*models.Experience, error) {
	ctx, span := otel.Tracer("ExperienceService").Start(ctx, "ApplyDiscount", trace.WithAttributes(
		attribute.String("experience.id", experienceID.String()),
	))
	defer span.End()

	l := s.logger.With(zap.String("method", "ApplyDiscount"), zap.String("experienceID", experienceID.String()))

	exp, err := s.ownedExperience(ctx, experienceID, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to get experience")
		return nil, err
	}
	if !exp.CanModifyItems() {
		err := fmt.Errorf("experience in status %s cannot be modified: %w", exp.Status, models.ErrValidation)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Experience locked")
		return nil, err
	}

	promoCode, err := s.promos.Resolve(ctx, code)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Unknown promo code")
		return nil, err
	}

	ApplyDiscount(&exp.Pricing, exp.Items, exp.Travelers.TotalPassengers, promoCode.Code, promoCode.Percentage)

	if err := s.persist(ctx, exp); err != nil {
		l.Error("Failed to apply discount", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to apply discount")
		return nil, err
	}

	l.Info("Discount applied", zap.String("code", promoCode.Code), zap.Float64("percentage", promoCode.Percentage))
	span.SetStatus(codes.Ok, "Discount applied")
	return exp, nil
}

// Checkout moves an experience with at least one item into pending and
// opens a payment intent for the grand total. Pending experiences may
// check out again, which reopens the intent for a retried payment.
func (s *ServiceImpl) Checkout(ctx context.Context, experienceID, userID uuid.UUID, req models.CheckoutRequest) (*models.CheckoutResponse, error) {
	ctx, span := otel.Tracer("ExperienceService").Start(ctx, "Checkout", trace.WithAttributes(
		attribute.String("experience.id", experienceID.String()),
	))
	defer span.End()

	l := s.logger.With(zap.String("method", "Checkout"), zap.String("experienceID", experienceID.String()))

	exp, err := s.ownedExperience(ctx, experienceID, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to get experience")
		return nil, err
	}
	if exp.Status != models.ExperienceStatusDraft && exp.Status != models.ExperienceStatusPending {
		err := fmt.Errorf("experience cannot be checked out, status is %s: %w", exp.Status, models.ErrValidation)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Wrong status")
		return nil, err
	}
	if len(exp.Items) == 0 {
		err := fmt.Errorf("experience has no items: %w", models.ErrValidation)
		span.RecordError(err)
		span.SetStatus(codes.Error, "No items")
		return nil, err
	}

	if req.DiscountCode != "" {
		promoCode, err := s.promos.Resolve(ctx, req.DiscountCode)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Unknown promo code")
			return nil, err
		}
		ApplyDiscount(&exp.Pricing, exp.Items, exp.Travelers.TotalPassengers, promoCode.Code, promoCode.Percentage)
	} else {
		Recalculate(exp)
	}

	amount := int64(math.Round(exp.Pricing.GrandTotal * 100))
	reference, clientSecret, err := s.payments.CreatePaymentIntent(amount, strings.ToLower(exp.Pricing.Currency), map[string]string{
		"experience_id": exp.ID.String(),
		"user_id":       userID.String(),
	})
	if err != nil {
		l.Error("Failed to create payment intent", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Payment intent failed")
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	now := time.Now()
	exp.Status = models.ExperienceStatusPending
	exp.SubmittedAt = &now
	exp.Pricing.PaymentStatus = models.PaymentStatusPending
	for i := range exp.Items {
		if exp.Items[i].BookingReference == "" {
			exp.Items[i].BookingReference = reference
		}
	}

	if err := s.persist(ctx, exp); err != nil {
		l.Error("Failed to persist checkout", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to persist checkout")
		return nil, err
	}

	l.Info("Checkout opened", zap.Float64("grandTotal", exp.Pricing.GrandTotal))
	span.SetStatus(codes.Ok, "Checkout opened")
	return &models.CheckoutResponse{
		ExperienceID:     exp.ID.String(),
		TotalAmount:      exp.Pricing.GrandTotal,
		Currency:         exp.Pricing.Currency,
		PaymentReference: reference,
		ClientSecret:     clientSecret,
		Status:           exp.Status,
		ExpiresAt:        now.Add(checkoutExpiry),
	}, nil
}

// ConfirmPayment settles a pending experience and generates its card.
// Calling it again after success returns the confirmed experience
// unchanged, so payment-webhook retries are harmless.
func (s *ServiceImpl) ConfirmPayment(ctx context.Context, experienceID, userID uuid.UUID) (*models.Experience, error) {
	ctx, span := otel.Tracer("ExperienceService").Start(ctx, "ConfirmPayment", trace.WithAttributes(
		attribute.String("experience.id", experienceID.String()),
	))
	defer span.End()

	l := s.logger.With(zap.String("method", "ConfirmPayment"), zap.String("experienceID", experienceID.String()))

	exp, err := s.ownedExperience(ctx, experienceID, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to get experience")
		return nil, err
	}

	if exp.Status == models.ExperienceStatusConfirmed && exp.CardGenerated {
		span.SetStatus(codes.Ok, "Already confirmed")
		return exp, nil
	}
	if exp.Status != models.ExperienceStatusPending {
		err := fmt.Errorf("only pending experiences can be confirmed, status is %s: %w", exp.Status, models.ErrValidation)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Wrong status")
		return nil, err
	}

	now := time.Now()
	exp.Status = models.ExperienceStatusConfirmed
	exp.PaidAt = &now
	exp.Pricing.AmountPaid = exp.Pricing.GrandTotal
	exp.Pricing.BalanceDue = 0
	exp.Pricing.PaymentStatus = models.PaymentStatusCompleted
	for i := range exp.Items {
		exp.Items[i].BookingStatus = models.BookingStatusConfirmed
	}

	if s.cards != nil {
		card, err := s.cards.GenerateCard(ctx, exp)
		if err != nil {
			l.Error("Failed to generate card", zap.Error(err))
			span.RecordError(err)
			span.SetStatus(codes.Error, "Card generation failed")
			return nil, fmt.Errorf("failed to generate card: %w", err)
		}
		exp.ExperienceCardID = &card.ID
		exp.CardGenerated = true
	}

	if err := s.persist(ctx, exp); err != nil {
		l.Error("Failed to confirm payment", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to confirm payment")
		return nil, err
	}

	l.Info("Payment confirmed", zap.Float64("amountPaid", exp.Pricing.AmountPaid))
	span.SetStatus(codes.Ok, "Payment confirmed")
	return exp, nil
}

func (s *ServiceImpl) StartExperience(ctx context.Context, experienceID, userID uuid.UUID) (*models.Experience, error) {
	return s.transition(ctx, "StartExperience", experienceID, userID,
		models.ExperienceStatusConfirmed, models.ExperienceStatusInProgress,
		func(exp *models.Experience, now time.Time) {})
}

func (s *ServiceImpl) CompleteExperience(ctx context.Context, experienceID, userID uuid.UUID) (*models.Experience, error) {
	return s.transition(ctx, "CompleteExperience", experienceID, userID,
		models.ExperienceStatusInProgress, models.ExperienceStatusCompleted,
		func(exp *models.Experience, now time.Time) {
			exp.CompletedAt = &now
		})
}

// CancelExperience cancels from any state before completion. Refunds are
// handled out of band by the payment provider's dashboard for now.
func (s *ServiceImpl) CancelExperience(ctx context.Context, experienceID, userID uuid.UUID) (*models.Experience, error) {
	ctx, span := otel.Tracer("ExperienceService").Start(ctx, "CancelExperience", trace.WithAttributes(
		attribute.String("experience.id", experienceID.String()),
	))
	defer span.End()

	exp, err := s.ownedExperience(ctx, experienceID, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to get experience")
		return nil, err
	}
	if exp.Status == models.ExperienceStatusCompleted || exp.Status == models.ExperienceStatusCancelled {
		err := fmt.Errorf("experience in status %s cannot be cancelled: %w", exp.Status, models.ErrValidation)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Wrong status")
		return nil, err
	}

	now := time.Now()
	exp.Status = models.ExperienceStatusCancelled
	exp.CancelledAt = &now

	if err := s.persist(ctx, exp); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to cancel experience")
		return nil, err
	}

	span.SetStatus(codes.Ok, "Experience cancelled")
	return exp, nil
}

func (s *ServiceImpl) transition(ctx context.Context, method string, experienceID, userID uuid.UUID, from, to models.ExperienceStatus, apply func(*models.Experience, time.Time)) (*models.Experience, error) {
	ctx, span := otel.Tracer("ExperienceService").Start(ctx, method, trace.WithAttributes(
		attribute.String("experience.id", experienceID.String()),
	))
	defer span.End()

	exp, err := s.ownedExperience(ctx, experienceID, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to get experience")
		return nil, err
	}
	if exp.Status != from {
		err := fmt.Errorf("experience must be %s, status is %s: %w", from, exp.Status, models.ErrValidation)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Wrong status")
		return nil, err
	}

	now := time.Now()
	exp.Status = to
	apply(exp, now)

	if err := s.persist(ctx, exp); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to transition experience")
		return nil, err
	}

	span.SetStatus(codes.Ok, "Experience transitioned")
	return exp, nil
}

// CloneExperience copies the source into a fresh draft owned by newOwnerID.
// Every scheduled date is shifted by the difference between the requested
// start date and the source start date; booking state and payment state are
// reset.
func (s *ServiceImpl) CloneExperience(ctx context.Context, source *models.Experience, newOwnerID uuid.UUID, fromCardCode string, req models.CloneRequest) (*models.Experience, error) {
	ctx, span := otel.Tracer("ExperienceService").Start(ctx, "CloneExperience", trace.WithAttributes(
		attribute.String("source.id", source.ID.String()),
		attribute.String("user.id", newOwnerID.String()),
	))
	defer span.End()

	l := s.logger.With(zap.String("method", "CloneExperience"),
		zap.String("sourceID", source.ID.String()),
		zap.String("userID", newOwnerID.String()))

	offsetDays := daysBetween(source.Dates.StartDate, req.NewStartDate)
	tripDays := source.Dates.TotalDays()

	now := time.Now()
	clone := *source
	clone.ID = uuid.New()
	clone.UserID = newOwnerID
	clone.UserName = ""
	clone.UserEmail = ""
	clone.AgentID = nil
	clone.AgentName = ""
	clone.CreatedByAgent = false
	clone.Title = source.Title + " (Clone)"
	clone.Status = models.ExperienceStatusDraft
	clone.Dates.StartDate = source.Dates.StartDate.AddDate(0, 0, offsetDays)
	clone.Dates.EndDate = clone.Dates.StartDate.AddDate(0, 0, tripDays-1)
	clone.ClonedFromID = &source.ID
	clone.ClonedFromCardCode = fromCardCode
	clone.IsClone = true
	clone.ExperienceCardID = nil
	clone.CardGenerated = false
	clone.SubmittedAt = nil
	clone.PaidAt = nil
	clone.CompletedAt = nil
	clone.CancelledAt = nil
	clone.Version = 0
	clone.CreatedAt = now
	clone.UpdatedAt = now

	if req.Travelers != nil {
		travelers := *req.Travelers
		if travelers.TotalPassengers == 0 {
			travelers.TotalPassengers = travelers.Total()
		}
		clone.Travelers = travelers
	}

	clone.Sharing = models.ExperienceSharing{
		IsShareable: true,
		ShareCode:   sharecode.New(shareCodeLength),
	}
	clone.Sharing.ShareURL = s.baseURL + "/shared/" + clone.Sharing.ShareCode

	clone.Pricing.AmountPaid = 0
	clone.Pricing.PaymentStatus = models.PaymentStatusPending
	clone.Pricing.DiscountAmount = 0
	clone.Pricing.DiscountCode = ""
	clone.Pricing.DiscountPercentage = 0

	clone.Items = make([]models.ExperienceItem, len(source.Items))
	for i, item := range source.Items {
		copied := item
		copied.ID = uuid.New()
		copied.BookingStatus = models.BookingStatusPending
		copied.BookingReference = ""
		copied.ConfirmationCode = ""
		if item.ScheduledDate != nil {
			shifted := item.ScheduledDate.AddDate(0, 0, offsetDays)
			copied.ScheduledDate = &shifted
		}
		clone.Items[i] = copied
	}

	slug, err := s.uniqueSlug(ctx, clone.Title, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to build slug")
		return nil, err
	}
	clone.Slug = slug

	Recalculate(&clone)

	if err := s.repo.CreateExperience(ctx, &clone); err != nil {
		l.Error("Failed to create clone", zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create clone")
		return nil, fmt.Errorf("failed to create clone: %w", err)
	}

	l.Info("Experience cloned", zap.String("cloneID", clone.ID.String()), zap.Int("offsetDays", offsetDays))
	span.SetStatus(codes.Ok, "Experience cloned")
	return &clone, nil
}

// ownedExperience fetches the experience and enforces ownership.
func (s *ServiceImpl) ownedExperience(ctx context.Context, experienceID, userID uuid.UUID) (*models.Experience, error) {
	exp, err := s.repo.GetExperience(ctx, experienceID)
	if err != nil {
		return nil, err
	}
	if exp.UserID != userID {
		return nil, fmt.Errorf("experience %s does not belong to user: %w", experienceID, models.ErrForbidden)
	}
	return exp, nil
}

func (s *ServiceImpl) persist(ctx context.Context, exp *models.Experience) error {
	exp.UpdatedAt = time.Now()
	return s.repo.UpdateExperience(ctx, exp)
}

// uniqueSlug builds a URL slug from the title, retrying with a random
// suffix on collision.
func (s *ServiceImpl) uniqueSlug(ctx context.Context, title string, excludeID *uuid.UUID) (string, error) {
	base := slugify(title)
	slug := base
	for attempt := 0; attempt < 5; attempt++ {
		exists, err := s.repo.SlugExists(ctx, slug, excludeID)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
		slug = base + "-" + strings.ToLower(sharecode.New(4))
	}
	return "", fmt.Errorf("could not find a free slug for %q: %w", title, models.ErrConflict)
}

func slugify(s string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}

func daysBetween(from, to time.Time) int {
	fromDay := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	toDay := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(toDay.Sub(fromDay).Hours() / 24)
}

func validateDates(dates models.TravelDates) error {
	today := time.Now().Truncate(24 * time.Hour)
	if dates.StartDate.Before(today) {
		return fmt.Errorf("start date cannot be in the past: %w", models.ErrValidation)
	}
	return validateDateOrder(dates)
}

func validateDateOrder(dates models.TravelDates) error {
	if dates.EndDate.Before(dates.StartDate) {
		return fmt.Errorf("end date cannot be before start date: %w", models.ErrValidation)
	}
	return nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 20
	}
	return limit
}
