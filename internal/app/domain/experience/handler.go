package experience

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/queska/queska-go/internal/app/domain"
	"github.com/queska/queska-go/internal/app/models"
	"github.com/queska/queska-go/internal/pkg/middleware"
)

type Handler struct {
	service Service
	log     *zap.Logger
}

func NewHandler(service Service, log *zap.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log,
	}
}

// CreateExperience handles POST /api/v1/experiences
func (h *Handler) CreateExperience(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req models.ExperienceCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	exp, err := h.service.CreateExperience(c.Request.Context(), userID, req)
	if err != nil {
		domain.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, exp)
}

// GetExperience handles GET /api/v1/experiences/:id
func (h *Handler) GetExperience(c *gin.Context) {
	userID, experienceID, ok := h.authedIDs(c)
	if !ok {
		return
	}

	exp, err := h.service.GetExperience(c.Request.Context(), experienceID, userID)
	if err != nil {
		domain.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, exp)
}

// GetSharedExperience handles GET /api/v1/shared/:shareCode
func (h *Handler) GetSharedExperience(c *gin.Context) {
	exp, err := h.service.GetExperienceByShareCode(c.Request.Context(), c.Param("shareCode"))
	if err != nil {
		domain.RespondError(c, h.log, err)
		return
	}

	// Shared views respect the experience's own privacy toggles.
	if exp.Sharing.HidePrices {
		exp.Pricing = models.ExperiencePricing{Currency: exp.Pricing.Currency}
		for i := range exp.Items {
			exp.Items[i].PricePerUnit = 0
			exp.Items[i].TotalPrice = 0
		}
	}
	if exp.Sharing.HidePersonalDetails {
		exp.UserName = ""
		exp.UserEmail = ""
	}
	c.JSON(http.StatusOK, exp)
}

// ListExperiences handles GET /api/v1/experiences
func (h *Handler) ListExperiences(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var status *models.ExperienceStatus
	if raw := c.Query("status"); raw != "" {
		s := models.ExperienceStatus(raw)
		status = &s
	}
	offset, limit := pagination(c)

	experiences, total, err := h.service.ListUserExperiences(c.Request.Context(), userID, status, offset, limit)
	if err != nil {
		domain.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"experiences": experiences, "total": total})
}

// SearchExperiences handles GET /api/v1/experiences/search
func (h *Handler) SearchExperiences(c *gin.Context) {
	var filters models.ExperienceFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	offset, limit := pagination(c)

	experiences, total, err := h.service.SearchExperiences(c.Request.Context(), filters, offset, limit)
	if err != nil {
		domain.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"experiences": experiences, "total": total})
}

// UpdateExperience handles PATCH /api/v1/experiences/:id
func (h *Handler) UpdateExperience(c *gin.Context) {
	userID, experienceID, ok := h.authedIDs(c)
	if !ok {
		return
	}

	var req models.ExperienceUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	exp, err := h.service.UpdateExperience(c.Request.Context(), experienceID, userID, req)
	if err != nil {
		domain.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, exp)
}

// DeleteExperience handles DELETE /api/v1/experiences/:id
func (h *Handler) DeleteExperience(c *gin.Context) {
	userID, experienceID, ok := h.authedIDs(c)
	if !ok {
		return
	}

	if err := h.service.DeleteExperience(c.Request.Context(), experienceID, userID); err != nil {
		domain.RespondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateSharing handles PATCH /api/v1/experiences/:id/sharing
func (h *Handler) UpdateSharing(c *gin.Context) {
	userID, experienceID, ok := h.authedIDs(c)
	if !ok {
		return
	}

	var req models.SharingUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	exp, err := h.service.UpdateSharingSettings(c.Request.Context(), experienceID, userID, req)
	if err != nil {
		domain.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, exp)
}

// AddAccommodation handles POST /api/v1/experiences/:id/items/accommodation
func (h *Handler) AddAccommodation(c *gin.Context) {
	addItem(h, c, h.service.AddAccommodation)
}

// AddRide handles POST /api/v1/experiences/:id/items/ride
func (h *Handler) AddRide(c *gin.Context) {
	addItem(h, c, h.service.AddRide)
}

// AddEvent handles POST /api/v1/experiences/:id/items/event
func (h *Handler) AddEvent(c *gin.Context) {
	addItem(h, c, h.service.AddEvent)
}

// AddActivity handles POST /api/v1/experiences/:id/items/activity
func (h *Handler) AddActivity(c *gin.Context) {
	addItem(h, c, h.service.AddActivity)
}

// AddDining handles POST /api/v1/experiences/:id/items/dining
func (h *Handler) AddDining(c *gin.Context) {
	addItem(h, c, h.service.AddDining)
}

// AddPlace handles POST /api/v1/experiences/:id/items/place
func (h *Handler) AddPlace(c *gin.Context) {
	addItem(h, c, h.service.AddPlace)
}

// AddFlight handles POST /api/v1/experiences/:id/items/flight
func (h *Handler) AddFlight(c *gin.Context) {
	addItem(h, c, h.service.AddFlight)
}

// addItem is the shared bind/dispatch path for the typed add endpoints.
func addItem[R any](h *Handler, c *gin.Context, call func(ctx context.Context, experienceID, userID uuid.UUID, req R) (*models.Experience, error)) {
	userID, experienceID, ok := h.authedIDs(c)
	if !ok {
		return
	}

	var req R
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	exp, err := call(c.Request.Context(), experienceID, userID, req)
	if err != nil {
		domain.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, exp)
}

// UpdateItem handles PATCH /api/v1/experiences/:id/items/:itemID
func (h *Handler) UpdateItem(c *gin.Context) {
	userID, experienceID, ok := h.authedIDs(c)
	if !ok {
		return
	}
	itemID, err := uuid.Parse(c.Param("itemID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return
	}

	var req models.ItemUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	exp, err := h.service.UpdateItem(c.Request.Context(), experienceID, userID, itemID, req)
	if err != nil {
		domain.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, exp)
}

// RemoveItem handles DELETE /api/v1/experiences/:id/items/:itemID
func (h *Handler) RemoveItem(c *gin.Context) {
	userID, experienceID, ok := h.authedIDs(c)
	if !ok {
		return
	}
	itemID, err := uuid.Parse(c.Param("itemID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return
	}

	exp, err := h.service.RemoveItem(c.Request.Context(), experienceID, userID, itemID)
	if err != nil {
		domain.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, exp)
}

// ReorderItems handles PUT /api/v1/experiences/:id/items/order
func (h *Handler) ReorderItems(c *gin.Context) {
	userID, experienceID, ok := h.authedIDs(c)
	if !ok {
		return
	}

	var req struct {
		Order []uuid.UUID `json:"order" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	exp, err := h.service.ReorderItems(c.Request.Context(), experienceID, userID, req.Order)
	if err != nil {
		domain.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, exp)
}

// ApplyDiscount handles POST /api/v1/experiences/:id/discount
func (h *Handler) ApplyDiscount(c *gin.Context) {
	userID, experienceID, ok := h.authedIDs(c)
	if !ok {
		return
	}

	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	exp, err := h.service.ApplyDiscount(c.Request.Context(), experienceID, userID, req.Code)
	if err != nil {
		domain.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, exp)
}

// Checkout handles POST /api/v1/experiences/:id/checkout
func (h *Handler) Checkout(c *gin.Context) {
	userID, experienceID, ok := h.authedIDs(c)
	if !ok {
		return
	}

	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.service.Checkout(c.Request.Context(), experienceID, userID, req)
	if err != nil {
		domain.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ConfirmPayment handles POST /api/v1/experiences/:id/confirm-payment
func (h *Handler) ConfirmPayment(c *gin.Context) {
	userID, experienceID, ok := h.authedIDs(c)
	if !ok {
		return
	}

	exp, err := h.service.ConfirmPayment(c.Request.Context(), experienceID, userID)
	if err != nil {
		domain.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, exp)
}

// StartExperience handles POST /api/v1/experiences/:id/start
func (h *Handler) StartExperience(c *gin.Context) {
	h.lifecycle(c, h.service.StartExperience)
}

// CompleteExperience handles POST /api/v1/experiences/:id/complete
func (h *Handler) CompleteExperience(c *gin.Context) {
	h.lifecycle(c, h.service.CompleteExperience)
}

// CancelExperience handles POST /api/v1/experiences/:id/cancel
func (h *Handler) CancelExperience(c *gin.Context) {
	h.lifecycle(c, h.service.CancelExperience)
}

func (h *Handler) lifecycle(c *gin.Context, call func(ctx context.Context, experienceID, userID uuid.UUID) (*models.Experience, error)) {
	userID, experienceID, ok := h.authedIDs(c)
	if !ok {
		return
	}

	exp, err := call(c.Request.Context(), experienceID, userID)
	if err != nil {
		domain.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, exp)
}

// authedIDs pulls the authenticated user and the :id path param.
func (h *Handler) authedIDs(c *gin.Context) (userID, experienceID uuid.UUID, ok bool) {
	userID = middleware.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return uuid.Nil, uuid.Nil, false
	}
	experienceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid experience id"})
		return uuid.Nil, uuid.Nil, false
	}
	return userID, experienceID, true
}

func pagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}
