package card

import (
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

// GetCardByCode handles GET /api/v1/cards/:code. Works for anonymous
// viewers; a valid token only changes attribution and owner visibility.
func (h *Handler) GetCardByCode(c *gin.Context) {
	viewer := h.viewerContext(c)

	card, err := h.service.GetCardByCode(c.Request.Context(), c.Param("code"), viewer)
	if err != nil {
		domain.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

// GetCard handles GET /api/v1/cards/id/:id (owner only)
func (h *Handler) GetCard(c *gin.Context) {
	userID, cardID, ok := h.authedIDs(c)
	if !ok {
		return
	}

	card, err := h.service.GetCard(c.Request.Context(), cardID, userID)
	if err != nil {
		domain.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

// ListMyCards handles GET /api/v1/cards
func (h *Handler) ListMyCards(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	offset, limit := pagination(c)

	cards, total, err := h.service.ListUserCards(c.Request.Context(), userID, offset, limit)
	if err != nil {
		domain.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cards": cards, "total": total})
}

// ListSavedCards handles GET /api/v1/cards/saved
func (h *Handler) ListSavedCards(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	offset, limit := pagination(c)

	cards, total, err := h.service.ListSavedCards(c.Request.Context(), userID, offset, limit)
	if err != nil {
		domain.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cards": cards, "total": total})
}

// SearchCards handles GET /api/v1/cards/search
func (h *Handler) SearchCards(c *gin.Context) {
	var filters models.CardSearchFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	offset, limit := pagination(c)

	cards, total, err := h.service.SearchPublicCards(c.Request.Context(), filters, offset, limit)
	if err != nil {
		domain.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cards": cards, "total": total})
}

// FeaturedCards handles GET /api/v1/cards/featured
func (h *Handler) FeaturedCards(c *gin.Context) {
	_, limit := pagination(c)

	cards, err := h.service.FeaturedCards(c.Request.Context(), limit)
	if err != nil {
		domain.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cards": cards})
}

// NearbyCards handles GET /api/v1/cards/nearby?lat=&lng=&radius_km=
func (h *Handler) NearbyCards(c *gin.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng are required"})
		return
	}
	radius, err := strconv.ParseFloat(c.DefaultQuery("radius_km", "100"), 64)
	if err != nil || radius <= 0 {
		radius = 100
	}
	_, limit := pagination(c)

	cards, err := h.service.NearbyCards(c.Request.Context(), lat, lng, radius, limit)
	if err != nil {
		domain.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cards": cards})
}

// UpdateCard handles PATCH /api/v1/cards/id/:id
func (h *Handler) UpdateCard(c *gin.Context) {
	userID, cardID, ok := h.authedIDs(c)
	if !ok {
		return
	}

	var req models.CardUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	card, err := h.service.UpdateCard(c.Request.Context(), cardID, userID, req)
	if err != nil {
		domain.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

// UpdateSettings handles PATCH /api/v1/cards/id/:id/settings
func (h *Handler) UpdateSettings(c *gin.Context) {
	userID, cardID, ok := h.authedIDs(c)
	if !ok {
		return
	}

	var req models.CardSettingsUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	card, err := h.service.UpdateSettings(c.Request.Context(), cardID, userID, req)
	if err != nil {
		domain.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

// DeactivateCard handles POST /api/v1/cards/id/:id/deactivate
func (h *Handler) DeactivateCard(c *gin.Context) {
	userID, cardID, ok := h.authedIDs(c)
	if !ok {
		return
	}

	card, err := h.service.DeactivateCard(c.Request.Context(), cardID, userID)
	if err != nil {
		domain.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

// DeleteCard handles DELETE /api/v1/cards/id/:id
func (h *Handler) DeleteCard(c *gin.Context) {
	userID, cardID, ok := h.authedIDs(c)
	if !ok {
		return
	}

	if err := h.service.DeleteCard(c.Request.Context(), cardID, userID); err != nil {
		domain.RespondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateLocation handles PUT /api/v1/cards/id/:id/location
func (h *Handler) UpdateLocation(c *gin.Context) {
	userID, cardID, ok := h.authedIDs(c)
	if !ok {
		return
	}

	var req models.UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	card, err := h.service.UpdateOwnerLocation(c.Request.Context(), cardID, userID, req)
	if err != nil {
		domain.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

// StopLocationSharing handles DELETE /api/v1/cards/id/:id/location
func (h *Handler) StopLocationSharing(c *gin.Context) {
	userID, cardID, ok := h.authedIDs(c)
	if !ok {
		return
	}

	card, err := h.service.StopLocationSharing(c.Request.Context(), cardID, userID)
	if err != nil {
		domain.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

// TravelEstimate handles GET /api/v1/cards/:code/travel-estimate?lat=&lng=
func (h *Handler) TravelEstimate(c *gin.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng are required"})
		return
	}

	estimate, err := h.service.TravelEstimate(c.Request.Context(), c.Param("code"), lat, lng)
	if err != nil {
		domain.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, estimate)
}

// ShareCard handles POST /api/v1/cards/:code/share
func (h *Handler) ShareCard(c *gin.Context) {
	var req models.ShareCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	url, err := h.service.ShareCard(c.Request.Context(), c.Param("code"), h.viewerContext(c), req)
	if err != nil {
		domain.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"share_url": url})
}

// GetShareStats handles GET /api/v1/cards/id/:id/stats
func (h *Handler) GetShareStats(c *gin.Context) {
	userID, cardID, ok := h.authedIDs(c)
	if !ok {
		return
	}

	stats, err := h.service.GetShareStats(c.Request.Context(), cardID, userID)
	if err != nil {
		domain.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ToggleLike handles POST /api/v1/cards/:code/like
func (h *Handler) ToggleLike(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	liked, err := h.service.ToggleLike(c.Request.Context(), c.Param("code"), userID)
	if err != nil {
		domain.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": liked})
}

// ToggleSave handles POST /api/v1/cards/:code/save
func (h *Handler) ToggleSave(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	saved, err := h.service.ToggleSave(c.Request.Context(), c.Param("code"), userID)
	if err != nil {
		domain.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": saved})
}

// CloneCard handles POST /api/v1/cards/:code/clone
func (h *Handler) CloneCard(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req models.CloneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	clone, err := h.service.CloneCard(c.Request.Context(), c.Param("code"), userID, req)
	if err != nil {
		domain.RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, clone)
}

func (h *Handler) viewerContext(c *gin.Context) ViewerContext {
	viewer := ViewerContext{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
	if userID := middleware.GetUserIDFromContext(c); userID != uuid.Nil {
		viewer.UserID = &userID
	}
	return viewer
}

func (h *Handler) authedIDs(c *gin.Context) (userID, cardID uuid.UUID, ok bool) {
	userID = middleware.GetUserIDFromContext(c)
	if userID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return uuid.Nil, uuid.Nil, false
	}
	cardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid card id"})
		return uuid.Nil, uuid.Nil, false
	}
	return userID, cardID, true
}

func pagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}
