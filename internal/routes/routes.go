package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/queska/queska-go/internal/app/domain/card"
	"github.com/queska/queska-go/internal/app/domain/experience"
	"github.com/queska/queska-go/internal/app/domain/payment"
	"github.com/queska/queska-go/internal/app/domain/promo"
	"github.com/queska/queska-go/internal/pkg/config"
	"github.com/queska/queska-go/internal/pkg/middleware"
)

type AppHandlers struct {
	Experiences *experience.Handler
	Cards       *card.Handler
}

// Setup wires repositories, services and handlers onto the router.
func Setup(r *gin.Engine, dbPool *pgxpool.Pool, cfg *config.Config, log *zap.Logger) {
	handlers := setupDependencies(dbPool, cfg, log)
	setupRouter(r, handlers, cfg, log)
}

func setupDependencies(dbPool *pgxpool.Pool, cfg *config.Config, log *zap.Logger) *AppHandlers {
	// Repositories
	expRepo := experience.NewRepository(dbPool, log)
	cardRepo := card.NewRepository(dbPool, log)

	// Supporting services
	payments := payment.NewStripeProvider(cfg.StripeKey)
	promos := promo.NewInMemoryLookup(log)

	// Domain services
	expService := experience.NewService(expRepo, payments, promos, cfg.BaseURL, log)
	cardService := card.NewService(cardRepo, expRepo, expService, cfg.BaseURL, log)

	// Card generation happens on payment confirmation, cloning goes the
	// other way around. The setter breaks the construction cycle.
	expService.SetCardGenerator(cardService)

	return &AppHandlers{
		Experiences: experience.NewHandler(expService, log),
		Cards:       card.NewHandler(cardService, log),
	}
}

func setupRouter(r *gin.Engine, h *AppHandlers, cfg *config.Config, log *zap.Logger) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")

	// Public surface, anonymous viewers allowed
	public := api.Group("/")
	public.Use(middleware.OptionalAuthMiddleware(cfg.JWTSecret))
	{
		public.GET("/shared/:shareCode", h.Experiences.GetSharedExperience)
		public.GET("/cards/:code", h.Cards.GetCardByCode)
		public.GET("/cards/search", h.Cards.SearchCards)
		public.GET("/cards/featured", h.Cards.FeaturedCards)
		public.GET("/cards/nearby", h.Cards.NearbyCards)
		public.GET("/cards/:code/travel-estimate", h.Cards.TravelEstimate)
		public.POST("/cards/:code/share", h.Cards.ShareCard)
	}

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		experiences := protected.Group("/experiences")
		{
			experiences.POST("", h.Experiences.CreateExperience)
			experiences.GET("", h.Experiences.ListExperiences)
			experiences.GET("/search", h.Experiences.SearchExperiences)
			experiences.GET("/:id", h.Experiences.GetExperience)
			experiences.PATCH("/:id", h.Experiences.UpdateExperience)
			experiences.DELETE("/:id", h.Experiences.DeleteExperience)
			experiences.PATCH("/:id/sharing", h.Experiences.UpdateSharing)

			experiences.POST("/:id/items/accommodation", h.Experiences.AddAccommodation)
			experiences.POST("/:id/items/ride", h.Experiences.AddRide)
			experiences.POST("/:id/items/event", h.Experiences.AddEvent)
			experiences.POST("/:id/items/activity", h.Experiences.AddActivity)
			experiences.POST("/:id/items/dining", h.Experiences.AddDining)
			experiences.POST("/:id/items/place", h.Experiences.AddPlace)
			experiences.POST("/:id/items/flight", h.Experiences.AddFlight)
			experiences.PATCH("/:id/items/:itemID", h.Experiences.UpdateItem)
			experiences.DELETE("/:id/items/:itemID", h.Experiences.RemoveItem)
			experiences.PUT("/:id/items/order", h.Experiences.ReorderItems)

			experiences.POST("/:id/discount", h.Experiences.ApplyDiscount)
			experiences.POST("/:id/checkout", h.Experiences.Checkout)
			experiences.POST("/:id/confirm-payment", h.Experiences.ConfirmPayment)
			experiences.POST("/:id/start", h.Experiences.StartExperience)
			experiences.POST("/:id/complete", h.Experiences.CompleteExperience)
			experiences.POST("/:id/cancel", h.Experiences.CancelExperience)
		}

		cards := protected.Group("/cards")
		{
			cards.GET("", h.Cards.ListMyCards)
			cards.GET("/saved", h.Cards.ListSavedCards)
			cards.GET("/id/:id", h.Cards.GetCard)
			cards.PATCH("/id/:id", h.Cards.UpdateCard)
			cards.PATCH("/id/:id/settings", h.Cards.UpdateSettings)
			cards.POST("/id/:id/deactivate", h.Cards.DeactivateCard)
			cards.DELETE("/id/:id", h.Cards.DeleteCard)
			cards.PUT("/id/:id/location", h.Cards.UpdateLocation)
			cards.DELETE("/id/:id/location", h.Cards.StopLocationSharing)
			cards.GET("/id/:id/stats", h.Cards.GetShareStats)
			cards.POST("/:code/like", h.Cards.ToggleLike)
			cards.POST("/:code/save", h.Cards.ToggleSave)
			cards.POST("/:code/clone", h.Cards.CloneCard)
		}
	}
}
