package card

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queska/queska-go/internal/app/models"
)

func fullCard() *models.ExperienceCard {
	pricing := models.NewExperiencePricing("USD")
	pricing.GrandTotal = 315
	return &models.ExperienceCard{
		ID: uuid.New(),
		Owner: models.CardOwner{
			UserID:    uuid.New(),
			Name:      "Ada",
			AvatarURL: "https://cdn.queska.test/ada.png",
		},
		CardCode:             "QE-ABCD-EFGH",
		Title:                "Lagos Getaway",
		Pricing:              &pricing,
		IncludeFullItinerary: true,
		Itinerary: []models.ItineraryDay{
			{
				DayNumber: 1,
				TotalCost: 200,
				Items: []models.ExperienceItem{
					{
						Name:             "Eko Hotel",
						VendorID:         "vendor-1",
						VendorName:       "Eko Hotels Ltd",
						BookingReference: "pi_123",
						ConfirmationCode: "CONF-1",
						PricePerUnit:     100,
						TotalPrice:       200,
					},
				},
			},
		},
		OwnerLocation: &models.CardLocation{
			Latitude:  6.52,
			Longitude: 3.37,
			IsSharing: true,
		},
		Settings: models.CardSettings{
			IsPublic:             true,
			IsActive:             true,
			ShowOwnerName:        true,
			ShowOwnerAvatar:      true,
			ShowPrices:           true,
			ShowVendorDetails:    true,
			ShowRealTimeLocation: true,
		},
		RecentInteractions: []models.CardInteraction{{Action: "viewed"}},
		LikedBy:            []uuid.UUID{uuid.New()},
		SavedBy:            []uuid.UUID{uuid.New()},
		ClonedCards:        []uuid.UUID{uuid.New()},
	}
}

func TestPublicProjectionPermissive(t *testing.T) {
	c := fullCard()

	public := PublicProjection(c)

	assert.Equal(t, "Ada", public.Owner.Name)
	assert.NotNil(t, public.Pricing)
	assert.NotNil(t, public.Itinerary)
	assert.NotNil(t, public.OwnerLocation)
	assert.Equal(t, "vendor-1", public.Itinerary[0].Items[0].VendorID)
	assert.Equal(t, 200.0, public.Itinerary[0].Items[0].TotalPrice)

	// Interaction details are owner-only regardless of settings.
	assert.Nil(t, public.RecentInteractions)
	assert.Nil(t, public.LikedBy)
	assert.Nil(t, public.SavedBy)
	assert.Nil(t, public.ClonedCards)
}

func TestPublicProjectionRestrictive(t *testing.T) {
	c := fullCard()
	c.Settings.ShowOwnerName = false
	c.Settings.ShowOwnerAvatar = false
	c.Settings.ShowPrices = false
	c.Settings.ShowVendorDetails = false
	c.Settings.ShowRealTimeLocation = false

	public := PublicProjection(c)

	assert.Empty(t, public.Owner.Name)
	assert.Empty(t, public.Owner.AvatarURL)
	assert.Nil(t, public.Pricing)
	assert.Nil(t, public.OwnerLocation)

	require.NotNil(t, public.Itinerary)
	item := public.Itinerary[0].Items[0]
	assert.Empty(t, item.VendorID)
	assert.Empty(t, item.VendorName)
	assert.Empty(t, item.BookingReference)
	assert.Empty(t, item.ConfirmationCode)
	assert.Equal(t, "Eko Hotel", item.Name, "schedule itself survives redaction")

	// Hiding the pricing block must also strip per-item and per-day
	// amounts, or the totals could be reconstructed.
	assert.Zero(t, item.PricePerUnit)
	assert.Zero(t, item.TotalPrice)
	assert.Zero(t, public.Itinerary[0].TotalCost)
}

func TestPublicProjectionStripsItineraryPricesWhenHidden(t *testing.T) {
	c := fullCard()
	c.Settings.ShowPrices = false

	public := PublicProjection(c)

	assert.Nil(t, public.Pricing)
	require.NotNil(t, public.Itinerary)
	assert.Zero(t, public.Itinerary[0].Items[0].TotalPrice)
	assert.Zero(t, public.Itinerary[0].Items[0].PricePerUnit)
	assert.Zero(t, public.Itinerary[0].TotalCost)
	assert.Equal(t, "vendor-1", public.Itinerary[0].Items[0].VendorID, "vendor visibility is a separate setting")
}

func TestPublicProjectionHidesItineraryWhenExcluded(t *testing.T) {
	c := fullCard()
	c.IncludeFullItinerary = false

	public := PublicProjection(c)

	assert.Nil(t, public.Itinerary)
}

func TestPublicProjectionHidesLocationWhenNotSharing(t *testing.T) {
	c := fullCard()
	c.OwnerLocation.IsSharing = false

	public := PublicProjection(c)

	assert.Nil(t, public.OwnerLocation)
}

func TestPublicProjectionDoesNotMutateOriginal(t *testing.T) {
	c := fullCard()
	c.Settings.ShowPrices = false

	_ = PublicProjection(c)

	assert.NotNil(t, c.Pricing)
	assert.NotEmpty(t, c.RecentInteractions)
	assert.Equal(t, "vendor-1", c.Itinerary[0].Items[0].VendorID)
	assert.Equal(t, 200.0, c.Itinerary[0].Items[0].TotalPrice)
	assert.Equal(t, 200.0, c.Itinerary[0].TotalCost)
}
