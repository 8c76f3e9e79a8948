package experience

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/queska/queska-go/internal/app/models"
)

func pricedItem(t models.ItemType, total float64) models.ExperienceItem {
	return models.ExperienceItem{
		Type:       t,
		TotalPrice: total,
		Quantity:   1,
	}
}

func TestRecalculatePricing(t *testing.T) {
	pricing := models.NewExperiencePricing("USD")
	items := []models.ExperienceItem{
		pricedItem(models.ItemTypeAccommodation, 150),
		pricedItem(models.ItemTypeFlight, 100),
		pricedItem(models.ItemTypeDining, 50),
	}

	RecalculatePricing(&pricing, items, 2)

	assert.Equal(t, 150.0, pricing.AccommodationTotal)
	assert.Equal(t, 100.0, pricing.FlightsTotal)
	assert.Equal(t, 50.0, pricing.DiningTotal)
	assert.Equal(t, 300.0, pricing.ItemsSubtotal)
	assert.Equal(t, 15.0, pricing.ServiceFee)
	assert.Equal(t, 315.0, pricing.GrandTotal)
	assert.Equal(t, 157.5, pricing.PricePerPerson)
	assert.Equal(t, 315.0, pricing.BalanceDue)
}

func TestRecalculatePricingExcludesPlaces(t *testing.T) {
	pricing := models.NewExperiencePricing("USD")
	items := []models.ExperienceItem{
		pricedItem(models.ItemTypeActivity, 80),
		pricedItem(models.ItemTypePlace, 25),
	}

	RecalculatePricing(&pricing, items, 1)

	// Place entrance fees never contribute to a category bucket.
	assert.Equal(t, 80.0, pricing.ItemsSubtotal)
	assert.Equal(t, 84.0, pricing.GrandTotal)
}

func TestRecalculatePricingZeroPassengers(t *testing.T) {
	pricing := models.NewExperiencePricing("USD")
	pricing.PricePerPerson = 42

	RecalculatePricing(&pricing, nil, 0)

	assert.Equal(t, 0.0, pricing.GrandTotal)
	assert.Equal(t, 42.0, pricing.PricePerPerson, "per-person price is left alone without passengers")
}

func TestRecalculatePricingIsIdempotent(t *testing.T) {
	pricing := models.NewExperiencePricing("EUR")
	items := []models.ExperienceItem{
		pricedItem(models.ItemTypeEvent, 120),
		pricedItem(models.ItemTypeRide, 30),
	}

	RecalculatePricing(&pricing, items, 3)
	first := pricing
	RecalculatePricing(&pricing, items, 3)

	assert.Equal(t, first, pricing)
}

func TestApplyDiscount(t *testing.T) {
	pricing := models.NewExperiencePricing("USD")
	items := []models.ExperienceItem{
		pricedItem(models.ItemTypeAccommodation, 200),
	}

	ApplyDiscount(&pricing, items, 2, "WELCOME10", 10)

	assert.Equal(t, "WELCOME10", pricing.DiscountCode)
	assert.Equal(t, 10.0, pricing.DiscountPercentage)
	assert.Equal(t, 20.0, pricing.DiscountAmount)
	// 200 + 5% fee - 20 discount
	assert.Equal(t, 190.0, pricing.GrandTotal)
	assert.Equal(t, 95.0, pricing.PricePerPerson)
}

func TestApplyDiscountReplacesPrevious(t *testing.T) {
	pricing := models.NewExperiencePricing("USD")
	items := []models.ExperienceItem{
		pricedItem(models.ItemTypeAccommodation, 100),
	}

	ApplyDiscount(&pricing, items, 1, "WELCOME10", 10)
	ApplyDiscount(&pricing, items, 1, "SUMMER20", 20)

	assert.Equal(t, "SUMMER20", pricing.DiscountCode)
	assert.Equal(t, 20.0, pricing.DiscountAmount)
	assert.Equal(t, 85.0, pricing.GrandTotal)
}
