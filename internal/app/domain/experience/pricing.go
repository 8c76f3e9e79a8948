package experience

import (
	"github.com/queska/queska-go/internal/app/models"
)

// RecalculatePricing recomputes the full cost breakdown from the current
// items and traveler count. It is a pure function of its inputs: category
// subtotals, service fee, grand total, per-person price and balance due are
// all derived fresh on every call. Discount fields and amount paid are taken
// from the existing pricing and carried through.
func RecalculatePricing(pricing *models.ExperiencePricing, items []models.ExperienceItem, passengers int) {
	pricing.AccommodationTotal = 0
	pricing.TransportationTotal = 0
	pricing.EventsTotal = 0
	pricing.ActivitiesTotal = 0
	pricing.DiningTotal = 0
	pricing.FlightsTotal = 0

	for _, item := range items {
		switch item.Type {
		case models.ItemTypeAccommodation:
			pricing.AccommodationTotal += item.TotalPrice
		case models.ItemTypeRide:
			pricing.TransportationTotal += item.TotalPrice
		case models.ItemTypeEvent:
			pricing.EventsTotal += item.TotalPrice
		case models.ItemTypeActivity:
			pricing.ActivitiesTotal += item.TotalPrice
		case models.ItemTypeDining:
			pricing.DiningTotal += item.TotalPrice
		case models.ItemTypeFlight:
			pricing.FlightsTotal += item.TotalPrice
		}
	}

	pricing.ItemsSubtotal = pricing.AccommodationTotal +
		pricing.TransportationTotal +
		pricing.EventsTotal +
		pricing.ActivitiesTotal +
		pricing.DiningTotal +
		pricing.FlightsTotal

	pricing.ServiceFee = pricing.ItemsSubtotal * (pricing.ServiceFeePercentage / 100)
	pricing.GrandTotal = pricing.ItemsSubtotal + pricing.ServiceFee + pricing.Taxes - pricing.DiscountAmount
	pricing.BalanceDue = pricing.GrandTotal - pricing.AmountPaid

	// Leave the previous per-person price untouched rather than divide by zero.
	if passengers > 0 {
		pricing.PricePerPerson = pricing.GrandTotal / float64(passengers)
	}
}

// ApplyDiscount sets the discount fields from a validated percentage and
// recomputes the totals. The percentage is applied to the items subtotal.
func ApplyDiscount(pricing *models.ExperiencePricing, items []models.ExperienceItem, passengers int, code string, percentage float64) {
	RecalculatePricing(pricing, items, passengers)

	pricing.DiscountCode = code
	pricing.DiscountPercentage = percentage
	pricing.DiscountAmount = pricing.ItemsSubtotal * (percentage / 100)

	RecalculatePricing(pricing, items, passengers)
}
