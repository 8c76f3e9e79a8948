package card

import (
	"github.com/queska/queska-go/internal/app/models"
)

// PublicProjection derives the viewer-facing shape of a card from its
// settings. It is computed fresh on every read; nothing privacy-sensitive
// is ever stored pre-redacted, so a settings change takes effect on the
// next request. The owner always sees the full card and never goes
// through here.
func PublicProjection(c *models.ExperienceCard) *models.ExperienceCard {
	public := *c

	if !c.Settings.ShowOwnerName {
		public.Owner.Name = ""
	}
	if !c.Settings.ShowOwnerAvatar {
		public.Owner.AvatarURL = ""
	}
	if !c.Settings.ShowPrices {
		public.Pricing = nil
	}
	if !c.IncludeFullItinerary {
		public.Itinerary = nil
	}
	if !c.Settings.ShowRealTimeLocation || c.OwnerLocation == nil || !c.OwnerLocation.IsSharing {
		public.OwnerLocation = nil
	}
	if !c.Settings.ShowVendorDetails {
		public.Itinerary = redactVendors(public.Itinerary)
	}
	if !c.Settings.ShowPrices {
		public.Itinerary = redactPrices(public.Itinerary)
	}

	// Interaction details and membership sets are owner-only; the stats
	// counters already carry the public numbers.
	public.RecentInteractions = nil
	public.LikedBy = nil
	public.SavedBy = nil
	public.ClonedCards = nil

	return &public
}

// redactPrices zeroes every price field in the itinerary. Hiding the
// pricing block alone is not enough; per-item and per-day totals would
// reconstruct it.
func redactPrices(itinerary []models.ItineraryDay) []models.ItineraryDay {
	if itinerary == nil {
		return nil
	}
	redacted := make([]models.ItineraryDay, len(itinerary))
	for i, day := range itinerary {
		redactedDay := day
		redactedDay.TotalCost = 0
		redactedDay.Items = make([]models.ExperienceItem, len(day.Items))
		for j, item := range day.Items {
			item.PricePerUnit = 0
			item.TotalPrice = 0
			redactedDay.Items[j] = item
		}
		redacted[i] = redactedDay
	}
	return redacted
}

// redactVendors strips vendor identifiers and booking references from the
// itinerary items without disturbing the schedule itself.
func redactVendors(itinerary []models.ItineraryDay) []models.ItineraryDay {
	if itinerary == nil {
		return nil
	}
	redacted := make([]models.ItineraryDay, len(itinerary))
	for i, day := range itinerary {
		redactedDay := day
		redactedDay.Items = make([]models.ExperienceItem, len(day.Items))
		for j, item := range day.Items {
			item.VendorID = ""
			item.VendorName = ""
			item.BookingReference = ""
			item.ConfirmationCode = ""
			redactedDay.Items[j] = item
		}
		redacted[i] = redactedDay
	}
	return redacted
}
