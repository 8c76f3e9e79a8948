package experience

import (
	"fmt"
	"sort"
	"time"

	"github.com/queska/queska-go/internal/app/models"
)

// DayNumber computes which 1-based trip day an item falls on. Items without
// a scheduled date default to day 1, as do items scheduled before the trip
// starts.
func DayNumber(tripStart time.Time, scheduled *time.Time) int {
	if scheduled == nil {
		return 1
	}
	diff := int(scheduled.Sub(tripStart).Hours() / 24)
	if diff < 0 {
		return 1
	}
	return diff + 1
}

// BuildItinerary derives the day-by-day schedule from the items and the trip
// date range. Every calendar day from start to end appears exactly once, in
// order, including days with no scheduled items. Items within a day are
// sorted by start time (items without one sort first), then by order index.
// The itinerary is rebuilt wholesale; it is never patched incrementally.
func BuildItinerary(items []models.ExperienceItem, dates models.TravelDates) []models.ItineraryDay {
	byDate := make(map[string][]models.ExperienceItem)
	for _, item := range items {
		if item.ScheduledDate == nil {
			continue
		}
		key := item.ScheduledDate.Format("2006-01-02")
		byDate[key] = append(byDate[key], item)
	}

	totalDays := dates.TotalDays()
	itinerary := make([]models.ItineraryDay, 0, totalDays)

	for dayNum := 1; dayNum <= totalDays; dayNum++ {
		date := dates.StartDate.AddDate(0, 0, dayNum-1)
		dayItems := byDate[date.Format("2006-01-02")]

		sort.SliceStable(dayItems, func(a, b int) bool {
			if dayItems[a].StartTime != dayItems[b].StartTime {
				return dayItems[a].StartTime < dayItems[b].StartTime
			}
			return dayItems[a].Order < dayItems[b].Order
		})

		day := models.ItineraryDay{
			DayNumber: dayNum,
			Date:      date,
			Items:     dayItems,
		}
		for _, item := range dayItems {
			day.TotalCost += item.TotalPrice
		}
		if len(dayItems) > 0 {
			day.StartTime = dayItems[0].StartTime
			day.EndTime = dayItems[len(dayItems)-1].EndTime
		} else {
			day.Title = fmt.Sprintf("Day %d", dayNum)
		}

		itinerary = append(itinerary, day)
	}

	return itinerary
}

// Recalculate refreshes every derived field on the experience from its
// current items: per-item day numbers, pricing, itinerary and analytics.
// It must run after any mutation of the item collection, the travelers or
// the trip dates.
func Recalculate(exp *models.Experience) {
	for i := range exp.Items {
		exp.Items[i].DayNumber = DayNumber(exp.Dates.StartDate, exp.Items[i].ScheduledDate)
	}

	RecalculatePricing(&exp.Pricing, exp.Items, exp.Travelers.TotalPassengers)
	exp.Itinerary = BuildItinerary(exp.Items, exp.Dates)

	exp.Analytics.TotalItems = len(exp.Items)
	exp.Analytics.TotalDays = len(exp.Itinerary)
	exp.Analytics.PlacesCount = countByType(exp.Items, models.ItemTypePlace)
	exp.Analytics.EventsCount = countByType(exp.Items, models.ItemTypeEvent)
	exp.Analytics.ActivitiesCount = countByType(exp.Items, models.ItemTypeActivity)
	exp.Analytics.DiningCount = countByType(exp.Items, models.ItemTypeDining)
}

func countByType(items []models.ExperienceItem, t models.ItemType) int {
	n := 0
	for _, item := range items {
		if item.Type == t {
			n++
		}
	}
	return n
}
