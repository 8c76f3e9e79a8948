package experience

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queska/queska-go/internal/app/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDayNumber(t *testing.T) {
	start := date(2026, 3, 10)

	day3 := date(2026, 3, 12)
	before := date(2026, 3, 8)

	assert.Equal(t, 1, DayNumber(start, nil), "unscheduled items land on day 1")
	assert.Equal(t, 1, DayNumber(start, &before), "items before the trip clamp to day 1")
	assert.Equal(t, 1, DayNumber(start, &start))
	assert.Equal(t, 3, DayNumber(start, &day3))
}

func TestBuildItineraryCoversEveryDay(t *testing.T) {
	dates := models.TravelDates{
		StartDate: date(2026, 3, 10),
		EndDate:   date(2026, 3, 13),
	}
	day2 := date(2026, 3, 11)
	items := []models.ExperienceItem{
		{ID: uuid.New(), Type: models.ItemTypeDining, ScheduledDate: &day2, StartTime: "19:00", TotalPrice: 60},
	}

	itinerary := BuildItinerary(items, dates)

	require.Len(t, itinerary, 4)
	for i, day := range itinerary {
		assert.Equal(t, i+1, day.DayNumber)
		assert.Equal(t, dates.StartDate.AddDate(0, 0, i), day.Date)
	}
	assert.Empty(t, itinerary[0].Items)
	assert.Equal(t, "Day 1", itinerary[0].Title)
	require.Len(t, itinerary[1].Items, 1)
	assert.Equal(t, 60.0, itinerary[1].TotalCost)
	assert.Equal(t, "19:00", itinerary[1].StartTime)
}

func TestBuildItinerarySortsWithinDay(t *testing.T) {
	day := date(2026, 5, 1)
	dates := models.TravelDates{StartDate: day, EndDate: day}
	items := []models.ExperienceItem{
		{ID: uuid.New(), Name: "Dinner", ScheduledDate: &day, StartTime: "20:00", Order: 0},
		{ID: uuid.New(), Name: "Museum", ScheduledDate: &day, StartTime: "10:00", Order: 1},
		{ID: uuid.New(), Name: "Hotel", ScheduledDate: &day, StartTime: "", Order: 2},
	}

	itinerary := BuildItinerary(items, dates)

	require.Len(t, itinerary, 1)
	require.Len(t, itinerary[0].Items, 3)
	assert.Equal(t, "Hotel", itinerary[0].Items[0].Name, "empty start time sorts first")
	assert.Equal(t, "Museum", itinerary[0].Items[1].Name)
	assert.Equal(t, "Dinner", itinerary[0].Items[2].Name)
}

func TestRecalculateRefreshesDerivedState(t *testing.T) {
	exp := &models.Experience{
		Dates: models.TravelDates{
			StartDate: date(2026, 6, 1),
			EndDate:   date(2026, 6, 3),
		},
		Travelers: models.TravelGroup{Adults: 2, TotalPassengers: 2},
		Pricing:   models.NewExperiencePricing("USD"),
	}
	day2 := date(2026, 6, 2)
	exp.Items = []models.ExperienceItem{
		{ID: uuid.New(), Type: models.ItemTypeActivity, ScheduledDate: &day2, TotalPrice: 90},
		{ID: uuid.New(), Type: models.ItemTypePlace, TotalPrice: 10},
	}

	Recalculate(exp)

	assert.Equal(t, 2, exp.Items[0].DayNumber)
	assert.Equal(t, 1, exp.Items[1].DayNumber)
	assert.Len(t, exp.Itinerary, 3)
	assert.Equal(t, 90.0, exp.Pricing.ItemsSubtotal)
	assert.Equal(t, 2, exp.Analytics.TotalItems)
	assert.Equal(t, 3, exp.Analytics.TotalDays)
	assert.Equal(t, 1, exp.Analytics.PlacesCount)
	assert.Equal(t, 1, exp.Analytics.ActivitiesCount)
}
