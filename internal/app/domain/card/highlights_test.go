package card

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queska/queska-go/internal/app/models"
)

func itemOfType(t models.ItemType, name string) models.ExperienceItem {
	return models.ExperienceItem{Type: t, Name: name}
}

func TestBuildHighlightsPriorityOrder(t *testing.T) {
	items := []models.ExperienceItem{
		itemOfType(models.ItemTypeDining, "Nok by Alara"),
		itemOfType(models.ItemTypeFlight, "LOS-ABV"),
		itemOfType(models.ItemTypeActivity, "Beach Day"),
		itemOfType(models.ItemTypeAccommodation, "Eko Hotel"),
	}

	highlights := buildHighlights(items)

	require.Len(t, highlights, 4)
	assert.Equal(t, "LOS-ABV", highlights[0].Name)
	assert.Equal(t, "Eko Hotel", highlights[1].Name)
	assert.Equal(t, "Beach Day", highlights[2].Name)
	assert.Equal(t, "Nok by Alara", highlights[3].Name)
}

func TestBuildHighlightsOnePerTypeThenFill(t *testing.T) {
	items := []models.ExperienceItem{
		itemOfType(models.ItemTypeActivity, "Surf Lesson"),
		itemOfType(models.ItemTypeActivity, "Kayaking"),
		itemOfType(models.ItemTypeDining, "Terra Kulture"),
	}

	highlights := buildHighlights(items)

	require.Len(t, highlights, 3)
	// One of each type first, duplicates fill afterwards.
	assert.Equal(t, "Surf Lesson", highlights[0].Name)
	assert.Equal(t, "Terra Kulture", highlights[1].Name)
	assert.Equal(t, "Kayaking", highlights[2].Name)
}

func TestBuildHighlightsCapped(t *testing.T) {
	items := make([]models.ExperienceItem, 0, 10)
	for i := 0; i < 10; i++ {
		items = append(items, itemOfType(models.ItemTypeActivity, "Activity"))
	}

	highlights := buildHighlights(items)

	assert.Len(t, highlights, models.MaxCardHighlights)
}

func TestBuildHighlightsIcons(t *testing.T) {
	highlights := buildHighlights([]models.ExperienceItem{
		itemOfType(models.ItemTypeFlight, "LOS-ABV"),
		itemOfType(models.ItemTypeAccommodation, "Eko Hotel"),
		itemOfType(models.ItemTypeRide, "Airport Pickup"),
	})

	require.Len(t, highlights, 3)
	assert.Equal(t, "plane", highlights[0].Icon)
	assert.Equal(t, "hotel", highlights[1].Icon)
	assert.Equal(t, "car", highlights[2].Icon)
}

func TestBuildHighlightsEmpty(t *testing.T) {
	assert.Empty(t, buildHighlights(nil))
}
