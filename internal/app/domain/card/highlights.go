package card

import (
	"github.com/queska/queska-go/internal/app/models"
)

// highlightPriority orders item types by how interesting they are on a
// card face. One item of each type is promoted first, then remaining slots
// fill in item order.
var highlightPriority = []models.ItemType{
	models.ItemTypeFlight,
	models.ItemTypeAccommodation,
	models.ItemTypeEvent,
	models.ItemTypeActivity,
	models.ItemTypeDining,
	models.ItemTypePlace,
	models.ItemTypeRide,
}

var highlightIcons = map[models.ItemType]string{
	models.ItemTypeAccommodation: "hotel",
	models.ItemTypeRide:          "car",
	models.ItemTypeEvent:         "ticket",
	models.ItemTypeActivity:      "hiking",
	models.ItemTypeDining:        "utensils",
	models.ItemTypePlace:         "landmark",
	models.ItemTypeFlight:        "plane",
}

// buildHighlights picks at most MaxCardHighlights items to feature.
func buildHighlights(items []models.ExperienceItem) []models.CardHighlight {
	picked := make([]models.ExperienceItem, 0, models.MaxCardHighlights)
	used := make(map[int]bool, len(items))

	for _, t := range highlightPriority {
		if len(picked) >= models.MaxCardHighlights {
			break
		}
		for i, item := range items {
			if item.Type == t && !used[i] {
				picked = append(picked, item)
				used[i] = true
				break
			}
		}
	}
	for i, item := range items {
		if len(picked) >= models.MaxCardHighlights {
			break
		}
		if !used[i] {
			picked = append(picked, item)
			used[i] = true
		}
	}

	highlights := make([]models.CardHighlight, len(picked))
	for i, item := range picked {
		highlights[i] = models.CardHighlight{
			Type:        item.Type,
			Name:        item.Name,
			Description: item.Description,
			ImageURL:    item.ImageURL,
			Icon:        highlightIcons[item.Type],
		}
	}
	return highlights
}
