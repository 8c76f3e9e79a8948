package models

import (
	"time"

	"github.com/google/uuid"
)

// CardOwner is the owner snapshot displayed on a card.
type CardOwner struct {
	UserID     uuid.UUID `json:"user_id"`
	Name       string    `json:"name"`
	AvatarURL  string    `json:"avatar_url,omitempty"`
	IsVerified bool      `json:"is_verified"`
}

// CardLocation is a real-time location fix shared on a card.
type CardLocation struct {
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  *float64  `json:"accuracy,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
	IsSharing bool      `json:"is_sharing"`
}

// CardHighlight is one featured item shown on the card.
type CardHighlight struct {
	Type        ItemType `json:"type"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	ImageURL    string   `json:"image_url,omitempty"`
	Icon        string   `json:"icon,omitempty"`
}

// MaxCardHighlights bounds how many items are promoted to highlights.
const MaxCardHighlights = 6

// TravelTimeEstimate is a coarse distance/time estimate from a viewer's
// position to the card destination.
type TravelTimeEstimate struct {
	FromLatitude      float64        `json:"from_latitude"`
	FromLongitude     float64        `json:"from_longitude"`
	ToDestination     TravelLocation `json:"to_destination"`
	DrivingDistanceKm float64        `json:"driving_distance_km"`
	DrivingTimeMin    int            `json:"driving_time_minutes"`
	FlightTimeMin     *int           `json:"flight_time_minutes,omitempty"`
	CalculatedAt      time.Time      `json:"calculated_at"`
}

// CardInteraction is one entry in the bounded recent-interaction log.
type CardInteraction struct {
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	Action    string     `json:"action"` // viewed, saved, cloned, shared
	IPAddress string     `json:"ip_address,omitempty"`
	UserAgent string     `json:"user_agent,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// MaxRecentInteractions caps the card interaction log. The log is a recency
// window, not an audit trail; older entries are dropped.
const MaxRecentInteractions = 100

// CardSettings controls display and privacy behaviour of a card.
type CardSettings struct {
	IsPublic  bool       `json:"is_public"`
	IsActive  bool       `json:"is_active"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	ShowOwnerName        bool `json:"show_owner_name"`
	ShowOwnerAvatar      bool `json:"show_owner_avatar"`
	ShowPrices           bool `json:"show_prices"`
	ShowVendorDetails    bool `json:"show_vendor_details"`
	ShowRealTimeLocation bool `json:"show_real_time_location"`

	AllowCloning         bool `json:"allow_cloning"`
	CloneRequiresPayment bool `json:"clone_requires_payment"`

	Theme       string `json:"theme,omitempty"`
	CoverStyle  string `json:"cover_style,omitempty"`
	AccentColor string `json:"accent_color,omitempty"`
}

// DefaultCardSettings mirrors the defaults applied when a card is generated.
func DefaultCardSettings() CardSettings {
	return CardSettings{
		IsActive:             true,
		ShowOwnerName:        true,
		ShowOwnerAvatar:      true,
		ShowVendorDetails:    true,
		AllowCloning:         true,
		CloneRequiresPayment: true,
		Theme:                "default",
		CoverStyle:           "full",
	}
}

// CardStats is the card's engagement counters.
type CardStats struct {
	ViewCount     int `json:"view_count"`
	UniqueViewers int `json:"unique_viewers"`
	ShareCount    int `json:"share_count"`
	CloneCount    int `json:"clone_count"`
	SaveCount     int `json:"save_count"`
}

// ExperienceCard is the shareable, payment-gated snapshot of a confirmed
// experience. It owns copies of the trip data; later edits to the source
// experience do not flow through.
type ExperienceCard struct {
	ID           uuid.UUID `json:"id"`
	ExperienceID uuid.UUID `json:"experience_id"`

	Owner CardOwner `json:"owner"`

	CardCode  string `json:"card_code"`
	ShortURL  string `json:"short_url,omitempty"`
	QRCodeURL string `json:"qr_code_url,omitempty"`

	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Tagline     string `json:"tagline,omitempty"`

	CoverImage string   `json:"cover_image,omitempty"`
	Images     []string `json:"images,omitempty"`
	VideoURL   string   `json:"video_url,omitempty"`

	Destination TravelLocation  `json:"destination"`
	Origin      *TravelLocation `json:"origin,omitempty"`

	Dates     TravelDates `json:"dates"`
	Travelers TravelGroup `json:"travelers"`

	Highlights []CardHighlight `json:"highlights"`

	Itinerary            []ItineraryDay `json:"itinerary,omitempty"`
	IncludeFullItinerary bool           `json:"include_full_itinerary"`

	Pricing *ExperiencePricing `json:"pricing,omitempty"`

	ExperienceStatus ExperienceStatus `json:"experience_status"`

	OwnerLocation *CardLocation `json:"owner_location,omitempty"`

	Settings CardSettings `json:"settings"`
	Stats    CardStats    `json:"stats"`

	RecentInteractions []CardInteraction `json:"recent_interactions,omitempty"`

	ClonedCards    []uuid.UUID `json:"cloned_cards,omitempty"`
	OriginalCardID *uuid.UUID  `json:"original_card_id,omitempty"`
	IsClone        bool        `json:"is_clone"`

	LikedBy []uuid.UUID `json:"liked_by,omitempty"`
	SavedBy []uuid.UUID `json:"saved_by,omitempty"`

	Tags       []string `json:"tags,omitempty"`
	Categories []string `json:"categories,omitempty"`

	Language string `json:"language,omitempty"`
	Currency string `json:"currency,omitempty"`

	IsDeleted bool      `json:"-"`
	Version   int       `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsActive reports whether the card is visible: the active flag is set and
// the expiry, if any, has not passed.
func (c *ExperienceCard) IsActive(now time.Time) bool {
	if !c.Settings.IsActive {
		return false
	}
	if c.Settings.ExpiresAt != nil && c.Settings.ExpiresAt.Before(now) {
		return false
	}
	return true
}

// ShareURL is the canonical public URL for this card.
func (c *ExperienceCard) ShareURL(baseURL string) string {
	return baseURL + "/experience/" + c.CardCode
}

// RecordInteraction prepends an entry to the bounded interaction log.
func (c *ExperienceCard) RecordInteraction(entry CardInteraction) {
	recent := c.RecentInteractions
	if len(recent) >= MaxRecentInteractions {
		recent = recent[:MaxRecentInteractions-1]
	}
	c.RecentInteractions = append([]CardInteraction{entry}, recent...)
}

// IsLikedBy reports membership in the like set.
func (c *ExperienceCard) IsLikedBy(userID uuid.UUID) bool {
	for _, id := range c.LikedBy {
		if id == userID {
			return true
		}
	}
	return false
}

// IsSavedBy reports membership in the save set.
func (c *ExperienceCard) IsSavedBy(userID uuid.UUID) bool {
	for _, id := range c.SavedBy {
		if id == userID {
			return true
		}
	}
	return false
}
