package models

import (
	"time"

	"github.com/google/uuid"
)

// ExperienceStatus is the lifecycle state of an Experience.
type ExperienceStatus string

const (
	ExperienceStatusDraft      ExperienceStatus = "draft"
	ExperienceStatusPending    ExperienceStatus = "pending"
	ExperienceStatusConfirmed  ExperienceStatus = "confirmed"
	ExperienceStatusInProgress ExperienceStatus = "in_progress"
	ExperienceStatusCompleted  ExperienceStatus = "completed"
	ExperienceStatusCancelled  ExperienceStatus = "cancelled"
)

// PaymentStatus tracks payment progress on an experience's pricing.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// TravelLocation is a named place with optional coordinates.
type TravelLocation struct {
	Name      string   `json:"name"`
	City      string   `json:"city"`
	State     string   `json:"state,omitempty"`
	Country   string   `json:"country"`
	Address   string   `json:"address,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	PlaceID   string   `json:"place_id,omitempty"`
	Timezone  string   `json:"timezone,omitempty"`
}

// TravelDates is the trip date range. Dates are date-only, UTC midnight.
type TravelDates struct {
	StartDate              time.Time `json:"start_date"`
	EndDate                time.Time `json:"end_date"`
	FlexibleDates          bool      `json:"flexible_dates"`
	PreferredArrivalTime   string    `json:"preferred_arrival_time,omitempty"`
	PreferredDepartureTime string    `json:"preferred_departure_time,omitempty"`
}

// TotalDays is the trip length in calendar days, inclusive of both ends.
func (d TravelDates) TotalDays() int {
	return int(d.EndDate.Sub(d.StartDate).Hours()/24) + 1
}

// TravelGroup describes who is travelling.
type TravelGroup struct {
	Adults              int      `json:"adults"`
	Children            int      `json:"children"`
	Infants             int      `json:"infants"`
	TotalPassengers     int      `json:"total_passengers"`
	CompanionNames      []string `json:"companion_names,omitempty"`
	SpecialRequirements []string `json:"special_requirements,omitempty"`
}

// Total recomputes the passenger total from the component counts.
func (g TravelGroup) Total() int {
	return g.Adults + g.Children + g.Infants
}

// ExperiencePreferences captures the user's trip preferences.
type ExperiencePreferences struct {
	Interests           []string `json:"interests,omitempty"`
	TravelStyle         string   `json:"travel_style,omitempty"` // budget, mid-range, luxury
	Pace                string   `json:"pace,omitempty"`         // relaxed, moderate, packed
	DietaryRestrictions []string `json:"dietary_restrictions,omitempty"`
	AccessibilityNeeds  []string `json:"accessibility_needs,omitempty"`
	PreferredCuisines   []string `json:"preferred_cuisines,omitempty"`
	AvoidCategories     []string `json:"avoid_categories,omitempty"`
	PreferredTransport  []string `json:"preferred_transport,omitempty"`
}

// ExperiencePricing is the full derived cost breakdown. All money fields are
// recomputed from the current items; they are never authoritative on their own.
type ExperiencePricing struct {
	Currency string `json:"currency"`

	AccommodationTotal  float64 `json:"accommodation_total"`
	TransportationTotal float64 `json:"transportation_total"`
	EventsTotal         float64 `json:"events_total"`
	ActivitiesTotal     float64 `json:"activities_total"`
	DiningTotal         float64 `json:"dining_total"`
	FlightsTotal        float64 `json:"flights_total"`

	ItemsSubtotal float64 `json:"items_subtotal"`

	ServiceFee           float64 `json:"service_fee"`
	ServiceFeePercentage float64 `json:"service_fee_percentage"`
	Taxes                float64 `json:"taxes"`

	DiscountAmount     float64 `json:"discount_amount"`
	DiscountCode       string  `json:"discount_code,omitempty"`
	DiscountPercentage float64 `json:"discount_percentage,omitempty"`

	GrandTotal     float64 `json:"grand_total"`
	PricePerPerson float64 `json:"price_per_person"`

	AmountPaid    float64       `json:"amount_paid"`
	BalanceDue    float64       `json:"balance_due"`
	PaymentStatus PaymentStatus `json:"payment_status"`
}

// DefaultServiceFeePercentage is the platform fee applied at checkout.
const DefaultServiceFeePercentage = 5.0

// NewExperiencePricing returns pricing initialized with platform defaults.
func NewExperiencePricing(currency string) ExperiencePricing {
	return ExperiencePricing{
		Currency:             currency,
		ServiceFeePercentage: DefaultServiceFeePercentage,
		PaymentStatus:        PaymentStatusPending,
	}
}

// ExperienceSharing holds share metadata and counters for the experience itself.
type ExperienceSharing struct {
	IsPublic    bool   `json:"is_public"`
	IsShareable bool   `json:"is_shareable"`
	ShareCode   string `json:"share_code,omitempty"`
	ShareURL    string `json:"share_url,omitempty"`

	HidePrices          bool `json:"hide_prices"`
	HidePersonalDetails bool `json:"hide_personal_details"`

	ViewCount  int `json:"view_count"`
	ShareCount int `json:"share_count"`
	CloneCount int `json:"clone_count"`
}

// ExperienceAnalytics aggregates item counts for dashboards.
type ExperienceAnalytics struct {
	TotalItems      int `json:"total_items"`
	TotalDays       int `json:"total_days"`
	PlacesCount     int `json:"places_count"`
	EventsCount     int `json:"events_count"`
	ActivitiesCount int `json:"activities_count"`
	DiningCount     int `json:"dining_count"`
}

// Experience is the mutable trip-builder aggregate. Users create an
// experience, add bookable items to it, check out and pay, and receive a
// shareable ExperienceCard.
type Experience struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`

	AgentID        *uuid.UUID `json:"agent_id,omitempty"`
	AgentName      string     `json:"agent_name,omitempty"`
	CreatedByAgent bool       `json:"created_by_agent"`

	UserName  string `json:"user_name,omitempty"`
	UserEmail string `json:"user_email,omitempty"`

	Title       string   `json:"title"`
	Slug        string   `json:"slug,omitempty"`
	Description string   `json:"description,omitempty"`
	CoverImage  string   `json:"cover_image,omitempty"`
	Images      []string `json:"images,omitempty"`

	Origin      *TravelLocation `json:"origin,omitempty"`
	Destination TravelLocation  `json:"destination"`

	Dates       TravelDates           `json:"dates"`
	Travelers   TravelGroup           `json:"travelers"`
	Preferences ExperiencePreferences `json:"preferences"`

	Items     []ExperienceItem  `json:"items"`
	Itinerary []ItineraryDay    `json:"itinerary"`
	Pricing   ExperiencePricing `json:"pricing"`

	Status  ExperienceStatus  `json:"status"`
	Sharing ExperienceSharing `json:"sharing"`

	Analytics ExperienceAnalytics `json:"analytics"`

	ExperienceCardID *uuid.UUID `json:"experience_card_id,omitempty"`
	CardGenerated    bool       `json:"card_generated"`

	ClonedFromID       *uuid.UUID `json:"cloned_from_id,omitempty"`
	ClonedFromCardCode string     `json:"cloned_from_card_code,omitempty"`
	IsClone            bool       `json:"is_clone"`

	Tags       []string `json:"tags,omitempty"`
	Categories []string `json:"categories,omitempty"`

	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	IsDeleted bool      `json:"-"`
	Version   int       `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CanModifyItems reports whether the item collection may still be mutated.
// Everything past pending is locked.
func (e *Experience) CanModifyItems() bool {
	return e.Status == ExperienceStatusDraft || e.Status == ExperienceStatusPending
}

// TotalDays is the trip length in days, inclusive.
func (e *Experience) TotalDays() int {
	return e.Dates.TotalDays()
}
