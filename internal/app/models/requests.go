package models

import "time"

// ExperienceCreateRequest is the payload for creating a new experience.
type ExperienceCreateRequest struct {
	Title       string                `json:"title" binding:"required"`
	Description string                `json:"description"`
	CoverImage  string                `json:"cover_image"`
	Origin      *TravelLocation       `json:"origin"`
	Destination TravelLocation        `json:"destination" binding:"required"`
	Dates       TravelDates           `json:"dates" binding:"required"`
	Travelers   TravelGroup           `json:"travelers"`
	Preferences ExperiencePreferences `json:"preferences"`
	Tags        []string              `json:"tags"`
}

// ExperienceUpdateRequest carries optional top-level experience edits.
// Nil fields are left unchanged.
type ExperienceUpdateRequest struct {
	Title       *string                `json:"title"`
	Description *string                `json:"description"`
	CoverImage  *string                `json:"cover_image"`
	Origin      *TravelLocation        `json:"origin"`
	Destination *TravelLocation        `json:"destination"`
	Dates       *TravelDates           `json:"dates"`
	Travelers   *TravelGroup           `json:"travelers"`
	Preferences *ExperiencePreferences `json:"preferences"`
	Tags        []string               `json:"tags"`
}

// ItemUpdateRequest carries optional edits to a single item. Nil fields are
// left unchanged; price or quantity changes re-trigger the total invariant.
type ItemUpdateRequest struct {
	Name          *string    `json:"name"`
	Description   *string    `json:"description"`
	ScheduledDate *time.Time `json:"scheduled_date"`
	StartTime     *string    `json:"start_time"`
	EndTime       *string    `json:"end_time"`
	PricePerUnit  *float64   `json:"price_per_unit"`
	Quantity      *int       `json:"quantity"`
	IsFree        *bool      `json:"is_free"`
	Notes         *string    `json:"notes"`
}

// AddAccommodationRequest adds a hotel or other stay.
type AddAccommodationRequest struct {
	Name          string         `json:"name" binding:"required"`
	VendorID      string         `json:"vendor_id"`
	Location      TravelLocation `json:"location" binding:"required"`
	RoomType      string         `json:"room_type"`
	CheckInDate   time.Time      `json:"check_in_date" binding:"required"`
	CheckOutDate  time.Time      `json:"check_out_date" binding:"required"`
	CheckInTime   string         `json:"check_in_time"`
	CheckOutTime  string         `json:"check_out_time"`
	Nights        int            `json:"nights" binding:"required"`
	PricePerNight float64        `json:"price_per_night"`
	Guests        int            `json:"guests"`
	Amenities     []string       `json:"amenities"`
	ImageURL      string         `json:"image_url"`
	Notes         string         `json:"notes"`
}

// AddRideRequest adds ground transportation.
type AddRideRequest struct {
	VehicleType     string         `json:"vehicle_type" binding:"required"`
	VendorID        string         `json:"vendor_id"`
	PickupLocation  TravelLocation `json:"pickup_location" binding:"required"`
	DropoffLocation TravelLocation `json:"dropoff_location" binding:"required"`
	ScheduledDate   *time.Time     `json:"scheduled_date"`
	PickupTime      string         `json:"pickup_time"`
	DurationMinutes int            `json:"duration_minutes"`
	Price           float64        `json:"price"`
	Passengers      int            `json:"passengers"`
	DistanceKm      float64        `json:"distance_km"`
	DriverName      string         `json:"driver_name"`
	Notes           string         `json:"notes"`
}

// AddEventRequest adds an event with tickets.
type AddEventRequest struct {
	Name           string         `json:"name" binding:"required"`
	EventType      string         `json:"event_type"`
	VendorID       string         `json:"vendor_id"`
	Location       TravelLocation `json:"location" binding:"required"`
	EventDate      *time.Time     `json:"event_date"`
	StartTime      string         `json:"start_time"`
	EndTime        string         `json:"end_time"`
	PricePerTicket float64        `json:"price_per_ticket"`
	TicketsCount   int            `json:"tickets_count"`
	TicketType     string         `json:"ticket_type"`
	Venue          string         `json:"venue"`
	IsFree         bool           `json:"is_free"`
	ImageURL       string         `json:"image_url"`
	Notes          string         `json:"notes"`
}

// AddActivityRequest adds a guided activity.
type AddActivityRequest struct {
	Name              string         `json:"name" binding:"required"`
	ActivityType      string         `json:"activity_type"`
	VendorID          string         `json:"vendor_id"`
	Location          TravelLocation `json:"location" binding:"required"`
	ScheduledDate     *time.Time     `json:"scheduled_date"`
	StartTime         string         `json:"start_time"`
	DurationMinutes   int            `json:"duration_minutes"`
	PricePerPerson    float64        `json:"price_per_person"`
	Participants      int            `json:"participants"`
	DifficultyLevel   string         `json:"difficulty_level"`
	EquipmentIncluded bool           `json:"equipment_included"`
	WhatToBring       []string       `json:"what_to_bring"`
	ImageURL          string         `json:"image_url"`
	Notes             string         `json:"notes"`
}

// AddDiningRequest adds a restaurant reservation.
type AddDiningRequest struct {
	Name                   string         `json:"name" binding:"required"`
	CuisineType            string         `json:"cuisine_type"`
	MealType               string         `json:"meal_type"`
	VendorID               string         `json:"vendor_id"`
	Location               TravelLocation `json:"location" binding:"required"`
	ReservationDate        *time.Time     `json:"reservation_date"`
	ReservationTime        string         `json:"reservation_time"`
	EstimatedCostPerPerson float64        `json:"estimated_cost_per_person"`
	PartySize              int            `json:"party_size"`
	DietaryOptions         []string       `json:"dietary_options"`
	DressCode              string         `json:"dress_code"`
	ImageURL               string         `json:"image_url"`
	Notes                  string         `json:"notes"`
}

// AddPlaceRequest adds a place to visit.
type AddPlaceRequest struct {
	Name            string         `json:"name" binding:"required"`
	PlaceType       string         `json:"place_type"`
	Location        TravelLocation `json:"location" binding:"required"`
	VisitDate       *time.Time     `json:"visit_date"`
	VisitTime       string         `json:"visit_time"`
	DurationMinutes int            `json:"duration_minutes"`
	EntranceFee     float64        `json:"entrance_fee"`
	Visitors        int            `json:"visitors"`
	OpeningHours    string         `json:"opening_hours"`
	IsFree          bool           `json:"is_free"`
	ImageURL        string         `json:"image_url"`
	Notes           string         `json:"notes"`
}

// AddFlightRequest adds a flight.
type AddFlightRequest struct {
	Airline               string     `json:"airline" binding:"required"`
	FlightNumber          string     `json:"flight_number" binding:"required"`
	DepartureAirport      string     `json:"departure_airport"`
	ArrivalAirport        string     `json:"arrival_airport"`
	DepartureDate         *time.Time `json:"departure_date"`
	DepartureTime         string     `json:"departure_time"`
	ArrivalTime           string     `json:"arrival_time"`
	FlightDurationMinutes int        `json:"flight_duration_minutes"`
	PricePerPassenger     float64    `json:"price_per_passenger"`
	Passengers            int        `json:"passengers"`
	CabinClass            string     `json:"cabin_class"`
	BaggageIncluded       bool       `json:"baggage_included"`
	BookingReference      string     `json:"booking_reference"`
	Notes                 string     `json:"notes"`
}

// CheckoutRequest submits an experience for payment.
type CheckoutRequest struct {
	DiscountCode  string `json:"discount_code"`
	PaymentMethod string `json:"payment_method"`
}

// CheckoutResponse is returned from checkout with the payment hand-off.
type CheckoutResponse struct {
	ExperienceID     string           `json:"experience_id"`
	TotalAmount      float64          `json:"total_amount"`
	Currency         string           `json:"currency"`
	PaymentReference string           `json:"payment_reference"`
	ClientSecret     string           `json:"client_secret"`
	Status           ExperienceStatus `json:"status"`
	ExpiresAt        time.Time        `json:"expires_at"`
}

// SharingUpdateRequest toggles the experience's own share settings.
// Nil fields are left unchanged.
type SharingUpdateRequest struct {
	IsPublic            *bool `json:"is_public"`
	IsShareable         *bool `json:"is_shareable"`
	HidePrices          *bool `json:"hide_prices"`
	HidePersonalDetails *bool `json:"hide_personal_details"`
}

// CloneRequest clones an experience from a card's share code.
type CloneRequest struct {
	NewStartDate time.Time    `json:"new_start_date" binding:"required"`
	Travelers    *TravelGroup `json:"travelers"`
}

// ExperienceFilters narrows experience searches.
type ExperienceFilters struct {
	Status             *ExperienceStatus `json:"status" form:"status"`
	DestinationCity    string            `json:"destination_city" form:"destination_city"`
	DestinationCountry string            `json:"destination_country" form:"destination_country"`
	StartDateFrom      *time.Time        `json:"start_date_from" form:"start_date_from"`
	StartDateTo        *time.Time        `json:"start_date_to" form:"start_date_to"`
	Tags               []string          `json:"tags" form:"tags"`
	CardGenerated      *bool             `json:"card_generated" form:"card_generated"`
}

// CardUpdateRequest carries owner edits to a card's presentation.
type CardUpdateRequest struct {
	Title                *string  `json:"title"`
	Description          *string  `json:"description"`
	Tagline              *string  `json:"tagline"`
	CoverImage           *string  `json:"cover_image"`
	Images               []string `json:"images"`
	VideoURL             *string  `json:"video_url"`
	Tags                 []string `json:"tags"`
	IncludeFullItinerary *bool    `json:"include_full_itinerary"`
}

// CardSettingsUpdateRequest toggles card visibility/privacy settings.
// Nil fields are left unchanged.
type CardSettingsUpdateRequest struct {
	IsPublic             *bool      `json:"is_public"`
	IsActive             *bool      `json:"is_active"`
	ExpiresAt            *time.Time `json:"expires_at"`
	ShowOwnerName        *bool      `json:"show_owner_name"`
	ShowOwnerAvatar      *bool      `json:"show_owner_avatar"`
	ShowPrices           *bool      `json:"show_prices"`
	ShowVendorDetails    *bool      `json:"show_vendor_details"`
	ShowRealTimeLocation *bool      `json:"show_real_time_location"`
	AllowCloning         *bool      `json:"allow_cloning"`
	Theme                *string    `json:"theme"`
	CoverStyle           *string    `json:"cover_style"`
	AccentColor          *string    `json:"accent_color"`
}

// UpdateLocationRequest updates the owner's live location on a card.
type UpdateLocationRequest struct {
	Latitude  float64  `json:"latitude" binding:"required"`
	Longitude float64  `json:"longitude" binding:"required"`
	Accuracy  *float64 `json:"accuracy"`
}

// ShareCardRequest shares a card with recipients.
type ShareCardRequest struct {
	Emails       []string `json:"emails"`
	PhoneNumbers []string `json:"phone_numbers"`
	ShareVia     string   `json:"share_via"`
}

// CardSearchFilters narrows public card discovery.
type CardSearchFilters struct {
	DestinationCity    string     `json:"destination_city" form:"destination_city"`
	DestinationCountry string     `json:"destination_country" form:"destination_country"`
	StartDateFrom      *time.Time `json:"start_date_from" form:"start_date_from"`
	StartDateTo        *time.Time `json:"start_date_to" form:"start_date_to"`
	MinTravelers       *int       `json:"min_travelers" form:"min_travelers"`
	MaxTravelers       *int       `json:"max_travelers" form:"max_travelers"`
	Tags               []string   `json:"tags" form:"tags"`
}
