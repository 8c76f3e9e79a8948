package models

import (
	"time"

	"github.com/google/uuid"
)

// ItemType is the kind of bookable unit inside an experience.
type ItemType string

const (
	ItemTypeAccommodation ItemType = "accommodation"
	ItemTypeRide          ItemType = "ride"
	ItemTypeEvent         ItemType = "event"
	ItemTypeActivity      ItemType = "activity"
	ItemTypeDining        ItemType = "dining"
	ItemTypePlace         ItemType = "place"
	ItemTypeFlight        ItemType = "flight"
)

// ItemTypes lists every valid item type.
var ItemTypes = []ItemType{
	ItemTypeAccommodation,
	ItemTypeRide,
	ItemTypeEvent,
	ItemTypeActivity,
	ItemTypeDining,
	ItemTypePlace,
	ItemTypeFlight,
}

// Valid reports whether t is one of the known item types.
func (t ItemType) Valid() bool {
	for _, known := range ItemTypes {
		if t == known {
			return true
		}
	}
	return false
}

// BookingStatus for an individual item within an experience.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// AccommodationDetails carries hotel/stay specific fields.
type AccommodationDetails struct {
	RoomType     string    `json:"room_type,omitempty"`
	Nights       int       `json:"nights"`
	CheckInDate  time.Time `json:"check_in_date"`
	CheckOutDate time.Time `json:"check_out_date"`
	CheckInTime  string    `json:"check_in_time,omitempty"`
	CheckOutTime string    `json:"check_out_time,omitempty"`
	Guests       int       `json:"guests"`
	Amenities    []string  `json:"amenities,omitempty"`
}

// RideDetails carries ground transport specific fields.
type RideDetails struct {
	VehicleType     string         `json:"vehicle_type"`
	PickupLocation  TravelLocation `json:"pickup_location"`
	DropoffLocation TravelLocation `json:"dropoff_location"`
	Passengers      int            `json:"passengers"`
	DistanceKm      float64        `json:"distance_km,omitempty"`
	DriverName      string         `json:"driver_name,omitempty"`
}

// EventDetails carries event/ticket specific fields.
type EventDetails struct {
	EventType  string `json:"event_type,omitempty"`
	TicketType string `json:"ticket_type,omitempty"`
	Venue      string `json:"venue,omitempty"`
}

// ActivityDetails carries guided-activity specific fields.
type ActivityDetails struct {
	ActivityType      string   `json:"activity_type,omitempty"`
	DifficultyLevel   string   `json:"difficulty_level,omitempty"`
	EquipmentIncluded bool     `json:"equipment_included"`
	WhatToBring       []string `json:"what_to_bring,omitempty"`
}

// DiningDetails carries restaurant reservation specific fields.
type DiningDetails struct {
	CuisineType    string   `json:"cuisine_type,omitempty"`
	MealType       string   `json:"meal_type,omitempty"`
	PartySize      int      `json:"party_size"`
	DietaryOptions []string `json:"dietary_options,omitempty"`
	DressCode      string   `json:"dress_code,omitempty"`
}

// PlaceDetails carries sightseeing specific fields.
type PlaceDetails struct {
	PlaceType    string `json:"place_type,omitempty"`
	OpeningHours string `json:"opening_hours,omitempty"`
}

// FlightDetails carries flight specific fields.
type FlightDetails struct {
	Airline          string `json:"airline"`
	FlightNumber     string `json:"flight_number"`
	DepartureAirport string `json:"departure_airport,omitempty"`
	ArrivalAirport   string `json:"arrival_airport,omitempty"`
	CabinClass       string `json:"cabin_class,omitempty"`
	BaggageIncluded  bool   `json:"baggage_included"`
}

// ItemDetails is a tagged union of the type-specific payloads. Exactly one
// pointer is set, matching the owning item's Type.
type ItemDetails struct {
	Accommodation *AccommodationDetails `json:"accommodation,omitempty"`
	Ride          *RideDetails          `json:"ride,omitempty"`
	Event         *EventDetails         `json:"event,omitempty"`
	Activity      *ActivityDetails      `json:"activity,omitempty"`
	Dining        *DiningDetails        `json:"dining,omitempty"`
	Place         *PlaceDetails         `json:"place,omitempty"`
	Flight        *FlightDetails        `json:"flight,omitempty"`
}

// ExperienceItem is a single bookable unit inside an experience. Items are
// owned by their experience and never addressable outside it.
type ExperienceItem struct {
	ID   uuid.UUID `json:"id"`
	Type ItemType  `json:"type"`

	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`

	VendorID   string `json:"vendor_id,omitempty"`
	VendorName string `json:"vendor_name,omitempty"`

	Location *TravelLocation `json:"location,omitempty"`

	ScheduledDate   *time.Time `json:"scheduled_date,omitempty"`
	StartTime       string     `json:"start_time,omitempty"` // HH:MM
	EndTime         string     `json:"end_time,omitempty"`
	DurationMinutes int        `json:"duration_minutes,omitempty"`

	PricePerUnit float64 `json:"price_per_unit"`
	Quantity     int     `json:"quantity"`
	TotalPrice   float64 `json:"total_price"`
	Currency     string  `json:"currency"`
	IsFree       bool    `json:"is_free"`

	BookingStatus    BookingStatus `json:"booking_status"`
	BookingReference string        `json:"booking_reference,omitempty"`
	ConfirmationCode string        `json:"confirmation_code,omitempty"`

	ImageURL string   `json:"image_url,omitempty"`
	Images   []string `json:"images,omitempty"`

	Details ItemDetails `json:"details"`

	Notes string `json:"notes,omitempty"`

	Order     int `json:"order"`
	DayNumber int `json:"day_number"`
}

// RecalculateTotal enforces the item price invariant: total is unit price
// times quantity, forced to zero for free items.
func (i *ExperienceItem) RecalculateTotal() {
	if i.IsFree {
		i.TotalPrice = 0
		return
	}
	i.TotalPrice = i.PricePerUnit * float64(i.Quantity)
}

// ItineraryDay is one calendar day of the derived itinerary, present even
// when no items are scheduled on it.
type ItineraryDay struct {
	DayNumber int       `json:"day_number"`
	Date      time.Time `json:"date"`
	Title     string    `json:"title,omitempty"`

	Items []ExperienceItem `json:"items"`

	TotalCost float64 `json:"total_cost"`
	StartTime string  `json:"start_time,omitempty"`
	EndTime   string  `json:"end_time,omitempty"`
}
