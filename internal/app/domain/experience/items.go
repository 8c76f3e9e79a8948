package experience

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/queska/queska-go/internal/app/models"
)

// The typed constructors below build an ExperienceItem from a type-specific
// request, each computing the total price from its own pricing fields
// (nights x rate, tickets x price, participants x rate, ...).

// NewAccommodationItem builds an accommodation item priced per night.
func NewAccommodationItem(req models.AddAccommodationRequest, currency string) models.ExperienceItem {
	checkIn := req.CheckInDate
	item := models.ExperienceItem{
		ID:            uuid.New(),
		Type:          models.ItemTypeAccommodation,
		Name:          req.Name,
		Category:      "hotel",
		VendorID:      req.VendorID,
		Location:      &req.Location,
		ScheduledDate: &checkIn,
		StartTime:     req.CheckInTime,
		EndTime:       req.CheckOutTime,
		PricePerUnit:  req.PricePerNight,
		Quantity:      req.Nights,
		Currency:      currency,
		BookingStatus: models.BookingStatusPending,
		ImageURL:      req.ImageURL,
		Notes:         req.Notes,
		Details: models.ItemDetails{
			Accommodation: &models.AccommodationDetails{
				RoomType:     req.RoomType,
				Nights:       req.Nights,
				CheckInDate:  req.CheckInDate,
				CheckOutDate: req.CheckOutDate,
				CheckInTime:  req.CheckInTime,
				CheckOutTime: req.CheckOutTime,
				Guests:       req.Guests,
				Amenities:    req.Amenities,
			},
		},
	}
	item.RecalculateTotal()
	return item
}

// NewRideItem builds a ride item with a flat price.
func NewRideItem(req models.AddRideRequest, currency string) models.ExperienceItem {
	item := models.ExperienceItem{
		ID:              uuid.New(),
		Type:            models.ItemTypeRide,
		Name:            fmt.Sprintf("%s Ride", rideTitle.String(req.VehicleType)),
		Category:        req.VehicleType,
		VendorID:        req.VendorID,
		Location:        &req.PickupLocation,
		ScheduledDate:   req.ScheduledDate,
		StartTime:       req.PickupTime,
		DurationMinutes: req.DurationMinutes,
		PricePerUnit:    req.Price,
		Quantity:        1,
		Currency:        currency,
		BookingStatus:   models.BookingStatusPending,
		Notes:           req.Notes,
		Details: models.ItemDetails{
			Ride: &models.RideDetails{
				VehicleType:     req.VehicleType,
				PickupLocation:  req.PickupLocation,
				DropoffLocation: req.DropoffLocation,
				Passengers:      req.Passengers,
				DistanceKm:      req.DistanceKm,
				DriverName:      req.DriverName,
			},
		},
	}
	item.RecalculateTotal()
	return item
}

// NewEventItem builds an event item priced per ticket. The duration is
// derived from the start/end times when both parse.
func NewEventItem(req models.AddEventRequest, currency string) models.ExperienceItem {
	item := models.ExperienceItem{
		ID:              uuid.New(),
		Type:            models.ItemTypeEvent,
		Name:            req.Name,
		Category:        req.EventType,
		VendorID:        req.VendorID,
		Location:        &req.Location,
		ScheduledDate:   req.EventDate,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		DurationMinutes: durationBetween(req.StartTime, req.EndTime),
		PricePerUnit:    req.PricePerTicket,
		Quantity:        req.TicketsCount,
		Currency:        currency,
		IsFree:          req.IsFree,
		BookingStatus:   models.BookingStatusPending,
		ImageURL:        req.ImageURL,
		Notes:           req.Notes,
		Details: models.ItemDetails{
			Event: &models.EventDetails{
				EventType:  req.EventType,
				TicketType: req.TicketType,
				Venue:      req.Venue,
			},
		},
	}
	item.RecalculateTotal()
	return item
}

// NewActivityItem builds an activity item priced per participant.
func NewActivityItem(req models.AddActivityRequest, currency string) models.ExperienceItem {
	item := models.ExperienceItem{
		ID:              uuid.New(),
		Type:            models.ItemTypeActivity,
		Name:            req.Name,
		Category:        req.ActivityType,
		VendorID:        req.VendorID,
		Location:        &req.Location,
		ScheduledDate:   req.ScheduledDate,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
		PricePerUnit:    req.PricePerPerson,
		Quantity:        req.Participants,
		Currency:        currency,
		BookingStatus:   models.BookingStatusPending,
		ImageURL:        req.ImageURL,
		Notes:           req.Notes,
		Details: models.ItemDetails{
			Activity: &models.ActivityDetails{
				ActivityType:      req.ActivityType,
				DifficultyLevel:   req.DifficultyLevel,
				EquipmentIncluded: req.EquipmentIncluded,
				WhatToBring:       req.WhatToBring,
			},
		},
	}
	item.RecalculateTotal()
	return item
}

// defaultDiningDurationMinutes is assumed when a reservation has no end time.
const defaultDiningDurationMinutes = 90

// NewDiningItem builds a dining item estimated per head.
func NewDiningItem(req models.AddDiningRequest, currency string) models.ExperienceItem {
	item := models.ExperienceItem{
		ID:              uuid.New(),
		Type:            models.ItemTypeDining,
		Name:            req.Name,
		Category:        req.CuisineType,
		VendorID:        req.VendorID,
		Location:        &req.Location,
		ScheduledDate:   req.ReservationDate,
		StartTime:       req.ReservationTime,
		DurationMinutes: defaultDiningDurationMinutes,
		PricePerUnit:    req.EstimatedCostPerPerson,
		Quantity:        req.PartySize,
		Currency:        currency,
		BookingStatus:   models.BookingStatusPending,
		ImageURL:        req.ImageURL,
		Notes:           req.Notes,
		Details: models.ItemDetails{
			Dining: &models.DiningDetails{
				CuisineType:    req.CuisineType,
				MealType:       req.MealType,
				PartySize:      req.PartySize,
				DietaryOptions: req.DietaryOptions,
				DressCode:      req.DressCode,
			},
		},
	}
	item.RecalculateTotal()
	return item
}

// NewPlaceItem builds a place-visit item priced by entrance fee.
func NewPlaceItem(req models.AddPlaceRequest, currency string) models.ExperienceItem {
	item := models.ExperienceItem{
		ID:              uuid.New(),
		Type:            models.ItemTypePlace,
		Name:            req.Name,
		Category:        req.PlaceType,
		Location:        &req.Location,
		ScheduledDate:   req.VisitDate,
		StartTime:       req.VisitTime,
		DurationMinutes: req.DurationMinutes,
		PricePerUnit:    req.EntranceFee,
		Quantity:        req.Visitors,
		Currency:        currency,
		IsFree:          req.IsFree,
		BookingStatus:   models.BookingStatusPending,
		ImageURL:        req.ImageURL,
		Notes:           req.Notes,
		Details: models.ItemDetails{
			Place: &models.PlaceDetails{
				PlaceType:    req.PlaceType,
				OpeningHours: req.OpeningHours,
			},
		},
	}
	item.RecalculateTotal()
	return item
}

// NewFlightItem builds a flight item priced per passenger.
func NewFlightItem(req models.AddFlightRequest, currency string) models.ExperienceItem {
	item := models.ExperienceItem{
		ID:               uuid.New(),
		Type:             models.ItemTypeFlight,
		Name:             fmt.Sprintf("%s %s", req.Airline, req.FlightNumber),
		Category:         req.CabinClass,
		ScheduledDate:    req.DepartureDate,
		StartTime:        req.DepartureTime,
		EndTime:          req.ArrivalTime,
		DurationMinutes:  req.FlightDurationMinutes,
		PricePerUnit:     req.PricePerPassenger,
		Quantity:         req.Passengers,
		Currency:         currency,
		BookingStatus:    models.BookingStatusPending,
		BookingReference: req.BookingReference,
		Notes:            req.Notes,
		Details: models.ItemDetails{
			Flight: &models.FlightDetails{
				Airline:          req.Airline,
				FlightNumber:     req.FlightNumber,
				DepartureAirport: req.DepartureAirport,
				ArrivalAirport:   req.ArrivalAirport,
				CabinClass:       req.CabinClass,
				BaggageIncluded:  req.BaggageIncluded,
			},
		},
	}
	item.RecalculateTotal()
	return item
}

// AppendItem adds an item at the end of the collection, assigns the next
// order index and day number, and refreshes all derived state.
func AppendItem(exp *models.Experience, item models.ExperienceItem) {
	item.Order = len(exp.Items)
	item.DayNumber = DayNumber(exp.Dates.StartDate, item.ScheduledDate)
	exp.Items = append(exp.Items, item)
	Recalculate(exp)
}

// UpdateItem applies the non-nil fields of the update to the matching item
// and refreshes derived state. Returns models.ErrNotFound when no item has
// the given id.
func UpdateItem(exp *models.Experience, itemID uuid.UUID, req models.ItemUpdateRequest) error {
	for i := range exp.Items {
		if exp.Items[i].ID != itemID {
			continue
		}
		item := &exp.Items[i]
		if req.Name != nil {
			item.Name = *req.Name
		}
		if req.Description != nil {
			item.Description = *req.Description
		}
		if req.ScheduledDate != nil {
			item.ScheduledDate = req.ScheduledDate
		}
		if req.StartTime != nil {
			item.StartTime = *req.StartTime
		}
		if req.EndTime != nil {
			item.EndTime = *req.EndTime
		}
		if req.PricePerUnit != nil {
			item.PricePerUnit = *req.PricePerUnit
		}
		if req.Quantity != nil {
			item.Quantity = *req.Quantity
		}
		if req.IsFree != nil {
			item.IsFree = *req.IsFree
		}
		if req.Notes != nil {
			item.Notes = *req.Notes
		}
		item.RecalculateTotal()
		Recalculate(exp)
		return nil
	}
	return fmt.Errorf("item %s: %w", itemID, models.ErrNotFound)
}

// RemoveItem deletes the matching item and refreshes derived state. Returns
// models.ErrNotFound when no item has the given id.
func RemoveItem(exp *models.Experience, itemID uuid.UUID) error {
	for i := range exp.Items {
		if exp.Items[i].ID != itemID {
			continue
		}
		exp.Items = append(exp.Items[:i], exp.Items[i+1:]...)
		for j := range exp.Items {
			exp.Items[j].Order = j
		}
		Recalculate(exp)
		return nil
	}
	return fmt.Errorf("item %s: %w", itemID, models.ErrNotFound)
}

// ReorderItems rebuilds the collection to match the supplied id order.
// Items whose ids are omitted from the order are dropped from the
// experience. That is the documented policy, not an accident; callers
// wanting to keep an item must include its id.
func ReorderItems(exp *models.Experience, order []uuid.UUID) {
	byID := make(map[uuid.UUID]models.ExperienceItem, len(exp.Items))
	for _, item := range exp.Items {
		byID[item.ID] = item
	}

	reordered := make([]models.ExperienceItem, 0, len(order))
	for _, id := range order {
		item, ok := byID[id]
		if !ok {
			continue
		}
		item.Order = len(reordered)
		reordered = append(reordered, item)
	}

	exp.Items = reordered
	Recalculate(exp)
}

var rideTitle = cases.Title(language.English)

// durationBetween returns the minutes between two HH:MM times, or zero when
// either fails to parse or the range is inverted.
func durationBetween(startTime, endTime string) int {
	if startTime == "" || endTime == "" {
		return 0
	}
	start, err := time.Parse("15:04", startTime)
	if err != nil {
		return 0
	}
	end, err := time.Parse("15:04", endTime)
	if err != nil {
		return 0
	}
	minutes := int(end.Sub(start).Minutes())
	if minutes < 0 {
		return 0
	}
	return minutes
}
