package card

import (
	"math"
	"time"

	"github.com/queska/queska-go/internal/app/models"
)

const (
	earthRadiusKm = 6371.0

	// Coarse straight-line speeds used for the viewer's travel estimate.
	avgDrivingSpeedKmh = 60.0
	avgFlightSpeedKmh  = 800.0

	// Below this distance a flight estimate is meaningless.
	minFlightDistanceKm = 200.0
)

// haversineKm is the great-circle distance between two coordinates.
func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// estimateTravelTime builds the viewer-to-destination estimate. The flight
// time is only offered for distances where flying plausibly beats driving.
func estimateTravelTime(fromLat, fromLng float64, destination models.TravelLocation) models.TravelTimeEstimate {
	estimate := models.TravelTimeEstimate{
		FromLatitude:  fromLat,
		FromLongitude: fromLng,
		ToDestination: destination,
		CalculatedAt:  time.Now(),
	}

	if destination.Latitude == nil || destination.Longitude == nil {
		return estimate
	}

	distance := haversineKm(fromLat, fromLng, *destination.Latitude, *destination.Longitude)
	estimate.DrivingDistanceKm = math.Round(distance*10) / 10
	estimate.DrivingTimeMin = int(math.Round(distance / avgDrivingSpeedKmh * 60))

	if distance > minFlightDistanceKm {
		flightMin := int(math.Round(distance / avgFlightSpeedKmh * 60))
		estimate.FlightTimeMin = &flightMin
	}

	return estimate
}
