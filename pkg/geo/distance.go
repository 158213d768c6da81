package geo

import (
	"math"

	"github.com/golang/geo/s2"
)

const earthRadiusM = 6371000.0

// GreatCircleDistance jarak di permukaan bola dalam meter
func GreatCircleDistance(lat1, lon1, lat2, lon2 float64) float64 {
	from := s2.LatLngFromDegrees(lat1, lon1)
	to := s2.LatLngFromDegrees(lat2, lon2)
	return from.Distance(to).Radians() * earthRadiusM
}

type Location struct {
	Latitude  float64
	Longitude float64
}

func degreeToRadians(angle float64) float64 {
	return angle * (math.Pi / 180.0)
}

func NewLocation(latDegree float64, lonDegree float64) Location {
	return Location{
		Latitude:  degreeToRadians(latDegree),
		Longitude: degreeToRadians(lonDegree),
	}
}

func havFunction(angleRad float64) float64 {
	return (1 - math.Cos(angleRad)) / 2.0
}

// HaversineDistance jarak haversine dalam meter
// https://www.movable-type.co.uk/scripts/latlong.html
func HaversineDistance(locationOne Location, locationTwo Location) float64 {
	latDiff := locationOne.Latitude - locationTwo.Latitude
	lonDiff := locationOne.Longitude - locationTwo.Longitude
	hav := havFunction(latDiff) + math.Cos(locationOne.Latitude)*math.Cos(locationTwo.Latitude)*havFunction(lonDiff)
	return earthRadiusM * 2.0 * math.Asin(math.Sqrt(hav))
}
