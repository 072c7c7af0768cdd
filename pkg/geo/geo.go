package geo

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

const earthRadiusKm = 6371.0

// ErrNonFiniteDistance is returned by DeliveryFee when the distance is NaN or
// infinite, typically because a coordinate upstream was.
var ErrNonFiniteDistance = errors.New("geo: distance is not finite")

// Point is a coordinate pair in signed decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DistanceKm returns the great-circle (haversine) distance between two
// coordinate pairs, rounded to 2 decimal places. Inputs are not range-checked;
// NaN or Inf coordinates propagate into the result and callers must guard.
func DistanceKm(a, b Point) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(a.Lat))*math.Cos(toRadians(b.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return round2(earthRadiusKm * c)
}

// DeliveryFee computes baseFee + distanceKm × feePerKm rounded to 2 decimal
// places. A NaN or infinite distance yields ErrNonFiniteDistance rather than
// letting decimal conversion panic. A negative distance cannot come from
// DistanceKm, but the fee must never go negative, so it is clamped to zero.
func DeliveryFee(distanceKm float64, baseFee, feePerKm decimal.Decimal) (decimal.Decimal, error) {
	if math.IsNaN(distanceKm) || math.IsInf(distanceKm, 0) {
		return decimal.Zero, ErrNonFiniteDistance
	}
	if distanceKm < 0 {
		return decimal.Zero, nil
	}
	distance := decimal.NewFromFloat(distanceKm)
	return baseFee.Add(distance.Mul(feePerKm)).Round(2), nil
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
