package domain

import "math"

// Storage floors in liters by usage.
const (
	HouseFloorLiters  = 3000.0
	GardenFloorLiters = 800.0
)

// LitersPerCubicMeter converts liters to m³ for display.
const LitersPerCubicMeter = 1000.0

// SizingPolicy parameterizes the size recommendation.
type SizingPolicy struct {
	// StorageDays is how many days of average demand the tank should buffer.
	StorageDays float64
	// YieldFraction is the share of annual yield the tank should hold.
	YieldFraction float64
	// RoundTo is the granularity in liters the recommendation is rounded up to.
	RoundTo float64
	// HouseFloor and GardenFloor are the minimum sizes in liters by usage.
	HouseFloor  float64
	GardenFloor float64
}

// DefaultSizingPolicy returns the standard sizing parameters.
func DefaultSizingPolicy() SizingPolicy {
	return SizingPolicy{
		StorageDays:   21,
		YieldFraction: 0.06,
		RoundTo:       100,
		HouseFloor:    HouseFloorLiters,
		GardenFloor:   GardenFloorLiters,
	}
}

// SizingInput carries everything the recommender needs.
type SizingInput struct {
	RoofArea          float64 // m²
	RunoffCoefficient float64 // 0–1
	AnnualRainfall    float64 // mm/year
	WaterDemand       float64 // L/year
	HouseConnected    bool
}

// SizeRecommendation is the output of the recommender. All values in liters.
type SizeRecommendation struct {
	RainYield    float64
	DemandBuffer float64
	YieldShare   float64
	Floor        float64
	Recommended  float64
}

// RainYield is the annual collectible volume in liters: m² × coefficient × mm.
func RainYield(roofArea, coefficient, rainfall float64) float64 {
	return nonNegative(roofArea) * nonNegative(coefficient) * nonNegative(rainfall)
}

// Floor returns the minimum size in liters for the given usage.
func (p SizingPolicy) Floor(houseConnected bool) float64 {
	if houseConnected {
		return p.HouseFloor
	}
	return p.GardenFloor
}

// Recommend computes the recommended cistern size. The result is never below
// the usage floor and never decreases when demand or rainfall increases.
func (p SizingPolicy) Recommend(in SizingInput) SizeRecommendation {
	yield := RainYield(in.RoofArea, in.RunoffCoefficient, in.AnnualRainfall)
	buffer := nonNegative(in.WaterDemand) / daysPerYear * p.StorageDays
	share := yield * p.YieldFraction
	floor := p.Floor(in.HouseConnected)

	size := math.Max(math.Min(buffer, share), floor)
	if p.RoundTo > 0 {
		size = math.Ceil(size/p.RoundTo) * p.RoundTo
	}

	return SizeRecommendation{
		RainYield:    yield,
		DemandBuffer: buffer,
		YieldShare:   share,
		Floor:        floor,
		Recommended:  size,
	}
}

func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}
