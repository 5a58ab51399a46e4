package domain

import "time"

// CalculationResult is the structured output handed to presentation layers.
// Volumes are liters; see the CubicMeters helpers for display values.
type CalculationResult struct {
	ID                  string    `json:"id"`
	RoofArea            float64   `json:"roof_area_m2"`
	AnnualRainfall      float64   `json:"annual_rainfall_mm"`
	UsedDefaultRainfall bool      `json:"used_default_rainfall"`
	RainYield           float64   `json:"rain_yield_l"`
	WaterDemand         float64   `json:"water_demand_l"`
	DemandBuffer        float64   `json:"demand_buffer_l"`
	YieldShare          float64   `json:"yield_share_l"`
	Floor               float64   `json:"floor_l"`
	RecommendedSize     float64   `json:"recommended_size_l"`
	Product             *Product  `json:"product"`
	MatchPass           int       `json:"match_pass"`
	ReferenceVersion    string    `json:"reference_version,omitempty"`
	CalculatedAt        time.Time `json:"calculated_at"`
}

// RainYieldCubicMeters returns the annual yield in m³.
func (r CalculationResult) RainYieldCubicMeters() float64 {
	return r.RainYield / LitersPerCubicMeter
}

// RecommendedCubicMeters returns the recommended size in m³.
func (r CalculationResult) RecommendedCubicMeters() float64 {
	return r.RecommendedSize / LitersPerCubicMeter
}

// HasProduct reports whether the catalog produced a match.
func (r CalculationResult) HasProduct() bool {
	return r.Product != nil
}
