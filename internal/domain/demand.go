package domain

const (
	daysPerYear  = 365
	weeksPerYear = 52
)

// DemandRates holds the consumption constants used to estimate annual demand.
type DemandRates struct {
	// Irrigation in liters per m² of garden per year, by level.
	Irrigation map[IrrigationLevel]float64

	// ToiletPerPersonPerDay is toilet flushing in liters per person per day.
	ToiletPerPersonPerDay float64

	// WashingPerPersonPerWeek is washing machine use in liters per person per week.
	WashingPerPersonPerWeek float64
}

// DefaultDemandRates returns the standard consumption constants.
func DefaultDemandRates() DemandRates {
	return DemandRates{
		Irrigation: map[IrrigationLevel]float64{
			IrrigationLow:    20,
			IrrigationMedium: 35,
			IrrigationHigh:   50,
		},
		ToiletPerPersonPerDay:   40,
		WashingPerPersonPerWeek: 50,
	}
}

// ToiletPerPersonPerYear is the annual toilet demand of one occupant in liters.
func (r DemandRates) ToiletPerPersonPerYear() float64 {
	return r.ToiletPerPersonPerDay * daysPerYear
}

// WashingPerPersonPerYear is the annual washing demand of one occupant in liters.
func (r DemandRates) WashingPerPersonPerYear() float64 {
	return r.WashingPerPersonPerWeek * weeksPerYear
}

// Annual estimates the site's water demand in liters per year. Unknown
// irrigation levels contribute nothing.
func (r DemandRates) Annual(site SiteInput) float64 {
	var demand float64

	if site.GardenArea > 0 {
		demand += site.GardenArea * r.Irrigation[site.Irrigation]
	}

	occupants := float64(max(site.Occupants, 0))
	if site.ConnectToilet {
		demand += occupants * r.ToiletPerPersonPerYear()
	}
	if site.ConnectWashingMachine {
		demand += occupants * r.WashingPerPersonPerYear()
	}

	return max(demand, 0)
}
