package domain

// IrrigationLevel is the garden watering intensity chosen by the user.
type IrrigationLevel string

const (
	IrrigationLow    IrrigationLevel = "low"
	IrrigationMedium IrrigationLevel = "medium"
	IrrigationHigh   IrrigationLevel = "high"
)

// SiteForm is the raw calculator input before validation. Numeric fields are
// pointers so an absent value can be told apart from zero. Upper bounds keep
// every derived volume finite.
type SiteForm struct {
	RunoffCoefficient     *float64 `json:"roofType" validate:"required,gt=0,lte=1"`
	HouseLength           *float64 `json:"houseLength" validate:"required,gt=0,lte=1000"`
	HouseWidth            *float64 `json:"houseWidth" validate:"required,gt=0,lte=1000"`
	GardenArea            *float64 `json:"gardenArea" validate:"required,gte=0,lte=1000000"`
	PostalCode            string   `json:"zipCode" validate:"required,len=5,number"`
	Irrigation            string   `json:"irrigationDemand" validate:"required,oneof=low medium high"`
	Accessibility         string   `json:"accessibility" validate:"required"`
	ConnectToilet         bool     `json:"connectToilet"`
	ConnectWashingMachine bool     `json:"connectWashingMachine"`
	Occupants             *int     `json:"numPeople" validate:"required,gte=0,lte=1000"`
	ComfortLevel          string   `json:"comfortLevel" validate:"required"`
}

// SiteInput is a validated calculator input.
type SiteInput struct {
	RunoffCoefficient     float64         `json:"roof_type"`
	HouseLength           float64         `json:"house_length"`
	HouseWidth            float64         `json:"house_width"`
	GardenArea            float64         `json:"garden_area"`
	PostalCode            string          `json:"postal_code"`
	Irrigation            IrrigationLevel `json:"irrigation_demand"`
	Accessibility         string          `json:"accessibility"`
	ConnectToilet         bool            `json:"connect_toilet"`
	ConnectWashingMachine bool            `json:"connect_washing_machine"`
	Occupants             int             `json:"num_people"`
	ComfortLevel          string          `json:"comfort_level"`
}

// Input converts the form into a SiteInput. Absent numerics become zero;
// callers validate first.
func (f SiteForm) Input() SiteInput {
	return SiteInput{
		RunoffCoefficient:     derefFloat(f.RunoffCoefficient),
		HouseLength:           derefFloat(f.HouseLength),
		HouseWidth:            derefFloat(f.HouseWidth),
		GardenArea:            derefFloat(f.GardenArea),
		PostalCode:            f.PostalCode,
		Irrigation:            IrrigationLevel(f.Irrigation),
		Accessibility:         f.Accessibility,
		ConnectToilet:         f.ConnectToilet,
		ConnectWashingMachine: f.ConnectWashingMachine,
		Occupants:             derefInt(f.Occupants),
		ComfortLevel:          f.ComfortLevel,
	}
}

// RoofArea is the footprint of the house in m², used as the collecting surface.
func (s SiteInput) RoofArea() float64 {
	return s.HouseLength * s.HouseWidth
}

// HouseConnected reports whether any in-house consumer is attached.
func (s SiteInput) HouseConnected() bool {
	return s.ConnectToilet || s.ConnectWashingMachine
}

// Usage is the product type the site needs: house when any in-house consumer
// is attached, garden otherwise.
func (s SiteInput) Usage() ProductType {
	if s.HouseConnected() {
		return ProductHouse
	}
	return ProductGarden
}

func derefFloat(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
