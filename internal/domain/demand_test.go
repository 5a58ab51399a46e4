package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDemandRates_Annual(t *testing.T) {
	rates := DefaultDemandRates()

	tests := []struct {
		name string
		site SiteInput
		want float64
	}{
		{
			name: "nothing connected and no garden",
			site: SiteInput{Irrigation: IrrigationHigh, Occupants: 4},
			want: 0,
		},
		{
			name: "garden low",
			site: SiteInput{GardenArea: 100, Irrigation: IrrigationLow},
			want: 2000,
		},
		{
			name: "garden medium",
			site: SiteInput{GardenArea: 50, Irrigation: IrrigationMedium},
			want: 1750,
		},
		{
			name: "garden high",
			site: SiteInput{GardenArea: 10, Irrigation: IrrigationHigh},
			want: 500,
		},
		{
			name: "toilet only",
			site: SiteInput{ConnectToilet: true, Occupants: 2},
			want: 2 * 40 * 365,
		},
		{
			name: "washing machine only",
			site: SiteInput{ConnectWashingMachine: true, Occupants: 3},
			want: 3 * 50 * 52,
		},
		{
			name: "everything",
			site: SiteInput{GardenArea: 200, Irrigation: IrrigationMedium, ConnectToilet: true, ConnectWashingMachine: true, Occupants: 4},
			want: 200*35 + 4*40*365 + 4*50*52,
		},
		{
			name: "connected with zero occupants",
			site: SiteInput{ConnectToilet: true, ConnectWashingMachine: true},
			want: 0,
		},
		{
			name: "unknown irrigation level",
			site: SiteInput{GardenArea: 100, Irrigation: "daily"},
			want: 0,
		},
		{
			name: "negative values are ignored",
			site: SiteInput{GardenArea: -10, Irrigation: IrrigationHigh, ConnectToilet: true, Occupants: -2},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, rates.Annual(tt.site), 1e-9)
		})
	}
}

func TestDemandRates_CustomRates(t *testing.T) {
	rates := DemandRates{
		Irrigation:              map[IrrigationLevel]float64{IrrigationLow: 1},
		ToiletPerPersonPerDay:   10,
		WashingPerPersonPerWeek: 7,
	}

	site := SiteInput{GardenArea: 5, Irrigation: IrrigationLow, ConnectToilet: true, ConnectWashingMachine: true, Occupants: 1}
	assert.InDelta(t, 5+3650+364, rates.Annual(site), 1e-9)
	assert.Equal(t, 3650.0, rates.ToiletPerPersonPerYear())
	assert.Equal(t, 364.0, rates.WashingPerPersonPerYear())
}
