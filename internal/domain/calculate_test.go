package domain

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var frozen = time.Date(2026, time.May, 4, 9, 30, 0, 0, time.UTC)

func freezeClock(t *testing.T) {
	t.Helper()
	SetClock(clockwork.NewFakeClockAt(frozen))
	t.Cleanup(func() { SetClock(nil) })
}

func testReference() *ReferenceData {
	return NewReferenceData(
		RainfallTable{
			Records: []RainfallRecord{{Range: PostalRange{Start: "01000", End: "01999"}, AnnualRainfall: 700}},
			Default: 650,
		},
		Catalog{
			product("Garden 1000", 1000, ProductGarden, accessWalkable, comfortBasic),
			product("House 4500", 4500, ProductHouse, accessWalkable, comfortBasic),
		},
		"v-test",
	)
}

func TestEngine_Calculate_GardenOnly(t *testing.T) {
	freezeClock(t)

	site := SiteInput{
		RunoffCoefficient: 0.8,
		HouseLength:       10,
		HouseWidth:        10,
		GardenArea:        50,
		PostalCode:        "01067",
		Irrigation:        IrrigationMedium,
		Accessibility:     accessWalkable,
		ComfortLevel:      comfortBasic,
	}

	got := DefaultEngine().Calculate(testReference(), site)

	want := CalculationResult{
		RoofArea:         100,
		AnnualRainfall:   700,
		RainYield:        56000,
		WaterDemand:      1750,
		DemandBuffer:     1750.0 / 365 * 21,
		YieldShare:       3360,
		Floor:            800,
		RecommendedSize:  800,
		Product:          &Product{Name: "Garden 1000", Capacity: 1000, Type: ProductGarden, Accessibility: accessWalkable, Comfort: comfortBasic},
		MatchPass:        MatchExact,
		ReferenceVersion: "v-test",
		CalculatedAt:     frozen,
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
	assert.InDelta(t, 56.0, got.RainYieldCubicMeters(), 1e-9)
	assert.InDelta(t, 0.8, got.RecommendedCubicMeters(), 1e-9)
}

func TestEngine_Calculate_HouseWithDefaultRainfall(t *testing.T) {
	freezeClock(t)

	site := SiteInput{
		RunoffCoefficient: 0.9,
		HouseLength:       15,
		HouseWidth:        10,
		PostalCode:        "80331",
		Irrigation:        IrrigationLow,
		Accessibility:     accessWalkable,
		ComfortLevel:      comfortBasic,
		ConnectToilet:     true,
		Occupants:         4,
	}

	got := DefaultEngine().Calculate(testReference(), site)

	assert.True(t, got.UsedDefaultRainfall)
	assert.Equal(t, 650.0, got.AnnualRainfall)
	assert.Equal(t, 3000.0, got.Floor)
	assert.Equal(t, 3400.0, got.RecommendedSize)
	require.True(t, got.HasProduct())
	assert.Equal(t, "House 4500", got.Product.Name)
	assert.GreaterOrEqual(t, got.Product.Capacity, got.RecommendedSize)
}

func TestEngine_Calculate_NoProduct(t *testing.T) {
	ref := NewReferenceData(RainfallTable{Default: 700}, nil, "empty")
	site := SiteInput{
		RunoffCoefficient:     1,
		HouseLength:           10,
		HouseWidth:            10,
		PostalCode:            "01067",
		ConnectWashingMachine: true,
		Occupants:             2,
	}

	got := DefaultEngine().Calculate(ref, site)

	assert.False(t, got.HasProduct())
	assert.Nil(t, got.Product)
	assert.Equal(t, MatchNone, got.MatchPass)
	assert.Equal(t, 3000.0, got.RecommendedSize)
}

func TestNewReferenceData_CopiesInputs(t *testing.T) {
	records := []RainfallRecord{{Range: PostalRange{Start: "10000", End: "10999"}, AnnualRainfall: 580}}
	catalog := Catalog{product("a", 1000, ProductGarden, "", "")}

	ref := NewReferenceData(RainfallTable{Records: records, Default: 600}, catalog, "v1")
	records[0].AnnualRainfall = 1
	catalog[0].Name = "changed"

	assert.Equal(t, 580.0, ref.Rainfall.Records[0].AnnualRainfall)
	assert.Equal(t, "a", ref.Catalog[0].Name)
}
