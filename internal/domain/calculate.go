package domain

// Engine bundles the tunable constants of the sizing pipeline.
type Engine struct {
	Rates  DemandRates
	Sizing SizingPolicy
}

// DefaultEngine returns an Engine with the standard constants.
func DefaultEngine() Engine {
	return Engine{
		Rates:  DefaultDemandRates(),
		Sizing: DefaultSizingPolicy(),
	}
}

// Calculate runs rainfall lookup, demand estimation, sizing and product
// matching for a validated input against one reference snapshot. It never
// fails: a missing rainfall record yields the default rainfall and a missing
// product yields a nil Product.
func (e Engine) Calculate(ref *ReferenceData, site SiteInput) CalculationResult {
	rainfall, matched := ref.Rainfall.Lookup(site.PostalCode)
	demand := e.Rates.Annual(site)

	rec := e.Sizing.Recommend(SizingInput{
		RoofArea:          site.RoofArea(),
		RunoffCoefficient: site.RunoffCoefficient,
		AnnualRainfall:    rainfall,
		WaterDemand:       demand,
		HouseConnected:    site.HouseConnected(),
	})

	result := CalculationResult{
		RoofArea:            site.RoofArea(),
		AnnualRainfall:      rainfall,
		UsedDefaultRainfall: !matched,
		RainYield:           rec.RainYield,
		WaterDemand:         demand,
		DemandBuffer:        rec.DemandBuffer,
		YieldShare:          rec.YieldShare,
		Floor:               rec.Floor,
		RecommendedSize:     rec.Recommended,
		MatchPass:           MatchNone,
		ReferenceVersion:    ref.Version,
		CalculatedAt:        clock.Now(),
	}

	if p, pass, ok := ref.Catalog.Match(rec.Recommended, site); ok {
		result.Product = &p
		result.MatchPass = pass
	}
	return result
}
