// Package domain models rainwater cistern sizing.
//
// # Reference Data
//
// Two datasets are loaded once and never mutated: the rainfall table
// (plzRainData.json) and the product catalog (cisternProducts.json). They are
// bundled into a [ReferenceData] snapshot and passed explicitly into every
// calculation. Replacing data means building a new snapshot.
//
// Rainfall table format:
//
//	{"rainData": [{"plzRange": {"start": "01000", "end": "01999"}, "annualRainfall": 600}],
//	 "defaultRainfall": 700}
//
//	Bounds are inclusive 5-digit postal codes compared numerically.
//	A record with start == end matches exactly one code.
//	Records are scanned in file order; the first containing record wins.
//	Codes that do not parse as integers never match and get the default.
//
// Product catalog format:
//
//	[{"name": "...", "capacity": 3000, "type": "house", "accessibility": "drivable",
//	  "category": "comfort", "manualUrl": "...", "productUrl": "...", "imageUrl": "..."}]
//
//	"category" is the comfort category. "type" is "house" or "garden".
//
// # Units
//
// All volumes are liters. Rainfall is millimetres per year, and one millimetre
// falling on one square metre is one liter, so:
//
//	yield [L/year] = roof area [m²] × runoff coefficient × rainfall [mm/year]
//
// Cubic metres are only produced for display (liters / 1000).
//
// # Sizing
//
// The recommendation takes the smaller of a demand buffer and a share of the
// annual yield, then applies the usage floor and rounds up:
//
//	buffer = demand / 365 × StorageDays        (default 21 days)
//	share  = yield × YieldFraction             (default 0.06, about 21/365)
//	size   = ceil(max(min(buffer, share), floor) / 100) × 100
//
//	floor = 3000 L when a toilet or washing machine is connected, else 800 L.
//
// Both terms are non-decreasing in demand and rainfall, so the result is too.
//
// # Product Matching
//
// Three passes with progressively relaxed filters, stopping at the first pass
// with a hit and returning the smallest sufficient tank:
//
//	1: type, accessibility, comfort, capacity
//	2: type, accessibility, capacity
//	3: type, capacity
//
// A garden request also accepts house tanks of at least 3000 L.
package domain
