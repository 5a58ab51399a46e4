package domain

import (
	"cmp"
	"slices"
)

// ProductType is the intended use of a tank.
type ProductType string

const (
	ProductHouse  ProductType = "house"
	ProductGarden ProductType = "garden"
)

// Match passes. MatchNone means no product qualified.
const (
	MatchNone                = 0
	MatchExact               = 1
	MatchIgnoreComfort       = 2
	MatchIgnoreAccessibility = 3
)

// Product is a cistern from the catalog.
type Product struct {
	Name          string      `json:"name" yaml:"name"`
	Capacity      float64     `json:"capacity" yaml:"capacity"` // liters
	Type          ProductType `json:"type" yaml:"type"`
	Accessibility string      `json:"accessibility" yaml:"accessibility"`
	Comfort       string      `json:"category" yaml:"category"`
	ManualURL     string      `json:"manualUrl,omitempty" yaml:"manualUrl,omitempty"`
	ProductURL    string      `json:"productUrl,omitempty" yaml:"productUrl,omitempty"`
	ImageURL      string      `json:"imageUrl,omitempty" yaml:"imageUrl,omitempty"`
}

// Catalog is the product reference dataset.
type Catalog []Product

// productFilter decides whether a product qualifies in a given pass.
type productFilter func(Product) bool

// Match returns the smallest product with capacity >= size that fits the
// site, relaxing comfort and then accessibility when nothing fits. The pass
// that produced the match is returned; ok is false when no pass matched.
func (c Catalog) Match(size float64, site SiteInput) (Product, int, bool) {
	usage := site.Usage()
	base := func(p Product) bool {
		return p.Capacity >= size && typeMatches(p, usage)
	}

	passes := []productFilter{
		func(p Product) bool {
			return base(p) && p.Accessibility == site.Accessibility && p.Comfort == site.ComfortLevel
		},
		func(p Product) bool {
			return base(p) && p.Accessibility == site.Accessibility
		},
		base,
	}

	for i, keep := range passes {
		if p, ok := c.smallest(keep); ok {
			return p, i + 1, true
		}
	}
	return Product{}, MatchNone, false
}

// Sorted returns a copy of the catalog ordered by capacity, keeping catalog
// order among equal capacities.
func (c Catalog) Sorted() Catalog {
	out := slices.Clone(c)
	slices.SortStableFunc(out, func(a, b Product) int {
		return cmp.Compare(a.Capacity, b.Capacity)
	})
	return out
}

func (c Catalog) smallest(keep productFilter) (Product, bool) {
	var candidates Catalog
	for _, p := range c {
		if keep(p) {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return Product{}, false
	}
	return candidates.Sorted()[0], true
}

// typeMatches applies the usage filter. Large house tanks double as garden
// tanks, so a garden request accepts a house product at or above the house floor.
func typeMatches(p Product, usage ProductType) bool {
	if p.Type == usage {
		return true
	}
	return usage == ProductGarden && p.Type == ProductHouse && p.Capacity >= HouseFloorLiters
}
