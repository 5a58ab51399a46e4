package domain

import (
	"strconv"
	"strings"
)

// PostalRange is an inclusive postal-code interval.
type PostalRange struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
}

// RainfallRecord maps a postal-code range to its annual rainfall.
type RainfallRecord struct {
	Range          PostalRange `json:"plzRange" yaml:"plzRange"`
	AnnualRainfall float64     `json:"annualRainfall" yaml:"annualRainfall"`
}

// RainfallTable is the rainfall reference dataset.
type RainfallTable struct {
	Records []RainfallRecord `json:"rainData" yaml:"rainData"`
	Default float64          `json:"defaultRainfall" yaml:"defaultRainfall"`
}

// Lookup returns the annual rainfall in mm for a postal code and whether a
// record matched. Unmatched or unparseable codes get the table default.
func (t RainfallTable) Lookup(postalCode string) (float64, bool) {
	code, ok := parsePostalCode(postalCode)
	if !ok {
		return t.Default, false
	}

	for _, r := range t.Records {
		if r.Range.Contains(code) {
			return r.AnnualRainfall, true
		}
	}
	return t.Default, false
}

// Contains reports whether the numeric postal code lies within the range.
// A range with an unparseable bound contains nothing.
func (r PostalRange) Contains(code int) bool {
	start, okStart := parsePostalCode(r.Start)
	end, okEnd := parsePostalCode(r.End)
	if !okStart || !okEnd {
		return false
	}
	return code >= start && code <= end
}

// Bounds returns the parsed range bounds.
func (r PostalRange) Bounds() (start, end int, ok bool) {
	start, okStart := parsePostalCode(r.Start)
	end, okEnd := parsePostalCode(r.End)
	return start, end, okStart && okEnd
}

// parsePostalCode parses a postal code as a base-10 integer, keeping leading
// zeros insignificant ("01067" -> 1067).
func parsePostalCode(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}
