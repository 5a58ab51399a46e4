// Package report renders calculation results as plain text for sharing.
package report

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/couchcryptid/cistern-configurator/internal/domain"
)

// Subject is the e-mail subject used by MailtoURL.
const Subject = "Cistern Configurator Results"

// NoProductMessage is shown in place of a product when the catalog has no match.
const NoProductMessage = "No suitable product found. Please contact us for a custom solution."

// Lines holds the display values of a result, formatted with units.
type Lines struct {
	HouseArea       string `json:"house_area"`
	AnnualRainfall  string `json:"annual_rainfall"`
	RainTotal       string `json:"rain_total"`
	WaterDemand     string `json:"water_demand"`
	RecommendedSize string `json:"recommended_size"`
	Product         string `json:"product"`
}

// Format converts a result into display values.
func Format(r domain.CalculationResult) Lines {
	product := NoProductMessage
	if r.HasProduct() {
		product = fmt.Sprintf("%s (%g L)", r.Product.Name, r.Product.Capacity)
	}
	return Lines{
		HouseArea:       fmt.Sprintf("%.2f m²", r.RoofArea),
		AnnualRainfall:  fmt.Sprintf("%g mm", r.AnnualRainfall),
		RainTotal:       fmt.Sprintf("%.2f m³/year", r.RainYieldCubicMeters()),
		WaterDemand:     fmt.Sprintf("%.0f L/year", r.WaterDemand),
		RecommendedSize: fmt.Sprintf("%.1f m³", r.RecommendedCubicMeters()),
		Product:         product,
	}
}

// Summary renders the result as the plain-text body of a results e-mail.
func Summary(r domain.CalculationResult) string {
	l := Format(r)

	var b strings.Builder
	b.WriteString("Cistern Configuration Results\n")
	b.WriteString("=============================\n\n")
	fmt.Fprintf(&b, "House Area: %s\n", l.HouseArea)
	fmt.Fprintf(&b, "Annual Rainfall: %s\n", l.AnnualRainfall)
	fmt.Fprintf(&b, "Total Rainwater Collection: %s\n", l.RainTotal)
	fmt.Fprintf(&b, "Water Demand: %s\n\n", l.WaterDemand)
	fmt.Fprintf(&b, "Recommended Cistern Size: %s\n", l.RecommendedSize)
	fmt.Fprintf(&b, "Recommended Product: %s\n\n", l.Product)
	b.WriteString("---\n")
	b.WriteString("Generated by Cistern Configurator")
	return b.String()
}

// MailtoURL builds a mailto: link with no recipient, pre-filled with the
// subject and the Summary body.
func MailtoURL(r domain.CalculationResult) string {
	return "mailto:?subject=" + escape(Subject) + "&body=" + escape(Summary(r))
}

// Links returns the product links worth rendering; non-http values are dropped.
func Links(p *domain.Product) map[string]string {
	links := make(map[string]string, 2)
	if p == nil {
		return links
	}
	if isLink(p.ManualURL) {
		links["manual"] = p.ManualURL
	}
	if isLink(p.ProductURL) {
		links["product"] = p.ProductURL
	}
	return links
}

func isLink(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// escape percent-encodes s for a mailto header value, with spaces as %20.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
