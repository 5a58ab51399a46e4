// Command sizecalc runs one cistern sizing calculation from flags and prints
// the result summary.
//
// Usage:
//
//	go run ./cmd/sizecalc -roof-type 0.8 -length 10 -width 10 -garden 50 \
//	  -zip 01067 -irrigation medium -access walkable -people 2 -comfort basic
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"time"

	"github.com/couchcryptid/cistern-configurator/internal/adapter/report"
	"github.com/couchcryptid/cistern-configurator/internal/calculator"
	"github.com/couchcryptid/cistern-configurator/internal/config"
	"github.com/couchcryptid/cistern-configurator/internal/domain"
	"github.com/couchcryptid/cistern-configurator/internal/observability"
	"github.com/couchcryptid/cistern-configurator/internal/refdata"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("sizecalc", flag.ContinueOnError)
	fs.SetOutput(stderr)

	source := fs.String("source", "./data", "dataset directory or http(s) base URL")
	rainfall := fs.String("rainfall", "plzRainData.json", "rainfall dataset name")
	catalog := fs.String("catalog", "cisternProducts.json", "product catalog dataset name")
	asJSON := fs.Bool("json", false, "print the full result as JSON")

	roofType := fs.Float64("roof-type", 0, "roof runoff coefficient (0-1]")
	length := fs.Float64("length", 0, "house length in m")
	width := fs.Float64("width", 0, "house width in m")
	garden := fs.Float64("garden", 0, "garden area in m²")
	people := fs.Int("people", 0, "number of occupants")
	zip := fs.String("zip", "", "5-digit postal code")
	irrigation := fs.String("irrigation", "", "irrigation demand: low, medium or high")
	access := fs.String("access", "", "required accessibility, e.g. walkable or drivable")
	comfort := fs.String("comfort", "", "comfort level, e.g. basic or premium")
	toilet := fs.Bool("toilet", false, "connect toilet flushing")
	washer := fs.Bool("washer", false, "connect washing machine")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	form := domain.SiteForm{
		RunoffCoefficient:     optional(set["roof-type"], *roofType),
		HouseLength:           optional(set["length"], *length),
		HouseWidth:            optional(set["width"], *width),
		GardenArea:            optional(set["garden"], *garden),
		PostalCode:            *zip,
		Irrigation:            *irrigation,
		Accessibility:         *access,
		ConnectToilet:         *toilet,
		ConnectWashingMachine: *washer,
		Occupants:             optional(set["people"], *people),
		ComfortLevel:          *comfort,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := &config.Config{LogLevel: "error", LogFormat: "text"}
	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetricsForTesting()

	loader := refdata.NewLoader(refdata.NewSource(*source, 10*time.Second, logger), refdata.LoaderConfig{
		RainfallName: *rainfall,
		CatalogName:  *catalog,
		MaxRetries:   3,
	}, logger, metrics)
	svc := calculator.New(refdata.NewStore(), loader, domain.DefaultEngine(), logger, metrics)

	if _, err := svc.Reload(ctx); err != nil {
		fmt.Fprintf(stderr, "load reference data: %v\n", err)
		return 1
	}

	result, err := svc.Calculate(ctx, form)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			fmt.Fprintf(stderr, "%s (%s)\n", verr.Message, verr.Field)
			return 2
		}
		fmt.Fprintf(stderr, "calculate: %v\n", err)
		return 1
	}

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			fmt.Fprintf(stderr, "encode result: %v\n", err)
			return 1
		}
		return 0
	}

	fmt.Fprintln(stdout, report.Summary(result))
	if result.UsedDefaultRainfall {
		fmt.Fprintf(stdout, "\nnote: no rainfall record for %s, used the default\n", form.PostalCode)
	}
	if result.HasProduct() && result.MatchPass > domain.MatchExact {
		fmt.Fprintf(stdout, "note: product found after relaxing the filters (pass %d)\n", result.MatchPass)
	}
	links := report.Links(result.Product)
	for _, kind := range slices.Sorted(maps.Keys(links)) {
		fmt.Fprintf(stdout, "%s: %s\n", kind, links[kind])
	}
	return 0
}

func optional[T any](isSet bool, v T) *T {
	if !isSet {
		return nil
	}
	return &v
}

