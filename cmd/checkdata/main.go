// Command checkdata audits the two reference datasets: rainfall ranges,
// product fields, and whether every usage profile can be served by the
// catalog at its minimum size.
//
// Usage:
//
//	go run ./cmd/checkdata -source ./data
//	go run ./cmd/checkdata -source https://static.example.com/cistern -catalog cisternProducts.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/couchcryptid/cistern-configurator/internal/config"
	"github.com/couchcryptid/cistern-configurator/internal/domain"
	"github.com/couchcryptid/cistern-configurator/internal/observability"
	"github.com/couchcryptid/cistern-configurator/internal/refdata"
)

// phase tracks pass/fail for an audit phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	source := flag.String("source", "./data", "dataset directory or http(s) base URL")
	rainfall := flag.String("rainfall", "plzRainData.json", "rainfall dataset name")
	catalog := flag.String("catalog", "cisternProducts.json", "product catalog dataset name")
	timeout := flag.Duration("timeout", 10*time.Second, "overall load timeout")
	flag.Parse()

	os.Exit(run(*source, *rainfall, *catalog, *timeout))
}

func run(source, rainfallName, catalogName string, timeout time.Duration) int {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	fmt.Println("=== Cistern Reference Data Audit ===")
	fmt.Println()

	logger := observability.NewLogger(&config.Config{LogLevel: "warn", LogFormat: "text"})
	loader := refdata.NewLoader(refdata.NewSource(source, timeout, logger), refdata.LoaderConfig{
		RainfallName: rainfallName,
		CatalogName:  catalogName,
		MaxRetries:   1,
	}, logger, observability.NewMetricsForTesting())

	b, err := loader.Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	phases := []*phase{
		findingsPhase("Rainfall table integrity", refdata.AuditRainfall(b.Rainfall)),
		findingsPhase("Product catalog integrity", refdata.AuditCatalog(b.Catalog)),
		coveragePhase(b.Catalog),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Datasets: %d rainfall records (default %g mm, digest %s), %d products (digest %s)\n",
		len(b.Rainfall.Records), b.Rainfall.Default, b.RainfallDigest, len(b.Catalog), b.CatalogDigest)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll checks passed.")
		return 0
	}
	fmt.Println("\nAudit FAILED.")
	return 1
}

func findingsPhase(name string, findings []refdata.Finding) *phase {
	p := &phase{name: name}
	for _, f := range findings {
		p.errorf("%s", f)
	}
	return p
}

// coveragePhase checks that each usage, for every accessibility and comfort
// value present in the catalog, finds some product at its floor size.
func coveragePhase(catalog domain.Catalog) *phase {
	p := &phase{name: "Floor-size coverage"}
	policy := domain.DefaultSizingPolicy()

	var access, comfort []string
	for _, prod := range catalog {
		if !slices.Contains(access, prod.Accessibility) {
			access = append(access, prod.Accessibility)
		}
		if !slices.Contains(comfort, prod.Comfort) {
			comfort = append(comfort, prod.Comfort)
		}
	}

	for _, house := range []bool{false, true} {
		floor := policy.Floor(house)
		for _, a := range access {
			for _, c := range comfort {
				site := domain.SiteInput{ConnectToilet: house, Accessibility: a, ComfortLevel: c}
				prod, pass, ok := catalog.Match(floor, site)
				switch {
				case !ok:
					p.errorf("%s usage, %s/%s: no product for %g L", site.Usage(), a, c, floor)
				case pass == domain.MatchIgnoreAccessibility:
					fmt.Printf("  note: %s usage, %s/%s falls back to %q (pass %d)\n", site.Usage(), a, c, prod.Name, pass)
				}
			}
		}
	}
	return p
}
