package refdata

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/couchcryptid/cistern-configurator/internal/domain"
)

// Finding is one integrity problem in a dataset. Index is the record or
// product position, or -1 for dataset-level problems.
type Finding struct {
	Dataset string
	Index   int
	Message string
}

func (f Finding) String() string {
	if f.Index < 0 {
		return fmt.Sprintf("%s: %s", f.Dataset, f.Message)
	}
	return fmt.Sprintf("%s[%d]: %s", f.Dataset, f.Index, f.Message)
}

const (
	datasetRainfall = "rainfall"
	datasetCatalog  = "catalog"
)

// AuditRainfall checks bounds, ordering, overlaps and values of a rainfall table.
func AuditRainfall(table domain.RainfallTable) []Finding {
	var findings []Finding
	add := func(i int, format string, args ...any) {
		findings = append(findings, Finding{Dataset: datasetRainfall, Index: i, Message: fmt.Sprintf(format, args...)})
	}

	if table.Default <= 0 {
		add(-1, "defaultRainfall must be positive, got %g", table.Default)
	}
	if len(table.Records) == 0 {
		add(-1, "no records; every lookup falls back to the default")
	}

	type span struct {
		index      int
		start, end int
	}
	var spans []span

	for i, r := range table.Records {
		if !isPostalCode(r.Range.Start) || !isPostalCode(r.Range.End) {
			add(i, "range bounds must be 5-digit codes, got %q-%q", r.Range.Start, r.Range.End)
			continue
		}
		start, end, _ := r.Range.Bounds()
		if start > end {
			add(i, "range start %s is after end %s", r.Range.Start, r.Range.End)
			continue
		}
		if r.AnnualRainfall <= 0 {
			add(i, "annualRainfall must be positive, got %g", r.AnnualRainfall)
		}
		spans = append(spans, span{index: i, start: start, end: end})
	}

	slices.SortStableFunc(spans, func(a, b span) int { return cmp.Compare(a.start, b.start) })
	for i := 1; i < len(spans); i++ {
		widest := spans[0]
		for _, s := range spans[:i] {
			if s.end > widest.end {
				widest = s
			}
		}
		if cur := spans[i]; cur.start <= widest.end {
			add(cur.index, "range overlaps record %d; the earlier record in file order wins", widest.index)
		}
	}

	return findings
}

// AuditCatalog checks product fields and link targets.
func AuditCatalog(catalog domain.Catalog) []Finding {
	var findings []Finding
	add := func(i int, format string, args ...any) {
		findings = append(findings, Finding{Dataset: datasetCatalog, Index: i, Message: fmt.Sprintf(format, args...)})
	}

	if len(catalog) == 0 {
		add(-1, "catalog is empty; no product can ever match")
	}

	seen := make(map[string]int, len(catalog))
	for i, p := range catalog {
		if strings.TrimSpace(p.Name) == "" {
			add(i, "name is empty")
		} else if first, dup := seen[p.Name]; dup {
			add(i, "duplicate name %q (first at %d)", p.Name, first)
		} else {
			seen[p.Name] = i
		}
		if p.Capacity <= 0 {
			add(i, "capacity must be positive, got %g", p.Capacity)
		}
		if p.Type != domain.ProductHouse && p.Type != domain.ProductGarden {
			add(i, "type must be %q or %q, got %q", domain.ProductHouse, domain.ProductGarden, p.Type)
		}
		if p.Accessibility == "" {
			add(i, "accessibility is empty")
		}
		if p.Comfort == "" {
			add(i, "category is empty")
		}
		for field, link := range map[string]string{"manualUrl": p.ManualURL, "productUrl": p.ProductURL, "imageUrl": p.ImageURL} {
			if link != "" && !IsLink(link) {
				add(i, "%s is not an http(s) link: %q", field, link)
			}
		}
	}

	slices.SortStableFunc(findings, func(a, b Finding) int {
		if c := cmp.Compare(a.Index, b.Index); c != 0 {
			return c
		}
		return strings.Compare(a.Message, b.Message)
	})
	return findings
}

// IsLink reports whether s is an absolute http(s) URL worth rendering as a link.
func IsLink(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func isPostalCode(s string) bool {
	if len(s) != 5 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
