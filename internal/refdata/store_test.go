package refdata

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/cistern-configurator/internal/domain"
)

func testBundle() Bundle {
	return Bundle{
		Rainfall: domain.RainfallTable{
			Records: []domain.RainfallRecord{
				{Range: domain.PostalRange{Start: "10000", End: "19999"}, AnnualRainfall: 600},
			},
			Default: 700,
		},
		RainfallDigest: "aaaa1111",
		Catalog: domain.Catalog{
			{Name: "Garden Tank 1000", Capacity: 1000, Type: domain.ProductGarden, Accessibility: "walkable", Comfort: "basic"},
		},
		CatalogDigest: "bbbb2222",
	}
}

func TestStore_EmptyUntilSwap(t *testing.T) {
	s := NewStore()
	assert.Nil(t, s.Current())

	ref := s.Swap(testBundle())
	require.NotNil(t, ref)
	assert.Same(t, ref, s.Current())
	assert.Equal(t, "aaaa1111-bbbb2222", ref.Version)
	assert.Len(t, ref.Catalog, 1)
}

func TestStore_PartialReplaceWaitsForBothDatasets(t *testing.T) {
	s := NewStore()
	b := testBundle()

	assert.Nil(t, s.ReplaceCatalog(b.Catalog, b.CatalogDigest))
	assert.Nil(t, s.Current())

	ref := s.ReplaceRainfall(b.Rainfall, b.RainfallDigest)
	require.NotNil(t, ref)
	assert.Equal(t, "aaaa1111-bbbb2222", ref.Version)
}

func TestStore_ReplaceKeepsOtherDataset(t *testing.T) {
	s := NewStore()
	first := s.Swap(testBundle())

	next := domain.RainfallTable{Default: 800}
	ref := s.ReplaceRainfall(next, "cccc3333")
	require.NotNil(t, ref)

	assert.Equal(t, "cccc3333-bbbb2222", ref.Version)
	assert.Equal(t, 800.0, ref.Rainfall.Default)
	assert.Equal(t, first.Catalog, ref.Catalog)
	assert.Equal(t, 700.0, first.Rainfall.Default, "earlier snapshot must stay unchanged")
}

func TestStore_ConcurrentReadersSeeCompleteSnapshots(t *testing.T) {
	s := NewStore()
	s.Swap(testBundle())

	var wg sync.WaitGroup
	for i := range 4 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := range 100 {
				if (i+j)%2 == 0 {
					s.ReplaceRainfall(domain.RainfallTable{Default: float64(j + 1)}, "r")
				} else {
					s.ReplaceCatalog(domain.Catalog{}, "c")
				}
			}
		}(i)
	}
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				ref := s.Current()
				assert.NotNil(t, ref)
				assert.NotEmpty(t, ref.Version)
			}
		}()
	}
	wg.Wait()
}
