package refdata

import (
	"sync"
	"sync/atomic"

	"github.com/couchcryptid/cistern-configurator/internal/domain"
)

// Store holds the current reference snapshot. Readers get an immutable
// snapshot without locking; writers build a complete new snapshot and swap it
// in, so a calculation never sees a half-updated pair.
type Store struct {
	current atomic.Pointer[domain.ReferenceData]

	mu             sync.Mutex
	rainfall       domain.RainfallTable
	rainfallDigest string
	catalog        domain.Catalog
	catalogDigest  string
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Current returns the active snapshot, or nil before the first load.
func (s *Store) Current() *domain.ReferenceData {
	return s.current.Load()
}

// Swap replaces both datasets at once.
func (s *Store) Swap(b Bundle) *domain.ReferenceData {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rainfall, s.rainfallDigest = b.Rainfall, b.RainfallDigest
	s.catalog, s.catalogDigest = b.Catalog, b.CatalogDigest
	return s.publishLocked()
}

// ReplaceRainfall swaps in a new rainfall table, keeping the current catalog.
// It returns nil while the catalog has never been loaded.
func (s *Store) ReplaceRainfall(table domain.RainfallTable, digest string) *domain.ReferenceData {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rainfall, s.rainfallDigest = table, digest
	return s.publishLocked()
}

// ReplaceCatalog swaps in a new catalog, keeping the current rainfall table.
// It returns nil while the rainfall table has never been loaded.
func (s *Store) ReplaceCatalog(catalog domain.Catalog, digest string) *domain.ReferenceData {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.catalog, s.catalogDigest = catalog, digest
	return s.publishLocked()
}

func (s *Store) publishLocked() *domain.ReferenceData {
	if s.rainfallDigest == "" || s.catalogDigest == "" {
		return nil
	}
	ref := domain.NewReferenceData(s.rainfall, s.catalog, s.rainfallDigest+"-"+s.catalogDigest)
	s.current.Store(ref)
	return ref
}
