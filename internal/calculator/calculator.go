// Package calculator runs the sizing pipeline against the current reference
// snapshot and owns the service's readiness state.
package calculator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/cistern-configurator/internal/domain"
	"github.com/couchcryptid/cistern-configurator/internal/observability"
	"github.com/couchcryptid/cistern-configurator/internal/refdata"
)

// ErrNotReady is returned while no reference snapshot has been loaded.
var ErrNotReady = errors.New("reference data not loaded")

// SnapshotStore holds the active reference snapshot.
type SnapshotStore interface {
	Current() *domain.ReferenceData
	Swap(b refdata.Bundle) *domain.ReferenceData
}

// BundleLoader fetches a fresh pair of datasets.
type BundleLoader interface {
	Load(ctx context.Context) (refdata.Bundle, error)
}

// Service validates site forms and sizes cisterns.
type Service struct {
	store     SnapshotStore
	loader    BundleLoader
	engine    domain.Engine
	validator *domain.Validator
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New creates a Service. The engine carries the tunable sizing constants.
func New(store SnapshotStore, loader BundleLoader, engine domain.Engine, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		store:     store,
		loader:    loader,
		engine:    engine,
		validator: domain.NewValidator(),
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once a reference snapshot is available.
func (s *Service) CheckReadiness(_ context.Context) error {
	if s.store.Current() == nil {
		return ErrNotReady
	}
	return nil
}

// Calculate validates the form and runs the pipeline against the snapshot
// current at call time. A *domain.ValidationError is returned for bad input;
// a missing product or rainfall record is part of the result, not an error.
func (s *Service) Calculate(ctx context.Context, form domain.SiteForm) (domain.CalculationResult, error) {
	start := time.Now()

	ref := s.store.Current()
	if ref == nil {
		s.metrics.Calculations.WithLabelValues("not_ready").Inc()
		return domain.CalculationResult{}, ErrNotReady
	}

	site, err := s.validator.Validate(form)
	if err != nil {
		s.metrics.Calculations.WithLabelValues("invalid").Inc()
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			s.metrics.ValidationFailures.WithLabelValues(string(verr.Kind)).Inc()
		}
		return domain.CalculationResult{}, err
	}

	result := s.engine.Calculate(ref, site)
	result.ID = uuid.NewString()

	s.record(result)
	s.metrics.CalculationDuration.Observe(time.Since(start).Seconds())
	s.logger.DebugContext(ctx, "calculation complete",
		"calculation_id", result.ID,
		"postal_code", site.PostalCode,
		"recommended_l", result.RecommendedSize,
		"match_pass", result.MatchPass,
		"version", result.ReferenceVersion,
	)
	return result, nil
}

func (s *Service) record(result domain.CalculationResult) {
	if result.UsedDefaultRainfall {
		s.metrics.RainfallLookups.WithLabelValues("default").Inc()
	} else {
		s.metrics.RainfallLookups.WithLabelValues("matched").Inc()
	}

	if result.HasProduct() {
		s.metrics.Calculations.WithLabelValues("matched").Inc()
		s.metrics.ProductMatches.WithLabelValues(strconv.Itoa(result.MatchPass)).Inc()
		return
	}
	s.metrics.Calculations.WithLabelValues("no_product").Inc()
	s.metrics.ProductMatches.WithLabelValues("none").Inc()
}

// Rainfall looks up the annual rainfall for a postal code. The bool reports
// whether a record matched; otherwise the default rainfall is returned.
func (s *Service) Rainfall(postalCode string) (float64, bool, error) {
	ref := s.store.Current()
	if ref == nil {
		return 0, false, ErrNotReady
	}
	mm, matched := ref.Rainfall.Lookup(postalCode)
	return mm, matched, nil
}

// Products returns the catalog sorted by ascending capacity.
func (s *Service) Products() (domain.Catalog, error) {
	ref := s.store.Current()
	if ref == nil {
		return nil, ErrNotReady
	}
	return ref.Catalog.Sorted(), nil
}

// Snapshot returns the active reference snapshot.
func (s *Service) Snapshot() (*domain.ReferenceData, error) {
	ref := s.store.Current()
	if ref == nil {
		return nil, ErrNotReady
	}
	return ref, nil
}

// Reload fetches both datasets and swaps them in as one snapshot. On failure
// the previous snapshot stays active.
func (s *Service) Reload(ctx context.Context) (*domain.ReferenceData, error) {
	b, err := s.loader.Load(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "reference reload failed", "error", err)
		return nil, fmt.Errorf("reload reference data: %w", err)
	}

	ref := s.store.Swap(b)
	if ref == nil {
		return nil, errors.New("reload reference data: incomplete bundle")
	}
	s.metrics.ReferenceLoaded.Set(1)
	s.logger.InfoContext(ctx, "reference snapshot active",
		"version", ref.Version,
		"rainfall_records", len(ref.Rainfall.Records),
		"products", len(ref.Catalog),
	)
	return ref, nil
}
