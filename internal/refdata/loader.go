package refdata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/cistern-configurator/internal/domain"
	"github.com/couchcryptid/cistern-configurator/internal/observability"
)

// Bundle is a freshly loaded pair of datasets with their content digests.
type Bundle struct {
	Rainfall       domain.RainfallTable
	RainfallDigest string
	Catalog        domain.Catalog
	CatalogDigest  string
}

// Loader fetches and decodes both datasets from a Source.
type Loader struct {
	source        Source
	rainfallName  string
	catalogName   string
	maxRetries    int
	retryInterval time.Duration
	logger        *slog.Logger
	metrics       *observability.Metrics
}

// LoaderConfig names the datasets and the retry budget.
type LoaderConfig struct {
	RainfallName  string
	CatalogName   string
	MaxRetries    int
	RetryInterval time.Duration // initial backoff; defaults to 200ms
}

// NewLoader creates a Loader for the given source.
func NewLoader(source Source, cfg LoaderConfig, logger *slog.Logger, metrics *observability.Metrics) *Loader {
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 200 * time.Millisecond
	}
	return &Loader{
		source:        source,
		rainfallName:  cfg.RainfallName,
		catalogName:   cfg.CatalogName,
		maxRetries:    max(cfg.MaxRetries, 1),
		retryInterval: cfg.RetryInterval,
		logger:        logger,
		metrics:       metrics,
	}
}

// Load fetches both datasets concurrently. Fetch failures are retried with
// exponential backoff; decode failures are not.
func (l *Loader) Load(ctx context.Context) (Bundle, error) {
	var b Bundle

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		format, err := FormatFor(l.rainfallName)
		if err != nil {
			return err
		}
		data, err := l.fetch(gctx, l.rainfallName)
		if err != nil {
			return err
		}
		table, err := DecodeRainfall(data, format)
		if err != nil {
			return fmt.Errorf("%s: %w", l.rainfallName, err)
		}
		b.Rainfall, b.RainfallDigest = table, Digest(data)
		return nil
	})
	g.Go(func() error {
		format, err := FormatFor(l.catalogName)
		if err != nil {
			return err
		}
		data, err := l.fetch(gctx, l.catalogName)
		if err != nil {
			return err
		}
		catalog, err := DecodeCatalog(data, format)
		if err != nil {
			return fmt.Errorf("%s: %w", l.catalogName, err)
		}
		b.Catalog, b.CatalogDigest = catalog, Digest(data)
		return nil
	})

	if err := g.Wait(); err != nil {
		l.metrics.ReferenceLoads.WithLabelValues(l.source.Kind(), "error").Inc()
		return Bundle{}, fmt.Errorf("load reference data: %w", err)
	}

	l.metrics.ReferenceLoads.WithLabelValues(l.source.Kind(), "success").Inc()
	l.logger.Info("reference data loaded",
		"source", l.source.Kind(),
		"rainfall_records", len(b.Rainfall.Records),
		"products", len(b.Catalog),
		"rainfall_digest", b.RainfallDigest,
		"catalog_digest", b.CatalogDigest,
	)
	return b, nil
}

func (l *Loader) fetch(ctx context.Context, name string) ([]byte, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = l.retryInterval
	bo.MaxInterval = 5 * time.Second
	bo.MaxElapsedTime = 0

	var data []byte
	attempt := 0
	op := func() error {
		attempt++
		var err error
		data, err = l.source.Fetch(ctx, name)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			l.logger.Warn("dataset fetch failed", "dataset", name, "attempt", attempt, "error", err)
			return err
		}
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(l.maxRetries-1)), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			return nil, perm.Err
		}
		return nil, err
	}
	return data, nil
}
