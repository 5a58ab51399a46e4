package refdata

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/cistern-configurator/internal/observability"
)

// flakySource fails the first failures fetches of every name.
type flakySource struct {
	inner    Source
	failures int

	mu    sync.Mutex
	calls map[string]int
}

func (s *flakySource) Fetch(ctx context.Context, name string) ([]byte, error) {
	s.mu.Lock()
	if s.calls == nil {
		s.calls = make(map[string]int)
	}
	s.calls[name]++
	n := s.calls[name]
	s.mu.Unlock()

	if n <= s.failures {
		return nil, errors.New("origin unavailable")
	}
	return s.inner.Fetch(ctx, name)
}

func (s *flakySource) Kind() string { return "file" }

func (s *flakySource) callCount(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[name]
}

func newTestLoader(src Source, rainfall, catalog string, retries int) (*Loader, *observability.Metrics) {
	metrics := observability.NewMetricsForTesting()
	l := NewLoader(src, LoaderConfig{
		RainfallName:  rainfall,
		CatalogName:   catalog,
		MaxRetries:    retries,
		RetryInterval: time.Millisecond,
	}, discardLogger(), metrics)
	return l, metrics
}

func TestLoader_Load(t *testing.T) {
	l, metrics := newTestLoader(FileSource{Dir: "testdata"}, "plzRainData.json", "cisternProducts.yaml", 1)

	b, err := l.Load(context.Background())
	require.NoError(t, err)

	assert.Len(t, b.Rainfall.Records, 3)
	assert.Len(t, b.Catalog, 2)
	assert.Len(t, b.RainfallDigest, 8)
	assert.Len(t, b.CatalogDigest, 8)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ReferenceLoads.WithLabelValues("file", "success")))
}

func TestLoader_RetriesFetchFailures(t *testing.T) {
	src := &flakySource{inner: FileSource{Dir: "testdata"}, failures: 2}
	l, _ := newTestLoader(src, "plzRainData.json", "cisternProducts.json", 3)

	_, err := l.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, src.callCount("plzRainData.json"))
	assert.Equal(t, 3, src.callCount("cisternProducts.json"))
}

func TestLoader_GivesUpAfterMaxRetries(t *testing.T) {
	src := &flakySource{inner: FileSource{Dir: "testdata"}, failures: 10}
	l, metrics := newTestLoader(src, "plzRainData.json", "cisternProducts.json", 2)

	_, err := l.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "origin unavailable")
	assert.LessOrEqual(t, src.callCount("plzRainData.json"), 2)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ReferenceLoads.WithLabelValues("file", "error")))
}

func TestLoader_DecodeErrorIsNotRetried(t *testing.T) {
	src := &flakySource{inner: FileSource{Dir: "testdata"}}
	// The catalog file does not decode as a rainfall table.
	l, _ := newTestLoader(src, "cisternProducts.json", "cisternProducts.json", 5)

	_, err := l.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode rainfall table")
}

func TestLoader_UnsupportedFormat(t *testing.T) {
	src := &flakySource{inner: FileSource{Dir: "testdata"}}
	l, _ := newTestLoader(src, "plzRainData.csv", "cisternProducts.json", 5)

	_, err := l.Load(context.Background())
	require.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Equal(t, 0, src.callCount("plzRainData.csv"))
}

func TestLoader_ContextCancelled(t *testing.T) {
	src := &flakySource{inner: FileSource{Dir: "testdata"}, failures: 100}
	l, _ := newTestLoader(src, "plzRainData.json", "cisternProducts.json", 100)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := l.Load(ctx)
	require.Error(t, err)
}
