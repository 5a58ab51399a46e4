package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/cistern-configurator/internal/observability"
	"github.com/couchcryptid/cistern-configurator/internal/refdata"
)

const (
	rainfallJSON = `{"rainData":[{"plzRange":{"start":"01000","end":"01999"},"annualRainfall":600}],"defaultRainfall":700}`
	catalogJSON  = `[{"name":"Garden Tank 1000","capacity":1000,"type":"garden","accessibility":"walkable","category":"basic"}]`
	catalogYAML  = "- name: House Tank 3000\n  capacity: 3000\n  type: house\n  accessibility: walkable\n  category: basic\n"
)

// fakeReader serves queued messages, then blocks until the context is done.
type fakeReader struct {
	mu        sync.Mutex
	msgs      []kafkago.Message
	errs      []error
	committed []kafkago.Message
}

func (f *fakeReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	f.mu.Lock()
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		f.mu.Unlock()
		return kafkago.Message{}, err
	}
	if len(f.msgs) > 0 {
		msg := f.msgs[0]
		f.msgs = f.msgs[1:]
		f.mu.Unlock()
		return msg, nil
	}
	f.mu.Unlock()
	<-ctx.Done()
	return kafkago.Message{}, ctx.Err()
}

func (f *fakeReader) CommitMessages(_ context.Context, msgs ...kafkago.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.committed = append(f.committed, msgs...)
	return nil
}

func (f *fakeReader) Close() error { return nil }

func (f *fakeReader) committedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.committed)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func message(t *testing.T, dataset, data string, format refdata.Format) kafkago.Message {
	t.Helper()
	msg, err := newSnapshotMessage(dataset, []byte(data), format, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return msg
}

// runUntilCommitted runs the consumer until n messages are committed.
func runUntilCommitted(t *testing.T, c *Consumer, r *fakeReader, n int) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	require.Eventually(t, func() bool { return r.committedCount() >= n }, 4*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}

func TestNewSnapshotMessage(t *testing.T) {
	msg := message(t, KeyCatalog, catalogYAML, refdata.FormatYAML)

	assert.Equal(t, []byte("catalog"), msg.Key)
	assert.Equal(t, []byte(catalogYAML), msg.Value)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, headerContentType, msg.Headers[0].Key)
	assert.Equal(t, []byte(contentTypeYAML), msg.Headers[0].Value)
	assert.Equal(t, headerPublishedAt, msg.Headers[1].Key)
	assert.Equal(t, []byte("2026-04-01T00:00:00Z"), msg.Headers[1].Value)
}

func TestNewSnapshotMessage_Rejects(t *testing.T) {
	_, err := newSnapshotMessage("weather", nil, refdata.FormatJSON, time.Now())
	require.ErrorIs(t, err, errUnknownDataset)

	_, err = newSnapshotMessage(KeyRainfall, nil, "toml", time.Now())
	require.ErrorIs(t, err, refdata.ErrUnsupportedFormat)
}

func TestParseSnapshot(t *testing.T) {
	snap, err := parseSnapshot(kafkago.Message{Key: []byte("rainfall"), Value: []byte(rainfallJSON)})
	require.NoError(t, err)
	assert.Equal(t, KeyRainfall, snap.Dataset)
	assert.Equal(t, refdata.FormatJSON, snap.Format, "missing header means JSON")

	snap, err = parseSnapshot(message(t, KeyCatalog, catalogYAML, refdata.FormatYAML))
	require.NoError(t, err)
	assert.Equal(t, refdata.FormatYAML, snap.Format)

	_, err = parseSnapshot(kafkago.Message{
		Key:     []byte("catalog"),
		Headers: []kafkago.Header{{Key: headerContentType, Value: []byte("text/csv")}},
	})
	require.ErrorIs(t, err, refdata.ErrUnsupportedFormat)

	_, err = parseSnapshot(kafkago.Message{Key: []byte("other")})
	require.ErrorIs(t, err, errUnknownDataset)
}

func TestConsumer_AppliesBothDatasets(t *testing.T) {
	store := refdata.NewStore()
	metrics := observability.NewMetricsForTesting()
	r := &fakeReader{msgs: []kafkago.Message{
		message(t, KeyRainfall, rainfallJSON, refdata.FormatJSON),
		message(t, KeyCatalog, catalogJSON, refdata.FormatJSON),
	}}
	c := newConsumer(r, store, discardLogger(), metrics)

	runUntilCommitted(t, c, r, 2)

	ref := store.Current()
	require.NotNil(t, ref)
	assert.Equal(t, refdata.Digest([]byte(rainfallJSON))+"-"+refdata.Digest([]byte(catalogJSON)), ref.Version)
	assert.Len(t, ref.Catalog, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SnapshotsApplied.WithLabelValues("rainfall")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SnapshotsApplied.WithLabelValues("catalog")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ReferenceLoaded))
}

func TestConsumer_MalformedSnapshotKeepsCurrent(t *testing.T) {
	store := refdata.NewStore()
	store.Swap(refdata.Bundle{RainfallDigest: "r0", CatalogDigest: "c0"})
	before := store.Current()

	metrics := observability.NewMetricsForTesting()
	r := &fakeReader{msgs: []kafkago.Message{
		{Key: []byte("catalog"), Value: []byte("not-json{{{")},
		{Key: []byte("unknown"), Value: []byte("{}")},
		message(t, KeyCatalog, catalogYAML, refdata.FormatYAML),
	}}
	c := newConsumer(r, store, discardLogger(), metrics)

	runUntilCommitted(t, c, r, 3)

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.ReferenceLoads.WithLabelValues("kafka", "error")))
	after := store.Current()
	assert.NotSame(t, before, after)
	assert.Equal(t, "r0-"+refdata.Digest([]byte(catalogYAML)), after.Version)
	assert.Equal(t, "House Tank 3000", after.Catalog[0].Name)
}

func TestConsumer_RetriesFetchErrors(t *testing.T) {
	store := refdata.NewStore()
	r := &fakeReader{
		errs: []error{errors.New("broker unavailable")},
		msgs: []kafkago.Message{message(t, KeyRainfall, rainfallJSON, refdata.FormatJSON)},
	}
	c := newConsumer(r, store, discardLogger(), observability.NewMetricsForTesting())

	runUntilCommitted(t, c, r, 1)

	assert.Nil(t, store.Current(), "catalog never arrived")
}
