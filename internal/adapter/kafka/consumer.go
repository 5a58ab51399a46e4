package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	sharedretry "github.com/couchcryptid/storm-data-shared/retry"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/cistern-configurator/internal/config"
	"github.com/couchcryptid/cistern-configurator/internal/domain"
	"github.com/couchcryptid/cistern-configurator/internal/observability"
	"github.com/couchcryptid/cistern-configurator/internal/refdata"
)

// SnapshotApplier swaps a single dataset into the active reference snapshot.
type SnapshotApplier interface {
	ReplaceRainfall(table domain.RainfallTable, digest string) *domain.ReferenceData
	ReplaceCatalog(catalog domain.Catalog, digest string) *domain.ReferenceData
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Consumer applies dataset snapshots from the snapshot topic.
type Consumer struct {
	reader  messageReader
	store   SnapshotApplier
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewConsumer creates a consumer-group reader for the snapshot topic.
func NewConsumer(cfg *config.Config, store SnapshotApplier, logger *slog.Logger, metrics *observability.Metrics) *Consumer {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  cfg.KafkaBrokers,
		Topic:    cfg.KafkaSnapshotTopic,
		GroupID:  cfg.KafkaGroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  time.Second,
	})
	return newConsumer(r, store, logger, metrics)
}

func newConsumer(r messageReader, store SnapshotApplier, logger *slog.Logger, metrics *observability.Metrics) *Consumer {
	return &Consumer{reader: r, store: store, logger: logger, metrics: metrics}
}

// Run applies snapshots until the context is cancelled. Malformed snapshots
// are logged and committed so they are not redelivered; the active snapshot
// stays in place.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("snapshot consumer started")

	backoff := 200 * time.Millisecond
	const maxBackoff = 5 * time.Second

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("snapshot consumer stopping", "reason", ctx.Err())
				return nil
			}
			c.logger.Error("fetch snapshot failed", "error", err)
			if !sharedretry.SleepWithContext(ctx, backoff) {
				return nil
			}
			backoff = sharedretry.NextBackoff(backoff, maxBackoff)
			continue
		}
		backoff = 200 * time.Millisecond

		if err := c.apply(msg); err != nil {
			c.metrics.ReferenceLoads.WithLabelValues("kafka", "error").Inc()
			c.logger.Warn("snapshot rejected, keeping current reference data",
				"error", err,
				"dataset", string(msg.Key),
				"partition", msg.Partition,
				"offset", msg.Offset,
			)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.logger.Warn("commit snapshot offset failed", "error", err, "offset", msg.Offset)
		}
	}
}

// apply decodes one snapshot and swaps it into the store.
func (c *Consumer) apply(msg kafkago.Message) error {
	snap, err := parseSnapshot(msg)
	if err != nil {
		return err
	}
	digest := refdata.Digest(snap.Data)

	var (
		ref      *domain.ReferenceData
		findings []refdata.Finding
	)
	switch snap.Dataset {
	case KeyRainfall:
		table, err := refdata.DecodeRainfall(snap.Data, snap.Format)
		if err != nil {
			return err
		}
		findings = refdata.AuditRainfall(table)
		ref = c.store.ReplaceRainfall(table, digest)
	case KeyCatalog:
		catalog, err := refdata.DecodeCatalog(snap.Data, snap.Format)
		if err != nil {
			return err
		}
		findings = refdata.AuditCatalog(catalog)
		ref = c.store.ReplaceCatalog(catalog, digest)
	default:
		return fmt.Errorf("%w: %q", errUnknownDataset, snap.Dataset)
	}

	for _, f := range findings {
		c.logger.Warn("snapshot audit finding", "dataset", snap.Dataset, "finding", f.String())
	}

	c.metrics.SnapshotsApplied.WithLabelValues(snap.Dataset).Inc()
	c.metrics.ReferenceLoads.WithLabelValues("kafka", "success").Inc()
	if ref == nil {
		c.logger.Info("snapshot staged, waiting for the other dataset", "dataset", snap.Dataset, "digest", digest)
		return nil
	}
	c.metrics.ReferenceLoaded.Set(1)
	c.logger.Info("snapshot applied", "dataset", snap.Dataset, "version", ref.Version)
	return nil
}

// Close closes the underlying reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
