package kafka

import (
	"context"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/cistern-configurator/internal/config"
	"github.com/couchcryptid/cistern-configurator/internal/domain"
	"github.com/couchcryptid/cistern-configurator/internal/refdata"
)

// Publisher produces dataset snapshots to the snapshot topic.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured snapshot topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSnapshotTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// Publish writes one dataset file as a snapshot keyed by dataset name.
func (p *Publisher) Publish(ctx context.Context, dataset string, data []byte, format refdata.Format) error {
	msg, err := newSnapshotMessage(dataset, data, format, domain.Now())
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return err
	}
	p.logger.Info("snapshot published", "dataset", dataset, "bytes", len(data), "digest", refdata.Digest(data))
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
