package kafka

import (
	"errors"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/cistern-configurator/internal/refdata"
)

// Dataset keys used on the snapshot topic.
const (
	KeyRainfall = "rainfall"
	KeyCatalog  = "catalog"
)

const (
	headerContentType = "content_type"
	headerPublishedAt = "published_at"

	contentTypeJSON = "application/json"
	contentTypeYAML = "application/yaml"
)

var errUnknownDataset = errors.New("unknown snapshot dataset")

// snapshot is one decoded-enough message from the snapshot topic.
type snapshot struct {
	Dataset string
	Format  refdata.Format
	Data    []byte
}

// newSnapshotMessage builds the Kafka message for a dataset file.
func newSnapshotMessage(dataset string, data []byte, format refdata.Format, publishedAt time.Time) (kafkago.Message, error) {
	if dataset != KeyRainfall && dataset != KeyCatalog {
		return kafkago.Message{}, fmt.Errorf("%w: %q", errUnknownDataset, dataset)
	}
	ct, err := contentTypeFor(format)
	if err != nil {
		return kafkago.Message{}, err
	}
	return kafkago.Message{
		Key:   []byte(dataset),
		Value: data,
		Headers: []kafkago.Header{
			{Key: headerContentType, Value: []byte(ct)},
			{Key: headerPublishedAt, Value: []byte(publishedAt.Format(time.RFC3339))},
		},
	}, nil
}

// parseSnapshot reads the dataset key and format from a message. A missing
// content_type header means JSON.
func parseSnapshot(msg kafkago.Message) (snapshot, error) {
	dataset := string(msg.Key)
	if dataset != KeyRainfall && dataset != KeyCatalog {
		return snapshot{}, fmt.Errorf("%w: %q", errUnknownDataset, dataset)
	}

	format := refdata.FormatJSON
	for _, h := range msg.Headers {
		if h.Key != headerContentType {
			continue
		}
		switch string(h.Value) {
		case contentTypeJSON:
			format = refdata.FormatJSON
		case contentTypeYAML:
			format = refdata.FormatYAML
		default:
			return snapshot{}, fmt.Errorf("%w: content type %q", refdata.ErrUnsupportedFormat, h.Value)
		}
	}
	return snapshot{Dataset: dataset, Format: format, Data: msg.Value}, nil
}

func contentTypeFor(format refdata.Format) (string, error) {
	switch format {
	case refdata.FormatJSON:
		return contentTypeJSON, nil
	case refdata.FormatYAML:
		return contentTypeYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", refdata.ErrUnsupportedFormat, format)
	}
}
