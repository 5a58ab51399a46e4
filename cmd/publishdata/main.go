// Command publishdata publishes the reference dataset files to the snapshot
// topic so running configurators pick them up without a restart. Files are
// audited first; findings abort the publish unless -force is set.
//
// Usage:
//
//	KAFKA_BROKERS=localhost:9092 go run ./cmd/publishdata -rainfall data/plzRainData.json -catalog data/cisternProducts.json
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	kafkaadapter "github.com/couchcryptid/cistern-configurator/internal/adapter/kafka"
	"github.com/couchcryptid/cistern-configurator/internal/config"
	"github.com/couchcryptid/cistern-configurator/internal/observability"
	"github.com/couchcryptid/cistern-configurator/internal/refdata"
)

// dataset is one file to publish.
type dataset struct {
	key  string
	path string
}

func main() {
	rainfall := flag.String("rainfall", "", "path to the rainfall dataset (JSON or YAML)")
	catalog := flag.String("catalog", "", "path to the product catalog (JSON or YAML)")
	force := flag.Bool("force", false, "publish even if the audit reports findings")
	flag.Parse()

	if *rainfall == "" && *catalog == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := observability.NewLogger(cfg)

	if !cfg.SnapshotFeedEnabled() {
		logger.Error("KAFKA_BROKERS is not set")
		os.Exit(1)
	}

	var sets []dataset
	if *rainfall != "" {
		sets = append(sets, dataset{key: kafkaadapter.KeyRainfall, path: *rainfall})
	}
	if *catalog != "" {
		sets = append(sets, dataset{key: kafkaadapter.KeyCatalog, path: *catalog})
	}

	publisher := kafkaadapter.NewPublisher(cfg, logger)
	defer publisher.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, ds := range sets {
		if err := publish(ctx, publisher, ds, *force, logger); err != nil {
			logger.Error("publish failed", "dataset", ds.key, "path", ds.path, "error", err)
			os.Exit(1)
		}
	}
}

func publish(ctx context.Context, p *kafkaadapter.Publisher, ds dataset, force bool, logger *slog.Logger) error {
	format, err := refdata.FormatFor(ds.path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(ds.path)
	if err != nil {
		return fmt.Errorf("read dataset: %w", err)
	}

	var findings []refdata.Finding
	switch ds.key {
	case kafkaadapter.KeyRainfall:
		table, err := refdata.DecodeRainfall(data, format)
		if err != nil {
			return err
		}
		findings = refdata.AuditRainfall(table)
	case kafkaadapter.KeyCatalog:
		catalog, err := refdata.DecodeCatalog(data, format)
		if err != nil {
			return err
		}
		findings = refdata.AuditCatalog(catalog)
	}

	for _, f := range findings {
		logger.Warn("audit finding", "dataset", ds.key, "finding", f.String())
	}
	if len(findings) > 0 && !force {
		return fmt.Errorf("%d audit findings; rerun with -force to publish anyway", len(findings))
	}

	return p.Publish(ctx, ds.key, data, format)
}
