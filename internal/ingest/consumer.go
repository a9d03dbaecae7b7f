// Package ingest reads document events from Kafka and feeds them to
// the index writer. Events carry already-extracted text blocks;
// fetching and parsing documents happens upstream of the topic.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/searchkit/termindex/internal/catalog"
	"github.com/searchkit/termindex/internal/index"
	"github.com/searchkit/termindex/pkg/config"
	"github.com/searchkit/termindex/pkg/kafka"
	"github.com/searchkit/termindex/pkg/metrics"
	"github.com/searchkit/termindex/pkg/resilience"
)

// Event is one document to index: its identifier and the text blocks
// extracted from it.
type Event struct {
	DocumentID string   `json:"document_id"`
	Blocks     []string `json:"blocks"`
}

// Consumer wraps a Kafka consumer to drive the index write path.
type Consumer struct {
	consumer *kafka.Consumer
	logger   *slog.Logger
}

// New creates a Consumer backed by the given Kafka consumer.
func New(kafkaConsumer *kafka.Consumer) *Consumer {
	return &Consumer{
		consumer: kafkaConsumer,
		logger:   slog.Default().With("component", "ingest-consumer"),
	}
}

// Start begins consuming Kafka messages. It blocks until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("ingest consumer starting")
	return c.consumer.Start(ctx)
}

// HandleMessage returns a Kafka MessageHandler that indexes every
// ingest event through writer. Each IndexPage call is retried with
// backoff per cfg; the index itself does not retry. Malformed events
// are logged and skipped so a bad message cannot wedge the partition.
// If cat is non-nil, the document's status is recorded after each
// attempt; m may be nil to disable instrumentation.
func HandleMessage(writer *index.Writer, cat *catalog.Catalog, cfg config.IngestConfig, m *metrics.Metrics) kafka.MessageHandler {
	logger := slog.Default().With("component", "ingest-consumer")
	retryCfg := resilience.RetryConfig{
		MaxAttempts:  cfg.MaxAttempts,
		InitialDelay: cfg.InitialDelay,
		MaxDelay:     cfg.MaxDelay,
	}
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[Event](value)
		if err != nil {
			logger.Error("failed to decode ingest event",
				"error", err,
				"key", string(key),
			)
			if m != nil {
				m.IngestEventsTotal.WithLabelValues("malformed").Inc()
			}
			return nil
		}
		if event.DocumentID == "" {
			logger.Error("ingest event missing document_id", "key", string(key))
			if m != nil {
				m.IngestEventsTotal.WithLabelValues("malformed").Inc()
			}
			return nil
		}

		logger.Debug("processing ingest event",
			"doc_id", event.DocumentID,
			"blocks", len(event.Blocks),
		)

		start := time.Now()
		err = resilience.Retry(ctx, "index-page", retryCfg, func() error {
			return writer.IndexPage(ctx, event.DocumentID, event.Blocks)
		})
		if m != nil {
			m.IngestLagSeconds.Observe(time.Since(start).Seconds())
		}
		if err != nil {
			cat.Record(ctx, event.DocumentID, catalog.StatusFailed)
			if m != nil {
				m.IngestEventsTotal.WithLabelValues("failed").Inc()
			}
			return fmt.Errorf("indexing document %s: %w", event.DocumentID, err)
		}

		cat.Record(ctx, event.DocumentID, catalog.StatusIndexed)
		if m != nil {
			m.IngestEventsTotal.WithLabelValues("indexed").Inc()
		}
		logger.Info("document indexed", "doc_id", event.DocumentID)
		return nil
	}
}
