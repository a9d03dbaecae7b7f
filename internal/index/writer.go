package index

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/searchkit/termindex/internal/index/tokenizer"
	"github.com/searchkit/termindex/pkg/metrics"
)

// Writer is the index write path. Each IndexPage call updates both key
// families for one document inside a single store transaction.
type Writer struct {
	store   Store
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewWriter creates a Writer on top of the given store. m may be nil
// to disable instrumentation.
func NewWriter(store Store, m *metrics.Metrics) *Writer {
	return &Writer{
		store:   store,
		metrics: m,
		logger:  slog.Default().With("component", "index-writer"),
	}
}

// IndexPage tokenizes the document's text blocks and merges the
// resulting term counts into the store. For every term it queues a
// set-add of docID into the term's URLSet and a hash-increment of the
// document's TermCounter, then commits both families in one
// transaction: a reader never observes a partially applied document.
//
// Counts accumulate: indexing the same document twice doubles every
// term count, while URLSet membership stays a single entry. A failed
// transaction leaves the document's prior state untouched; retrying is
// the caller's decision.
func (w *Writer) IndexPage(ctx context.Context, docID string, blocks []string) error {
	counts := tokenizer.Counts(blocks...)

	start := time.Now()
	err := w.store.Tx(ctx, func(tx TxPipeline) error {
		counterKey := TermCounterKey(docID)
		for term, count := range counts {
			tx.SetAdd(URLSetKey(term), docID)
			tx.HashIncrBy(counterKey, term, int64(count))
		}
		return nil
	})
	if err != nil {
		if w.metrics != nil {
			w.metrics.IndexTxTotal.WithLabelValues("error").Inc()
		}
		return fmt.Errorf("indexing page %s: %w", docID, err)
	}

	if w.metrics != nil {
		w.metrics.IndexTxTotal.WithLabelValues("ok").Inc()
		w.metrics.IndexTxDuration.Observe(time.Since(start).Seconds())
		w.metrics.TermsPerPage.Observe(float64(len(counts)))
	}
	w.logger.Debug("page indexed",
		"doc_id", docID,
		"blocks", len(blocks),
		"terms", len(counts),
	)
	return nil
}

// IsIndexed reports whether docID has been indexed at all, by checking
// for its TermCounter key. It says nothing about whether every URLSet
// added since is visible yet.
func (w *Writer) IsIndexed(ctx context.Context, docID string) (bool, error) {
	ok, err := w.store.Exists(ctx, TermCounterKey(docID))
	if err != nil {
		return false, fmt.Errorf("checking index state of %s: %w", docID, err)
	}
	return ok, nil
}
