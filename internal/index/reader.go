package index

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// countsConcurrency bounds the overlapping per-document lookups issued
// by Counts. The read is still one round trip per matching document.
const countsConcurrency = 8

// Reader is the index read path. Reads are not wrapped in any
// transaction or snapshot: a read interleaved with a foreign in-flight
// index transaction may see a document in a URLSet slightly before or
// after its TermCounter reflects the full count.
type Reader struct {
	store Store
}

// NewReader creates a Reader on top of the given store.
func NewReader(store Store) *Reader {
	return &Reader{store: store}
}

// URLs returns the set of documents containing term. The set is empty
// when the term was never indexed.
func (r *Reader) URLs(ctx context.Context, term string) (map[string]struct{}, error) {
	members, err := r.store.SetMembers(ctx, URLSetKey(term))
	if err != nil {
		return nil, fmt.Errorf("reading url set for %q: %w", term, err)
	}
	urls := make(map[string]struct{}, len(members))
	for _, m := range members {
		urls[m] = struct{}{}
	}
	return urls, nil
}

// Count returns how many times term occurs in the document identified
// by docID; zero when either was never indexed. The read is pure: it
// does not create the key or field.
func (r *Reader) Count(ctx context.Context, docID, term string) (int, error) {
	n, err := r.store.HashGet(ctx, TermCounterKey(docID), term)
	if err != nil {
		return 0, fmt.Errorf("reading count of %q in %s: %w", term, docID, err)
	}
	return int(n), nil
}

// Counts returns the occurrence count of term in every document that
// contains it. One set read plus one counter read per matching
// document; the lookups overlap but are not batched, so callers
// fanning out over very common terms should expect proportional load
// on the store.
func (r *Reader) Counts(ctx context.Context, term string) (map[string]int, error) {
	urls, err := r.URLs(ctx, term)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(urls))
	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(countsConcurrency)
	for url := range urls {
		url := url
		g.Go(func() error {
			n, err := r.Count(ctx, url, term)
			if err != nil {
				return err
			}
			mu.Lock()
			counts[url] = n
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return counts, nil
}
