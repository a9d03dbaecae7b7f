package index

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
)

// Admin holds the maintenance operations over the two key families.
// Everything here is for development, testing, and diagnostics: the
// key scans walk the whole keyspace, and the bulk deletes are
// best-effort — safe only when no concurrent writers are active.
type Admin struct {
	store  Store
	reader *Reader
	logger *slog.Logger
}

// NewAdmin creates an Admin on top of the given store.
func NewAdmin(store Store) *Admin {
	return &Admin{
		store:  store,
		reader: NewReader(store),
		logger: slog.Default().With("component", "index-admin"),
	}
}

// TermSet returns every term that has a URLSet key, by parsing the key
// names. A key without a delimiter yields the empty term; a term that
// itself contains a colon comes back truncated at it.
func (a *Admin) TermSet(ctx context.Context) (map[string]struct{}, error) {
	keys, err := a.URLSetKeys(ctx)
	if err != nil {
		return nil, err
	}
	terms := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		terms[termFromKey(key)] = struct{}{}
	}
	return terms, nil
}

// URLSetKeys returns all URLSet keys. The scan is not atomic: keys
// created or deleted while it runs may be missed.
func (a *Admin) URLSetKeys(ctx context.Context) ([]string, error) {
	keys, err := a.store.Keys(ctx, URLSetPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scanning url set keys: %w", err)
	}
	return keys, nil
}

// TermCounterKeys returns all TermCounter keys. Same non-atomic scan
// caveat as URLSetKeys.
func (a *Admin) TermCounterKeys(ctx context.Context) ([]string, error) {
	keys, err := a.store.Keys(ctx, TermCounterPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scanning term counter keys: %w", err)
	}
	return keys, nil
}

// DeleteURLSets removes every URLSet key.
func (a *Admin) DeleteURLSets(ctx context.Context) error {
	return a.deleteByPattern(ctx, URLSetPrefix+"*")
}

// DeleteTermCounters removes every TermCounter key.
func (a *Admin) DeleteTermCounters(ctx context.Context) error {
	return a.deleteByPattern(ctx, TermCounterPrefix+"*")
}

// DeleteAllKeys removes every key in the store, both index families
// and anything else sharing the database.
func (a *Admin) DeleteAllKeys(ctx context.Context) error {
	return a.deleteByPattern(ctx, "*")
}

// deleteByPattern scans for matching keys and deletes them in one
// transaction. The scan and the delete are two steps: keys created in
// between survive.
func (a *Admin) deleteByPattern(ctx context.Context, pattern string) error {
	keys, err := a.store.Keys(ctx, pattern)
	if err != nil {
		return fmt.Errorf("scanning keys for %q: %w", pattern, err)
	}
	if len(keys) == 0 {
		return nil
	}
	err = a.store.Tx(ctx, func(tx TxPipeline) error {
		tx.Del(keys...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("deleting %d keys for %q: %w", len(keys), pattern, err)
	}
	a.logger.Info("bulk delete", "pattern", pattern, "keys_deleted", len(keys))
	return nil
}

// PrintIndex writes the whole index to w as term, then indented
// url/count lines, terms and urls in sorted order. Development aid.
func (a *Admin) PrintIndex(ctx context.Context, w io.Writer) error {
	termSet, err := a.TermSet(ctx)
	if err != nil {
		return err
	}
	terms := make([]string, 0, len(termSet))
	for term := range termSet {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	for _, term := range terms {
		if _, err := fmt.Fprintln(w, term); err != nil {
			return err
		}
		counts, err := a.reader.Counts(ctx, term)
		if err != nil {
			return err
		}
		urls := make([]string, 0, len(counts))
		for url := range counts {
			urls = append(urls, url)
		}
		sort.Strings(urls)
		for _, url := range urls {
			if _, err := fmt.Fprintf(w, "    %s %d\n", url, counts[url]); err != nil {
				return err
			}
		}
	}
	return nil
}
