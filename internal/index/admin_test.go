package index_test

import (
	"bytes"
	"context"
	"reflect"
	"sort"
	"testing"

	"github.com/searchkit/termindex/internal/index"
	"github.com/searchkit/termindex/internal/index/indextest"
)

// newStoreWithKeys seeds raw set keys, bypassing the writer, to
// exercise key parsing against shapes the writer would never produce.
func newStoreWithKeys(t *testing.T, ctx context.Context, keys map[string]string) *indextest.Store {
	t.Helper()
	store := indextest.NewStore()
	for key, member := range keys {
		if err := store.SetAdd(ctx, key, member); err != nil {
			t.Fatalf("seeding key %s: %v", key, err)
		}
	}
	return store
}

func TestTermSet(t *testing.T) {
	ctx := context.Background()
	store, writer, _ := newIndex(t)
	admin := index.NewAdmin(store)

	if err := writer.IndexPage(ctx, "d1", []string{"alpha beta"}); err != nil {
		t.Fatalf("IndexPage: %v", err)
	}

	terms, err := admin.TermSet(ctx)
	if err != nil {
		t.Fatalf("TermSet: %v", err)
	}
	want := map[string]struct{}{"alpha": {}, "beta": {}}
	if !reflect.DeepEqual(terms, want) {
		t.Errorf("TermSet = %v, want %v", terms, want)
	}
}

func TestTermSetDelimiterParsing(t *testing.T) {
	ctx := context.Background()
	store := newStoreWithKeys(t, ctx, map[string]string{
		"URLSet:plain":     "d1",
		"URLSet:has:colon": "d1",
		"URLSet":           "d1",
	})
	admin := index.NewAdmin(store)

	terms, err := admin.TermSet(ctx)
	if err != nil {
		t.Fatalf("TermSet: %v", err)
	}
	// A term containing the delimiter comes back truncated; a key
	// with no delimiter falls back to the empty term.
	want := map[string]struct{}{"plain": {}, "has": {}, "": {}}
	if !reflect.DeepEqual(terms, want) {
		t.Errorf("TermSet = %v, want %v", terms, want)
	}
}

func TestKeyScans(t *testing.T) {
	ctx := context.Background()
	store, writer, _ := newIndex(t)
	admin := index.NewAdmin(store)

	if err := writer.IndexPage(ctx, "https://example.org/a", []string{"one two"}); err != nil {
		t.Fatalf("IndexPage: %v", err)
	}

	urlSetKeys, err := admin.URLSetKeys(ctx)
	if err != nil {
		t.Fatalf("URLSetKeys: %v", err)
	}
	sort.Strings(urlSetKeys)
	wantSets := []string{"URLSet:one", "URLSet:two"}
	if !reflect.DeepEqual(urlSetKeys, wantSets) {
		t.Errorf("URLSetKeys = %v, want %v", urlSetKeys, wantSets)
	}

	counterKeys, err := admin.TermCounterKeys(ctx)
	if err != nil {
		t.Fatalf("TermCounterKeys: %v", err)
	}
	wantCounters := []string{"TermCounter:https://example.org/a"}
	if !reflect.DeepEqual(counterKeys, wantCounters) {
		t.Errorf("TermCounterKeys = %v, want %v", counterKeys, wantCounters)
	}
}

func TestDeleteURLSets(t *testing.T) {
	ctx := context.Background()
	store, writer, reader := newIndex(t)
	admin := index.NewAdmin(store)

	if err := writer.IndexPage(ctx, "d1", []string{"term"}); err != nil {
		t.Fatalf("IndexPage: %v", err)
	}
	if err := admin.DeleteURLSets(ctx); err != nil {
		t.Fatalf("DeleteURLSets: %v", err)
	}

	urls, err := reader.URLs(ctx, "term")
	if err != nil {
		t.Fatalf("URLs: %v", err)
	}
	if len(urls) != 0 {
		t.Errorf("URLs(term) = %v after DeleteURLSets, want empty", urls)
	}
	// Counters are a separate family and survive.
	n, err := reader.Count(ctx, "d1", "term")
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Errorf("Count(d1, term) = %d after DeleteURLSets, want 1", n)
	}
}

func TestDeleteTermCounters(t *testing.T) {
	ctx := context.Background()
	store, writer, reader := newIndex(t)
	admin := index.NewAdmin(store)

	if err := writer.IndexPage(ctx, "d1", []string{"term"}); err != nil {
		t.Fatalf("IndexPage: %v", err)
	}
	if err := admin.DeleteTermCounters(ctx); err != nil {
		t.Fatalf("DeleteTermCounters: %v", err)
	}

	ok, err := index.NewWriter(store, nil).IsIndexed(ctx, "d1")
	if err != nil {
		t.Fatalf("IsIndexed: %v", err)
	}
	if ok {
		t.Error("IsIndexed(d1) = true after DeleteTermCounters")
	}
	urls, err := reader.URLs(ctx, "term")
	if err != nil {
		t.Fatalf("URLs: %v", err)
	}
	if len(urls) != 1 {
		t.Errorf("URLs(term) = %v after DeleteTermCounters, want d1 to survive", urls)
	}
}

func TestDeleteAllKeys(t *testing.T) {
	ctx := context.Background()
	store, writer, reader := newIndex(t)
	admin := index.NewAdmin(store)

	for _, docID := range []string{"d1", "d2"} {
		if err := writer.IndexPage(ctx, docID, []string{"some shared words"}); err != nil {
			t.Fatalf("IndexPage(%s): %v", docID, err)
		}
	}
	if err := admin.DeleteAllKeys(ctx); err != nil {
		t.Fatalf("DeleteAllKeys: %v", err)
	}

	for _, term := range []string{"some", "shared", "words"} {
		urls, err := reader.URLs(ctx, term)
		if err != nil {
			t.Fatalf("URLs(%q): %v", term, err)
		}
		if len(urls) != 0 {
			t.Errorf("URLs(%q) = %v after DeleteAllKeys, want empty", term, urls)
		}
	}
	for _, docID := range []string{"d1", "d2"} {
		ok, err := writer.IsIndexed(ctx, docID)
		if err != nil {
			t.Fatalf("IsIndexed(%s): %v", docID, err)
		}
		if ok {
			t.Errorf("IsIndexed(%s) = true after DeleteAllKeys", docID)
		}
	}
}

func TestDeleteAllKeysEmptyStore(t *testing.T) {
	ctx := context.Background()
	store, _, _ := newIndex(t)
	admin := index.NewAdmin(store)

	if err := admin.DeleteAllKeys(ctx); err != nil {
		t.Fatalf("DeleteAllKeys on empty store: %v", err)
	}
}

func TestPrintIndex(t *testing.T) {
	ctx := context.Background()
	store, writer, _ := newIndex(t)
	admin := index.NewAdmin(store)

	if err := writer.IndexPage(ctx, "d1", []string{"beta alpha alpha"}); err != nil {
		t.Fatalf("IndexPage: %v", err)
	}
	if err := writer.IndexPage(ctx, "d2", []string{"alpha"}); err != nil {
		t.Fatalf("IndexPage: %v", err)
	}

	var buf bytes.Buffer
	if err := admin.PrintIndex(ctx, &buf); err != nil {
		t.Fatalf("PrintIndex: %v", err)
	}

	want := "alpha\n    d1 2\n    d2 1\nbeta\n    d1 1\n"
	if got := buf.String(); got != want {
		t.Errorf("PrintIndex output = %q, want %q", got, want)
	}
}
