package index_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/searchkit/termindex/internal/index"
	"github.com/searchkit/termindex/internal/index/indextest"
)

func newIndex(t *testing.T) (*indextest.Store, *index.Writer, *index.Reader) {
	t.Helper()
	store := indextest.NewStore()
	return store, index.NewWriter(store, nil), index.NewReader(store)
}

func TestIndexPageRoundTrip(t *testing.T) {
	ctx := context.Background()
	_, writer, reader := newIndex(t)

	if err := writer.IndexPage(ctx, "d1", []string{"The cat sat."}); err != nil {
		t.Fatalf("IndexPage: %v", err)
	}

	counts, err := reader.Counts(ctx, "cat")
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if len(counts) != 1 || counts["d1"] != 1 {
		t.Errorf("Counts(cat) = %v, want map[d1:1]", counts)
	}
}

func TestIndexPageInvariant(t *testing.T) {
	ctx := context.Background()
	store, writer, reader := newIndex(t)
	admin := index.NewAdmin(store)

	pages := map[string][]string{
		"d1": {"the cat sat on the mat", "the end"},
		"d2": {"a cat and a dog"},
		"d3": {"nothing in common here"},
	}
	for docID, blocks := range pages {
		if err := writer.IndexPage(ctx, docID, blocks); err != nil {
			t.Fatalf("IndexPage(%s): %v", docID, err)
		}
	}

	// Every URLSet member must have a positive count, and every
	// positive count must have set membership.
	terms, err := admin.TermSet(ctx)
	if err != nil {
		t.Fatalf("TermSet: %v", err)
	}
	for term := range terms {
		urls, err := reader.URLs(ctx, term)
		if err != nil {
			t.Fatalf("URLs(%q): %v", term, err)
		}
		for url := range urls {
			n, err := reader.Count(ctx, url, term)
			if err != nil {
				t.Fatalf("Count(%s, %q): %v", url, term, err)
			}
			if n < 1 {
				t.Errorf("doc %s in URLSet(%q) but count = %d", url, term, n)
			}
		}
	}
	for docID, blocks := range pages {
		for term := range countTerms(blocks) {
			urls, err := reader.URLs(ctx, term)
			if err != nil {
				t.Fatalf("URLs(%q): %v", term, err)
			}
			if _, ok := urls[docID]; !ok {
				t.Errorf("doc %s has count for %q but is not in its URLSet", docID, term)
			}
		}
	}
}

func TestIndexPageAccumulatesCounts(t *testing.T) {
	ctx := context.Background()
	_, writer, reader := newIndex(t)

	for i := 0; i < 2; i++ {
		if err := writer.IndexPage(ctx, "d1", []string{"go go gadget"}); err != nil {
			t.Fatalf("IndexPage #%d: %v", i+1, err)
		}
	}

	n, err := reader.Count(ctx, "d1", "go")
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 4 {
		t.Errorf("count of go after double index = %d, want 4", n)
	}

	urls, err := reader.URLs(ctx, "go")
	if err != nil {
		t.Fatalf("URLs: %v", err)
	}
	if len(urls) != 1 {
		t.Errorf("URLSet(go) has %d members after double index, want 1", len(urls))
	}
}

func TestIndexPageConcurrentDocuments(t *testing.T) {
	ctx := context.Background()
	_, writer, reader := newIndex(t)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	docs := []struct {
		id   string
		text string
	}{
		{"d1", "shared term alpha alpha"},
		{"d2", "shared term beta"},
	}
	for i, doc := range docs {
		i, doc := i, doc
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = writer.IndexPage(ctx, doc.id, []string{doc.text})
		}()
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			t.Fatalf("IndexPage(%s): %v", docs[i].id, err)
		}
	}

	counts, err := reader.Counts(ctx, "shared")
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	want := map[string]int{"d1": 1, "d2": 1}
	if len(counts) != len(want) || counts["d1"] != 1 || counts["d2"] != 1 {
		t.Errorf("Counts(shared) = %v, want %v", counts, want)
	}
}

func TestIndexPageFailureLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	store, writer, reader := newIndex(t)

	if err := writer.IndexPage(ctx, "d1", []string{"stable state"}); err != nil {
		t.Fatalf("IndexPage: %v", err)
	}

	store.FailTx = errors.New("connection reset")
	if err := writer.IndexPage(ctx, "d1", []string{"stable state"}); err == nil {
		t.Fatal("IndexPage succeeded despite transaction failure")
	}

	n, err := reader.Count(ctx, "d1", "stable")
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Errorf("count of stable after failed transaction = %d, want 1", n)
	}
}

func TestIsIndexed(t *testing.T) {
	ctx := context.Background()
	_, writer, _ := newIndex(t)

	ok, err := writer.IsIndexed(ctx, "d1")
	if err != nil {
		t.Fatalf("IsIndexed: %v", err)
	}
	if ok {
		t.Error("IsIndexed(d1) = true before indexing")
	}

	if err := writer.IndexPage(ctx, "d1", []string{"some text"}); err != nil {
		t.Fatalf("IndexPage: %v", err)
	}

	ok, err = writer.IsIndexed(ctx, "d1")
	if err != nil {
		t.Fatalf("IsIndexed: %v", err)
	}
	if !ok {
		t.Error("IsIndexed(d1) = false after indexing")
	}
}

// countTerms mirrors the tokenizer closely enough for the invariant
// test: the inputs above contain only lowercase words and single
// spaces.
func countTerms(blocks []string) map[string]struct{} {
	terms := make(map[string]struct{})
	for _, block := range blocks {
		for _, f := range strings.Fields(block) {
			terms[f] = struct{}{}
		}
	}
	return terms
}
