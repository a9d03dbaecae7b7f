package index_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/searchkit/termindex/internal/index"
)

func TestURLsUnknownTerm(t *testing.T) {
	ctx := context.Background()
	_, _, reader := newIndex(t)

	urls, err := reader.URLs(ctx, "never-indexed")
	if err != nil {
		t.Fatalf("URLs: %v", err)
	}
	if len(urls) != 0 {
		t.Errorf("URLs(never-indexed) = %v, want empty set", urls)
	}
}

func TestCountMissing(t *testing.T) {
	ctx := context.Background()
	store, writer, reader := newIndex(t)

	if err := writer.IndexPage(ctx, "d1", []string{"present"}); err != nil {
		t.Fatalf("IndexPage: %v", err)
	}

	tests := []struct {
		name  string
		docID string
		term  string
	}{
		{"unknown document", "d2", "present"},
		{"unknown term", "d1", "absent"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := reader.Count(ctx, tt.docID, tt.term)
			if err != nil {
				t.Fatalf("Count: %v", err)
			}
			if n != 0 {
				t.Errorf("Count(%s, %q) = %d, want 0", tt.docID, tt.term, n)
			}
		})
	}

	// The read is pure: no zero-valued fields may appear as a side
	// effect of looking up terms that were never indexed.
	if _, ok := store.HashField(index.TermCounterKey("d1"), "absent"); ok {
		t.Error("Count created a zero field for an absent term")
	}
	if _, ok := store.HashField(index.TermCounterKey("d2"), "present"); ok {
		t.Error("Count created a counter for an unindexed document")
	}
}

func TestCounts(t *testing.T) {
	ctx := context.Background()
	_, writer, reader := newIndex(t)

	pages := map[string]string{
		"https://example.org/a": "word word word",
		"https://example.org/b": "word once",
		"https://example.org/c": "unrelated text",
	}
	for docID, text := range pages {
		if err := writer.IndexPage(ctx, docID, []string{text}); err != nil {
			t.Fatalf("IndexPage(%s): %v", docID, err)
		}
	}

	counts, err := reader.Counts(ctx, "word")
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	want := map[string]int{
		"https://example.org/a": 3,
		"https://example.org/b": 1,
	}
	if !reflect.DeepEqual(counts, want) {
		t.Errorf("Counts(word) = %v, want %v", counts, want)
	}
}

func TestCountsUnknownTerm(t *testing.T) {
	ctx := context.Background()
	_, _, reader := newIndex(t)

	counts, err := reader.Counts(ctx, "ghost")
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if len(counts) != 0 {
		t.Errorf("Counts(ghost) = %v, want empty map", counts)
	}
}
