// Package index maintains a term-level inverted index in a remote
// key-value store. Two key families hold the index: URLSet keys map a
// term to the set of documents containing it, and TermCounter keys map
// a document to its per-term occurrence counts. Writer keeps both
// families consistent inside one store transaction per document;
// Reader and Admin compose plain store reads.
package index

import (
	"context"
	"strings"
)

// Key families. The segment before the first colon names the family,
// the remainder is the term or document identifier.
const (
	URLSetPrefix      = "URLSet:"
	TermCounterPrefix = "TermCounter:"
)

// URLSetKey returns the store key holding the set of documents that
// contain term.
func URLSetKey(term string) string {
	return URLSetPrefix + term
}

// TermCounterKey returns the store key holding the term counts for the
// document identified by docID.
func TermCounterKey(docID string) string {
	return TermCounterPrefix + docID
}

// termFromKey recovers the term portion of a URLSet key. Keys with no
// delimiter map to the empty term. A term that itself contains a colon
// comes back truncated at it; the naming scheme defines no escaping.
func termFromKey(key string) string {
	parts := strings.Split(key, ":")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// Store is the capability set the index requires from its backing
// key-value store. pkg/redis provides the production implementation;
// indextest provides an in-memory double.
type Store interface {
	// SetAdd inserts member into the set at key. Idempotent.
	SetAdd(ctx context.Context, key, member string) error

	// SetMembers returns every member of the set at key, or an empty
	// slice when the key does not exist.
	SetMembers(ctx context.Context, key string) ([]string, error)

	// HashIncrBy adds delta to the hash field, creating key and field
	// at zero first if absent, and returns the new value.
	HashIncrBy(ctx context.Context, key, field string, delta int64) (int64, error)

	// HashGet reads a hash field without mutating it. A missing key or
	// field reads as zero.
	HashGet(ctx context.Context, key, field string) (int64, error)

	// Exists reports whether key is present.
	Exists(ctx context.Context, key string) (bool, error)

	// Keys returns all keys matching the glob pattern. Scans the whole
	// keyspace; diagnostic use only.
	Keys(ctx context.Context, pattern string) ([]string, error)

	// Tx queues the commands issued inside fn and commits them
	// atomically: either every queued command applies, or none do.
	Tx(ctx context.Context, fn func(tx TxPipeline) error) error
}

// TxPipeline queues commands inside a Store transaction. Queued
// commands take effect only when the transaction commits, so results
// are not observable inside fn.
type TxPipeline interface {
	SetAdd(key, member string)
	HashIncrBy(key, field string, delta int64)
	Del(keys ...string)
}
