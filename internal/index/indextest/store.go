// Package indextest provides an in-memory index.Store for hermetic
// tests. It models the subset of store semantics the index relies on:
// idempotent set adds, create-at-zero hash increments, glob key scans,
// and all-or-nothing transactions.
package indextest

import (
	"context"
	"sync"

	"github.com/searchkit/termindex/internal/index"
)

// Store is an in-memory implementation of index.Store. Safe for
// concurrent use.
type Store struct {
	mu     sync.Mutex
	sets   map[string]map[string]struct{}
	hashes map[string]map[string]int64

	// FailTx, when non-nil, is returned by the next Tx call instead of
	// committing, leaving state untouched. Cleared after one use.
	FailTx error
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		sets:   make(map[string]map[string]struct{}),
		hashes: make(map[string]map[string]int64),
	}
}

func (s *Store) SetAdd(_ context.Context, key, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setAdd(key, member)
	return nil
}

func (s *Store) SetMembers(_ context.Context, key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	members := make([]string, 0, len(s.sets[key]))
	for m := range s.sets[key] {
		members = append(members, m)
	}
	return members, nil
}

func (s *Store) HashIncrBy(_ context.Context, key, field string, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hashIncrBy(key, field, delta), nil
}

func (s *Store) HashGet(_ context.Context, key, field string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hashes[key][field], nil
}

func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, isSet := s.sets[key]
	_, isHash := s.hashes[key]
	return isSet || isHash, nil
}

func (s *Store) Keys(_ context.Context, pattern string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var keys []string
	for key := range s.sets {
		if matchGlob(pattern, key) {
			keys = append(keys, key)
		}
	}
	for key := range s.hashes {
		if matchGlob(pattern, key) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// Tx queues the commands issued by fn and applies them under one lock
// acquisition, so no reader observes a partial transaction.
func (s *Store) Tx(_ context.Context, fn func(tx index.TxPipeline) error) error {
	tx := &txPipeline{}
	if err := fn(tx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailTx != nil {
		err := s.FailTx
		s.FailTx = nil
		return err
	}
	for _, op := range tx.ops {
		op(s)
	}
	return nil
}

// HashField reads a raw hash field and whether it exists, bypassing
// the zero-default of HashGet. Lets tests assert that pure reads do
// not create fields.
func (s *Store) HashField(key, field string) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.hashes[key][field]
	return v, ok
}

func (s *Store) setAdd(key, member string) {
	set, ok := s.sets[key]
	if !ok {
		set = make(map[string]struct{})
		s.sets[key] = set
	}
	set[member] = struct{}{}
}

func (s *Store) hashIncrBy(key, field string, delta int64) int64 {
	hash, ok := s.hashes[key]
	if !ok {
		hash = make(map[string]int64)
		s.hashes[key] = hash
	}
	hash[field] += delta
	return hash[field]
}

func (s *Store) del(keys ...string) {
	for _, key := range keys {
		delete(s.sets, key)
		delete(s.hashes, key)
	}
}

// matchGlob matches the store's glob dialect: * matches any sequence
// (including separators, unlike path.Match), ? matches one character.
func matchGlob(pattern, s string) bool {
	for len(pattern) > 0 {
		switch pattern[0] {
		case '*':
			for len(pattern) > 0 && pattern[0] == '*' {
				pattern = pattern[1:]
			}
			if pattern == "" {
				return true
			}
			for i := 0; i <= len(s); i++ {
				if matchGlob(pattern, s[i:]) {
					return true
				}
			}
			return false
		case '?':
			if s == "" {
				return false
			}
			pattern, s = pattern[1:], s[1:]
		default:
			if s == "" || s[0] != pattern[0] {
				return false
			}
			pattern, s = pattern[1:], s[1:]
		}
	}
	return s == ""
}

type txPipeline struct {
	ops []func(*Store)
}

func (t *txPipeline) SetAdd(key, member string) {
	t.ops = append(t.ops, func(s *Store) { s.setAdd(key, member) })
}

func (t *txPipeline) HashIncrBy(key, field string, delta int64) {
	t.ops = append(t.ops, func(s *Store) { s.hashIncrBy(key, field, delta) })
}

func (t *txPipeline) Del(keys ...string) {
	t.ops = append(t.ops, func(s *Store) { s.del(keys...) })
}
