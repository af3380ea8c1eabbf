// Package store implements the relationship/triple store collaborator on
// BadgerDB: triple rows with SPO/OPS dual indexing for bidirectional
// neighbor lookups, soft delete, the verb/role catalog, and the frequency
// aggregations behind the stats endpoints.
package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/actionsemantics/sage/pkg/common/errors"
	"github.com/actionsemantics/sage/pkg/graph"
)

// keyTripleCount persists the triple counter across restarts.
var keyTripleCount = []byte("m:count")

// TripleStore is a badger-backed implementation of the triple store
// interface consumed by the registries and the traversal engine.
type TripleStore struct {
	db  *badger.DB
	cfg *Config

	// numTriples tracks live (non-deleted) triples in RAM; persisted on
	// graceful shutdown only.
	numTriples atomic.Uint64
}

// Open opens (or creates) a triple store under cfg.DataDir.
func Open(cfg *Config) (*TripleStore, error) {
	db, err := openBadgerDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	s := &TripleStore{db: db, cfg: cfg}
	if err := s.loadStats(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close persists the counters and closes the database.
func (s *TripleStore) Close() error {
	if err := s.saveStats(); err != nil {
		slog.Warn("failed to persist store stats", "error", err)
	}
	return s.db.Close()
}

// Count returns the number of live triples.
func (s *TripleStore) Count() uint64 {
	return s.numTriples.Load()
}

func (s *TripleStore) loadStats() error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(keyTripleCount)
		if err == badger.ErrKeyNotFound {
			s.numTriples.Store(0)
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) >= 8 {
				s.numTriples.Store(binary.BigEndian.Uint64(val))
			}
			return nil
		})
	})
}

func (s *TripleStore) saveStats() error {
	if s.cfg.ReadOnly {
		return nil
	}
	return s.db.Update(func(txn *badger.Txn) error {
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, s.numTriples.Load())
		return txn.Set(keyTripleCount, buf)
	})
}

// AddTriple writes a triple row and both index entries atomically. Missing
// ID, timestamp and version are filled in.
func (s *TripleStore) AddTriple(t *graph.Triple) error {
	if t == nil || !t.IsValid() {
		return fmt.Errorf("%w: triple requires subject, predicate and object", errors.ErrInvalidInput)
	}
	for _, field := range []string{t.Subject, t.Predicate, t.Object} {
		if strings.Contains(field, sep) {
			return fmt.Errorf("%w: identifiers must not contain NUL bytes", errors.ErrInvalidInput)
		}
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	if t.Version == 0 {
		t.Version = 1
	}

	row, err := json.Marshal(t)
	if err != nil {
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(rowKey(t.ID), row); err != nil {
			return err
		}
		if err := txn.Set(spoKey(t.Subject, t.Predicate, t.Object, t.ID), nil); err != nil {
			return err
		}
		return txn.Set(opsKey(t.Subject, t.Predicate, t.Object, t.ID), nil)
	})
	if err != nil {
		return err
	}

	s.numTriples.Add(1)
	return nil
}

// GetTriple returns a live triple by ID. Soft-deleted triples report
// not-found like absent ones.
func (s *TripleStore) GetTriple(id string) (*graph.Triple, error) {
	var t graph.Triple
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(rowKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &t)
		})
	})
	if err == badger.ErrKeyNotFound {
		return nil, fmt.Errorf("%w: triple %q", errors.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	if t.IsDeleted() {
		return nil, fmt.Errorf("%w: triple %q", errors.ErrNotFound, id)
	}
	return &t, nil
}

// SoftDelete marks a triple deleted and removes its index entries. The row
// itself is kept for audit. Deleting an absent or already-deleted triple
// reports not-found.
func (s *TripleStore) SoftDelete(id, deletedBy string) error {
	t, err := s.GetTriple(id)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	t.DeletedAt = &now
	t.UpdatedAt = &now
	t.Version++
	if deletedBy != "" {
		if t.Context == nil {
			t.Context = &graph.Context{}
		}
		if t.Context.Extra == nil {
			t.Context.Extra = make(map[string]any)
		}
		t.Context.Extra["deleted_by"] = deletedBy
	}

	row, err := json.Marshal(t)
	if err != nil {
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(rowKey(t.ID), row); err != nil {
			return err
		}
		if err := txn.Delete(spoKey(t.Subject, t.Predicate, t.Object, t.ID)); err != nil {
			return err
		}
		return txn.Delete(opsKey(t.Subject, t.Predicate, t.Object, t.ID))
	})
	if err != nil {
		return err
	}

	// Guard against underflow when counters and rows disagree.
	if s.numTriples.Load() > 0 {
		s.numTriples.Add(^uint64(0))
	}
	return nil
}

// QueryTriples answers a filter query, newest first. The most selective
// index available is chosen: subject-bound queries seek the SPO index,
// object-bound queries the OPS index; predicate-only and unconstrained
// queries scan the SPO index (acceptable here, pattern queries are capped
// at 100 results).
func (s *TripleStore) QueryTriples(ctx context.Context, f graph.Filter) (*graph.QueryResult, error) {
	var prefix []byte
	switch {
	case f.Subject != "":
		p := spoPrefix + f.Subject + sep
		if f.Predicate != "" {
			p += f.Predicate + sep
			if f.Object != "" {
				p += f.Object + sep
			}
		}
		prefix = []byte(p)
	case f.Object != "":
		p := opsPrefix + f.Object + sep
		if f.Predicate != "" {
			p += f.Predicate + sep
		}
		prefix = []byte(p)
	default:
		prefix = []byte(spoPrefix)
	}

	var ids []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		n := 0
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			n++
			if n%256 == 0 && ctx.Err() != nil {
				return ctx.Err()
			}

			first, pred, third, id, ok := decodeIndexKey(it.Item().Key())
			if !ok {
				continue
			}
			// Residual filters the prefix did not cover.
			subject, object := first, third
			if prefix[0] == opsPrefix[0] {
				subject, object = third, first
			}
			if f.Subject != "" && subject != f.Subject {
				continue
			}
			if f.Predicate != "" && pred != f.Predicate {
				continue
			}
			if f.Object != "" && object != f.Object {
				continue
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	triples := make([]*graph.Triple, 0, len(ids))
	for _, id := range ids {
		t, err := s.GetTriple(id)
		if err != nil {
			// Row vanished or soft-deleted between scan and load.
			continue
		}
		triples = append(triples, t)
	}

	sort.Slice(triples, func(i, j int) bool {
		return triples[i].CreatedAt.After(triples[j].CreatedAt)
	})

	total := len(triples)
	if f.Offset > 0 {
		if f.Offset >= len(triples) {
			triples = nil
		} else {
			triples = triples[f.Offset:]
		}
	}
	if f.Limit > 0 && len(triples) > f.Limit {
		triples = triples[:f.Limit]
	}

	return &graph.QueryResult{Triples: triples, Total: total}, nil
}

// GetOutgoingRelationships returns, for the node "namespace:id", a mapping
// of predicate to target references where the node is the subject.
func (s *TripleStore) GetOutgoingRelationships(ctx context.Context, namespace, id string) (map[string][]string, error) {
	subject := graph.JoinRef(namespace, id)
	prefix := []byte(spoPrefix + subject + sep)

	out := make(map[string][]string)
	err := s.scanIndex(ctx, prefix, func(first, pred, third string) {
		out[pred] = append(out[pred], third)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetIncomingRelationships returns every (subject, predicate) pair pointing
// at the node "namespace:id".
func (s *TripleStore) GetIncomingRelationships(ctx context.Context, namespace, id string) ([]graph.IncomingEdge, error) {
	object := graph.JoinRef(namespace, id)
	prefix := []byte(opsPrefix + object + sep)

	var in []graph.IncomingEdge
	err := s.scanIndex(ctx, prefix, func(first, pred, third string) {
		in = append(in, graph.IncomingEdge{Subject: third, Predicate: pred})
	})
	if err != nil {
		return nil, err
	}
	return in, nil
}

// PredicateFrequency counts live triples per predicate.
func (s *TripleStore) PredicateFrequency(ctx context.Context) (map[string]int, error) {
	freq := make(map[string]int)
	err := s.scanIndex(ctx, []byte(spoPrefix), func(first, pred, third string) {
		freq[pred]++
	})
	if err != nil {
		return nil, err
	}
	return freq, nil
}

// SubjectFrequency counts live triples per subject.
func (s *TripleStore) SubjectFrequency(ctx context.Context) (map[string]int, error) {
	freq := make(map[string]int)
	err := s.scanIndex(ctx, []byte(spoPrefix), func(first, pred, third string) {
		freq[first]++
	})
	if err != nil {
		return nil, err
	}
	return freq, nil
}

// scanIndex iterates an index prefix, yielding the three decoded fields in
// key order. Index entries exist only for live triples.
func (s *TripleStore) scanIndex(ctx context.Context, prefix []byte, yield func(first, pred, third string)) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		n := 0
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			n++
			if n%256 == 0 && ctx.Err() != nil {
				return ctx.Err()
			}
			first, pred, third, _, ok := decodeIndexKey(it.Item().Key())
			if !ok {
				continue
			}
			yield(first, pred, third)
		}
		return nil
	})
}
