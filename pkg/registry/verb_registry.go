package registry

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/actionsemantics/sage/pkg/common/errors"
)

// VerbRegistry is the canonical catalog of permissible actions. Reads hit
// the in-memory cache first; misses fall through to the catalog store.
// Registration is write-through: the store write must succeed before the
// cache is updated.
type VerbRegistry struct {
	store CatalogStore

	mu    sync.RWMutex
	verbs map[string]*VerbDefinition
}

// NewVerbRegistry creates a registry pre-populated with the seed catalog.
// store may be nil for a purely in-memory registry (tests, ephemeral use).
func NewVerbRegistry(store CatalogStore) *VerbRegistry {
	r := &VerbRegistry{
		store: store,
		verbs: make(map[string]*VerbDefinition),
	}
	for _, v := range seedVerbs() {
		r.verbs[v.Gerund] = v
	}
	return r
}

// Resolve returns the definition for a gerund. On a cache miss it consults
// the catalog store and caches the result. Returns errors.ErrNotFound when
// the verb exists in neither, errors.ErrStoreUnavailable when the store
// cannot answer.
func (r *VerbRegistry) Resolve(gerund string) (*VerbDefinition, error) {
	if gerund == "" {
		return nil, fmt.Errorf("%w: empty gerund", errors.ErrInvalidInput)
	}

	r.mu.RLock()
	v, ok := r.verbs[gerund]
	r.mu.RUnlock()
	if ok {
		return v, nil
	}

	if r.store == nil {
		return nil, fmt.Errorf("%w: verb %q", errors.ErrNotFound, gerund)
	}

	v, err := r.store.LookupVerb(gerund)
	if err != nil {
		if stderrors.Is(err, errors.ErrNotFound) {
			return nil, fmt.Errorf("%w: verb %q", errors.ErrNotFound, gerund)
		}
		return nil, fmt.Errorf("%w: verb lookup: %v", errors.ErrStoreUnavailable, err)
	}

	r.mu.Lock()
	// Lost races are fine; the map itself stays consistent.
	if cached, ok := r.verbs[gerund]; ok {
		v = cached
	} else {
		r.verbs[gerund] = v
	}
	r.mu.Unlock()

	return v, nil
}

// List returns the cached verbs, optionally filtered by category, sorted by
// gerund.
func (r *VerbRegistry) List(category string) []*VerbDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*VerbDefinition, 0, len(r.verbs))
	for _, v := range r.verbs {
		if category != "" && v.Category != category {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Gerund < out[j].Gerund })
	return out
}

// Register validates and persists a verb definition, then caches it. A
// persistence failure propagates to the caller and leaves the cache
// untouched.
func (r *VerbRegistry) Register(def *VerbDefinition) (*VerbDefinition, error) {
	if def != nil && def.Gerund == "" && def.BaseForm != "" {
		def.Gerund = ToGerund(def.BaseForm)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}

	if r.store != nil {
		if err := r.store.UpsertVerb(def); err != nil {
			return nil, fmt.Errorf("%w: persist verb %q: %v", errors.ErrStoreUnavailable, def.Gerund, err)
		}
	}

	r.mu.Lock()
	r.verbs[def.Gerund] = def
	r.mu.Unlock()

	slog.Debug("verb registered", "gerund", def.Gerund, "danger", def.DangerLevel)
	return def, nil
}

// Suggest returns gerunds similar to the given one, for not-found messages.
func (r *VerbRegistry) Suggest(gerund string) []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.verbs))
	for g := range r.verbs {
		names = append(names, g)
	}
	r.mu.RUnlock()
	return closestMatches(gerund, names, 5)
}
