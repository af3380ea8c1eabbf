package registry

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/actionsemantics/sage/pkg/common/errors"
)

// RoleRegistry is the canonical catalog of roles, following the same
// cache-then-store pattern as VerbRegistry.
//
// Inferring a role from an occupation taxonomy (O*NET) when no registry
// entry exists is a known extension point that is intentionally not
// implemented; Resolve simply reports not-found.
type RoleRegistry struct {
	store CatalogStore

	mu    sync.RWMutex
	roles map[string]*RoleDefinition
}

// NewRoleRegistry creates a registry pre-populated with the seed catalog.
// store may be nil for a purely in-memory registry.
func NewRoleRegistry(store CatalogStore) *RoleRegistry {
	r := &RoleRegistry{
		store: store,
		roles: make(map[string]*RoleDefinition),
	}
	for _, def := range seedRoles() {
		r.roles[def.Name] = def
	}
	return r
}

// Resolve returns the definition for a role name, consulting the catalog
// store on a cache miss.
func (r *RoleRegistry) Resolve(name string) (*RoleDefinition, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty role name", errors.ErrInvalidInput)
	}

	r.mu.RLock()
	def, ok := r.roles[name]
	r.mu.RUnlock()
	if ok {
		return def, nil
	}

	if r.store == nil {
		return nil, fmt.Errorf("%w: role %q", errors.ErrNotFound, name)
	}

	def, err := r.store.LookupRole(name)
	if err != nil {
		if stderrors.Is(err, errors.ErrNotFound) {
			return nil, fmt.Errorf("%w: role %q", errors.ErrNotFound, name)
		}
		return nil, fmt.Errorf("%w: role lookup: %v", errors.ErrStoreUnavailable, err)
	}

	r.mu.Lock()
	if cached, ok := r.roles[name]; ok {
		def = cached
	} else {
		r.roles[name] = def
	}
	r.mu.Unlock()

	return def, nil
}

// Capabilities returns the role's effective capability set: its own
// capabilities unioned with every ancestor's, deduplicated. A visited set
// guards against cycles in the parent chain; on a cycle the recursion stops
// with the union gathered so far. A parent that no longer resolves silently
// ends the chain.
func (r *RoleRegistry) Capabilities(name string) ([]string, error) {
	def, err := r.Resolve(name)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	visited := map[string]bool{def.Name: true}

	var out []string
	add := func(caps []string) {
		for _, c := range caps {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}

	add(def.Capabilities)
	for def.ParentRole != "" && !visited[def.ParentRole] {
		visited[def.ParentRole] = true
		parent, err := r.Resolve(def.ParentRole)
		if err != nil {
			// Dangling parent reference: inheritance stops here.
			break
		}
		add(parent.Capabilities)
		def = parent
	}

	sort.Strings(out)
	return out, nil
}

// List returns every cached role, sorted by name.
func (r *RoleRegistry) List() []*RoleDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*RoleDefinition, 0, len(r.roles))
	for _, def := range r.roles {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Register validates and persists a role definition, then caches it.
func (r *RoleRegistry) Register(def *RoleDefinition) (*RoleDefinition, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	if r.store != nil {
		if err := r.store.UpsertRole(def); err != nil {
			return nil, fmt.Errorf("%w: persist role %q: %v", errors.ErrStoreUnavailable, def.Name, err)
		}
	}

	r.mu.Lock()
	r.roles[def.Name] = def
	r.mu.Unlock()

	slog.Debug("role registered", "name", def.Name, "parent", def.ParentRole)
	return def, nil
}

// Suggest returns role names similar to the given one, for not-found messages.
func (r *RoleRegistry) Suggest(name string) []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.roles))
	for n := range r.roles {
		names = append(names, n)
	}
	r.mu.RUnlock()
	return closestMatches(name, names, 5)
}
