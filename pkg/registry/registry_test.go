package registry

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/actionsemantics/sage/pkg/common/errors"
)

// fakeCatalog is an in-memory CatalogStore for registry tests.
type fakeCatalog struct {
	verbs map[string]*VerbDefinition
	roles map[string]*RoleDefinition

	failUpserts bool
	failLookups bool
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		verbs: make(map[string]*VerbDefinition),
		roles: make(map[string]*RoleDefinition),
	}
}

func (f *fakeCatalog) UpsertVerb(def *VerbDefinition) error {
	if f.failUpserts {
		return fmt.Errorf("disk on fire")
	}
	f.verbs[def.Gerund] = def
	return nil
}

func (f *fakeCatalog) LookupVerb(gerund string) (*VerbDefinition, error) {
	if f.failLookups {
		return nil, fmt.Errorf("disk on fire")
	}
	if v, ok := f.verbs[gerund]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("%w: verb %q", errors.ErrNotFound, gerund)
}

func (f *fakeCatalog) UpsertRole(def *RoleDefinition) error {
	if f.failUpserts {
		return fmt.Errorf("disk on fire")
	}
	f.roles[def.Name] = def
	return nil
}

func (f *fakeCatalog) LookupRole(name string) (*RoleDefinition, error) {
	if f.failLookups {
		return nil, fmt.Errorf("disk on fire")
	}
	if r, ok := f.roles[name]; ok {
		return r, nil
	}
	return nil, fmt.Errorf("%w: role %q", errors.ErrNotFound, name)
}

func TestVerbRegistrySeed(t *testing.T) {
	r := NewVerbRegistry(nil)

	v, err := r.Resolve("invoicing")
	if err != nil {
		t.Fatalf("Resolve(invoicing) failed: %v", err)
	}
	if v.Category != CategoryFinance {
		t.Errorf("expected finance category, got %q", v.Category)
	}

	// The two destructive supply-chain verbs are approval-gated.
	for _, gerund := range []string{"destroying", "disposing"} {
		v, err := r.Resolve(gerund)
		if err != nil {
			t.Fatalf("Resolve(%s) failed: %v", gerund, err)
		}
		if !v.RequiresApproval {
			t.Errorf("expected %s to require approval", gerund)
		}
	}

	sc := r.List(CategorySupplyChain)
	if len(sc) != 37 {
		t.Errorf("expected 37 supply-chain verbs, got %d", len(sc))
	}
}

func TestVerbRegistryResolveMiss(t *testing.T) {
	cat := newFakeCatalog()
	cat.verbs["yodeling"] = &VerbDefinition{ID: "verb:yodeling", Gerund: "yodeling", DangerLevel: DangerSafe}

	r := NewVerbRegistry(cat)

	// Cache miss falls through to the store and caches the result.
	v, err := r.Resolve("yodeling")
	if err != nil {
		t.Fatalf("Resolve(yodeling) failed: %v", err)
	}
	if v.Gerund != "yodeling" {
		t.Errorf("unexpected verb: %+v", v)
	}

	// Second resolve must hit the cache even if the store starts failing.
	cat.failLookups = true
	if _, err := r.Resolve("yodeling"); err != nil {
		t.Errorf("expected cached resolve to succeed, got %v", err)
	}

	// Absent everywhere: not found.
	cat.failLookups = false
	_, err = r.Resolve("unicycling")
	if !stderrors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	// Store failure on a cache miss propagates as unavailable.
	cat.failLookups = true
	_, err = r.Resolve("parasailing")
	if !stderrors.Is(err, errors.ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestVerbRegistryWriteThrough(t *testing.T) {
	cat := newFakeCatalog()
	cat.failUpserts = true
	r := NewVerbRegistry(cat)

	// A persistence failure must propagate and leave the cache untouched.
	_, err := r.Register(&VerbDefinition{Gerund: "kayaking"})
	if !stderrors.Is(err, errors.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if _, err := r.Resolve("kayaking"); !stderrors.Is(err, errors.ErrNotFound) {
		t.Errorf("phantom definition cached after failed persist: %v", err)
	}

	cat.failUpserts = false
	v, err := r.Register(&VerbDefinition{BaseForm: "kayak", Gerund: "kayaking"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if v.DangerLevel != DangerSafe {
		t.Errorf("expected default danger level, got %q", v.DangerLevel)
	}
	if cat.verbs["kayaking"] == nil {
		t.Error("definition not persisted to catalog store")
	}
	if _, err := r.Resolve("kayaking"); err != nil {
		t.Errorf("registered verb not cached: %v", err)
	}

	// Gerund derivation from the base form when the gerund is omitted.
	v, err = r.Register(&VerbDefinition{BaseForm: "sail"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if v.Gerund != "sailing" {
		t.Errorf("expected derived gerund \"sailing\", got %q", v.Gerund)
	}
}

func TestVerbRegistryValidation(t *testing.T) {
	r := NewVerbRegistry(nil)

	if _, err := r.Register(&VerbDefinition{}); !stderrors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty gerund, got %v", err)
	}
	if _, err := r.Register(&VerbDefinition{Gerund: "flying", DangerLevel: "radioactive"}); !stderrors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for bad danger level, got %v", err)
	}
}

func TestRoleCapabilitiesInheritance(t *testing.T) {
	r := NewRoleRegistry(nil)

	senior, err := r.Capabilities("senior_developer")
	if err != nil {
		t.Fatalf("Capabilities(senior_developer) failed: %v", err)
	}
	dev, err := r.Capabilities("developer")
	if err != nil {
		t.Fatalf("Capabilities(developer) failed: %v", err)
	}

	// The child's effective set is a superset of the parent's.
	devSet := make(map[string]bool)
	for _, c := range senior {
		devSet[c] = true
	}
	for _, c := range dev {
		if !devSet[c] {
			t.Errorf("senior_developer is missing inherited capability %q", c)
		}
	}

	// And includes its own capabilities.
	if !devSet["deploying"] {
		t.Error("senior_developer is missing its own capability \"deploying\"")
	}
}

func TestRoleCapabilitiesCycle(t *testing.T) {
	r := NewRoleRegistry(nil)

	// Build a cycle a -> b -> a through direct registration.
	if _, err := r.Register(&RoleDefinition{Name: "a", Capabilities: []string{"reading"}, ParentRole: "b"}); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Register(&RoleDefinition{Name: "b", Capabilities: []string{"writing"}, ParentRole: "a"}); err != nil {
		t.Fatal(err)
	}

	caps, err := r.Capabilities("a")
	if err != nil {
		t.Fatalf("Capabilities on cyclic chain failed: %v", err)
	}
	// Recursion must terminate with the union gathered before the cycle.
	want := map[string]bool{"reading": true, "writing": true}
	if len(caps) != len(want) {
		t.Fatalf("expected %d capabilities, got %v", len(want), caps)
	}
	for _, c := range caps {
		if !want[c] {
			t.Errorf("unexpected capability %q", c)
		}
	}
}

func TestRoleCapabilitiesDanglingParent(t *testing.T) {
	r := NewRoleRegistry(nil)

	if _, err := r.Register(&RoleDefinition{Name: "intern", Capabilities: []string{"reading"}, ParentRole: "ghost"}); err != nil {
		t.Fatal(err)
	}

	// A dangling parent silently ends the chain.
	caps, err := r.Capabilities("intern")
	if err != nil {
		t.Fatalf("Capabilities failed: %v", err)
	}
	if len(caps) != 1 || caps[0] != "reading" {
		t.Errorf("expected [reading], got %v", caps)
	}
}

func TestRoleRegistryValidation(t *testing.T) {
	r := NewRoleRegistry(nil)

	if _, err := r.Register(&RoleDefinition{}); !stderrors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty name, got %v", err)
	}
	if _, err := r.Register(&RoleDefinition{Name: "loop", ParentRole: "loop"}); !stderrors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for self-parent, got %v", err)
	}
}

func TestSuggest(t *testing.T) {
	r := NewVerbRegistry(nil)

	got := r.Suggest("invoicng")
	found := false
	for _, s := range got {
		if s == "invoicing" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected \"invoicing\" among suggestions, got %v", got)
	}
}
