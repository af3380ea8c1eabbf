// Package capability decides whether a role may perform a verb. The
// decision is a pure function of registry state; denials are ordinary
// result values, never errors.
package capability

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/actionsemantics/sage/pkg/common/errors"
	"github.com/actionsemantics/sage/pkg/registry"
)

// Decision is the outcome of a capability check.
type Decision struct {
	Allowed          bool                 `json:"allowed"`
	Reason           string               `json:"reason,omitempty"`
	RequiresApproval bool                 `json:"requires_approval,omitempty"`
	DangerLevel      registry.DangerLevel `json:"danger_level,omitempty"`
}

// Resolver combines the two registries into allow/deny verdicts.
type Resolver struct {
	verbs *registry.VerbRegistry
	roles *registry.RoleRegistry
}

// NewResolver creates a resolver over the given registries.
func NewResolver(verbs *registry.VerbRegistry, roles *registry.RoleRegistry) *Resolver {
	return &Resolver{verbs: verbs, roles: roles}
}

// Check evaluates whether roleName may perform the verb identified by
// gerund. Evaluation order, each step returning immediately on match:
//
//  1. resolve both; a missing role or verb denies with a reason
//  2. wildcard capability allows
//  3. own capability list contains the gerund: allow
//  4. own forbidden list contains the gerund: deny
//  5. parent chain: an allow anywhere up the chain allows, annotated
//  6. verb-level required_role gate
//  7. default deny
//
// Step 3 is deliberately checked before step 4: a verb listed in both
// capabilities and forbidden_verbs is allowed. That ordering is the
// defined behavior and must not be reversed.
//
// A registry lookup failure other than not-found is returned as an error:
// without registry state there is no safe verdict.
func (r *Resolver) Check(roleName, gerund string) (*Decision, error) {
	verb, err := r.verbs.Resolve(gerund)
	if err != nil {
		if stderrors.Is(err, errors.ErrNotFound) {
			return &Decision{
				Allowed: false,
				Reason:  fmt.Sprintf("verb %q is not registered", gerund),
			}, nil
		}
		return nil, err
	}

	return r.check(roleName, verb, make(map[string]bool))
}

// check evaluates one role against a resolved verb. visited guards the
// parent-chain recursion against role graph cycles.
func (r *Resolver) check(roleName string, verb *registry.VerbDefinition, visited map[string]bool) (*Decision, error) {
	if visited[roleName] {
		// Cycle in the parent chain: stop without a verdict.
		return &Decision{
			Allowed: false,
			Reason:  fmt.Sprintf("role inheritance cycle detected at %q", roleName),
		}, nil
	}
	visited[roleName] = true

	role, err := r.roles.Resolve(roleName)
	if err != nil {
		if stderrors.Is(err, errors.ErrNotFound) {
			return &Decision{
				Allowed: false,
				Reason:  fmt.Sprintf("role %q is not registered", roleName),
			}, nil
		}
		return nil, err
	}

	// Step 2: wildcard.
	if role.HasWildcard() {
		return &Decision{
			Allowed:          true,
			Reason:           fmt.Sprintf("role %q has unrestricted capabilities", role.Name),
			RequiresApproval: verb.RequiresApproval,
			DangerLevel:      verb.DangerLevel,
		}, nil
	}

	// Step 3: direct capability. Checked before the forbidden list on
	// purpose; see Check.
	for _, c := range role.Capabilities {
		if c == verb.Gerund {
			return &Decision{
				Allowed:          true,
				Reason:           fmt.Sprintf("role %q has capability %q", role.Name, verb.Gerund),
				RequiresApproval: verb.RequiresApproval,
				DangerLevel:      verb.DangerLevel,
			}, nil
		}
	}

	// Step 4: explicit prohibition.
	for _, f := range role.ForbiddenVerbs {
		if f == verb.Gerund {
			return &Decision{
				Allowed: false,
				Reason:  fmt.Sprintf("verb %q is explicitly forbidden for role %q", verb.Gerund, role.Name),
			}, nil
		}
	}

	// Step 5: inheritance. Only an allow propagates; a parent denial falls
	// through to the remaining steps for this role.
	if role.ParentRole != "" {
		parentDecision, err := r.check(role.ParentRole, verb, visited)
		if err != nil {
			return nil, err
		}
		if parentDecision.Allowed {
			parentDecision.Reason = fmt.Sprintf("inherited from role %q: %s", role.ParentRole, parentDecision.Reason)
			return parentDecision, nil
		}
	}

	// Step 6: verb-level role gate.
	if len(verb.RequiredRole) > 0 {
		for _, required := range verb.RequiredRole {
			if required == role.Name {
				return &Decision{
					Allowed:          true,
					Reason:           fmt.Sprintf("role %q is in the required roles for %q", role.Name, verb.Gerund),
					RequiresApproval: verb.RequiresApproval,
					DangerLevel:      verb.DangerLevel,
				}, nil
			}
		}
		return &Decision{
			Allowed: false,
			Reason:  fmt.Sprintf("verb %q requires one of roles [%s]", verb.Gerund, strings.Join(verb.RequiredRole, ", ")),
		}, nil
	}

	// Step 7: default deny.
	return &Decision{
		Allowed: false,
		Reason:  fmt.Sprintf("role %q does not have capability %q", role.Name, verb.Gerund),
	}, nil
}
