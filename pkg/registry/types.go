// Package registry holds the canonical catalogs of action verbs and roles.
// Both registries follow the same pattern: a seed catalog loaded at
// construction, an in-memory cache safe for concurrent readers, and
// write-through registration against the backing catalog store.
package registry

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/actionsemantics/sage/pkg/common/errors"
)

// DangerLevel is an ordinal severity tag attached to a verb.
type DangerLevel string

const (
	DangerSafe     DangerLevel = "safe"
	DangerLow      DangerLevel = "low"
	DangerMedium   DangerLevel = "medium"
	DangerHigh     DangerLevel = "high"
	DangerCritical DangerLevel = "critical"
)

// IsValid checks if the danger level is one of the known values.
func (d DangerLevel) IsValid() bool {
	switch d {
	case DangerSafe, DangerLow, DangerMedium, DangerHigh, DangerCritical:
		return true
	}
	return false
}

// VerbDefinition describes one permissible action. Gerund is the canonical
// lookup key and must be unique within the registry.
type VerbDefinition struct {
	ID               string      `json:"id"`
	Gerund           string      `json:"gerund"`
	BaseForm         string      `json:"base_form"`
	Category         string      `json:"category,omitempty"`
	GS1Step          string      `json:"gs1_step,omitempty"`
	ONetTaskID       string      `json:"onet_task_id,omitempty"`
	RequiredRole     []string    `json:"required_role,omitempty"`
	DangerLevel      DangerLevel `json:"danger_level"`
	RequiresApproval bool        `json:"requires_approval,omitempty"`
	Description      string      `json:"description,omitempty"`
	Examples         []string    `json:"examples,omitempty"`
}

// Validate rejects malformed definitions before any cache or store mutation.
// It fills in defaults (ID, base form, danger level) on a valid definition.
func (v *VerbDefinition) Validate() error {
	if v == nil {
		return fmt.Errorf("%w: nil verb definition", errors.ErrInvalidInput)
	}
	if v.Gerund == "" {
		return fmt.Errorf("%w: verb gerund is required", errors.ErrInvalidInput)
	}
	if v.DangerLevel == "" {
		v.DangerLevel = DangerSafe
	}
	if !v.DangerLevel.IsValid() {
		return fmt.Errorf("%w: unknown danger level %q", errors.ErrInvalidInput, v.DangerLevel)
	}
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}

// RoleDefinition describes a named bundle of capabilities. Name is the
// canonical lookup key. Capabilities may contain the sentinel "*" meaning
// unrestricted. ParentRole forms a chain, one parent at most.
type RoleDefinition struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Capabilities   []string `json:"capabilities"`
	ForbiddenVerbs []string `json:"forbidden_verbs,omitempty"`
	ParentRole     string   `json:"parent_role,omitempty"`
	ONetCode       string   `json:"onet_code,omitempty"`
	Description    string   `json:"description,omitempty"`
}

// Wildcard is the capability sentinel granting every verb.
const Wildcard = "*"

// Validate rejects malformed definitions and fills in a generated ID.
func (r *RoleDefinition) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: nil role definition", errors.ErrInvalidInput)
	}
	if r.Name == "" {
		return fmt.Errorf("%w: role name is required", errors.ErrInvalidInput)
	}
	if r.ParentRole == r.Name && r.ParentRole != "" {
		return fmt.Errorf("%w: role %q cannot be its own parent", errors.ErrInvalidInput, r.Name)
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// HasWildcard reports whether the role's own capability list contains "*".
func (r *RoleDefinition) HasWildcard() bool {
	for _, c := range r.Capabilities {
		if c == Wildcard {
			return true
		}
	}
	return false
}

// CatalogStore persists verb and role definitions across instances. Lookups
// return errors.ErrNotFound (wrapped) when the definition is absent.
type CatalogStore interface {
	UpsertVerb(def *VerbDefinition) error
	LookupVerb(gerund string) (*VerbDefinition, error)
	UpsertRole(def *RoleDefinition) error
	LookupRole(name string) (*RoleDefinition, error)
}
