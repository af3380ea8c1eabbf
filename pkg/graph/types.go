// Package graph defines the data model shared by the registries, the
// capability resolver and the traversal engine: triples with optional
// structured context, and the node/edge/path shapes produced by traversal.
//
// Subject, predicate and object are opaque namespaced identifiers
// ("ns:id"). Triples are immutable once written except for soft delete;
// every read path must exclude soft-deleted rows.
package graph

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultNamespace is assumed when a node reference carries no "ns:" prefix.
const DefaultNamespace = "default"

// Triple is a single subject-predicate-object fact.
type Triple struct {
	ID         string     `json:"id"`
	Subject    string     `json:"subject"`
	Predicate  string     `json:"predicate"`
	Object     string     `json:"object"`
	Context    *Context   `json:"context,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	CreatedBy  string     `json:"created_by,omitempty"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
	Version    int        `json:"version"`
	Confidence *float64   `json:"confidence,omitempty"`
}

// NewTriple creates a triple with a fresh ID and creation timestamp.
func NewTriple(subject, predicate, object string) *Triple {
	return &Triple{
		ID:        uuid.NewString(),
		Subject:   subject,
		Predicate: predicate,
		Object:    object,
		CreatedAt: time.Now().UTC(),
		Version:   1,
	}
}

// IsValid checks if the triple has all required fields.
func (t *Triple) IsValid() bool {
	return t.Subject != "" && t.Predicate != "" && t.Object != ""
}

// IsDeleted reports whether the triple has been soft-deleted.
func (t *Triple) IsDeleted() bool {
	return t.DeletedAt != nil
}

// String returns a human-readable representation of the triple.
func (t *Triple) String() string {
	return fmt.Sprintf("<%s, %s, %s>", t.Subject, t.Predicate, t.Object)
}

// Context carries optional structured annotations for a triple. All fields
// are optional; absence means "unknown". Extension fields that do not fit
// the named sub-structures round-trip through Extra.
type Context struct {
	Temporal     *TemporalContext     `json:"temporal,omitempty"`
	Spatial      *SpatialContext      `json:"spatial,omitempty"`
	Causal       *CausalContext       `json:"causal,omitempty"`
	Relational   *RelationalContext   `json:"relational,omitempty"`
	Instrumental *InstrumentalContext `json:"instrumental,omitempty"`

	Source     string         `json:"source,omitempty"`
	Inferred   bool           `json:"inferred,omitempty"`
	Prediction bool           `json:"prediction,omitempty"`
	Confidence *float64       `json:"confidence,omitempty"`
	Extra      map[string]any `json:"extra,omitempty"`
}

// TemporalContext describes when the fact holds.
type TemporalContext struct {
	Start     *time.Time `json:"start,omitempty"`
	End       *time.Time `json:"end,omitempty"`
	Duration  string     `json:"duration,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// SpatialContext describes where the fact holds.
type SpatialContext struct {
	Location    string    `json:"location,omitempty"`
	Coordinates []float64 `json:"coordinates,omitempty"`
	Address     string    `json:"address,omitempty"`
	Region      string    `json:"region,omitempty"`
}

// CausalContext describes why the action happened.
type CausalContext struct {
	Reason     string `json:"reason,omitempty"`
	Goal       string `json:"goal,omitempty"`
	Motivation string `json:"motivation,omitempty"`
}

// RelationalContext describes who else was involved.
type RelationalContext struct {
	Team          string   `json:"team,omitempty"`
	Collaborators []string `json:"collaborators,omitempty"`
	Supervisor    string   `json:"supervisor,omitempty"`
	Client        string   `json:"client,omitempty"`
}

// InstrumentalContext describes how the action was performed.
type InstrumentalContext struct {
	Tools     []string `json:"tools,omitempty"`
	Methods   []string `json:"methods,omitempty"`
	Process   string   `json:"process,omitempty"`
	Technique string   `json:"technique,omitempty"`
}

// Filter selects triples by exact match on any combination of fields.
// Empty fields are unconstrained. Soft-deleted triples are always excluded.
type Filter struct {
	Subject   string `json:"subject,omitempty"`
	Predicate string `json:"predicate,omitempty"`
	Object    string `json:"object,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	Offset    int    `json:"offset,omitempty"`
}

// QueryResult is the store's answer to a filter query, newest first.
type QueryResult struct {
	Triples []*Triple `json:"triples"`
	Total   int       `json:"total"`
}

// Direction selects which edges to follow during traversal.
type Direction string

const (
	// Forward follows edges where the current node is the subject.
	Forward Direction = "forward"
	// Backward follows edges where the current node is the object.
	Backward Direction = "backward"
	// Both merges forward and backward expansion.
	Both Direction = "both"
)

// ParseDirection normalizes a direction string, defaulting to Forward.
func ParseDirection(s string) Direction {
	switch Direction(strings.ToLower(s)) {
	case Backward:
		return Backward
	case Both:
		return Both
	default:
		return Forward
	}
}

// GraphNode is a node in a traversal result. Type records the structural
// position ("subject" or "object") the node was discovered in, not a
// schema-level type.
type GraphNode struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Label string `json:"label"`
}

// GraphEdge is a directed edge in a traversal result.
type GraphEdge struct {
	From      string  `json:"from"`
	To        string  `json:"to"`
	Predicate string  `json:"predicate"`
	Weight    float64 `json:"weight,omitempty"`
}

// TraversalResult is the output of a breadth-first expansion.
type TraversalResult struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// Path is one simple route between two nodes. Length counts edges.
type Path struct {
	Nodes  []string `json:"nodes"`
	Edges  []string `json:"edges"`
	Length int      `json:"length"`
}

// Neighbor is one adjacent node returned by a neighbor lookup. Role is
// the structural position of the neighbor ("subject" when the neighbor
// points at the queried node, "object" when the queried node points at it).
type Neighbor struct {
	ID        string `json:"id"`
	Predicate string `json:"predicate"`
	Role      string `json:"role"`
}

// IncomingEdge is one (subject, predicate) pair pointing at a node.
type IncomingEdge struct {
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
}

// SplitRef splits a namespaced reference "ns:id" into its parts. A bare
// reference maps to the default namespace.
func SplitRef(ref string) (namespace, id string) {
	if i := strings.Index(ref, ":"); i > 0 {
		return ref[:i], ref[i+1:]
	}
	return DefaultNamespace, ref
}

// JoinRef joins a namespace and id back into a reference.
func JoinRef(namespace, id string) string {
	if namespace == "" || namespace == DefaultNamespace {
		return id
	}
	return namespace + ":" + id
}
