// Package service exposes the engine's operations to transport layers: the
// capability check, registry access, graph traversal, pattern queries and
// stats, all scoped to a hosted graph.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/actionsemantics/sage/internal/manager"
	"github.com/actionsemantics/sage/pkg/capability"
	"github.com/actionsemantics/sage/pkg/common/errors"
	"github.com/actionsemantics/sage/pkg/graph"
	"github.com/actionsemantics/sage/pkg/query"
	"github.com/actionsemantics/sage/pkg/registry"
)

// GraphEngineManager is the interface abstraction over the engine manager.
type GraphEngineManager interface {
	GetEngine(graphID string) (*manager.Engine, error)
	ListGraphs() ([]manager.GraphMetadata, error)
}

// GraphService handles capability, traversal and query operations.
type GraphService struct {
	manager GraphEngineManager

	// StrictNeighbors switches traversal from log-and-continue to
	// fail-fast on neighbor lookup errors.
	StrictNeighbors bool
}

// NewGraphService creates a new GraphService.
func NewGraphService(manager GraphEngineManager) *GraphService {
	return &GraphService{manager: manager}
}

// ListGraphs returns the hosted graphs.
func (s *GraphService) ListGraphs() ([]manager.GraphMetadata, error) {
	return s.manager.ListGraphs()
}

// CheckCapability decides whether a role may perform a verb.
func (s *GraphService) CheckCapability(graphID, role, verb string) (*capability.Decision, error) {
	e, err := s.getEngine(graphID)
	if err != nil {
		return nil, err
	}
	return e.Resolver.Check(role, verb)
}

// ResolveVerb returns a verb definition by gerund.
func (s *GraphService) ResolveVerb(graphID, gerund string) (*registry.VerbDefinition, error) {
	e, err := s.getEngine(graphID)
	if err != nil {
		return nil, err
	}
	return e.Verbs.Resolve(gerund)
}

// ListVerbs returns the verb catalog, optionally filtered by category.
func (s *GraphService) ListVerbs(graphID, category string) ([]*registry.VerbDefinition, error) {
	e, err := s.getEngine(graphID)
	if err != nil {
		return nil, err
	}
	return e.Verbs.List(category), nil
}

// RegisterVerb persists and caches a new verb definition.
func (s *GraphService) RegisterVerb(graphID string, def *registry.VerbDefinition) (*registry.VerbDefinition, error) {
	e, err := s.getEngine(graphID)
	if err != nil {
		return nil, err
	}
	return e.Verbs.Register(def)
}

// SuggestVerbs returns gerunds similar to the given one.
func (s *GraphService) SuggestVerbs(graphID, gerund string) ([]string, error) {
	e, err := s.getEngine(graphID)
	if err != nil {
		return nil, err
	}
	return e.Verbs.Suggest(gerund), nil
}

// ResolveRole returns a role definition by name.
func (s *GraphService) ResolveRole(graphID, name string) (*registry.RoleDefinition, error) {
	e, err := s.getEngine(graphID)
	if err != nil {
		return nil, err
	}
	return e.Roles.Resolve(name)
}

// RoleCapabilities returns a role's effective capability set, ancestors
// included.
func (s *GraphService) RoleCapabilities(graphID, name string) ([]string, error) {
	e, err := s.getEngine(graphID)
	if err != nil {
		return nil, err
	}
	return e.Roles.Capabilities(name)
}

// ListRoles returns the role catalog.
func (s *GraphService) ListRoles(graphID string) ([]*registry.RoleDefinition, error) {
	e, err := s.getEngine(graphID)
	if err != nil {
		return nil, err
	}
	return e.Roles.List(), nil
}

// RegisterRole persists and caches a new role definition.
func (s *GraphService) RegisterRole(graphID string, def *registry.RoleDefinition) (*registry.RoleDefinition, error) {
	e, err := s.getEngine(graphID)
	if err != nil {
		return nil, err
	}
	return e.Roles.Register(def)
}

// Traverse performs a breadth-first expansion from start.
func (s *GraphService) Traverse(ctx context.Context, graphID, start string, depth int, direction graph.Direction) (*graph.TraversalResult, error) {
	e, err := s.getEngine(graphID)
	if err != nil {
		return nil, err
	}
	return NewTraverser(e.Store, s.StrictNeighbors).Traverse(ctx, start, depth, direction)
}

// FindPaths enumerates simple paths between two nodes.
func (s *GraphService) FindPaths(ctx context.Context, graphID, from, to string, maxDepth int) ([]graph.Path, error) {
	e, err := s.getEngine(graphID)
	if err != nil {
		return nil, err
	}
	return NewTraverser(e.Store, s.StrictNeighbors).FindPaths(ctx, from, to, maxDepth)
}

// GetNeighbors returns the direct neighbors of a node.
func (s *GraphService) GetNeighbors(ctx context.Context, graphID, node string, direction graph.Direction) ([]graph.Neighbor, error) {
	e, err := s.getEngine(graphID)
	if err != nil {
		return nil, err
	}
	return NewTraverser(e.Store, s.StrictNeighbors).GetNeighbors(ctx, node, direction)
}

// AddTriple writes a triple into a graph.
func (s *GraphService) AddTriple(graphID string, t *graph.Triple) error {
	e, err := s.getEngine(graphID)
	if err != nil {
		return err
	}
	return e.Store.AddTriple(t)
}

// DeleteTriple soft-deletes a triple by ID.
func (s *GraphService) DeleteTriple(graphID, tripleID, deletedBy string) error {
	e, err := s.getEngine(graphID)
	if err != nil {
		return err
	}
	return e.Store.SoftDelete(tripleID, deletedBy)
}

// ExecuteQuery parses a ?field=value pattern and runs it against the store.
func (s *GraphService) ExecuteQuery(ctx context.Context, graphID, pattern string) ([]*graph.Triple, error) {
	e, err := s.getEngine(graphID)
	if err != nil {
		return nil, err
	}

	f, err := query.Parse(pattern)
	if err != nil {
		return nil, err
	}

	result, err := e.Store.QueryTriples(ctx, *f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInternal, err)
	}
	return result.Triples, nil
}

// Stats aggregates store-side frequency counts.
type Stats struct {
	TripleCount uint64         `json:"triple_count"`
	Predicates  map[string]int `json:"predicates"`
	Subjects    map[string]int `json:"subjects"`
}

// GetStats returns predicate and subject frequencies for a graph.
func (s *GraphService) GetStats(ctx context.Context, graphID string) (*Stats, error) {
	e, err := s.getEngine(graphID)
	if err != nil {
		return nil, err
	}

	predicates, err := e.Store.PredicateFrequency(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInternal, err)
	}
	subjects, err := e.Store.SubjectFrequency(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInternal, err)
	}

	return &Stats{
		TripleCount: e.Store.Count(),
		Predicates:  predicates,
		Subjects:    subjects,
	}, nil
}

// Helper to get engine with error mapping
func (s *GraphService) getEngine(graphID string) (*manager.Engine, error) {
	if graphID == "" {
		return nil, fmt.Errorf("%w: missing graph ID", errors.ErrInvalidInput)
	}
	e, err := s.manager.GetEngine(graphID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("%w: %v", errors.ErrNotFound, err)
		}
		return nil, fmt.Errorf("%w: %v", errors.ErrInternal, err)
	}
	return e, nil
}
