package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/actionsemantics/sage/pkg/graph"
)

// stubRelations is an in-memory RelationReader over a fixed adjacency list.
type stubRelations struct {
	// outgoing: node -> predicate -> targets
	outgoing map[string]map[string][]string
	// incoming: node -> (subject, predicate) pairs
	incoming map[string][]graph.IncomingEdge
	// failing nodes return a lookup error
	failing map[string]bool
}

func (s *stubRelations) GetOutgoingRelationships(_ context.Context, _, id string) (map[string][]string, error) {
	if s.failing[id] {
		return nil, fmt.Errorf("lookup failed for %s", id)
	}
	return s.outgoing[id], nil
}

func (s *stubRelations) GetIncomingRelationships(_ context.Context, _, id string) ([]graph.IncomingEdge, error) {
	if s.failing[id] {
		return nil, fmt.Errorf("lookup failed for %s", id)
	}
	return s.incoming[id], nil
}

// chainGraph builds A -performs-> B -uses-> C with matching incoming edges.
func chainGraph() *stubRelations {
	return &stubRelations{
		outgoing: map[string]map[string][]string{
			"A": {"performs": {"B"}},
			"B": {"uses": {"C"}},
		},
		incoming: map[string][]graph.IncomingEdge{
			"B": {{Subject: "A", Predicate: "performs"}},
			"C": {{Subject: "B", Predicate: "uses"}},
		},
		failing: map[string]bool{},
	}
}

func nodeIDs(result *graph.TraversalResult) map[string]bool {
	ids := make(map[string]bool)
	for _, n := range result.Nodes {
		ids[n.ID] = true
	}
	return ids
}

func TestTraverseDepthZero(t *testing.T) {
	tr := NewTraverser(chainGraph(), false)

	result, err := tr.Traverse(context.Background(), "A", 0, graph.Forward)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Nodes) != 1 || result.Nodes[0].ID != "A" {
		t.Errorf("expected singleton result, got %+v", result.Nodes)
	}
	if len(result.Edges) != 0 {
		t.Errorf("expected no edges, got %+v", result.Edges)
	}
}

func TestTraverseForward(t *testing.T) {
	tr := NewTraverser(chainGraph(), false)

	result, err := tr.Traverse(context.Background(), "A", 1, graph.Forward)
	if err != nil {
		t.Fatal(err)
	}
	ids := nodeIDs(result)
	if len(ids) != 2 || !ids["A"] || !ids["B"] {
		t.Errorf("expected nodes {A, B}, got %+v", result.Nodes)
	}
	if len(result.Edges) != 1 {
		t.Fatalf("expected one edge, got %+v", result.Edges)
	}
	e := result.Edges[0]
	if e.From != "A" || e.To != "B" || e.Predicate != "performs" {
		t.Errorf("unexpected edge %+v", e)
	}

	// One more level reaches C.
	result, err = tr.Traverse(context.Background(), "A", 2, graph.Forward)
	if err != nil {
		t.Fatal(err)
	}
	ids = nodeIDs(result)
	if len(ids) != 3 || !ids["C"] {
		t.Errorf("expected nodes {A, B, C}, got %+v", result.Nodes)
	}
}

func TestTraverseBackward(t *testing.T) {
	tr := NewTraverser(chainGraph(), false)

	result, err := tr.Traverse(context.Background(), "C", 2, graph.Backward)
	if err != nil {
		t.Fatal(err)
	}
	ids := nodeIDs(result)
	if len(ids) != 3 {
		t.Fatalf("expected nodes {A, B, C}, got %+v", result.Nodes)
	}
	// Edges keep their stored orientation regardless of walk direction.
	for _, e := range result.Edges {
		if e.From == "C" {
			t.Errorf("backward traversal produced a forward edge from C: %+v", e)
		}
	}
}

func TestTraverseCycle(t *testing.T) {
	rel := &stubRelations{
		outgoing: map[string]map[string][]string{
			"A": {"next": {"B"}},
			"B": {"next": {"A"}},
		},
		failing: map[string]bool{},
	}
	tr := NewTraverser(rel, false)

	// A two-node cycle terminates with each node appearing once.
	result, err := tr.Traverse(context.Background(), "A", 5, graph.Forward)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Nodes) != 2 {
		t.Errorf("expected 2 nodes, got %+v", result.Nodes)
	}
	if len(result.Edges) != 2 {
		t.Errorf("expected 2 edges, got %+v", result.Edges)
	}
}

func TestTraverseDegradedNeighborLookup(t *testing.T) {
	rel := chainGraph()
	rel.failing["B"] = true

	// Non-strict: B's failure costs its expansion, nothing else.
	tr := NewTraverser(rel, false)
	result, err := tr.Traverse(context.Background(), "A", 3, graph.Forward)
	if err != nil {
		t.Fatal(err)
	}
	ids := nodeIDs(result)
	if !ids["A"] || !ids["B"] || ids["C"] {
		t.Errorf("expected {A, B} without C, got %+v", result.Nodes)
	}

	// Strict: the same failure aborts the traversal.
	strict := NewTraverser(rel, true)
	if _, err := strict.Traverse(context.Background(), "A", 3, graph.Forward); err == nil {
		t.Error("expected strict traversal to fail on the bad node")
	}
}

func TestFindPaths(t *testing.T) {
	// Diamond plus a shortcut: A->B->D, A->C->D, A->D.
	rel := &stubRelations{
		outgoing: map[string]map[string][]string{
			"A": {"short": {"D"}, "left": {"B"}, "right": {"C"}},
			"B": {"down": {"D"}},
			"C": {"down": {"D"}},
		},
		failing: map[string]bool{},
	}
	tr := NewTraverser(rel, false)

	paths, err := tr.FindPaths(context.Background(), "A", "D", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 3 {
		t.Fatalf("expected 3 paths, got %+v", paths)
	}

	// Shortest first.
	if paths[0].Length != 1 || paths[1].Length != 2 || paths[2].Length != 2 {
		t.Errorf("paths not sorted by length: %+v", paths)
	}

	// Every path is simple and internally consistent.
	for _, p := range paths {
		if len(p.Nodes) != p.Length+1 || len(p.Edges) != p.Length {
			t.Errorf("inconsistent path %+v", p)
		}
		seen := make(map[string]bool)
		for _, n := range p.Nodes {
			if seen[n] {
				t.Errorf("node %q repeated in path %+v", n, p)
			}
			seen[n] = true
		}
	}
}

func TestFindPathsSelf(t *testing.T) {
	tr := NewTraverser(chainGraph(), false)

	paths, err := tr.FindPaths(context.Background(), "A", "A", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 1 || paths[0].Length != 0 {
		t.Fatalf("expected a single zero-length path, got %+v", paths)
	}
}

func TestFindPathsDepthBound(t *testing.T) {
	tr := NewTraverser(chainGraph(), false)

	// C is two hops away; a one-hop bound finds nothing.
	paths, err := tr.FindPaths(context.Background(), "A", "C", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 0 {
		t.Errorf("expected no paths within depth 1, got %+v", paths)
	}
}

func TestGetNeighborsBoth(t *testing.T) {
	tr := NewTraverser(chainGraph(), false)

	neighbors, err := tr.GetNeighbors(context.Background(), "B", graph.Both)
	if err != nil {
		t.Fatal(err)
	}
	if len(neighbors) != 2 {
		t.Fatalf("expected 2 neighbors, got %+v", neighbors)
	}
	// Deterministic order: sorted by ID.
	if neighbors[0].ID != "A" || neighbors[0].Role != "subject" {
		t.Errorf("unexpected first neighbor %+v", neighbors[0])
	}
	if neighbors[1].ID != "C" || neighbors[1].Role != "object" {
		t.Errorf("unexpected second neighbor %+v", neighbors[1])
	}
}
