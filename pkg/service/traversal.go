package service

import (
	"context"
	"log/slog"
	"sort"

	"github.com/actionsemantics/sage/pkg/graph"
)

// MaxTraversalDepth is the system ceiling on caller-supplied depth bounds.
// Nothing in the algorithms self-limits beyond the depth parameter, so the
// engine clamps rather than trusting callers.
const MaxTraversalDepth = 10

// RelationReader is the neighbor-lookup dependency of the traversal engine.
type RelationReader interface {
	GetOutgoingRelationships(ctx context.Context, namespace, id string) (map[string][]string, error)
	GetIncomingRelationships(ctx context.Context, namespace, id string) ([]graph.IncomingEdge, error)
}

// Traverser walks the relationship graph through a RelationReader.
//
// By default a failed neighbor lookup is logged and treated as "no
// neighbors", so one bad node never aborts a whole search. Strict mode
// flips that to fail-fast for callers that want consistency over
// resilience.
type Traverser struct {
	relations RelationReader
	strict    bool
}

// NewTraverser creates a traverser over the given relation reader.
func NewTraverser(relations RelationReader, strict bool) *Traverser {
	return &Traverser{relations: relations, strict: strict}
}

// Traverse performs a breadth-first, depth-bounded expansion from start.
// Every reachable node appears at most once in the result; edges are
// oriented by lookup direction. An unknown start node yields a singleton
// result with zero edges.
func (t *Traverser) Traverse(ctx context.Context, start string, depth int, direction graph.Direction) (*graph.TraversalResult, error) {
	depth = clampDepth(depth)

	type queueItem struct {
		node  string
		depth int
	}

	visited := map[string]bool{start: true}
	queue := []queueItem{{node: start, depth: 0}}

	nodes := []graph.GraphNode{newGraphNode(start, "subject")}
	nodeSeen := map[string]bool{start: true}
	var edges []graph.GraphEdge

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		// The node itself stays in the result; only expansion is bounded.
		if item.depth >= depth {
			continue
		}

		neighbors, err := t.neighbors(ctx, item.node, direction)
		if err != nil {
			return nil, err
		}

		for _, n := range neighbors {
			if !nodeSeen[n.ID] {
				nodeSeen[n.ID] = true
				nodes = append(nodes, newGraphNode(n.ID, n.Role))
			}

			if n.Role == "subject" {
				// Neighbor points at the current node.
				edges = append(edges, graph.GraphEdge{From: n.ID, To: item.node, Predicate: n.Predicate})
			} else {
				edges = append(edges, graph.GraphEdge{From: item.node, To: n.ID, Predicate: n.Predicate})
			}

			if !visited[n.ID] {
				visited[n.ID] = true
				queue = append(queue, queueItem{node: n.ID, depth: item.depth + 1})
			}
		}
	}

	return &graph.TraversalResult{Nodes: nodes, Edges: edges}, nil
}

// FindPaths enumerates all simple paths (no repeated node within a path)
// from one node to another, bounded by maxDepth edges, expanding forward
// only. Results are sorted shortest first; ties keep discovery order.
func (t *Traverser) FindPaths(ctx context.Context, from, to string, maxDepth int) ([]graph.Path, error) {
	maxDepth = clampDepth(maxDepth)

	var paths []graph.Path
	visited := map[string]bool{from: true}

	err := t.walkPaths(ctx, from, to, maxDepth, visited, []string{from}, nil, &paths)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(paths, func(i, j int) bool {
		return paths[i].Length < paths[j].Length
	})
	return paths, nil
}

// walkPaths is the depth-first recursion behind FindPaths. visited is
// scoped to the current branch: nodes are released on backtrack so sibling
// branches may reuse them.
func (t *Traverser) walkPaths(ctx context.Context, current, to string, maxDepth int, visited map[string]bool, nodePath, edgePath []string, paths *[]graph.Path) error {
	if current == to {
		*paths = append(*paths, graph.Path{
			Nodes:  append([]string(nil), nodePath...),
			Edges:  append([]string(nil), edgePath...),
			Length: len(edgePath),
		})
		return nil
	}
	if len(edgePath) >= maxDepth {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	neighbors, err := t.neighbors(ctx, current, graph.Forward)
	if err != nil {
		return err
	}

	for _, n := range neighbors {
		if visited[n.ID] {
			continue
		}
		visited[n.ID] = true
		err := t.walkPaths(ctx, n.ID, to, maxDepth, visited,
			append(nodePath, n.ID), append(edgePath, n.Predicate), paths)
		delete(visited, n.ID)
		if err != nil {
			return err
		}
	}
	return nil
}

// GetNeighbors returns the adjacent nodes of a node in the given direction.
// In non-strict mode a store failure degrades to an empty neighbor list.
func (t *Traverser) GetNeighbors(ctx context.Context, node string, direction graph.Direction) ([]graph.Neighbor, error) {
	return t.neighbors(ctx, node, direction)
}

func (t *Traverser) neighbors(ctx context.Context, node string, direction graph.Direction) ([]graph.Neighbor, error) {
	namespace, id := graph.SplitRef(node)

	var out []graph.Neighbor

	if direction == graph.Forward || direction == graph.Both {
		outgoing, err := t.relations.GetOutgoingRelationships(ctx, namespace, id)
		if err != nil {
			if t.strict {
				return nil, err
			}
			slog.Warn("outgoing relationship lookup failed, treating as no neighbors", "node", node, "error", err)
		}
		for pred, targets := range outgoing {
			for _, target := range targets {
				out = append(out, graph.Neighbor{ID: target, Predicate: pred, Role: "object"})
			}
		}
	}

	if direction == graph.Backward || direction == graph.Both {
		incoming, err := t.relations.GetIncomingRelationships(ctx, namespace, id)
		if err != nil {
			if t.strict {
				return nil, err
			}
			slog.Warn("incoming relationship lookup failed, treating as no neighbors", "node", node, "error", err)
		}
		for _, edge := range incoming {
			out = append(out, graph.Neighbor{ID: edge.Subject, Predicate: edge.Predicate, Role: "subject"})
		}
	}

	// Keep expansion order deterministic; map iteration above is not.
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ID != out[j].ID {
			return out[i].ID < out[j].ID
		}
		return out[i].Predicate < out[j].Predicate
	})
	return out, nil
}

func newGraphNode(id, role string) graph.GraphNode {
	_, local := graph.SplitRef(id)
	return graph.GraphNode{ID: id, Type: role, Label: local}
}

func clampDepth(depth int) int {
	if depth < 0 {
		return 0
	}
	if depth > MaxTraversalDepth {
		return MaxTraversalDepth
	}
	return depth
}
