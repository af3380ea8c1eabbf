// Package export transforms traversal results into the D3 force-graph JSON
// consumed by graph visualization frontends.
package export

import "github.com/actionsemantics/sage/pkg/graph"

// D3Node represents a node in the D3 force-directed graph.
type D3Node struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Kind  string `json:"kind,omitempty"`
	Group string `json:"group,omitempty"`
}

// D3Link represents a link/edge in the D3 force-directed graph.
type D3Link struct {
	Source   string  `json:"source"`
	Target   string  `json:"target"`
	Relation string  `json:"relation"`
	Weight   float64 `json:"weight,omitempty"`
}

// D3Graph represents the full graph structure for D3.js.
type D3Graph struct {
	Nodes []D3Node `json:"nodes"`
	Links []D3Link `json:"links"`
}

// FromTraversal converts a traversal result into a D3 graph. Parallel edges
// between the same pair over the same predicate collapse into one link with
// an increased weight.
func FromTraversal(result *graph.TraversalResult) *D3Graph {
	g := &D3Graph{
		Nodes: make([]D3Node, 0, len(result.Nodes)),
		Links: make([]D3Link, 0, len(result.Edges)),
	}

	for _, n := range result.Nodes {
		ns, _ := graph.SplitRef(n.ID)
		g.Nodes = append(g.Nodes, D3Node{
			ID:    n.ID,
			Name:  n.Label,
			Kind:  n.Type,
			Group: ns,
		})
	}

	index := make(map[string]int)
	for _, e := range result.Edges {
		key := e.From + "\x00" + e.Predicate + "\x00" + e.To
		if i, ok := index[key]; ok {
			g.Links[i].Weight++
			continue
		}
		index[key] = len(g.Links)
		g.Links = append(g.Links, D3Link{
			Source:   e.From,
			Target:   e.To,
			Relation: e.Predicate,
			Weight:   1,
		})
	}

	return g
}

// FromPaths converts a path list into a D3 graph, merging shared segments.
func FromPaths(paths []graph.Path) *D3Graph {
	g := &D3Graph{Nodes: []D3Node{}, Links: []D3Link{}}

	nodeSeen := make(map[string]bool)
	linkSeen := make(map[string]bool)

	for _, p := range paths {
		for _, id := range p.Nodes {
			if nodeSeen[id] {
				continue
			}
			nodeSeen[id] = true
			_, local := graph.SplitRef(id)
			g.Nodes = append(g.Nodes, D3Node{ID: id, Name: local})
		}
		for i := 0; i+1 < len(p.Nodes); i++ {
			relation := ""
			if i < len(p.Edges) {
				relation = p.Edges[i]
			}
			key := p.Nodes[i] + "\x00" + relation + "\x00" + p.Nodes[i+1]
			if linkSeen[key] {
				continue
			}
			linkSeen[key] = true
			g.Links = append(g.Links, D3Link{
				Source:   p.Nodes[i],
				Target:   p.Nodes[i+1],
				Relation: relation,
				Weight:   1,
			})
		}
	}

	return g
}
