package grasp

import (
	"context"

	"github.com/syssam/grasp/graph"
)

// Projection is a visualization-ready view of a graph snapshot: node
// attribute maps under "nodes" and relationship attribute maps under
// "links". Link endpoints are emitted as "source"/"target" indices into
// Nodes, so the projection stays self-consistent however node identifiers
// are remapped for display. Entities implicated by a query result carry
// "selected": true.
type Projection struct {
	Nodes []graph.Attrs `json:"nodes"`
	Links []graph.Attrs `json:"links"`
}

// Subgraph is a full snapshot of the store's nodes and relationships,
// taken under a single transaction.
type Subgraph struct {
	nodes []graph.Node
	rels  []graph.Rel
}

// subgraphFrom reads the whole graph under tx.
func subgraphFrom(ctx context.Context, tx graph.Tx) (*Subgraph, error) {
	nodes, err := tx.Nodes(ctx)
	if err != nil {
		return nil, err
	}
	rels, err := tx.Rels(ctx)
	if err != nil {
		return nil, err
	}
	return &Subgraph{nodes: nodes, rels: rels}, nil
}

// selection is the set of entities a query result implicated, used only
// for highlighting. It never mutates the graph.
type selection struct {
	nodes map[int64]bool
	rels  map[int64]bool
}

// selectionFrom derives the selection from a query result. A nil result
// selects nothing.
func selectionFrom(res *Result) selection {
	sel := selection{nodes: make(map[int64]bool), rels: make(map[int64]bool)}
	for _, e := range res.Entities() {
		switch e := e.(type) {
		case graph.Node:
			sel.nodes[e.ID] = true
		case graph.Rel:
			sel.rels[e.ID] = true
		}
	}
	return sel
}

// project builds the visualization view of the snapshot, marking the
// selection. Relationships whose endpoints are not part of the snapshot
// are dropped; both slices are always non-nil.
func (g *Subgraph) project(sel selection) *Projection {
	index := make(map[int64]int, len(g.nodes))
	nodes := make([]graph.Attrs, 0, len(g.nodes))
	for i, n := range g.nodes {
		attrs := n.Attributes()
		if sel.nodes[n.ID] {
			attrs["selected"] = true
		}
		index[n.ID] = i
		nodes = append(nodes, attrs)
	}
	links := make([]graph.Attrs, 0, len(g.rels))
	for _, r := range g.rels {
		source, ok := index[r.Start]
		if !ok {
			continue
		}
		target, ok := index[r.End]
		if !ok {
			continue
		}
		attrs := r.Attributes()
		attrs["source"] = source
		attrs["target"] = target
		if sel.rels[r.ID] {
			attrs["selected"] = true
		}
		links = append(links, attrs)
	}
	return &Projection{Nodes: nodes, Links: links}
}
