package grasp

import "github.com/syssam/grasp/graph"

// Index maps the logical names used in merged descriptions to the store
// identifiers of the entities they produced, so a console can re-resolve
// a name from an earlier merge. It is a derived collaborator of the
// session and is released on Stop.
type Index struct {
	nodes map[string]int64
	rels  map[string]int64
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{nodes: make(map[string]int64), rels: make(map[string]int64)}
}

// Register records the entity id behind a logical name. Re-registering a
// name overwrites the previous entry.
func (ix *Index) Register(name string, e graph.Entity) {
	switch e := e.(type) {
	case graph.Node:
		ix.nodes[name] = e.ID
	case graph.Rel:
		ix.rels[name] = e.ID
	}
}

// NodeID returns the node id registered under name.
func (ix *Index) NodeID(name string) (int64, bool) {
	id, ok := ix.nodes[name]
	return id, ok
}

// RelID returns the relationship id registered under name.
func (ix *Index) RelID(name string) (int64, bool) {
	id, ok := ix.rels[name]
	return id, ok
}

// Len returns the number of registered names.
func (ix *Index) Len() int { return len(ix.nodes) + len(ix.rels) }
