package grasp

import (
	"context"

	"github.com/syssam/grasp/graph"
)

// Merger merges a textual subgraph description into the store under the
// given transaction, returning the named entities it materialized in entry
// order. Grammatical violations in the description are reported as
// *SyntaxError, structural violations as *StructureError (or a store
// constraint violation).
type Merger interface {
	Merge(ctx context.Context, tx graph.Tx, description string) ([]NamedEntity, error)
}

// NamedEntity pairs a caller-supplied logical name with the entity the
// merge materialized for it.
type NamedEntity struct {
	Name   string
	Entity graph.Entity
}

// MergeResult is an insertion-ordered mapping from logical names to the
// exported attribute maps of their merged entities. Attributes are
// exported inside the merge transaction; the result stays valid after it.
type MergeResult struct {
	names []string
	attrs map[string]graph.Attrs
}

func newMergeResult() *MergeResult {
	return &MergeResult{attrs: make(map[string]graph.Attrs)}
}

func (r *MergeResult) add(name string, attrs graph.Attrs) {
	if _, ok := r.attrs[name]; !ok {
		r.names = append(r.names, name)
	}
	r.attrs[name] = attrs
}

// Len returns the number of named entries.
func (r *MergeResult) Len() int { return len(r.names) }

// Names returns the logical names in merge entry order.
func (r *MergeResult) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Get returns the exported attributes for a logical name.
func (r *MergeResult) Get(name string) (graph.Attrs, bool) {
	a, ok := r.attrs[name]
	return a, ok
}
