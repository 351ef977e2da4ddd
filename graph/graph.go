package graph

import "context"

// Attrs is the exported attribute map of a store entity. Values are plain
// Go values (strings, numbers, booleans, nested maps/slices) and remain
// valid after the transaction that produced them has ended.
type Attrs map[string]any

// Clone returns a shallow copy of the attribute map.
func (a Attrs) Clone() Attrs {
	if a == nil {
		return nil
	}
	c := make(Attrs, len(a))
	for k, v := range a {
		c[k] = v
	}
	return c
}

// Entity is implemented by the value types handed out by a transaction.
// Attributes returns a value-typed map that is safe to retain after the
// transaction ends; entities themselves carry no live store references.
type Entity interface {
	// EntityID returns the store-assigned identifier.
	EntityID() int64
	// Attributes exports the entity into a self-describing attribute map.
	Attributes() Attrs
}

// Node is a graph node materialized by a transaction.
type Node struct {
	ID    int64
	Attrs Attrs
}

// EntityID implements Entity.
func (n Node) EntityID() int64 { return n.ID }

// Attributes implements Entity. The returned map includes the node
// identifier under the "id" key alongside the stored attributes.
func (n Node) Attributes() Attrs {
	m := n.Attrs.Clone()
	if m == nil {
		m = Attrs{}
	}
	m["id"] = n.ID
	return m
}

// Rel is a directed, typed relationship between two nodes.
type Rel struct {
	ID    int64
	Start int64
	End   int64
	Kind  string
	Attrs Attrs
}

// EntityID implements Entity.
func (r Rel) EntityID() int64 { return r.ID }

// Attributes implements Entity. The returned map includes the relationship
// identifier and kind under the "id" and "type" keys.
func (r Rel) Attributes() Attrs {
	m := r.Attrs.Clone()
	if m == nil {
		m = Attrs{}
	}
	m["id"] = r.ID
	m["type"] = r.Kind
	return m
}

// TxOptions holds options for starting a transaction.
type TxOptions struct {
	// ReadOnly marks the transaction as free of visible side effects.
	// Stores that cannot enforce it at the engine level may ignore it.
	ReadOnly bool
}

// Store is the handle to a live graph store. Implementations must allow
// BeginTx and Close to be called from different goroutines; everything
// else happens through transactions.
type Store interface {
	// BeginTx starts a new transaction. A nil opts is equivalent to the
	// zero TxOptions.
	BeginTx(ctx context.Context, opts *TxOptions) (Tx, error)
	// Close releases the store and its resources. The store is unusable
	// afterwards.
	Close() error
}

// Tx is a single atomic unit of graph work. Entities read or created
// through a Tx are exported eagerly as value types; no method result
// retains a reference into the transaction.
//
// A Tx must end in exactly one Commit or Rollback. Rollback after Commit
// is a no-op.
type Tx interface {
	// CreateNode inserts a node with the given attributes.
	CreateNode(ctx context.Context, attrs Attrs) (Node, error)
	// CreateRel inserts a relationship from start to end. Referencing a
	// node that does not exist is a constraint violation.
	CreateRel(ctx context.Context, start, end int64, kind string, attrs Attrs) (Rel, error)
	// Node returns the node with the given id, or a NotFoundError.
	Node(ctx context.Context, id int64) (Node, error)
	// Nodes returns every node, ordered by id.
	Nodes(ctx context.Context) ([]Node, error)
	// Rels returns every relationship, ordered by id.
	Rels(ctx context.Context) ([]Rel, error)
	// SetAttrs replaces the attributes of an existing entity.
	SetAttrs(ctx context.Context, e Entity, attrs Attrs) error
	// DeleteNode removes a node and its incident relationships.
	DeleteNode(ctx context.Context, id int64) error
	// DeleteRel removes a relationship.
	DeleteRel(ctx context.Context, id int64) error
	// Commit makes the transaction's work visible.
	Commit() error
	// Rollback discards the transaction's work.
	Rollback() error
}
