package grasp

import (
	"context"
	"sync"

	"github.com/syssam/grasp/graph"
)

// Executor runs queries written in the external declarative graph query
// language against a transaction. Implementations are supplied at session
// construction; this package never parses query text itself.
type Executor interface {
	// Execute runs query under tx. The version selector pins the dialect
	// the query is interpreted under; it is empty when the session is
	// unconstrained. Params carries named query parameters and may be nil.
	Execute(ctx context.Context, tx graph.Tx, query, version string, params map[string]any) (*Result, error)
	// IsMutating reports whether executing query would have visible side
	// effects.
	IsMutating(query string) bool
	// Understands reports whether query is valid text in the executor's
	// language.
	Understands(query string) bool
}

// Prettifier is optionally implemented by executors that can reformat
// query text.
type Prettifier interface {
	Prettify(query string) (string, error)
}

// Result is a tabular query result. Row values are plain Go values; rows
// touching graph entities carry them as graph.Node / graph.Rel values,
// exported inside the transaction that produced them.
type Result struct {
	Columns []string
	Rows    []map[string]any
}

// Entities returns every graph entity referenced by the result, walking
// nested slices. A nil result yields nil.
func (r *Result) Entities() []graph.Entity {
	if r == nil {
		return nil
	}
	var out []graph.Entity
	for _, row := range r.Rows {
		for _, v := range row {
			out = appendEntities(out, v)
		}
	}
	return out
}

func appendEntities(out []graph.Entity, v any) []graph.Entity {
	switch v := v.(type) {
	case graph.Node:
		out = append(out, v)
	case graph.Rel:
		out = append(out, v)
	case []any:
		for _, e := range v {
			out = appendEntities(out, e)
		}
	}
	return out
}

// classCache memoizes the one-bit mutating classification per query text.
// The cache is scoped to a version selector: a version change invalidates
// it, since query syntax valid in one dialect may be rejected in another.
type classCache struct {
	mu       sync.Mutex
	version  string
	mutating map[string]bool
}

func newClassCache() *classCache {
	return &classCache{mutating: make(map[string]bool)}
}

func (c *classCache) lookup(query, version string, classify func(string) bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.version != version {
		c.version = version
		c.mutating = make(map[string]bool)
	}
	if v, ok := c.mutating[query]; ok {
		return v
	}
	v := classify(query)
	c.mutating[query] = v
	return v
}
