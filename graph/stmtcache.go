package graph

import (
	"context"
	"database/sql"
	"errors"
	"sync"
)

// stmtCache holds prepared statements for the store's fixed SQL surface,
// keyed by SQL text and bounded by the plan-cache size. Statements are
// prepared up front while no transaction holds the store's connection;
// queries beyond the bound fall back to unprepared execution.
type stmtCache struct {
	mu    sync.Mutex
	max   int
	stmts map[string]*sql.Stmt
}

func newStmtCache(max int) *stmtCache {
	return &stmtCache{max: max, stmts: make(map[string]*sql.Stmt)}
}

// prepare fills the cache from queries, stopping at the bound.
func (c *stmtCache) prepare(ctx context.Context, db *sql.DB, queries []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, q := range queries {
		if len(c.stmts) >= c.max {
			return nil
		}
		st, err := db.PrepareContext(ctx, q)
		if err != nil {
			return err
		}
		c.stmts[q] = st
	}
	return nil
}

// get returns the cached statement for query, or nil when the query is
// uncached and should run unprepared.
func (c *stmtCache) get(query string) *sql.Stmt {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stmts[query]
}

// close releases every cached statement.
func (c *stmtCache) close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var errs []error
	for _, st := range c.stmts {
		if err := st.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	c.stmts = make(map[string]*sql.Stmt)
	return errors.Join(errs...)
}
