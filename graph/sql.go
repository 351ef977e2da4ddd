package graph

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// schema is the fixed two-table graph layout. Relationship endpoints are
// enforced with foreign keys so that a dangling endpoint surfaces as a
// constraint violation inside the offending transaction.
const schema = `
CREATE TABLE IF NOT EXISTS nodes (
	id    INTEGER PRIMARY KEY AUTOINCREMENT,
	attrs BLOB NOT NULL
);
CREATE TABLE IF NOT EXISTS rels (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	start_id INTEGER NOT NULL REFERENCES nodes (id) ON DELETE CASCADE,
	end_id   INTEGER NOT NULL REFERENCES nodes (id) ON DELETE CASCADE,
	kind     TEXT NOT NULL,
	attrs    BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS rels_start ON rels (start_id);
CREATE INDEX IF NOT EXISTS rels_end ON rels (end_id);
`

// The store's fixed SQL surface. Statements listed here are prepared at
// Open up to the configured plan-cache size.
const (
	stmtInsertNode = "INSERT INTO nodes (attrs) VALUES (?)"
	stmtInsertRel  = "INSERT INTO rels (start_id, end_id, kind, attrs) VALUES (?, ?, ?, ?)"
	stmtSelectNode = "SELECT attrs FROM nodes WHERE id = ?"
	stmtSelectAll  = "SELECT id, attrs FROM nodes ORDER BY id"
	stmtSelectRels = "SELECT id, start_id, end_id, kind, attrs FROM rels ORDER BY id"
	stmtUpdateNode = "UPDATE nodes SET attrs = ? WHERE id = ?"
	stmtUpdateRel  = "UPDATE rels SET attrs = ? WHERE id = ?"
	stmtDeleteNode = "DELETE FROM nodes WHERE id = ?"
	stmtDeleteRel  = "DELETE FROM rels WHERE id = ?"
)

var storeStmts = []string{
	stmtInsertNode, stmtInsertRel,
	stmtSelectNode, stmtSelectAll, stmtSelectRels,
	stmtUpdateNode, stmtUpdateRel,
	stmtDeleteNode, stmtDeleteRel,
}

// SQLStore is a Store backed by an embedded SQL engine. The default
// construction path (Open) uses an in-memory sqlite database tuned by a
// Config; OpenDB wraps an externally managed *sql.DB instead.
type SQLStore struct {
	db    *sql.DB
	stmts *stmtCache
}

// Open creates a private in-memory store with the given resource profile
// and installs the graph schema. The store lives until Close.
func Open(cfg Config) (*SQLStore, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, NewStartupError("open engine", err)
	}
	// A single connection keeps every transaction on the same in-memory
	// database; additional connections would each see their own.
	db.SetMaxOpenConns(1)
	ctx := context.Background()
	for _, pragma := range cfg.pragmas() {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, NewStartupError(fmt.Sprintf("apply %q", pragma), err)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, NewStartupError("install schema", err)
	}
	stmts := newStmtCache(cfg.PlanCacheSize)
	if err := stmts.prepare(ctx, db, storeStmts); err != nil {
		_ = stmts.close()
		_ = db.Close()
		return nil, NewStartupError("prepare statements", err)
	}
	return &SQLStore{db: db, stmts: stmts}, nil
}

// OpenDB wraps an externally managed database handle. No schema is
// installed, no pragmas are applied and no statements are prepared; the
// caller remains responsible for the database's setup.
func OpenDB(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, stmts: newStmtCache(0)}
}

// pragmas renders the config into engine directives.
func (c Config) pragmas() []string {
	// Rollback needs a live journal; with journal_mode OFF the engine
	// cannot undo a transaction. The non-durable profile keeps the
	// journal in memory instead of disabling it.
	journal := "MEMORY"
	if c.DurabilityLog {
		journal = "DELETE"
	}
	return []string{
		"PRAGMA foreign_keys = ON",
		fmt.Sprintf("PRAGMA journal_mode = %s", journal),
		fmt.Sprintf("PRAGMA cache_size = -%d", c.PageCacheKiB),
		fmt.Sprintf("PRAGMA soft_heap_limit = %d", c.HeapLimitBytes),
	}
}

// DB returns the underlying *sql.DB.
func (s *SQLStore) DB() *sql.DB { return s.db }

// BeginTx implements Store. Read-only intent is not enforced by the
// embedded engine; it is honored by callers at the facade level.
func (s *SQLStore) BeginTx(ctx context.Context, _ *TxOptions) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("graph: begin: %w", err)
	}
	return &sqlTx{tx: tx, stmts: s.stmts}, nil
}

// Close implements Store.
func (s *SQLStore) Close() error {
	cerr := s.stmts.close()
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("graph: close store: %w", err)
	}
	return cerr
}

var _ Store = (*SQLStore)(nil)

// sqlTx implements Tx over a single *sql.Tx.
type sqlTx struct {
	tx    *sql.Tx
	stmts *stmtCache
}

// exec runs query through the plan cache when the statement is cached.
func (t *sqlTx) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if st := t.stmts.get(query); st != nil {
		return t.tx.StmtContext(ctx, st).ExecContext(ctx, args...)
	}
	return t.tx.ExecContext(ctx, query, args...)
}

// query runs query through the plan cache when the statement is cached.
func (t *sqlTx) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if st := t.stmts.get(query); st != nil {
		return t.tx.StmtContext(ctx, st).QueryContext(ctx, args...)
	}
	return t.tx.QueryContext(ctx, query, args...)
}

// CreateNode implements Tx.
func (t *sqlTx) CreateNode(ctx context.Context, attrs Attrs) (Node, error) {
	blob, err := encodeAttrs(attrs)
	if err != nil {
		return Node{}, err
	}
	res, err := t.exec(ctx, stmtInsertNode, blob)
	if err != nil {
		return Node{}, fmt.Errorf("graph: create node: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Node{}, fmt.Errorf("graph: create node: %w", err)
	}
	return Node{ID: id, Attrs: attrs.Clone()}, nil
}

// CreateRel implements Tx.
func (t *sqlTx) CreateRel(ctx context.Context, start, end int64, kind string, attrs Attrs) (Rel, error) {
	blob, err := encodeAttrs(attrs)
	if err != nil {
		return Rel{}, err
	}
	res, err := t.exec(ctx, stmtInsertRel, start, end, kind, blob)
	if err != nil {
		return Rel{}, fmt.Errorf("graph: create relationship %s: %w", kind, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Rel{}, fmt.Errorf("graph: create relationship %s: %w", kind, err)
	}
	return Rel{ID: id, Start: start, End: end, Kind: kind, Attrs: attrs.Clone()}, nil
}

// Node implements Tx.
func (t *sqlTx) Node(ctx context.Context, id int64) (Node, error) {
	rows, err := t.query(ctx, stmtSelectNode, id)
	if err != nil {
		return Node{}, fmt.Errorf("graph: node %d: %w", id, err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return Node{}, fmt.Errorf("graph: node %d: %w", id, err)
		}
		return Node{}, NewNotFoundError("node", id)
	}
	var blob []byte
	if err := rows.Scan(&blob); err != nil {
		return Node{}, fmt.Errorf("graph: node %d: %w", id, err)
	}
	attrs, err := decodeAttrs(blob)
	if err != nil {
		return Node{}, err
	}
	return Node{ID: id, Attrs: attrs}, nil
}

// Nodes implements Tx.
func (t *sqlTx) Nodes(ctx context.Context) ([]Node, error) {
	rows, err := t.query(ctx, stmtSelectAll)
	if err != nil {
		return nil, fmt.Errorf("graph: nodes: %w", err)
	}
	defer rows.Close()
	var nodes []Node
	for rows.Next() {
		var (
			id   int64
			blob []byte
		)
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, fmt.Errorf("graph: nodes: %w", err)
		}
		attrs, err := decodeAttrs(blob)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, Node{ID: id, Attrs: attrs})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("graph: nodes: %w", err)
	}
	return nodes, nil
}

// Rels implements Tx.
func (t *sqlTx) Rels(ctx context.Context) ([]Rel, error) {
	rows, err := t.query(ctx, stmtSelectRels)
	if err != nil {
		return nil, fmt.Errorf("graph: relationships: %w", err)
	}
	defer rows.Close()
	var rels []Rel
	for rows.Next() {
		var (
			r    Rel
			blob []byte
		)
		if err := rows.Scan(&r.ID, &r.Start, &r.End, &r.Kind, &blob); err != nil {
			return nil, fmt.Errorf("graph: relationships: %w", err)
		}
		attrs, err := decodeAttrs(blob)
		if err != nil {
			return nil, err
		}
		r.Attrs = attrs
		rels = append(rels, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("graph: relationships: %w", err)
	}
	return rels, nil
}

// SetAttrs implements Tx.
func (t *sqlTx) SetAttrs(ctx context.Context, e Entity, attrs Attrs) error {
	blob, err := encodeAttrs(attrs)
	if err != nil {
		return err
	}
	var (
		stmt  string
		label string
	)
	switch e.(type) {
	case Node:
		stmt, label = stmtUpdateNode, "node"
	case Rel:
		stmt, label = stmtUpdateRel, "rel"
	default:
		return fmt.Errorf("graph: set attributes: unsupported entity type %T", e)
	}
	res, err := t.exec(ctx, stmt, blob, e.EntityID())
	if err != nil {
		return fmt.Errorf("graph: set attributes: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return NewNotFoundError(label, e.EntityID())
	}
	return nil
}

// DeleteNode implements Tx. Incident relationships are removed by the
// endpoint cascade.
func (t *sqlTx) DeleteNode(ctx context.Context, id int64) error {
	res, err := t.exec(ctx, stmtDeleteNode, id)
	if err != nil {
		return fmt.Errorf("graph: delete node %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return NewNotFoundError("node", id)
	}
	return nil
}

// DeleteRel implements Tx.
func (t *sqlTx) DeleteRel(ctx context.Context, id int64) error {
	res, err := t.exec(ctx, stmtDeleteRel, id)
	if err != nil {
		return fmt.Errorf("graph: delete relationship %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return NewNotFoundError("rel", id)
	}
	return nil
}

// Commit implements Tx.
func (t *sqlTx) Commit() error { return t.tx.Commit() }

// Rollback implements Tx. Rolling back a finished transaction is a no-op.
func (t *sqlTx) Rollback() error {
	if err := t.tx.Rollback(); err != nil && err != sql.ErrTxDone {
		return err
	}
	return nil
}

var _ Tx = (*sqlTx)(nil)
