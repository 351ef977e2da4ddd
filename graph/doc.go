// Package graph defines the store-handle seam consumed by the session
// facade, together with a default embedded implementation.
//
// # Store and Tx
//
// A Store hands out transactions; all graph work happens through a Tx:
//
//	type Store interface {
//	    BeginTx(ctx context.Context, opts *TxOptions) (Tx, error)
//	    Close() error
//	}
//
// Every Tx method that reads or creates an entity returns a value type
// (Node or Rel) whose attributes were exported inside the transaction.
// Entity values never hold live store references, so they remain valid
// after Commit or Rollback. This is a deliberate rule of the seam: code
// above it can cache, serialize, or display entities without caring
// whether the transaction that produced them is still open.
//
// # Default store
//
// Open builds a disposable in-memory store backed by an embedded SQL
// engine (modernc.org/sqlite), tuned by a Config:
//
//	store, err := graph.Open(graph.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
// The default profile bounds the page cache and heap, keeps the rollback
// journal in memory, and caps the prepared-statement (plan) cache. It is
// meant for short-lived console sessions, not durable storage.
//
// Attribute maps are stored as msgpack blobs; relationship endpoints are
// enforced with foreign keys, so a relationship referencing a missing node
// fails inside its transaction as a constraint violation. The
// IsForeignKeyConstraintError / IsUniqueConstraintError helpers classify
// such failures across the sqlite, Postgres and MySQL error shapes.
package graph
