package grasp

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/syssam/grasp/graph"
)

// Session is a transactional facade over a single graph store handle.
// Every public operation that touches the store opens its own transaction
// and commits on success; no transaction is held across calls.
//
// A session either owns its store (created privately by New) or borrows
// one supplied by the caller (NewWithStore). Borrowed handles are never
// closed by the session.
//
// Sessions impose no locking of their own. Concurrent callers must
// serialize, or rely on the store's concurrency control; calling any
// operation concurrently with Stop is undefined.
type Session struct {
	id  uuid.UUID
	log *slog.Logger
	cfg graph.Config

	store graph.Store
	owns  bool

	exec         Executor
	merger       Merger
	exporter     Exporter
	stmtExporter Exporter
	index        *Index
	class        *classCache

	version     string
	initialized bool
}

// Option configures a session at construction.
type Option func(*Session)

// WithLogger injects the session's logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Session) { s.log = log }
}

// WithConfig sets the resource profile for a privately created store.
// It has no effect on sessions bound to an external store.
func WithConfig(cfg graph.Config) Option {
	return func(s *Session) { s.cfg = cfg }
}

// WithExecutor supplies the query-language executor collaborator.
func WithExecutor(exec Executor) Option {
	return func(s *Session) { s.exec = exec }
}

// WithMerger supplies the textual graph-description merge collaborator.
func WithMerger(m Merger) Option {
	return func(s *Session) { s.merger = m }
}

// WithExporter supplies the textual graph-encoding exporter.
func WithExporter(e Exporter) Option {
	return func(s *Session) { s.exporter = e }
}

// WithStatementExporter supplies the query-language-literal exporter.
func WithStatementExporter(e Exporter) Option {
	return func(s *Session) { s.stmtExporter = e }
}

func newSession(opts []Option) *Session {
	s := &Session{
		id:    uuid.New(),
		log:   slog.Default(),
		cfg:   graph.DefaultConfig(),
		index: NewIndex(),
		class: newClassCache(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// New creates a session with a private disposable store. The session owns
// the store and closes it on Stop. Bootstrap failures are classified; see
// Bootstrap.
func New(opts ...Option) (*Session, error) {
	s := newSession(opts)
	store, err := Bootstrap(s.cfg, s.log)
	if err != nil {
		return nil, err
	}
	s.store = store
	s.owns = true
	return s, nil
}

// NewWithStore creates a session bound to an externally supplied store.
// The session borrows the handle and never closes it.
func NewWithStore(store graph.Store, opts ...Option) (*Session, error) {
	if store == nil {
		return nil, errors.New("grasp: store must not be nil")
	}
	s := newSession(opts)
	s.store = store
	return s, nil
}

// ID returns the session's identity, used to correlate its log output.
func (s *Session) ID() uuid.UUID { return s.id }

// usable fails fast once the session has been stopped.
func (s *Session) usable() error {
	if s.store == nil {
		return ErrStopped
	}
	return nil
}

// Stop shuts the session down: the store is closed if owned, and every
// derived collaborator is released. Stop is idempotent; calling it on a
// stopped session is a no-op. All other operations fail with ErrStopped
// afterwards.
func (s *Session) Stop() {
	if s.store == nil {
		return
	}
	s.log.Warn("shutting down graph session", "session", s.id)
	if s.owns {
		if err := s.store.Close(); err != nil {
			s.log.Error("closing store", "session", s.id, "error", err)
		}
	}
	s.store = nil
	s.exec = nil
	s.merger = nil
	s.exporter = nil
	s.stmtExporter = nil
	s.index = nil
	s.class = nil
}

// OwnsStore reports whether the session created its store privately.
func (s *Session) OwnsStore() bool { return s.owns }

// Store returns the underlying store handle, or nil after Stop.
func (s *Session) Store() graph.Store { return s.store }

// Index returns the session's merge-name index, or nil after Stop.
func (s *Session) Index() *Index { return s.index }

// Version returns the current version selector; empty means the query
// dialect is unconstrained.
func (s *Session) Version() string { return s.version }

// SetVersion sets the version selector. Blank input clears it; non-blank
// input is validated against the selector grammar, with any trailing text
// after a match stripped. Invalid input leaves the selector unchanged.
func (s *Session) SetVersion(version string) error {
	if err := s.usable(); err != nil {
		return err
	}
	if strings.TrimSpace(version) == "" {
		s.version = ""
		return nil
	}
	checked, err := CheckVersion(version)
	if err != nil {
		return err
	}
	s.version = checked
	return nil
}

// Initialized reports whether the session has been loaded with content.
// Front ends use it to decide between a first-load prompt and the current
// graph.
func (s *Session) Initialized() bool { return s.initialized }

// SetInitialized marks the session as holding content.
func (s *Session) SetInitialized() { s.initialized = true }

// InitializeFrom merges a full subgraph description into the store and
// marks the session initialized, returning the session for chaining. An
// empty description still marks the session initialized.
func (s *Session) InitializeFrom(ctx context.Context, description string) (*Session, error) {
	if err := s.usable(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(description) != "" {
		if _, err := s.Merge(ctx, description); err != nil {
			return nil, err
		}
	}
	s.initialized = true
	return s, nil
}

// IsMutating reports whether the query would have visible side effects.
// The one-bit classification is cached per query text under the current
// version selector.
func (s *Session) IsMutating(query string) (bool, error) {
	if err := s.usable(); err != nil {
		return false, err
	}
	if s.exec == nil {
		return false, ErrNoExecutor
	}
	return s.class.lookup(query, s.version, s.exec.IsMutating), nil
}

// Understands reports whether the query is valid text in the executor's
// language.
func (s *Session) Understands(query string) (bool, error) {
	if err := s.usable(); err != nil {
		return false, err
	}
	if s.exec == nil {
		return false, ErrNoExecutor
	}
	return s.exec.Understands(query), nil
}

// Prettify reformats query text, when the executor supports it.
func (s *Session) Prettify(query string) (string, error) {
	if err := s.usable(); err != nil {
		return "", err
	}
	p, ok := s.exec.(Prettifier)
	if !ok {
		return "", ErrNoExecutor
	}
	return p.Prettify(query)
}

// Query executes a query under the session's version selector, in its own
// transaction. Mutating queries run in a writable transaction; read-only
// ones are marked as such.
func (s *Session) Query(ctx context.Context, query string, params map[string]any) (*Result, error) {
	return s.runQuery(ctx, query, s.version, params)
}

// InitQuery executes a query ignoring the version selector. It serves the
// first-load path, where session state must not constrain the dialect.
func (s *Session) InitQuery(ctx context.Context, query string, params map[string]any) (*Result, error) {
	return s.runQuery(ctx, query, "", params)
}

// QueryRows executes a read query and materializes its rows.
func (s *Session) QueryRows(ctx context.Context, query string) ([]map[string]any, error) {
	res, err := s.Query(ctx, query, nil)
	if err != nil {
		return nil, err
	}
	rows := make([]map[string]any, 0, len(res.Rows))
	return append(rows, res.Rows...), nil
}

func (s *Session) runQuery(ctx context.Context, query, version string, params map[string]any) (*Result, error) {
	if err := s.usable(); err != nil {
		return nil, err
	}
	if s.exec == nil {
		return nil, ErrNoExecutor
	}
	mutating := s.class.lookup(query, version, s.exec.IsMutating)
	tx, err := s.store.BeginTx(ctx, &graph.TxOptions{ReadOnly: !mutating})
	if err != nil {
		return nil, err
	}
	res, err := s.exec.Execute(ctx, tx, query, version, params)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return res, nil
}

// Merge merges a textual subgraph description into the store inside one
// transaction and returns the insertion-ordered name mapping. Attributes
// of every named entity are exported inside the transaction, since store
// entities are not readable outside one. On failure the transaction is
// rolled back and the error wraps the original description.
func (s *Session) Merge(ctx context.Context, description string) (*MergeResult, error) {
	if err := s.usable(); err != nil {
		return nil, err
	}
	if s.merger == nil {
		return nil, ErrNoMerger
	}
	tx, err := s.store.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	entities, err := s.merger.Merge(ctx, tx, description)
	if err != nil {
		_ = tx.Rollback()
		return nil, NewMergeError(description, err)
	}
	// Attributes must be exported inside the transaction. Index
	// registration happens only after Commit, so a failed merge leaves
	// no names resolving to entities that were rolled back.
	result := newMergeResult()
	for _, ne := range entities {
		result.add(ne.Name, ne.Entity.Attributes())
	}
	if err := tx.Commit(); err != nil {
		return nil, NewMergeError(description, err)
	}
	for _, ne := range entities {
		s.index.Register(ne.Name, ne.Entity)
	}
	return result, nil
}

// QueryViz builds the visualization projection for a query. Blank query
// text and mutating queries are never executed through this path; both
// yield the empty-selection whole-graph view.
func (s *Session) QueryViz(ctx context.Context, query string) (*Projection, error) {
	if err := s.usable(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return s.ProjectResult(ctx, nil)
	}
	mutating, err := s.IsMutating(query)
	if err != nil {
		return nil, err
	}
	if mutating {
		return s.ProjectResult(ctx, nil)
	}
	res, err := s.Query(ctx, query, nil)
	if err != nil {
		return nil, err
	}
	return s.ProjectResult(ctx, res)
}

// ProjectResult projects a query result (or nil) onto a whole-graph
// snapshot taken under a single read transaction, marking the entities the
// result implicated as selected.
func (s *Session) ProjectResult(ctx context.Context, res *Result) (*Projection, error) {
	if err := s.usable(); err != nil {
		return nil, err
	}
	tx, err := s.store.BeginTx(ctx, &graph.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	sg, err := subgraphFrom(ctx, tx)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	proj := sg.project(selectionFrom(res))
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return proj, nil
}

// ExportText serializes the whole current graph in the textual
// graph-encoding format, as of one transaction.
func (s *Session) ExportText(ctx context.Context) (string, error) {
	return s.export(ctx, s.exporter)
}

// ExportStatements serializes the whole current graph as query-language
// literals, as of one transaction.
func (s *Session) ExportStatements(ctx context.Context) (string, error) {
	return s.export(ctx, s.stmtExporter)
}

func (s *Session) export(ctx context.Context, e Exporter) (string, error) {
	if err := s.usable(); err != nil {
		return "", err
	}
	if e == nil {
		return "", ErrNoExporter
	}
	tx, err := s.store.BeginTx(ctx, &graph.TxOptions{ReadOnly: true})
	if err != nil {
		return "", err
	}
	out, err := e.Export(ctx, tx)
	if err != nil {
		_ = tx.Rollback()
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return out, nil
}
