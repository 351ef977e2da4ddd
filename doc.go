// Package grasp is a transactional session facade in front of an embedded
// graph store, built for interactive console workloads: run queries, merge
// textual graph descriptions, and extract visualization-ready subgraphs.
//
// # Sessions
//
// A Session wraps one store handle. It either creates a private disposable
// store (New) and owns it, or binds to an externally supplied one
// (NewWithStore) and borrows it:
//
//	s, err := grasp.New(
//	    grasp.WithExecutor(exec),
//	    grasp.WithMerger(merger),
//	    grasp.WithLogger(logger),
//	)
//	if err != nil {
//	    if grasp.IsFatalBootstrap(err) {
//	        // the host decides whether to halt
//	    }
//	    return err
//	}
//	defer s.Stop()
//
// Every operation opens its own transaction and commits on success; no
// transaction is held across calls. Stop is idempotent, closes the store
// only when owned, and releases every derived collaborator; later calls
// fail with ErrStopped.
//
// # Collaborators
//
// The query-language executor, the textual-format merger and the two
// whole-graph exporters are external collaborators supplied as interfaces
// at construction. This package implements none of them; it supplies the
// orchestration discipline around them: transaction boundaries, dialect
// selection via the version selector, merge-result identity mapping, and
// lifecycle tracking.
//
// # Version selector
//
// SetVersion pins the query dialect with a selector of the form
// major.minor with an optional qualifier (".experimental", "-cost",
// "-rule"). Trailing text after a valid selector is stripped; input that
// does not match at all is rejected and the previous selector kept. A
// blank selector leaves the dialect unconstrained.
//
// # Visualization
//
// QueryViz projects the whole graph as {nodes, links} attribute maps from
// a single snapshot, marking the entities a read query implicated as
// selected. Blank and mutating query text never execute through this
// path; they yield the empty-selection whole-graph view.
package grasp
