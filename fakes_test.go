package grasp_test

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/syssam/grasp"
	"github.com/syssam/grasp/graph"
)

// fakeExecutor is a scriptable stand-in for the external query-language
// executor. Queries beginning with a word in mutatingWords classify as
// mutating; execution is delegated to onExecute.
type fakeExecutor struct {
	mutatingWords []string
	onExecute     func(ctx context.Context, tx graph.Tx, query, version string, params map[string]any) (*grasp.Result, error)

	classifyCalls int
	executed      []executedQuery
}

type executedQuery struct {
	query   string
	version string
}

func (f *fakeExecutor) Execute(ctx context.Context, tx graph.Tx, query, version string, params map[string]any) (*grasp.Result, error) {
	f.executed = append(f.executed, executedQuery{query: query, version: version})
	if f.onExecute == nil {
		return &grasp.Result{}, nil
	}
	return f.onExecute(ctx, tx, query, version, params)
}

func (f *fakeExecutor) IsMutating(query string) bool {
	f.classifyCalls++
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return false
	}
	head := strings.ToLower(fields[0])
	for _, w := range f.mutatingWords {
		if head == w {
			return true
		}
	}
	return false
}

func (f *fakeExecutor) Understands(query string) bool {
	return strings.TrimSpace(query) != ""
}

// lineMerger is a minimal textual-graph-description merger used to drive
// the merge path against a real store. It understands three line forms:
//
//	(name) {"k":"v"}            node with attributes
//	(a)-[r:KIND]->(b) {"k":1}   relationship between defined nodes
//	// comment                  ignored, as are blank lines
//
// Unparseable lines are syntax errors; relationships referencing an
// undefined node are structure errors.
type lineMerger struct{}

var (
	nodeLineRe = regexp.MustCompile(`^\((\w+)\)\s*(\{.*\})?$`)
	relLineRe  = regexp.MustCompile(`^\((\w+)\)-\[(\w+):(\w+)\]->\((\w+)\)\s*(\{.*\})?$`)
)

func (lineMerger) Merge(ctx context.Context, tx graph.Tx, description string) ([]grasp.NamedEntity, error) {
	var out []grasp.NamedEntity
	nodes := map[string]graph.Node{}
	for _, line := range strings.Split(description, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if m := nodeLineRe.FindStringSubmatch(line); m != nil {
			attrs, err := parseAttrs(m[2])
			if err != nil {
				return nil, grasp.NewSyntaxError(line, err)
			}
			n, err := tx.CreateNode(ctx, attrs)
			if err != nil {
				return nil, err
			}
			nodes[m[1]] = n
			out = append(out, grasp.NamedEntity{Name: m[1], Entity: n})
			continue
		}
		if m := relLineRe.FindStringSubmatch(line); m != nil {
			start, ok := nodes[m[1]]
			if !ok {
				return nil, grasp.NewStructureError(fmt.Sprintf("undefined node %q", m[1]), nil)
			}
			end, ok := nodes[m[4]]
			if !ok {
				return nil, grasp.NewStructureError(fmt.Sprintf("undefined node %q", m[4]), nil)
			}
			attrs, err := parseAttrs(m[5])
			if err != nil {
				return nil, grasp.NewSyntaxError(line, err)
			}
			r, err := tx.CreateRel(ctx, start.ID, end.ID, m[3], attrs)
			if err != nil {
				return nil, err
			}
			out = append(out, grasp.NamedEntity{Name: m[2], Entity: r})
			continue
		}
		return nil, grasp.NewSyntaxError(line, nil)
	}
	return out, nil
}

func parseAttrs(s string) (graph.Attrs, error) {
	if s == "" {
		return graph.Attrs{}, nil
	}
	m := map[string]any{}
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, err
	}
	return graph.Attrs(m), nil
}

// countExporter renders the graph as a node/relationship tally.
type countExporter struct{}

func (countExporter) Export(ctx context.Context, tx graph.Tx) (string, error) {
	nodes, err := tx.Nodes(ctx)
	if err != nil {
		return "", err
	}
	rels, err := tx.Rels(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("nodes=%d rels=%d", len(nodes), len(rels)), nil
}

// failExporter always fails, for rollback-path tests.
type failExporter struct{ err error }

func (f failExporter) Export(context.Context, graph.Tx) (string, error) {
	return "", f.err
}

// commitFailStore wraps a Store so every transaction rolls back and fails
// at Commit, for commit-failure-path tests.
type commitFailStore struct {
	graph.Store
	err error
}

func (s *commitFailStore) BeginTx(ctx context.Context, opts *graph.TxOptions) (graph.Tx, error) {
	tx, err := s.Store.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &commitFailTx{Tx: tx, err: s.err}, nil
}

type commitFailTx struct {
	graph.Tx
	err error
}

func (t *commitFailTx) Commit() error {
	_ = t.Tx.Rollback()
	return t.err
}

// closeCountingStore wraps a Store and counts Close calls, to verify
// ownership-gated shutdown.
type closeCountingStore struct {
	graph.Store
	closed int
}

func (s *closeCountingStore) Close() error {
	s.closed++
	return s.Store.Close()
}
