package grasp_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/grasp"
	"github.com/syssam/grasp/graph"
)

const twoNodesOneRel = `
(a) {"name":"Alice"}
(b) {"name":"Bob"}
(a)-[knows:KNOWS]->(b) {"since":2010}
`

func TestMerge(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, _ := newTestSession(t)

	res, err := s.Merge(ctx, twoNodesOneRel)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Len())
	assert.Equal(t, []string{"a", "b", "knows"}, res.Names(), "entry order mirrors the merge order")

	a, ok := res.Get("a")
	require.True(t, ok)
	assert.Equal(t, "Alice", a["name"])
	assert.Contains(t, a, "id")

	knows, ok := res.Get("knows")
	require.True(t, ok)
	assert.Equal(t, "KNOWS", knows["type"])

	// The immediately following whole-graph export reflects the merge.
	out, err := s.ExportText(ctx)
	require.NoError(t, err)
	assert.Equal(t, "nodes=2 rels=1", out)
}

func TestMergeRegistersIndex(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, _ := newTestSession(t)

	_, err := s.Merge(ctx, twoNodesOneRel)
	require.NoError(t, err)

	assert.Equal(t, 3, s.Index().Len())
	_, ok := s.Index().NodeID("a")
	assert.True(t, ok)
	_, ok = s.Index().RelID("knows")
	assert.True(t, ok)
	_, ok = s.Index().NodeID("ghost")
	assert.False(t, ok)
}

// TestMergeCommitFailureLeavesIndexEmpty verifies no name registered by a
// merge survives a failed Commit; a later lookup must not resolve to an
// entity that was rolled back.
func TestMergeCommitFailureLeavesIndexEmpty(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	inner, err := graph.Open(graph.DefaultConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = inner.Close() })

	s, err := grasp.NewWithStore(
		&commitFailStore{Store: inner, err: errors.New("commit refused")},
		grasp.WithMerger(lineMerger{}),
	)
	require.NoError(t, err)

	_, err = s.Merge(ctx, twoNodesOneRel)
	require.Error(t, err)
	assert.True(t, grasp.IsMergeError(err))

	assert.Zero(t, s.Index().Len())
	_, ok := s.Index().NodeID("a")
	assert.False(t, ok)
}

func TestMergeSyntaxFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, _ := newTestSession(t)

	const bad = "(a)\nthis is not a description"
	_, err := s.Merge(ctx, bad)
	require.Error(t, err)

	var merr *grasp.MergeError
	require.ErrorAs(t, err, &merr)
	assert.True(t, merr.Syntax)
	assert.Equal(t, bad, merr.Description, "the failure carries the original offending text")

	out, err := s.ExportText(ctx)
	require.NoError(t, err)
	assert.Equal(t, "nodes=0 rels=0", out, "no partial merge is visible after rollback")
}

func TestMergeStructureFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, _ := newTestSession(t)

	const bad = "(a)\n(a)-[r:KNOWS]->(ghost)"
	_, err := s.Merge(ctx, bad)
	require.Error(t, err)

	var merr *grasp.MergeError
	require.ErrorAs(t, err, &merr)
	assert.False(t, merr.Syntax)
	assert.True(t, grasp.IsStructureError(merr.Err))
	assert.Equal(t, bad, merr.Description)

	out, err := s.ExportText(ctx)
	require.NoError(t, err)
	assert.Equal(t, "nodes=0 rels=0", out)
}

func TestMergeWithoutMerger(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t, grasp.WithMerger(nil))
	_, err := s.Merge(context.Background(), "(a)")
	assert.ErrorIs(t, err, grasp.ErrNoMerger)
}

func TestMergeResultReusedName(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, _ := newTestSession(t)

	// The same logical name twice: one entry, last write wins.
	res, err := s.Merge(ctx, "(a) {\"v\":1}\n(a) {\"v\":2}")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, res.Names())
	a, _ := res.Get("a")
	assert.EqualValues(t, 2, a["v"])
}
