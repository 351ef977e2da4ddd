package grasp_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/grasp"
	"github.com/syssam/grasp/graph"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestSession creates a session with a private store and the full set
// of fake collaborators.
func newTestSession(t *testing.T, opts ...grasp.Option) (*grasp.Session, *fakeExecutor) {
	t.Helper()
	exec := &fakeExecutor{mutatingWords: []string{"create", "delete", "set"}}
	base := []grasp.Option{
		grasp.WithLogger(discardLogger()),
		grasp.WithExecutor(exec),
		grasp.WithMerger(lineMerger{}),
		grasp.WithExporter(countExporter{}),
		grasp.WithStatementExporter(countExporter{}),
	}
	s, err := grasp.New(append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(s.Stop)
	return s, exec
}

func TestNewOwnsStore(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t)
	assert.True(t, s.OwnsStore())
	assert.NotNil(t, s.Store())
	assert.False(t, s.Initialized())
	assert.Empty(t, s.Version())
}

func TestNewWithStoreBorrows(t *testing.T) {
	t.Parallel()

	inner, err := graph.Open(graph.DefaultConfig())
	require.NoError(t, err)
	defer inner.Close()

	store := &closeCountingStore{Store: inner}
	s, err := grasp.NewWithStore(store, grasp.WithLogger(discardLogger()))
	require.NoError(t, err)
	assert.False(t, s.OwnsStore())

	s.Stop()
	assert.Zero(t, store.closed, "borrowed handles must never be closed by the session")
}

func TestNewWithStoreNil(t *testing.T) {
	t.Parallel()

	s, err := grasp.NewWithStore(nil)
	assert.Error(t, err)
	assert.Nil(t, s)
}

func TestStopIdempotent(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t)
	s.Stop()
	assert.NotPanics(t, s.Stop)

	assert.Nil(t, s.Store())
	assert.Nil(t, s.Index())
}

func TestOperationsAfterStop(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, _ := newTestSession(t)
	s.Stop()

	_, err := s.Query(ctx, "start n", nil)
	assert.ErrorIs(t, err, grasp.ErrStopped)

	_, err = s.Merge(ctx, "(a)")
	assert.ErrorIs(t, err, grasp.ErrStopped)

	_, err = s.QueryViz(ctx, "")
	assert.ErrorIs(t, err, grasp.ErrStopped)

	_, err = s.ExportText(ctx)
	assert.ErrorIs(t, err, grasp.ErrStopped)

	_, err = s.InitializeFrom(ctx, "")
	assert.ErrorIs(t, err, grasp.ErrStopped)

	err = s.SetVersion("2.1")
	assert.ErrorIs(t, err, grasp.ErrStopped)

	_, err = s.IsMutating("create n")
	assert.ErrorIs(t, err, grasp.ErrStopped)
}

func TestSetVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    string
		invalid bool
	}{
		{name: "Plain", input: "2.1", want: "2.1"},
		{name: "CostQualifier", input: "2.1-cost", want: "2.1-cost"},
		{name: "RuleQualifier", input: "1.9-rule", want: "1.9-rule"},
		{name: "ExperimentalQualifier", input: "2.0.experimental", want: "2.0.experimental"},
		{name: "TrailingStripped", input: "2.1-cost extra", want: "2.1-cost"},
		{name: "TrailingAfterPlain", input: "2.1 whatever", want: "2.1"},
		{name: "Blank", input: "   ", want: ""},
		{name: "Empty", input: "", want: ""},
		{name: "Garbage", input: "abc", invalid: true},
		{name: "MajorOnly", input: "2", invalid: true},
		{name: "LeadingGarbage", input: "v2.1", invalid: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s, _ := newTestSession(t)
			err := s.SetVersion(tt.input)
			if tt.invalid {
				assert.True(t, grasp.IsInvalidVersion(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Version())
		})
	}
}

func TestSetVersionInvalidKeepsPrevious(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t)
	require.NoError(t, s.SetVersion("2.1-cost"))

	err := s.SetVersion("abc")
	assert.True(t, grasp.IsInvalidVersion(err))
	assert.Equal(t, "2.1-cost", s.Version(), "invalid input must leave the selector unchanged")
}

func TestInitializeFrom(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("WithDescription", func(t *testing.T) {
		t.Parallel()

		s, _ := newTestSession(t)
		chained, err := s.InitializeFrom(ctx, "(a) {\"name\":\"Alice\"}\n(b)")
		require.NoError(t, err)
		assert.Same(t, s, chained)
		assert.True(t, s.Initialized())

		out, err := s.ExportText(ctx)
		require.NoError(t, err)
		assert.Equal(t, "nodes=2 rels=0", out)
	})

	t.Run("EmptyDescription", func(t *testing.T) {
		t.Parallel()

		s, _ := newTestSession(t)
		_, err := s.InitializeFrom(ctx, "")
		require.NoError(t, err)
		assert.True(t, s.Initialized(), "an empty description still initializes the session")
	})

	t.Run("FailedMergeLeavesUninitialized", func(t *testing.T) {
		t.Parallel()

		s, _ := newTestSession(t)
		_, err := s.InitializeFrom(ctx, "not a description")
		require.Error(t, err)
		assert.False(t, s.Initialized())
	})
}

func TestSetInitialized(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t)
	assert.False(t, s.Initialized())
	s.SetInitialized()
	assert.True(t, s.Initialized())
}
