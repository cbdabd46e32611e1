package locate

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camatlas/camatlas/internal/identity"
	"github.com/camatlas/camatlas/internal/model"
	"github.com/camatlas/camatlas/pkg/overpass"
)

type fakeQuerier struct {
	mu      sync.Mutex
	queries []string
	results map[string][]overpass.Element // matched by substring of the query
	err     error
	errFor  string // return err only for queries containing this substring
}

func (f *fakeQuerier) Query(_ context.Context, query string) ([]overpass.Element, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)

	if f.err != nil && (f.errFor == "" || strings.Contains(query, f.errFor)) {
		return nil, f.err
	}
	for needle, elements := range f.results {
		if strings.Contains(query, needle) {
			return elements, nil
		}
	}
	return nil, nil
}

type fakeStore struct {
	mu        sync.Mutex
	operators []model.Operator
	cameras   []model.Camera
	batches   int
	camErr    error
}

func (f *fakeStore) UpsertOperator(_ context.Context, op model.Operator) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.operators = append(f.operators, op)
	return nil
}

func (f *fakeStore) UpsertCameras(_ context.Context, cams []model.Camera) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches++
	if f.camErr != nil {
		return 0, f.camErr
	}
	f.cameras = append(f.cameras, cams...)
	return int64(len(cams)), nil
}

func (f *fakeStore) GetOperator(context.Context, string) (*model.Operator, error) { return nil, nil }
func (f *fakeStore) ListOperators(context.Context) ([]model.Operator, error)      { return nil, nil }
func (f *fakeStore) CountCameras(context.Context, string) (int64, error)          { return 0, nil }
func (f *fakeStore) StartImport(context.Context, string) (string, error)          { return "", nil }
func (f *fakeStore) CompleteImport(context.Context, string, int, int) error       { return nil }
func (f *fakeStore) FailImport(context.Context, string, string) error             { return nil }
func (f *fakeStore) Migrate(context.Context) error                                { return nil }
func (f *fakeStore) Close() error                                                 { return nil }

func node(id int64) overpass.Element {
	return overpass.Element{Type: "node", ID: id, Lat: 51.5, Lon: -0.1}
}

func newTestEngine(q Querier, st *fakeStore, opts Options) *Engine {
	return NewEngine(identity.NewResolver(map[string]string{}, nil), q, st, opts)
}

func TestEngine_Run_PersistsOperatorsAndCameras(t *testing.T) {
	q := &fakeQuerier{results: map[string][]overpass.Element{
		"Greggs": {node(1), node(2)},
	}}
	st := &fakeStore{}
	e := newTestEngine(q, st, Options{})

	summary, err := e.Run(context.Background(), []model.Operator{
		{ID: "greggs", Name: "Greggs PLC"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 2, summary.Cameras)
	require.Len(t, st.operators, 1)
	assert.Equal(t, "greggs", st.operators[0].ID)
	assert.Len(t, st.cameras, 2)
}

func TestEngine_Run_SkipsShortIdentity(t *testing.T) {
	q := &fakeQuerier{}
	st := &fakeStore{}
	e := newTestEngine(q, st, Options{})

	// "J Limited" cleans to "J", too short to query.
	summary, err := e.Run(context.Background(), []model.Operator{
		{ID: "j", Name: "J Limited"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Skipped)
	assert.Empty(t, q.queries, "no query should be issued for unresolvable identities")
}

func TestEngine_Run_FailureIsolatedPerOperator(t *testing.T) {
	q := &fakeQuerier{
		err:    errors.New("overpass timeout"),
		errFor: "Ikea",
		results: map[string][]overpass.Element{
			"Greggs": {node(1)},
		},
	}
	st := &fakeStore{}
	e := newTestEngine(q, st, Options{})

	summary, err := e.Run(context.Background(), []model.Operator{
		{ID: "ikea", Name: "Ikea Limited"},
		{ID: "greggs", Name: "Greggs PLC"},
	})
	require.NoError(t, err, "one operator's failure must not abort the run")

	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Processed)
	assert.Len(t, st.cameras, 1)
}

func TestEngine_Run_ZeroResultsReported(t *testing.T) {
	q := &fakeQuerier{}
	st := &fakeStore{}
	e := newTestEngine(q, st, Options{})

	summary, err := e.Run(context.Background(), []model.Operator{
		{ID: "obscure-co", Name: "Obscure Co Limited"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"obscure-co"}, summary.NoResults)
	assert.Zero(t, summary.Processed)
	assert.Empty(t, st.operators)
}

func TestEngine_Run_MinResultsThreshold(t *testing.T) {
	q := &fakeQuerier{results: map[string][]overpass.Element{
		"Greggs": {node(1), node(2)},
	}}
	st := &fakeStore{}
	e := newTestEngine(q, st, Options{MinResults: 5})

	summary, err := e.Run(context.Background(), []model.Operator{
		{ID: "greggs", Name: "Greggs PLC"},
	})
	require.NoError(t, err)

	assert.Zero(t, summary.Processed)
	assert.Empty(t, st.operators, "below-threshold operators are not persisted")
	assert.Empty(t, summary.NoResults, "a below-threshold operator is not a zero-result operator")
}

func TestEngine_Run_DryRunSkipsPersistence(t *testing.T) {
	q := &fakeQuerier{results: map[string][]overpass.Element{
		"Greggs": {node(1)},
	}}
	st := &fakeStore{}
	e := newTestEngine(q, st, Options{DryRun: true})

	summary, err := e.Run(context.Background(), []model.Operator{
		{ID: "greggs", Name: "Greggs PLC"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.Cameras)
	assert.Empty(t, st.operators)
	assert.Empty(t, st.cameras)
}

func TestEngine_Run_BatchesCameraWrites(t *testing.T) {
	elements := make([]overpass.Element, 5)
	for i := range elements {
		elements[i] = node(int64(i + 1))
	}
	q := &fakeQuerier{results: map[string][]overpass.Element{"Greggs": elements}}
	st := &fakeStore{}
	e := newTestEngine(q, st, Options{BatchSize: 2})

	_, err := e.Run(context.Background(), []model.Operator{
		{ID: "greggs", Name: "Greggs PLC"},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, st.batches)
	assert.Len(t, st.cameras, 5)
}

func TestEngine_Run_OverrideUsedForQuery(t *testing.T) {
	q := &fakeQuerier{}
	st := &fakeStore{}
	e := NewEngine(
		identity.NewResolver(map[string]string{"whitbread-group": "Premier Inn"}, nil),
		q, st, Options{},
	)

	_, err := e.Run(context.Background(), []model.Operator{
		{ID: "whitbread-group", Name: "Whitbread Group PLC"},
	})
	require.NoError(t, err)

	require.Len(t, q.queries, 1)
	assert.Contains(t, q.queries[0], "Premier Inn")
}
