package pipeline

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/schemainfer/internal/store"
	"github.com/usestring/schemainfer/pkg/infer"
	"github.com/usestring/schemainfer/pkg/schema"
	"github.com/usestring/schemainfer/pkg/value"
)

func parse(t *testing.T, docs ...string) []value.Value {
	t.Helper()
	out := make([]value.Value, len(docs))
	for i, d := range docs {
		v, err := value.ParseJSON([]byte(d))
		require.NoError(t, err)
		out[i] = v
	}
	return out
}

func newPipeline(t *testing.T, opts *infer.Options) *Pipeline {
	t.Helper()
	st, err := store.New(t.TempDir(), 16)
	require.NoError(t, err)
	return New(st, opts)
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestPipeline_RunPersistsAndMerges(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(t, nil)

	first, err := p.Run(ctx, map[string][]value.Value{
		"GetCustomer": parse(t, `{"Id":"a","Name":"x"}`, `{"Id":"b","Name":"y"}`),
	}, RunOptions{Persist: true})
	require.NoError(t, err)
	rec := first.Records["GetCustomer"]
	require.NotNil(t, rec)
	assert.Equal(t, 1, rec.Runs)
	assert.Equal(t, 2, rec.SampleCount)
	assert.Equal(t, []string{"Id", "Name"}, rec.Schema.Required)

	second, err := p.Run(ctx, map[string][]value.Value{
		"GetCustomer": parse(t, `{"Id":"c","Age":4}`, `{"Id":"d"}`),
	}, RunOptions{Persist: true})
	require.NoError(t, err)

	stored, err := p.Store().Load(ctx, "GetCustomer")
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Runs)
	assert.Equal(t, 4, stored.SampleCount)
	assert.Equal(t, []string{"Id", "Name", "Age"}, stored.Schema.Keys())
	// required only shrinks
	assert.Equal(t, []string{"Id"}, stored.Schema.Required)
	assert.True(t, schema.Equal(second.Records["GetCustomer"].Schema, stored.Schema))
}

func TestPipeline_FreshIgnoresPriors(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(t, nil)

	_, err := p.Run(ctx, map[string][]value.Value{"A": parse(t, `{"old":1}`)}, RunOptions{Persist: true})
	require.NoError(t, err)

	res, err := p.Run(ctx, map[string][]value.Value{"A": parse(t, `{"new":1}`)}, RunOptions{Fresh: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"new"}, res.Records["A"].Schema.Keys())
	assert.Equal(t, 1, res.Records["A"].Runs)
}

func TestPipeline_FreshDirectoryRunKeepsOtherEntities(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(t, nil)

	_, err := p.Run(ctx, map[string][]value.Value{
		"A": parse(t, `{"old":1}`),
		"B": parse(t, `{"b":1}`),
	}, RunOptions{AllStored: true, Persist: true})
	require.NoError(t, err)

	res, err := p.Run(ctx, map[string][]value.Value{
		"A": parse(t, `{"new":1}`),
	}, RunOptions{AllStored: true, Fresh: true, Persist: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"new"}, res.Records["A"].Schema.Keys())
	assert.Equal(t, 1, res.Records["A"].Runs)
	assert.Equal(t, []string{"B"}, res.Preserved)
	assert.Equal(t, []string{"A", "B"}, res.Bundle.EntityNames())

	b, err := p.Store().LoadBundle(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, b.EntityNames())
}

func TestPipeline_AllStoredPreservesAndSavesBundle(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(t, nil)

	_, err := p.Run(ctx, map[string][]value.Value{
		"GetOrders": parse(t, `{"ShipTo":{"City":"Oslo"}}`),
	}, RunOptions{Persist: true})
	require.NoError(t, err)

	res, err := p.Run(ctx, map[string][]value.Value{
		"GetCustomer": parse(t, `{"Home":{"City":"Bergen"}}`),
	}, RunOptions{AllStored: true, Persist: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"GetOrders"}, res.Preserved)
	assert.Equal(t, []string{"GetCustomer", "GetOrders"}, res.Bundle.EntityNames())
	require.Len(t, res.Bundle.Definitions, 1)
	assert.NotContains(t, res.Records, "GetOrders")

	b, err := p.Store().LoadBundle(ctx)
	require.NoError(t, err)
	assert.Equal(t, res.Bundle.DefinitionNames(), b.DefinitionNames())
}

func TestPipeline_ConflictsLoggedAndReported(t *testing.T) {
	logs := captureLogs(t)

	var hooked []infer.Conflict
	p := newPipeline(t, &infer.Options{OnConflict: func(c infer.Conflict) { hooked = append(hooked, c) }})

	res, err := p.Run(context.Background(), map[string][]value.Value{
		"Mixed": parse(t, `{"v":{"a":1}}`, `{"v":[1]}`),
	}, RunOptions{})
	require.NoError(t, err)

	require.Len(t, res.Conflicts, 1)
	c := res.Conflicts[0]
	assert.Equal(t, "Mixed", c.Entity)
	assert.Equal(t, "$.v", c.Path)
	assert.Equal(t, schema.KindObject, c.Kept)
	assert.Equal(t, schema.KindArray, c.Dropped)
	assert.Equal(t, res.Conflicts, hooked)

	assert.Contains(t, logs.String(), "schema kind conflict")
	assert.Contains(t, logs.String(), "entity=Mixed")
	assert.Contains(t, logs.String(), "dropped=array")
}

func TestPipeline_SkipsEntitiesWithoutEvidence(t *testing.T) {
	p := newPipeline(t, nil)
	res, err := p.Run(context.Background(), map[string][]value.Value{
		"Broken": {value.Null(), value.ErrorResponse("500")},
	}, RunOptions{Persist: true})
	require.NoError(t, err)
	assert.Empty(t, res.Records)
	assert.Equal(t, 2, res.Results["Broken"].Skipped)

	names, err := p.Store().List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestPipeline_InvalidEntityName(t *testing.T) {
	p := newPipeline(t, nil)
	_, err := p.Run(context.Background(), map[string][]value.Value{"../x": parse(t, `{}`)}, RunOptions{})
	assert.ErrorIs(t, err, store.ErrInvalidName)
}
