package tools

import (
	"context"

	"github.com/usestring/schemainfer/internal/config"
	"github.com/usestring/schemainfer/internal/pipeline"
	"github.com/usestring/schemainfer/internal/sample"
	"github.com/usestring/schemainfer/internal/store"
)

// Deps contains all dependencies needed by tool handlers.
type Deps struct {
	Config   *config.Config
	Store    *store.FileStore
	Pipeline *pipeline.Pipeline
}

// NewLoader builds a sample loader with the configured compaction and cap.
// An empty selector falls back to the configured default.
func (d *Deps) NewLoader(selector string) (*sample.Loader, error) {
	if selector == "" {
		selector = d.Config.SampleSelector
	}
	loader, err := sample.NewLoader(sample.Options{
		Selector:   selector,
		Compact:    d.Config.CompactOptions(),
		MaxSamples: d.Config.MaxSamplesPerEntity,
	})
	if err != nil {
		return nil, ErrInvalidInput(err.Error())
	}
	return loader, nil
}

// LoadRecord fetches a stored record, mapping store errors to coded errors.
func (d *Deps) LoadRecord(ctx context.Context, entity string) (*store.Record, error) {
	if !store.ValidName(entity) {
		return nil, ErrInvalidInput("entity must match [A-Za-z0-9][A-Za-z0-9_.-]*")
	}
	rec, err := d.Store.Load(ctx, entity)
	if err != nil {
		return nil, WrapStoreError(err, entity)
	}
	return rec, nil
}
