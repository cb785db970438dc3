// Package pipeline runs inference end to end: samples in, priors from the
// store, append-only merge, shared-shape extraction, records out.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/usestring/schemainfer/internal/store"
	"github.com/usestring/schemainfer/pkg/infer"
	"github.com/usestring/schemainfer/pkg/schema"
	"github.com/usestring/schemainfer/pkg/value"
)

// Pipeline ties the inference engine to a schema store.
type Pipeline struct {
	store *store.FileStore
	opts  infer.Options
}

// New returns a pipeline. Nil opts selects infer.DefaultOptions. A caller's
// OnConflict hook still fires after the pipeline has logged the conflict.
func New(st *store.FileStore, opts *infer.Options) *Pipeline {
	if opts == nil {
		opts = infer.DefaultOptions()
	}
	return &Pipeline{store: st, opts: *opts}
}

// Store returns the underlying store.
func (p *Pipeline) Store() *store.FileStore {
	return p.store
}

// RunOptions controls one run.
type RunOptions struct {
	// AllStored merges against every stored entity, carrying entities absent
	// from this run into the bundle. Otherwise only the run's own entities
	// are loaded as priors.
	AllStored bool
	// Fresh ignores stored priors for the run's own entities. With AllStored
	// the other stored entities are still carried into the bundle.
	Fresh bool
	// Persist writes updated records, plus the bundle when AllStored is set.
	Persist bool
}

// RunResult is the outcome of one run.
type RunResult struct {
	Bundle    *schema.Bundle
	Records   map[string]*store.Record // updated records for entities with evidence
	Results   map[string]*infer.Result
	Conflicts []infer.Conflict
	Preserved []string // stored entities carried over without new samples
}

// Run infers batches, merges them onto stored priors and optionally persists.
func (p *Pipeline) Run(ctx context.Context, batches map[string][]value.Value, ro RunOptions) (*RunResult, error) {
	for name := range batches {
		if !store.ValidName(name) {
			return nil, fmt.Errorf("%w: %q", store.ErrInvalidName, name)
		}
	}

	priors, err := p.loadPriors(ctx, batches, ro)
	if err != nil {
		return nil, err
	}

	var (
		mu        sync.Mutex
		conflicts []infer.Conflict
	)
	opts := p.opts
	hook := p.opts.OnConflict
	opts.OnConflict = func(c infer.Conflict) {
		slog.Warn("schema kind conflict",
			slog.String("entity", c.Entity),
			slog.String("path", c.Path),
			slog.String("kept", string(c.Kept)),
			slog.String("dropped", string(c.Dropped)),
			slog.String("stage", c.Stage),
		)
		mu.Lock()
		conflicts = append(conflicts, c)
		mu.Unlock()
		if hook != nil {
			hook(c)
		}
	}

	built, err := infer.NewEngine(&opts).Build(ctx, batches, schemasOf(priors))
	if err != nil {
		return nil, err
	}

	out := &RunResult{
		Bundle:  built.Bundle,
		Records: make(map[string]*store.Record, len(built.Results)),
		Results: built.Results,
	}
	for name, res := range built.Results {
		if res.SampleCount == 0 {
			continue
		}
		rec := &store.Record{Name: name, SampleCount: res.SampleCount, Runs: 1, Schema: built.Merged[name]}
		if prior, ok := priors[name]; ok {
			rec.SampleCount += prior.SampleCount
			rec.Runs += prior.Runs
		}
		out.Records[name] = rec
	}
	for name := range priors {
		if _, ok := batches[name]; !ok {
			out.Preserved = append(out.Preserved, name)
		}
	}
	sort.Strings(out.Preserved)
	sortConflicts(conflicts)
	out.Conflicts = conflicts

	slog.Debug("inference run complete",
		slog.Int("entities", len(built.Results)),
		slog.Int("updated", len(out.Records)),
		slog.Int("preserved", len(out.Preserved)),
		slog.Int("definitions", len(out.Bundle.Definitions)),
		slog.Int("conflicts", len(conflicts)),
	)

	if ro.Persist {
		if err := p.persist(ctx, out, ro.AllStored); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (p *Pipeline) loadPriors(ctx context.Context, batches map[string][]value.Value, ro RunOptions) (map[string]*store.Record, error) {
	if p.store == nil || (ro.Fresh && !ro.AllStored) {
		return map[string]*store.Record{}, nil
	}
	if ro.AllStored {
		recs, err := p.store.LoadAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading stored schemas: %w", err)
		}
		if ro.Fresh {
			// entities in this run start over; the rest stay in the bundle
			for name := range batches {
				delete(recs, name)
			}
		}
		return recs, nil
	}

	out := make(map[string]*store.Record, len(batches))
	for name := range batches {
		rec, err := p.store.Load(ctx, name)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("loading prior for %s: %w", name, err)
		}
		out[name] = rec
	}
	return out, nil
}

func (p *Pipeline) persist(ctx context.Context, res *RunResult, withBundle bool) error {
	if p.store == nil {
		return errors.New("no store configured")
	}
	names := make([]string, 0, len(res.Records))
	for name := range res.Records {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := p.store.Save(ctx, res.Records[name]); err != nil {
			return fmt.Errorf("saving %s: %w", name, err)
		}
	}
	if withBundle {
		if err := p.store.SaveBundle(ctx, res.Bundle); err != nil {
			return err
		}
	}
	slog.Info("schemas persisted",
		slog.Int("records", len(names)),
		slog.Bool("bundle", withBundle),
	)
	return nil
}

func schemasOf(recs map[string]*store.Record) map[string]*schema.Node {
	out := make(map[string]*schema.Node, len(recs))
	for name, rec := range recs {
		if rec.Schema != nil {
			out[name] = rec.Schema
		}
	}
	return out
}

// sortConflicts orders conflicts by entity then path; InferAll reports them
// from concurrent workers.
func sortConflicts(cs []infer.Conflict) {
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].Entity != cs[j].Entity {
			return cs[i].Entity < cs[j].Entity
		}
		return cs[i].Path < cs[j].Path
	})
}
