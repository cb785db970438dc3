package infer

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/usestring/schemainfer/pkg/schema"
	"github.com/usestring/schemainfer/pkg/value"
)

// Result is the inferred schema for one entity plus sample statistics.
type Result struct {
	Schema      *schema.Node
	SampleCount int // samples that contributed evidence
	Skipped     int // null or error-response samples that were ignored
	// AllMatch reports whether every contributing sample had the same shape.
	AllMatch bool
}

// BuildResult is the outcome of a multi-entity build.
type BuildResult struct {
	Bundle *schema.Bundle
	// Results holds per-entity statistics for entities that had samples.
	Results map[string]*Result
	// Merged holds the per-entity schemas before shared-shape extraction.
	Merged map[string]*schema.Node
}

// Engine runs the inference pipeline with fixed options.
type Engine struct {
	opts *Options
}

// NewEngine returns an engine. Nil options select DefaultOptions.
func NewEngine(opts *Options) *Engine {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &Engine{opts: opts}
}

// Options returns the engine's options.
func (e *Engine) Options() *Options {
	return e.opts
}

// Infer produces a widened schema for one entity from its samples.
func (e *Engine) Infer(samples []value.Value) *Result {
	return e.infer("", samples)
}

func (e *Engine) infer(entity string, samples []value.Value) *Result {
	w := newWalker(e.opts, entity)

	kept := make([]value.Value, 0, len(samples))
	res := &Result{}
	for _, s := range samples {
		if s.IsNull() || s.IsError() {
			res.Skipped++
			continue
		}
		kept = append(kept, s)
	}
	res.SampleCount = len(kept)
	if len(kept) == 0 {
		res.Schema = schema.Any()
		return res
	}

	nodes := make([]*schema.Node, len(kept))
	res.AllMatch = true
	var first string
	for i, s := range kept {
		nodes[i] = w.classify(s, "", rootPath, 0)
		fp := schema.Fingerprint(nodes[i])
		if i == 0 {
			first = fp
		} else if fp != first {
			res.AllMatch = false
		}
	}

	merged := w.merge(nodes, rootPath, 0)
	annotated := AnnotateRequired(merged, kept)
	res.Schema = WidenNullable(annotated, e.opts.Nullable)
	return res
}

// InferAll infers every entity concurrently, bounded by Options.Workers.
func (e *Engine) InferAll(ctx context.Context, batches map[string][]value.Value) (map[string]*Result, error) {
	var (
		mu  sync.Mutex
		out = make(map[string]*Result, len(batches))
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.workers())

	for _, name := range sortedEntityNames(batches) {
		samples := batches[name]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res := e.infer(name, samples)
			mu.Lock()
			out[name] = res
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Build infers every batch, append-merges each result onto its prior schema
// when one exists, and extracts shared definitions across all entities.
// Priors without a matching batch are carried through unchanged.
func (e *Engine) Build(ctx context.Context, batches map[string][]value.Value, priors map[string]*schema.Node) (*BuildResult, error) {
	results, err := e.InferAll(ctx, batches)
	if err != nil {
		return nil, err
	}

	merged := make(map[string]*schema.Node, len(results)+len(priors))
	for name, prior := range priors {
		if _, ok := results[name]; !ok && prior != nil {
			merged[name] = prior.Clone()
		}
	}
	for name, res := range results {
		node := res.Schema
		if prior, ok := priors[name]; ok && prior != nil {
			w := newWalker(e.opts, name)
			node = w.appendMerge(prior, node, rootPath, 0)
			node = WidenNullable(node, e.opts.Nullable)
		}
		merged[name] = node
	}

	return &BuildResult{
		Bundle:  ExtractShared(merged),
		Results: results,
		Merged:  merged,
	}, nil
}

func sortedEntityNames(batches map[string][]value.Value) []string {
	names := make([]string, 0, len(batches))
	for name := range batches {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
