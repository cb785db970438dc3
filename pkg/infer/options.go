// Package infer reverse-engineers a structural schema from example documents.
//
// The pipeline is: Classify each sample, Merge the per-sample shapes, annotate
// required keys from the raw samples, widen nullable leaves, optionally
// MergeAppend against a previously persisted schema, then ExtractShared to
// hoist repeated object shapes into named definitions.
//
// Everything in this package is pure and synchronous. The only callback is
// Options.OnConflict, which receives kind conflicts the merge rules resolved
// silently.
package infer

import (
	"strings"

	"github.com/usestring/schemainfer/pkg/schema"
)

// Defaults for Options.
const (
	DefaultMaxDepth = 64
	DefaultWorkers  = 8
)

// Conflict describes two incompatible composite kinds seen for one slot.
// The first-seen (or prior) kind is kept and the other is dropped.
type Conflict struct {
	Entity  string      // entity being inferred, empty for direct calls
	Path    string      // JSONPath-like location, e.g. $.items[].owner
	Kept    schema.Kind // kind that won
	Dropped schema.Kind // kind that was discarded
	Stage   string      // "merge" or "append"
}

// NullableRules selects which object keys are forced to accept null.
type NullableRules struct {
	IdentifierSuffixes []string // keys ending with one of these are identifiers
	TitleSuffixes      []string // keys ending with one of these are titles
	Roles              []string // exact key names commonly null in practice
	// IdentifierFormat is the string format given to an identifier key that
	// was only ever observed as null.
	IdentifierFormat string
}

// DefaultNullableRules returns the empirically tuned defaults.
func DefaultNullableRules() NullableRules {
	return NullableRules{
		IdentifierSuffixes: []string{"Id"},
		TitleSuffixes:      []string{"Title"},
		Roles: []string{
			"Email", "Phone", "Image", "ImageUrl", "Photo", "Address", "Description",
			"Title", "Link", "Url", "Date", "Value", "Text", "Note", "Remark",
		},
		IdentifierFormat: schema.FormatUUID,
	}
}

func (r NullableRules) isIdentifier(key string) bool {
	return hasAnySuffix(key, r.IdentifierSuffixes)
}

func (r NullableRules) isTitle(key string) bool {
	return hasAnySuffix(key, r.TitleSuffixes)
}

func (r NullableRules) isRole(key string) bool {
	for _, role := range r.Roles {
		if key == role {
			return true
		}
	}
	return false
}

func hasAnySuffix(key string, suffixes []string) bool {
	for _, s := range suffixes {
		if s != "" && strings.HasSuffix(key, s) {
			return true
		}
	}
	return false
}

// Options controls inference. The zero value is usable; missing limits fall
// back to the package defaults and zero NullableRules disables forced widening.
type Options struct {
	// MaxDepth caps recursion; deeper values become a depth-limit leaf.
	MaxDepth int
	// EnumFields lists keys whose string/integer values are collected as enums.
	EnumFields []string
	// Nullable configures the nullability widener.
	Nullable NullableRules
	// Workers bounds concurrent per-entity inference in InferAll.
	Workers int
	// OnConflict, when set, receives every silently resolved kind conflict.
	// InferAll calls it from several goroutines.
	OnConflict func(Conflict)
}

// DefaultOptions returns options with the default limits and nullable rules.
func DefaultOptions() *Options {
	return &Options{
		MaxDepth: DefaultMaxDepth,
		Nullable: DefaultNullableRules(),
		Workers:  DefaultWorkers,
	}
}

func (o *Options) maxDepth() int {
	if o == nil || o.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}

func (o *Options) workers() int {
	if o == nil || o.Workers <= 0 {
		return DefaultWorkers
	}
	return o.Workers
}

func (o *Options) isEnumField(key string) bool {
	if o == nil || key == "" {
		return false
	}
	for _, f := range o.EnumFields {
		if f == key {
			return true
		}
	}
	return false
}

// walker carries per-call state through the recursive passes.
type walker struct {
	opts   *Options
	entity string
}

func newWalker(opts *Options, entity string) *walker {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &walker{opts: opts, entity: entity}
}

func (w *walker) conflict(path string, kept, dropped schema.Kind, stage string) {
	if w.opts.OnConflict == nil {
		return
	}
	w.opts.OnConflict(Conflict{
		Entity:  w.entity,
		Path:    path,
		Kept:    kept,
		Dropped: dropped,
		Stage:   stage,
	})
}

func childPath(path, key string) string {
	return path + "." + key
}

func itemsPath(path string) string {
	return path + "[]"
}

const rootPath = "$"
