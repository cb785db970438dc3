package infer

import (
	"strings"

	"github.com/usestring/schemainfer/pkg/schema"
	"github.com/usestring/schemainfer/pkg/value"
)

// FieldStat contains per-field statistics computed across the samples an
// inferred schema was built from.
type FieldStat struct {
	Path          string  `json:"path"`           // e.g. "Owner.Name", "Rows[].Id"
	Type          string  `json:"type"`           // node kind, unions joined with "|"
	Frequency     float64 `json:"frequency"`      // fraction of parent instances containing the key
	Present       bool    `json:"present"`        // key present in every parent instance
	Nullable      bool    `json:"nullable"`       // at least one instance held null
	DistinctCount int     `json:"distinct_count"` // distinct non-null scalar values observed
	Examples      []any   `json:"examples,omitempty"`
}

const (
	maxStatExamples = 3
	maxStatDepth    = 8
)

// FieldStats walks node alongside the raw samples and returns a flat table of
// per-field statistics in document order. Nested objects and array items are
// walked up to a fixed depth.
func FieldStats(node *schema.Node, samples []value.Value) []FieldStat {
	if node == nil || len(samples) == 0 {
		return nil
	}
	var stats []FieldStat
	walkStats(node, "", documentsOf(samples), 0, &stats)
	return stats
}

func walkStats(node *schema.Node, path string, docs []value.Value, depth int, stats *[]FieldStat) {
	obj := objectBranch(node)
	if obj == nil || obj.Properties == nil || len(docs) == 0 {
		return
	}
	if depth > maxStatDepth {
		*stats = append(*stats, FieldStat{Path: path + " (truncated at depth limit)", Type: "..."})
		return
	}

	for pair := obj.Properties.Oldest(); pair != nil; pair = pair.Next() {
		fieldPath := pair.Key
		if path != "" {
			fieldPath = path + "." + pair.Key
		}
		*stats = append(*stats, fieldStat(fieldPath, pair.Value, pair.Key, docs))

		var nested []value.Value
		for _, d := range docs {
			if v, ok := d.Get(pair.Key); ok && !v.IsNull() {
				nested = append(nested, v)
			}
		}
		if objectBranch(pair.Value) != nil {
			walkStats(pair.Value, fieldPath, documentsOf(nested), depth+1, stats)
		}
		if arr := arrayBranch(pair.Value); arr != nil {
			walkStats(arr.Items, fieldPath+"[]", documentsOf(elementsOf(nested)), depth+1, stats)
		}
	}
}

func fieldStat(path string, node *schema.Node, key string, docs []value.Value) FieldStat {
	stat := FieldStat{Path: path, Type: describeKind(node)}

	present, nulls := 0, 0
	distinct := map[string]bool{}
	for _, d := range docs {
		v, ok := d.Get(key)
		if !ok {
			continue
		}
		present++
		if v.IsNull() {
			nulls++
			continue
		}
		if !v.IsScalarKind() {
			continue
		}
		k := schema.EnumKey(v.Interface())
		if distinct[k] {
			continue
		}
		distinct[k] = true
		if len(stat.Examples) < maxStatExamples {
			stat.Examples = append(stat.Examples, v.Interface())
		}
	}

	stat.Frequency = float64(present) / float64(len(docs))
	stat.Present = present == len(docs)
	stat.Nullable = nulls > 0
	stat.DistinctCount = len(distinct)
	return stat
}

func objectBranch(n *schema.Node) *schema.Node {
	return branchOfKind(n, schema.KindObject)
}

func arrayBranch(n *schema.Node) *schema.Node {
	return branchOfKind(n, schema.KindArray)
}

func branchOfKind(n *schema.Node, k schema.Kind) *schema.Node {
	if n == nil {
		return nil
	}
	if n.Kind == k {
		return n
	}
	if n.Kind == schema.KindUnion {
		for _, b := range n.AnyOf {
			if b.Kind == k {
				return b
			}
		}
	}
	return nil
}

// describeKind returns the kind name, handling unions and nullable leaves.
func describeKind(n *schema.Node) string {
	switch {
	case n == nil || n.Kind == schema.KindAny:
		return "any"
	case n.Kind == schema.KindUnion:
		kinds := make([]string, 0, len(n.AnyOf))
		for _, b := range n.AnyOf {
			kinds = append(kinds, describeKind(b))
		}
		return strings.Join(kinds, "|")
	case n.Kind == schema.KindReference:
		return "$" + n.Ref
	case n.Nullable:
		return string(n.Kind) + "|null"
	default:
		return string(n.Kind)
	}
}
