package infer

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/usestring/schemainfer/pkg/schema"
	"github.com/usestring/schemainfer/pkg/value"
)

// minRequiredSamples is the smallest sample count from which required keys
// are inferred. A single document says nothing about which keys are optional.
const minRequiredSamples = 2

// RequiredKeys returns the keys present in every sample after descending
// through path. The result is empty when fewer than two samples are given or
// when any sample does not resolve to a map. Keys come back in the order they
// were first seen.
func RequiredKeys(samples []value.Value, path ...string) []string {
	if len(samples) < minRequiredSamples {
		return nil
	}
	maps := make([]value.Value, 0, len(samples))
	for _, s := range samples {
		v := s
		for _, key := range path {
			if !v.IsMap() {
				return nil
			}
			next, ok := v.Get(key)
			if !ok {
				return nil
			}
			v = next
		}
		if !v.IsMap() {
			return nil
		}
		maps = append(maps, v)
	}
	return requiredAmong(maps)
}

// requiredAmong indexes key presence per sample with one bitmap per key and
// keeps the keys whose bitmap covers every sample.
func requiredAmong(maps []value.Value) []string {
	if len(maps) < minRequiredSamples {
		return nil
	}
	presence := map[string]*roaring.Bitmap{}
	var order []string
	for i, m := range maps {
		for _, key := range m.Keys() {
			bm, ok := presence[key]
			if !ok {
				bm = roaring.New()
				presence[key] = bm
				order = append(order, key)
			}
			bm.Add(uint32(i))
		}
	}

	total := uint64(len(maps))
	var out []string
	for _, key := range order {
		if presence[key].GetCardinality() == total {
			out = append(out, key)
		}
	}
	return out
}

// AnnotateRequired returns a copy of node whose object nodes carry the
// required-key sets observed in samples. Nested objects are annotated from
// the sub-documents found at the same location in each sample; array item
// objects are annotated from every item across all samples.
func AnnotateRequired(node *schema.Node, samples []value.Value) *schema.Node {
	out := node.Clone()
	annotate(out, samples)
	return out
}

func annotate(n *schema.Node, samples []value.Value) {
	if n == nil {
		return
	}
	switch n.Kind {
	case schema.KindObject:
		annotateObject(n, documentsOf(samples))
	case schema.KindArray:
		annotate(n.Items, elementsOf(samples))
	case schema.KindUnion:
		for _, b := range n.AnyOf {
			switch b.Kind {
			case schema.KindObject:
				annotateObject(b, documentsOf(samples))
			case schema.KindArray:
				annotate(b.Items, elementsOf(samples))
			}
		}
	}
}

func annotateObject(n *schema.Node, maps []value.Value) {
	n.Required = nil
	for _, key := range requiredAmong(maps) {
		if n.Prop(key) != nil {
			n.Required = append(n.Required, key)
		}
	}
	if n.Properties == nil {
		return
	}
	for pair := n.Properties.Oldest(); pair != nil; pair = pair.Next() {
		var sub []value.Value
		for _, m := range maps {
			if v, ok := m.Get(pair.Key); ok && !v.IsNull() {
				sub = append(sub, v)
			}
		}
		annotate(pair.Value, sub)
	}
}

// documentsOf keeps the samples that were classified as plain objects.
func documentsOf(samples []value.Value) []value.Value {
	out := make([]value.Value, 0, len(samples))
	for _, s := range samples {
		if s.IsMap() && !s.IsTruncated() && !s.IsError() {
			out = append(out, s)
		}
	}
	return out
}

// elementsOf flattens every array sample into its non-sentinel items.
func elementsOf(samples []value.Value) []value.Value {
	var out []value.Value
	for _, s := range samples {
		if !s.IsSeq() {
			continue
		}
		for _, item := range s.Items() {
			if item.IsTruncated() || item.IsNull() {
				continue
			}
			out = append(out, item)
		}
	}
	return out
}
