package infer

import (
	"sort"

	"github.com/usestring/schemainfer/pkg/schema"
)

// SharedPrefix prefixes generated definition names.
const SharedPrefix = "SharedObj_"

// sharedNameLen is how many fingerprint characters a definition name carries
// unless two fingerprints collide on that prefix.
const sharedNameLen = 12

// ExtractShared hoists object shapes that occur at least twice across the
// entity schemas into named definitions and replaces every occurrence with a
// reference. The input trees are not modified. Objects without properties
// are never hoisted.
func ExtractShared(entities map[string]*schema.Node) *schema.Bundle {
	x := newExtractor()

	names := make([]string, 0, len(entities))
	for name := range entities {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		x.discover(entities[name])
	}
	// bodies promoted while walking other bodies are appended to order
	for i := 0; i < len(x.order); i++ {
		x.discoverChildren(x.defs[x.order[i]])
	}

	bundle := schema.NewBundle()
	for _, name := range names {
		bundle.Entities[name] = x.rewrite(entities[name])
	}
	for _, name := range x.order {
		bundle.Definitions[name] = x.rewriteChildren(x.defs[name])
	}
	return bundle
}

// extractor is the per-call discovery state. It is never shared between
// calls, so concurrent extractions stay independent.
type extractor struct {
	fps      map[*schema.Node]string
	seen     map[string]bool
	promoted map[string]string // fingerprint → definition name
	names    map[string]bool
	defs     map[string]*schema.Node
	order    []string
}

func newExtractor() *extractor {
	return &extractor{
		fps:      map[*schema.Node]string{},
		seen:     map[string]bool{},
		promoted: map[string]string{},
		names:    map[string]bool{},
		defs:     map[string]*schema.Node{},
	}
}

func (x *extractor) fingerprint(n *schema.Node) string {
	if fp, ok := x.fps[n]; ok {
		return fp
	}
	fp := schema.Fingerprint(n)
	x.fps[n] = fp
	return fp
}

func hoistable(n *schema.Node) bool {
	return n != nil && n.Kind == schema.KindObject && n.Properties != nil && n.Properties.Len() > 0
}

func (x *extractor) discover(n *schema.Node) {
	if n == nil {
		return
	}
	if !hoistable(n) {
		x.discoverChildren(n)
		return
	}
	fp := x.fingerprint(n)
	if _, ok := x.promoted[fp]; ok {
		return
	}
	if x.seen[fp] {
		x.promote(fp, n)
	}
	x.seen[fp] = true
	x.discoverChildren(n)
}

func (x *extractor) discoverChildren(n *schema.Node) {
	if n == nil {
		return
	}
	switch n.Kind {
	case schema.KindObject:
		if n.Properties == nil {
			return
		}
		for pair := n.Properties.Oldest(); pair != nil; pair = pair.Next() {
			x.discover(pair.Value)
		}
	case schema.KindArray:
		x.discover(n.Items)
	case schema.KindUnion:
		for _, b := range n.AnyOf {
			x.discover(b)
		}
	}
}

func (x *extractor) promote(fp string, n *schema.Node) {
	name := SharedPrefix + fp[:sharedNameLen]
	if x.names[name] {
		name = SharedPrefix + fp
	}
	x.names[name] = true
	x.promoted[fp] = name
	x.defs[name] = n.Clone()
	x.order = append(x.order, name)
}

// rewrite replaces promoted objects with references.
func (x *extractor) rewrite(n *schema.Node) *schema.Node {
	if n == nil {
		return nil
	}
	if hoistable(n) {
		if name, ok := x.promoted[x.fingerprint(n)]; ok {
			ref := schema.Ref(name)
			ref.Description = n.Description
			return ref
		}
	}
	return x.rewriteChildren(n)
}

// rewriteChildren rebuilds n with its children rewritten but never replaces n
// itself, which keeps a definition body from referencing its own name.
func (x *extractor) rewriteChildren(n *schema.Node) *schema.Node {
	switch n.Kind {
	case schema.KindObject:
		out := n.Clone()
		if n.Properties == nil {
			return out
		}
		out.Properties = schema.NewProperties()
		for pair := n.Properties.Oldest(); pair != nil; pair = pair.Next() {
			out.Properties.Set(pair.Key, x.rewrite(pair.Value))
		}
		return out
	case schema.KindArray:
		out := n.Clone()
		out.Items = x.rewrite(n.Items)
		return out
	case schema.KindUnion:
		out := n.Clone()
		for i, b := range n.AnyOf {
			out.AnyOf[i] = x.rewrite(b)
		}
		return out
	default:
		return n.Clone()
	}
}
