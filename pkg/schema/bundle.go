package schema

import (
	"sort"
)

// Bundle is the output of shared-shape extraction: named top-level entity
// schemas plus a flat definitions table they (and each other) refer to by name.
type Bundle struct {
	Definitions map[string]*Node `json:"definitions,omitempty"`
	Entities    map[string]*Node `json:"entities"`
}

// NewBundle returns an empty bundle.
func NewBundle() *Bundle {
	return &Bundle{
		Definitions: map[string]*Node{},
		Entities:    map[string]*Node{},
	}
}

// EntityNames returns entity names in sorted order.
func (b *Bundle) EntityNames() []string {
	return sortedKeys(b.Entities)
}

// DefinitionNames returns definition names in sorted order.
func (b *Bundle) DefinitionNames() []string {
	return sortedKeys(b.Definitions)
}

// Expand returns a copy of the entity schemas with every reference replaced
// by a copy of its definition body. Unknown references and references nested
// deeper than maxDepth are left in place.
func (b *Bundle) Expand(maxDepth int) map[string]*Node {
	out := make(map[string]*Node, len(b.Entities))
	for name, n := range b.Entities {
		out[name] = b.expand(n, 0, maxDepth)
	}
	return out
}

// ExpandNode inlines references inside n using the bundle's definitions.
func (b *Bundle) ExpandNode(n *Node, maxDepth int) *Node {
	return b.expand(n, 0, maxDepth)
}

func (b *Bundle) expand(n *Node, depth, maxDepth int) *Node {
	if n == nil {
		return nil
	}
	if maxDepth > 0 && depth > maxDepth {
		return n.Clone()
	}
	switch n.Kind {
	case KindReference:
		body, ok := b.Definitions[n.Ref]
		if !ok {
			return n.Clone()
		}
		return b.expand(body, depth+1, maxDepth)
	case KindObject:
		out := n.Clone()
		if n.Properties != nil {
			out.Properties = NewProperties()
			for pair := n.Properties.Oldest(); pair != nil; pair = pair.Next() {
				out.Properties.Set(pair.Key, b.expand(pair.Value, depth+1, maxDepth))
			}
		}
		return out
	case KindArray:
		out := n.Clone()
		out.Items = b.expand(n.Items, depth+1, maxDepth)
		return out
	case KindUnion:
		out := n.Clone()
		for i, br := range n.AnyOf {
			out.AnyOf[i] = b.expand(br, depth+1, maxDepth)
		}
		return out
	default:
		return n.Clone()
	}
}

func sortedKeys(m map[string]*Node) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
