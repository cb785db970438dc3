// Package schema defines the recursive schema node produced and merged by
// inference, the definitions bundle produced by shared-shape extraction, and
// structural fingerprints used to detect repeated shapes.
package schema

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind is the structural type of a Node.
type Kind string

const (
	KindAny       Kind = "" // the empty schema: accepts anything
	KindNull      Kind = "null"
	KindBoolean   Kind = "boolean"
	KindInteger   Kind = "integer"
	KindNumber    Kind = "number"
	KindString    Kind = "string"
	KindArray     Kind = "array"
	KindObject    Kind = "object"
	KindReference Kind = "reference"
	KindUnion     Kind = "union"
)

// Well-known string formats.
const (
	FormatEpochMsDate = "epoch-ms-date"
	FormatUUID        = "uuid"
	// FormatDepthLimit marks an empty node cut off by the recursion cap.
	FormatDepthLimit = "depth-limit"
)

// EpochMsDatePattern is the literal pattern attached to epoch-ms-date strings.
const EpochMsDatePattern = `^/Date\(\d+\)/$`

// Properties is an insertion-ordered key → node mapping.
type Properties = orderedmap.OrderedMap[string, *Node]

// NewProperties returns an empty ordered property map.
func NewProperties() *Properties {
	return orderedmap.New[string, *Node]()
}

// Node is one schema node. Which fields are meaningful depends on Kind.
type Node struct {
	Kind    Kind   `json:"kind,omitempty"`
	Format  string `json:"format,omitempty"`
	Pattern string `json:"pattern,omitempty"`
	Enum    []any  `json:"enum,omitempty"`
	// Nullable on a scalar is shorthand for a union of that scalar with null.
	Nullable    bool        `json:"nullable,omitempty"`
	Items       *Node       `json:"items,omitempty"`
	Properties  *Properties `json:"properties,omitempty"`
	Required    []string    `json:"required,omitempty"`
	AnyOf       []*Node     `json:"anyOf,omitempty"`
	Ref         string      `json:"ref,omitempty"`
	Description string      `json:"description,omitempty"`
}

// Any returns the empty schema.
func Any() *Node { return &Node{} }

// Null returns a null-only node.
func Null() *Node { return &Node{Kind: KindNull} }

// Scalar returns a node of the given scalar kind.
func Scalar(k Kind) *Node { return &Node{Kind: k} }

// String returns a string node with an optional format.
func String(format string) *Node { return &Node{Kind: KindString, Format: format} }

// Array returns an array node over items. Nil items become the empty schema.
func Array(items *Node) *Node {
	if items == nil {
		items = Any()
	}
	return &Node{Kind: KindArray, Items: items}
}

// Object returns an object node with an empty property map.
func Object() *Node { return &Node{Kind: KindObject, Properties: NewProperties()} }

// Ref returns a reference to a named definition.
func Ref(name string) *Node { return &Node{Kind: KindReference, Ref: name} }

// Union returns a union over branches.
func Union(branches ...*Node) *Node { return &Node{Kind: KindUnion, AnyOf: branches} }

// DepthLimit returns the sentinel leaf used when recursion is capped.
func DepthLimit() *Node { return &Node{Format: FormatDepthLimit} }

// IsScalar reports whether k is a non-composite, non-null leaf kind.
func (k Kind) IsScalar() bool {
	switch k {
	case KindBoolean, KindInteger, KindNumber, KindString:
		return true
	}
	return false
}

// IsComposite reports whether k holds children or points at a definition.
func (k Kind) IsComposite() bool {
	return k == KindObject || k == KindArray || k == KindReference
}

// IsEmpty reports whether n is the empty schema (nil counts as empty).
func (n *Node) IsEmpty() bool {
	return n == nil || (n.Kind == KindAny && n.Format == "")
}

// Set stores a property, allocating the property map if needed.
func (n *Node) Set(key string, child *Node) *Node {
	if n.Properties == nil {
		n.Properties = NewProperties()
	}
	n.Properties.Set(key, child)
	return n
}

// Prop returns the property node for key, or nil.
func (n *Node) Prop(key string) *Node {
	if n == nil || n.Properties == nil {
		return nil
	}
	v, _ := n.Properties.Get(key)
	return v
}

// Keys returns the property keys in insertion order.
func (n *Node) Keys() []string {
	if n == nil || n.Properties == nil {
		return nil
	}
	keys := make([]string, 0, n.Properties.Len())
	for pair := n.Properties.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// IsRequired reports whether key is in the required set.
func (n *Node) IsRequired(key string) bool {
	for _, r := range n.Required {
		if r == key {
			return true
		}
	}
	return false
}

// AcceptsNull reports whether n explicitly accepts null.
func (n *Node) AcceptsNull() bool {
	if n == nil {
		return false
	}
	switch n.Kind {
	case KindNull:
		return true
	case KindUnion:
		for _, b := range n.AnyOf {
			if b.AcceptsNull() {
				return true
			}
		}
		return false
	default:
		return n.Nullable
	}
}

// IsNullOnly reports whether n accepts null and nothing else.
func (n *Node) IsNullOnly() bool {
	if n == nil {
		return false
	}
	switch n.Kind {
	case KindNull:
		return true
	case KindUnion:
		if len(n.AnyOf) == 0 {
			return false
		}
		for _, b := range n.AnyOf {
			if !b.IsNullOnly() {
				return false
			}
		}
		return true
	}
	return false
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := *n
	if n.Enum != nil {
		out.Enum = append([]any(nil), n.Enum...)
	}
	if n.Required != nil {
		out.Required = append([]string(nil), n.Required...)
	}
	out.Items = n.Items.Clone()
	if n.Properties != nil {
		out.Properties = NewProperties()
		for pair := n.Properties.Oldest(); pair != nil; pair = pair.Next() {
			out.Properties.Set(pair.Key, pair.Value.Clone())
		}
	}
	if n.AnyOf != nil {
		out.AnyOf = make([]*Node, len(n.AnyOf))
		for i, b := range n.AnyOf {
			out.AnyOf[i] = b.Clone()
		}
	}
	return &out
}
