package infer

import (
	"github.com/usestring/schemainfer/pkg/schema"
)

// WidenNullable returns a copy of node where object properties matching the
// rules accept null. Identifier, title and role keys are always widened.
// Optional string and number properties are widened too. An identifier or
// title that was only ever null becomes a string (formatted for identifiers)
// or null. Widening never narrows: leaves that already accept null are left
// alone, and composite kinds are never changed.
func WidenNullable(node *schema.Node, rules NullableRules) *schema.Node {
	return widen(node, rules)
}

func widen(n *schema.Node, rules NullableRules) *schema.Node {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case schema.KindObject:
		out := n.Clone()
		if n.Properties == nil {
			return out
		}
		out.Properties = schema.NewProperties()
		for pair := n.Properties.Oldest(); pair != nil; pair = pair.Next() {
			child := widen(pair.Value, rules)
			out.Properties.Set(pair.Key, widenProperty(pair.Key, child, n.IsRequired(pair.Key), rules))
		}
		return out
	case schema.KindArray:
		out := n.Clone()
		out.Items = widen(n.Items, rules)
		return out
	case schema.KindUnion:
		out := n.Clone()
		for i, b := range n.AnyOf {
			out.AnyOf[i] = widen(b, rules)
		}
		return out
	default:
		return n.Clone()
	}
}

func widenProperty(key string, v *schema.Node, required bool, rules NullableRules) *schema.Node {
	ident := rules.isIdentifier(key)
	named := ident || rules.isTitle(key)

	if named && v.IsNullOnly() {
		format := ""
		if ident {
			format = rules.IdentifierFormat
		}
		return schema.Union(schema.String(format), schema.Null())
	}
	if ident && rules.IdentifierFormat != "" && isNullPlaceholder(v) {
		out := v.Clone()
		out.Format = rules.IdentifierFormat
		return out
	}

	if named || rules.isRole(key) {
		return addNull(v)
	}
	if !required && (v.Kind == schema.KindString || v.Kind == schema.KindNumber) {
		return addNull(v)
	}
	return v
}

// isNullPlaceholder reports whether n is the bare nullable string Merge
// produces for a slot that only ever held null.
func isNullPlaceholder(n *schema.Node) bool {
	return n != nil && n.Kind == schema.KindString && n.Nullable &&
		n.Format == "" && n.Pattern == "" && len(n.Enum) == 0
}

// addNull appends a null branch to a scalar leaf or an all-scalar union.
func addNull(n *schema.Node) *schema.Node {
	if n.AcceptsNull() {
		return n
	}
	switch {
	case n.Kind.IsScalar() && n.Kind != schema.KindBoolean:
		return schema.Union(n, schema.Null())
	case n.Kind == schema.KindUnion:
		for _, b := range n.AnyOf {
			if !b.Kind.IsScalar() {
				return n
			}
		}
		out := n.Clone()
		out.AnyOf = append(out.AnyOf, schema.Null())
		return out
	}
	return n
}
