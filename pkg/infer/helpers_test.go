package infer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/usestring/schemainfer/pkg/schema"
	"github.com/usestring/schemainfer/pkg/value"
)

func mustJSON(t *testing.T, s string) value.Value {
	t.Helper()
	v, err := value.ParseJSON([]byte(s))
	require.NoError(t, err)
	return v
}

func mustJSONs(t *testing.T, docs ...string) []value.Value {
	t.Helper()
	out := make([]value.Value, len(docs))
	for i, d := range docs {
		out[i] = mustJSON(t, d)
	}
	return out
}

// accepts is a small structural validator over the schema subset, used to
// check acceptance properties without leaving the package.
func accepts(n *schema.Node, v value.Value) bool {
	if n.IsEmpty() || n.Kind == schema.KindAny {
		return true
	}
	if v.IsNull() && n.AcceptsNull() {
		return true
	}
	switch n.Kind {
	case schema.KindNull:
		return v.IsNull()
	case schema.KindBoolean:
		return v.Kind() == value.KindBool
	case schema.KindInteger:
		return v.Kind() == value.KindInt && enumAccepts(n, v)
	case schema.KindNumber:
		return v.Kind() == value.KindInt || v.Kind() == value.KindFloat
	case schema.KindString:
		return v.Kind() == value.KindString && enumAccepts(n, v)
	case schema.KindArray:
		if !v.IsSeq() {
			return false
		}
		for _, item := range v.Items() {
			if item.IsTruncated() {
				continue
			}
			if !accepts(n.Items, item) {
				return false
			}
		}
		return true
	case schema.KindObject:
		if !v.IsMap() {
			return false
		}
		for _, key := range n.Required {
			if _, ok := v.Get(key); !ok {
				return false
			}
		}
		for _, key := range v.Keys() {
			child, _ := v.Get(key)
			if p := n.Prop(key); p != nil && !accepts(p, child) {
				return false
			}
		}
		return true
	case schema.KindUnion:
		for _, b := range n.AnyOf {
			if accepts(b, v) {
				return true
			}
		}
		return false
	}
	return false
}

func enumAccepts(n *schema.Node, v value.Value) bool {
	if len(n.Enum) == 0 {
		return true
	}
	key := schema.EnumKey(v.Interface())
	for _, e := range n.Enum {
		if schema.EnumKey(e) == key {
			return true
		}
	}
	return false
}
