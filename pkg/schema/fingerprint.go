package schema

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// fingerprintLen is the number of hex characters kept from the SHA-256 digest.
const fingerprintLen = 16

// Fingerprint returns a content hash of n's structure. Descriptions are
// ignored, and property order, required order, enum order and union branch
// order do not affect the result.
func Fingerprint(n *Node) string {
	sum := sha256.Sum256(CanonicalJSON(n))
	return hex.EncodeToString(sum[:])[:fingerprintLen]
}

// CanonicalJSON returns the canonical encoding hashed by Fingerprint.
func CanonicalJSON(n *Node) []byte {
	b, err := json.Marshal(canonical(n))
	if err != nil {
		// canonical only produces maps, slices, strings and enum scalars
		return nil
	}
	return b
}

// Equal reports whether a and b are structurally equal, ignoring
// descriptions and ordering.
func Equal(a, b *Node) bool {
	return string(CanonicalJSON(a)) == string(CanonicalJSON(b))
}

func canonical(n *Node) map[string]any {
	out := map[string]any{}
	if n == nil {
		return out
	}
	if n.Kind != KindAny {
		out["kind"] = string(n.Kind)
	}
	if n.Format != "" {
		out["format"] = n.Format
	}
	if n.Pattern != "" {
		out["pattern"] = n.Pattern
	}
	if n.Nullable {
		out["nullable"] = true
	}
	if len(n.Enum) > 0 {
		out["enum"] = sortedByJSON(n.Enum)
	}
	if n.Items != nil || n.Kind == KindArray {
		out["items"] = canonical(n.Items)
	}
	if n.Kind == KindObject || (n.Properties != nil && n.Properties.Len() > 0) {
		props := map[string]any{}
		if n.Properties != nil {
			for pair := n.Properties.Oldest(); pair != nil; pair = pair.Next() {
				props[pair.Key] = canonical(pair.Value)
			}
		}
		out["properties"] = props
	}
	if len(n.Required) > 0 {
		req := append([]string(nil), n.Required...)
		sort.Strings(req)
		out["required"] = req
	}
	if len(n.AnyOf) > 0 {
		branches := make([]any, len(n.AnyOf))
		for i, b := range n.AnyOf {
			branches[i] = canonical(b)
		}
		out["anyOf"] = sortedByJSON(branches)
	}
	if n.Ref != "" {
		out["ref"] = n.Ref
	}
	return out
}

func sortedByJSON(values []any) []any {
	type keyed struct {
		key string
		v   any
	}
	ks := make([]keyed, len(values))
	for i, v := range values {
		b, _ := json.Marshal(v)
		ks[i] = keyed{key: string(b), v: v}
	}
	sort.SliceStable(ks, func(i, j int) bool { return ks[i].key < ks[j].key })
	out := make([]any, len(ks))
	for i, k := range ks {
		out[i] = k.v
	}
	return out
}

// EnumKey returns the canonical identity of an enum value. Integral floats and
// integers share a key so values survive a JSON round-trip.
func EnumKey(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
