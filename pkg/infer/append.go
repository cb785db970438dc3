package infer

import (
	"github.com/usestring/schemainfer/pkg/schema"
)

// MergeAppend combines a previously persisted schema with a freshly inferred
// one for the same entity. The result accepts everything either side accepts,
// and neither input is modified. An object/array clash keeps prior and is
// reported through Options.OnConflict. MergeAppend(x, x) is equal to x.
func MergeAppend(prior, incoming *schema.Node, opts *Options) *schema.Node {
	w := newWalker(opts, "")
	return w.appendMerge(prior, incoming, rootPath, 0)
}

func (w *walker) appendMerge(prior, incoming *schema.Node, path string, depth int) *schema.Node {
	if incoming.IsEmpty() {
		if prior == nil {
			return schema.Any()
		}
		return prior.Clone()
	}
	if prior.IsEmpty() {
		return incoming.Clone()
	}
	if depth > w.opts.maxDepth() {
		return prior.Clone()
	}

	if prior.Kind == incoming.Kind {
		switch prior.Kind {
		case schema.KindObject:
			return w.appendObject(prior, incoming, path, depth)
		case schema.KindArray:
			out := prior.Clone()
			out.Items = w.appendMerge(prior.Items, incoming.Items, itemsPath(path), depth+1)
			return out
		case schema.KindNull:
			return prior.Clone()
		case schema.KindReference:
			if prior.Ref == incoming.Ref {
				return prior.Clone()
			}
		case schema.KindUnion:
		case schema.KindAny:
			// depth-limit leaves
			return prior.Clone()
		default:
			return appendScalar(prior, incoming)
		}
	} else if isContainer(prior.Kind) && isContainer(incoming.Kind) {
		w.conflict(path, prior.Kind, incoming.Kind, "append")
		return prior.Clone()
	}

	return w.appendUnion(prior, incoming, path, depth)
}

func isContainer(k schema.Kind) bool {
	return k == schema.KindObject || k == schema.KindArray
}

func (w *walker) appendObject(prior, incoming *schema.Node, path string, depth int) *schema.Node {
	out := schema.Object()
	out.Description = prior.Description
	if out.Description == "" {
		out.Description = incoming.Description
	}
	for _, key := range prior.Keys() {
		p := prior.Prop(key)
		if in := incoming.Prop(key); in != nil {
			out.Set(key, w.appendMerge(p, in, childPath(path, key), depth+1))
		} else {
			out.Set(key, p.Clone())
		}
	}
	for _, key := range incoming.Keys() {
		if prior.Prop(key) == nil {
			out.Set(key, incoming.Prop(key).Clone())
		}
	}
	for _, key := range prior.Required {
		if incoming.IsRequired(key) {
			out.Required = append(out.Required, key)
		}
	}
	return out
}

// appendScalar merges two leaves of the same scalar kind. A format is adopted
// from incoming when prior had none and dropped when both disagree. A pattern
// survives only when both sides carry the same one. Enums stay closed only if
// both sides are closed.
func appendScalar(prior, incoming *schema.Node) *schema.Node {
	out := prior.Clone()
	out.Nullable = prior.Nullable || incoming.Nullable
	if out.Description == "" {
		out.Description = incoming.Description
	}

	switch {
	case prior.Format == "":
		out.Format = incoming.Format
	case incoming.Format != "" && prior.Format != incoming.Format:
		out.Format = ""
	}
	if prior.Pattern != incoming.Pattern {
		out.Pattern = ""
	}

	if len(prior.Enum) == 0 || len(incoming.Enum) == 0 {
		out.Enum = nil
		return out
	}
	seen := map[string]bool{}
	for _, v := range prior.Enum {
		seen[schema.EnumKey(v)] = true
	}
	for _, v := range incoming.Enum {
		if k := schema.EnumKey(v); !seen[k] {
			seen[k] = true
			out.Enum = append(out.Enum, v)
		}
	}
	return out
}

// appendUnion handles differing kinds (outside the object/array clash) and
// unions on either side. Branches of prior keep their position; incoming
// branches are merged into a prior branch of the same kind or appended.
func (w *walker) appendUnion(prior, incoming *schema.Node, path string, depth int) *schema.Node {
	pb, pNull := unionBranches(prior)
	ib, iNull := unionBranches(incoming)

	out := make([]*schema.Node, 0, len(pb)+len(ib)+1)
	for _, b := range pb {
		out = append(out, b.Clone())
	}

	for _, b := range ib {
		idx := -1
		for i, o := range out {
			if o.Kind == b.Kind && (b.Kind != schema.KindReference || o.Ref == b.Ref) {
				idx = i
				break
			}
		}
		switch {
		case idx >= 0:
			out[idx] = w.appendMerge(out[idx], b, path, depth+1)
		case isContainer(b.Kind) && hasContainer(out):
			w.conflict(path, containerKind(out), b.Kind, "append")
		default:
			out = append(out, b.Clone())
		}
	}

	if len(out) == 1 && !pNull && !iNull {
		return out[0]
	}
	if pNull || iNull {
		out = append(out, schema.Null())
	}
	return schema.Union(out...)
}

// unionBranches splits n into its non-null branches and whether it accepts
// null. Nullable scalars are split into the bare scalar and a null flag.
func unionBranches(n *schema.Node) ([]*schema.Node, bool) {
	var (
		out      []*schema.Node
		hasNull  bool
		traverse func(*schema.Node)
	)
	traverse = func(b *schema.Node) {
		switch {
		case b.IsEmpty():
		case b.Kind == schema.KindNull:
			hasNull = true
		case b.Kind == schema.KindUnion:
			for _, c := range b.AnyOf {
				traverse(c)
			}
		case b.Nullable:
			hasNull = true
			cp := b.Clone()
			cp.Nullable = false
			out = append(out, cp)
		default:
			out = append(out, b)
		}
	}
	traverse(n)
	return out, hasNull
}

func hasContainer(nodes []*schema.Node) bool {
	return containerKind(nodes) != schema.KindAny
}

func containerKind(nodes []*schema.Node) schema.Kind {
	for _, n := range nodes {
		if isContainer(n.Kind) {
			return n.Kind
		}
	}
	return schema.KindAny
}
