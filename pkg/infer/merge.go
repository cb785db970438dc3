package infer

import (
	"github.com/usestring/schemainfer/pkg/schema"
)

// Merge unifies nodes describing the same slot into one node that accepts
// every input. Nested unions are flattened first; empty-schema inputs add
// nothing. An object/array clash keeps the first-seen composite kind and
// reports the other through Options.OnConflict.
func Merge(nodes []*schema.Node, opts *Options) *schema.Node {
	w := newWalker(opts, "")
	return w.merge(nodes, rootPath, 0)
}

// flattened is the union-free view of a merge input list.
type flattened struct {
	nodes   []*schema.Node
	sawNull bool
	limit   *schema.Node
}

func (f *flattened) add(n *schema.Node) {
	if n == nil {
		return
	}
	switch {
	case n.Kind == schema.KindAny:
		if n.Format == schema.FormatDepthLimit && f.limit == nil {
			f.limit = n
		}
	case n.Kind == schema.KindNull:
		f.sawNull = true
	case n.Kind == schema.KindUnion:
		for _, b := range n.AnyOf {
			f.add(b)
		}
	case n.Nullable:
		f.sawNull = true
		cp := n.Clone()
		cp.Nullable = false
		f.nodes = append(f.nodes, cp)
	default:
		f.nodes = append(f.nodes, n)
	}
}

func (w *walker) merge(nodes []*schema.Node, path string, depth int) *schema.Node {
	if depth > w.opts.maxDepth() {
		return schema.DepthLimit()
	}

	var flat flattened
	for _, n := range nodes {
		flat.add(n)
	}

	if len(flat.nodes) == 0 {
		switch {
		case flat.sawNull:
			// null-only evidence means under-sampling, not a null type
			return &schema.Node{Kind: schema.KindString, Nullable: true}
		case flat.limit != nil:
			return flat.limit.Clone()
		default:
			return schema.Any()
		}
	}

	var (
		compositeKind schema.Kind
		objects       []*schema.Node
		arrays        []*schema.Node
		refs          []*schema.Node
		refSeen       = map[string]bool{}
		scalarOrder   []schema.Kind
		scalars       = map[schema.Kind][]*schema.Node{}
	)

	for _, n := range flat.nodes {
		switch n.Kind {
		case schema.KindObject, schema.KindArray:
			if compositeKind == "" {
				compositeKind = n.Kind
			}
			if n.Kind != compositeKind {
				w.conflict(path, compositeKind, n.Kind, "merge")
				continue
			}
			if n.Kind == schema.KindObject {
				objects = append(objects, n)
			} else {
				arrays = append(arrays, n)
			}
		case schema.KindReference:
			if !refSeen[n.Ref] {
				refSeen[n.Ref] = true
				refs = append(refs, n)
			}
		default:
			if _, ok := scalars[n.Kind]; !ok {
				scalarOrder = append(scalarOrder, n.Kind)
			}
			scalars[n.Kind] = append(scalars[n.Kind], n)
		}
	}

	branches := make([]*schema.Node, 0, len(scalarOrder)+len(refs)+2)
	switch compositeKind {
	case schema.KindObject:
		branches = append(branches, w.mergeObjects(objects, path, depth))
	case schema.KindArray:
		branches = append(branches, w.mergeArrays(arrays, path, depth))
	}
	for _, r := range refs {
		branches = append(branches, r.Clone())
	}
	for _, k := range scalarOrder {
		branches = append(branches, mergeScalars(k, scalars[k]))
	}

	if len(branches) == 1 && !flat.sawNull {
		return branches[0]
	}
	if flat.sawNull {
		branches = append(branches, schema.Null())
	}
	return schema.Union(branches...)
}

func (w *walker) mergeObjects(objects []*schema.Node, path string, depth int) *schema.Node {
	out := schema.Object()
	children := map[string][]*schema.Node{}
	var order []string
	for _, o := range objects {
		if out.Description == "" {
			out.Description = o.Description
		}
		if o.Properties == nil {
			continue
		}
		for pair := o.Properties.Oldest(); pair != nil; pair = pair.Next() {
			if _, ok := children[pair.Key]; !ok {
				order = append(order, pair.Key)
			}
			children[pair.Key] = append(children[pair.Key], pair.Value)
		}
	}
	for _, k := range order {
		out.Set(k, w.merge(children[k], childPath(path, k), depth+1))
	}
	out.Required = intersectRequired(objects)
	return out
}

// intersectRequired keeps keys required by every input, in first-input order.
func intersectRequired(objects []*schema.Node) []string {
	if len(objects) == 0 || len(objects[0].Required) == 0 {
		return nil
	}
	var out []string
	for _, key := range objects[0].Required {
		all := true
		for _, o := range objects[1:] {
			if !o.IsRequired(key) {
				all = false
				break
			}
		}
		if all {
			out = append(out, key)
		}
	}
	return out
}

func (w *walker) mergeArrays(arrays []*schema.Node, path string, depth int) *schema.Node {
	items := make([]*schema.Node, 0, len(arrays))
	desc := ""
	for _, a := range arrays {
		if desc == "" {
			desc = a.Description
		}
		items = append(items, a.Items)
	}
	out := schema.Array(w.merge(items, itemsPath(path), depth+1))
	out.Description = desc
	return out
}

// mergeScalars collapses same-kind leaves. Format and pattern survive only
// when every input agrees; enums are unioned only when every input has one.
func mergeScalars(kind schema.Kind, nodes []*schema.Node) *schema.Node {
	out := &schema.Node{Kind: kind}
	first := nodes[0]
	out.Format = first.Format
	out.Pattern = first.Pattern
	out.Description = first.Description
	enumAll := len(first.Enum) > 0

	for _, n := range nodes[1:] {
		if n.Format != out.Format {
			out.Format = ""
		}
		if n.Pattern != out.Pattern {
			out.Pattern = ""
		}
		if out.Description == "" {
			out.Description = n.Description
		}
		if len(n.Enum) == 0 {
			enumAll = false
		}
	}

	if enumAll {
		seen := map[string]bool{}
		for _, n := range nodes {
			for _, v := range n.Enum {
				k := schema.EnumKey(v)
				if seen[k] {
					continue
				}
				seen[k] = true
				out.Enum = append(out.Enum, v)
			}
		}
	}
	return out
}
