package infer

import (
	"regexp"
	"strconv"

	"github.com/usestring/schemainfer/pkg/schema"
	"github.com/usestring/schemainfer/pkg/value"
)

var epochMsDateRegex = regexp.MustCompile(schema.EpochMsDatePattern)

// errorProperty is the single property kept for error-response sentinels.
const errorProperty = "error"

// Classify returns the schema node describing a single value. It never fails:
// input outside the sample model yields the empty schema.
func Classify(v value.Value, opts *Options) *schema.Node {
	w := newWalker(opts, "")
	return w.classify(v, "", rootPath, 0)
}

func (w *walker) classify(v value.Value, key, path string, depth int) *schema.Node {
	if depth > w.opts.maxDepth() {
		return schema.DepthLimit()
	}

	switch v.Kind() {
	case value.KindNull:
		return schema.Null()
	case value.KindBool:
		return schema.Scalar(schema.KindBoolean)
	case value.KindInt:
		n := schema.Scalar(schema.KindInteger)
		if w.opts.isEnumField(key) {
			n.Enum = []any{v.AsInt()}
		}
		return n
	case value.KindFloat:
		return schema.Scalar(schema.KindNumber)
	case value.KindString:
		n := classifyString(v.AsString())
		if w.opts.isEnumField(key) {
			n.Enum = []any{v.AsString()}
		}
		return n
	case value.KindSeq:
		return w.classifySeq(v, path, depth)
	case value.KindMap:
		return w.classifyMap(v, path, depth)
	default:
		return schema.Any()
	}
}

func classifyString(s string) *schema.Node {
	if epochMsDateRegex.MatchString(s) {
		return &schema.Node{
			Kind:    schema.KindString,
			Format:  schema.FormatEpochMsDate,
			Pattern: schema.EpochMsDatePattern,
		}
	}
	if looksLikeUUID(s) {
		return schema.String(schema.FormatUUID)
	}
	return schema.String("")
}

// looksLikeUUID checks the canonical 8-4-4-4-12 layout and that the leading
// block is hex.
func looksLikeUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	hyphens := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '-' {
			hyphens++
		}
	}
	if hyphens != 4 || s[8] != '-' || s[13] != '-' || s[18] != '-' || s[23] != '-' {
		return false
	}
	_, err := strconv.ParseUint(s[:8], 16, 64)
	return err == nil
}

func (w *walker) classifySeq(v value.Value, path string, depth int) *schema.Node {
	items := v.Items()
	if len(items) == 0 {
		return schema.Array(schema.Any())
	}
	ip := itemsPath(path)
	nodes := make([]*schema.Node, 0, len(items))
	for _, item := range items {
		if item.IsTruncated() {
			continue
		}
		nodes = append(nodes, w.classify(item, "", ip, depth+1))
	}
	return schema.Array(w.merge(nodes, ip, depth+1))
}

func (w *walker) classifyMap(v value.Value, path string, depth int) *schema.Node {
	if v.IsTruncated() {
		return schema.Array(schema.Any())
	}
	if v.IsError() {
		return schema.Object().Set(errorProperty, schema.String(""))
	}
	obj := schema.Object()
	for _, f := range v.Fields() {
		if value.IsSentinelKey(f.Key) {
			continue
		}
		obj.Set(f.Key, w.classify(f.Value, f.Key, childPath(path, f.Key), depth+1))
	}
	return obj
}
