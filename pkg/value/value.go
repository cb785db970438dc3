// Package value is the sample model fed into schema inference.
//
// A Value is a closed tagged variant over {Null, Bool, Int, Float, String, Seq, Map}.
// Raw samples are converted into it once, at the boundary (ParseJSON, ParseYAML,
// FromAny), so the inference engine can switch exhaustively on Kind instead of
// probing dynamic types.
package value

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindSeq
	KindMap

	// kindInvalid marks input that could not be represented; it only comes
	// out of FromAny and classifies as the empty schema.
	kindInvalid Kind = 255
)

// String returns the lowercase variant name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindSeq:
		return "seq"
	case KindMap:
		return "map"
	case kindInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Sentinel keys written by sample acquisition. They never become schema properties.
const (
	TruncatedKey = "_truncated" // count of array items omitted after this marker
	ErrorKey     = "_error"     // error status or message for a failed fetch
	ErrorBodyKey = "_body"      // excerpt of the failed response body
)

// Field is one key/value pair of a Map, in document order.
type Field struct {
	Key   string
	Value Value
}

// Value is an immutable sample value. The zero Value is Null.
type Value struct {
	kind   Kind
	b      bool
	i      int64
	f      float64
	s      string
	items  []Value
	fields []Field
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int wraps an integer.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float wraps a floating point number.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// String wraps a string.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Seq builds a sequence from items.
func Seq(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindSeq, items: items}
}

// Map builds a map from fields. Later duplicates of a key replace earlier ones
// in place so the first position is kept.
func Map(fields ...Field) Value {
	out := make([]Field, 0, len(fields))
	pos := make(map[string]int, len(fields))
	for _, f := range fields {
		if i, ok := pos[f.Key]; ok {
			out[i].Value = f.Value
			continue
		}
		pos[f.Key] = len(out)
		out = append(out, f)
	}
	return Value{kind: KindMap, fields: out}
}

// F is shorthand for constructing a Field.
func F(key string, v Value) Field { return Field{Key: key, Value: v} }

// Truncated returns the "n more items omitted" sentinel.
func Truncated(n int) Value { return Map(F(TruncatedKey, Int(int64(n)))) }

// ErrorResponse returns the error-response sentinel.
func ErrorResponse(msg string) Value { return Map(F(ErrorKey, String(msg))) }

func (v Value) Kind() Kind         { return v.kind }
func (v Value) IsNull() bool       { return v.kind == KindNull }
func (v Value) AsBool() bool       { return v.b }
func (v Value) AsInt() int64       { return v.i }
func (v Value) AsFloat() float64   { return v.f }
func (v Value) AsString() string   { return v.s }
func (v Value) Items() []Value     { return v.items }
func (v Value) Fields() []Field    { return v.fields }
func (v Value) Len() int           { return len(v.items) + len(v.fields) }
func (v Value) IsMap() bool        { return v.kind == KindMap }
func (v Value) IsSeq() bool        { return v.kind == KindSeq }
func (v Value) IsScalarKind() bool { return v.kind != KindSeq && v.kind != KindMap }

// Get returns the value stored under key in a Map.
func (v Value) Get(key string) (Value, bool) {
	for _, f := range v.fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Keys returns the map keys in document order, sentinel keys excluded.
func (v Value) Keys() []string {
	keys := make([]string, 0, len(v.fields))
	for _, f := range v.fields {
		if IsSentinelKey(f.Key) {
			continue
		}
		keys = append(keys, f.Key)
	}
	return keys
}

// IsSentinelKey reports whether key is reserved for acquisition sentinels.
func IsSentinelKey(key string) bool {
	return key == TruncatedKey || key == ErrorKey || key == ErrorBodyKey
}

// IsTruncated reports whether v is an "items omitted" marker.
func (v Value) IsTruncated() bool {
	if v.kind != KindMap {
		return false
	}
	t, ok := v.Get(TruncatedKey)
	return ok && !t.IsNull()
}

// IsError reports whether v is an error-response sentinel.
func (v Value) IsError() bool {
	if v.kind != KindMap {
		return false
	}
	e, ok := v.Get(ErrorKey)
	if !ok || e.IsNull() {
		return false
	}
	switch e.kind {
	case KindBool:
		return e.b
	case KindString:
		return e.s != ""
	default:
		return true
	}
}

// Interface converts v into the plain Go shapes produced by encoding/json and
// accepted by gojq: nil, bool, int, float64, string, []any, map[string]any.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		if int64(int(v.i)) == v.i {
			return int(v.i)
		}
		return float64(v.i)
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindSeq:
		out := make([]any, len(v.items))
		for i, item := range v.items {
			out[i] = item.Interface()
		}
		return out
	case KindMap:
		out := make(map[string]any, len(v.fields))
		for _, f := range v.fields {
			out[f.Key] = f.Value.Interface()
		}
		return out
	default:
		return nil
	}
}

// MarshalJSON encodes v keeping map key order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes JSON into v keeping map key order.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := ParseJSON(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func (v Value) writeJSON(buf *bytes.Buffer) error {
	switch v.kind {
	case KindNull, kindInvalid:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.b))
	case KindInt:
		buf.WriteString(strconv.FormatInt(v.i, 10))
	case KindFloat:
		b, err := json.Marshal(v.f)
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindString:
		b, err := json.Marshal(v.s)
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindSeq:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindMap:
		buf.WriteByte('{')
		for i, f := range v.fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			k, err := json.Marshal(f.Key)
			if err != nil {
				return err
			}
			buf.Write(k)
			buf.WriteByte(':')
			if err := f.Value.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}
