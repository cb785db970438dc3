package value

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/valyala/fastjson"
	"sigs.k8s.io/yaml"
)

// ParseJSON decodes a JSON document. Object key order is preserved. A number
// is an Int when it parses as int64, otherwise a Float.
func ParseJSON(data []byte) (Value, error) {
	var p fastjson.Parser
	v, err := p.ParseBytes(data)
	if err != nil {
		return Value{}, fmt.Errorf("parsing JSON: %w", err)
	}
	return fromFastJSON(v)
}

// ParseYAML decodes a YAML document by converting it to JSON first.
func ParseYAML(data []byte) (Value, error) {
	js, err := yaml.YAMLToJSON(data)
	if err != nil {
		return Value{}, fmt.Errorf("converting YAML: %w", err)
	}
	return ParseJSON(js)
}

func fromFastJSON(v *fastjson.Value) (Value, error) {
	switch v.Type() {
	case fastjson.TypeNull:
		return Null(), nil
	case fastjson.TypeTrue:
		return Bool(true), nil
	case fastjson.TypeFalse:
		return Bool(false), nil
	case fastjson.TypeNumber:
		if i, err := v.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := v.Float64()
		if err != nil {
			return Value{}, err
		}
		return Float(f), nil
	case fastjson.TypeString:
		b, err := v.StringBytes()
		if err != nil {
			return Value{}, err
		}
		return String(string(b)), nil
	case fastjson.TypeArray:
		arr, err := v.Array()
		if err != nil {
			return Value{}, err
		}
		items := make([]Value, 0, len(arr))
		for _, elem := range arr {
			item, err := fromFastJSON(elem)
			if err != nil {
				return Value{}, err
			}
			items = append(items, item)
		}
		return Seq(items...), nil
	case fastjson.TypeObject:
		obj, err := v.Object()
		if err != nil {
			return Value{}, err
		}
		fields := make([]Field, 0, obj.Len())
		var visitErr error
		obj.Visit(func(key []byte, elem *fastjson.Value) {
			if visitErr != nil {
				return
			}
			child, err := fromFastJSON(elem)
			if err != nil {
				visitErr = err
				return
			}
			fields = append(fields, F(string(key), child))
		})
		if visitErr != nil {
			return Value{}, visitErr
		}
		return Map(fields...), nil
	}
	return Value{}, fmt.Errorf("unsupported JSON type %s", v.Type())
}

// FromAny converts values produced by encoding/json, gojq or hand-built
// literals. Map keys are sorted since Go maps carry no order. Types outside
// the sample model become an invalid Value, which classifies as the empty schema.
func FromAny(v any) Value {
	switch val := v.(type) {
	case nil:
		return Null()
	case Value:
		return val
	case bool:
		return Bool(val)
	case int:
		return Int(int64(val))
	case int8:
		return Int(int64(val))
	case int16:
		return Int(int64(val))
	case int32:
		return Int(int64(val))
	case int64:
		return Int(val)
	case uint:
		return uintValue(uint64(val))
	case uint8:
		return Int(int64(val))
	case uint16:
		return Int(int64(val))
	case uint32:
		return Int(int64(val))
	case uint64:
		return uintValue(val)
	case float32:
		return Float(float64(val))
	case float64:
		return Float(val)
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return Int(i)
		}
		if f, err := val.Float64(); err == nil {
			return Float(f)
		}
		return String(val.String())
	case string:
		return String(val)
	case []any:
		items := make([]Value, len(val))
		for i, item := range val {
			items[i] = FromAny(item)
		}
		return Seq(items...)
	case []Value:
		return Seq(val...)
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fields := make([]Field, 0, len(keys))
		for _, k := range keys {
			fields = append(fields, F(k, FromAny(val[k])))
		}
		return Map(fields...)
	default:
		return Value{kind: kindInvalid}
	}
}

func uintValue(u uint64) Value {
	if u > math.MaxInt64 {
		return Float(float64(u))
	}
	return Int(int64(u))
}
