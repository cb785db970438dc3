package value

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON_Kinds(t *testing.T) {
	tests := []struct {
		name string
		json string
		want Kind
	}{
		{"null", `null`, KindNull},
		{"true", `true`, KindBool},
		{"false", `false`, KindBool},
		{"integer", `42`, KindInt},
		{"negative", `-7`, KindInt},
		{"float", `3.14`, KindFloat},
		{"float_whole", `1.0`, KindFloat},
		{"string", `"hi"`, KindString},
		{"array", `[1,2]`, KindSeq},
		{"object", `{"a":1}`, KindMap},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseJSON([]byte(tt.json))
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.Kind())
		})
	}
}

func TestParseJSON_PreservesKeyOrder(t *testing.T) {
	v, err := ParseJSON([]byte(`{"zeta":1,"alpha":2,"mid":{"b":true,"a":false}}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, v.Keys())
	mid, ok := v.Get("mid")
	require.True(t, ok)
	assert.Equal(t, []string{"b", "a"}, mid.Keys())

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":1,"alpha":2,"mid":{"b":true,"a":false}}`, string(out))
}

func TestParseJSON_StringsAreUnquoted(t *testing.T) {
	v, err := ParseJSON([]byte(`"a \"quoted\" word"`))
	require.NoError(t, err)
	assert.Equal(t, `a "quoted" word`, v.AsString())
}

func TestParseJSON_Invalid(t *testing.T) {
	_, err := ParseJSON([]byte(`{"a":`))
	assert.Error(t, err)
}

func TestParseYAML(t *testing.T) {
	v, err := ParseYAML([]byte("name: widget\ncount: 3\ntags:\n  - a\n  - b\n"))
	require.NoError(t, err)
	require.Equal(t, KindMap, v.Kind())

	count, _ := v.Get("count")
	assert.Equal(t, KindInt, count.Kind())
	assert.Equal(t, int64(3), count.AsInt())

	tags, _ := v.Get("tags")
	assert.Len(t, tags.Items(), 2)
}

func TestFromAny(t *testing.T) {
	var decoded any
	require.NoError(t, json.Unmarshal([]byte(`{"b":[1,2.5,"x",null],"a":true}`), &decoded))

	v := FromAny(decoded)
	require.Equal(t, KindMap, v.Kind())
	assert.Equal(t, []string{"a", "b"}, v.Keys(), "keys are sorted")

	b, _ := v.Get("b")
	kinds := make([]Kind, 0, len(b.Items()))
	for _, item := range b.Items() {
		kinds = append(kinds, item.Kind())
	}
	assert.Equal(t, []Kind{KindFloat, KindFloat, KindString, KindNull}, kinds)

	assert.Equal(t, KindInt, FromAny(json.Number("12")).Kind())
	assert.Equal(t, KindFloat, FromAny(json.Number("1.5")).Kind())
	assert.Equal(t, kindInvalid, FromAny(struct{}{}).Kind())
}

func TestInterface_RoundTrip(t *testing.T) {
	v := Map(
		F("id", Int(7)),
		F("ratio", Float(0.5)),
		F("tags", Seq(String("a"))),
		F("none", Null()),
	)

	got := v.Interface().(map[string]any)
	assert.Equal(t, 7, got["id"])
	assert.Equal(t, 0.5, got["ratio"])
	assert.Equal(t, []any{"a"}, got["tags"])
	assert.Nil(t, got["none"])
}

func TestSentinels(t *testing.T) {
	assert.True(t, Truncated(5).IsTruncated())
	assert.False(t, Truncated(5).IsError())
	assert.True(t, ErrorResponse("timeout").IsError())

	assert.False(t, Map(F(ErrorKey, Null())).IsError())
	assert.False(t, Map(F(ErrorKey, String(""))).IsError())
	assert.True(t, Map(F(ErrorKey, Int(500)), F(ErrorBodyKey, String("oops"))).IsError())

	assert.False(t, String("_truncated").IsTruncated())
}

func TestKeys_SkipsSentinelKeys(t *testing.T) {
	v := Map(F("a", Int(1)), F(ErrorBodyKey, String("x")), F("b", Int(2)))
	assert.Equal(t, []string{"a", "b"}, v.Keys())
}

func TestMap_DuplicateKeysKeepFirstPosition(t *testing.T) {
	v := Map(F("a", Int(1)), F("b", Int(2)), F("a", Int(3)))
	assert.Equal(t, []string{"a", "b"}, v.Keys())
	a, _ := v.Get("a")
	assert.Equal(t, int64(3), a.AsInt())
}
