package infer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/schemainfer/pkg/schema"
	"github.com/usestring/schemainfer/pkg/value"
)

func TestRequiredKeys(t *testing.T) {
	tests := []struct {
		name    string
		samples []string
		path    []string
		want    []string
	}{
		{"empty", nil, nil, nil},
		{"single sample", []string{`{"a":1}`}, nil, nil},
		{"all present", []string{`{"a":1,"b":2}`, `{"b":3,"a":4}`}, nil, []string{"a", "b"}},
		{"one missing", []string{`{"a":1,"b":2}`, `{"a":1}`}, nil, []string{"a"}},
		{"null still present", []string{`{"a":null}`, `{"a":1}`}, nil, []string{"a"}},
		{"non-map sample", []string{`{"a":1}`, `[1]`}, nil, nil},
		{"nested path", []string{`{"o":{"x":1,"y":2}}`, `{"o":{"x":3}}`}, []string{"o"}, []string{"x"}},
		{"path missing", []string{`{"o":{"x":1}}`, `{"p":{}}`}, []string{"o"}, nil},
		{"path not a map", []string{`{"o":{"x":1}}`, `{"o":5}`}, []string{"o"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RequiredKeys(mustJSONs(t, tt.samples...), tt.path...)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRequiredKeys_IgnoresSentinelKeys(t *testing.T) {
	samples := []value.Value{
		value.Map(value.F("a", value.Int(1)), value.F(value.TruncatedKey, value.Null())),
		value.Map(value.F("a", value.Int(2)), value.F(value.TruncatedKey, value.Null())),
	}
	assert.Equal(t, []string{"a"}, RequiredKeys(samples))
}

func TestAnnotateRequired_Nested(t *testing.T) {
	samples := mustJSONs(t,
		`{"id":1,"owner":{"name":"a","mail":"x"},"tags":[{"k":"a","v":1},{"k":"b"}]}`,
		`{"id":2,"owner":{"name":"b"},"tags":[{"k":"c","v":2}]}`,
		`{"id":3,"owner":null,"tags":[]}`,
	)
	var nodes []*schema.Node
	for _, s := range samples {
		nodes = append(nodes, Classify(s, nil))
	}
	merged := Merge(nodes, nil)
	out := AnnotateRequired(merged, samples)

	assert.Equal(t, []string{"id", "owner", "tags"}, out.Required)

	owner := out.Prop("owner")
	require.Equal(t, schema.KindUnion, owner.Kind)
	assert.Equal(t, []string{"name"}, owner.AnyOf[0].Required, "null owner is not evidence")

	tags := out.Prop("tags")
	require.Equal(t, schema.KindArray, tags.Kind)
	assert.Equal(t, []string{"k"}, tags.Items.Required)

	assert.Empty(t, merged.Required, "input is left untouched")
}

func TestAnnotateRequired_SingleSample(t *testing.T) {
	s := mustJSON(t, `{"a":1,"b":{"c":2}}`)
	out := AnnotateRequired(Classify(s, nil), []value.Value{s})
	assert.Empty(t, out.Required)
	assert.Empty(t, out.Prop("b").Required)
}
