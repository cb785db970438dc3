package infer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/schemainfer/pkg/schema"
)

func TestWidenNullable(t *testing.T) {
	rules := DefaultNullableRules()

	obj := schema.Object().
		Set("UserId", schema.String(schema.FormatUUID)).
		Set("JobTitle", schema.String("")).
		Set("Email", schema.String("")).
		Set("Count", schema.Scalar(schema.KindInteger)).
		Set("Score", schema.Scalar(schema.KindNumber)).
		Set("Name", schema.String("")).
		Set("Nick", schema.String("")).
		Set("Active", schema.Scalar(schema.KindBoolean)).
		Set("Address", schema.Object().Set("City", schema.String(""))).
		Set("Value", schema.Union(schema.String(""), schema.Scalar(schema.KindInteger)))
	obj.Required = []string{"UserId", "JobTitle", "Email", "Count", "Score", "Name", "Active", "Address", "Value"}

	out := WidenNullable(obj, rules)

	tests := []struct {
		key      string
		nullable bool
	}{
		{"UserId", true},   // identifier suffix
		{"JobTitle", true}, // title suffix
		{"Email", true},    // role
		{"Count", false},   // required integer
		{"Score", false},   // required number
		{"Name", false},    // required string
		{"Nick", true},     // optional string
		{"Active", false},  // boolean never widened
		{"Address", false}, // composite never widened
		{"Value", true},    // role on an all-scalar union
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.nullable, out.Prop(tt.key).AcceptsNull())
		})
	}

	assert.Equal(t, schema.KindObject, out.Prop("Address").Kind)
	assert.False(t, obj.Prop("UserId").AcceptsNull(), "input is left untouched")
}

func TestWidenNullable_NullOnlyIdentifier(t *testing.T) {
	obj := schema.Object().
		Set("OrderId", schema.Null()).
		Set("SubTitle", schema.Union(schema.Null())).
		Set("Other", schema.Null())

	out := WidenNullable(obj, DefaultNullableRules())

	id := out.Prop("OrderId")
	require.Equal(t, schema.KindUnion, id.Kind)
	assert.Equal(t, schema.FormatUUID, id.AnyOf[0].Format)
	assert.False(t, id.IsNullOnly())

	title := out.Prop("SubTitle")
	require.Equal(t, schema.KindUnion, title.Kind)
	assert.Equal(t, schema.KindString, title.AnyOf[0].Kind)
	assert.Empty(t, title.AnyOf[0].Format)

	assert.Equal(t, schema.KindNull, out.Prop("Other").Kind)
}

func TestWidenNullable_Nested(t *testing.T) {
	inner := schema.Object().Set("ParentId", schema.Scalar(schema.KindInteger))
	inner.Required = []string{"ParentId"}
	root := schema.Array(schema.Object().Set("child", inner))

	out := WidenNullable(root, DefaultNullableRules())
	assert.True(t, out.Items.Prop("child").Prop("ParentId").AcceptsNull())
}

func TestWidenNullable_Idempotent(t *testing.T) {
	obj := schema.Object().Set("Id", schema.String("")).Set("x", schema.String(""))
	once := WidenNullable(obj, DefaultNullableRules())
	twice := WidenNullable(once, DefaultNullableRules())
	assert.True(t, schema.Equal(once, twice))
}

func TestWidenNullable_CustomRules(t *testing.T) {
	rules := NullableRules{IdentifierSuffixes: []string{"_id"}, IdentifierFormat: "int-id"}
	obj := schema.Object().Set("user_id", schema.Null()).Set("UserId", schema.Scalar(schema.KindInteger))
	obj.Required = []string{"user_id", "UserId"}

	out := WidenNullable(obj, rules)
	assert.Equal(t, "int-id", out.Prop("user_id").AnyOf[0].Format)
	assert.False(t, out.Prop("UserId").AcceptsNull())
}
