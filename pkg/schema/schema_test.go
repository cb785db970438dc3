package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func person(order ...string) *Node {
	fields := map[string]*Node{
		"name": String(""),
		"age":  Scalar(KindInteger),
		"id":   String(FormatUUID),
	}
	n := Object()
	for _, k := range order {
		n.Set(k, fields[k])
	}
	return n
}

func TestFingerprint_IgnoresPropertyOrder(t *testing.T) {
	a := person("name", "age", "id")
	b := person("id", "name", "age")
	assert.Equal(t, Fingerprint(a), Fingerprint(b))
	assert.True(t, Equal(a, b))
}

func TestFingerprint_IgnoresDescriptions(t *testing.T) {
	a := person("name", "age")
	b := person("name", "age")
	b.Description = "A person"
	b.Prop("name").Description = "Display name"
	assert.Equal(t, Fingerprint(a), Fingerprint(b))
}

func TestFingerprint_DistinguishesStructure(t *testing.T) {
	a := person("name", "age")
	b := person("name", "id")
	assert.NotEqual(t, Fingerprint(a), Fingerprint(b))

	c := person("name", "age")
	c.Required = []string{"name"}
	assert.NotEqual(t, Fingerprint(a), Fingerprint(c))
}

func TestFingerprint_UnionBranchOrder(t *testing.T) {
	a := Union(Scalar(KindInteger), Null())
	b := Union(Null(), Scalar(KindInteger))
	assert.Equal(t, Fingerprint(a), Fingerprint(b))
}

func TestFingerprint_EnumNumbersSurviveJSON(t *testing.T) {
	a := &Node{Kind: KindInteger, Enum: []any{int64(1), int64(2)}}
	b := &Node{Kind: KindInteger, Enum: []any{float64(2), float64(1)}}
	assert.Equal(t, Fingerprint(a), Fingerprint(b))
	assert.Len(t, Fingerprint(a), fingerprintLen)
}

func TestClone_IsDeep(t *testing.T) {
	orig := Object().Set("tags", Array(String(""))).Set("n", Union(Scalar(KindInteger), Null()))
	orig.Required = []string{"tags"}

	cp := orig.Clone()
	cp.Prop("tags").Items.Format = FormatUUID
	cp.Prop("n").AnyOf[0].Kind = KindNumber
	cp.Required[0] = "n"
	cp.Set("extra", String(""))

	assert.Empty(t, orig.Prop("tags").Items.Format)
	assert.Equal(t, KindInteger, orig.Prop("n").AnyOf[0].Kind)
	assert.Equal(t, []string{"tags"}, orig.Required)
	assert.Nil(t, orig.Prop("extra"))
}

func TestNode_JSONRoundTrip(t *testing.T) {
	orig := Object().
		Set("Id", String(FormatUUID)).
		Set("When", &Node{Kind: KindString, Format: FormatEpochMsDate, Pattern: EpochMsDatePattern}).
		Set("Status", &Node{Kind: KindString, Enum: []any{"open", "closed"}}).
		Set("Items", Array(Any())).
		Set("Maybe", &Node{Kind: KindString, Nullable: true}).
		Set("Count", Union(Scalar(KindInteger), Null())).
		Set("Owner", Ref("SharedObj_abc"))
	orig.Required = []string{"Id", "Count"}

	data, err := json.Marshal(orig)
	require.NoError(t, err)

	var back Node
	require.NoError(t, json.Unmarshal(data, &back))

	assert.True(t, Equal(orig, &back))
	assert.Equal(t, orig.Keys(), back.Keys(), "property order survives")
	assert.NotNil(t, back.Prop("Items").Items)
}

func TestAcceptsNull(t *testing.T) {
	assert.True(t, Null().AcceptsNull())
	assert.True(t, (&Node{Kind: KindString, Nullable: true}).AcceptsNull())
	assert.True(t, Union(String(""), Null()).AcceptsNull())
	assert.False(t, String("").AcceptsNull())

	assert.True(t, Union(Null()).IsNullOnly())
	assert.False(t, Union(String(""), Null()).IsNullOnly())
	assert.False(t, (&Node{Kind: KindString, Nullable: true}).IsNullOnly())
}

func TestBundle_Expand(t *testing.T) {
	b := NewBundle()
	b.Definitions["Addr"] = Object().Set("city", String(""))
	b.Definitions["Person"] = Object().Set("home", Ref("Addr")).Set("name", String(""))
	b.Entities["GetPeople"] = Array(Ref("Person"))
	b.Entities["GetPerson"] = Object().Set("person", Union(Ref("Person"), Null()))

	expanded := b.Expand(0)

	want := Object().
		Set("home", Object().Set("city", String(""))).
		Set("name", String(""))
	assert.True(t, Equal(Array(want), expanded["GetPeople"]))
	assert.True(t, Equal(Object().Set("person", Union(want, Null())), expanded["GetPerson"]))

	// the bundle itself is untouched
	assert.Equal(t, KindReference, b.Entities["GetPeople"].Items.Kind)
	assert.Equal(t, []string{"GetPeople", "GetPerson"}, b.EntityNames())
	assert.Equal(t, []string{"Addr", "Person"}, b.DefinitionNames())
}

func TestBundle_ExpandLeavesUnknownRefs(t *testing.T) {
	b := NewBundle()
	b.Entities["E"] = Ref("Missing")
	out := b.Expand(0)
	assert.Equal(t, "Missing", out["E"].Ref)
}
