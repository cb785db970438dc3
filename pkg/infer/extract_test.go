package infer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/schemainfer/pkg/schema"
)

func address(order ...string) *schema.Node {
	fields := map[string]*schema.Node{
		"Street": schema.String(""),
		"City":   schema.String(""),
		"Zip":    schema.Scalar(schema.KindInteger),
	}
	n := schema.Object()
	for _, k := range order {
		n.Set(k, fields[k])
	}
	return n
}

func TestExtractShared_RoundTrip(t *testing.T) {
	entities := map[string]*schema.Node{
		"GetCustomer": schema.Object().
			Set("Name", schema.String("")).
			Set("Home", address("Street", "City", "Zip")),
		"GetOrders": schema.Array(schema.Object().
			Set("OrderId", schema.String(schema.FormatUUID)).
			Set("ShipTo", address("Zip", "City", "Street"))),
	}
	before := map[string][]byte{}
	for name, n := range entities {
		before[name] = schema.CanonicalJSON(n)
	}

	bundle := ExtractShared(entities)

	require.Len(t, bundle.Definitions, 1)
	name := bundle.DefinitionNames()[0]
	assert.True(t, strings.HasPrefix(name, SharedPrefix))
	assert.Len(t, name, len(SharedPrefix)+sharedNameLen)

	home := bundle.Entities["GetCustomer"].Prop("Home")
	ship := bundle.Entities["GetOrders"].Items.Prop("ShipTo")
	assert.Equal(t, schema.KindReference, home.Kind)
	assert.Equal(t, name, home.Ref)
	assert.Equal(t, name, ship.Ref)

	expanded := bundle.Expand(0)
	for n, orig := range entities {
		assert.True(t, schema.Equal(orig, expanded[n]), "entity %s round-trips", n)
		assert.Equal(t, string(before[n]), string(schema.CanonicalJSON(orig)), "input %s untouched", n)
	}
}

func TestExtractShared_NoRepeats(t *testing.T) {
	entities := map[string]*schema.Node{
		"A": schema.Object().Set("x", address("City")),
		"B": schema.Object().Set("y", address("Zip")),
	}
	bundle := ExtractShared(entities)
	assert.Empty(t, bundle.Definitions)
	assert.Equal(t, schema.KindObject, bundle.Entities["A"].Prop("x").Kind)
}

func TestExtractShared_RepeatWithinOneEntity(t *testing.T) {
	root := schema.Object().
		Set("Billing", address("Street", "City")).
		Set("Shipping", address("City", "Street"))
	bundle := ExtractShared(map[string]*schema.Node{"E": root})

	require.Len(t, bundle.Definitions, 1)
	e := bundle.Entities["E"]
	assert.Equal(t, e.Prop("Billing").Ref, e.Prop("Shipping").Ref)
}

func TestExtractShared_NestedRepeatsHaveNoCycles(t *testing.T) {
	person := func() *schema.Node {
		return schema.Object().
			Set("Name", schema.String("")).
			Set("Home", address("Street", "City")).
			Set("Work", address("Street", "City"))
	}
	entities := map[string]*schema.Node{
		"One": schema.Object().Set("Owner", person()),
		"Two": schema.Array(person()),
	}
	bundle := ExtractShared(entities)

	require.Len(t, bundle.Definitions, 2)

	var personDef string
	for _, name := range bundle.DefinitionNames() {
		body := bundle.Definitions[name]
		assert.Equal(t, schema.KindObject, body.Kind, "a definition body is never a bare reference")
		if body.Prop("Name") != nil {
			personDef = name
		}
	}
	require.NotEmpty(t, personDef)

	body := bundle.Definitions[personDef]
	assert.Equal(t, schema.KindReference, body.Prop("Home").Kind)
	assert.NotEqual(t, personDef, body.Prop("Home").Ref)

	expanded := bundle.Expand(0)
	for n, orig := range entities {
		assert.True(t, schema.Equal(orig, expanded[n]), "entity %s round-trips", n)
	}
}

func TestExtractShared_SkipsEmptyObjects(t *testing.T) {
	entities := map[string]*schema.Node{
		"A": schema.Object().Set("a", schema.String("")).Set("meta", schema.Object()),
		"B": schema.Object().Set("b", schema.String("")).Set("meta", schema.Object()),
	}
	bundle := ExtractShared(entities)
	assert.Empty(t, bundle.Definitions)
	assert.Equal(t, schema.KindObject, bundle.Entities["A"].Kind)
	assert.Equal(t, schema.KindObject, bundle.Entities["A"].Prop("meta").Kind)
}

func TestExtractShared_IdenticalRootsShareDefinition(t *testing.T) {
	entities := map[string]*schema.Node{
		"A": schema.Object().Set("x", schema.Scalar(schema.KindInteger)),
		"B": schema.Object().Set("x", schema.Scalar(schema.KindInteger)),
	}
	bundle := ExtractShared(entities)
	require.Len(t, bundle.Definitions, 1)

	a, b := bundle.Entities["A"], bundle.Entities["B"]
	assert.Equal(t, schema.KindReference, a.Kind)
	assert.Equal(t, a.Ref, b.Ref)
	assert.Contains(t, bundle.Definitions, a.Ref)

	expanded := bundle.Expand(0)
	assert.True(t, schema.Equal(entities["A"], expanded["A"]))
}

func TestExtractShared_StableNames(t *testing.T) {
	build := func() *schema.Bundle {
		return ExtractShared(map[string]*schema.Node{
			"A": schema.Object().Set("a", address("City", "Zip")),
			"B": schema.Object().Set("b", address("Zip", "City")),
		})
	}
	assert.Equal(t, build().DefinitionNames(), build().DefinitionNames())
}
