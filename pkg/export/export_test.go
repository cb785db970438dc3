package export

import (
	"encoding/json"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/schemainfer/pkg/schema"
)

func sampleBundle() *schema.Bundle {
	b := schema.NewBundle()
	addr := schema.Object().Set("City", schema.String("")).Set("Zip", schema.Union(schema.Scalar(schema.KindInteger), schema.Null()))
	addr.Required = []string{"City"}
	b.Definitions["SharedObj_abc"] = addr

	cust := schema.Object().
		Set("Id", schema.Union(schema.String(schema.FormatUUID), schema.Null())).
		Set("Home", schema.Ref("SharedObj_abc")).
		Set("Tags", schema.Array(schema.String(""))).
		Set("Maybe", &schema.Node{Kind: schema.KindString, Nullable: true}).
		Set("Status", &schema.Node{Kind: schema.KindString, Enum: []any{"open", "closed"}}).
		Set("Deep", schema.DepthLimit())
	cust.Required = []string{"Id", "Home"}
	b.Entities["GetCustomer"] = cust
	b.Entities["GetOrders"] = schema.Array(schema.Object().Set("ShipTo", schema.Ref("SharedObj_abc")))
	return b
}

func TestJSONSchema_Shapes(t *testing.T) {
	b := sampleBundle()
	s := JSONSchema(b.Entities["GetCustomer"])

	m, err := ToMap(s)
	require.NoError(t, err)

	assert.Equal(t, "object", m["type"])
	assert.Equal(t, []any{"Id", "Home"}, m["required"])

	props := m["properties"].(map[string]any)
	id := props["Id"].(map[string]any)
	assert.Len(t, id["anyOf"], 2)

	home := props["Home"].(map[string]any)
	assert.Equal(t, "#/$defs/SharedObj_abc", home["$ref"])

	maybe := props["Maybe"].(map[string]any)
	branches := maybe["anyOf"].([]any)
	require.Len(t, branches, 2)
	assert.Equal(t, "null", branches[1].(map[string]any)["type"])

	status := props["Status"].(map[string]any)
	assert.Equal(t, []any{"open", "closed"}, status["enum"])

	deep := props["Deep"].(map[string]any)
	assert.NotContains(t, deep, "type")
	assert.Equal(t, depthLimitComment, deep["$comment"])
}

func TestJSONSchema_PropertyOrder(t *testing.T) {
	s := JSONSchema(sampleBundle().Entities["GetCustomer"])
	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Regexp(t, `"Id".*"Home".*"Tags".*"Maybe".*"Status".*"Deep"`, string(data))
}

func TestBundleJSONSchema(t *testing.T) {
	doc := BundleJSONSchema(sampleBundle())
	assert.Equal(t, Draft, doc.Version)
	assert.Contains(t, doc.Definitions, "SharedObj_abc")
	assert.Contains(t, doc.Definitions, "GetCustomer")
	assert.Contains(t, doc.Definitions, "GetOrders")
}

func TestEntityJSONSchema(t *testing.T) {
	doc, err := EntityJSONSchema(sampleBundle(), "GetOrders")
	require.NoError(t, err)
	assert.Equal(t, "#/$defs/GetOrders", doc.Ref)

	_, err = EntityJSONSchema(sampleBundle(), "Nope")
	assert.Error(t, err)
}

func TestOpenAPISchema_NullableUnions(t *testing.T) {
	id := OpenAPISchema(schema.Union(schema.String(schema.FormatUUID), schema.Null()))
	require.NotNil(t, id.Value)
	assert.Equal(t, openapi3.TypeString, id.Value.Type)
	assert.Equal(t, schema.FormatUUID, id.Value.Format)
	assert.True(t, id.Value.Nullable)

	multi := OpenAPISchema(schema.Union(schema.String(""), schema.Scalar(schema.KindInteger), schema.Null()))
	assert.Len(t, multi.Value.AnyOf, 2)
	assert.True(t, multi.Value.Nullable)

	ref := OpenAPISchema(schema.Union(schema.Ref("A"), schema.Null()))
	require.Len(t, ref.Value.AllOf, 1)
	assert.Equal(t, ComponentsPrefix+"A", ref.Value.AllOf[0].Ref)
	assert.True(t, ref.Value.Nullable)

	nullOnly := OpenAPISchema(schema.Null())
	assert.True(t, nullOnly.Value.Nullable)
	assert.Empty(t, nullOnly.Value.Type)
}

func TestOpenAPIComponents(t *testing.T) {
	comps := OpenAPIComponents(sampleBundle())
	require.Len(t, comps.Schemas, 3)

	cust := comps.Schemas["GetCustomer"].Value
	assert.Equal(t, openapi3.TypeObject, cust.Type)
	assert.Equal(t, ComponentsPrefix+"SharedObj_abc", cust.Properties["Home"].Ref)
	assert.Equal(t, []string{"Id", "Home"}, cust.Required)

	orders := comps.Schemas["GetOrders"].Value
	assert.Equal(t, openapi3.TypeArray, orders.Type)
	assert.Equal(t, ComponentsPrefix+"SharedObj_abc", orders.Items.Value.Properties["ShipTo"].Ref)

	data, err := json.Marshal(comps)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"#/components/schemas/SharedObj_abc"`)
}

func TestDefsRef_EscapesPointerTokens(t *testing.T) {
	assert.Equal(t, "#/$defs/a~1b~0c", DefsRef("a/b~c"))
	assert.Equal(t, "#/$defs/Plain", DefsRef("Plain"))
}
