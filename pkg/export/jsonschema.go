// Package export renders inferred schema nodes and bundles into standard
// schema documents: JSON Schema Draft 2020-12 and OpenAPI 3.0 components.
package export

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"

	"github.com/usestring/schemainfer/pkg/schema"
)

// Draft is the $schema URI written on bundle documents.
const Draft = "https://json-schema.org/draft/2020-12/schema"

// DefsPrefix is the JSON pointer prefix used for references.
const DefsPrefix = "#/$defs/"

// pointerEscaper escapes a name for use as a JSON pointer token.
var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// DefsRef returns the reference to name within $defs.
func DefsRef(name string) string {
	return DefsPrefix + pointerEscaper.Replace(name)
}

// depthLimitComment marks a subtree that inference cut off.
const depthLimitComment = "depth limit reached"

// JSONSchema converts a node into a JSON Schema. References point into $defs.
func JSONSchema(n *schema.Node) *jsonschema.Schema {
	if n == nil {
		return &jsonschema.Schema{}
	}

	var out *jsonschema.Schema
	switch n.Kind {
	case schema.KindAny:
		out = &jsonschema.Schema{}
		if n.Format == schema.FormatDepthLimit {
			out.Comments = depthLimitComment
		}
	case schema.KindReference:
		out = &jsonschema.Schema{Ref: DefsRef(n.Ref)}
	case schema.KindUnion:
		out = &jsonschema.Schema{AnyOf: make([]*jsonschema.Schema, 0, len(n.AnyOf))}
		for _, b := range n.AnyOf {
			out.AnyOf = append(out.AnyOf, JSONSchema(b))
		}
	case schema.KindArray:
		out = &jsonschema.Schema{Type: "array", Items: JSONSchema(n.Items)}
	case schema.KindObject:
		out = &jsonschema.Schema{Type: "object", Properties: jsonschema.NewProperties()}
		if n.Properties != nil {
			for pair := n.Properties.Oldest(); pair != nil; pair = pair.Next() {
				out.Properties.Set(pair.Key, JSONSchema(pair.Value))
			}
		}
		if len(n.Required) > 0 {
			out.Required = append([]string(nil), n.Required...)
		}
	default:
		out = &jsonschema.Schema{
			Type:    string(n.Kind),
			Format:  n.Format,
			Pattern: n.Pattern,
		}
		if len(n.Enum) > 0 {
			out.Enum = append([]any(nil), n.Enum...)
		}
		if n.Nullable {
			out = &jsonschema.Schema{AnyOf: []*jsonschema.Schema{out, {Type: "null"}}}
		}
	}

	out.Description = n.Description
	return out
}

// BundleJSONSchema converts a bundle into one document whose $defs hold every
// definition and every entity. Entity names and definition names share the
// $defs namespace; definitions win a clash.
func BundleJSONSchema(b *schema.Bundle) *jsonschema.Schema {
	defs := make(jsonschema.Definitions, len(b.Entities)+len(b.Definitions))
	for _, name := range b.EntityNames() {
		defs[name] = JSONSchema(b.Entities[name])
	}
	for _, name := range b.DefinitionNames() {
		defs[name] = JSONSchema(b.Definitions[name])
	}
	return &jsonschema.Schema{
		Version:     Draft,
		Definitions: defs,
	}
}

// EntityJSONSchema returns a standalone document for one entity: the root
// references the entity and $defs carries the whole bundle.
func EntityJSONSchema(b *schema.Bundle, entity string) (*jsonschema.Schema, error) {
	if _, ok := b.Entities[entity]; !ok {
		return nil, fmt.Errorf("entity %q not in bundle", entity)
	}
	doc := BundleJSONSchema(b)
	doc.Ref = DefsRef(entity)
	return doc, nil
}

// ToMap converts a JSON Schema into a generic map, the form accepted by
// schema compilers and MCP structured content.
func ToMap(s *jsonschema.Schema) (map[string]any, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshaling schema: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("unmarshaling schema: %w", err)
	}
	return out, nil
}
