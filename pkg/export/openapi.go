package export

import (
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/usestring/schemainfer/pkg/schema"
)

// ComponentsPrefix is the reference prefix for OpenAPI component schemas.
const ComponentsPrefix = "#/components/schemas/"

// OpenAPISchema converts a node into an OpenAPI 3.0 schema reference.
// OpenAPI 3.0 has no null type, so a union's null branch becomes Nullable on
// the result and a null-only node becomes a nullable schema without a type.
func OpenAPISchema(n *schema.Node) *openapi3.SchemaRef {
	if n == nil {
		return openapi3.NewSchemaRef("", &openapi3.Schema{})
	}

	switch n.Kind {
	case schema.KindAny:
		return openapi3.NewSchemaRef("", &openapi3.Schema{Description: n.Description})
	case schema.KindNull:
		return openapi3.NewSchemaRef("", &openapi3.Schema{Nullable: true, Description: n.Description})
	case schema.KindReference:
		return openapi3.NewSchemaRef(ComponentsPrefix+n.Ref, nil)
	case schema.KindUnion:
		return openAPIUnion(n)
	case schema.KindArray:
		s := &openapi3.Schema{
			Type:        openapi3.TypeArray,
			Items:       OpenAPISchema(n.Items),
			Description: n.Description,
		}
		return s.NewRef()
	case schema.KindObject:
		s := &openapi3.Schema{
			Type:        openapi3.TypeObject,
			Properties:  openapi3.Schemas{},
			Description: n.Description,
		}
		if n.Properties != nil {
			for pair := n.Properties.Oldest(); pair != nil; pair = pair.Next() {
				s.Properties[pair.Key] = OpenAPISchema(pair.Value)
			}
		}
		if len(n.Required) > 0 {
			s.Required = append([]string(nil), n.Required...)
		}
		return s.NewRef()
	default:
		s := &openapi3.Schema{
			Type:        string(n.Kind),
			Format:      n.Format,
			Pattern:     n.Pattern,
			Nullable:    n.Nullable,
			Description: n.Description,
		}
		if len(n.Enum) > 0 {
			s.Enum = append([]any(nil), n.Enum...)
		}
		return s.NewRef()
	}
}

func openAPIUnion(n *schema.Node) *openapi3.SchemaRef {
	var (
		branches []*schema.Node
		nullable bool
	)
	for _, b := range n.AnyOf {
		if b.Kind == schema.KindNull {
			nullable = true
			continue
		}
		branches = append(branches, b)
	}

	switch len(branches) {
	case 0:
		return openapi3.NewSchemaRef("", &openapi3.Schema{Nullable: true, Description: n.Description})
	case 1:
		ref := OpenAPISchema(branches[0])
		if ref.Ref != "" {
			// a $ref cannot carry siblings in 3.0
			if !nullable {
				return ref
			}
			s := &openapi3.Schema{AllOf: openapi3.SchemaRefs{ref}, Nullable: true, Description: n.Description}
			return s.NewRef()
		}
		ref.Value.Nullable = ref.Value.Nullable || nullable
		if ref.Value.Description == "" {
			ref.Value.Description = n.Description
		}
		return ref
	}

	s := &openapi3.Schema{Nullable: nullable, Description: n.Description}
	for _, b := range branches {
		s.AnyOf = append(s.AnyOf, OpenAPISchema(b))
	}
	return s.NewRef()
}

// OpenAPIComponents renders a bundle as OpenAPI component schemas. Entities
// and definitions share the namespace; definitions win a clash.
func OpenAPIComponents(b *schema.Bundle) *openapi3.Components {
	comps := openapi3.NewComponents()
	comps.Schemas = make(openapi3.Schemas, len(b.Entities)+len(b.Definitions))
	for _, name := range b.EntityNames() {
		comps.Schemas[name] = OpenAPISchema(b.Entities[name])
	}
	for _, name := range b.DefinitionNames() {
		comps.Schemas[name] = OpenAPISchema(b.Definitions[name])
	}
	return &comps
}
