// Package tools contains the MCP tool implementations for schema inference.
package tools

import (
	"encoding/json"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/schemainfer/internal/sample"
	"github.com/usestring/schemainfer/pkg/export"
	"github.com/usestring/schemainfer/pkg/infer"
	"github.com/usestring/schemainfer/pkg/schema"
	"github.com/usestring/schemainfer/pkg/types"
)

// MIME type constant.
const MimeJSON = "application/json"

// Resource URIs. Stored entity schemas live under schemainfer://schema/{entity}.
const (
	ResourceScheme     = "schemainfer://"
	BundleResourceURI  = ResourceScheme + "bundle"
	OpenAPIResourceURI = ResourceScheme + "openapi"
)

// SchemaResourceURI returns the resource URI of a stored entity schema.
func SchemaResourceURI(entity string) string {
	return ResourceScheme + "schema/" + entity
}

// MakeJSONToolResult creates a CallToolResult with JSON text content.
func MakeJSONToolResult(v any) (*sdkmcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{
			&sdkmcp.TextContent{Text: string(b)},
		},
	}, nil
}

// ParseSchemaFormat validates an output_format argument. Empty means JSON Schema.
func ParseSchemaFormat(s string) (types.SchemaFormat, error) {
	switch f := types.SchemaFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return types.FormatJSONSchema, nil
	case types.FormatJSONSchema, types.FormatOpenAPI, types.FormatNative:
		return f, nil
	default:
		return "", ErrInvalidInput(fmt.Sprintf("output_format must be %q, %q or %q", types.FormatJSONSchema, types.FormatOpenAPI, types.FormatNative))
	}
}

// ParseSampleFormat validates a sample format argument. Empty means JSON.
func ParseSampleFormat(s string) (sample.Format, error) {
	switch f := sample.Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return sample.FormatJSON, nil
	case sample.FormatJSON, sample.FormatJSONL, sample.FormatYAML:
		return f, nil
	default:
		return "", ErrInvalidInput(fmt.Sprintf("format must be %q, %q or %q", sample.FormatJSON, sample.FormatJSONL, sample.FormatYAML))
	}
}

// RenderEntity renders one entity of a bundle. For JSON Schema the
// definitions travel inside the document's $defs and defs is nil.
func RenderEntity(b *schema.Bundle, entity string, f types.SchemaFormat) (doc any, defs map[string]any, err error) {
	node, ok := b.Entities[entity]
	if !ok {
		return nil, nil, ErrNotFound("entity", entity)
	}

	switch f {
	case types.FormatOpenAPI:
		doc, err = types.ToAny(export.OpenAPISchema(node))
	case types.FormatNative:
		doc, err = types.ToAny(node)
	default:
		js, jerr := export.EntityJSONSchema(b, entity)
		if jerr != nil {
			return nil, nil, jerr
		}
		doc, err = types.ToAny(js)
		return doc, nil, err
	}
	if err != nil {
		return nil, nil, err
	}

	if len(b.Definitions) == 0 {
		return doc, nil, nil
	}
	defs = make(map[string]any, len(b.Definitions))
	for _, name := range b.DefinitionNames() {
		var v any
		if f == types.FormatOpenAPI {
			v, err = types.ToAny(export.OpenAPISchema(b.Definitions[name]))
		} else {
			v, err = types.ToAny(b.Definitions[name])
		}
		if err != nil {
			return nil, nil, err
		}
		defs[name] = v
	}
	return doc, defs, nil
}

// RenderBundle renders a whole bundle as one document.
func RenderBundle(b *schema.Bundle, f types.SchemaFormat) (any, error) {
	switch f {
	case types.FormatOpenAPI:
		return types.ToAny(export.OpenAPIComponents(b))
	case types.FormatNative:
		return types.ToAny(b)
	default:
		return types.ToAny(export.BundleJSONSchema(b))
	}
}

// RenderNode renders a standalone (reference-free) schema.
func RenderNode(n *schema.Node, f types.SchemaFormat) (any, error) {
	switch f {
	case types.FormatOpenAPI:
		return types.ToAny(export.OpenAPISchema(n))
	case types.FormatNative:
		return types.ToAny(n)
	default:
		s := export.JSONSchema(n)
		s.Version = export.Draft
		return types.ToAny(s)
	}
}

// ToConflicts converts engine conflicts to their output shape.
func ToConflicts(cs []infer.Conflict) []types.Conflict {
	if len(cs) == 0 {
		return nil
	}
	out := make([]types.Conflict, len(cs))
	for i, c := range cs {
		out[i] = types.Conflict{
			Entity:  c.Entity,
			Path:    c.Path,
			Kept:    string(c.Kept),
			Dropped: string(c.Dropped),
			Stage:   c.Stage,
		}
	}
	return out
}
