package tools

import (
	"context"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/schemainfer/pkg/types"
)

// GetSchemaInput is the input for schema_get.
type GetSchemaInput struct {
	Entity       string `json:"entity" jsonschema:"Entity name"`
	OutputFormat string `json:"output_format,omitempty" jsonschema:"Rendering: json_schema (default), openapi or native"`
}

// ToolGetSchema returns the stored schema record for an entity.
func ToolGetSchema(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input GetSchemaInput) (*sdkmcp.CallToolResult, types.GetSchemaOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input GetSchemaInput) (*sdkmcp.CallToolResult, types.GetSchemaOutput, error) {
		if input.Entity == "" {
			return nil, types.GetSchemaOutput{}, ErrInvalidInput("entity is required")
		}
		format, err := ParseSchemaFormat(input.OutputFormat)
		if err != nil {
			return nil, types.GetSchemaOutput{}, err
		}

		rec, err := d.LoadRecord(ctx, input.Entity)
		if err != nil {
			return nil, types.GetSchemaOutput{}, err
		}
		doc, err := RenderNode(rec.Schema, format)
		if err != nil {
			return nil, types.GetSchemaOutput{}, err
		}

		return nil, types.GetSchemaOutput{
			Entity:      rec.Name,
			SampleCount: rec.SampleCount,
			RunsMerged:  rec.Runs,
			UpdatedAt:   rec.UpdatedAt.Format(time.RFC3339),
			Format:      string(format),
			Schema:      doc,
		}, nil
	}
}

// ListSchemasInput is the input for schema_list.
type ListSchemasInput struct{}

// ToolListSchemas lists stored entity names.
func ToolListSchemas(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input ListSchemasInput) (*sdkmcp.CallToolResult, types.ListSchemasOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input ListSchemasInput) (*sdkmcp.CallToolResult, types.ListSchemasOutput, error) {
		names, err := d.Store.List(ctx)
		if err != nil {
			return nil, types.ListSchemasOutput{}, WrapStoreError(err, "")
		}
		return nil, types.ListSchemasOutput{Entities: names, Count: len(names)}, nil
	}
}
