package tools

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/schemainfer/internal/validate"
	"github.com/usestring/schemainfer/pkg/types"
)

// ValidateSchemaInput is the input for schema_validate.
type ValidateSchemaInput struct {
	Entity     string `json:"entity" jsonschema:"Entity whose stored schema is used"`
	Samples    string `json:"samples" jsonschema:"Documents to validate. A JSON array is a list of samples; any other document is one sample"`
	Format     string `json:"format,omitempty" jsonschema:"Encoding of samples: json (default), jsonl or yaml"`
	Selector   string `json:"selector,omitempty" jsonschema:"jq expression applied to each document (default: server setting)"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"Max per-sample results to return (default: 20); counts always cover every sample"`
}

const defaultValidateResults = 20

// ToolValidateSchema validates samples against a stored entity schema.
func ToolValidateSchema(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input ValidateSchemaInput) (*sdkmcp.CallToolResult, types.ValidateSchemaOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input ValidateSchemaInput) (*sdkmcp.CallToolResult, types.ValidateSchemaOutput, error) {
		if input.Entity == "" {
			return nil, types.ValidateSchemaOutput{}, ErrInvalidInput("entity is required")
		}
		if input.Samples == "" {
			return nil, types.ValidateSchemaOutput{}, ErrInvalidInput("samples is required")
		}
		format, err := ParseSampleFormat(input.Format)
		if err != nil {
			return nil, types.ValidateSchemaOutput{}, err
		}

		rec, err := d.LoadRecord(ctx, input.Entity)
		if err != nil {
			return nil, types.ValidateSchemaOutput{}, err
		}
		validator, err := validate.ForNode(rec.Schema, nil)
		if err != nil {
			return nil, types.ValidateSchemaOutput{}, fmt.Errorf("compiling stored schema: %w", err)
		}

		// samples are validated as given, without compaction
		loader, err := d.NewLoader(input.Selector)
		if err != nil {
			return nil, types.ValidateSchemaOutput{}, err
		}
		loader = loader.WithoutCompaction()
		samples, err := loader.Parse(ctx, []byte(input.Samples), format)
		if err != nil {
			return nil, types.ValidateSchemaOutput{}, ErrInvalidInput(fmt.Sprintf("parsing samples: %v", err))
		}
		if len(samples) == 0 {
			return nil, types.ValidateSchemaOutput{}, ErrInvalidInput("no samples selected")
		}

		maxResults := input.MaxResults
		if maxResults <= 0 {
			maxResults = defaultValidateResults
		}

		output := types.ValidateSchemaOutput{Entity: rec.Name}
		for i, s := range samples {
			r := validator.ValidateValue(s)
			if r.Valid {
				output.ValidCount++
			} else {
				output.InvalidCount++
			}
			if len(output.Results) < maxResults {
				output.Results = append(output.Results, types.ValidationResult{Index: i, Valid: r.Valid, Errors: r.Errors})
			}
		}
		output.Valid = output.InvalidCount == 0
		return nil, output, nil
	}
}
