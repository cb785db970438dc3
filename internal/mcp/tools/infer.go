package tools

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/schemainfer/internal/pipeline"
	"github.com/usestring/schemainfer/internal/store"
	"github.com/usestring/schemainfer/pkg/infer"
	"github.com/usestring/schemainfer/pkg/types"
	"github.com/usestring/schemainfer/pkg/value"
)

// InferSchemaInput is the input for schema_infer.
type InferSchemaInput struct {
	Entity       string `json:"entity" jsonschema:"Entity name the schema is stored under, e.g. GetCustomer"`
	Samples      string `json:"samples" jsonschema:"Sample documents as text. A JSON array is a list of samples; any other document is one sample"`
	Format       string `json:"format,omitempty" jsonschema:"Encoding of samples: json (default), jsonl or yaml"`
	Selector     string `json:"selector,omitempty" jsonschema:"jq expression applied to each document; every output is one sample (default: server setting)"`
	Fresh        bool   `json:"fresh,omitempty" jsonschema:"Ignore the stored schema instead of merging onto it"`
	DryRun       bool   `json:"dry_run,omitempty" jsonschema:"Do not persist the merged schema"`
	OutputFormat string `json:"output_format,omitempty" jsonschema:"Rendering: json_schema (default), openapi or native"`
	IncludeStats bool   `json:"include_stats,omitempty" jsonschema:"Include per-field statistics computed from the samples"`
}

// ToolInferSchema infers a schema for one entity from inline samples and
// merges it onto the stored schema.
func ToolInferSchema(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input InferSchemaInput) (*sdkmcp.CallToolResult, types.InferSchemaOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input InferSchemaInput) (*sdkmcp.CallToolResult, types.InferSchemaOutput, error) {
		if input.Entity == "" {
			return nil, types.InferSchemaOutput{}, ErrInvalidInput("entity is required")
		}
		if !store.ValidName(input.Entity) {
			return nil, types.InferSchemaOutput{}, ErrInvalidInput("entity must match [A-Za-z0-9][A-Za-z0-9_.-]*")
		}
		if input.Samples == "" {
			return nil, types.InferSchemaOutput{}, ErrInvalidInput("samples is required")
		}
		format, err := ParseSampleFormat(input.Format)
		if err != nil {
			return nil, types.InferSchemaOutput{}, err
		}
		outFormat, err := ParseSchemaFormat(input.OutputFormat)
		if err != nil {
			return nil, types.InferSchemaOutput{}, err
		}

		loader, err := d.NewLoader(input.Selector)
		if err != nil {
			return nil, types.InferSchemaOutput{}, err
		}
		samples, err := loader.Parse(ctx, []byte(input.Samples), format)
		if err != nil {
			return nil, types.InferSchemaOutput{}, ErrInvalidInput(fmt.Sprintf("parsing samples: %v", err))
		}
		if len(samples) == 0 {
			return nil, types.InferSchemaOutput{}, ErrInvalidInput("no samples selected")
		}

		res, err := d.Pipeline.Run(ctx, map[string][]value.Value{input.Entity: samples}, pipeline.RunOptions{
			Fresh:   input.Fresh,
			Persist: !input.DryRun,
		})
		if err != nil {
			return nil, types.InferSchemaOutput{}, WrapStoreError(err, input.Entity)
		}

		doc, defs, err := RenderEntity(res.Bundle, input.Entity, outFormat)
		if err != nil {
			return nil, types.InferSchemaOutput{}, err
		}

		result := res.Results[input.Entity]
		summary := types.InferSchemaSummary{
			SamplesProvided: len(samples),
			SamplesUsed:     result.SampleCount,
			SamplesSkipped:  result.Skipped,
			AllMatch:        result.AllMatch,
		}
		merged := result.Schema
		if rec, ok := res.Records[input.Entity]; ok {
			merged = rec.Schema
			summary.RunsMerged = rec.Runs
			summary.TotalSamples = rec.SampleCount
			summary.MergedWithPrior = rec.Runs > 1
			summary.Persisted = !input.DryRun
		}

		output := types.InferSchemaOutput{
			Entity:      input.Entity,
			Schema:      doc,
			Definitions: defs,
			Summary:     summary,
			Conflicts:   ToConflicts(res.Conflicts),
		}
		if input.IncludeStats {
			output.FieldStats = infer.FieldStats(merged, samples)
		}
		if summary.Persisted {
			output.Resource = &types.ResourceRef{
				URI:  SchemaResourceURI(input.Entity),
				MIME: MimeJSON,
				Hint: "Stored schema; read it later or validate new samples with schema_validate.",
			}
		}
		if result.SampleCount == 0 {
			output.Hint = "Every sample was null or an error response, so nothing was learned. Check the selector."
		} else if len(output.Conflicts) > 0 {
			output.Hint = "Some slots held both objects and arrays; the first-seen kind was kept. See conflicts."
		}
		return nil, output, nil
	}
}

// InferDirInput is the input for schema_infer_dir.
type InferDirInput struct {
	Dir          string `json:"dir,omitempty" jsonschema:"Directory of batch files, one entity per file named after it (default: server setting)"`
	Selector     string `json:"selector,omitempty" jsonschema:"jq expression applied to each file, e.g. .samples[].response (default: server setting)"`
	Fresh        bool   `json:"fresh,omitempty" jsonschema:"Re-infer the directory's entities without their stored schemas; other stored entities stay in the bundle"`
	DryRun       bool   `json:"dry_run,omitempty" jsonschema:"Do not persist records or the bundle"`
	OutputFormat string `json:"output_format,omitempty" jsonschema:"Rendering of the bundle: json_schema (default), openapi or native"`
}

// ToolInferDir runs a batch over a sample directory, merging every entity
// onto the stored schemas and extracting shared definitions across all of them.
func ToolInferDir(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input InferDirInput) (*sdkmcp.CallToolResult, types.InferDirOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input InferDirInput) (*sdkmcp.CallToolResult, types.InferDirOutput, error) {
		dir := input.Dir
		if dir == "" {
			dir = d.Config.SampleDir
		}
		if dir == "" {
			return nil, types.InferDirOutput{}, ErrInvalidInput("dir is required (no SAMPLE_DIR configured)")
		}
		outFormat, err := ParseSchemaFormat(input.OutputFormat)
		if err != nil {
			return nil, types.InferDirOutput{}, err
		}

		loader, err := d.NewLoader(input.Selector)
		if err != nil {
			return nil, types.InferDirOutput{}, err
		}
		batches, err := loader.LoadDir(ctx, dir)
		if err != nil {
			return nil, types.InferDirOutput{}, ErrInvalidInput(err.Error())
		}

		res, err := d.Pipeline.Run(ctx, batches, pipeline.RunOptions{
			AllStored: true,
			Fresh:     input.Fresh,
			Persist:   !input.DryRun,
		})
		if err != nil {
			return nil, types.InferDirOutput{}, WrapStoreError(err, "")
		}

		bundle, err := RenderBundle(res.Bundle, outFormat)
		if err != nil {
			return nil, types.InferDirOutput{}, err
		}

		output := types.InferDirOutput{
			Dir:         dir,
			Preserved:   res.Preserved,
			Definitions: res.Bundle.DefinitionNames(),
			Bundle:      bundle,
			Conflicts:   ToConflicts(res.Conflicts),
			Persisted:   !input.DryRun,
		}
		for _, name := range res.Bundle.EntityNames() {
			result, ok := res.Results[name]
			if !ok {
				continue
			}
			es := types.EntitySummary{
				Name:           name,
				SamplesUsed:    result.SampleCount,
				SamplesSkipped: result.Skipped,
				AllMatch:       result.AllMatch,
			}
			if rec, ok := res.Records[name]; ok {
				es.RunsMerged = rec.Runs
			}
			output.Entities = append(output.Entities, es)
		}
		if output.Persisted {
			output.Resource = &types.ResourceRef{
				URI:  BundleResourceURI,
				MIME: MimeJSON,
				Hint: "Stored bundle with shared definitions.",
			}
		}
		return nil, output, nil
	}
}
