package prompts

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// HandleDocumentSchemas implements the schema documentation workflow.
func HandleDocumentSchemas(cfg *Config) func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
	return func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
		var dir, entity string
		if req != nil && req.Params != nil && req.Params.Arguments != nil {
			dir = req.Params.Arguments["dir"]
			entity = req.Params.Arguments["entity"]
		}
		if dir == "" {
			dir = cfg.SampleDir
		}

		var sb strings.Builder

		sb.WriteString("# Document Response Schemas\n\n")
		sb.WriteString("You maintain the response schemas of an API from example responses. ")
		sb.WriteString("Schemas are merged append-only across runs, so each run can only add keys, widen types and relax required lists.\n\n")

		sb.WriteString("## Workflow Steps\n\n")
		sb.WriteString("1. **Run inference** over the sample directory\n")
		sb.WriteString("   - One entity per batch file, named after the file\n")
		sb.WriteString("   - Wrapper documents need a selector that yields the bodies\n")
		sb.WriteString("2. **Review conflicts** - a slot that held both objects and arrays keeps the first-seen kind\n")
		sb.WriteString("3. **Check single entities** with schema_get before publishing them\n")
		sb.WriteString("4. **Validate new samples** with schema_validate; failures show what a merge would widen\n")
		sb.WriteString("5. **Export** the bundle as OpenAPI components when documenting\n\n")

		sb.WriteString("## Suggested Tools\n\n")
		sb.WriteString("```\n")
		sb.WriteString("# Step 1: Infer every entity in the directory\n")
		switch {
		case dir != "" && cfg.SampleSelector != "" && cfg.SampleSelector != ".":
			sb.WriteString(fmt.Sprintf("schema_infer_dir(dir=%q)  # server selector: %s\n", dir, cfg.SampleSelector))
		case dir != "":
			sb.WriteString(fmt.Sprintf("schema_infer_dir(dir=%q, selector=\".samples[].response\")\n", dir))
		default:
			sb.WriteString("schema_infer_dir(dir=\"<dir>\", selector=\".samples[].response\")\n")
		}
		sb.WriteString("\n")
		if entity != "" {
			sb.WriteString("# Step 2: Inspect the entity\n")
			sb.WriteString(fmt.Sprintf("schema_get(entity=%q, output_format=\"json_schema\")\n", entity))
			sb.WriteString("\n# Step 3: Validate fresh samples before merging\n")
			sb.WriteString(fmt.Sprintf("schema_validate(entity=%q, samples=\"<json>\")\n", entity))
			sb.WriteString(fmt.Sprintf("schema_infer(entity=%q, samples=\"<json>\", include_stats=true)\n", entity))
		} else {
			sb.WriteString("# Step 2: Inspect entities\n")
			sb.WriteString("schema_list()\n")
			sb.WriteString("schema_get(entity=\"<entity>\")\n")
		}
		sb.WriteString("\n# Step 4: Export\n")
		sb.WriteString("schema_infer_dir(dir=\"<dir>\", dry_run=true, output_format=\"openapi\")\n")
		sb.WriteString("```\n\n")

		sb.WriteString("## Reading the Schemas\n\n")
		sb.WriteString("- `SharedObj_<hash>` definitions are object shapes seen in more than one place\n")
		sb.WriteString("- Keys ending in Id or Title accept null even when no null was observed\n")
		sb.WriteString("- `epoch-ms-date` strings look like `/Date(1700000000000)/`\n")
		sb.WriteString("- An empty schema `{}` means no evidence (only empty arrays or nulls)\n\n")

		sb.WriteString("## If Things Go Wrong\n\n")
		sb.WriteString("- **No entities?** Check the selector against one batch file\n")
		sb.WriteString("- **Every sample skipped?** The samples are nulls or error responses (`_error`)\n")
		sb.WriteString("- **A bad run was merged?** Re-run that entity with fresh=true on clean samples\n")

		return &sdkmcp.GetPromptResult{
			Description: "Guide for documenting response schemas",
			Messages: []*sdkmcp.PromptMessage{
				{
					Role:    "user",
					Content: &sdkmcp.TextContent{Text: sb.String()},
				},
			},
		}, nil
	}
}
