package tools

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Register registers all tools with the MCP server.
func Register(srv *sdkmcp.Server, d *Deps) {
	AddTool(srv, &sdkmcp.Tool{
		Name:        "schema_infer",
		Description: "Infer a schema for one entity from inline sample documents (JSON, JSONL or YAML). The result is append-merged onto the stored schema for that entity: keys are added, required keys only shrink, enums only grow, and nullable only widens. Keys ending in Id or Title, and common role names, always accept null. Returns the merged schema as JSON Schema 2020-12 (default), OpenAPI 3.0 or the native form, plus any object/array conflicts. Set dry_run to preview without persisting.",
	}, ToolInferSchema(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "schema_infer_dir",
		Description: "Infer schemas for every batch file in a directory (one entity per file, named after the file; .json, .jsonl, .yaml). Each entity is merged onto its stored schema, stored entities without new samples are preserved, and object shapes repeated across the run are hoisted into shared definitions (SharedObj_<hash>). Returns the whole bundle and persists it unless dry_run is set. Use selector (jq) to pull samples out of wrapper documents, e.g. .samples[].response.",
	}, ToolInferDir(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "schema_get",
		Description: "Get the stored schema for an entity with its sample count, number of merged runs and last update time.",
	}, ToolGetSchema(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "schema_list",
		Description: "List the entities that have a stored schema.",
	}, ToolListSchemas(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "schema_validate",
		Description: "Validate sample documents against the stored schema for an entity. Returns per-sample errors with JSON pointer locations. Use this to check new responses before merging them with schema_infer.",
	}, ToolValidateSchema(d))
}
