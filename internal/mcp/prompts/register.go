package prompts

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Register registers all prompts with the MCP server.
func Register(srv *sdkmcp.Server, cfg *Config) {
	srv.AddPrompt(&sdkmcp.Prompt{
		Name:        "document_response_schemas",
		Description: "RECOMMENDED: Build or refresh response schemas from collected samples. Walks through a directory run, conflict review, validation of new samples and OpenAPI export.",
		Arguments: []*sdkmcp.PromptArgument{
			{
				Name:        "dir",
				Description: "Directory of batch files to infer from",
				Required:    false,
			},
			{
				Name:        "entity",
				Description: "Single entity to focus on",
				Required:    false,
			},
		},
	}, HandleDocumentSchemas(cfg))
}
