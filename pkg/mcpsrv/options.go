package mcpsrv

import (
	"context"

	mcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/schemainfer/internal/config"
)

// serverConfig holds configuration built from options.
type serverConfig struct {
	config *config.Config

	// Overrides applied on top of the environment
	logLevel string
	logFile  string
	storeDir string

	// Extension toggles
	disableBuiltinTools   bool
	disableBuiltinPrompts bool

	// Custom registrations, run after the builtins
	toolRegistrations     []func(*mcp.Server)
	promptRegistrations   []func(*mcp.Server)
	resourceRegistrations []func(*mcp.Server)

	// Tools built from Deps once the store exists
	deferredToolRegistrations []func(*mcp.Server, *Deps)
}

// Option configures the server.
type Option func(*serverConfig)

// WithLogLevel overrides LOG_LEVEL (debug, info, warn, error).
func WithLogLevel(level string) Option {
	return func(cfg *serverConfig) {
		cfg.logLevel = level
	}
}

// WithLogFile overrides LOG_FILE. Logs never go to stdout, which carries the
// MCP transport.
func WithLogFile(path string) Option {
	return func(cfg *serverConfig) {
		cfg.logFile = path
	}
}

// WithStoreDir overrides SCHEMA_STORE_DIR, the directory holding persisted
// schema records and the last bundle.
func WithStoreDir(dir string) Option {
	return func(cfg *serverConfig) {
		cfg.storeDir = dir
	}
}

// WithConfig uses c instead of loading the environment. WithStoreDir,
// WithLogLevel and WithLogFile still apply on top of it.
func WithConfig(c *config.Config) Option {
	return func(cfg *serverConfig) {
		if c != nil {
			cfg.config = c
		}
	}
}

// WithoutBuiltinTools skips schema_infer, schema_infer_dir, schema_get,
// schema_list and schema_validate along with the schemainfer:// resources.
func WithoutBuiltinTools() Option {
	return func(cfg *serverConfig) {
		cfg.disableBuiltinTools = true
	}
}

// WithoutBuiltinPrompts skips the document_response_schemas prompt.
func WithoutBuiltinPrompts() Option {
	return func(cfg *serverConfig) {
		cfg.disableBuiltinPrompts = true
	}
}

// WithTool adds a tool that needs nothing from the schema store. The handler
// is registered through AddTool, so an output type whose zero value would not
// pass its own schema fails at startup.
//
//	type SlugInput struct {
//	    Path string `json:"path" jsonschema:"Request path such as /api/Customer/Get"`
//	}
//
//	type SlugOutput struct {
//	    Entity string `json:"entity"`
//	}
//
//	mcpsrv.WithTool(
//	    &mcp.Tool{Name: "entity_name", Description: "Derive an entity name from a request path"},
//	    func(ctx context.Context, req *mcp.CallToolRequest, in SlugInput) (*mcp.CallToolResult, SlugOutput, error) {
//	        return nil, SlugOutput{Entity: path.Base(in.Path)}, nil
//	    },
//	)
func WithTool[In, Out any](tool *mcp.Tool, handler func(context.Context, *mcp.CallToolRequest, In) (*mcp.CallToolResult, Out, error)) Option {
	return func(cfg *serverConfig) {
		cfg.toolRegistrations = append(cfg.toolRegistrations, func(srv *mcp.Server) {
			AddTool(srv, tool, handler)
		})
	}
}

// WithDepsTool adds a tool built from the server's Deps once the store and
// pipeline exist. The builder runs once at startup; the handler it returns
// serves every call.
//
//	mcpsrv.WithDepsTool(
//	    &mcp.Tool{Name: "schema_runs", Description: "Runs merged into a stored schema"},
//	    func(d *mcpsrv.Deps) func(context.Context, *mcp.CallToolRequest, RunsInput) (*mcp.CallToolResult, RunsOutput, error) {
//	        return func(ctx context.Context, req *mcp.CallToolRequest, in RunsInput) (*mcp.CallToolResult, RunsOutput, error) {
//	            rec, err := d.Store.Load(ctx, in.Entity)
//	            if err != nil {
//	                return nil, RunsOutput{}, err
//	            }
//	            return nil, RunsOutput{Runs: rec.Runs, Samples: rec.SampleCount}, nil
//	        }
//	    },
//	)
func WithDepsTool[In, Out any](tool *mcp.Tool, builder func(*Deps) func(context.Context, *mcp.CallToolRequest, In) (*mcp.CallToolResult, Out, error)) Option {
	return func(cfg *serverConfig) {
		cfg.deferredToolRegistrations = append(cfg.deferredToolRegistrations, func(srv *mcp.Server, deps *Deps) {
			AddTool(srv, tool, builder(deps))
		})
	}
}

// WithPrompt adds a prompt next to document_response_schemas, for instance a
// team-specific review checklist for inferred schemas.
func WithPrompt(prompt *mcp.Prompt, handler func(context.Context, *mcp.GetPromptRequest) (*mcp.GetPromptResult, error)) Option {
	return func(cfg *serverConfig) {
		cfg.promptRegistrations = append(cfg.promptRegistrations, func(srv *mcp.Server) {
			srv.AddPrompt(prompt, handler)
		})
	}
}

// WithResource adds a fixed-URI resource, such as a rendering of the stored
// bundle in another schema language.
func WithResource(resource *mcp.Resource, handler func(context.Context, *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error)) Option {
	return func(cfg *serverConfig) {
		cfg.resourceRegistrations = append(cfg.resourceRegistrations, func(srv *mcp.Server) {
			srv.AddResource(resource, handler)
		})
	}
}

// WithResourceTemplate adds a parameterised resource. Builtin URIs use the
// schemainfer:// scheme; custom templates should pick their own.
func WithResourceTemplate(template *mcp.ResourceTemplate, handler func(context.Context, *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error)) Option {
	return func(cfg *serverConfig) {
		cfg.resourceRegistrations = append(cfg.resourceRegistrations, func(srv *mcp.Server) {
			srv.AddResourceTemplate(template, handler)
		})
	}
}
