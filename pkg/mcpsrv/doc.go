// Package mcpsrv provides an extensible MCP server for sample-driven schema
// inference.
//
// This package exposes a high-level API for creating and running an MCP server
// with all builtin schema tools, prompts, and resources. Users can extend the
// server with custom tools, prompts, and resources using functional options.
//
// # Basic Usage
//
// Create a server with configuration loaded from the environment:
//
//	server, err := mcpsrv.NewServer()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer server.Close()
//	server.Run(ctx)
//
// # Extension
//
// Add custom tools that reach the schema store through Deps:
//
//	import mcp "github.com/modelcontextprotocol/go-sdk/mcp"
//
//	type CountInput struct{}
//
//	type CountOutput struct {
//	    Count int `json:"count"`
//	}
//
//	server, err := mcpsrv.NewServer(
//	    mcpsrv.WithDepsTool(
//	        &mcp.Tool{Name: "schema_count", Description: "Count stored schemas"},
//	        func(d *mcpsrv.Deps) func(context.Context, *mcp.CallToolRequest, CountInput) (*mcp.CallToolResult, CountOutput, error) {
//	            return func(ctx context.Context, req *mcp.CallToolRequest, in CountInput) (*mcp.CallToolResult, CountOutput, error) {
//	                names, err := d.Store.List(ctx)
//	                return nil, CountOutput{Count: len(names)}, err
//	            }
//	        },
//	    ),
//	)
//
// # Configuration
//
// Override environment configuration with options:
//
//	server, err := mcpsrv.NewServer(
//	    mcpsrv.WithStoreDir("/var/lib/schemainfer"),
//	    mcpsrv.WithLogLevel("debug"),
//	    mcpsrv.WithLogFile("/var/log/schemainfer-mcp.log"),
//	)
package mcpsrv
