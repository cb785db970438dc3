package mcpsrv

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/schemainfer/internal/mcp/tools"
)

// AddTool registers a tool the same way the builtin schema_* tools are
// registered. Both In and Out must produce a JSON schema, and the zero value
// of Out must satisfy its own schema: a nil slice marshals to null where the
// schema says array, which the SDK would only reject on the first call.
// A failed check panics naming the offending field. Calls that return an
// error are logged with the tool name and error code.
func AddTool[In, Out any](srv *sdkmcp.Server, t *sdkmcp.Tool, h sdkmcp.ToolHandlerFor[In, Out]) {
	tools.AddTool(srv, t, h)
}
