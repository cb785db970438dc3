// Package prompts contains MCP prompt implementations for schema inference.
package prompts

// Config holds configuration needed by prompts.
type Config struct {
	SampleDir      string
	SampleSelector string
}
