package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/schemainfer/internal/mcp/tools"
	"github.com/usestring/schemainfer/internal/store"
	"github.com/usestring/schemainfer/pkg/export"
	"github.com/usestring/schemainfer/pkg/schema"
)

// Resource URI scheme: schemainfer://
// Supported URIs:
//   schemainfer://schema/{entity}
//   schemainfer://bundle
//   schemainfer://openapi

// registerResources registers resources, resource templates and their handlers.
func (s *Server) registerResources() {
	s.mcpServer.AddResourceTemplate(&sdkmcp.ResourceTemplate{
		URITemplate: "schemainfer://schema/{entity}",
		Name:        "Entity Schema",
		Description: "Stored merged schema for one entity as JSON Schema, with its sample and run counts.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.7,
		},
	}, s.handleResourceSchema)

	s.mcpServer.AddResource(&sdkmcp.Resource{
		URI:         tools.BundleResourceURI,
		Name:        "Schema Bundle",
		Description: "All stored entities in one JSON Schema document, shared shapes in $defs. High context cost - prefer schema_get for a single entity.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.4,
		},
	}, s.handleResourceBundle)

	s.mcpServer.AddResource(&sdkmcp.Resource{
		URI:         tools.OpenAPIResourceURI,
		Name:        "OpenAPI Components",
		Description: "All stored entities as OpenAPI 3.0 components.schemas, ready to paste into an OpenAPI document.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.4,
		},
	}, s.handleResourceOpenAPI)
}

// Resource handlers

func (s *Server) handleResourceSchema(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	params, err := parseResourceURI(req.Params.URI)
	if err != nil {
		return nil, err
	}

	rec, err := s.deps.LoadRecord(ctx, params["entity"])
	if err != nil {
		return nil, err
	}

	js := export.JSONSchema(rec.Schema)
	js.Version = export.Draft

	content := map[string]any{
		"entity":       rec.Name,
		"sample_count": rec.SampleCount,
		"runs_merged":  rec.Runs,
		"updated_at":   rec.UpdatedAt.Format(time.RFC3339),
		"schema":       js,
	}
	return toResourceResult(req.Params.URI, content)
}

func (s *Server) handleResourceBundle(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	b, err := s.storedBundle(ctx)
	if err != nil {
		return nil, err
	}
	return toResourceResult(req.Params.URI, export.BundleJSONSchema(b))
}

func (s *Server) handleResourceOpenAPI(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	b, err := s.storedBundle(ctx)
	if err != nil {
		return nil, err
	}
	content := map[string]any{
		"components": export.OpenAPIComponents(b),
	}
	return toResourceResult(req.Params.URI, content)
}

// storedBundle returns the bundle written by the last directory run. Without
// one it assembles the stored records as entities with no shared definitions.
func (s *Server) storedBundle(ctx context.Context) (*schema.Bundle, error) {
	b, err := s.deps.Store.LoadBundle(ctx)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, tools.WrapStoreError(err, "")
	}

	recs, err := s.deps.Store.LoadAll(ctx)
	if err != nil {
		return nil, tools.WrapStoreError(err, "")
	}
	b = schema.NewBundle()
	for name, rec := range recs {
		b.Entities[name] = rec.Schema
	}
	return b, nil
}

// parseResourceURI extracts parameters from a resource URI.
func parseResourceURI(uri string) (map[string]string, error) {
	if !strings.HasPrefix(uri, tools.ResourceScheme) {
		return nil, tools.ErrInvalidInput("invalid URI scheme: expected " + tools.ResourceScheme)
	}

	path := strings.TrimPrefix(uri, tools.ResourceScheme)
	parts := strings.Split(path, "/")

	params := make(map[string]string)
	resourceType := parts[0]

	switch resourceType {
	case "":
		return nil, tools.ErrInvalidInput("empty resource path")

	case "schema":
		if len(parts) != 2 || parts[1] == "" {
			return nil, tools.ErrInvalidInput("schema URI requires exactly one entity name")
		}
		params["entity"] = parts[1]

	case "bundle", "openapi":
		if len(parts) != 1 {
			return nil, tools.ErrInvalidInput(fmt.Sprintf("%s URI takes no parameters", resourceType))
		}

	default:
		return nil, tools.ErrInvalidInput(fmt.Sprintf("unknown resource type: %s", resourceType))
	}

	return params, nil
}

// toResourceResult serializes content to a ReadResourceResult.
func toResourceResult(uri string, content any) (*sdkmcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializing resource: %w", err)
	}

	return &sdkmcp.ReadResourceResult{
		Contents: []*sdkmcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: tools.MimeJSON,
				Text:     string(data),
			},
		},
	}, nil
}
