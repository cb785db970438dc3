// Package types holds the input and output shapes shared by the MCP tools
// and resources.
package types

import "encoding/json"

// ToAny round-trips a typed value through JSON to produce an untyped any.
// Use this when a tool output field must be any (instead of json.RawMessage)
// to satisfy the MCP SDK's schema validation.
func ToAny(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ResourceRef points to an MCP resource.
type ResourceRef struct {
	URI  string `json:"uri"`
	MIME string `json:"mime"`
	Hint string `json:"hint,omitempty"`
}

// Conflict reports a slot where an object and an array were both observed.
type Conflict struct {
	Entity  string `json:"entity"`
	Path    string `json:"path"`
	Kept    string `json:"kept"`
	Dropped string `json:"dropped"`
	Stage   string `json:"stage"`
}
