package types

import "github.com/usestring/schemainfer/pkg/infer"

// SchemaFormat selects how a schema is rendered in tool output.
type SchemaFormat string

// Schema format constants.
const (
	FormatJSONSchema SchemaFormat = "json_schema"
	FormatOpenAPI    SchemaFormat = "openapi"
	FormatNative     SchemaFormat = "native"
)

// InferSchemaOutput is the output of the schema_infer tool.
type InferSchemaOutput struct {
	Entity string `json:"entity"`
	// Schema is the entity rendered in the requested format; references
	// point into Definitions.
	Schema      any                `json:"schema"`
	Definitions map[string]any     `json:"definitions,omitempty"`
	Summary     InferSchemaSummary `json:"summary"`
	Conflicts   []Conflict         `json:"conflicts,omitzero"`
	FieldStats  []infer.FieldStat  `json:"field_stats,omitzero"`
	Resource    *ResourceRef       `json:"resource,omitempty"`
	Hint        string             `json:"hint,omitempty"`
}

// InferSchemaSummary describes one entity's inference run.
type InferSchemaSummary struct {
	SamplesProvided int  `json:"samples_provided"`
	SamplesUsed     int  `json:"samples_used"`
	SamplesSkipped  int  `json:"samples_skipped"` // null or error-response samples
	AllMatch        bool `json:"all_match"`       // every sample had the same shape
	MergedWithPrior bool `json:"merged_with_prior"`
	RunsMerged      int  `json:"runs_merged"`
	TotalSamples    int  `json:"total_samples"` // across all merged runs
	Persisted       bool `json:"persisted"`
}

// InferDirOutput is the output of the schema_infer_dir tool.
type InferDirOutput struct {
	Dir         string          `json:"dir"`
	Entities    []EntitySummary `json:"entities,omitzero"`
	Preserved   []string        `json:"preserved,omitzero"` // stored entities absent from this run
	Definitions []string        `json:"definitions,omitzero"`
	Bundle      any             `json:"bundle"`
	Conflicts   []Conflict      `json:"conflicts,omitzero"`
	Persisted   bool            `json:"persisted"`
	Resource    *ResourceRef    `json:"resource,omitempty"`
}

// EntitySummary describes one entity of a directory run.
type EntitySummary struct {
	Name           string `json:"name"`
	SamplesUsed    int    `json:"samples_used"`
	SamplesSkipped int    `json:"samples_skipped"`
	AllMatch       bool   `json:"all_match"`
	RunsMerged     int    `json:"runs_merged"`
}
