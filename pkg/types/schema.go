package types

// GetSchemaOutput is the output of the schema_get tool.
type GetSchemaOutput struct {
	Entity      string `json:"entity"`
	SampleCount int    `json:"sample_count"`
	RunsMerged  int    `json:"runs_merged"`
	UpdatedAt   string `json:"updated_at"`
	Format      string `json:"format"`
	Schema      any    `json:"schema"`
}

// ListSchemasOutput is the output of the schema_list tool.
type ListSchemasOutput struct {
	Entities []string `json:"entities,omitzero"`
	Count    int      `json:"count"`
}

// ValidationResult contains the result of validating a single value.
type ValidationResult struct {
	Index  int      `json:"index"`
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// ValidateSchemaOutput is the output of the schema_validate tool.
type ValidateSchemaOutput struct {
	Entity       string             `json:"entity"`
	Valid        bool               `json:"valid"` // every sample validated
	ValidCount   int                `json:"valid_count"`
	InvalidCount int                `json:"invalid_count"`
	Results      []ValidationResult `json:"results,omitzero"`
}
