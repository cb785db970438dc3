// Package validate checks sample documents against exported schemas.
package validate

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/usestring/schemainfer/pkg/export"
	"github.com/usestring/schemainfer/pkg/schema"
	"github.com/usestring/schemainfer/pkg/value"
)

const resourceName = "schema.json"

// Result is the outcome of validating one document.
type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// Validator validates documents against one entity of a bundle.
type Validator struct {
	entity string
	schema *jsonschema.Schema
}

// New compiles the JSON Schema rendering of entity within b.
func New(b *schema.Bundle, entity string) (*Validator, error) {
	doc, err := export.EntityJSONSchema(b, entity)
	if err != nil {
		return nil, err
	}
	m, err := export.ToMap(doc)
	if err != nil {
		return nil, err
	}
	compiled, err := compile(m)
	if err != nil {
		return nil, fmt.Errorf("entity %s: %w", entity, err)
	}
	return &Validator{entity: entity, schema: compiled}, nil
}

// ForNode compiles a standalone node. References are resolved against defs.
func ForNode(n *schema.Node, defs map[string]*schema.Node) (*Validator, error) {
	b := schema.NewBundle()
	for name, d := range defs {
		b.Definitions[name] = d
	}
	const entity = "Root"
	b.Entities[entity] = n
	return New(b, entity)
}

func compile(doc map[string]any) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	// doc must be a decoded JSON value, not an io.Reader
	if err := compiler.AddResource(resourceName, doc); err != nil {
		return nil, fmt.Errorf("adding schema resource: %w", err)
	}
	compiled, err := compiler.Compile(resourceName)
	if err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}
	return compiled, nil
}

// Entity returns the entity name the validator was compiled for.
func (v *Validator) Entity() string {
	return v.entity
}

// Validate validates raw JSON.
func (v *Validator) Validate(data []byte) *Result {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return &Result{Errors: []string{fmt.Sprintf("invalid JSON: %s", err.Error())}}
	}
	return v.validate(doc)
}

// ValidateValue validates a decoded sample.
func (v *Validator) ValidateValue(sample value.Value) *Result {
	data, err := sample.MarshalJSON()
	if err != nil {
		return &Result{Errors: []string{fmt.Sprintf("encoding sample: %s", err.Error())}}
	}
	return v.Validate(data)
}

func (v *Validator) validate(doc any) *Result {
	err := v.schema.Validate(doc)
	if err == nil {
		return &Result{Valid: true}
	}
	return &Result{Errors: extractValidationErrors(err)}
}

// extractValidationErrors extracts human-readable error messages from a validation error.
func extractValidationErrors(err error) []string {
	var validationErr *jsonschema.ValidationError
	if errors.As(err, &validationErr) {
		return extractDetailedErrors(validationErr)
	}
	return []string{err.Error()}
}

// printer is a default English printer for localized error messages.
var printer = message.NewPrinter(language.English)

// extractDetailedErrors flattens leaf errors, one line per distinct message,
// ordered by instance path.
func extractDetailedErrors(err *jsonschema.ValidationError) []string {
	errorsByPath := make(map[string][]string)
	collectErrors(err, errorsByPath)

	paths := make([]string, 0, len(errorsByPath))
	for p := range errorsByPath {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var result []string
	for _, path := range paths {
		seen := make(map[string]bool)
		for _, msg := range errorsByPath[path] {
			if seen[msg] {
				continue
			}
			seen[msg] = true
			if path != "" {
				result = append(result, fmt.Sprintf("%s: %s", path, msg))
			} else {
				result = append(result, msg)
			}
		}
	}
	if len(result) == 0 {
		result = append(result, err.Error())
	}
	return result
}

// collectErrors recursively collects leaf errors (those without causes).
func collectErrors(err *jsonschema.ValidationError, errorsByPath map[string][]string) {
	instancePath := ""
	if len(err.InstanceLocation) > 0 {
		instancePath = "/" + strings.Join(err.InstanceLocation, "/")
	}

	if err.ErrorKind != nil && len(err.Causes) == 0 {
		errMsg := err.ErrorKind.LocalizedString(printer)
		// reference hops carry no information of their own
		if !strings.HasPrefix(errMsg, "$ref ") && !strings.HasPrefix(errMsg, "doesn't validate with") {
			errorsByPath[instancePath] = append(errorsByPath[instancePath], errMsg)
		}
	}

	for _, cause := range err.Causes {
		collectErrors(cause, errorsByPath)
	}
}
