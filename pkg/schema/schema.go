// Package schema validates slice documents against the slicer's JSON schema.
package schema

import (
	"bytes"
	_ "embed"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed slice.schema.json
var sliceSchema []byte

const schemaURL = "slice.schema.json"

// Validator checks raw documents before they are decoded.
// A compiled Validator is safe for concurrent use.
type Validator struct {
	schema *jsonschema.Schema
}

// New compiles the embedded slice document schema.
func New() (*Validator, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(sliceSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to parse slice schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("failed to register slice schema: %w", err)
	}
	sch, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile slice schema: %w", err)
	}
	return &Validator{schema: sch}, nil
}

// Validate reports whether data is a well-formed slice document.
func (v *Validator) Validate(data []byte) error {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := v.schema.Validate(inst); err != nil {
		return fmt.Errorf("schema mismatch: %w", err)
	}
	return nil
}
