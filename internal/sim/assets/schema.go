package assets

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Validator checks raw entries against named JSON schemas.
type Validator struct {
	schemas map[string]*jsonschema.Schema
}

func NewValidator() *Validator {
	return &Validator{schemas: map[string]*jsonschema.Schema{}}
}

// Add compiles src and registers it under name.
func (v *Validator) Add(name string, src []byte) error {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	url := "mem://schemas/" + name
	if err := c.AddResource(url, bytes.NewReader(src)); err != nil {
		return fmt.Errorf("schema %s: %w", name, err)
	}
	s, err := c.Compile(url)
	if err != nil {
		return fmt.Errorf("schema %s: %w", name, err)
	}
	v.schemas[name] = s
	return nil
}

// Validate checks every entry against the schema registered as name and
// reports the first failure with the entity name.
func (v *Validator) Validate(name string, entries []RawEntry) error {
	s, ok := v.schemas[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSchema, name)
	}
	for _, e := range entries {
		dec := json.NewDecoder(bytes.NewReader(e.Body))
		dec.UseNumber()
		var doc any
		if err := dec.Decode(&doc); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidFormat, e.Name, err)
		}
		if err := s.Validate(doc); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrSchema, e.Name, err)
		}
	}
	return nil
}
