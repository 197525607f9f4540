package assets

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// RawEntry is one top-level entity of a manifest source: the authored name and
// its payload re-encoded as JSON.
type RawEntry struct {
	Name string
	Body json.RawMessage
}

// DecodeEntries splits a source holding a single object into its entries,
// keeping authored order and repeated names.
func DecodeEntries(data []byte, format Format) ([]RawEntry, error) {
	switch format {
	case FormatJSON:
		return decodeJSON(data)
	case FormatYAML:
		return decodeYAML(data)
	default:
		return nil, fmt.Errorf("%w: format %s", ErrUnsupportedExt, format)
	}
}

func decodeJSON(data []byte) ([]RawEntry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("%w: top level is not an object", ErrInvalidFormat)
	}

	var out []RawEntry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		name, _ := tok.(string)
		if name == "" {
			return nil, fmt.Errorf("%w (entry %d)", ErrEmptyName, len(out))
		}
		var body json.RawMessage
		if err := dec.Decode(&body); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFormat, name, err)
		}
		out = append(out, RawEntry{Name: name, Body: body})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after object", ErrInvalidFormat)
	}
	return out, nil
}

func decodeYAML(data []byte) ([]RawEntry, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: top level is not a mapping (line %d)", ErrInvalidFormat, root.Line)
	}

	out := make([]RawEntry, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		k, v := root.Content[i], root.Content[i+1]
		if k.Kind != yaml.ScalarNode || k.Value == "" {
			return nil, fmt.Errorf("%w (line %d)", ErrEmptyName, k.Line)
		}
		var val any
		if err := v.Decode(&val); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFormat, k.Value, err)
		}
		body, err := json.Marshal(val)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFormat, k.Value, err)
		}
		out = append(out, RawEntry{Name: k.Value, Body: body})
	}
	return out, nil
}
