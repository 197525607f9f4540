package assets

import "errors"

var (
	ErrNotFound       = errors.New("manifest source not found")
	ErrInvalidFormat  = errors.New("manifest source must be a single JSON or YAML object")
	ErrUnsupportedExt = errors.New("unsupported manifest extension (use .json, .yaml or .yml, optionally .zst)")
	ErrEmptyName      = errors.New("entity name cannot be empty")
	ErrSchema         = errors.New("entry does not match schema")
	ErrUnknownSchema  = errors.New("unknown schema")
)
