package catalogs

import (
	"embed"

	"emergence.ai/internal/sim/assets"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

const (
	itemSchema   = "item"
	recipeSchema = "recipe"
)

func newValidator() (*assets.Validator, error) {
	v := assets.NewValidator()
	for _, name := range []string{itemSchema, recipeSchema} {
		src, err := schemaFS.ReadFile("schemas/" + name + ".schema.json")
		if err != nil {
			return nil, err
		}
		if err := v.Add(name, src); err != nil {
			return nil, err
		}
	}
	return v, nil
}
