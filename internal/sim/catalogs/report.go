package catalogs

import (
	"errors"
	"fmt"
	"sort"

	"emergence.ai/internal/sim/manifest"
)

var ErrIntegrity = errors.New("manifest integrity")

// DanglingRef is a recipe naming an item that has no item entry.
type DanglingRef struct {
	Recipe string
	Item   string
	Role   string // "input" or "output"
}

func (d DanglingRef) String() string {
	return fmt.Sprintf("recipe %q %s references unknown item %q", d.Recipe, d.Role, d.Item)
}

// Report collects the integrity findings of one load. Neither kind of finding
// stops a tolerant load.
type Report struct {
	Duplicates []manifest.Duplicate
	Dangling   []DanglingRef
}

func (r Report) Empty() bool {
	return len(r.Duplicates) == 0 && len(r.Dangling) == 0
}

// Err returns nil for an empty report, otherwise every finding joined under
// ErrIntegrity.
func (r Report) Err() error {
	if r.Empty() {
		return nil
	}
	errs := make([]error, 0, len(r.Duplicates)+len(r.Dangling))
	for _, d := range r.Duplicates {
		errs = append(errs, fmt.Errorf("%s %q defined %d times", d.Category, d.Name, d.Count))
	}
	for _, d := range r.Dangling {
		errs = append(errs, errors.New(d.String()))
	}
	return fmt.Errorf("%w: %w", ErrIntegrity, errors.Join(errs...))
}

func buildReport(items RawItemManifest, recipes RawRecipeManifest, c *Catalogs) Report {
	var r Report
	for _, d := range items.Items.Duplicates() {
		d.Category = Item{}.CategoryName()
		r.Duplicates = append(r.Duplicates, d)
	}
	for _, d := range recipes.Recipes.Duplicates() {
		d.Category = Recipe{}.CategoryName()
		r.Duplicates = append(r.Duplicates, d)
	}

	for _, id := range c.Recipes.IDs() {
		data, _ := c.Recipes.Get(id)
		name, _ := c.Recipes.Name(id)
		check := func(counts []ItemCount, role string) {
			for _, ic := range counts {
				if c.Items.Contains(ic.Item) {
					continue
				}
				item, _ := c.Items.Name(ic.Item)
				r.Dangling = append(r.Dangling, DanglingRef{Recipe: name, Item: item, Role: role})
			}
		}
		check(data.Inputs, "input")
		check(data.Outputs, "output")
	}
	sort.Slice(r.Dangling, func(i, j int) bool {
		a, b := r.Dangling[i], r.Dangling[j]
		if a.Recipe != b.Recipe {
			return a.Recipe < b.Recipe
		}
		if a.Role != b.Role {
			return a.Role < b.Role
		}
		return a.Item < b.Item
	})
	return r
}
