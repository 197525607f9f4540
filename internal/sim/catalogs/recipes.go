package catalogs

import (
	"math"
	"sort"
	"time"

	"emergence.ai/internal/sim/manifest"
)

// Recipe is the category of crafting recipes.
type Recipe struct{}

func (Recipe) CategoryName() string { return "recipe" }

// Energy is the amount of energy a living structure gains from a recipe.
type Energy float64

type ItemCount struct {
	Item  manifest.ID[Item] `json:"item"`
	Count int               `json:"count"`
}

type RecipeData struct {
	Inputs       []ItemCount   `json:"inputs"`
	Outputs      []ItemCount   `json:"outputs"`
	CraftTime    time.Duration `json:"craft_time"`
	WorkRequired bool          `json:"work_required"`
	Energy       *Energy       `json:"energy,omitempty"`
}

// Consumes returns how many of item one craft takes.
func (r RecipeData) Consumes(item manifest.ID[Item]) int {
	return countOf(r.Inputs, item)
}

// Produces returns how many of item one craft yields.
func (r RecipeData) Produces(item manifest.ID[Item]) int {
	return countOf(r.Outputs, item)
}

func countOf(counts []ItemCount, item manifest.ID[Item]) int {
	n := 0
	for _, c := range counts {
		if c.Item == item {
			n += c.Count
		}
	}
	return n
}

// RawRecipeData is a recipe entry as authored. Item references are names.
type RawRecipeData struct {
	Inputs       map[string]int `json:"inputs"`
	Outputs      map[string]int `json:"outputs"`
	CraftTimeMs  uint64         `json:"craft_time_ms"`
	WorkRequired *bool          `json:"work_required,omitempty"`
	Energy       *Energy        `json:"energy,omitempty"`
}

// Canonical resolves item names through the item namespace of names. A name
// with no item entry still gets an id; its lookup in the item manifest is
// absent.
func (r RawRecipeData) Canonical(names *manifest.Names) RecipeData {
	out := RecipeData{
		Inputs:    resolveCounts(names, r.Inputs),
		Outputs:   resolveCounts(names, r.Outputs),
		CraftTime: craftTime(r.CraftTimeMs),
	}
	if r.WorkRequired != nil {
		out.WorkRequired = *r.WorkRequired
	}
	if r.Energy != nil {
		e := *r.Energy
		out.Energy = &e
	}
	return out
}

// MaxCraftTimeMs is the longest craft time a time.Duration can hold.
const MaxCraftTimeMs = uint64(math.MaxInt64 / int64(time.Millisecond))

// craftTime saturates at the largest representable duration instead of
// wrapping negative.
func craftTime(ms uint64) time.Duration {
	if ms > MaxCraftTimeMs {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(ms) * time.Millisecond
}

func resolveCounts(names *manifest.Names, in map[string]int) []ItemCount {
	out := make([]ItemCount, 0, len(in))
	for name, n := range in {
		out = append(out, ItemCount{Item: manifest.FromName[Item](names, name), Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Item.Less(out[j].Item) })
	return out
}

// RawRecipeManifest is the decoded recipes source.
type RawRecipeManifest struct {
	Recipes manifest.Entries[RawRecipeData]
}

var _ manifest.RawManifest[Recipe, RecipeData] = RawRecipeManifest{}

func (RawRecipeManifest) Path() string { return "manifests/recipes.manifest.json" }

// Declare interns recipe names, then every referenced item name in sorted
// order. Run after the item stage, defined items keep their handles and
// unknown names get deterministic handles after them.
func (r RawRecipeManifest) Declare(names *manifest.Names) {
	manifest.Declare[Recipe](names, r.Recipes)
	items := manifest.NamespaceOf[Item](names)
	for _, name := range r.referencedItems() {
		items.FromName(name)
	}
}

func (r RawRecipeManifest) Process(names *manifest.Names) *manifest.Manifest[Recipe, RecipeData] {
	return manifest.Process[Recipe, RecipeData](names, r.Recipes)
}

// referencedItems lists every distinct item name the surviving recipe entries
// mention. Entries overwritten by a later duplicate do not contribute.
func (r RawRecipeManifest) referencedItems() []string {
	seen := map[string]bool{}
	for _, e := range r.Recipes.Effective() {
		for name := range e.Raw.Inputs {
			seen[name] = true
		}
		for name := range e.Raw.Outputs {
			seen[name] = true
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
