package catalogs

import "emergence.ai/internal/sim/manifest"

// Record is one interned name of a loaded world in a serializable form.
// Defined is false for names that were only referenced.
type Record struct {
	Category string          `json:"category"`
	Handle   manifest.Handle `json:"handle"`
	Name     string          `json:"name"`
	Defined  bool            `json:"defined"`
	Data     any             `json:"data,omitempty"`
}

type recipeRecord struct {
	Inputs       []countRecord `json:"inputs"`
	Outputs      []countRecord `json:"outputs"`
	CraftTimeMs  int64         `json:"craft_time_ms"`
	WorkRequired bool          `json:"work_required"`
	Energy       *Energy       `json:"energy,omitempty"`
}

type countRecord struct {
	Item  manifest.Handle `json:"item"`
	Name  string          `json:"name"`
	Count int             `json:"count"`
}

// Records lists every item name then every recipe name in handle order.
func (c *Catalogs) Records() []Record {
	out := make([]Record, 0, c.Items.Names().Len()+c.Recipes.Names().Len())
	item := Item{}.CategoryName()
	for h, name := range c.Items.Names().Names() {
		id := manifest.IDFromHandle[Item](manifest.Handle(h + 1))
		r := Record{Category: item, Handle: id.Handle(), Name: name}
		if data, ok := c.Items.Get(id); ok {
			r.Defined = true
			r.Data = data
		}
		out = append(out, r)
	}
	recipe := Recipe{}.CategoryName()
	for h, name := range c.Recipes.Names().Names() {
		id := manifest.IDFromHandle[Recipe](manifest.Handle(h + 1))
		r := Record{Category: recipe, Handle: id.Handle(), Name: name}
		if data, ok := c.Recipes.Get(id); ok {
			r.Defined = true
			r.Data = recipeRecord{
				Inputs:       c.countRecords(data.Inputs),
				Outputs:      c.countRecords(data.Outputs),
				CraftTimeMs:  data.CraftTime.Milliseconds(),
				WorkRequired: data.WorkRequired,
				Energy:       data.Energy,
			}
		}
		out = append(out, r)
	}
	return out
}

func (c *Catalogs) countRecords(counts []ItemCount) []countRecord {
	out := make([]countRecord, 0, len(counts))
	for _, ic := range counts {
		name, _ := c.Items.Name(ic.Item)
		out = append(out, countRecord{Item: ic.Item.Handle(), Name: name, Count: ic.Count})
	}
	return out
}
