package catalogs

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"emergence.ai/internal/logging"
	"emergence.ai/internal/sim/assets"
	"emergence.ai/internal/sim/manifest"
	"emergence.ai/internal/sim/tuning"
)

// Catalogs is one loaded world of manifests. It is read-only once Load or
// Build returns.
type Catalogs struct {
	Names   *manifest.Names
	Items   *manifest.Manifest[Item, ItemData]
	Recipes *manifest.Manifest[Recipe, RecipeData]

	Digests Digests
	Report  Report
}

// Digests identify the exact content a world was built from.
type Digests struct {
	Items         string
	Recipes       string
	ItemPalette   string
	RecipePalette string
}

type Options struct {
	Strictness tuning.Strictness
	Logger     *logging.Logger
	Metrics    *Metrics
}

func (o Options) logger() *logging.Logger {
	if o.Logger == nil {
		return logging.Nop()
	}
	return o.Logger
}

// Load reads, validates and processes every manifest source under root.
func Load(root string, opts Options) (*Catalogs, error) {
	start := time.Now()
	log := opts.logger().WithComponent("catalogs")

	v, err := newValidator()
	if err != nil {
		return nil, err
	}

	var items RawItemManifest
	itemsRaw, err := readSource(root, items.Path(), itemSchema, v, &items.Items, log.WithCategory(Item{}.CategoryName()))
	if err != nil {
		return nil, err
	}
	var recipes RawRecipeManifest
	recipesRaw, err := readSource(root, recipes.Path(), recipeSchema, v, &recipes.Recipes, log.WithCategory(Recipe{}.CategoryName()))
	if err != nil {
		return nil, err
	}
	log.Debug().Int("items", len(items.Items)).Int("recipes", len(recipes.Recipes)).Str("root", root).Msg("sources decoded")

	c, err := build(items, recipes, opts, log)
	if err != nil {
		return nil, err
	}
	c.Digests.Items = sha256Hex(itemsRaw)
	c.Digests.Recipes = sha256Hex(recipesRaw)

	took := time.Since(start)
	opts.Metrics.observe(c, took)
	log.Info().
		Int("items", c.Items.Len()).
		Int("recipes", c.Recipes.Len()).
		Dur("took", took).
		Msg("manifests loaded")
	return c, nil
}

// Build processes already decoded sources. Source digests are left empty.
func Build(items RawItemManifest, recipes RawRecipeManifest, opts Options) (*Catalogs, error) {
	c, err := build(items, recipes, opts, opts.logger().WithComponent("catalogs"))
	if err != nil {
		return nil, err
	}
	opts.Metrics.observe(c, 0)
	return c, nil
}

func build(items RawItemManifest, recipes RawRecipeManifest, opts Options, log *logging.Logger) (*Catalogs, error) {
	strictness, err := tuning.ParseStrictness(string(opts.Strictness))
	if err != nil {
		return nil, err
	}

	c := &Catalogs{Names: manifest.NewNames()}
	var p manifest.Pipeline
	p.Add(manifest.Stage{
		Name:    Item{}.CategoryName(),
		Declare: items.Declare,
		Process: func(names *manifest.Names) { c.Items = items.Process(names) },
	})
	p.Add(manifest.Stage{
		Name:    Recipe{}.CategoryName(),
		After:   []string{Item{}.CategoryName()},
		Declare: recipes.Declare,
		Process: func(names *manifest.Names) { c.Recipes = recipes.Process(names) },
	})
	if err := p.Run(c.Names); err != nil {
		return nil, err
	}

	c.Digests.ItemPalette = paletteDigest(c.Items.Names().Names())
	c.Digests.RecipePalette = paletteDigest(c.Recipes.Names().Names())
	c.Report = buildReport(items, recipes, c)

	switch strictness {
	case tuning.Strict:
		if err := c.Report.Err(); err != nil {
			return nil, err
		}
	case tuning.Warn:
		for _, d := range c.Report.Duplicates {
			log.Warn().Str("category", d.Category).Str("name", d.Name).Int("count", d.Count).Msg("duplicate name, last entry wins")
		}
		for _, d := range c.Report.Dangling {
			log.Warn().Str("recipe", d.Recipe).Str("item", d.Item).Str("role", d.Role).Msg("recipe references unknown item")
		}
	default:
		if !c.Report.Empty() {
			log.Debug().Int("duplicates", len(c.Report.Duplicates)).Int("dangling", len(c.Report.Dangling)).Msg("integrity findings ignored")
		}
	}
	return c, nil
}

// readSource locates rel under root, decodes its entries, validates them and
// decodes each body into out. It returns the decompressed source bytes.
func readSource[R any](root, rel, schema string, v *assets.Validator, out *manifest.Entries[R], log *logging.Logger) ([]byte, error) {
	file := path.Base(rel)
	src, err := assets.Resolve(root, rel)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("path", src.Path).Bool("zstd", src.Compressed).Msg("reading source")
	raw, err := assets.Read(src)
	if err != nil {
		return nil, err
	}
	entries, err := assets.DecodeEntries(raw, src.Format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	if err := v.Validate(schema, entries); err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}

	decoded := make(manifest.Entries[R], 0, len(entries))
	for _, e := range entries {
		dec := json.NewDecoder(bytes.NewReader(e.Body))
		dec.DisallowUnknownFields()
		var r R
		if err := dec.Decode(&r); err != nil {
			return nil, fmt.Errorf("%s: %s: %w", file, e.Name, err)
		}
		decoded = append(decoded, manifest.Entry[R]{Name: e.Name, Raw: r})
	}
	*out = decoded
	return raw, nil
}

// ItemID resolves an item name without interning it.
func (c *Catalogs) ItemID(name string) (manifest.ID[Item], bool) {
	return c.Items.Names().Lookup(name)
}

// RecipeID resolves a recipe name without interning it.
func (c *Catalogs) RecipeID(name string) (manifest.ID[Recipe], bool) {
	return c.Recipes.Names().Lookup(name)
}

func (c *Catalogs) Item(id manifest.ID[Item]) (ItemData, bool) {
	return c.Items.Get(id)
}

func (c *Catalogs) Recipe(id manifest.ID[Recipe]) (RecipeData, bool) {
	return c.Recipes.Get(id)
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func paletteDigest(names []string) string {
	b, _ := json.Marshal(names)
	return sha256Hex(b)
}
