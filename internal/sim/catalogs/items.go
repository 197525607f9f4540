package catalogs

import "emergence.ai/internal/sim/manifest"

// Item is the category of inventory items.
type Item struct{}

func (Item) CategoryName() string { return "item" }

type ItemData struct {
	// StackSize is the maximum number of items that fit in one stack.
	StackSize int `json:"stack_size"`
}

// RawItemData is an item entry as authored.
type RawItemData struct {
	StackSize int `json:"stack_size"`
}

func (r RawItemData) Canonical(*manifest.Names) ItemData {
	return ItemData{StackSize: r.StackSize}
}

// RawItemManifest is the decoded items source.
type RawItemManifest struct {
	Items manifest.Entries[RawItemData]
}

var _ manifest.RawManifest[Item, ItemData] = RawItemManifest{}

func (RawItemManifest) Path() string { return "manifests/items.manifest.json" }

func (r RawItemManifest) Declare(names *manifest.Names) {
	manifest.Declare[Item](names, r.Items)
}

func (r RawItemManifest) Process(names *manifest.Names) *manifest.Manifest[Item, ItemData] {
	return manifest.Process[Item, ItemData](names, r.Items)
}
