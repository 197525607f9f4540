package manifest

import "sort"

// RawManifest is implemented by every on-disk content schema. Path locates the
// source relative to the content root; Declare interns the schema's own entity
// names; Process converts the raw entries into a manifest and never fails.
type RawManifest[C Category, D any] interface {
	Path() string
	Declare(names *Names)
	Process(names *Names) *Manifest[C, D]
}

// RawData converts one as-authored payload into its canonical form, resolving
// name references through names.
type RawData[D any] interface {
	Canonical(names *Names) D
}

// Entry is one authored name and its raw payload.
type Entry[R any] struct {
	Name string
	Raw  R
}

// Entries keeps authored order, duplicates included.
type Entries[R any] []Entry[R]

// Duplicates returns names authored more than once, with their occurrence
// counts, sorted by name.
func (es Entries[R]) Duplicates() []Duplicate {
	counts := make(map[string]int, len(es))
	for _, e := range es {
		counts[e.Name]++
	}
	var out []Duplicate
	for name, n := range counts {
		if n > 1 {
			out = append(out, Duplicate{Name: name, Count: n})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Effective returns the entries that survive last-write-wins: the last
// occurrence of each name, in authored order.
func (es Entries[R]) Effective() Entries[R] {
	last := make(map[string]int, len(es))
	for i, e := range es {
		last[e.Name] = i
	}
	if len(last) == len(es) {
		return es
	}
	out := make(Entries[R], 0, len(last))
	for i, e := range es {
		if last[e.Name] == i {
			out = append(out, e)
		}
	}
	return out
}

// Duplicate is a name authored Count times in one source; the last one wins.
type Duplicate struct {
	Category string
	Name     string
	Count    int
}

// Declare interns every entry name into category C in sorted order, so that
// handles do not depend on authoring order or on references from other
// categories processed later.
func Declare[C Category, R any](names *Names, entries Entries[R]) {
	in := NamespaceOf[C](names)
	sorted := make([]string, 0, len(entries))
	for _, e := range entries {
		sorted = append(sorted, e.Name)
	}
	sort.Strings(sorted)
	for _, name := range sorted {
		in.FromName(name)
	}
}

// Process converts the surviving entry of each name and inserts it. Overwritten
// entries are never converted, so references they alone make are not interned.
func Process[C Category, D any, R RawData[D]](names *Names, entries Entries[R]) *Manifest[C, D] {
	m := New[C, D](NamespaceOf[C](names))
	for _, e := range entries.Effective() {
		m.Insert(e.Name, e.Raw.Canonical(names))
	}
	return m
}
