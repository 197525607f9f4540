package manifest

import (
	"errors"
	"reflect"
	"sync"
	"testing"
)

type fruit struct{}

func (fruit) CategoryName() string { return "fruit" }

type tool struct{}

func (tool) CategoryName() string { return "tool" }

type rawFruit struct {
	Sweet int
	Pairs []string
}

type fruitData struct {
	Sweet int
	Pairs []ID[tool]
}

func (r rawFruit) Canonical(names *Names) fruitData {
	out := fruitData{Sweet: r.Sweet}
	for _, p := range r.Pairs {
		out.Pairs = append(out.Pairs, FromName[tool](names, p))
	}
	return out
}

func TestInterner_DistinctAndIdempotent(t *testing.T) {
	in := NewInterner[fruit]()
	a := in.FromName("apple")
	b := in.FromName("banana")
	if a == b {
		t.Fatalf("distinct names share id %v", a)
	}
	if again := in.FromName("apple"); again != a {
		t.Fatalf("FromName not idempotent: got %v want %v", again, a)
	}
	if a.Handle() != 1 || b.Handle() != 2 {
		t.Fatalf("handles: got %d,%d want 1,2", a.Handle(), b.Handle())
	}
	if st := in.Stats(); st.Count != 2 || st.Lookups != 1 {
		t.Fatalf("stats: got %+v", st)
	}
	if name, ok := in.Name(b); !ok || name != "banana" {
		t.Fatalf("Name(b): got %q,%v", name, ok)
	}
	if got := in.Names(); !reflect.DeepEqual(got, []string{"apple", "banana"}) {
		t.Fatalf("Names: got %v", got)
	}
}

func TestInterner_EmptyNameRejected(t *testing.T) {
	in := NewInterner[fruit]()
	id := in.FromName("")
	if id.IsValid() {
		t.Fatalf("empty name produced valid id %v", id)
	}
	if in.Len() != 0 {
		t.Fatalf("empty name was interned")
	}
	if _, ok := in.Lookup(""); ok {
		t.Fatalf("Lookup(\"\") should miss")
	}
}

func TestInterner_LookupDoesNotIntern(t *testing.T) {
	in := NewInterner[fruit]()
	if _, ok := in.Lookup("kiwi"); ok {
		t.Fatalf("unexpected hit")
	}
	if in.Len() != 0 {
		t.Fatalf("Lookup interned a name")
	}
	want := in.FromName("kiwi")
	got, ok := in.Lookup("kiwi")
	if !ok || got != want {
		t.Fatalf("Lookup: got %v,%v want %v", got, ok, want)
	}
}

func TestInterner_ConcurrentFromName(t *testing.T) {
	in := NewInterner[fruit]()
	names := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	var wg sync.WaitGroup
	results := make([][]ID[fruit], 8)
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for _, n := range names {
				results[w] = append(results[w], in.FromName(n))
			}
		}(w)
	}
	wg.Wait()
	if in.Len() != len(names) {
		t.Fatalf("len: got %d want %d", in.Len(), len(names))
	}
	for w := 1; w < 8; w++ {
		if !reflect.DeepEqual(results[w], results[0]) {
			t.Fatalf("worker %d saw different ids", w)
		}
	}
}

func TestNames_CategoriesAreSeparateNamespaces(t *testing.T) {
	names := NewNames()
	f := FromName[fruit](names, "hammer")
	tl := FromName[tool](names, "hammer")
	if f.Handle() != tl.Handle() {
		t.Fatalf("expected coinciding handles, got %d and %d", f.Handle(), tl.Handle())
	}
	// Same handle, different categories: the boxed values never compare equal.
	if any(f) == any(tl) {
		t.Fatalf("ids of different categories compared equal")
	}
	if NamespaceOf[fruit](names) != NamespaceOf[fruit](names) {
		t.Fatalf("NamespaceOf should return the same interner")
	}
	if got := names.Categories(); !reflect.DeepEqual(got, []string{"fruit", "tool"}) {
		t.Fatalf("categories: got %v", got)
	}
	if _, ok := Lookup[tool](names, "apple"); ok {
		t.Fatalf("lookup across categories should miss")
	}
}

func TestID_TextAndOrdering(t *testing.T) {
	a := IDFromHandle[fruit](3)
	b := IDFromHandle[fruit](7)
	if !a.Less(b) || b.Less(a) || a.Compare(b) != -1 || b.Compare(a) != 1 || a.Compare(a) != 0 {
		t.Fatalf("ordering broken for %v %v", a, b)
	}
	if a.String() != "fruit#3" {
		t.Fatalf("String: got %q", a.String())
	}
	txt, err := b.MarshalText()
	if err != nil || string(txt) != "7" {
		t.Fatalf("MarshalText: got %q,%v", txt, err)
	}
	var back ID[fruit]
	if err := back.UnmarshalText(txt); err != nil || back != b {
		t.Fatalf("UnmarshalText: got %v,%v want %v", back, err, b)
	}
	if err := back.UnmarshalText([]byte("x")); err == nil {
		t.Fatalf("expected error for non-numeric id")
	}
	var zero ID[fruit]
	if zero.IsValid() {
		t.Fatalf("zero id should be invalid")
	}
}

func TestManifest_InsertGet(t *testing.T) {
	names := NewNames()
	m := New[fruit, int](NamespaceOf[fruit](names))
	id := m.Insert("plum", 4)
	got, ok := m.Get(id)
	if !ok || got != 4 {
		t.Fatalf("Get: got %d,%v want 4,true", got, ok)
	}
	if got, ok := m.GetByName("plum"); !ok || got != 4 {
		t.Fatalf("GetByName: got %d,%v", got, ok)
	}
	if _, ok := m.GetByName("pear"); ok {
		t.Fatalf("GetByName of unknown name should miss")
	}
	if m.Len() != 1 || !m.Contains(id) {
		t.Fatalf("len/contains wrong")
	}
	if z := m.Insert("", 9); z.IsValid() || m.Len() != 1 {
		t.Fatalf("empty name should not insert")
	}
	if m.Category() != "fruit" {
		t.Fatalf("category: got %q", m.Category())
	}
}

func TestManifest_LastWriteWins(t *testing.T) {
	m := New[fruit, string](nil)
	first := m.Insert("x", "first")
	second := m.Insert("x", "second")
	if first != second {
		t.Fatalf("same name gave different ids")
	}
	if m.Len() != 1 {
		t.Fatalf("len: got %d want 1", m.Len())
	}
	if got, _ := m.Get(first); got != "second" {
		t.Fatalf("got %q want second", got)
	}
}

func TestManifest_AbsentLookups(t *testing.T) {
	names := NewNames()
	m := New[fruit, int](NamespaceOf[fruit](names))
	m.Insert("a", 1)
	dangling := FromName[fruit](names, "ghost")
	if _, ok := m.Get(dangling); ok {
		t.Fatalf("dangling id should be absent")
	}
	if _, ok := m.Get(ID[fruit]{}); ok {
		t.Fatalf("zero id should be absent")
	}
	if _, ok := m.Get(IDFromHandle[fruit](999)); ok {
		t.Fatalf("foreign id should be absent")
	}
	missing := m.Missing()
	if len(missing) != 1 || missing[0] != dangling {
		t.Fatalf("Missing: got %v want [%v]", missing, dangling)
	}
	m.Insert("b", 2)
	if ids := m.IDs(); len(ids) != 2 || ids[0].Handle() != 1 || ids[1].Handle() != 3 {
		t.Fatalf("IDs: got %v", ids)
	}
}

func TestProcess_DeclareSortsAndLastWins(t *testing.T) {
	names := NewNames()
	entries := Entries[rawFruit]{
		{Name: "pear", Raw: rawFruit{Sweet: 1, Pairs: []string{"knife"}}},
		{Name: "apple", Raw: rawFruit{Sweet: 2}},
		{Name: "pear", Raw: rawFruit{Sweet: 3}},
	}
	Declare[fruit](names, entries)
	apple, _ := Lookup[fruit](names, "apple")
	pear, _ := Lookup[fruit](names, "pear")
	if apple.Handle() != 1 || pear.Handle() != 2 {
		t.Fatalf("declare order: apple=%d pear=%d", apple.Handle(), pear.Handle())
	}

	m := Process[fruit, fruitData](names, entries)
	got, ok := m.Get(pear)
	if !ok || got.Sweet != 3 || len(got.Pairs) != 0 {
		t.Fatalf("pear: got %+v,%v want second entry", got, ok)
	}
	if _, ok := Lookup[tool](names, "knife"); ok {
		t.Fatalf("overwritten entry should not intern its references")
	}
	if eff := entries.Effective(); len(eff) != 2 || eff[0].Name != "apple" || eff[1].Raw.Sweet != 3 {
		t.Fatalf("effective: got %+v", eff)
	}

	// Declare resolves "pear" twice, Process resolves both survivors again.
	if st := NamespaceOf[fruit](names).Stats(); st.Count != 2 || st.Lookups != 3 {
		t.Fatalf("stats: got %+v want count 2 lookups 3", st)
	}

	dups := entries.Duplicates()
	if len(dups) != 1 || dups[0].Name != "pear" || dups[0].Count != 2 {
		t.Fatalf("duplicates: got %+v", dups)
	}
}

func TestPipeline_OrdersByDependency(t *testing.T) {
	var trace []string
	stage := func(name string, after ...string) Stage {
		return Stage{
			Name:    name,
			After:   after,
			Declare: func(*Names) { trace = append(trace, "declare:"+name) },
			Process: func(*Names) { trace = append(trace, "process:"+name) },
		}
	}
	var p Pipeline
	p.Add(stage("recipes", "items"))
	p.Add(stage("items"))
	p.Add(stage("units", "recipes"))

	order, err := p.Order()
	if err != nil {
		t.Fatalf("order: %v", err)
	}
	if want := []string{"items", "recipes", "units"}; !reflect.DeepEqual(order, want) {
		t.Fatalf("order: got %v want %v", order, want)
	}
	if err := p.Run(NewNames()); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []string{
		"declare:items", "declare:recipes", "declare:units",
		"process:items", "process:recipes", "process:units",
	}
	if !reflect.DeepEqual(trace, want) {
		t.Fatalf("trace: got %v want %v", trace, want)
	}
}

func TestPipeline_Errors(t *testing.T) {
	var unknown Pipeline
	unknown.Add(Stage{Name: "recipes", After: []string{"items"}})
	if err := unknown.Run(NewNames()); !errors.Is(err, ErrUnknownStage) {
		t.Fatalf("unknown: got %v", err)
	}

	var cycle Pipeline
	cycle.Add(Stage{Name: "a", After: []string{"b"}})
	cycle.Add(Stage{Name: "b", After: []string{"a"}})
	if err := cycle.Run(NewNames()); !errors.Is(err, ErrStageCycle) {
		t.Fatalf("cycle: got %v", err)
	}

	var dup Pipeline
	dup.Add(Stage{Name: "a"})
	dup.Add(Stage{Name: "a"})
	if _, err := dup.Order(); !errors.Is(err, ErrDuplicateStage) {
		t.Fatalf("dup: got %v", err)
	}
}
