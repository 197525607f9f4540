package manifest

import (
	"sync"
	"sync/atomic"
)

// InternStats reports name interning activity. Count is the number of distinct
// names. Lookups counts FromName calls that resolved an already interned name;
// a load resolves every defined name at least twice (declare, then insert), so
// it measures resolution traffic, not duplicate authoring. Duplicates are
// reported by Entries.Duplicates.
type InternStats struct {
	Count   int
	Lookups int64
}

// Interner maps names of one category to dense handles and back. Handles are
// assigned in first-seen order starting at 1 and are never reassigned.
type Interner[C Category] struct {
	mu      sync.RWMutex
	index   map[string]Handle
	names   []string // names[h-1] is the name of handle h
	lookups atomic.Int64
}

func NewInterner[C Category]() *Interner[C] {
	return &Interner[C]{index: make(map[string]Handle, 64)}
}

// FromName returns the id for name, allocating a new handle the first time the
// name is seen. The empty name is rejected and yields the zero ID.
func (in *Interner[C]) FromName(name string) ID[C] {
	if name == "" {
		return ID[C]{}
	}
	in.mu.RLock()
	h, ok := in.index[name]
	in.mu.RUnlock()
	if ok {
		in.lookups.Add(1)
		return ID[C]{handle: h}
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	if h, ok := in.index[name]; ok {
		in.lookups.Add(1)
		return ID[C]{handle: h}
	}
	in.names = append(in.names, name)
	h = Handle(len(in.names))
	in.index[name] = h
	return ID[C]{handle: h}
}

// Lookup returns the id for name without interning it.
func (in *Interner[C]) Lookup(name string) (ID[C], bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	h, ok := in.index[name]
	return ID[C]{handle: h}, ok
}

func (in *Interner[C]) Name(id ID[C]) (string, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	if id.handle == 0 || int(id.handle) > len(in.names) {
		return "", false
	}
	return in.names[id.handle-1], true
}

func (in *Interner[C]) Len() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.names)
}

// Names returns every interned name in handle order.
func (in *Interner[C]) Names() []string {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return append([]string(nil), in.names...)
}

func (in *Interner[C]) Stats() InternStats {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return InternStats{Count: len(in.names), Lookups: in.lookups.Load()}
}

// Names holds one interner per category for a single load. A fresh Names is a
// fresh namespace: handles never carry over between loads.
type Names struct {
	mu        sync.Mutex
	interners map[any]any
	order     []string
}

func NewNames() *Names {
	return &Names{interners: map[any]any{}}
}

// NamespaceOf returns the interner for category C, creating it on first use.
func NamespaceOf[C Category](n *Names) *Interner[C] {
	var key C
	n.mu.Lock()
	defer n.mu.Unlock()
	if in, ok := n.interners[key]; ok {
		return in.(*Interner[C])
	}
	in := NewInterner[C]()
	n.interners[key] = in
	n.order = append(n.order, key.CategoryName())
	return in
}

// FromName interns name in category C of n.
func FromName[C Category](n *Names, name string) ID[C] {
	return NamespaceOf[C](n).FromName(name)
}

// Lookup resolves name in category C of n without interning it.
func Lookup[C Category](n *Names, name string) (ID[C], bool) {
	return NamespaceOf[C](n).Lookup(name)
}

// Categories lists category names in the order their interners were created.
func (n *Names) Categories() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.order...)
}
