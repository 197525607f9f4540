package manifest

// Manifest is the processed registry for one content category. Entries are
// stored densely by handle, so Get is a slice index.
type Manifest[C Category, D any] struct {
	names   *Interner[C]
	data    []D
	present []bool
	count   int
}

// New returns an empty manifest whose ids come from names.
func New[C Category, D any](names *Interner[C]) *Manifest[C, D] {
	if names == nil {
		names = NewInterner[C]()
	}
	return &Manifest[C, D]{names: names}
}

// Insert stores data under the id for name, replacing any earlier entry of the
// same name. The empty name stores nothing and returns the zero ID.
func (m *Manifest[C, D]) Insert(name string, data D) ID[C] {
	id := m.names.FromName(name)
	if !id.IsValid() {
		return id
	}
	i := int(id.handle) - 1
	if i >= len(m.data) {
		grow := i + 1 - len(m.data)
		m.data = append(m.data, make([]D, grow)...)
		m.present = append(m.present, make([]bool, grow)...)
	}
	if !m.present[i] {
		m.count++
	}
	m.data[i] = data
	m.present[i] = true
	return id
}

// Get returns the data stored for id. Ids interned without data (dangling
// references) and ids from another load report false.
func (m *Manifest[C, D]) Get(id ID[C]) (D, bool) {
	i := int(id.handle) - 1
	if i < 0 || i >= len(m.data) || !m.present[i] {
		var zero D
		return zero, false
	}
	return m.data[i], true
}

func (m *Manifest[C, D]) GetByName(name string) (D, bool) {
	id, ok := m.names.Lookup(name)
	if !ok {
		var zero D
		return zero, false
	}
	return m.Get(id)
}

func (m *Manifest[C, D]) Contains(id ID[C]) bool {
	_, ok := m.Get(id)
	return ok
}

// Len is the number of ids with data.
func (m *Manifest[C, D]) Len() int { return m.count }

// IDs lists ids with data in ascending handle order.
func (m *Manifest[C, D]) IDs() []ID[C] {
	out := make([]ID[C], 0, m.count)
	for i, ok := range m.present {
		if ok {
			out = append(out, ID[C]{handle: Handle(i + 1)})
		}
	}
	return out
}

// Missing lists ids interned in this manifest's namespace that have no data.
func (m *Manifest[C, D]) Missing() []ID[C] {
	var out []ID[C]
	n := m.names.Len()
	for h := 1; h <= n; h++ {
		i := h - 1
		if i < len(m.present) && m.present[i] {
			continue
		}
		out = append(out, ID[C]{handle: Handle(h)})
	}
	return out
}

func (m *Manifest[C, D]) Name(id ID[C]) (string, bool) {
	return m.names.Name(id)
}

func (m *Manifest[C, D]) Names() *Interner[C] { return m.names }

func (m *Manifest[C, D]) Category() string { return categoryName[C]() }
