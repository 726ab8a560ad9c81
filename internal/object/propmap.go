package object

// PropertyMap is an insertion-ordered map from PropertyKey to Property.
// A hash index sits over an ordered slice; Set never creates a second entry
// for a key that is already present.
type PropertyMap struct {
	index   map[PropertyKey]int
	entries []propEntry
}

type propEntry struct {
	key  PropertyKey
	prop Property
}

// NewPropertyMap returns an empty map with room for n properties.
func NewPropertyMap(n int) PropertyMap {
	return PropertyMap{
		index:   make(map[PropertyKey]int, n),
		entries: make([]propEntry, 0, n),
	}
}

// Len returns the number of properties.
func (m *PropertyMap) Len() int { return len(m.entries) }

// Get looks up a property.
func (m *PropertyMap) Get(key PropertyKey) (Property, bool) {
	i, ok := m.index[key]
	if !ok {
		return Property{}, false
	}
	return m.entries[i].prop, true
}

// Has reports whether key is present.
func (m *PropertyMap) Has(key PropertyKey) bool {
	_, ok := m.index[key]
	return ok
}

// Set inserts key at the end, or replaces the property in place keeping its position.
func (m *PropertyMap) Set(key PropertyKey, p Property) {
	if m.index == nil {
		m.index = make(map[PropertyKey]int)
	}
	if i, ok := m.index[key]; ok {
		m.entries[i].prop = p
		return
	}
	m.index[key] = len(m.entries)
	m.entries = append(m.entries, propEntry{key: key, prop: p})
}

// Delete removes key, keeping the relative order of the remaining keys.
func (m *PropertyMap) Delete(key PropertyKey) bool {
	i, ok := m.index[key]
	if !ok {
		return false
	}
	delete(m.index, key)
	copy(m.entries[i:], m.entries[i+1:])
	m.entries[len(m.entries)-1] = propEntry{}
	m.entries = m.entries[:len(m.entries)-1]
	for j := i; j < len(m.entries); j++ {
		m.index[m.entries[j].key] = j
	}
	return true
}

// Keys returns the keys in insertion order.
func (m *PropertyMap) Keys() []PropertyKey {
	keys := make([]PropertyKey, len(m.entries))
	for i, e := range m.entries {
		keys[i] = e.key
	}
	return keys
}

// Each calls fn for every entry in insertion order until fn returns false.
func (m *PropertyMap) Each(fn func(PropertyKey, Property) bool) {
	for _, e := range m.entries {
		if !fn(e.key, e.prop) {
			return
		}
	}
}
