// Package keytree holds the format-neutral document model used by the
// structured-key merge strategies, and the additive merge itself.
//
// A document is a Value: a scalar, a sequence of values, or a key-map that
// remembers insertion order. Scalars are opaque to this package; each
// codec in pkg/formats stores whatever representation it needs to write
// the scalar back unchanged.
package keytree

// Kind tags the variant held by a Value
type Kind int

const (
	Scalar Kind = iota
	Sequence
	Mapping
)

func (k Kind) String() string {
	switch k {
	case Scalar:
		return "scalar"
	case Sequence:
		return "sequence"
	case Mapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// Value is one node of a document tree.
type Value struct {
	Kind   Kind
	Scalar interface{}
	Items  []*Value
	Map    *Map
}

// NewScalar wraps a codec-specific scalar.
func NewScalar(v interface{}) *Value {
	return &Value{Kind: Scalar, Scalar: v}
}

// NewSequence wraps items in a sequence value.
func NewSequence(items ...*Value) *Value {
	return &Value{Kind: Sequence, Items: items}
}

// NewMapping wraps m in a mapping value.
func NewMapping(m *Map) *Value {
	return &Value{Kind: Mapping, Map: m}
}

// IsMapping reports whether v holds a key-map.
func (v *Value) IsMapping() bool {
	return v != nil && v.Kind == Mapping && v.Map != nil
}

// Clone returns a deep copy of v. Scalars are shared, since codecs never
// mutate them.
func (v *Value) Clone() *Value {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case Sequence:
		items := make([]*Value, len(v.Items))
		for i, item := range v.Items {
			items[i] = item.Clone()
		}
		return NewSequence(items...)
	case Mapping:
		return NewMapping(v.Map.Clone())
	default:
		return NewScalar(v.Scalar)
	}
}

// Map is a string-keyed map that iterates in insertion order.
type Map struct {
	keys   []string
	values map[string]*Value
}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{values: make(map[string]*Value)}
}

// Len returns the number of keys.
func (m *Map) Len() int {
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (*Value, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Set stores v under key. A new key goes last; an existing key keeps its
// position.
func (m *Map) Set(key string, v *Value) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// Clone returns a deep copy of m.
func (m *Map) Clone() *Map {
	out := NewMap()
	for _, key := range m.keys {
		out.Set(key, m.values[key].Clone())
	}
	return out
}

// Each calls fn for every entry in order.
func (m *Map) Each(fn func(key string, v *Value)) {
	for _, key := range m.keys {
		fn(key, m.values[key])
	}
}
