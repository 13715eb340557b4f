package types

import "sort"

// Well-known metadata names produced by the parse engine.
const (
	// MetaContentType is the canonical content-type name. Parsers
	// occasionally record the same type more than once for a stream.
	MetaContentType = "Content-Type"

	// MetaTitle holds document titles. Bad HTML can carry many titles;
	// consumers treat this name as single-valued and keep the first.
	MetaTitle = "dc:title"

	// MetaResourceName is the name of the embedded resource inside its
	// container (an archive entry name, an attachment filename).
	MetaResourceName = "resourceName"
)

// Metadata maps field names to one or more string values for a document.
//
// A name is multi-valued when the parser marked it so via Add, independent
// of how many values it currently holds. Insertion order of names is not
// significant; Names returns them sorted for deterministic iteration.
type Metadata struct {
	values map[string][]string
	multi  map[string]bool
}

// NewMetadata returns an empty Metadata.
func NewMetadata() *Metadata {
	return &Metadata{
		values: make(map[string][]string),
		multi:  make(map[string]bool),
	}
}

// Set replaces any existing values for name with a single value.
func (m *Metadata) Set(name, value string) {
	m.values[name] = []string{value}
}

// Add appends a value under name and marks the name as multi-valued.
func (m *Metadata) Add(name, value string) {
	m.values[name] = append(m.values[name], value)
	m.multi[name] = true
}

// Get returns the first value recorded for name, or "" if absent.
func (m *Metadata) Get(name string) string {
	if vs := m.values[name]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// Values returns a copy of all values recorded for name.
func (m *Metadata) Values(name string) []string {
	vs := m.values[name]
	if len(vs) == 0 {
		return nil
	}
	out := make([]string, len(vs))
	copy(out, vs)
	return out
}

// IsMultiValued reports whether name was recorded as multi-valued.
func (m *Metadata) IsMultiValued(name string) bool {
	return m.multi[name]
}

// Names returns all recorded names in sorted order.
func (m *Metadata) Names() []string {
	names := make([]string, 0, len(m.values))
	for name := range m.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of distinct names recorded.
func (m *Metadata) Len() int {
	return len(m.values)
}
