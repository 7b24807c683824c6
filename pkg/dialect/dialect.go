// Package dialect describes the schema dialects a Query Object can be expressed in.
//
// The dialects differ only in naming: the modern dialect keeps the selection under
// "select", the legacy dialect under "project". Conversion rules live in
// pkg/queryobject; this package holds the names, keys and the registry used by
// adapters to resolve a dialect from configuration or request input.
package dialect

import "strings"

// Well-known dialect names.
const (
	Modern = "modern"
	Legacy = "legacy"
)

// Query Object keys shared by both dialects.
const (
	KeyFilter = "filter"
	KeySort   = "sort"
	KeySkip   = "skip"
	KeyLimit  = "limit"
)

// Dialect is the naming convention of one Query Object schema variant.
type Dialect struct {
	Name        string
	Description string

	// ProjectionKey is the key holding the field selection ("select" or "project").
	ProjectionKey string

	// MixedProjections reports whether a selection list may interleave field
	// names with nested-selection mappings.
	MixedProjections bool

	keys []string
}

// Keys returns the top-level keys of the dialect in canonical order.
func (d *Dialect) Keys() []string {
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

// HasKey reports whether key is a top-level key of the dialect.
func (d *Dialect) HasKey(key string) bool {
	for _, k := range d.keys {
		if k == key {
			return true
		}
	}
	return false
}

// Is reports whether the dialect has the given name (case insensitive).
func (d *Dialect) Is(name string) bool {
	return d != nil && strings.EqualFold(d.Name, name)
}

func (d *Dialect) String() string {
	if d == nil {
		return "<nil>"
	}
	return d.Name
}

// Builder provides a fluent API for constructing dialects.
type Builder struct {
	dialect *Dialect
}

// NewDialect creates a new dialect builder with the given name.
func NewDialect(name string) *Builder {
	return &Builder{
		dialect: &Dialect{Name: name},
	}
}

// Describe sets the human readable description.
func (b *Builder) Describe(desc string) *Builder {
	b.dialect.Description = desc
	return b
}

// Projection sets the key holding the field selection.
func (b *Builder) Projection(key string) *Builder {
	b.dialect.ProjectionKey = key
	return b
}

// AllowMixedProjections marks selection lists as allowed to contain nested mappings.
func (b *Builder) AllowMixedProjections() *Builder {
	b.dialect.MixedProjections = true
	return b
}

// Build finalizes the dialect. The projection key always comes first,
// followed by filter, sort, skip and limit.
func (b *Builder) Build() *Dialect {
	d := b.dialect
	d.keys = []string{d.ProjectionKey, KeyFilter, KeySort, KeySkip, KeyLimit}
	return d
}
