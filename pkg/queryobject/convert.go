package queryobject

import (
	"fmt"
	"strconv"

	"github.com/leapstack-labs/leapquery/pkg/dialect"
)

// ToLegacy converts a modern Query Object into the legacy dialect.
//
// "select" becomes "project"; every other key passes through untouched. A
// selection list that mixes names with nested-selection mappings collapses into
// one mapping: names map to the inclusion marker in encounter order, then the
// mapping entries are applied on top. Nested selections are converted
// recursively. Objects already in the legacy dialect are returned as is.
func ToLegacy(q *QueryObject) (*QueryObject, error) {
	if q == nil {
		return nil, nil
	}
	if q.dialect == dialect.LegacyDialect {
		return q, nil
	}
	fields, err := legacyMapping(nil, q.fields)
	if err != nil {
		return nil, err
	}
	return &QueryObject{dialect: dialect.LegacyDialect, fields: fields}, nil
}

// ToModern converts a legacy Query Object into the modern dialect.
//
// Only the top-level "project" key is renamed to "select". Collapsed lists stay
// mappings and nested selections are passed through verbatim, so ToModern is
// not an inverse of ToLegacy once a selection was mixed or nested.
func ToModern(q *QueryObject) *QueryObject {
	if q == nil {
		return nil
	}
	if q.dialect == dialect.ModernDialect {
		return q
	}
	fields := q.fields
	if proj, ok := fields.Get(dialect.LegacyDialect.ProjectionKey); ok {
		fields = fields.renamed(dialect.LegacyDialect.ProjectionKey, dialect.ModernDialect.ProjectionKey, proj)
	}
	return &QueryObject{dialect: dialect.ModernDialect, fields: fields}
}

// Convert translates q into the named dialect.
func Convert(q *QueryObject, target string) (*QueryObject, error) {
	d, err := dialect.Lookup(target)
	if err != nil {
		return nil, err
	}
	switch d {
	case dialect.LegacyDialect:
		return ToLegacy(q)
	case dialect.ModernDialect:
		return ToModern(q), nil
	}
	return nil, fmt.Errorf("%w to %s", ErrUnsupportedConversion, d)
}

// legacyMapping converts one Query Object mapping. path holds the projection
// names leading to it.
func legacyMapping(path []string, m *Node) (*Node, error) {
	modernKey := dialect.ModernDialect.ProjectionKey
	sel, ok := m.Get(modernKey)
	if !ok {
		return m, nil
	}
	proj, err := legacyProjection(path, sel)
	if err != nil {
		return nil, err
	}
	return m.renamed(modernKey, dialect.LegacyDialect.ProjectionKey, proj), nil
}

func legacyProjection(path []string, sel *Node) (*Node, error) {
	switch sel.Kind() {
	case KindSequence:
		if !hasMapping(sel) {
			return sel, nil
		}
		collapsed, err := collapse(path, sel)
		if err != nil {
			return nil, err
		}
		return legacyEntries(path, collapsed)
	case KindMapping:
		return legacyEntries(path, sel)
	}
	// A single field name is a valid legacy projection.
	return sel, nil
}

// collapse folds a mixed selection list into a single mapping.
func collapse(path []string, list *Node) (*Node, error) {
	b := newMappingBuilder(list.Len())
	for _, item := range list.items {
		if name, ok := item.AsString(); ok {
			b.set(name, Include())
		}
	}
	for i, item := range list.items {
		switch item.Kind() {
		case KindMapping:
			for _, k := range item.keys {
				b.set(k, item.fields[k])
			}
		case KindScalar:
			if _, ok := item.AsString(); ok {
				continue
			}
			return nil, &MalformedProjectionError{Path: child(path, "["+strconv.Itoa(i)+"]"), Value: item}
		case KindInclude, KindSequence:
			return nil, &MalformedProjectionError{Path: child(path, "["+strconv.Itoa(i)+"]"), Value: item}
		}
	}
	return b.node(), nil
}

// legacyEntries checks every entry of a projection mapping and converts the
// nested Query Objects. A literal 1 becomes the inclusion marker.
func legacyEntries(path []string, proj *Node) (*Node, error) {
	b := newMappingBuilder(proj.Len())
	for _, name := range proj.keys {
		value := proj.fields[name]
		entryPath := child(path, name)
		switch value.Kind() {
		case KindInclude:
			b.set(name, value)
		case KindMapping:
			nested, err := legacyMapping(entryPath, value)
			if err != nil {
				return nil, err
			}
			b.set(name, nested)
		case KindScalar:
			if i, ok := value.AsInt(); ok && i == 1 {
				b.set(name, Include())
				continue
			}
			return nil, &MalformedProjectionError{Path: entryPath, Value: value}
		case KindSequence:
			return nil, &MalformedProjectionError{Path: entryPath, Value: value}
		}
	}
	return b.node(), nil
}

func hasMapping(list *Node) bool {
	for _, item := range list.items {
		if item.IsMapping() {
			return true
		}
	}
	return false
}

func child(path []string, name string) []string {
	out := make([]string, len(path)+1)
	copy(out, path)
	out[len(path)] = name
	return out
}
