// Package queryobject parses query facets into Query Objects and converts them
// between the modern and legacy dialects.
//
// A request carries up to five facets (select, filter, sort, skip, limit), each a
// short YAML or JSON text. Parse decodes them into a Query Object in the modern
// dialect, or returns nil when no facet was given at all. ToLegacy and ToModern
// translate between dialects. Everything in this package is a pure function over
// immutable values and is safe for concurrent use.
package queryobject

import (
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Kind identifies the variant held by a Node.
type Kind int

const (
	// KindScalar is a string, integer, float, boolean or null leaf.
	KindScalar Kind = iota
	// KindInclude is the inclusion marker of a projection entry. It renders as 1.
	KindInclude
	// KindSequence is an ordered list of nodes.
	KindSequence
	// KindMapping is an ordered string-keyed mapping of nodes.
	KindMapping
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindInclude:
		return "include"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// Node is an immutable structural value decoded from facet text.
// The zero value is not valid; use the constructors.
type Node struct {
	kind   Kind
	value  any // nil, string, int64, float64 or bool for KindScalar
	items  []*Node
	keys   []string
	fields map[string]*Node
}

// Pair is one key/value entry used to construct a mapping.
type Pair struct {
	Key   string
	Value *Node
}

var include = &Node{kind: KindInclude}

// Include returns the inclusion marker.
func Include() *Node { return include }

// Null returns a null scalar.
func Null() *Node { return &Node{kind: KindScalar} }

// String returns a string scalar.
func String(s string) *Node { return &Node{kind: KindScalar, value: s} }

// Int returns an integer scalar.
func Int(i int64) *Node { return &Node{kind: KindScalar, value: i} }

// Float returns a floating point scalar.
func Float(f float64) *Node { return &Node{kind: KindScalar, value: f} }

// Bool returns a boolean scalar.
func Bool(b bool) *Node { return &Node{kind: KindScalar, value: b} }

// Strings returns a sequence of string scalars.
func Strings(values ...string) *Node {
	items := make([]*Node, len(values))
	for i, v := range values {
		items[i] = String(v)
	}
	return &Node{kind: KindSequence, items: items}
}

// Sequence returns an ordered list of nodes.
func Sequence(items ...*Node) *Node {
	out := make([]*Node, len(items))
	copy(out, items)
	return &Node{kind: KindSequence, items: out}
}

// Mapping returns a mapping with the given entries in order.
// A repeated key keeps its first position and takes the last value.
func Mapping(pairs ...Pair) *Node {
	b := newMappingBuilder(len(pairs))
	for _, p := range pairs {
		b.set(p.Key, p.Value)
	}
	return b.node()
}

// KV is shorthand for a Pair.
func KV(key string, value *Node) Pair {
	return Pair{Key: key, Value: value}
}

// Kind returns the variant of the node.
func (n *Node) Kind() Kind { return n.kind }

// IsInclude reports whether the node is the inclusion marker.
func (n *Node) IsInclude() bool { return n != nil && n.kind == KindInclude }

// IsMapping reports whether the node is a mapping.
func (n *Node) IsMapping() bool { return n != nil && n.kind == KindMapping }

// IsSequence reports whether the node is a sequence.
func (n *Node) IsSequence() bool { return n != nil && n.kind == KindSequence }

// IsNull reports whether the node is a null scalar.
func (n *Node) IsNull() bool { return n != nil && n.kind == KindScalar && n.value == nil }

// Value returns the Go value of a scalar: nil, string, int64, float64 or bool.
// It returns nil for other kinds.
func (n *Node) Value() any {
	if n.kind != KindScalar {
		return nil
	}
	return n.value
}

// AsString returns the value of a string scalar.
func (n *Node) AsString() (string, bool) {
	if n == nil || n.kind != KindScalar {
		return "", false
	}
	s, ok := n.value.(string)
	return s, ok
}

// AsInt returns the value of an integer scalar.
func (n *Node) AsInt() (int64, bool) {
	if n == nil || n.kind != KindScalar {
		return 0, false
	}
	i, ok := n.value.(int64)
	return i, ok
}

// Len returns the number of items of a sequence or entries of a mapping.
func (n *Node) Len() int {
	switch n.kind {
	case KindSequence:
		return len(n.items)
	case KindMapping:
		return len(n.keys)
	default:
		return 0
	}
}

// Items returns the items of a sequence.
func (n *Node) Items() []*Node {
	out := make([]*Node, len(n.items))
	copy(out, n.items)
	return out
}

// Index returns the i-th item of a sequence.
func (n *Node) Index(i int) *Node {
	return n.items[i]
}

// Keys returns the keys of a mapping in order.
func (n *Node) Keys() []string {
	out := make([]string, len(n.keys))
	copy(out, n.keys)
	return out
}

// Get returns the value stored under key in a mapping.
func (n *Node) Get(key string) (*Node, bool) {
	if n == nil || n.kind != KindMapping {
		return nil, false
	}
	v, ok := n.fields[key]
	return v, ok
}

// Has reports whether a mapping contains key.
func (n *Node) Has(key string) bool {
	_, ok := n.Get(key)
	return ok
}

// Equal reports deep equality. Mapping comparison ignores key order;
// the inclusion marker never equals an integer scalar.
func (n *Node) Equal(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.kind != o.kind {
		return false
	}
	switch n.kind {
	case KindInclude:
		return true
	case KindScalar:
		return n.value == o.value
	case KindSequence:
		if len(n.items) != len(o.items) {
			return false
		}
		for i := range n.items {
			if !n.items[i].Equal(o.items[i]) {
				return false
			}
		}
		return true
	case KindMapping:
		if len(n.keys) != len(o.keys) {
			return false
		}
		for _, k := range n.keys {
			ov, ok := o.fields[k]
			if !ok || !n.fields[k].Equal(ov) {
				return false
			}
		}
		return true
	}
	return false
}

// Interface converts the node into plain Go values: map[string]any, []any and
// scalars. The inclusion marker becomes int64(1). Key order is lost.
func (n *Node) Interface() any {
	if n == nil {
		return nil
	}
	switch n.kind {
	case KindInclude:
		return int64(1)
	case KindSequence:
		out := make([]any, len(n.items))
		for i, item := range n.items {
			out[i] = item.Interface()
		}
		return out
	case KindMapping:
		out := make(map[string]any, len(n.keys))
		for _, k := range n.keys {
			out[k] = n.fields[k].Interface()
		}
		return out
	default:
		return n.value
	}
}

// describe renders a short human readable form of the node for error messages.
func (n *Node) describe() string {
	if n == nil {
		return "nothing"
	}
	switch n.kind {
	case KindInclude:
		return "1"
	case KindSequence:
		return fmt.Sprintf("a list of %d items", len(n.items))
	case KindMapping:
		keys := n.Keys()
		sort.Strings(keys)
		return fmt.Sprintf("a mapping with keys %v", keys)
	}
	switch v := n.value.(type) {
	case nil:
		return "null"
	case string:
		return "string " + strconv.Quote(v)
	case int64:
		return "integer " + strconv.FormatInt(v, 10)
	case float64:
		return "number " + formatFloat(v)
	case bool:
		return "boolean " + strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// renamed returns a copy of the mapping where the entry under from is moved to
// key to, in the same position, holding value. An existing entry under to is dropped.
func (n *Node) renamed(from, to string, value *Node) *Node {
	b := newMappingBuilder(len(n.keys))
	for _, k := range n.keys {
		switch k {
		case from:
			b.set(to, value)
		case to:
			if n.Has(from) {
				continue
			}
			b.set(k, n.fields[k])
		default:
			b.set(k, n.fields[k])
		}
	}
	return b.node()
}

type mappingBuilder struct {
	keys   []string
	fields map[string]*Node
}

func newMappingBuilder(size int) *mappingBuilder {
	return &mappingBuilder{
		keys:   make([]string, 0, size),
		fields: make(map[string]*Node, size),
	}
}

func (b *mappingBuilder) set(key string, value *Node) {
	if _, ok := b.fields[key]; !ok {
		b.keys = append(b.keys, key)
	}
	b.fields[key] = value
}

func (b *mappingBuilder) node() *Node {
	return &Node{kind: KindMapping, keys: b.keys, fields: b.fields}
}

func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	case math.IsNaN(f):
		return ".nan"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
