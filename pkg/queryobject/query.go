package queryobject

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/leapquery/pkg/dialect"
)

// QueryObject is an immutable query specification expressed in one dialect.
// Only present keys are stored; absent facets are omitted, never null.
type QueryObject struct {
	dialect *dialect.Dialect
	fields  *Node
}

// New wraps a mapping node as a Query Object of dialect d.
func New(d *dialect.Dialect, fields *Node) (*QueryObject, error) {
	if d == nil {
		return nil, dialect.ErrDialectRequired
	}
	if !fields.IsMapping() {
		return nil, fmt.Errorf("query object must be a mapping, got %s", fields.describe())
	}
	return &QueryObject{dialect: d, fields: fields}, nil
}

// ParseDocument decodes a whole Query Object written as a YAML or JSON mapping.
// It returns nil with no error for an empty document.
func ParseDocument(d *dialect.Dialect, text []byte) (*QueryObject, error) {
	n, err := Decode(text)
	if err != nil {
		return nil, fmt.Errorf("failed to decode query object: %w", err)
	}
	if n == nil {
		return nil, nil
	}
	return New(d, n)
}

// Dialect returns the dialect the object is expressed in.
func (q *QueryObject) Dialect() *dialect.Dialect { return q.dialect }

// Fields returns the underlying mapping.
func (q *QueryObject) Fields() *Node { return q.fields }

// Len returns the number of present keys.
func (q *QueryObject) Len() int { return q.fields.Len() }

// Keys returns the present keys in order.
func (q *QueryObject) Keys() []string { return q.fields.Keys() }

// Has reports whether key is present.
func (q *QueryObject) Has(key string) bool { return q.fields.Has(key) }

// Get returns the value stored under key.
func (q *QueryObject) Get(key string) (*Node, bool) { return q.fields.Get(key) }

// Projection returns the field selection, stored under "select" or "project"
// depending on the dialect.
func (q *QueryObject) Projection() (*Node, bool) {
	return q.fields.Get(q.dialect.ProjectionKey)
}

// Filter returns the filter criteria.
func (q *QueryObject) Filter() (*Node, bool) { return q.fields.Get(dialect.KeyFilter) }

// Sort returns the sort specification.
func (q *QueryObject) Sort() (*Node, bool) { return q.fields.Get(dialect.KeySort) }

// Skip returns the number of items to skip.
func (q *QueryObject) Skip() (int64, bool) { return q.intField(dialect.KeySkip) }

// Limit returns the maximum number of items.
func (q *QueryObject) Limit() (int64, bool) { return q.intField(dialect.KeyLimit) }

func (q *QueryObject) intField(key string) (int64, bool) {
	n, ok := q.fields.Get(key)
	if !ok {
		return 0, false
	}
	return n.AsInt()
}

// Equal reports whether both objects share a dialect and hold equal fields.
func (q *QueryObject) Equal(o *QueryObject) bool {
	if q == nil || o == nil {
		return q == o
	}
	return q.dialect == o.dialect && q.fields.Equal(o.fields)
}

// MarshalJSON renders the fields as a JSON object in key order.
// A nil Query Object renders as null.
func (q *QueryObject) MarshalJSON() ([]byte, error) {
	if q == nil {
		return []byte("null"), nil
	}
	return q.fields.MarshalJSON()
}

// MarshalYAML renders the fields as a YAML mapping in key order.
func (q *QueryObject) MarshalYAML() (interface{}, error) {
	return q.fields.MarshalYAML()
}

// String returns the JSON form, or a placeholder when it cannot be encoded.
func (q *QueryObject) String() string {
	b, err := q.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<%s query object: %v>", q.dialect, err)
	}
	return string(b)
}

// ErrUnsupportedConversion is returned by Convert for a dialect it cannot target.
var ErrUnsupportedConversion = errors.New("unsupported dialect conversion")
