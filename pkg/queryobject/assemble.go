package queryobject

import "github.com/leapstack-labs/leapquery/pkg/dialect"

// RawFacets holds the five optional facet texts of one request.
// A nil field means the facet was not given.
type RawFacets struct {
	Select *string
	Filter *string
	Sort   *string
	Skip   *string
	Limit  *string
}

// Get returns the text of the named facet.
func (r RawFacets) Get(f Facet) *string {
	switch f {
	case FacetSelect:
		return r.Select
	case FacetFilter:
		return r.Filter
	case FacetSort:
		return r.Sort
	case FacetSkip:
		return r.Skip
	case FacetLimit:
		return r.Limit
	}
	return nil
}

// Set stores the text of the named facet. Unknown facets are ignored.
func (r *RawFacets) Set(f Facet, text *string) {
	switch f {
	case FacetSelect:
		r.Select = text
	case FacetFilter:
		r.Filter = text
	case FacetSort:
		r.Sort = text
	case FacetSkip:
		r.Skip = text
	case FacetLimit:
		r.Limit = text
	}
}

// Facets holds the five decoded facets of one request. A nil field is absent.
type Facets struct {
	Select *Node
	Filter *Node
	Sort   *Node
	Skip   *Node
	Limit  *Node
}

// Get returns the decoded value of the named facet.
func (f Facets) Get(name Facet) *Node {
	switch name {
	case FacetSelect:
		return f.Select
	case FacetFilter:
		return f.Filter
	case FacetSort:
		return f.Sort
	case FacetSkip:
		return f.Skip
	case FacetLimit:
		return f.Limit
	}
	return nil
}

func (f *Facets) set(name Facet, n *Node) {
	switch name {
	case FacetSelect:
		f.Select = n
	case FacetFilter:
		f.Filter = n
	case FacetSort:
		f.Sort = n
	case FacetSkip:
		f.Skip = n
	case FacetLimit:
		f.Limit = n
	}
}

// Empty reports whether every facet is absent.
func (f Facets) Empty() bool {
	for _, name := range AllFacets {
		if f.Get(name) != nil {
			return false
		}
	}
	return true
}

// DecodeFacets runs ParseFacet over every facet in canonical order.
// The first failure invalidates the whole set.
func DecodeFacets(raw RawFacets) (Facets, error) {
	var out Facets
	for _, name := range AllFacets {
		n, err := ParseFacet(name, raw.Get(name))
		if err != nil {
			return Facets{}, err
		}
		out.set(name, n)
	}
	return out, nil
}

// Assemble builds a modern Query Object holding exactly the present facets.
// It returns nil when every facet is absent: "no query object" is not the
// same as an empty one.
func Assemble(f Facets) *QueryObject {
	if f.Empty() {
		return nil
	}
	b := newMappingBuilder(len(AllFacets))
	for _, name := range AllFacets {
		if n := f.Get(name); n != nil {
			b.set(string(name), n)
		}
	}
	return &QueryObject{dialect: dialect.ModernDialect, fields: b.node()}
}

// Parse decodes the raw facet texts and assembles a modern Query Object.
// It returns nil with no error when no facet was given.
func Parse(raw RawFacets) (*QueryObject, error) {
	f, err := DecodeFacets(raw)
	if err != nil {
		return nil, err
	}
	return Assemble(f), nil
}
