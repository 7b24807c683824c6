package queryobject

import (
	"fmt"
	"strings"
)

// Facet names one of the five independent query specification inputs.
type Facet string

// Facets in canonical order.
const (
	FacetSelect Facet = "select"
	FacetFilter Facet = "filter"
	FacetSort   Facet = "sort"
	FacetSkip   Facet = "skip"
	FacetLimit  Facet = "limit"
)

// AllFacets lists every facet in canonical order.
var AllFacets = []Facet{FacetSelect, FacetFilter, FacetSort, FacetSkip, FacetLimit}

// IsPagination reports whether the facet must hold a non-negative integer.
func (f Facet) IsPagination() bool {
	return f == FacetSkip || f == FacetLimit
}

// ParseFacet decodes the text of one facet.
//
// A nil text is absent and decodes to nil without looking further. Empty text
// and a bare null are absent too. Pagination facets must decode to a
// non-negative integer. No other validation happens here: a filter that is not
// a mapping is returned as decoded.
func ParseFacet(name Facet, text *string) (*Node, error) {
	if text == nil || strings.TrimSpace(*text) == "" {
		return nil, nil
	}

	n, err := Decode([]byte(*text))
	if err != nil {
		return nil, &FacetDecodeError{Facet: name, Message: err.Error()}
	}
	if n == nil || !name.IsPagination() {
		return n, nil
	}

	i, ok := n.AsInt()
	if !ok {
		return nil, &FacetDecodeError{Facet: name, Message: fmt.Sprintf("expected an integer, got %s", n.describe())}
	}
	if i < 0 {
		return nil, &FacetDecodeError{Facet: name, Message: fmt.Sprintf("expected a non-negative integer, got %d", i)}
	}
	return n, nil
}
