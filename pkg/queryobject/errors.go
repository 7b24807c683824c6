package queryobject

import (
	"errors"
	"fmt"
	"strings"
)

// FacetDecodeError reports a facet whose text could not be decoded.
// It is a client input error.
type FacetDecodeError struct {
	Facet   Facet
	Message string
}

func (e *FacetDecodeError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Facet, e.Message)
}

// MalformedProjectionError reports a projection entry that is neither the
// inclusion marker nor a nested Query Object. It is a client input error.
type MalformedProjectionError struct {
	// Path lists the projection names from the outermost selection down to the
	// offending entry. List positions appear as "[i]".
	Path  []string
	Value *Node
}

func (e *MalformedProjectionError) Error() string {
	return fmt.Sprintf("malformed projection at %q: expected 1 or a nested query object, got %s",
		e.PathString(), e.Value.describe())
}

// PathString returns the dotted form of Path.
func (e *MalformedProjectionError) PathString() string {
	var sb strings.Builder
	for i, p := range e.Path {
		if i > 0 && !strings.HasPrefix(p, "[") {
			sb.WriteByte('.')
		}
		sb.WriteString(p)
	}
	return sb.String()
}

// IsClientError reports whether err was caused by invalid client input.
func IsClientError(err error) bool {
	var fe *FacetDecodeError
	var pe *MalformedProjectionError
	return errors.As(err, &fe) || errors.As(err, &pe)
}

// ArgumentName returns the name of the request argument that caused err:
// the facet name for decode errors and "select" for projection errors.
func ArgumentName(err error) (string, bool) {
	var fe *FacetDecodeError
	if errors.As(err, &fe) {
		return string(fe.Facet), true
	}
	var pe *MalformedProjectionError
	if errors.As(err, &pe) {
		return string(FacetSelect), true
	}
	return "", false
}
