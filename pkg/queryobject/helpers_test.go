package queryobject

import (
	"testing"

	"github.com/leapstack-labs/leapquery/pkg/dialect"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func mustDecode(t *testing.T, text string) *Node {
	t.Helper()
	n, err := Decode([]byte(text))
	require.NoError(t, err)
	require.NotNil(t, n, "document %q decoded to nothing", text)
	return n
}

func modern(t *testing.T, text string) *QueryObject {
	t.Helper()
	q, err := ParseDocument(dialect.ModernDialect, []byte(text))
	require.NoError(t, err)
	require.NotNil(t, q)
	return q
}

func legacy(t *testing.T, text string) *QueryObject {
	t.Helper()
	q, err := ParseDocument(dialect.LegacyDialect, []byte(text))
	require.NoError(t, err)
	require.NotNil(t, q)
	return q
}
