package commands

import (
	"fmt"

	"github.com/leapstack-labs/leapquery/pkg/queryobject"
	"github.com/spf13/cobra"
)

// NewParseCommand creates the parse command.
func NewParseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Build a query object from facet flags",
		Long: `Parse the select, filter, sort, skip and limit facets into a query object
and print it in the configured dialect.

Each facet is YAML (JSON is valid YAML). Facets that are not given, empty, or
null are left out. With no facets at all there is no query object and null
is printed.`,
		Example: `  # Nested selection, converted to the default (legacy) dialect
  leapquery parse --select '[id, {tenant: {select: [name]}}]' --limit 10

  # Keep the modern dialect
  leapquery parse --dialect modern --filter '{age: {$gt: 18}}' --sort '[ctime-]'`,
		Args: cobra.NoArgs,
		RunE: runParse,
	}

	for _, facet := range queryobject.AllFacets {
		cmd.Flags().String(string(facet), "", fmt.Sprintf("%s facet (YAML)", facet))
	}

	return cmd
}

func runParse(cmd *cobra.Command, _ []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	raw, err := rawFacetsFromFlags(cmd)
	if err != nil {
		return err
	}

	q, err := queryobject.Parse(raw)
	if err != nil {
		return err
	}
	if q == nil {
		cc.Logger.Debug("no facets given")
	}

	converted, err := queryobject.Convert(q, cc.Target.Name)
	if err != nil {
		return err
	}
	cc.Logger.Debug("parsed query object", "dialect", cc.Target.Name, "keys", keysOf(converted))

	return cc.Renderer.QueryObject(converted)
}

// rawFacetsFromFlags reads facet texts from flags. Only flags set on the
// command line count as present.
func rawFacetsFromFlags(cmd *cobra.Command) (queryobject.RawFacets, error) {
	var raw queryobject.RawFacets
	for _, facet := range queryobject.AllFacets {
		name := string(facet)
		if !cmd.Flags().Changed(name) {
			continue
		}
		text, err := cmd.Flags().GetString(name)
		if err != nil {
			return queryobject.RawFacets{}, err
		}
		raw.Set(facet, &text)
	}
	return raw, nil
}

func keysOf(q *queryobject.QueryObject) []string {
	if q == nil {
		return nil
	}
	return q.Keys()
}
