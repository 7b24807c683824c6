package commands

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/leapquery/internal/cli/output"
	"github.com/leapstack-labs/leapquery/pkg/dialect"
	"github.com/spf13/cobra"
)

// dialectEntry is the JSON/YAML shape of one dialect.
type dialectEntry struct {
	Name             string   `json:"name" yaml:"name"`
	Description      string   `json:"description" yaml:"description"`
	ProjectionKey    string   `json:"projection_key" yaml:"projection_key"`
	MixedProjections bool     `json:"mixed_projections" yaml:"mixed_projections"`
	Keys             []string `json:"keys" yaml:"keys"`
	Target           bool     `json:"target" yaml:"target"`
}

// NewDialectsCommand creates the dialects command.
func NewDialectsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dialects",
		Short: "List query object dialects",
		Args:  cobra.NoArgs,
		RunE:  runDialects,
	}
}

func runDialects(cmd *cobra.Command, _ []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	entries := make([]dialectEntry, 0)
	for _, name := range dialect.List() {
		d, ok := dialect.Get(name)
		if !ok {
			continue
		}
		entries = append(entries, dialectEntry{
			Name:             d.Name,
			Description:      d.Description,
			ProjectionKey:    d.ProjectionKey,
			MixedProjections: d.MixedProjections,
			Keys:             d.Keys(),
			Target:           d == cc.Target,
		})
	}

	if cc.Renderer.Mode() != output.ModeTable {
		return cc.Renderer.Value(entries)
	}

	rows := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		marker := ""
		if e.Target {
			marker = cc.Renderer.Styles().Success.Render("*")
		}
		rows = append(rows, table.Row{marker, e.Name, e.ProjectionKey, e.MixedProjections, strings.Join(e.Keys, ", "), e.Description})
	}
	cc.Renderer.Table(table.Row{"", "Name", "Projection", "Mixed", "Keys", "Description"}, rows)
	return nil
}
