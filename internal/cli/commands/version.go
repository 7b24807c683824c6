package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapquery/pkg/dialect"
	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display the leapquery version and the registered query object dialects.`,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "leapquery v%s\n", version)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Dialects: %s (default %s)\n", strings.Join(dialect.List(), ", "), dialect.Default())
		},
	}
}
