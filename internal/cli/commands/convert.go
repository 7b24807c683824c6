package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/leapstack-labs/leapquery/pkg/dialect"
	"github.com/leapstack-labs/leapquery/pkg/queryobject"
	"github.com/spf13/cobra"
)

// ConvertOptions holds options for the convert command.
type ConvertOptions struct {
	From string
}

// NewConvertCommand creates the convert command.
func NewConvertCommand() *cobra.Command {
	opts := &ConvertOptions{}

	cmd := &cobra.Command{
		Use:   "convert [file]",
		Short: "Convert a query object document between dialects",
		Long: `Read a whole query object (a YAML or JSON mapping) from a file or stdin,
treat it as written in the --from dialect, and print it in the configured
target dialect.`,
		Example: `  # Modern to legacy
  echo '{select: [a, {b: {select: [c]}}]}' | leapquery convert

  # Legacy to modern, as YAML
  leapquery convert query.yaml --from legacy --dialect modern -o yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.From, "from", dialect.Modern, "Dialect of the input document")
	_ = cmd.RegisterFlagCompletionFunc("from", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return dialect.List(), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runConvert(cmd *cobra.Command, args []string, opts *ConvertOptions) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	from, err := dialect.Lookup(opts.From)
	if err != nil {
		return fmt.Errorf("invalid --from: %w", err)
	}

	data, source, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	cc.Logger.Debug("read query object", "source", source, "bytes", len(data), "from", from.Name)

	q, err := queryobject.ParseDocument(from, data)
	if err != nil {
		return fmt.Errorf("%s: %w", source, err)
	}

	converted, err := queryobject.Convert(q, cc.Target.Name)
	if err != nil {
		return err
	}

	return cc.Renderer.QueryObject(converted)
}

// readInput reads the named file, or stdin when no file or "-" is given.
func readInput(cmd *cobra.Command, args []string) ([]byte, string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, "stdin", nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, "", fmt.Errorf("failed to read query object: %w", err)
	}
	return data, args[0], nil
}
