package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/leapstack-labs/leapquery/internal/cli/config"
	"github.com/leapstack-labs/leapquery/internal/httpapi"
	"github.com/leapstack-labs/leapquery/pkg/dialect"
	"github.com/spf13/cobra"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Addr  string
	Watch bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve query objects over HTTP",
		Long: `Start an HTTP server that parses the select, filter, sort, skip and limit
query parameters of each request into a query object.

Endpoints:
- GET /query-object            query object in the configured dialect
- GET /query-object/{dialect}  query object in the named dialect
- GET /dialects                registered dialects
- GET /healthz                 liveness check

Invalid parameters are answered with 400 and an E_API_ARGUMENT error.`,
		Example: `  # Serve on the configured address
  leapquery serve

  # Serve on a custom address and reload the dialect when the config changes
  leapquery serve --addr 127.0.0.1:9000 --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "Address to listen on (default: server.addr)")
	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "Reload the target dialect when the config file changes")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	serverCfg := cc.Cfg.Server
	if cmd.Flags().Changed("addr") {
		serverCfg.Addr = opts.Addr
	}

	srvCfg := httpapi.Config{
		Server:  serverCfg,
		Dialect: cc.Target,
		Logger:  cc.Logger,
	}

	if opts.Watch {
		file := config.GetConfigFileUsed()
		if file == "" {
			cc.Renderer.Warnf("no config file in use, --watch has no effect")
		} else {
			flags := cmd.Root().PersistentFlags()
			srvCfg.WatchFile = file
			srvCfg.Reload = func() (*dialect.Dialect, error) {
				cfg, err := config.LoadConfig(file, flags)
				if err != nil {
					return nil, err
				}
				return dialect.Lookup(cfg.Dialect)
			}
		}
	}

	server, err := httpapi.NewServer(srvCfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Serve(ctx)
}
