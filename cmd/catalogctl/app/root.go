// Package app provides the catalogctl command tree.
package app

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/samvad-hq/catalog-client/internal/config"
	"github.com/samvad-hq/catalog-client/internal/logger"
	"github.com/samvad-hq/catalog-client/pkg/catalog"
	"github.com/samvad-hq/catalog-client/pkg/httpclient"
)

// Output formats.
const (
	FormatJSON  = "json"
	FormatTable = "table"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	address string
	dc      string
	token   string
	timeout time.Duration
	output  string
	debug   bool

	client *catalog.Client
	log    logger.Logger
}

// NewRootCmd creates the root command for the catalogctl CLI.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:               "catalogctl",
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		Short:             "Query and update a service catalog over its HTTP API",
		Long: `catalogctl talks to a service catalog's HTTP API. It registers nodes and
services, lists nodes and services, and lists the nodes providing a service.
Defaults for the address, datacenter and token come from the environment.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.resolve(cmd)
		},
		Run: func(cmd *cobra.Command, _ []string) {
			// If no subcommand is provided, print help
			_ = cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.address, "address", "", "Catalog address (default from CATALOG_ADDRESS or localhost:8500)")
	flags.StringVar(&opts.dc, "dc", "", "Datacenter to query (default from CATALOG_DATACENTER)")
	flags.StringVar(&opts.token, "token", "", "ACL token (default from CATALOG_TOKEN)")
	flags.DurationVar(&opts.timeout, "timeout", 0, "Request timeout (default from REQUEST_TIMEOUT_SECONDS)")
	flags.StringVarP(&opts.output, "output", "o", FormatTable, "Output format (json or table)")
	flags.BoolVar(&opts.debug, "debug", false, "Log resolved requests to stderr")

	rootCmd.AddCommand(newRegisterCmd(opts))
	rootCmd.AddCommand(newNodesCmd(opts))
	rootCmd.AddCommand(newServicesCmd(opts))
	rootCmd.AddCommand(newServiceCmd(opts))
	rootCmd.AddCommand(newSendCmd(opts))

	return rootCmd
}

// resolve fills unset flags from config and builds the client.
func (o *rootOptions) resolve(cmd *cobra.Command) error {
	if o.output != FormatJSON && o.output != FormatTable {
		return fmt.Errorf("unsupported output format %q (use json or table)", o.output)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	flags := cmd.Flags()
	if !flags.Changed("address") {
		o.address = cfg.CatalogAddress
	}
	if !flags.Changed("dc") {
		o.dc = cfg.CatalogDatacenter
	}
	if !flags.Changed("token") {
		o.token = cfg.CatalogToken
	}
	if !flags.Changed("timeout") {
		o.timeout = cfg.RequestTimeout
	}
	if o.timeout <= 0 {
		return fmt.Errorf("invalid --timeout %s (must be positive)", o.timeout)
	}

	o.log = &logger.NopLogger{}
	if o.debug {
		o.log = newDebugLogger(cmd.ErrOrStderr())
	}
	o.client = catalog.New(o.address, catalog.WithHTTPClient(httpclient.NewRestyClient(o.timeout)))
	return nil
}

// meta returns the request fields shared by every subcommand.
func (o *rootOptions) meta() catalog.Meta {
	return catalog.Meta{
		APIVersion: catalog.DefaultAPIVersion,
		Section:    catalog.DefaultSection,
		Datacenter: o.dc,
		Token:      o.token,
	}
}

func newDebugLogger(w io.Writer) logger.Logger {
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(w),
		zapcore.DebugLevel,
	)
	return logger.New(zap.New(core))
}
