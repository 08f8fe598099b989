package app

import (
	"encoding/json"
	"fmt"

	"github.com/hashicorp/consul/api"
	"github.com/spf13/cobra"

	"github.com/samvad-hq/catalog-client/pkg/catalog"
)

func newRegisterCmd(opts *rootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a node, service or check",
		Long: `Register reads a catalog registration (Node, Address, Service, Check, ...)
from a JSON file and writes it to the catalog. Use -f - to read from stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := readInput(cmd, file)
			if err != nil {
				return err
			}
			var reg api.CatalogRegistration
			if err := json.Unmarshal(data, &reg); err != nil {
				return fmt.Errorf("decode registration: %w", err)
			}
			if reg.Node == "" {
				return fmt.Errorf("registration requires a Node")
			}

			resp, err := opts.send(cmd, catalog.RegisterEntity{Meta: opts.meta(), Payload: &reg})
			if err != nil {
				return err
			}
			if opts.output == FormatJSON {
				return printRaw(cmd.OutOrStdout(), opts.output, resp)
			}
			target := reg.Node
			if reg.Service != nil && reg.Service.Service != "" {
				target = fmt.Sprintf("%s/%s", reg.Node, reg.Service.Service)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered %s\n", target)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Registration JSON file (- for stdin)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
