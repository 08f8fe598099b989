package app

import (
	"github.com/spf13/cobra"

	"github.com/samvad-hq/catalog-client/pkg/catalog"
)

func newNodesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "nodes",
		Short: "List catalog nodes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := opts.send(cmd, catalog.ListNodes{Meta: opts.meta()})
			if err != nil {
				return err
			}
			if opts.output == FormatJSON {
				return printRaw(cmd.OutOrStdout(), opts.output, resp)
			}
			nodes, err := catalog.DecodeNodes(resp)
			if err != nil {
				return err
			}
			return printNodes(cmd.OutOrStdout(), nodes)
		},
	}
}

func newServicesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "services",
		Aliases: []string{"ls"},
		Short:   "List catalog services and their tags",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := opts.send(cmd, catalog.ListServices{Meta: opts.meta()})
			if err != nil {
				return err
			}
			if opts.output == FormatJSON {
				return printRaw(cmd.OutOrStdout(), opts.output, resp)
			}
			services, err := catalog.DecodeServices(resp)
			if err != nil {
				return err
			}
			return printServices(cmd.OutOrStdout(), services)
		},
	}
}

func newServiceCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "service [name]",
		Short: "List the nodes providing a service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := catalog.ListServiceNodes{Meta: opts.meta(), ServiceName: args[0]}
			resp, err := opts.send(cmd, req)
			if err != nil {
				return err
			}
			if opts.output == FormatJSON {
				return printRaw(cmd.OutOrStdout(), opts.output, resp)
			}
			entries, err := catalog.DecodeServiceNodes(resp)
			if err != nil {
				return err
			}
			return printServiceNodes(cmd.OutOrStdout(), entries)
		},
	}
}
