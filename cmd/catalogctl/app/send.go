package app

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/samvad-hq/catalog-client/pkg/catalog"
	"github.com/samvad-hq/catalog-client/pkg/httpclient"
)

func newSendCmd(opts *rootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a request described by a JSON envelope",
		Long: `Send decodes a request envelope such as

  {"type": "list_service_nodes", "service_name": "web", "dc": "dc1"}

and sends it. The --dc and --token flags and the configured defaults fill
fields the envelope leaves blank; they never override fields it sets.
Use -f - to read the envelope from stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := readInput(cmd, file)
			if err != nil {
				return err
			}
			req, err := catalog.DecodeRequest(data)
			if err != nil {
				return err
			}
			resp, err := opts.send(cmd, catalog.WithDefaults(req, opts.meta()))
			if err != nil {
				return err
			}
			return printRaw(cmd.OutOrStdout(), opts.output, resp)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Request envelope file (- for stdin)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// send dispatches req and turns non-2xx responses into errors after the body
// has been printed to stderr.
func (o *rootOptions) send(cmd *cobra.Command, req catalog.Request) (*httpclient.Response, error) {
	if built, err := o.client.Build(req); err == nil {
		o.log.DebugObj("sending catalog request", "request", map[string]any{
			"method": built.Method,
			"url":    built.URL,
			"query":  built.Query,
		})
	}

	resp, err := o.client.Send(cmd.Context(), req)
	if err != nil {
		return nil, err
	}
	o.log.DebugObj("catalog response", "response", map[string]any{
		"status": resp.StatusCode,
		"index":  catalog.Index(resp),
		"bytes":  len(resp.Body),
	})
	if !resp.IsSuccess() {
		errOut := cmd.ErrOrStderr()
		if len(resp.Body) > 0 {
			fmt.Fprintln(errOut, string(resp.Body))
		}
		return nil, fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}
	return resp, nil
}

func readInput(cmd *cobra.Command, file string) ([]byte, error) {
	if file == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file, err)
	}
	return data, nil
}
