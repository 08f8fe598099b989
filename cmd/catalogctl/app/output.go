package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/hashicorp/consul/api"

	"github.com/samvad-hq/catalog-client/pkg/httpclient"
)

// printRaw prints the response body, indented when it is JSON. The table
// format adds a status line first.
func printRaw(w io.Writer, format string, resp *httpclient.Response) error {
	if format == FormatTable {
		fmt.Fprintf(w, "status: %d\n", resp.StatusCode)
	}
	if len(resp.Body) == 0 {
		return nil
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, resp.Body, "", "  "); err != nil {
		_, err = fmt.Fprintln(w, string(resp.Body))
		return err
	}
	_, err := fmt.Fprintln(w, buf.String())
	return err
}

func printNodes(w io.Writer, nodes []*api.Node) error {
	if len(nodes) == 0 {
		_, err := fmt.Fprintln(w, "No nodes found")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "NODE\tADDRESS\tDATACENTER")
	for _, n := range nodes {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", n.Node, n.Address, n.Datacenter)
	}
	return tw.Flush()
}

func printServices(w io.Writer, services map[string][]string) error {
	if len(services) == 0 {
		_, err := fmt.Fprintln(w, "No services found")
		return err
	}
	names := make([]string, 0, len(services))
	for name := range services {
		names = append(names, name)
	}
	sort.Strings(names)

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "SERVICE\tTAGS")
	for _, name := range names {
		fmt.Fprintf(tw, "%s\t%s\n", name, strings.Join(services[name], ","))
	}
	return tw.Flush()
}

func printServiceNodes(w io.Writer, entries []*api.CatalogService) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No service instances found")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "NODE\tADDRESS\tSERVICE ID\tPORT\tTAGS")
	for _, e := range entries {
		addr := e.ServiceAddress
		if addr == "" {
			addr = e.Address
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", e.Node, addr, e.ServiceID, e.ServicePort, strings.Join(e.ServiceTags, ","))
	}
	return tw.Flush()
}
