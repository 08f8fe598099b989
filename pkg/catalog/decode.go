package catalog

import (
	"strconv"

	"github.com/hashicorp/consul/api"

	"github.com/samvad-hq/catalog-client/pkg/httpclient"
)

// HeaderIndex is the response header carrying the blocking index.
const HeaderIndex = "X-Consul-Index"

// Index returns the blocking index reported by resp, or 0 when absent.
func Index(resp *httpclient.Response) uint64 {
	if resp == nil || resp.Header == nil {
		return 0
	}
	idx, err := strconv.ParseUint(resp.Header.Get(HeaderIndex), 10, 64)
	if err != nil {
		return 0
	}
	return idx
}

// DecodeNodes decodes a ListNodes response body. Status is not checked.
func DecodeNodes(resp *httpclient.Response) ([]*api.Node, error) {
	var out []*api.Node
	if err := resp.JSON(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// DecodeServices decodes a ListServices response: service name to tags.
func DecodeServices(resp *httpclient.Response) (map[string][]string, error) {
	var out map[string][]string
	if err := resp.JSON(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// DecodeServiceNodes decodes a ListServiceNodes response body.
func DecodeServiceNodes(resp *httpclient.Response) ([]*api.CatalogService, error) {
	var out []*api.CatalogService
	if err := resp.JSON(&out); err != nil {
		return nil, err
	}
	return out, nil
}
