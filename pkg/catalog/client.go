package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/samvad-hq/catalog-client/pkg/httpclient"
)

// Client sends catalog requests to a single base address. It holds no
// mutable state and is safe for concurrent use.
type Client struct {
	address string
	http    httpclient.Client
}

// New builds a Client for address. An empty address means DefaultAddress.
func New(address string, opts ...Option) *Client {
	c := &Client{address: NormalizeAddress(address)}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.http == nil {
		c.http = httpclient.NewRestyClient(0)
	}
	return c
}

// Address returns the normalized base address.
func (c *Client) Address() string { return c.address }

// route is the HTTP shape of one request variant.
type route struct {
	method string
	suffix string
	body   any
}

// Send performs the single HTTP call for req and returns the response
// without looking at its status. Requests that are not a known variant
// fail with *UnsupportedRequestError before anything is sent; transport
// errors are returned as the transport reported them.
func (c *Client) Send(ctx context.Context, req Request, opts ...CallOption) (*httpclient.Response, error) {
	call, err := c.Build(req, opts...)
	if err != nil {
		return nil, err
	}
	return c.http.Do(ctx, call)
}

// Build resolves req into the outbound request without sending it.
func (c *Client) Build(req Request, opts ...CallOption) (httpclient.Request, error) {
	rt, ok := resolve(req)
	if !ok {
		return httpclient.Request{}, &UnsupportedRequestError{Request: req}
	}

	body, err := encodeBody(rt.body)
	if err != nil {
		return httpclient.Request{}, err
	}

	meta := req.Common()
	merged, err := overlay(buildCallOptions(opts), CallOptions{
		Headers: HeadersForRequest(req),
		Query:   queryForRequest(meta),
	})
	if err != nil {
		return httpclient.Request{}, err
	}

	return httpclient.Request{
		Method:  rt.method,
		URL:     c.pathFor(meta) + rt.suffix,
		Headers: merged.Headers,
		Query:   merged.Query,
		Body:    body,
		Timeout: merged.Timeout,
	}, nil
}

func (c *Client) pathFor(m Meta) string {
	return c.address + "/" + m.apiVersion() + "/" + m.section()
}

// encodeBody serializes a register payload. A non-nil json.RawMessage is
// taken as already encoded; a nil payload sends no body.
func encodeBody(payload any) (any, error) {
	switch p := payload.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		if p == nil {
			return nil, nil
		}
		if !json.Valid(p) {
			return nil, fmt.Errorf("encode register payload: invalid JSON")
		}
		return p, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode register payload: %w", err)
	}
	return json.RawMessage(raw), nil
}

func resolve(req Request) (route, bool) {
	if isNilRequest(req) {
		return route{}, false
	}
	switch r := req.(type) {
	case RegisterEntity:
		return route{method: http.MethodPut, suffix: "/register", body: r.Payload}, true
	case *RegisterEntity:
		return route{method: http.MethodPut, suffix: "/register", body: r.Payload}, true
	case ListNodes, *ListNodes:
		return route{method: http.MethodGet, suffix: "/nodes"}, true
	case ListServices, *ListServices:
		return route{method: http.MethodGet, suffix: "/services"}, true
	case ListServiceNodes:
		return route{method: http.MethodGet, suffix: "/service/" + url.PathEscape(r.ServiceName)}, true
	case *ListServiceNodes:
		return route{method: http.MethodGet, suffix: "/service/" + url.PathEscape(r.ServiceName)}, true
	default:
		return route{}, false
	}
}
