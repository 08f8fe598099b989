package catalog

import (
	"fmt"
	"maps"
	"net/http"
	"time"

	"dario.cat/mergo"

	"github.com/samvad-hq/catalog-client/pkg/httpclient"
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the transport used by the client.
func WithHTTPClient(hc httpclient.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// CallOptions are per-call transport overrides. They are merged into the
// derived request; on a conflicting key the derived value wins.
type CallOptions struct {
	Timeout time.Duration
	Headers map[string]string
	Query   map[string]string
}

// CallOption mutates CallOptions for a single Send.
type CallOption func(*CallOptions)

// WithTimeout bounds the call.
func WithTimeout(d time.Duration) CallOption {
	return func(o *CallOptions) { o.Timeout = d }
}

// WithHeader adds one extra header.
func WithHeader(key, value string) CallOption {
	return func(o *CallOptions) {
		if o.Headers == nil {
			o.Headers = make(map[string]string)
		}
		o.Headers[key] = value
	}
}

// WithHeaders adds extra headers.
func WithHeaders(headers map[string]string) CallOption {
	return func(o *CallOptions) {
		if o.Headers == nil {
			o.Headers = make(map[string]string, len(headers))
		}
		maps.Copy(o.Headers, headers)
	}
}

// WithQuery adds an extra query parameter, e.g. "wait" for blocking queries.
func WithQuery(key, value string) CallOption {
	return func(o *CallOptions) {
		if o.Query == nil {
			o.Query = make(map[string]string)
		}
		o.Query[key] = value
	}
}

func buildCallOptions(opts []CallOption) CallOptions {
	var out CallOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&out)
		}
	}
	return out
}

// overlay merges derived over caller. Derived non-empty fields and map
// entries win; caller entries for other keys survive. Neither input is
// modified.
func overlay(caller, derived CallOptions) (CallOptions, error) {
	out := CallOptions{
		Timeout: caller.Timeout,
		Headers: canonicalHeaders(caller.Headers),
		Query:   CleanQueryParams(caller.Query),
	}
	src := CallOptions{
		Timeout: derived.Timeout,
		Headers: canonicalHeaders(derived.Headers),
		Query:   maps.Clone(derived.Query),
	}
	if err := mergo.Merge(&out, src, mergo.WithOverride); err != nil {
		return CallOptions{}, fmt.Errorf("merge call options: %w", err)
	}
	return out, nil
}

func canonicalHeaders(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[http.CanonicalHeaderKey(k)] = v
	}
	return out
}
