package catalog

import "strconv"

// Query parameter names understood by the catalog endpoints.
const (
	QueryDatacenter = "dc"
	QueryIndex      = "index"
	QueryWait       = "wait"
)

// CleanQueryParams returns a copy of params without empty values.
// Remaining entries are preserved unchanged.
func CleanQueryParams(params map[string]string) map[string]string {
	out := make(map[string]string, len(params))
	for k, v := range params {
		if v == "" {
			continue
		}
		out[k] = v
	}
	return out
}

// queryForRequest builds the sanitized dc/index parameters of a request.
func queryForRequest(m Meta) map[string]string {
	index := ""
	if m.Index > 0 {
		index = strconv.FormatUint(m.Index, 10)
	}
	return CleanQueryParams(map[string]string{
		QueryDatacenter: m.Datacenter,
		QueryIndex:      index,
	})
}
