package catalog

// HeaderToken carries the ACL token for a request.
const HeaderToken = "X-Consul-Token"

// HeadersForRequest derives the headers for req. It never fails: absent
// optional fields simply produce no header.
func HeadersForRequest(req Request) map[string]string {
	headers := make(map[string]string, 1)
	if isNilRequest(req) {
		return headers
	}
	if tok := req.Common().Token; tok != "" {
		headers[HeaderToken] = tok
	}
	return headers
}
