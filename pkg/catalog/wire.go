package catalog

import (
	"encoding/json"
	"fmt"
	"strings"
)

// wireRequest is the JSON envelope accepted by DecodeRequest.
type wireRequest struct {
	Type        string          `json:"type"`
	APIVersion  string          `json:"api_version"`
	Section     string          `json:"section"`
	Datacenter  string          `json:"dc"`
	Index       uint64          `json:"index"`
	Token       string          `json:"token"`
	ServiceName string          `json:"service_name"`
	Payload     json.RawMessage `json:"payload"`
}

// DecodeRequest decodes a request envelope such as
//
//	{"type": "list_service_nodes", "dc": "dc1", "service_name": "web"}
//
// An unrecognised type is not a decode error: it yields an UnknownRequest
// so the caller gets the usual rejection from Send.
func DecodeRequest(data []byte) (Request, error) {
	var w wireRequest
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode catalog request: %w", err)
	}

	meta := Meta{
		APIVersion: strings.TrimSpace(w.APIVersion),
		Section:    strings.TrimSpace(w.Section),
		Datacenter: strings.TrimSpace(w.Datacenter),
		Index:      w.Index,
		Token:      w.Token,
	}

	switch Kind(strings.ToLower(strings.TrimSpace(w.Type))) {
	case KindRegisterEntity:
		req := RegisterEntity{Meta: meta}
		if len(w.Payload) > 0 && string(w.Payload) != "null" {
			req.Payload = w.Payload
		}
		return req, nil
	case KindListNodes:
		return ListNodes{Meta: meta}, nil
	case KindListServices:
		return ListServices{Meta: meta}, nil
	case KindListServiceNodes:
		return ListServiceNodes{Meta: meta, ServiceName: w.ServiceName}, nil
	default:
		return UnknownRequest{Meta: meta, Type: w.Type}, nil
	}
}
