package catalog

import (
	"fmt"
	"reflect"
)

// Kind tags a request variant.
type Kind string

const (
	KindRegisterEntity   Kind = "register_entity"
	KindListNodes        Kind = "list_nodes"
	KindListServices     Kind = "list_services"
	KindListServiceNodes Kind = "list_service_nodes"
)

// Default path segments applied when a request leaves them blank.
const (
	DefaultAPIVersion = "v1"
	DefaultSection    = "catalog"
)

// Request is a catalog request. The client dispatches on the concrete
// variant; anything else is rejected with UnsupportedRequestError.
type Request interface {
	Kind() Kind
	Common() Meta
}

// Meta holds the fields shared by every variant.
type Meta struct {
	APIVersion string
	Section    string
	Datacenter string
	// Index is the blocking-query cursor. Zero means unset.
	Index uint64
	// Token is sent as a header, never as a query parameter.
	Token string
}

// Common returns the shared request fields.
func (m Meta) Common() Meta { return m }

func (m Meta) apiVersion() string {
	if m.APIVersion == "" {
		return DefaultAPIVersion
	}
	return m.APIVersion
}

func (m Meta) section() string {
	if m.Section == "" {
		return DefaultSection
	}
	return m.Section
}

// withDefaults fills the blank fields of m from d. Index is left alone.
func (m Meta) withDefaults(d Meta) Meta {
	if m.APIVersion == "" {
		m.APIVersion = d.APIVersion
	}
	if m.Section == "" {
		m.Section = d.Section
	}
	if m.Datacenter == "" {
		m.Datacenter = d.Datacenter
	}
	if m.Token == "" {
		m.Token = d.Token
	}
	return m
}

// WithDefaults returns a copy of req whose blank Meta fields are taken from
// d. Fields already set on req win. Pointer variants are copied, not
// mutated, and requests of a foreign type are returned unchanged.
func WithDefaults(req Request, d Meta) Request {
	if isNilRequest(req) {
		return req
	}
	switch r := req.(type) {
	case RegisterEntity:
		r.Meta = r.Meta.withDefaults(d)
		return r
	case *RegisterEntity:
		c := *r
		c.Meta = c.Meta.withDefaults(d)
		return &c
	case ListNodes:
		r.Meta = r.Meta.withDefaults(d)
		return r
	case *ListNodes:
		c := *r
		c.Meta = c.Meta.withDefaults(d)
		return &c
	case ListServices:
		r.Meta = r.Meta.withDefaults(d)
		return r
	case *ListServices:
		c := *r
		c.Meta = c.Meta.withDefaults(d)
		return &c
	case ListServiceNodes:
		r.Meta = r.Meta.withDefaults(d)
		return r
	case *ListServiceNodes:
		c := *r
		c.Meta = c.Meta.withDefaults(d)
		return &c
	case UnknownRequest:
		r.Meta = r.Meta.withDefaults(d)
		return r
	default:
		return req
	}
}

// RegisterEntity registers a node, service or check. Payload is serialized
// as JSON and otherwise opaque.
type RegisterEntity struct {
	Meta
	Payload any
}

// ListNodes lists the nodes known to the catalog.
type ListNodes struct {
	Meta
}

// ListServices lists the registered services and their tags.
type ListServices struct {
	Meta
}

// ListServiceNodes lists the nodes providing ServiceName.
type ListServiceNodes struct {
	Meta
	ServiceName string
}

func (RegisterEntity) Kind() Kind   { return KindRegisterEntity }
func (ListNodes) Kind() Kind        { return KindListNodes }
func (ListServices) Kind() Kind     { return KindListServices }
func (ListServiceNodes) Kind() Kind { return KindListServiceNodes }

// UnknownRequest stands in for a request whose type tag is not recognised,
// typically one decoded from the wire. Send always rejects it.
type UnknownRequest struct {
	Meta
	Type string
}

func (u UnknownRequest) Kind() Kind { return Kind(u.Type) }

func (u UnknownRequest) String() string {
	return fmt.Sprintf("UnknownRequest(type=%q)", u.Type)
}

func isNilRequest(req Request) bool {
	if req == nil {
		return true
	}
	v := reflect.ValueOf(req)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
