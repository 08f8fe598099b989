// Package catalog is a thin client for a service catalog's HTTP API.
//
// A Client turns a typed Request (RegisterEntity, ListNodes, ListServices or
// ListServiceNodes) into exactly one HTTP call against
// <base>/<apiVersion>/<section>/<suffix> and hands back the raw response.
// Consistency, blocking queries and status handling belong to the server and
// the caller; the client forwards the blocking index without reading it.
package catalog
