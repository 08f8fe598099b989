package watcher

import (
	"context"

	"github.com/samvad-hq/catalog-client/pkg/catalog"
	"github.com/samvad-hq/catalog-client/pkg/httpclient"
	"github.com/samvad-hq/catalog-client/pkg/publishers"
)

// CatalogClient sends catalog requests.
type CatalogClient interface {
	Send(ctx context.Context, req catalog.Request, opts ...catalog.CallOption) (*httpclient.Response, error)
}

// EventPublisher publishes change events downstream and reports how many
// sinks accepted the event.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}
