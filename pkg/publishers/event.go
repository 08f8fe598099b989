package publishers

import (
	"encoding/json"
	"time"
)

// Event is the change notification published downstream when a watched
// catalog listing changes.
type Event struct {
	WatchID    string          `json:"watch_id"`
	Kind       string          `json:"kind"`
	Service    string          `json:"service,omitempty"`
	Datacenter string          `json:"dc,omitempty"`
	Index      uint64          `json:"index"`
	Digest     string          `json:"digest"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	ObservedAt time.Time       `json:"observed_at"`
}

// NewEvent constructs an Event. A body that is not valid JSON is dropped
// from the payload.
func NewEvent(watchID, kind, service, dc string, index uint64, digest string, body []byte) Event {
	evt := Event{
		WatchID:    watchID,
		Kind:       kind,
		Service:    service,
		Datacenter: dc,
		Index:      index,
		Digest:     digest,
		ObservedAt: time.Now().UTC(),
	}
	if len(body) > 0 && json.Valid(body) {
		evt.Payload = json.RawMessage(body)
	}
	return evt
}

// attributes are attached as message attributes by queue-style sinks.
func (e Event) attributes() map[string]string {
	attrs := map[string]string{
		"watch_id": e.WatchID,
		"kind":     e.Kind,
	}
	if e.Service != "" {
		attrs["service"] = e.Service
	}
	return attrs
}
