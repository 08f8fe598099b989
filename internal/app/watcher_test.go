package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/samvad-hq/catalog-client/internal/config"
	"github.com/samvad-hq/catalog-client/pkg/catalog"
	"github.com/samvad-hq/catalog-client/pkg/publishers"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func testConfig(t *testing.T, catalogURL, hookURL string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	watchesFile := writeFile(t, dir, "watches.yaml", `
watches:
  - id: web
    kind: service_nodes
    service: web
  - id: off
    kind: nodes
    enabled: false
`)
	publishersFile := writeFile(t, dir, "publishers.yaml", fmt.Sprintf(`
publishers:
  - id: hook
    type: http
    http:
      url: %s
`, hookURL))

	return &config.Config{
		CatalogAddress:         catalogURL,
		CatalogDatacenter:      "dc1",
		CatalogToken:           "secret",
		RequestTimeout:         2 * time.Second,
		WatchesFile:            watchesFile,
		PublishersFile:         publishersFile,
		WatchWait:              time.Second,
		WatchInterval:          20 * time.Millisecond,
		StorageType:            "bbolt",
		BBoltPath:              filepath.Join(dir, "watch.db"),
		StorageTTL:             time.Hour,
		StorageCleanupInterval: time.Hour,
	}
}

func TestWatcherPublishesCatalogChanges(t *testing.T) {
	catalogSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/catalog/service/web" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get(catalog.HeaderToken) != "secret" {
			http.Error(w, "ACL not found", http.StatusForbidden)
			return
		}
		if r.URL.Query().Get(catalog.QueryIndex) == "42" {
			// Simulate a blocking query that times out with no change.
			time.Sleep(10 * time.Millisecond)
		}
		w.Header().Set(catalog.HeaderIndex, "42")
		_, _ = w.Write([]byte(`[{"Node":"n1","ServiceName":"web"}]`))
	}))
	defer catalogSrv.Close()

	events := make(chan publishers.Event, 4)
	hookSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var evt publishers.Event
		if err := json.NewDecoder(r.Body).Decode(&evt); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		events <- evt
		w.WriteHeader(http.StatusNoContent)
	}))
	defer hookSrv.Close()

	w, err := NewWatcher(context.Background(), testConfig(t, catalogSrv.URL, hookSrv.URL), nil)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	select {
	case evt := <-events:
		if evt.WatchID != "web" || evt.Service != "web" || evt.Datacenter != "dc1" || evt.Index != 42 {
			t.Fatalf("unexpected event %#v", evt)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no change event published")
	}

	// Later passes see the same index and digest.
	time.Sleep(100 * time.Millisecond)
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected no further events, got %d", len(events))
	}
}

func TestWatcherBlockedTargetDoesNotStallOthers(t *testing.T) {
	release := make(chan struct{})
	catalogSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/catalog/nodes":
			select {
			case <-release:
			case <-r.Context().Done():
				return
			}
			w.Header().Set(catalog.HeaderIndex, "1")
			_, _ = w.Write([]byte(`[]`))
		case "/v1/catalog/service/web":
			w.Header().Set(catalog.HeaderIndex, "42")
			_, _ = w.Write([]byte(`[{"Node":"n1","ServiceName":"web"}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer catalogSrv.Close()
	defer close(release)

	events := make(chan publishers.Event, 4)
	hookSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var evt publishers.Event
		if err := json.NewDecoder(r.Body).Decode(&evt); err == nil {
			events <- evt
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer hookSrv.Close()

	cfg := testConfig(t, catalogSrv.URL, hookSrv.URL)
	cfg.RequestTimeout = time.Minute
	cfg.WatchesFile = writeFile(t, t.TempDir(), "watches.yaml", `
watches:
  - id: all-nodes
    kind: nodes
  - id: web
    kind: service_nodes
    service: web
`)
	w, err := NewWatcher(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	select {
	case evt := <-events:
		if evt.WatchID != "web" {
			t.Fatalf("expected web event first, got %s", evt.WatchID)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("web change held back by the blocked nodes query")
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestNewWatcherRequiresPublishers(t *testing.T) {
	cfg := testConfig(t, "localhost:8500", "http://127.0.0.1:1")
	cfg.PublishersFile = writeFile(t, t.TempDir(), "publishers.yaml", `
publishers:
  - id: hook
    type: http
    enabled: false
    http:
      url: http://127.0.0.1:1
`)
	_, err := NewWatcher(context.Background(), cfg, nil)
	if err == nil || !strings.Contains(err.Error(), "no publishers configured") {
		t.Fatalf("expected no publishers error, got %v", err)
	}
}

func TestNewWatcherRejectsMissingWatchesFile(t *testing.T) {
	cfg := testConfig(t, "localhost:8500", "http://127.0.0.1:1")
	cfg.WatchesFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err := NewWatcher(context.Background(), cfg, nil)
	if err == nil || !strings.Contains(err.Error(), "load watches registry") {
		t.Fatalf("expected watches registry error, got %v", err)
	}
}

func TestNewWatcherNilConfig(t *testing.T) {
	if _, err := NewWatcher(context.Background(), nil, nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
}
