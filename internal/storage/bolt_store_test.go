package storage

import (
	"testing"
	"time"

	"github.com/samvad-hq/catalog-client/internal/domain"
)

func TestBoltStoreRoundTripsSnapshots(t *testing.T) {
	storeRaw, err := openBolt(t.TempDir()+"/watch.db", normalizeOptions(Options{}))
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	defer store.Close()

	if _, found, err := store.Get("services"); err != nil || found {
		t.Fatalf("expected missing snapshot, found=%v err=%v", found, err)
	}

	if err := store.Put(domain.Snapshot{Key: "services", Index: 77, Digest: "abc"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	snap, found, err := store.Get("services")
	if err != nil || !found {
		t.Fatalf("expected snapshot, found=%v err=%v", found, err)
	}
	if snap.Index != 77 || snap.Digest != "abc" || snap.Key != "services" {
		t.Fatalf("unexpected snapshot %#v", snap)
	}
	if snap.SeenAt.IsZero() {
		t.Fatalf("expected SeenAt to be populated")
	}
}

func TestBoltStoreExpiresSnapshots(t *testing.T) {
	opts := Options{
		SnapshotTTL:     1 * time.Second,
		CleanupInterval: 1 * time.Second,
	}

	storeRaw, err := openBolt(t.TempDir()+"/watch.db", opts)
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	defer store.Close()

	if err := store.Put(domain.Snapshot{Key: "nodes", Index: 1, Digest: "d"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// Fast-forward cleanup cadence and trigger expiry.
	store.cadence.last.Store(time.Now().Add(-2 * time.Second).Unix())
	time.Sleep(1100 * time.Millisecond)

	if _, found, err := store.Get("nodes"); err != nil || found {
		t.Fatalf("expected entry to expire, found=%v err=%v", found, err)
	}
}

func TestBoltStoreRejectsEmptyKey(t *testing.T) {
	store, err := NewStore("bbolt", t.TempDir()+"/watch.db", Options{})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer store.Close()

	if err := store.Put(domain.Snapshot{}); err == nil {
		t.Fatalf("expected error for empty key")
	}
}

func TestNewStoreSupportsNoop(t *testing.T) {
	store, err := NewStore("none", "", Options{})
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}
	if err := store.Put(domain.Snapshot{Key: "x"}); err != nil {
		t.Fatalf("noop store Put: %v", err)
	}
	if _, found, _ := store.Get("x"); found {
		t.Fatalf("noop store must never report snapshots")
	}
}

func TestNewStoreRejectsUnknownType(t *testing.T) {
	if _, err := NewStore("redis", "", Options{}); err == nil {
		t.Fatalf("expected error for unsupported storage type")
	}
}

func TestMemoryStoreExpiresAndSweeps(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	store := newMemoryStore(Options{SnapshotTTL: time.Minute, CleanupInterval: time.Hour})
	store.now = func() time.Time { return now }
	store.cadence = newCleanupCadence(time.Hour, now)

	if err := store.Put(domain.Snapshot{Key: "nodes", Index: 3, Digest: "d"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Put(domain.Snapshot{}); err == nil {
		t.Fatalf("expected error for empty key")
	}
	snap, found, _ := store.Get("nodes")
	if !found || snap.Index != 3 || !snap.SeenAt.Equal(now) {
		t.Fatalf("unexpected snapshot %#v found=%v", snap, found)
	}

	now = now.Add(2 * time.Minute)
	if _, found, _ := store.Get("nodes"); found {
		t.Fatalf("expected expired snapshot to be hidden")
	}
	if store.len() != 1 {
		t.Fatalf("entry should stay until the next sweep")
	}

	now = now.Add(2 * time.Hour)
	_, _, _ = store.Get("nodes")
	if store.len() != 0 {
		t.Fatalf("expected sweep to drop expired entry")
	}
}

func TestNewStoreBackends(t *testing.T) {
	for _, typ := range []string{"", "none", "memory", "MEMORY"} {
		s, err := NewStore(typ, "", Options{})
		if err != nil {
			t.Fatalf("NewStore(%q): %v", typ, err)
		}
		_ = s.Close()
	}
	if _, err := NewStore("bbolt", " ", Options{}); err == nil {
		t.Fatalf("expected bbolt without path to fail")
	}
}
