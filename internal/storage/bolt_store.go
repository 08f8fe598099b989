package storage

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/samvad-hq/catalog-client/internal/domain"
)

const (
	snapshotBucket = "snapshots"
	// value layout: expiry(8) | seen_at(8) | index(8) | digest
	headerBytes = 24
)

// boltStore persists snapshots across restarts so a restarted watcher
// resumes blocking queries from the last seen index.
type boltStore struct {
	db          *bolt.DB
	snapshotTTL time.Duration
	cadence     *cleanupCadence
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string, opts Options) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(snapshotBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	return &boltStore{
		db:          db,
		snapshotTTL: opts.SnapshotTTL,
		cadence:     newCleanupCadence(opts.CleanupInterval, time.Now()),
	}, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Get returns the snapshot stored under key. Expired entries are removed
// and reported as missing.
func (b *boltStore) Get(key string) (domain.Snapshot, bool, error) {
	if b == nil || b.db == nil {
		return domain.Snapshot{}, false, nil
	}

	now := time.Now()
	if err := b.cadence.run(now, b.sweep); err != nil {
		return domain.Snapshot{}, false, err
	}

	var (
		snap  domain.Snapshot
		found bool
	)
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := snapshots(tx)
		if err != nil {
			return err
		}

		k := []byte(key)
		value := bucket.Get(k)
		if value == nil {
			return nil
		}

		expiry, decoded, ok := decodeSnapshot(key, value)
		if !ok || !expiry.After(now) {
			return bucket.Delete(k)
		}

		snap, found = decoded, true
		return nil
	})
	return snap, found, err
}

// Put stores snap under snap.Key, refreshing its expiry.
func (b *boltStore) Put(snap domain.Snapshot) error {
	if b == nil || b.db == nil {
		return nil
	}
	if snap.Key == "" {
		return fmt.Errorf("snapshot key is empty")
	}

	now := time.Now()
	if err := b.cadence.run(now, b.sweep); err != nil {
		return err
	}
	if snap.SeenAt.IsZero() {
		snap.SeenAt = now
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := snapshots(tx)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(snap.Key), encodeSnapshot(now.Add(b.snapshotTTL), snap))
	})
}

// sweep deletes expired and undecodable entries.
func (b *boltStore) sweep(now time.Time) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := snapshots(tx)
		if err != nil {
			return err
		}
		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			if expiry, _, ok := decodeSnapshot(string(k), v); ok && expiry.After(now) {
				continue
			}
			if err := cursor.Delete(); err != nil {
				return err
			}
		}
		return nil
	})
}

func snapshots(tx *bolt.Tx) (*bolt.Bucket, error) {
	bucket := tx.Bucket([]byte(snapshotBucket))
	if bucket == nil {
		return nil, fmt.Errorf("snapshot bucket missing")
	}
	return bucket, nil
}

func encodeSnapshot(expiry time.Time, snap domain.Snapshot) []byte {
	buf := make([]byte, headerBytes+len(snap.Digest))
	binary.BigEndian.PutUint64(buf[0:8], uint64(expiry.Unix()))
	binary.BigEndian.PutUint64(buf[8:16], uint64(snap.SeenAt.Unix()))
	binary.BigEndian.PutUint64(buf[16:24], snap.Index)
	copy(buf[headerBytes:], snap.Digest)
	return buf
}

// decodeSnapshot decodes the expiry and snapshot from the stored byte slice.
func decodeSnapshot(key string, value []byte) (time.Time, domain.Snapshot, bool) {
	if len(value) < headerBytes {
		return time.Time{}, domain.Snapshot{}, false
	}
	unix := int64(binary.BigEndian.Uint64(value[0:8]))
	if unix <= 0 {
		return time.Time{}, domain.Snapshot{}, false
	}
	return time.Unix(unix, 0), domain.Snapshot{
		Key:    key,
		SeenAt: time.Unix(int64(binary.BigEndian.Uint64(value[8:16])), 0),
		Index:  binary.BigEndian.Uint64(value[16:24]),
		Digest: string(value[headerBytes:]),
	}, true
}
