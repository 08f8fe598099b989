package domain

import "time"

// Snapshot is the last observed state of one watch target.
type Snapshot struct {
	Key    string
	Index  uint64
	Digest string
	SeenAt time.Time
}

// Changed reports whether an observation with index and digest differs
// from the snapshot. A zero snapshot always counts as changed. Without an
// index from the server only the digest is compared.
func (s Snapshot) Changed(index uint64, digest string) bool {
	if s.Index == 0 && s.Digest == "" {
		return true
	}
	if index == 0 {
		return digest != s.Digest
	}
	if index == s.Index {
		return false
	}
	return digest != s.Digest
}
