package ims

import (
	"context"
	"time"
)

// Snapshot is the last fetched raw IMS payload and the time it was fetched.
type Snapshot struct {
	Body      []byte
	FetchedAt time.Time
}

func (s *Snapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.FetchedAt)
}

// SnapshotStore persists a single snapshot. Save replaces the stored
// snapshot as a whole; Load returns nil without error when nothing is
// stored yet.
type SnapshotStore interface {
	Name() string
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snapshot Snapshot) error
}
