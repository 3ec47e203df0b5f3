package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lysyi3m/ims-sessions/app/ims"
)

var _ ims.SnapshotStore = (*SnapshotRepository)(nil)

// SnapshotRepository stores one named snapshot row; fetched_at is kept as
// Unix nanoseconds.
type SnapshotRepository struct {
	db   *DB
	name string
}

func NewSnapshotRepository(db *DB, name string) *SnapshotRepository {
	return &SnapshotRepository{db: db, name: name}
}

func (r *SnapshotRepository) Name() string {
	return "sqlite"
}

func (r *SnapshotRepository) Load(ctx context.Context) (*ims.Snapshot, error) {
	var body []byte
	var fetchedAt int64

	err := r.db.QueryRowContext(ctx, `
		SELECT body, fetched_at
		FROM feed_snapshots
		WHERE name = ?
	`, r.name).Scan(&body, &fetchedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	return &ims.Snapshot{Body: body, FetchedAt: time.Unix(0, fetchedAt)}, nil
}

func (r *SnapshotRepository) Save(ctx context.Context, snapshot ims.Snapshot) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO feed_snapshots (name, body, fetched_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			body = excluded.body,
			fetched_at = excluded.fetched_at,
			updated_at = excluded.updated_at
	`, r.name, snapshot.Body, snapshot.FetchedAt.UnixNano(), time.Now().UnixNano())

	if err != nil {
		return fmt.Errorf("failed to upsert snapshot: %w", err)
	}

	return nil
}
