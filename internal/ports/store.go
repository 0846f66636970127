package ports

import (
	"context"
	"encoding/json"
	"time"

	"github.com/attendly/core/internal/domain/entities"
)

// KeyValueRangeStore is the external range-queryable key-value store the
// system persists to. Paths are slash-separated, with date-keyed segments in
// yyyy-MM-dd form so key order equals chronological order:
//
//	attendance/{date}/{userId}
//	holidays/{date}
//	tasks/{userId}/{date}/{taskId}
//	users/{userId}
//
// Implementations return entities.ErrNotFound for an absent path on Get;
// empty range reads are not an error.
type KeyValueRangeStore interface {
	// Get reads the value at path. Reading an interior path returns the
	// subtree as a JSON object keyed by child name.
	Get(ctx context.Context, path string) (json.RawMessage, error)

	// Set writes value at path, replacing whatever was there.
	Set(ctx context.Context, path string, value any) error

	// Update writes each child under path in one call, leaving siblings
	// untouched.
	Update(ctx context.Context, path string, children map[string]any) error

	// Remove deletes the value or subtree at path. Removing an absent path
	// is a no-op.
	Remove(ctx context.Context, path string) error

	// RangeQuery returns the direct children of path whose keys fall in
	// [startKey, endKey], ordered by key. An empty startKey or endKey leaves
	// that bound open.
	RangeQuery(ctx context.Context, path, startKey, endKey string) ([]KeyValue, error)
}

// KeyValue is one child entry returned by a range query.
type KeyValue struct {
	Key   string
	Value json.RawMessage
}

// Snapshot is one full-state observation of a watched path. Updates arrive as
// an ordered sequence of snapshots, each one a full logical replace.
type Snapshot struct {
	Path  string
	Value json.RawMessage
}

// LiveStore is an optional store capability: push-style change delivery for a
// path. The subscription ends when ctx is cancelled; the store closes the
// channel. Stores without native change feeds simply don't implement this and
// consumers fall back to polling.
type LiveStore interface {
	Subscribe(ctx context.Context, path string) (<-chan Snapshot, error)
}

// Clock supplies the current instant and calendar date. Injected so
// derivation logic is deterministic under test.
type Clock interface {
	Now() time.Time
	Today() entities.Date
}

// IdentityGenerator produces globally unique opaque tokens for new record
// identities.
type IdentityGenerator interface {
	NewID() string
}

// TableExporter consumes flattened row-major cells and emits a downloadable
// spreadsheet artifact.
type TableExporter interface {
	Export(sheetName string, cells [][]string) ([]byte, error)
}
