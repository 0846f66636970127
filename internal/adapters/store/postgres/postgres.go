// Package postgres persists the key-value tree as one row per JSON leaf in a
// store_entries table. Subtrees are reassembled in Go from path prefixes, so
// the table needs nothing beyond the primary key index.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/attendly/core/internal/domain/entities"
	"github.com/attendly/core/internal/infrastructure/database"
	"github.com/attendly/core/internal/ports"
)

// Store implements ports.KeyValueRangeStore on PostgreSQL.
type Store struct {
	db *database.DB
}

// New creates a store on an established database connection.
func New(db *database.DB) *Store {
	return &Store{db: db}
}

type entryRow struct {
	Path  string          `db:"path"`
	Value json.RawMessage `db:"value"`
}

func (s *Store) Get(ctx context.Context, path string) (json.RawMessage, error) {
	path = normalize(path)

	var row entryRow
	err := s.db.DB.GetContext(ctx, &row,
		`SELECT path, value FROM store_entries WHERE path = $1`, path)
	if err == nil {
		return row.Value, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}

	rows, err := s.descendants(ctx, path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, entities.ErrNotFound
	}
	return assemble(path, rows), nil
}

func (s *Store) Set(ctx context.Context, path string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal value for %s: %w", path, err)
	}
	path = normalize(path)

	return s.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		return setTx(ctx, tx, path, raw)
	})
}

func (s *Store) Update(ctx context.Context, path string, children map[string]any) error {
	path = normalize(path)

	return s.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		for key, value := range children {
			raw, err := json.Marshal(value)
			if err != nil {
				return fmt.Errorf("marshal child %s of %s: %w", key, path, err)
			}
			if err := setTx(ctx, tx, path+"/"+key, raw); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) Remove(ctx context.Context, path string) error {
	path = normalize(path)

	return s.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		return removeTx(ctx, tx, path)
	})
}

func (s *Store) RangeQuery(ctx context.Context, path, startKey, endKey string) ([]ports.KeyValue, error) {
	path = normalize(path)

	rows, err := s.descendants(ctx, path)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]entryRow)
	for _, row := range rows {
		key := firstSegment(strings.TrimPrefix(row.Path, path+"/"))
		if startKey != "" && key < startKey {
			continue
		}
		if endKey != "" && key > endKey {
			continue
		}
		grouped[key] = append(grouped[key], row)
	}

	keys := make([]string, 0, len(grouped))
	for key := range grouped {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	result := make([]ports.KeyValue, 0, len(keys))
	for _, key := range keys {
		result = append(result, ports.KeyValue{
			Key:   key,
			Value: assemble(path+"/"+key, grouped[key]),
		})
	}
	return result, nil
}

var _ ports.KeyValueRangeStore = (*Store)(nil)

func (s *Store) descendants(ctx context.Context, path string) ([]entryRow, error) {
	var rows []entryRow
	err := s.db.DB.SelectContext(ctx, &rows,
		`SELECT path, value FROM store_entries WHERE path LIKE $1 ORDER BY path`,
		likePrefix(path))
	if err != nil {
		return nil, fmt.Errorf("list descendants of %s: %w", path, err)
	}
	return rows, nil
}

func setTx(ctx context.Context, tx *sqlx.Tx, path string, raw json.RawMessage) error {
	if err := removeTx(ctx, tx, path); err != nil {
		return err
	}
	if string(raw) == "null" {
		return nil
	}

	leaves := make(map[string]json.RawMessage)
	flatten(path, raw, leaves)
	for leafPath, leafRaw := range leaves {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO store_entries (path, value) VALUES ($1, $2)
			 ON CONFLICT (path) DO UPDATE SET value = EXCLUDED.value`,
			leafPath, leafRaw)
		if err != nil {
			return fmt.Errorf("write %s: %w", leafPath, err)
		}
	}
	return nil
}

func removeTx(ctx context.Context, tx *sqlx.Tx, path string) error {
	_, err := tx.ExecContext(ctx,
		`DELETE FROM store_entries WHERE path = $1 OR path LIKE $2`,
		path, likePrefix(path))
	if err != nil {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

// flatten splits a JSON document into one entry per leaf. Object nulls are
// dropped, matching the delete-on-null write convention.
func flatten(path string, raw json.RawMessage, out map[string]json.RawMessage) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		out[path] = raw
		return
	}
	for key, childRaw := range obj {
		if string(childRaw) == "null" {
			continue
		}
		flatten(path+"/"+key, childRaw, out)
	}
}

// assemble rebuilds the subtree document rooted at prefix from leaf rows.
func assemble(prefix string, rows []entryRow) json.RawMessage {
	if len(rows) == 1 && rows[0].Path == prefix {
		return rows[0].Value
	}

	children := make(map[string][]entryRow)
	for _, row := range rows {
		key := firstSegment(strings.TrimPrefix(row.Path, prefix+"/"))
		children[key] = append(children[key], row)
	}

	doc := make(map[string]json.RawMessage, len(children))
	for key, childRows := range children {
		doc[key] = assemble(prefix+"/"+key, childRows)
	}
	raw, _ := json.Marshal(doc)
	return raw
}

func normalize(path string) string {
	return strings.Trim(path, "/")
}

func firstSegment(rest string) string {
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		return rest[:i]
	}
	return rest
}

func likePrefix(path string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(path)
	return escaped + "/%"
}
