// Package firebase adapts the Firebase Realtime Database to the key-value
// range store port. Paths map one-to-one onto database references.
package firebase

import (
	"context"
	"encoding/json"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/db"
	"google.golang.org/api/option"

	"github.com/attendly/core/internal/domain/entities"
	"github.com/attendly/core/internal/ports"
)

// Store implements ports.KeyValueRangeStore on a Realtime Database instance.
type Store struct {
	client *db.Client
}

// New initialises the Firebase app and connects to databaseURL. credentialsFile
// may be empty, in which case application default credentials are used.
func New(ctx context.Context, databaseURL, credentialsFile string) (*Store, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{DatabaseURL: databaseURL}, opts...)
	if err != nil {
		return nil, fmt.Errorf("initialise firebase app: %w", err)
	}

	client, err := app.Database(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect to realtime database: %w", err)
	}

	return &Store{client: client}, nil
}

func (s *Store) Get(ctx context.Context, path string) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := s.client.NewRef(path).Get(ctx, &raw); err != nil {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, entities.ErrNotFound
	}
	return raw, nil
}

func (s *Store) Set(ctx context.Context, path string, value any) error {
	if err := s.client.NewRef(path).Set(ctx, value); err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, path string, children map[string]any) error {
	if err := s.client.NewRef(path).Update(ctx, children); err != nil {
		return fmt.Errorf("update %s: %w", path, err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, path string) error {
	if err := s.client.NewRef(path).Delete(ctx); err != nil {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

func (s *Store) RangeQuery(ctx context.Context, path, startKey, endKey string) ([]ports.KeyValue, error) {
	query := s.client.NewRef(path).OrderByKey()
	if startKey != "" {
		query = query.StartAt(startKey)
	}
	if endKey != "" {
		query = query.EndAt(endKey)
	}

	nodes, err := query.GetOrdered(ctx)
	if err != nil {
		return nil, fmt.Errorf("range query %s [%s, %s]: %w", path, startKey, endKey, err)
	}

	result := make([]ports.KeyValue, 0, len(nodes))
	for _, node := range nodes {
		var raw json.RawMessage
		if err := node.Unmarshal(&raw); err != nil {
			return nil, fmt.Errorf("decode child %s of %s: %w", node.Key(), path, err)
		}
		result = append(result, ports.KeyValue{Key: node.Key(), Value: raw})
	}
	return result, nil
}

var _ ports.KeyValueRangeStore = (*Store)(nil)
