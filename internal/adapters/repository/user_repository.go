package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/attendly/core/internal/domain/entities"
	"github.com/attendly/core/internal/ports"
)

// UserRepositoryImpl implements the UserRepository interface
type UserRepositoryImpl struct {
	store ports.KeyValueRangeStore
}

// NewUserRepository creates a new user repository
func NewUserRepository(store ports.KeyValueRangeStore) ports.UserRepository {
	return &UserRepositoryImpl{store: store}
}

func (r *UserRepositoryImpl) Get(ctx context.Context, uid string) (*entities.User, error) {
	raw, err := r.store.Get(ctx, userPath(uid))
	if errors.Is(err, entities.ErrNotFound) {
		return nil, entities.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", uid, err)
	}

	var user entities.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", uid, err)
	}
	user.UID = uid
	return &user, nil
}

func (r *UserRepositoryImpl) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	users, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Email == email {
			return &users[i], nil
		}
	}
	return nil, entities.ErrUserNotFound
}

func (r *UserRepositoryImpl) List(ctx context.Context) ([]entities.User, error) {
	rows, err := r.store.RangeQuery(ctx, usersRoot, "", "")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	users := make([]entities.User, 0, len(rows))
	for _, row := range rows {
		var user entities.User
		if err := json.Unmarshal(row.Value, &user); err != nil {
			return nil, fmt.Errorf("decode user %s: %w", row.Key, err)
		}
		user.UID = row.Key
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].DisplayName == users[j].DisplayName {
			return users[i].UID < users[j].UID
		}
		return users[i].DisplayName < users[j].DisplayName
	})
	return users, nil
}

func (r *UserRepositoryImpl) Save(ctx context.Context, user *entities.User) error {
	if err := r.store.Set(ctx, userPath(user.UID), user); err != nil {
		return fmt.Errorf("save user %s: %w", user.UID, err)
	}
	return nil
}
