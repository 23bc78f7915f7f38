package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/lifequest/lifequest-backend/internal/models"
	"github.com/lifequest/lifequest-backend/internal/storage"
	"github.com/lifequest/lifequest-backend/pkg/logger"
)

// UserRepository persists user aggregates as one blob per user, plus a
// shared index blob resolving email/username lookups.
type UserRepository struct {
	store storage.Store
	locks keyLocker
}

type userIndex struct {
	ByEmail    map[string]string `json:"by_email"`
	ByUsername map[string]string `json:"by_username"`
	IDs        []string          `json:"ids"`
}

func NewUserRepository(store storage.Store) *UserRepository {
	return &UserRepository{store: store}
}

// CreateUser stores a new user and registers it in the index. Fails if the
// email or username is already taken.
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	mu := r.locks.forKey(storage.UserIndexKey)
	mu.Lock()
	defer mu.Unlock()

	index, err := r.loadIndex(ctx)
	if err != nil {
		return err
	}

	if _, exists := index.ByEmail[user.Email]; exists {
		return fmt.Errorf("email already in use")
	}
	if _, exists := index.ByUsername[user.Username]; exists {
		return fmt.Errorf("username already taken")
	}

	user.EnsureDefaults()
	if err := r.saveUser(ctx, user); err != nil {
		return err
	}

	index.ByEmail[user.Email] = user.ID
	index.ByUsername[user.Username] = user.ID
	index.IDs = append(index.IDs, user.ID)
	if err := r.saveIndex(ctx, index); err != nil {
		return err
	}

	logger.Log.WithField("user_id", user.ID).Info("User created successfully")
	return nil
}

// GetUserByID fetches a user aggregate by id.
func (r *UserRepository) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	raw, err := r.store.Get(ctx, storage.UserKey(userID))
	if err == storage.ErrNotFound {
		return nil, fmt.Errorf("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %v", err)
	}

	var user models.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %v", err)
	}
	user.EnsureDefaults()
	return &user, nil
}

// GetUserByEmail resolves a user via the index.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	index, err := r.loadIndex(ctx)
	if err != nil {
		return nil, err
	}
	userID, ok := index.ByEmail[email]
	if !ok {
		return nil, fmt.Errorf("user not found")
	}
	return r.GetUserByID(ctx, userID)
}

// GetAllUserIDs returns every registered user id.
func (r *UserRepository) GetAllUserIDs(ctx context.Context) ([]string, error) {
	index, err := r.loadIndex(ctx)
	if err != nil {
		return nil, err
	}
	return index.IDs, nil
}

// GetUsersByIDs fetches several users, skipping ids that no longer resolve.
func (r *UserRepository) GetUsersByIDs(ctx context.Context, userIDs []string) ([]models.User, error) {
	users := make([]models.User, 0, len(userIDs))
	for _, id := range userIDs {
		user, err := r.GetUserByID(ctx, id)
		if err != nil {
			continue
		}
		users = append(users, *user)
	}
	return users, nil
}

// UpdateUser applies fn to the stored aggregate under the user's key lock
// and persists the result in a single write. A username change is mirrored
// into the index.
func (r *UserRepository) UpdateUser(ctx context.Context, userID string, fn func(*models.User) error) (*models.User, error) {
	mu := r.locks.forKey(storage.UserKey(userID))
	mu.Lock()
	defer mu.Unlock()

	user, err := r.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	oldUsername := user.Username
	if err := fn(user); err != nil {
		return nil, err
	}

	user.UpdatedAt = time.Now()
	if err := r.saveUser(ctx, user); err != nil {
		return nil, err
	}

	if user.Username != oldUsername {
		if err := r.reindexUsername(ctx, oldUsername, user.Username, userID); err != nil {
			return nil, err
		}
	}
	return user, nil
}

// UpdateUserPair applies fn to two aggregates atomically with respect to
// this process, locking both keys in a stable order.
func (r *UserRepository) UpdateUserPair(ctx context.Context, idA, idB string, fn func(a, b *models.User) error) error {
	// Locking the same key twice would deadlock, and fn would see two
	// divergent copies of one user anyway.
	if idA == idB {
		return fmt.Errorf("cannot update a user pair with the same id")
	}

	keys := []string{storage.UserKey(idA), storage.UserKey(idB)}
	sort.Strings(keys)
	for _, key := range keys {
		mu := r.locks.forKey(key)
		mu.Lock()
		defer mu.Unlock()
	}

	userA, err := r.GetUserByID(ctx, idA)
	if err != nil {
		return err
	}
	userB, err := r.GetUserByID(ctx, idB)
	if err != nil {
		return err
	}

	if err := fn(userA, userB); err != nil {
		return err
	}

	now := time.Now()
	userA.UpdatedAt = now
	userB.UpdatedAt = now
	if err := r.saveUser(ctx, userA); err != nil {
		return err
	}
	return r.saveUser(ctx, userB)
}

// UsernameTaken reports whether the username belongs to a different user.
func (r *UserRepository) UsernameTaken(ctx context.Context, username, exceptUserID string) (bool, error) {
	index, err := r.loadIndex(ctx)
	if err != nil {
		return false, err
	}
	owner, ok := index.ByUsername[username]
	return ok && owner != exceptUserID, nil
}

func (r *UserRepository) saveUser(ctx context.Context, user *models.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %v", err)
	}
	if err := r.store.Set(ctx, storage.UserKey(user.ID), raw); err != nil {
		logger.Log.WithError(err).WithField("user_id", user.ID).Error("Failed to persist user")
		return fmt.Errorf("failed to persist user: %v", err)
	}
	return nil
}

func (r *UserRepository) reindexUsername(ctx context.Context, oldName, newName, userID string) error {
	mu := r.locks.forKey(storage.UserIndexKey)
	mu.Lock()
	defer mu.Unlock()

	index, err := r.loadIndex(ctx)
	if err != nil {
		return err
	}
	delete(index.ByUsername, oldName)
	index.ByUsername[newName] = userID
	return r.saveIndex(ctx, index)
}

func (r *UserRepository) loadIndex(ctx context.Context) (*userIndex, error) {
	index := &userIndex{
		ByEmail:    make(map[string]string),
		ByUsername: make(map[string]string),
	}

	raw, err := r.store.Get(ctx, storage.UserIndexKey)
	if err == storage.ErrNotFound {
		return index, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user index: %v", err)
	}
	if err := json.Unmarshal(raw, index); err != nil {
		return nil, fmt.Errorf("failed to decode user index: %v", err)
	}
	if index.ByEmail == nil {
		index.ByEmail = make(map[string]string)
	}
	if index.ByUsername == nil {
		index.ByUsername = make(map[string]string)
	}
	return index, nil
}

func (r *UserRepository) saveIndex(ctx context.Context, index *userIndex) error {
	raw, err := json.Marshal(index)
	if err != nil {
		return fmt.Errorf("failed to encode user index: %v", err)
	}
	if err := r.store.Set(ctx, storage.UserIndexKey, raw); err != nil {
		return fmt.Errorf("failed to persist user index: %v", err)
	}
	return nil
}
