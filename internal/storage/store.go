package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no value exists under the key.
var ErrNotFound = errors.New("storage: key not found")

// Store is the persistence boundary of the whole system: a string-keyed
// blob store holding one JSON document per key. Repositories own the
// key layout and (de)serialization; the store knows nothing about the
// shapes it holds.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Key layout. Per-user blobs are namespaced by feature and user id;
// the activity feed and its seeded stand-in are shared keys.
const (
	FeedKey      = "activities"
	MockFeedKey  = "mockfeed"
	UserIndexKey = "userindex"
)

func UserKey(userID string) string          { return "user:" + userID }
func QuestsKey(userID string) string        { return "quests:" + userID }
func DailyStateKey(userID string) string    { return "daily:" + userID }
func HobbiesKey(userID string) string       { return "hobbies:" + userID }
func RecoveryKey(userID string) string      { return "recovery:" + userID }
func NotificationsKey(userID string) string { return "notifications:" + userID }
func CoachKey(userID string) string         { return "ai-coach:" + userID }
