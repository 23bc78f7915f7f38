package storage

import (
	"context"
	"time"

	"github.com/lifequest/lifequest-backend/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore keeps every blob as one document in a single collection,
// keyed by _id. The payload stays opaque JSON so the document shape
// never has to track the Go models.
type MongoStore struct {
	collection *mongo.Collection
}

type blobDoc struct {
	Key       string    `bson:"_id"`
	Data      []byte    `bson:"data"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// NewMongoStore creates a Store backed by the "blobs" collection.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		collection: db.Collection("blobs"),
	}
}

func (s *MongoStore) Get(ctx context.Context, key string) ([]byte, error) {
	var doc blobDoc
	err := s.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		logger.Log.WithError(err).WithField("key", key).Error("Failed to read blob")
		return nil, err
	}
	return doc.Data, nil
}

func (s *MongoStore) Set(ctx context.Context, key string, value []byte) error {
	doc := blobDoc{Key: key, Data: value, UpdatedAt: time.Now()}

	opts := options.Replace().SetUpsert(true)
	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": key}, doc, opts)
	if err != nil {
		logger.Log.WithError(err).WithField("key", key).Error("Failed to write blob")
		return err
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, key string) error {
	_, err := s.collection.DeleteOne(ctx, bson.M{"_id": key})
	if err != nil {
		logger.Log.WithError(err).WithField("key", key).Error("Failed to delete blob")
		return err
	}
	return nil
}
