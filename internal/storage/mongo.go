package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const snapshotCollection = "cart_snapshots"

type snapshotDocument struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type MongoStorage struct {
	collection *mongo.Collection
	ttl        time.Duration
}

// NewMongoStorage keeps one document per key. Documents untouched for ttl are
// reaped by the TTL index created in CreateIndexes; ttl <= 0 disables expiry.
func NewMongoStorage(db *mongo.Database, ttl time.Duration) *MongoStorage {
	return &MongoStorage{
		collection: db.Collection(snapshotCollection),
		ttl:        ttl,
	}
}

// OpenMongoStorage dials uri, checks the server answers and returns storage
// over the named database. Close releases the client.
func OpenMongoStorage(ctx context.Context, uri, database string, ttl time.Duration) (*MongoStorage, error) {
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(5*time.Second).
		SetMaxPoolSize(20))
	if err != nil {
		return nil, fmt.Errorf("mongo connect failed: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping failed: %w", err)
	}
	return NewMongoStorage(client.Database(database), ttl), nil
}

func (m *MongoStorage) Close(ctx context.Context) error {
	return m.collection.Database().Client().Disconnect(ctx)
}

func (m *MongoStorage) Get(ctx context.Context, key string) (string, error) {
	var doc snapshotDocument
	err := m.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to get snapshot: %w", err)
	}
	return doc.Value, nil
}

func (m *MongoStorage) Set(ctx context.Context, key, value string) error {
	update := bson.M{"$set": bson.M{
		"value":      value,
		"updated_at": time.Now(),
	}}
	opts := options.Update().SetUpsert(true)

	if _, err := m.collection.UpdateOne(ctx, bson.M{"_id": key}, update, opts); err != nil {
		return fmt.Errorf("failed to upsert snapshot: %w", err)
	}
	return nil
}

func (m *MongoStorage) Delete(ctx context.Context, key string) error {
	if _, err := m.collection.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

func (m *MongoStorage) CreateIndexes(ctx context.Context) error {
	if m.ttl <= 0 {
		return nil
	}
	index := mongo.IndexModel{
		Keys:    bson.D{{Key: "updated_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(int32(m.ttl / time.Second)),
	}
	if _, err := m.collection.Indexes().CreateOne(ctx, index); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}
