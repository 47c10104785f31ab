package repository

import (
	"context"
	"fmt"
	"time"

	bookingserrors "busly/internal/bookings/errors"
	"busly/pkg/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const lockCollectionName = "Bus_locks"

type busLockDocument struct {
	ID        string    `bson:"_id"`
	Bus       string    `bson:"bus"`
	ExpiresAt time.Time `bson:"expires_at"`
	CreatedAt time.Time `bson:"created_at"`
}

// mongoBusLockRepository implements the advisory lock as a document with a
// unique _id per bus. A duplicate key on insert means another commit holds
// the lock. A TTL index on expires_at reaps locks left by crashed commits.
type mongoBusLockRepository struct {
	collection *mongo.Collection
}

func NewMongoBusLockRepository(cfg *config.Config) (BusLockRepository, error) {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	repo := &mongoBusLockRepository{
		collection: db.Collection(lockCollectionName),
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoConnTimeout)
	defer cancel()

	_, err := repo.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create lock TTL index: %w", err)
	}

	return repo, nil
}

func (r *mongoBusLockRepository) Acquire(ctx context.Context, bus string) (string, error) {
	lockID := "bus_lock_" + bus

	doc := busLockDocument{
		ID:        lockID,
		Bus:       bus,
		ExpiresAt: time.Now().Add(LockTTL),
		CreatedAt: time.Now(),
	}

	_, err := r.collection.InsertOne(ctx, doc)
	if err == nil {
		return lockID, nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return "", fmt.Errorf("failed to acquire bus lock: %w", err)
	}

	// The TTL monitor only reaps expired lock documents every minute or so.
	// Delete the document ourselves if its expiry has passed and retry, so a
	// crashed commit blocks the bus for LockTTL, not the monitor cycle.
	res, delErr := r.collection.DeleteOne(ctx, bson.M{
		"_id":        lockID,
		"expires_at": bson.M{"$lt": time.Now()},
	})
	if delErr != nil || res.DeletedCount == 0 {
		return "", fmt.Errorf("%w: %s", bookingserrors.ErrLockHeld, bus)
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", fmt.Errorf("%w: %s", bookingserrors.ErrLockHeld, bus)
		}
		return "", fmt.Errorf("failed to acquire bus lock: %w", err)
	}

	return lockID, nil
}

func (r *mongoBusLockRepository) Release(ctx context.Context, lockID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID})
	return err
}
