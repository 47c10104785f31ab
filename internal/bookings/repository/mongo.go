package repository

import (
	"context"
	"fmt"
	"time"

	bookingserrors "busly/internal/bookings/errors"
	"busly/pkg/config"
	mongotx "busly/pkg/db/mongo"
	"busly/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "BookingRecords"
)

// mongoRecordStore keeps one document per seat-row. A unique compound index
// on (bus, seat) is the storage-level backstop against double booking: even
// if the advisory lock discipline were bypassed, the second append loses.
type mongoRecordStore struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoRecordStore(cfg *config.Config) (RecordStore, error) {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	store := &mongoRecordStore{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}

	if err := store.ensureIndexes(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *mongoRecordStore) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.MongoConnTimeout)
	defer cancel()

	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "bus", Value: 1},
			{Key: "seat", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create (bus, seat) unique index: %w", err)
	}
	return nil
}

// withTimeout wraps the context with a timeout unless already inside a
// transaction, where wrapping a SessionContext would break its semantics.
func (s *mongoRecordStore) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (s *mongoRecordStore) Append(ctx context.Context, records []*model.BookingRecord) error {
	if len(records) == 0 {
		return nil
	}

	docs := make([]any, len(records))
	for i, record := range records {
		docs[i] = record
	}

	err := s.txManager.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		// Ordered insert inside a transaction: all rows land or none do.
		_, err := s.collection.InsertMany(sessCtx, docs, options.InsertMany().SetOrdered(true))
		return err
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %v", bookingserrors.ErrSeatTaken, err)
		}
		return fmt.Errorf("failed to append booking records: %w", err)
	}

	return nil
}

func (s *mongoRecordStore) FindByBus(ctx context.Context, bus string) ([]*model.BookingRecord, error) {
	ctx, cancel := s.withTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	return s.find(ctx, bson.M{"bus": bus})
}

func (s *mongoRecordStore) Scan(ctx context.Context) ([]*model.BookingRecord, error) {
	ctx, cancel := s.withTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	return s.find(ctx, bson.M{})
}

func (s *mongoRecordStore) find(ctx context.Context, filter bson.M) ([]*model.BookingRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find booking records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*model.BookingRecord
	if err = cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode booking records: %w", err)
	}

	return records, nil
}

func (s *mongoRecordStore) Count(ctx context.Context) (int64, error) {
	ctx, cancel := s.withTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	count, err := s.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count booking records: %w", err)
	}

	return count, nil
}
