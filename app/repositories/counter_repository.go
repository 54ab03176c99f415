package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/turnosapp/turnos/app/models"
	"github.com/turnosapp/turnos/pkg/database"
	"github.com/turnosapp/turnos/pkg/metrics"
)

type CounterRepository struct {
	collection *mongo.Collection
}

func NewCounterRepository(db *mongo.Database) *CounterRepository {
	return &CounterRepository{collection: db.Collection(database.Counters)}
}

// Next increments the counter named key and returns the new value in a
// single round-trip. A missing counter is created at 1.
func (r *CounterRepository) Next(ctx context.Context, key string) (int64, error) {
	defer metrics.ObserveStore(database.Counters, "find_one_and_update", time.Now())

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var c models.Counter
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": key},
		bson.M{"$inc": bson.M{"valor": 1}},
		opts,
	).Decode(&c)
	if err != nil {
		return 0, fmt.Errorf("cannot increment counter %s: %w", key, err)
	}

	return c.Value, nil
}

// Legacy reads a counter stored the old way, keyed by a "clave" field
// instead of _id. A missing document reads as 0.
func (r *CounterRepository) Legacy(ctx context.Context, key string) (int64, error) {
	defer metrics.ObserveStore(database.Counters, "find_one", time.Now())

	var doc struct {
		Value int64 `bson:"valor"`
	}
	err := r.collection.FindOne(ctx, bson.M{"clave": key}).Decode(&doc)
	if err != nil {
		if notFound(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("cannot read legacy counter %s: %w", key, err)
	}
	return doc.Value, nil
}

// Raise lifts the counter named key to at least floor. It never lowers it.
func (r *CounterRepository) Raise(ctx context.Context, key string, floor int64) error {
	defer metrics.ObserveStore(database.Counters, "update", time.Now())

	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": key},
		bson.M{"$max": bson.M{"valor": floor}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("cannot raise counter %s: %w", key, err)
	}
	return nil
}
