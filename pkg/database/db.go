// Package database owns the MongoDB connection shared by the repositories.
package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/turnosapp/turnos/config"
	"github.com/turnosapp/turnos/pkg/logger"
)

// Collection names.
const (
	Orders   = "turnos"
	Payments = "pagos"
	Users    = "usuarios"
	Counters = "configs"
)

var (
	Client *mongo.Client
	DB     *mongo.Database
)

// Connect opens the client, verifies it with a ping and selects the
// configured database. It returns an error instead of exiting so the caller
// can shut down gracefully.
func Connect(ctx context.Context) error {
	uri := config.MongoURI()
	name := config.MongoDatabase()

	opts := options.Client().ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return fmt.Errorf("database: cannot connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return fmt.Errorf("database: cannot ping MongoDB: %w", err)
	}

	Client = client
	DB = client.Database(name)

	logger.Info("database: connected", "database", name)
	return nil
}

func Disconnect(ctx context.Context) error {
	if Client == nil {
		return nil
	}
	if err := Client.Disconnect(ctx); err != nil {
		return fmt.Errorf("database: cannot disconnect from MongoDB: %w", err)
	}
	Client, DB = nil, nil
	return nil
}

// Indexes lists the indexes each collection needs. The unique ones back the
// email and order number invariants at the storage level.
func Indexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		Users: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("email_unique")},
		},
		Orders: {
			{Keys: bson.D{{Key: "numeroTurno", Value: 1}}, Options: options.Index().SetUnique(true).SetName("numeroTurno_unique")},
			{Keys: bson.D{{Key: "estado", Value: 1}}, Options: options.Index().SetName("estado")},
		},
		Payments: {
			{Keys: bson.D{{Key: "turno", Value: 1}}, Options: options.Index().SetName("turno")},
			{Keys: bson.D{{Key: "metodoPago", Value: 1}}, Options: options.Index().SetName("metodoPago")},
		},
	}
}

// EnsureIndexes creates the indexes of Indexes on db. CreateMany is
// idempotent for identical definitions.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for collection, models := range Indexes() {
		names, err := db.Collection(collection).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("database: cannot create indexes on %s: %w", collection, err)
		}
		logger.Info("database: indexes ready", "collection", collection, "indexes", names)
	}
	return nil
}
