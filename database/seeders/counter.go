package seeders

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/turnosapp/turnos/app/repositories"
	"github.com/turnosapp/turnos/app/services"
	"github.com/turnosapp/turnos/pkg/logger"
)

func init() {
	Register("order_counter", SyncOrderCounter)
}

// SyncOrderCounter moves the order counter past every number already
// stored, including a counter kept in the old {clave: "ultimoTurno"} shape.
// It is idempotent and runs on every boot.
func SyncOrderCounter(ctx context.Context, db *mongo.Database) error {
	seq := services.NewSequenceAllocator(repositories.NewCounterRepository(db))
	floor, err := seq.Reconcile(ctx, repositories.NewOrderRepository(db))
	if err != nil {
		return err
	}

	logger.Info("order counter synced", "floor", floor)
	return nil
}
