package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/turnosapp/turnos/app/models"
	"github.com/turnosapp/turnos/pkg/database"
	"github.com/turnosapp/turnos/pkg/metrics"
)

type PaymentRepository struct {
	collection *mongo.Collection
}

func NewPaymentRepository(db *mongo.Database) *PaymentRepository {
	return &PaymentRepository{collection: db.Collection(database.Payments)}
}

func (r *PaymentRepository) FindAll(ctx context.Context) ([]models.Payment, error) {
	return r.find(ctx, bson.M{}, "cannot list payments")
}

func (r *PaymentRepository) FindByMethod(ctx context.Context, method models.PaymentMethod) ([]models.Payment, error) {
	return r.find(ctx, bson.M{"metodoPago": method}, "cannot list payments by method")
}

func (r *PaymentRepository) find(ctx context.Context, filter bson.M, failure string) ([]models.Payment, error) {
	defer metrics.ObserveStore(database.Payments, "find", time.Now())

	opts := options.Find().SetSort(bson.D{{Key: "fechaPago", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", failure, err)
	}
	defer cursor.Close(ctx)

	var result []models.Payment
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("cannot decode payments: %w", err)
	}
	return result, nil
}

func (r *PaymentRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Payment, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByOrder returns the payment whose back-reference is orderID.
func (r *PaymentRepository) FindByOrder(ctx context.Context, orderID primitive.ObjectID) (*models.Payment, error) {
	return r.findOne(ctx, bson.M{"turno": orderID})
}

func (r *PaymentRepository) findOne(ctx context.Context, filter bson.M) (*models.Payment, error) {
	defer metrics.ObserveStore(database.Payments, "find_one", time.Now())

	var p models.Payment
	if err := r.collection.FindOne(ctx, filter).Decode(&p); err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get payment: %w", err)
	}
	return &p, nil
}

// Create inserts p. Status defaults to paid and the payment date to now.
func (r *PaymentRepository) Create(ctx context.Context, p *models.Payment) error {
	if p == nil {
		return fmt.Errorf("payment is nil")
	}
	defer metrics.ObserveStore(database.Payments, "insert", time.Now())

	now := time.Now().UTC()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.Status == "" {
		p.Status = models.PaymentPaid
	}
	if p.PaidAt.IsZero() {
		p.PaidAt = now
	}
	p.CreatedAt, p.UpdatedAt = now, now

	if _, err := r.collection.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("cannot create payment: %w", err)
	}
	return nil
}

func (r *PaymentRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	defer metrics.ObserveStore(database.Payments, "delete", time.Now())

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("cannot delete payment: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByOrder removes the payments of an order and reports how many went.
func (r *PaymentRepository) DeleteByOrder(ctx context.Context, orderID primitive.ObjectID) (int64, error) {
	defer metrics.ObserveStore(database.Payments, "delete", time.Now())

	result, err := r.collection.DeleteMany(ctx, bson.M{"turno": orderID})
	if err != nil {
		return 0, fmt.Errorf("cannot delete payments of order: %w", err)
	}
	return result.DeletedCount, nil
}

func (r *PaymentRepository) Count(ctx context.Context) (int64, error) {
	defer metrics.ObserveStore(database.Payments, "count", time.Now())

	n, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("cannot count payments: %w", err)
	}
	return n, nil
}

// TotalAmount sums monto over every payment.
func (r *PaymentRepository) TotalAmount(ctx context.Context) (float64, error) {
	defer metrics.ObserveStore(database.Payments, "aggregate", time.Now())

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$monto"}}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("cannot sum payments: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Total float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, fmt.Errorf("cannot decode payment total: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}
