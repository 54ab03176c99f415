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

type OrderRepository struct {
	collection *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{collection: db.Collection(database.Orders)}
}

// FindAll lists orders by number.
func (r *OrderRepository) FindAll(ctx context.Context) ([]models.Order, error) {
	return r.find(ctx, bson.M{}, "cannot list orders")
}

func (r *OrderRepository) FindByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	return r.find(ctx, bson.M{"estado": status}, "cannot list orders by status")
}

func (r *OrderRepository) find(ctx context.Context, filter bson.M, failure string) ([]models.Order, error) {
	defer metrics.ObserveStore(database.Orders, "find", time.Now())

	opts := options.Find().SetSort(bson.D{{Key: "numeroTurno", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", failure, err)
	}
	defer cursor.Close(ctx)

	var result []models.Order
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("cannot decode orders: %w", err)
	}
	return result, nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *OrderRepository) FindByNumber(ctx context.Context, number int64) (*models.Order, error) {
	return r.findOne(ctx, bson.M{"numeroTurno": number})
}

func (r *OrderRepository) findOne(ctx context.Context, filter bson.M) (*models.Order, error) {
	defer metrics.ObserveStore(database.Orders, "find_one", time.Now())

	var o models.Order
	if err := r.collection.FindOne(ctx, filter).Decode(&o); err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get order: %w", err)
	}
	return &o, nil
}

// MaxNumber returns the highest order number in use, or 0 when there are
// no orders.
func (r *OrderRepository) MaxNumber(ctx context.Context) (int64, error) {
	defer metrics.ObserveStore(database.Orders, "find_one", time.Now())

	opts := options.FindOne().
		SetSort(bson.D{{Key: "numeroTurno", Value: -1}}).
		SetProjection(bson.M{"numeroTurno": 1})

	var doc struct {
		Number int64 `bson:"numeroTurno"`
	}
	if err := r.collection.FindOne(ctx, bson.M{}, opts).Decode(&doc); err != nil {
		if notFound(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("cannot find highest order number: %w", err)
	}
	return doc.Number, nil
}

// Create inserts o and fills its ID and timestamps.
func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	if o == nil {
		return fmt.Errorf("order is nil")
	}
	defer metrics.ObserveStore(database.Orders, "insert", time.Now())

	now := time.Now().UTC()
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, o); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("cannot create order %d: %w", o.Number, ErrDuplicateKey)
		}
		return fmt.Errorf("cannot create order: %w", err)
	}
	return nil
}

// Update saves the mutable fields of o. Number, payment and creation date
// are never touched.
func (r *OrderRepository) Update(ctx context.Context, o *models.Order) error {
	if o == nil {
		return fmt.Errorf("order is nil")
	}
	defer metrics.ObserveStore(database.Orders, "update", time.Now())

	o.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"tipo":      o.Kind,
		"estado":    o.Status,
		"usuario":   o.Customer,
		"producto":  o.Item,
		"updatedAt": o.UpdatedAt,
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": o.ID}, update)
	if err != nil {
		return fmt.Errorf("cannot update order: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetPayment links an order to its payment.
func (r *OrderRepository) SetPayment(ctx context.Context, orderID, paymentID primitive.ObjectID) error {
	defer metrics.ObserveStore(database.Orders, "update", time.Now())

	update := bson.M{"$set": bson.M{"pago": paymentID, "updatedAt": time.Now().UTC()}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": orderID}, update)
	if err != nil {
		return fmt.Errorf("cannot link payment to order: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *OrderRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	defer metrics.ObserveStore(database.Orders, "delete", time.Now())

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("cannot delete order: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *OrderRepository) Count(ctx context.Context) (int64, error) {
	return r.count(ctx, bson.M{})
}

func (r *OrderRepository) CountByStatus(ctx context.Context, status models.OrderStatus) (int64, error) {
	return r.count(ctx, bson.M{"estado": status})
}

func (r *OrderRepository) count(ctx context.Context, filter bson.M) (int64, error) {
	defer metrics.ObserveStore(database.Orders, "count", time.Now())

	n, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("cannot count orders: %w", err)
	}
	return n, nil
}
