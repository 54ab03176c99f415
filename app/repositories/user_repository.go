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

// UserRepository handles database operations for User.
type UserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{collection: db.Collection(database.Users)}
}

// FindAll lists every user, inactive ones included.
func (r *UserRepository) FindAll(ctx context.Context) ([]models.User, error) {
	defer metrics.ObserveStore(database.Users, "find", time.Now())

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot list users: %w", err)
	}
	defer cursor.Close(ctx)

	var result []models.User
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("cannot decode users: %w", err)
	}
	return result, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByEmail looks up a user by their email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	defer metrics.ObserveStore(database.Users, "find_one", time.Now())

	var u models.User
	if err := r.collection.FindOne(ctx, filter).Decode(&u); err != nil {
		if notFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get user: %w", err)
	}
	return &u, nil
}

// Create persists a new user. A taken email surfaces as ErrDuplicateKey.
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	if u == nil {
		return fmt.Errorf("user is nil")
	}
	defer metrics.ObserveStore(database.Users, "insert", time.Now())

	now := time.Now().UTC()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.CreatedAt, u.UpdatedAt = now, now

	if _, err := r.collection.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("cannot create user %s: %w", u.Email, ErrDuplicateKey)
		}
		return fmt.Errorf("cannot create user: %w", err)
	}
	return nil
}

// Update saves email, password hash and role.
func (r *UserRepository) Update(ctx context.Context, u *models.User) error {
	if u == nil {
		return fmt.Errorf("user is nil")
	}
	defer metrics.ObserveStore(database.Users, "update", time.Now())

	u.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"email":     u.Email,
		"password":  u.Password,
		"rol":       u.Role,
		"updatedAt": u.UpdatedAt,
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": u.ID}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("cannot update user %s: %w", u.Email, ErrDuplicateKey)
		}
		return fmt.Errorf("cannot update user: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Deactivate clears the active flag; the document stays.
func (r *UserRepository) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	defer metrics.ObserveStore(database.Users, "update", time.Now())

	update := bson.M{"$set": bson.M{"activo": false, "updatedAt": time.Now().UTC()}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("cannot deactivate user: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	defer metrics.ObserveStore(database.Users, "count", time.Now())

	n, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("cannot count users: %w", err)
	}
	return n, nil
}
