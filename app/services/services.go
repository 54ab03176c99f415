// Package services holds the request-independent business rules of turnos:
// validation, order numbering, the order/payment pair and authentication.
//
// Every service depends on the small store interfaces below; the Mongo
// repositories satisfy them in production.
package services

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/turnosapp/turnos/app/models"
	"github.com/turnosapp/turnos/pkg/apperr"
	"github.com/turnosapp/turnos/pkg/validate"
)

type OrderStore interface {
	FindAll(ctx context.Context) ([]models.Order, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	FindByNumber(ctx context.Context, number int64) (*models.Order, error)
	FindByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error)
	Create(ctx context.Context, o *models.Order) error
	Update(ctx context.Context, o *models.Order) error
	SetPayment(ctx context.Context, orderID, paymentID primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status models.OrderStatus) (int64, error)
}

type PaymentStore interface {
	FindAll(ctx context.Context) ([]models.Payment, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Payment, error)
	FindByMethod(ctx context.Context, method models.PaymentMethod) ([]models.Payment, error)
	FindByOrder(ctx context.Context, orderID primitive.ObjectID) (*models.Payment, error)
	Create(ctx context.Context, p *models.Payment) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByOrder(ctx context.Context, orderID primitive.ObjectID) (int64, error)
	Count(ctx context.Context) (int64, error)
	TotalAmount(ctx context.Context) (float64, error)
}

type UserStore interface {
	FindAll(ctx context.Context) ([]models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
	Update(ctx context.Context, u *models.User) error
	Deactivate(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

type CounterStore interface {
	Next(ctx context.Context, key string) (int64, error)
	Legacy(ctx context.Context, key string) (int64, error)
	Raise(ctx context.Context, key string, floor int64) error
}

// NumberSource reports the highest order number already stored.
type NumberSource interface {
	MaxNumber(ctx context.Context) (int64, error)
}

// Invalidator is told when data behind a cached view has changed.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// parseID checks the identifier shape before any lookup.
func parseID(raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return primitive.NilObjectID, apperr.BadRequest("The id %s is not valid", raw)
	}
	return id, nil
}

// check runs presence rules first and format rules second, returning the
// first failure as a 400.
func check(input any) error {
	if errs := validate.Required(input); errs.Any() {
		return apperr.BadRequest("%s", errs.First().Message)
	}
	if errs := validate.Struct(input); errs.Any() {
		return apperr.BadRequest("%s", errs.First().Message)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func invalidate(ctx context.Context, inv Invalidator) {
	if inv != nil {
		inv.Invalidate(ctx)
	}
}
