package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment is a document of the pagos collection, 1:1 with its Order.
type Payment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Order     primitive.ObjectID `bson:"turno"         json:"turno"`
	Amount    float64            `bson:"monto"         json:"monto"`
	Method    PaymentMethod      `bson:"metodoPago"    json:"metodoPago"`
	Status    PaymentStatus      `bson:"estado"        json:"estado"`
	PaidAt    time.Time          `bson:"fechaPago"     json:"fechaPago"`
	CreatedAt time.Time          `bson:"createdAt"     json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"     json:"updatedAt"`
}
