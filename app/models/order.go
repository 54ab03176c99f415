package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Customer is the snapshot of who placed the order.
type Customer struct {
	Name  string `bson:"nombre"  json:"nombre"`
	Email string `bson:"email"   json:"email"`
	Phone string `bson:"celular" json:"celular"`
}

// Item is the snapshot of what was ordered.
type Item struct {
	Name           string `bson:"nombreProducto"   json:"nombreProducto"`
	Specifications string `bson:"especificaciones" json:"especificaciones"`
}

// Order is a document of the turnos collection. Payment stays nil between
// the order insert and the payment patch.
type Order struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	Number    int64               `bson:"numeroTurno"   json:"numeroTurno"`
	Kind      OrderKind           `bson:"tipo"          json:"tipo"`
	Status    OrderStatus         `bson:"estado"        json:"estado"`
	Customer  Customer            `bson:"usuario"       json:"usuario"`
	Item      Item                `bson:"producto"      json:"producto"`
	Payment   *primitive.ObjectID `bson:"pago"          json:"pago"`
	CreatedAt time.Time           `bson:"fechaCreacion" json:"fechaCreacion"`
	UpdatedAt time.Time           `bson:"updatedAt"     json:"updatedAt"`
}
