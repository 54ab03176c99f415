package models

// OrderNumberKey names the counter that hands out order numbers.
const OrderNumberKey = "ultimoTurno"

// Counter is a document of the configs collection.
type Counter struct {
	Key   string `bson:"_id"   json:"clave"`
	Value int64  `bson:"valor" json:"valor"`
}

// Summary is the dashboard overview.
type Summary struct {
	Users           int64   `json:"usuarios"`
	Orders          int64   `json:"turnos"`
	PendingOrders   int64   `json:"turnosPendientes"`
	FulfilledOrders int64   `json:"turnosAtendidos"`
	CancelledOrders int64   `json:"turnosCancelados"`
	Payments        int64   `json:"pagos"`
	Revenue         float64 `json:"ingresos"`
}
