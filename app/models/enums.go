package models

// OrderKind is how the customer receives the order.
type OrderKind string

const (
	KindPickup   OrderKind = "pedido"
	KindDelivery OrderKind = "domicilio"
)

var orderKinds = map[OrderKind]struct{}{
	KindPickup:   {},
	KindDelivery: {},
}

func (k OrderKind) Valid() bool {
	_, ok := orderKinds[k]
	return ok
}

// OrderStatus values. New orders always start pending.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pendiente"
	StatusFulfilled OrderStatus = "atendido"
	StatusCancelled OrderStatus = "cancelado"
)

var orderStatuses = map[OrderStatus]struct{}{
	StatusPending:   {},
	StatusFulfilled: {},
	StatusCancelled: {},
}

func (s OrderStatus) Valid() bool {
	_, ok := orderStatuses[s]
	return ok
}

type PaymentMethod string

const (
	MethodCash     PaymentMethod = "efectivo"
	MethodCard     PaymentMethod = "tarjeta"
	MethodTransfer PaymentMethod = "transferencia"
)

var paymentMethods = map[PaymentMethod]struct{}{
	MethodCash:     {},
	MethodCard:     {},
	MethodTransfer: {},
}

func (m PaymentMethod) Valid() bool {
	_, ok := paymentMethods[m]
	return ok
}

// PaymentStatus is set once when the payment is recorded.
type PaymentStatus string

const PaymentPaid PaymentStatus = "pagado"

// Role of an admin user. Checks are set membership so another role only
// needs a constant and an entry in roles.
type Role string

const RoleAdministrator Role = "administrador"

var roles = map[Role]struct{}{
	RoleAdministrator: {},
}

func (r Role) Valid() bool {
	_, ok := roles[r]
	return ok
}
