package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/turnosapp/turnos/app/models"
	"github.com/turnosapp/turnos/app/repositories"
	"github.com/turnosapp/turnos/pkg/apperr"
	"github.com/turnosapp/turnos/pkg/logger"
	"github.com/turnosapp/turnos/pkg/metrics"
)

type CustomerInput struct {
	Name  string `json:"nombre"  validate:"required"`
	Email string `json:"email"   validate:"required,email"`
	Phone string `json:"celular" validate:"required"`
}

type ItemInput struct {
	Name           string `json:"nombreProducto"   validate:"required"`
	Specifications string `json:"especificaciones" validate:"nullable,max=500"`
}

// CreateOrderInput is the body of POST /turno: the order and the payment
// that comes with it.
type CreateOrderInput struct {
	Kind     models.OrderKind     `json:"tipo"       validate:"required"`
	Status   models.OrderStatus   `json:"estado"     validate:"required"`
	Customer *CustomerInput       `json:"usuario"    validate:"required"`
	Item     *ItemInput           `json:"producto"   validate:"required"`
	Amount   float64              `json:"monto"      validate:"required,gt=0"`
	Method   models.PaymentMethod `json:"metodoPago" validate:"required"`
}

// UpdateOrderInput is the body of PUT /turno/{id}. A missing producto keeps
// the stored one.
type UpdateOrderInput struct {
	Kind     models.OrderKind   `json:"tipo"     validate:"required"`
	Status   models.OrderStatus `json:"estado"   validate:"required"`
	Customer *CustomerInput     `json:"usuario"  validate:"required"`
	Item     *ItemInput         `json:"producto"`
}

type OrderService struct {
	orders   OrderStore
	payments PaymentStore
	seq      *SequenceAllocator
	summary  Invalidator
	now      func() time.Time
}

func NewOrderService(orders OrderStore, payments PaymentStore, seq *SequenceAllocator, summary Invalidator) *OrderService {
	return &OrderService{
		orders:   orders,
		payments: payments,
		seq:      seq,
		summary:  summary,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// List returns every order; an empty store is a 404.
func (s *OrderService) List(ctx context.Context) ([]models.Order, error) {
	orders, err := s.orders.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, apperr.NotFound("No orders found")
	}
	return orders, nil
}

func (s *OrderService) Get(ctx context.Context, rawID string) (*models.Order, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	return s.find(ctx, id)
}

func (s *OrderService) find(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperr.NotFound("No order found with id %s", id.Hex())
	}
	return order, nil
}

// GetByNumber looks an order up by its sequence number.
func (s *OrderService) GetByNumber(ctx context.Context, raw string) (*models.Order, error) {
	number, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || number <= 0 {
		return nil, apperr.BadRequest("The order number %s is not valid", raw)
	}

	order, err := s.orders.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperr.NotFound("No order found with number %d", number)
	}
	return order, nil
}

func (s *OrderService) ListPending(ctx context.Context) ([]models.Order, error) {
	return s.ListByStatus(ctx, string(models.StatusPending))
}

func (s *OrderService) ListByStatus(ctx context.Context, raw string) ([]models.Order, error) {
	status := models.OrderStatus(raw)
	if !status.Valid() {
		return nil, apperr.BadRequest("The status %s is not valid; use pendiente, atendido or cancelado", raw)
	}

	orders, err := s.orders.FindByStatus(ctx, status)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, apperr.NotFound("No orders found with status %s", status)
	}
	return orders, nil
}

// Create validates in, allocates the next number, then writes the order and
// its payment and links them. The writes are not transactional: when a later
// step fails the earlier documents are removed again.
func (s *OrderService) Create(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	if err := check(&in); err != nil {
		return nil, err
	}
	if !in.Kind.Valid() {
		return nil, apperr.BadRequest("The order kind can only be pedido or domicilio")
	}
	if in.Status != models.StatusPending {
		return nil, apperr.BadRequest("A new order must have status pendiente")
	}
	if !in.Method.Valid() {
		return nil, apperr.BadRequest("The payment method can only be efectivo, tarjeta or transferencia")
	}

	number, err := s.seq.NextOrderNumber(ctx)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		Number:    number,
		Kind:      in.Kind,
		Status:    in.Status,
		Customer:  customer(in.Customer),
		Item:      item(in.Item),
		Payment:   nil,
		CreatedAt: s.now(),
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order %d: %w", number, err)
	}

	payment := &models.Payment{
		Order:  order.ID,
		Amount: in.Amount,
		Method: in.Method,
		Status: models.PaymentPaid,
		PaidAt: s.now(),
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		s.rollback(ctx, order.ID, nil)
		return nil, fmt.Errorf("create payment for order %d: %w", number, err)
	}

	if err := s.orders.SetPayment(ctx, order.ID, payment.ID); err != nil {
		s.rollback(ctx, order.ID, &payment.ID)
		return nil, fmt.Errorf("link payment to order %d: %w", number, err)
	}
	order.Payment = &payment.ID

	metrics.OrdersCreated.WithLabelValues(string(order.Kind), string(payment.Method)).Inc()
	logger.WithCtx(ctx).Info("order created",
		"numeroTurno", order.Number,
		"order_id", order.ID.Hex(),
		"payment_id", payment.ID.Hex(),
	)
	invalidate(ctx, s.summary)

	return order, nil
}

// rollback removes what a failed Create already wrote. It runs detached from
// the request's cancellation so a client hang-up cannot leave half an order.
func (s *OrderService) rollback(ctx context.Context, orderID primitive.ObjectID, paymentID *primitive.ObjectID) {
	metrics.OrderCompensations.Inc()
	log := logger.WithCtx(ctx)
	ctx = context.WithoutCancel(ctx)

	if paymentID != nil {
		if err := s.payments.Delete(ctx, *paymentID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
			log.Error("rollback: payment left behind", "payment_id", paymentID.Hex(), "error", err)
		}
	}
	if err := s.orders.Delete(ctx, orderID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		log.Error("rollback: order left behind", "order_id", orderID.Hex(), "error", err)
	}
}

// Update replaces the editable fields of an order. Any valid status is
// accepted, which is how an order is marked atendido or cancelado.
func (s *OrderService) Update(ctx context.Context, rawID string, in UpdateOrderInput) (*models.Order, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	order, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := check(&in); err != nil {
		return nil, err
	}
	if !in.Kind.Valid() {
		return nil, apperr.BadRequest("The order kind can only be pedido or domicilio")
	}
	if !in.Status.Valid() {
		return nil, apperr.BadRequest("The status %s is not valid; use pendiente, atendido or cancelado", in.Status)
	}

	order.Kind = in.Kind
	order.Status = in.Status
	order.Customer = customer(in.Customer)
	if in.Item != nil {
		order.Item = item(in.Item)
	}

	if err := s.orders.Update(ctx, order); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.NotFound("No order found with id %s", id.Hex())
		}
		return nil, err
	}
	invalidate(ctx, s.summary)

	return order, nil
}

// Delete removes an order together with its payment.
func (s *OrderService) Delete(ctx context.Context, rawID string) (*models.Order, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	order, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := s.payments.DeleteByOrder(ctx, id); err != nil {
		return nil, err
	}
	if err := s.orders.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.NotFound("No order found with id %s", id.Hex())
		}
		return nil, err
	}
	invalidate(ctx, s.summary)

	return order, nil
}

func customer(in *CustomerInput) models.Customer {
	return models.Customer{
		Name:  strings.TrimSpace(in.Name),
		Email: normalizeEmail(in.Email),
		Phone: strings.TrimSpace(in.Phone),
	}
}

func item(in *ItemInput) models.Item {
	return models.Item{
		Name:           strings.TrimSpace(in.Name),
		Specifications: strings.TrimSpace(in.Specifications),
	}
}
