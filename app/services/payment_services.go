package services

import (
	"context"

	"github.com/turnosapp/turnos/app/models"
	"github.com/turnosapp/turnos/pkg/apperr"
)

// PaymentService is read-only: payments are only written by order creation.
type PaymentService struct {
	payments PaymentStore
	orders   OrderStore
}

func NewPaymentService(payments PaymentStore, orders OrderStore) *PaymentService {
	return &PaymentService{payments: payments, orders: orders}
}

func (s *PaymentService) List(ctx context.Context) ([]models.Payment, error) {
	payments, err := s.payments.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(payments) == 0 {
		return nil, apperr.NotFound("No payments found")
	}
	return payments, nil
}

func (s *PaymentService) Get(ctx context.Context, rawID string) (*models.Payment, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}

	payment, err := s.payments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, apperr.NotFound("No payment found with id %s", id.Hex())
	}
	return payment, nil
}

func (s *PaymentService) ListByMethod(ctx context.Context, raw string) ([]models.Payment, error) {
	method := models.PaymentMethod(raw)
	if !method.Valid() {
		return nil, apperr.BadRequest("The payment method can only be efectivo, tarjeta or transferencia")
	}

	payments, err := s.payments.FindByMethod(ctx, method)
	if err != nil {
		return nil, err
	}
	if len(payments) == 0 {
		return nil, apperr.NotFound("No payments found with method %s", method)
	}
	return payments, nil
}

// GetByOrder returns the payment of an order. The order must exist.
func (s *PaymentService) GetByOrder(ctx context.Context, rawOrderID string) (*models.Payment, error) {
	if rawOrderID == "" {
		return nil, apperr.BadRequest("The turno parameter is required")
	}
	orderID, err := parseID(rawOrderID)
	if err != nil {
		return nil, err
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperr.NotFound("No order found with id %s", orderID.Hex())
	}

	payment, err := s.payments.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, apperr.NotFound("No payment found for order %d", order.Number)
	}
	return payment, nil
}
