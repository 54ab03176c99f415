package controllers

import (
	"context"

	"github.com/turnosapp/turnos/app/models"
	"github.com/turnosapp/turnos/pkg/ctx"
)

type PaymentService interface {
	List(ctx context.Context) ([]models.Payment, error)
	Get(ctx context.Context, id string) (*models.Payment, error)
	ListByMethod(ctx context.Context, method string) ([]models.Payment, error)
	GetByOrder(ctx context.Context, orderID string) (*models.Payment, error)
}

type PaymentController struct {
	service PaymentService
}

func NewPaymentController(service PaymentService) *PaymentController {
	return &PaymentController{service: service}
}

func (c *PaymentController) Index(x *ctx.Context) {
	payments, err := c.service.List(x.Context())
	if err != nil {
		x.Fail(err)
		return
	}
	x.Success(payments, "Payment list")
}

func (c *PaymentController) Show(x *ctx.Context) {
	payment, err := c.service.Get(x.Context(), x.Param("id"))
	if err != nil {
		x.Fail(err)
		return
	}
	x.Success(payment, "Payment found")
}

// ByMethod handles GET /pago/pagosByMetodo/{metodo}.
func (c *PaymentController) ByMethod(x *ctx.Context) {
	payments, err := c.service.ListByMethod(x.Context(), x.Param("metodo"))
	if err != nil {
		x.Fail(err)
		return
	}
	x.Success(payments, "Payments with method "+x.Param("metodo"))
}

// ByOrder handles GET /pago/pagoByTurno?turno={id} and
// GET /pago/pagoByTurno/{id}.
func (c *PaymentController) ByOrder(x *ctx.Context) {
	orderID := x.Param("id")
	if orderID == "" {
		orderID = x.Query("turno")
	}

	payment, err := c.service.GetByOrder(x.Context(), orderID)
	if err != nil {
		x.Fail(err)
		return
	}
	x.Success(payment, "Payment of the order")
}
