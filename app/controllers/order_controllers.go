package controllers

import (
	"context"

	"github.com/turnosapp/turnos/app/models"
	"github.com/turnosapp/turnos/app/services"
	"github.com/turnosapp/turnos/pkg/ctx"
)

type OrderService interface {
	List(ctx context.Context) ([]models.Order, error)
	Get(ctx context.Context, id string) (*models.Order, error)
	GetByNumber(ctx context.Context, number string) (*models.Order, error)
	ListPending(ctx context.Context) ([]models.Order, error)
	ListByStatus(ctx context.Context, status string) ([]models.Order, error)
	Create(ctx context.Context, in services.CreateOrderInput) (*models.Order, error)
	Update(ctx context.Context, id string, in services.UpdateOrderInput) (*models.Order, error)
	Delete(ctx context.Context, id string) (*models.Order, error)
}

type OrderController struct {
	service OrderService
}

func NewOrderController(service OrderService) *OrderController {
	return &OrderController{service: service}
}

func (c *OrderController) Index(x *ctx.Context) {
	orders, err := c.service.List(x.Context())
	if err != nil {
		x.Fail(err)
		return
	}
	x.Success(orders, "Order list")
}

func (c *OrderController) Show(x *ctx.Context) {
	order, err := c.service.Get(x.Context(), x.Param("id"))
	if err != nil {
		x.Fail(err)
		return
	}
	x.Success(order, "Order found")
}

// ShowByNumber handles GET /turno/numero/{turno}.
func (c *OrderController) ShowByNumber(x *ctx.Context) {
	order, err := c.service.GetByNumber(x.Context(), x.Param("turno"))
	if err != nil {
		x.Fail(err)
		return
	}
	x.Success(order, "Order found")
}

func (c *OrderController) Pending(x *ctx.Context) {
	orders, err := c.service.ListPending(x.Context())
	if err != nil {
		x.Fail(err)
		return
	}
	x.Success(orders, "Pending orders")
}

// ByStatus handles GET /turno/estado/{estado}.
func (c *OrderController) ByStatus(x *ctx.Context) {
	orders, err := c.service.ListByStatus(x.Context(), x.Param("estado"))
	if err != nil {
		x.Fail(err)
		return
	}
	x.Success(orders, "Orders with status "+x.Param("estado"))
}

func (c *OrderController) Store(x *ctx.Context) {
	var in services.CreateOrderInput
	if !x.BindJSON(&in) {
		return
	}

	order, err := c.service.Create(x.Context(), in)
	if err != nil {
		x.Fail(err)
		return
	}
	x.Created(order, "Order created with its payment")
}

// Update resolves the order before reading the body, so an unknown id is a
// 404 whatever the body holds.
func (c *OrderController) Update(x *ctx.Context) {
	if _, err := c.service.Get(x.Context(), x.Param("id")); err != nil {
		x.Fail(err)
		return
	}

	var in services.UpdateOrderInput
	if !x.BindJSON(&in) {
		return
	}

	order, err := c.service.Update(x.Context(), x.Param("id"), in)
	if err != nil {
		x.Fail(err)
		return
	}
	x.Success(order, "Order updated")
}

// Destroy deletes the order and its payment.
func (c *OrderController) Destroy(x *ctx.Context) {
	order, err := c.service.Delete(x.Context(), x.Param("id"))
	if err != nil {
		x.Fail(err)
		return
	}
	x.Success(order, "Order deleted")
}
