package controllers

import (
	"context"

	"github.com/turnosapp/turnos/app/models"
	"github.com/turnosapp/turnos/app/services"
	"github.com/turnosapp/turnos/pkg/ctx"
)

type UserService interface {
	List(ctx context.Context) ([]models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, id string, in services.UserInput) (*models.User, error)
	Deactivate(ctx context.Context, id string) (*models.User, error)
}

type UserController struct {
	service UserService
}

func NewUserController(service UserService) *UserController {
	return &UserController{service: service}
}

func (c *UserController) Index(x *ctx.Context) {
	users, err := c.service.List(x.Context())
	if err != nil {
		x.Fail(err)
		return
	}
	x.Success(users, "User list")
}

func (c *UserController) Show(x *ctx.Context) {
	user, err := c.service.Get(x.Context(), x.Param("id"))
	if err != nil {
		x.Fail(err)
		return
	}
	x.Success(user, "User found")
}

// Update resolves the user first; see OrderController.Update.
func (c *UserController) Update(x *ctx.Context) {
	if _, err := c.service.Get(x.Context(), x.Param("id")); err != nil {
		x.Fail(err)
		return
	}

	var in services.UserInput
	if !x.BindJSON(&in) {
		return
	}

	user, err := c.service.Update(x.Context(), x.Param("id"), in)
	if err != nil {
		x.Fail(err)
		return
	}
	x.Success(user, "User updated")
}

// Destroy deactivates the user; the record is kept.
func (c *UserController) Destroy(x *ctx.Context) {
	user, err := c.service.Deactivate(x.Context(), x.Param("id"))
	if err != nil {
		x.Fail(err)
		return
	}
	x.Success(user, "User deactivated")
}
