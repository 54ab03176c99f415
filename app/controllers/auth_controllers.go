package controllers

import (
	"context"

	"github.com/turnosapp/turnos/app/services"
	"github.com/turnosapp/turnos/pkg/ctx"
)

type AuthService interface {
	Register(ctx context.Context, in services.UserInput) (*services.AuthResult, error)
	Login(ctx context.Context, in services.LoginInput) (*services.AuthResult, error)
}

type AuthController struct {
	service AuthService
}

func NewAuthController(service AuthService) *AuthController {
	return &AuthController{service: service}
}

// Register handles POST /usuario/register.
func (c *AuthController) Register(x *ctx.Context) {
	var in services.UserInput
	if !x.BindJSON(&in) {
		return
	}

	res, err := c.service.Register(x.Context(), in)
	if err != nil {
		x.Fail(err)
		return
	}
	x.Created(res, "User registered")
}

// Login handles POST /usuario/login.
func (c *AuthController) Login(x *ctx.Context) {
	var in services.LoginInput
	if !x.BindJSON(&in) {
		return
	}

	res, err := c.service.Login(x.Context(), in)
	if err != nil {
		x.Fail(err)
		return
	}
	x.Success(res, "Login successful")
}
