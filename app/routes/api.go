package routes

import (
	"github.com/turnosapp/turnos/app/controllers"
	"github.com/turnosapp/turnos/app/models"
	"github.com/turnosapp/turnos/pkg/auth"
	"github.com/turnosapp/turnos/pkg/ctx"
	"github.com/turnosapp/turnos/pkg/middleware"
	"github.com/turnosapp/turnos/pkg/rbac"
	"github.com/turnosapp/turnos/pkg/router"
)

// API is everything the route table binds to.
type API struct {
	Auth      *controllers.AuthController
	Users     *controllers.UserController
	Orders    *controllers.OrderController
	Payments  *controllers.PaymentController
	Dashboard *controllers.DashboardController
	Health    *controllers.HealthController

	// Resolver backs the Auth Gate.
	Resolver auth.Resolver
	// LoginLimiter throttles /usuario/login per client IP; nil disables it.
	LoginLimiter *middleware.Limiter
}

func RegisterAPI(r *router.Router, api API) {
	r.Get("/health", "health", ctx.Wrap(api.Health.Check))

	admin := []router.Middleware{
		middleware.Authenticate(api.Resolver),
		rbac.HasRole(string(models.RoleAdministrator)),
	}

	var throttle []router.Middleware
	if api.LoginLimiter != nil {
		throttle = append(throttle, api.LoginLimiter.Middleware)
	}

	// Register and login are open; everything else is behind the gate.
	usuario := r.Group("/usuario")
	usuario.Post("/register", "usuario.register", ctx.Wrap(api.Auth.Register))
	usuario.Post("/login", "usuario.login", ctx.Wrap(api.Auth.Login), throttle...)

	users := usuario.Group("", admin...)
	users.Get("/", "usuario.index", ctx.Wrap(api.Users.Index))
	users.Get("/{id}", "usuario.show", ctx.Wrap(api.Users.Show))
	users.Put("/{id}", "usuario.update", ctx.Wrap(api.Users.Update))
	users.Delete("/{id}", "usuario.destroy", ctx.Wrap(api.Users.Destroy))

	turno := r.Group("/turno", admin...)
	turno.Get("/", "turno.index", ctx.Wrap(api.Orders.Index))
	turno.Get("/pendientes", "turno.pending", ctx.Wrap(api.Orders.Pending))
	turno.Get("/numero/{turno}", "turno.number", ctx.Wrap(api.Orders.ShowByNumber))
	turno.Get("/estado/{estado}", "turno.status", ctx.Wrap(api.Orders.ByStatus))
	turno.Get("/{id}", "turno.show", ctx.Wrap(api.Orders.Show))
	turno.Post("/", "turno.store", ctx.Wrap(api.Orders.Store))
	turno.Put("/{id}", "turno.update", ctx.Wrap(api.Orders.Update))
	turno.Delete("/{id}", "turno.destroy", ctx.Wrap(api.Orders.Destroy))

	pago := r.Group("/pago", admin...)
	pago.Get("/", "pago.index", ctx.Wrap(api.Payments.Index))
	pago.Get("/pagosByMetodo/{metodo}", "pago.method", ctx.Wrap(api.Payments.ByMethod))
	pago.Get("/pagoByTurno", "pago.order", ctx.Wrap(api.Payments.ByOrder))
	pago.Get("/pagoByTurno/{id}", "pago.order.path", ctx.Wrap(api.Payments.ByOrder))
	pago.Get("/{id}", "pago.show", ctx.Wrap(api.Payments.Show))

	dashboard := r.Group("/dashboard", admin...)
	dashboard.Get("/resumen", "dashboard.summary", ctx.Wrap(api.Dashboard.Summary))
}
