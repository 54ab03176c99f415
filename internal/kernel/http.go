// Package kernel assembles the HTTP handler: global middleware, fallback
// handlers, /metrics and the application routes.
package kernel

import (
	"net/http"

	"github.com/turnosapp/turnos/config"
	"github.com/turnosapp/turnos/pkg/metrics"
	"github.com/turnosapp/turnos/pkg/middleware"
	"github.com/turnosapp/turnos/pkg/reqid"
	"github.com/turnosapp/turnos/pkg/response"
	"github.com/turnosapp/turnos/pkg/router"
)

type HTTPKernel struct {
	router *router.Router
}

// NewHTTPKernel builds the router and calls each register func on it.
func NewHTTPKernel(register ...func(r *router.Router)) *HTTPKernel {
	r := router.New()

	// Outermost first:
	//  1. metrics   total latency, labelled by route pattern
	//  2. recovery  panics become a 500 envelope
	//  3. reqid     before anything logs
	//  4. logger    request-scoped logger with request_id
	//  5. CORS      answers dashboard preflights
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.DefaultCORSOptions(config.CORSOrigins())))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Handle("/metrics", metrics.Handler())

	for _, fn := range register {
		fn(r)
	}

	return &HTTPKernel{router: r}
}

func (k *HTTPKernel) Handler() http.Handler { return k.router.Handler() }

// Router exposes the route registry, e.g. for route:list.
func (k *HTTPKernel) Router() *router.Router { return k.router }
