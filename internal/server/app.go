package server

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/turnosapp/turnos/app/controllers"
	"github.com/turnosapp/turnos/app/repositories"
	"github.com/turnosapp/turnos/app/routes"
	"github.com/turnosapp/turnos/app/services"
	"github.com/turnosapp/turnos/config"
	"github.com/turnosapp/turnos/pkg/cache"
	"github.com/turnosapp/turnos/pkg/middleware"
	"github.com/turnosapp/turnos/pkg/router"
)

// App is the wired application: repositories -> services -> controllers.
type App struct {
	Auth         *services.AuthService
	LoginLimiter *middleware.Limiter

	api routes.API
}

// NewApp wires every layer on top of db and the summary cache. It fails
// when TRUSTED_PROXIES holds something that is not an IP or CIDR.
func NewApp(db *mongo.Database, store cache.Store) (*App, error) {
	users := repositories.NewUserRepository(db)
	orders := repositories.NewOrderRepository(db)
	payments := repositories.NewPaymentRepository(db)
	counters := repositories.NewCounterRepository(db)

	summary := services.NewSummaryService(users, orders, payments, store, config.SummaryTTL())
	authSvc := services.NewAuthService(users, summary)
	limiter := middleware.NewLimiter(config.LoginRateLimit(), time.Minute)
	if err := limiter.TrustProxies(config.TrustedProxies()...); err != nil {
		return nil, fmt.Errorf("TRUSTED_PROXIES: %w", err)
	}

	ping := func(ctx context.Context) error {
		return db.Client().Ping(ctx, readpref.Primary())
	}

	return &App{
		Auth:         authSvc,
		LoginLimiter: limiter,
		api: routes.API{
			Auth:         controllers.NewAuthController(authSvc),
			Users:        controllers.NewUserController(services.NewUserService(users, summary)),
			Orders:       controllers.NewOrderController(services.NewOrderService(orders, payments, services.NewSequenceAllocator(counters), summary)),
			Payments:     controllers.NewPaymentController(services.NewPaymentService(payments, orders)),
			Dashboard:    controllers.NewDashboardController(summary),
			Health:       controllers.NewHealthController(ping),
			Resolver:     authSvc,
			LoginLimiter: limiter,
		},
	}, nil
}

// Routes registers the API on r.
func (a *App) Routes(r *router.Router) {
	routes.RegisterAPI(r, a.api)
}
