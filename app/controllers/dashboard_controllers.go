package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/turnosapp/turnos/app/models"
	"github.com/turnosapp/turnos/pkg/ctx"
	"github.com/turnosapp/turnos/pkg/logger"
)

type SummaryService interface {
	Summary(ctx context.Context) (*models.Summary, error)
}

type DashboardController struct {
	service SummaryService
}

func NewDashboardController(service SummaryService) *DashboardController {
	return &DashboardController{service: service}
}

// Summary handles GET /dashboard/resumen.
func (c *DashboardController) Summary(x *ctx.Context) {
	summary, err := c.service.Summary(x.Context())
	if err != nil {
		x.Fail(err)
		return
	}
	x.Success(summary, "Dashboard summary")
}

// HealthController answers GET /health with the database reachability.
type HealthController struct {
	ping func(context.Context) error
}

func NewHealthController(ping func(context.Context) error) *HealthController {
	return &HealthController{ping: ping}
}

func (c *HealthController) Check(x *ctx.Context) {
	pingCtx, cancel := context.WithTimeout(x.Context(), 2*time.Second)
	defer cancel()

	if err := c.ping(pingCtx); err != nil {
		logger.WithCtx(x.Context()).Warn("health check failed", "error", err)
		x.Respond(http.StatusServiceUnavailable, false, map[string]string{"database": "down"}, "Service unavailable")
		return
	}
	x.Success(map[string]string{"database": "up"}, "OK")
}
