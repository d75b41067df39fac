package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ItsCrotix/NOR-Backend/internal/pkg/router"
)

type healthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}

func (h healthResponse) StatusCode() int {
	if h.Status != "up" {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

func (h healthResponse) Message() string { return "service is " + h.Status }

// health reports liveness together with the state of the backing services.
func (a *App) health(r *router.Request) (any, error) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{Status: "up", Services: map[string]string{"database": "up", "redis": "up"}}

	if err := a.dbConn.Ping(ctx); err != nil {
		slog.WarnContext(ctx, "health check database down", "error", err)
		resp.Services["database"] = "down"
	}
	if err := a.cacheConn.Ping(ctx).Err(); err != nil {
		slog.WarnContext(ctx, "health check redis down", "error", err)
		resp.Services["redis"] = "down"
	}

	for _, state := range resp.Services {
		if state != "up" {
			resp.Status = "degraded"
		}
	}

	return resp, nil
}
