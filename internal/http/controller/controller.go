package controller

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/pricehawk/internal/config"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Controller handles general HTTP requests.
type Controller struct {
	config *config.Config
	checks map[string]HealthCheck
}

// New creates a new Controller with the given configuration and dependency checks.
func New(config *config.Config, checks map[string]HealthCheck) *Controller {
	return &Controller{
		config: config,
		checks: checks,
	}
}

// Ping handles the HTTP GET request for health check endpoint.
func (con *Controller) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "pong",
	})
}

// Health reports the state of every registered dependency.
func (con *Controller) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	status := http.StatusOK
	deps := make(map[string]string, len(con.checks))
	for name, check := range con.checks {
		if err := check(ctx); err != nil {
			slog.Warn("health check failed", slog.String("dependency", name), slog.Any("err", err))
			deps[name] = "disconnected"
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "connected"
	}

	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	c.JSON(status, gin.H{
		"status":       state,
		"dependencies": deps,
	})
}
