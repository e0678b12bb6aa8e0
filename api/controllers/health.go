package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/vancetran/medisupply-backend/api/responses"
	"github.com/vancetran/medisupply-backend/pkg/config"
	"github.com/vancetran/medisupply-backend/pkg/db"
	pkgerrors "github.com/vancetran/medisupply-backend/pkg/errors"
	"github.com/vancetran/medisupply-backend/pkg/logger"
	"github.com/vancetran/medisupply-backend/pkg/redis"
)

const healthCheckTimeout = 3 * time.Second

var startedAt = time.Now()

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]any{
			"status":      "healthy",
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
			"uptime":      time.Since(startedAt).String(),
			"environment": cfg.App.Env,
			"version":     cfg.App.Version,
		})
	}
}

// HealthReady pings the hard dependencies; redis is optional and reported
// degraded rather than failing readiness.
func HealthReady(cfg *config.Config, logg *logger.Logger, database db.Pinger, redisClient redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		checks := map[string]string{}

		if database == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "database unavailable"))
			return
		}
		if err := database.Ping(ctx); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database ping failed"))
			return
		}
		checks["database"] = "ok"

		checks["redis"] = "ok"
		if redisClient == nil {
			checks["redis"] = "disabled"
		} else if err := redisClient.Ping(ctx); err != nil {
			checks["redis"] = "degraded"
			if logg != nil {
				logg.Warn(logg.WithField(r.Context(), "error", err.Error()), "health.redis_degraded")
			}
		}

		responses.WriteSuccess(w, map[string]any{
			"status":      "ready",
			"environment": cfg.App.Env,
			"checks":      checks,
		})
	}
}
