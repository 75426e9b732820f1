package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/kofiasare/sewshop-backend/api/responses"
	"github.com/kofiasare/sewshop-backend/pkg/config"
	"github.com/kofiasare/sewshop-backend/pkg/logger"
)

const readinessTimeout = 2 * time.Second

// Pinger is anything that can report dependency liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-SewShop-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady checks the stateful dependencies. A nil pinger is reported as
// skipped rather than failing readiness, so dev setups without redis still
// come up.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, redisP Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-SewShop-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := map[string]string{
			"db":    checkDependency(ctx, dbP),
			"redis": checkDependency(ctx, redisP),
		}

		status := http.StatusOK
		for name, result := range checks {
			if result == "error" {
				status = http.StatusServiceUnavailable
				if logg != nil {
					logg.Warn(logg.WithField(ctx, "dependency", name), "readiness check failed")
				}
			}
		}

		responses.WriteSuccessStatus(w, status, checks)
	}
}

func checkDependency(ctx context.Context, p Pinger) string {
	if p == nil {
		return "skipped"
	}
	if err := p.Ping(ctx); err != nil {
		return "error"
	}
	return "ok"
}
