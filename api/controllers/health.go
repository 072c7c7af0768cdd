package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/pousadahub/ordering-backend/api/responses"
	"github.com/pousadahub/ordering-backend/pkg/config"
	pkgerrors "github.com/pousadahub/ordering-backend/pkg/errors"
	"github.com/pousadahub/ordering-backend/pkg/logger"
)

const readyCheckTimeout = 3 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

type directoryStatus interface {
	Loaded() bool
	LoadedAt() time.Time
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Pousada-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, db pinger, redis pinger, dir directoryStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Pousada-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
		defer cancel()

		checks := map[string]string{}
		healthy := true

		check := func(name string, p pinger) {
			if p == nil {
				checks[name] = "skipped"
				return
			}
			if err := p.Ping(ctx); err != nil {
				checks[name] = "down"
				healthy = false
				if logg != nil {
					logg.Error(ctx, "readiness check failed: "+name, err)
				}
				return
			}
			checks[name] = "up"
		}
		check("database", db)
		check("redis", redis)

		if dir != nil && dir.Loaded() {
			checks["partner_directory"] = "loaded"
		} else {
			checks["partner_directory"] = "pending"
		}

		if !healthy {
			responses.WriteError(ctx, logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "not ready").WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
