package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/loopplatform/merchant-pulse/api/responses"
	"github.com/loopplatform/merchant-pulse/pkg/config"
	pkgerrors "github.com/loopplatform/merchant-pulse/pkg/errors"
	"github.com/loopplatform/merchant-pulse/pkg/logger"
)

const readyCheckTimeout = 2 * time.Second

// Pinger is the health contract a dependency exposes.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-MerchantPulse-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the database and redis before reporting ready, so
// orchestrators stop routing traffic when a dependency drops.
func HealthReady(cfg *config.Config, logg *logger.Logger, db Pinger, cache Pinger) http.HandlerFunc {
	checks := []struct {
		name   string
		pinger Pinger
	}{
		{name: "database", pinger: db},
		{name: "redis", pinger: cache},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-MerchantPulse-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
		defer cancel()

		for _, check := range checks {
			if check.pinger == nil {
				continue
			}
			if err := check.pinger.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, check.name+" unavailable"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
