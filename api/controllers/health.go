package controllers

import (
	"context"
	"net/http"

	"github.com/blackwater-gg/craftworks/api/responses"
	"github.com/blackwater-gg/craftworks/pkg/config"
	pkgerrors "github.com/blackwater-gg/craftworks/pkg/errors"
	"github.com/blackwater-gg/craftworks/pkg/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Craftworks-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady checks every wired dependency. A nil pinger is skipped so the
// notifier-less deployments still report ready.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, redisP, pubsubP pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Craftworks-Env", cfg.App.Env)

		checks := map[string]pinger{
			"db":     dbP,
			"redis":  redisP,
			"pubsub": pubsubP,
		}

		for name, p := range checks {
			if p == nil {
				continue
			}
			if err := p.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unavailable").
						WithDetails(map[string]string{"component": name}))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
