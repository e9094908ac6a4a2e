package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/sxo6luxe/sxo6-backend/api/responses"
	"github.com/sxo6luxe/sxo6-backend/pkg/config"
	pkgerrors "github.com/sxo6luxe/sxo6-backend/pkg/errors"
	"github.com/sxo6luxe/sxo6-backend/pkg/logger"
)

const readyCheckTimeout = 2 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-SXO6-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every hard dependency. A failing check returns 503 so the
// instance is pulled from rotation before it serves broken traffic.
func HealthReady(cfg *config.Config, logg *logger.Logger, db, redis, storage pinger) http.HandlerFunc {
	checks := []struct {
		name  string
		check pinger
	}{
		{"database", db},
		{"redis", redis},
		{"storage", storage},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-SXO6-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
		defer cancel()

		statuses := map[string]string{}
		for _, entry := range checks {
			if entry.check == nil {
				continue
			}
			if err := entry.check.Ping(ctx); err != nil {
				statuses[entry.name] = "down"
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, entry.name+" unavailable").WithDetails(statuses))
				return
			}
			statuses[entry.name] = "up"
		}

		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": statuses})
	}
}
