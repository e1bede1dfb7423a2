package controllers

import (
	"context"
	"net/http"

	"github.com/davidmarceau/dishpatch-backend/api/responses"
	"github.com/davidmarceau/dishpatch-backend/pkg/config"
	pkgerrors "github.com/davidmarceau/dishpatch-backend/pkg/errors"
	"github.com/davidmarceau/dishpatch-backend/pkg/logger"
)

// Pinger is the readiness probe's view of the snapshot store.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Dishpatch-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, probe Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Dishpatch-Env", cfg.App.Env)
		if probe != nil {
			if err := probe.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodePersistence, err, "snapshot store unreachable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
