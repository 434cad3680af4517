package controllers

import (
	"net/http"

	"github.com/sulavkarki/medpasal-backend/api/responses"
	"github.com/sulavkarki/medpasal-backend/pkg/db"
	pkgerrors "github.com/sulavkarki/medpasal-backend/pkg/errors"
	"github.com/sulavkarki/medpasal-backend/pkg/logger"
	"github.com/sulavkarki/medpasal-backend/pkg/redis"
)

// Liveness reports the process is up.
func Liveness() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}

// Readiness reports whether the datastores are reachable.
func Readiness(dbPinger db.Pinger, redisPinger redis.Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if dbPinger != nil {
			if err := dbPinger.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unreachable"))
				return
			}
		}
		if redisPinger != nil {
			if err := redisPinger.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unreachable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
