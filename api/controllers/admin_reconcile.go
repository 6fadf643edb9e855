package controllers

import (
	"net/http"

	"github.com/blackwater-gg/craftworks/api/responses"
	"github.com/blackwater-gg/craftworks/internal/reconcile"
	pkgerrors "github.com/blackwater-gg/craftworks/pkg/errors"
	"github.com/blackwater-gg/craftworks/pkg/logger"
)

// AdminReconcile re-renders every surviving surface reference. Runs are
// mutually exclusive across instances; a concurrent run yields a conflict.
func AdminReconcile(svc reconcile.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reconcile service unavailable"))
			return
		}

		result, err := svc.Run(r.Context(), "api")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
