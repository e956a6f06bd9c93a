// Package controllers holds the HTTP handlers. Controllers bind and
// validate request bodies, call into app/services, and translate the
// service error taxonomy into HTTP statuses.
package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/campusmart/app/services"
	"github.com/shashiranjanraj/campusmart/pkg/logger"
	"github.com/shashiranjanraj/campusmart/pkg/response"
)

// writeServiceError maps a service error onto the HTTP response.
// Unknown errors become an opaque 500 after being logged with the request
// context so internals never leak to clients.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNotFound):
		response.Error(w, http.StatusNotFound, "not found")
	case errors.Is(err, services.ErrConflict):
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrAuthentication):
		response.Error(w, http.StatusUnauthorized, err.Error())
	default:
		logger.WithCtx(r.Context()).Error("request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		response.Error(w, http.StatusInternalServerError, "something went wrong")
	}
}

// writeBindError handles the two failure modes of bind.JSON: a malformed
// body and field-level validation errors.
func writeBindError(w http.ResponseWriter, errs map[string]string, err error) {
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	response.ValidationError(w, errs)
}
