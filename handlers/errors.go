// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"github.com/danielhkuo/pulsepoll/admission"
	"github.com/danielhkuo/pulsepoll/middleware"
	"github.com/danielhkuo/pulsepoll/store"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// errorStatus maps a store or admission error to its HTTP status and the
// message shown to clients
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, admission.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, store.ErrOptionNotFound):
		return http.StatusBadRequest, "Option not found for this poll"
	case errors.Is(err, store.ErrPollNotFound):
		return http.StatusNotFound, "Poll not found"
	case errors.Is(err, store.ErrDuplicateVote):
		return http.StatusConflict, "You have already voted on this poll"
	case errors.Is(err, admission.ErrRateLimited):
		return http.StatusTooManyRequests, "Too many vote attempts. Try again later."
	case errors.Is(err, store.ErrUnavailable):
		return http.StatusServiceUnavailable, "Storage unavailable"
	default:
		return http.StatusInternalServerError, "Internal error"
	}
}

// writeError sends err to the client. Server-side failures are logged;
// client errors are routine and are not.
func writeError(w http.ResponseWriter, op string, err error) {
	status, msg := errorStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Error("failed to "+op, "error", err)
	}
	middleware.ErrorResponse(w, status, msg)
}

// validationMessage turns validator errors into "field: rule" pairs
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	parts := lo.Map(verrs, func(fe validator.FieldError, _ int) string {
		field := strings.ToLower(fe.Field())
		if fe.Param() != "" {
			return field + ": " + fe.Tag() + "=" + fe.Param()
		}
		return field + ": " + fe.Tag()
	})
	return "invalid " + strings.Join(parts, ", ")
}
