package handlers

import (
	"errors"
	"math"

	"github.com/restaurantos/restaurant-service/internal/service"
	apperrors "github.com/restaurantos/restaurant-service/pkg/util/errorutil"
)

// mapServiceError translates service errors into domain errors.
func mapServiceError(err error) error {
	var validation *service.ValidationError
	var tooMany *service.TooManyAttemptsError
	switch {
	case errors.As(err, &validation):
		return apperrors.NewValidationError(validation.Error(), map[string]any{"field": validation.Field})
	case errors.As(err, &tooMany):
		return apperrors.NewTooManyRequests("too many login attempts", int(math.Ceil(tooMany.RetryAfter.Seconds())))
	case errors.Is(err, service.ErrInvalidCredentials):
		return apperrors.NewUnauthorized("invalid credentials")
	case errors.Is(err, service.ErrUserNotFound):
		return apperrors.NewUnauthorized("authentication required")
	case errors.Is(err, service.ErrEmailTaken):
		return apperrors.NewConflict(service.ErrEmailTaken.Error(), nil)
	case errors.Is(err, service.ErrRestaurantNotFound):
		return apperrors.NewNotFound("restaurant", nil)
	case errors.Is(err, service.ErrForbidden):
		return apperrors.NewForbidden("access denied")
	default:
		return apperrors.NewInternalError(err)
	}
}
