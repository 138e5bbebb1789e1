package handlers

import (
	"errors"
	"net/http"

	"fikerless/services/booking"
	"fikerless/utils"

	"github.com/gin-gonic/gin"
)

// respondBookingError maps the booking core's typed errors onto HTTP
// statuses. Anything unrecognized is an internal error.
func respondBookingError(c *gin.Context, err error) {
	var (
		validationErr *booking.ValidationError
		noAvailErr    *booking.NoAvailabilityError
		conflictErr   *booking.SlotConflictError
		expiredErr    *booking.RequestExpiredError
		stateErr      *booking.InvalidStateError
		notFoundErr   *booking.NotFoundError
		concurrentErr *booking.ConcurrentModificationError
	)
	switch {
	case errors.As(err, &validationErr):
		utils.JSONError(c, http.StatusBadRequest, "Invalid input", err.Error())
	case errors.As(err, &noAvailErr):
		utils.JSONError(c, http.StatusNotFound, "No availability", err.Error())
	case errors.As(err, &conflictErr):
		utils.JSONError(c, http.StatusConflict, "Slot no longer available", err.Error())
	case errors.As(err, &expiredErr):
		utils.JSONError(c, http.StatusGone, "Request expired", err.Error())
	case errors.As(err, &stateErr):
		utils.JSONError(c, http.StatusBadRequest, "Invalid state", err.Error())
	case errors.As(err, &notFoundErr):
		utils.JSONError(c, http.StatusNotFound, "Not found", err.Error())
	case errors.As(err, &concurrentErr):
		utils.JSONError(c, http.StatusConflict, "Concurrent modification", err.Error())
	default:
		utils.JSONError(c, http.StatusInternalServerError, "Internal Server Error", err.Error())
	}
}
