package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"parking_rental/internal/api/middleware"
	"parking_rental/internal/domain"
	"parking_rental/internal/service"
)

// statusFor maps service and domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrSpotNotFound),
		errors.Is(err, service.ErrCustomerNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrAlreadyOccupied),
		errors.Is(err, service.ErrPlateAlreadyParked):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidVehicleType),
		errors.Is(err, service.ErrRateNotConfigured),
		errors.Is(err, service.ErrUnknownParkingType),
		errors.Is(err, service.ErrInvalidState):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrInvalidRate),
		errors.Is(err, domain.ErrInvalidPlate),
		errors.Is(err, domain.ErrInvalidIdentifier):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotLoaded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeError(c *gin.Context, err error, message string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("Handler: %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(status, gin.H{"error": message, "details": err.Error()})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// parseTimeOr parses an optional RFC3339 timestamp, returning fallback when empty.
func parseTimeOr(value string, fallback time.Time) (time.Time, error) {
	if value == "" {
		return fallback, nil
	}
	return time.Parse(time.RFC3339, value)
}

// callerTime is parseTimeOr for staff. Customers always get fallback.
func callerTime(c *gin.Context, value string, fallback time.Time) (time.Time, error) {
	if c.GetString(middleware.UserRoleKey) == domain.RoleCustomer {
		return fallback, nil
	}
	return parseTimeOr(value, fallback)
}

// customerMayAct reports whether the caller may act on plate. Staff may act on
// any plate; customers only on the plate they logged in with.
func customerMayAct(c *gin.Context, plate string) bool {
	if c.GetString(middleware.UserRoleKey) != domain.RoleCustomer {
		return true
	}
	normalized, err := domain.NormalizePlate(plate)
	if err != nil {
		return true // rejected later with 400
	}
	return normalized == c.GetString(middleware.SubjectKey)
}
