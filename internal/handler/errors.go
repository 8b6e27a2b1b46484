package handler

import (
	"errors"
	"net/http"

	"procurement-backend/pkg/apperror"
	"procurement-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// statusFor maps a service error to its HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperror.ErrInvalidState),
		errors.Is(err, apperror.ErrAlreadyClosed),
		errors.Is(err, apperror.ErrResponseExists):
		return http.StatusConflict
	case errors.Is(err, apperror.ErrQuantityInvariant),
		errors.Is(err, apperror.ErrNoApproverFound):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the standard error envelope for a service error.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	c.JSON(status, response.Error(status, err.Error()))
}

// actorID extracts the authenticated user's id set by the auth middleware.
func actorID(c *gin.Context) (string, bool) {
	raw, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "User ID not found in context"))
		return "", false
	}
	id, ok := raw.(string)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid User ID format"))
		return "", false
	}
	return id, true
}
