package handlers

import (
	"errors"
	"net/http"

	"github.com/blendhq/blend-server/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// statusFor maps service errors onto HTTP status codes. Unrecognized
// errors fall through to 500.
func statusFor(err error) int {
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, models.ErrAlreadyRegistered),
		errors.Is(err, models.ErrAlreadySubscribed),
		errors.Is(err, models.ErrAtCapacity),
		errors.Is(err, models.ErrAlreadyCheckedIn),
		errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, models.ErrSlugTaken):
		return http.StatusConflict
	case errors.As(err, &verrs):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrBackendUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, models.ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), models.ErrorResponse(err.Error()))
}

// currentUser reads the authenticated caller placed by the auth
// middleware. Missing on routes without AuthRequired.
func currentUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get("user")
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

func mustCurrentUser(c *gin.Context) (*models.User, bool) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse("not authenticated"))
		return nil, false
	}
	return user, true
}
