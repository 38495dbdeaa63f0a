package handlers

import (
	"errors"
	"net/http"

	"github.com/dimitrije/tandem-api/internal/logger"
	"github.com/dimitrije/tandem-api/internal/services"
	"github.com/m1z23r/drift/pkg/drift"
)

// respondError writes the status for a service error. Domain errors carry a
// message safe for clients; anything else is logged and reported as
// fallback.
func respondError(c *drift.Context, log *logger.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrValidation):
		c.BadRequest(err.Error())
	case errors.Is(err, services.ErrUnauthenticated):
		c.Unauthorized(err.Error())
	case errors.Is(err, services.ErrForbidden):
		c.Forbidden(err.Error())
	case errors.Is(err, services.ErrNotFound):
		c.NotFound(err.Error())
	case errors.Is(err, services.ErrConflict), errors.Is(err, services.ErrInvalidState):
		_ = c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		log.Error(fallback,
			"error", err,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)
		c.InternalServerError(fallback)
	}
}
